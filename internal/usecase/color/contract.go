package color

import (
	"context"

	domcolor "github.com/kailas-cloud/specdex/internal/domain/color"
)

// Repository defines the storage contract for the palette.
type Repository interface {
	Upsert(ctx context.Context, c domcolor.Color) error
	List(ctx context.Context) ([]domcolor.Color, error)
}
