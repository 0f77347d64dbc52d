package facet

import (
	"context"

	domcolor "github.com/kailas-cloud/specdex/internal/domain/color"
	domspec "github.com/kailas-cloud/specdex/internal/domain/specification"
	domval "github.com/kailas-cloud/specdex/internal/domain/value"
)

// SpecReader lists specification definitions.
type SpecReader interface {
	List(ctx context.Context) ([]domspec.Specification, error)
}

// ValueReader queries materialized values.
type ValueReader interface {
	Find(ctx context.Context, f domval.Filter) ([]domval.Value, error)
	References(ctx context.Context, l domval.Lookup) ([]string, error)
}

// Palette lists the colours used by colour-picker attributes.
type Palette interface {
	List(ctx context.Context) ([]domcolor.Color, error)
}
