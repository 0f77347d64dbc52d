package color

import (
	"context"
	"fmt"

	"github.com/kailas-cloud/specdex/internal/domain"
	domcolor "github.com/kailas-cloud/specdex/internal/domain/color"
)

// Service manages the colour palette.
type Service struct {
	repo Repository
}

// New creates a palette service.
func New(repo Repository) *Service {
	return &Service{repo: repo}
}

// Upsert validates and stores a colour.
func (s *Service) Upsert(ctx context.Context, name, hex, image string) (domcolor.Color, error) {
	c, err := domcolor.New(name, hex, image)
	if err != nil {
		return domcolor.Color{}, fmt.Errorf("validate color: %w: %w", domain.ErrInvalidSchema, err)
	}
	if err := s.repo.Upsert(ctx, c); err != nil {
		return domcolor.Color{}, fmt.Errorf("upsert color: %w", err)
	}
	return c, nil
}

// List returns the palette.
func (s *Service) List(ctx context.Context) ([]domcolor.Color, error) {
	colors, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list colors: %w", err)
	}
	return colors, nil
}
