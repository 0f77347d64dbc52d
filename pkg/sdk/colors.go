package specdex

import (
	"context"
	"fmt"
	"time"
)

// ColorService manages the colour palette.
type ColorService struct {
	svc colorUseCase
	obs *observer
}

// Upsert creates or replaces a colour. Either hex or image must be set.
func (s *ColorService) Upsert(ctx context.Context, c Color) (err error) {
	start := time.Now()
	defer func() { s.obs.observe("color.upsert", start, err) }()

	if _, err = s.svc.Upsert(ctx, c.Name, c.Hex, c.Image); err != nil {
		return fmt.Errorf("upsert color: %w", err)
	}
	return nil
}

// List returns the palette.
func (s *ColorService) List(ctx context.Context) (_ []Color, err error) {
	start := time.Now()
	defer func() { s.obs.observe("color.list", start, err) }()

	colors, err := s.svc.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list colors: %w", err)
	}
	out := make([]Color, len(colors))
	for i, c := range colors {
		out[i] = fromInternalColor(c)
	}
	return out, nil
}
