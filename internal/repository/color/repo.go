package color

import (
	"context"
	"fmt"
	"sort"

	domcolor "github.com/kailas-cloud/specdex/internal/domain/color"
)

// store is the consumer interface for the palette (ISP).
type store interface {
	HSet(ctx context.Context, key string, fields map[string]string) error
	HGetAllMulti(ctx context.Context, keys []string) ([]map[string]string, error)
	Scan(ctx context.Context, pattern string) ([]string, error)
}

// Repo stores palette entries as hashes under {prefix}color:{name}.
type Repo struct {
	store  store
	prefix string
}

// New creates a color repository.
func New(s store, prefix string) *Repo {
	return &Repo{store: s, prefix: prefix}
}

// Upsert stores a color.
func (r *Repo) Upsert(ctx context.Context, c domcolor.Color) error {
	err := r.store.HSet(ctx, r.key(c.Name()), map[string]string{
		"name":  c.Name(),
		"hex":   c.Hex(),
		"image": c.Image(),
	})
	if err != nil {
		return fmt.Errorf("hset color %s: %w", c.Name(), err)
	}
	return nil
}

// List returns the palette ordered by name.
func (r *Repo) List(ctx context.Context) ([]domcolor.Color, error) {
	keys, err := r.store.Scan(ctx, r.key("*"))
	if err != nil {
		return nil, fmt.Errorf("scan colors: %w", err)
	}
	if len(keys) == 0 {
		return []domcolor.Color{}, nil
	}

	results, err := r.store.HGetAllMulti(ctx, keys)
	if err != nil {
		return nil, fmt.Errorf("hgetall multi colors: %w", err)
	}

	colors := make([]domcolor.Color, 0, len(results))
	for _, m := range results {
		if len(m) == 0 {
			continue
		}
		colors = append(colors, domcolor.Reconstruct(m["name"], m["hex"], m["image"]))
	}
	sort.Slice(colors, func(i, j int) bool { return colors[i].Name() < colors[j].Name() })
	return colors, nil
}

func (r *Repo) key(name string) string {
	return fmt.Sprintf("%scolor:%s", r.prefix, name)
}
