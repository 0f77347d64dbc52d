package gormrepo

import (
	"context"

	"gorm.io/gorm"

	"github.com/kailas-cloud/specdex/internal/db"
	domcolor "github.com/kailas-cloud/specdex/internal/domain/color"
)

// ColorRepo stores the palette in the colors table.
type ColorRepo struct {
	db *gorm.DB
}

// NewColorRepo creates a SQL color repository.
func NewColorRepo(gdb *gorm.DB) *ColorRepo {
	return &ColorRepo{db: gdb}
}

// Upsert stores a color.
func (r *ColorRepo) Upsert(ctx context.Context, c domcolor.Color) error {
	m := colorModel{Name: c.Name(), Hex: c.Hex(), Image: c.Image()}
	if err := r.db.WithContext(ctx).Save(&m).Error; err != nil {
		return &db.Error{Op: db.OpUpsert, Err: err}
	}
	return nil
}

// List returns the palette ordered by name.
func (r *ColorRepo) List(ctx context.Context) ([]domcolor.Color, error) {
	var rows []colorModel
	if err := r.db.WithContext(ctx).Order("name").Find(&rows).Error; err != nil {
		return nil, &db.Error{Op: db.OpSelect, Err: err}
	}
	out := make([]domcolor.Color, len(rows))
	for i, m := range rows {
		out[i] = domcolor.Reconstruct(m.Name, m.Hex, m.Image)
	}
	return out, nil
}
