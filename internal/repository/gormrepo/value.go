package gormrepo

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/kailas-cloud/specdex/internal/db"
	"github.com/kailas-cloud/specdex/internal/domain"
	domval "github.com/kailas-cloud/specdex/internal/domain/value"
)

// ValueRepo stores value rows in the attribute_values table.
type ValueRepo struct {
	db *gorm.DB
}

// NewValueRepo creates a SQL value repository.
func NewValueRepo(gdb *gorm.DB) *ValueRepo {
	return &ValueRepo{db: gdb}
}

// Get returns one row by id.
func (r *ValueRepo) Get(ctx context.Context, id string) (domval.Value, error) {
	var m valueModel
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&m).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return domval.Value{}, domain.ErrValueNotFound
	}
	if err != nil {
		return domval.Value{}, &db.Error{Op: db.OpSelect, Err: err}
	}
	return m.toDomain(), nil
}

// Save upserts a row by id.
func (r *ValueRepo) Save(ctx context.Context, v domval.Value) error {
	m := toValueModel(v)
	if err := r.db.WithContext(ctx).Save(&m).Error; err != nil {
		return &db.Error{Op: db.OpUpsert, Err: err}
	}
	return nil
}

// Delete removes rows by id; unknown ids are ignored.
func (r *ValueRepo) Delete(ctx context.Context, ids ...string) error {
	if len(ids) == 0 {
		return nil
	}
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Delete(&valueModel{}).Error; err != nil {
		return &db.Error{Op: db.OpDelete, Err: err}
	}
	return nil
}

// Find returns every row matching f, ordered by attribute then value.
func (r *ValueRepo) Find(ctx context.Context, f domval.Filter) ([]domval.Value, error) {
	q := r.db.WithContext(ctx).Model(&valueModel{})
	if f.ReferenceType != "" {
		q = q.Where("reference_type = ?", f.ReferenceType)
	}
	if f.ReferenceName != "" {
		q = q.Where("reference_name = ?", f.ReferenceName)
	}
	if f.Specification != "" {
		q = q.Where("specification = ?", f.Specification)
	}
	if f.Attribute != "" {
		q = q.Where("attribute = ?", f.Attribute)
	}
	if f.Text != "" {
		q = q.Where("value_text = ?", f.Text)
	}

	var rows []valueModel
	if err := q.Order("attribute").Order("value_text").Order("id").Find(&rows).Error; err != nil {
		return nil, &db.Error{Op: db.OpSelect, Err: err}
	}
	out := make([]domval.Value, len(rows))
	for i, m := range rows {
		out[i] = m.toDomain()
	}
	return out, nil
}

// References returns the sorted distinct reference names matching l.
func (r *ValueRepo) References(ctx context.Context, l domval.Lookup) ([]string, error) {
	q := r.db.WithContext(ctx).Model(&valueModel{}).
		Where("reference_type = ? AND attribute = ?", l.ReferenceType, l.Attribute)
	switch {
	case l.IsRange():
		if l.Min != nil {
			q = q.Where("num >= ?", *l.Min)
		}
		if l.Max != nil {
			q = q.Where("num <= ?", *l.Max)
		}
	case len(l.In) == 0:
		return []string{}, nil
	default:
		q = q.Where("value_text IN ?", l.In)
	}

	names := []string{}
	if err := q.Distinct("reference_name").Order("reference_name").Pluck("reference_name", &names).Error; err != nil {
		return nil, &db.Error{Op: db.OpSelect, Err: err}
	}
	return names, nil
}

// Rename moves every row of spec's attribute from to the name to.
func (r *ValueRepo) Rename(ctx context.Context, spec, from, to string) (int, error) {
	res := r.db.WithContext(ctx).Model(&valueModel{}).
		Where("specification = ? AND attribute = ?", spec, from).
		Update("attribute", to)
	if res.Error != nil {
		return 0, &db.Error{Op: db.OpUpsert, Err: res.Error}
	}
	return int(res.RowsAffected), nil
}

func toValueModel(v domval.Value) valueModel {
	return valueModel{
		ID:            v.ID(),
		ReferenceType: v.ReferenceType(),
		ReferenceName: v.ReferenceName(),
		Specification: v.Specification(),
		Attribute:     v.Attribute(),
		Field:         v.Field(),
		Text:          v.Text(),
		Num:           v.Numeric(),
	}
}

func (m valueModel) toDomain() domval.Value {
	return domval.Reconstruct(domval.Params{
		ID:            m.ID,
		ReferenceType: m.ReferenceType,
		ReferenceName: m.ReferenceName,
		Specification: m.Specification,
		Attribute:     m.Attribute,
		Field:         m.Field,
		Text:          m.Text,
		Numeric:       m.Num,
	})
}
