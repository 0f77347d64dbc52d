package gormrepo

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/kailas-cloud/specdex/internal/db"
	"github.com/kailas-cloud/specdex/internal/domain"
	domspec "github.com/kailas-cloud/specdex/internal/domain/specification"
	specrepo "github.com/kailas-cloud/specdex/internal/repository/specification"
)

// SpecRepo stores specifications in the specifications table.
type SpecRepo struct {
	db *gorm.DB
}

// NewSpecRepo creates a SQL specification repository.
func NewSpecRepo(gdb *gorm.DB) *SpecRepo {
	return &SpecRepo{db: gdb}
}

// Create stores a new specification.
func (r *SpecRepo) Create(ctx context.Context, spec domspec.Specification) error {
	var n int64
	if err := r.db.WithContext(ctx).Model(&specModel{}).Where("name = ?", spec.Name()).Count(&n).Error; err != nil {
		return &db.Error{Op: db.OpSelect, Err: err}
	}
	if n > 0 {
		return domain.ErrAlreadyExists
	}
	m := toSpecModel(spec)
	if err := r.db.WithContext(ctx).Create(&m).Error; err != nil {
		return &db.Error{Op: db.OpUpsert, Err: err}
	}
	return nil
}

// Save overwrites a specification.
func (r *SpecRepo) Save(ctx context.Context, spec domspec.Specification) error {
	m := toSpecModel(spec)
	if err := r.db.WithContext(ctx).Save(&m).Error; err != nil {
		return &db.Error{Op: db.OpUpsert, Err: err}
	}
	return nil
}

// Get retrieves a specification by name.
func (r *SpecRepo) Get(ctx context.Context, name string) (domspec.Specification, error) {
	var m specModel
	err := r.db.WithContext(ctx).Where("name = ?", name).First(&m).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return domspec.Specification{}, domain.ErrSpecificationNotFound
	}
	if err != nil {
		return domspec.Specification{}, &db.Error{Op: db.OpSelect, Err: err}
	}
	return m.toDomain(), nil
}

// List returns all specifications sorted by name.
func (r *SpecRepo) List(ctx context.Context) ([]domspec.Specification, error) {
	var rows []specModel
	if err := r.db.WithContext(ctx).Order("name").Find(&rows).Error; err != nil {
		return nil, &db.Error{Op: db.OpSelect, Err: err}
	}
	out := make([]domspec.Specification, len(rows))
	for i, m := range rows {
		out[i] = m.toDomain()
	}
	return out, nil
}

// Delete removes a specification.
func (r *SpecRepo) Delete(ctx context.Context, name string) error {
	res := r.db.WithContext(ctx).Where("name = ?", name).Delete(&specModel{})
	if res.Error != nil {
		return &db.Error{Op: db.OpDelete, Err: res.Error}
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("delete %s: %w", name, domain.ErrSpecificationNotFound)
	}
	return nil
}

func toSpecModel(spec domspec.Specification) specModel {
	return specModel{
		Name:        spec.Name(),
		ScopeType:   spec.ScopeType(),
		ScopeField:  spec.ScopeField(),
		ApplyOn:     spec.ApplyOn(),
		Enabled:     spec.Enabled(),
		Attributes:  datatypes.NewJSONType(specrepo.AttributeRows(spec.Attributes())),
		CreatedAtMS: spec.CreatedAt(),
		Revision:    spec.Revision(),
	}
}

func (m specModel) toDomain() domspec.Specification {
	return domspec.Reconstruct(domspec.Params{
		Name:       m.Name,
		ScopeType:  m.ScopeType,
		ScopeField: m.ScopeField,
		ApplyOn:    m.ApplyOn,
		Enabled:    m.Enabled,
		Attributes: specrepo.Attributes(m.Attributes.Data()),
	}, m.CreatedAtMS, m.Revision)
}
