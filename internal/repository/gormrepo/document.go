package gormrepo

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/kailas-cloud/specdex/internal/db"
	"github.com/kailas-cloud/specdex/internal/domain"
	domdoc "github.com/kailas-cloud/specdex/internal/domain/document"
)

// DocumentRepo stores documents in the documents table.
type DocumentRepo struct {
	db *gorm.DB
}

// NewDocumentRepo creates a SQL document repository.
func NewDocumentRepo(gdb *gorm.DB) *DocumentRepo {
	return &DocumentRepo{db: gdb}
}

// Upsert creates or replaces a document. Returns true if created.
func (r *DocumentRepo) Upsert(ctx context.Context, doc domdoc.Document) (bool, error) {
	var created bool
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var n int64
		if err := tx.Model(&documentModel{}).
			Where("doctype = ? AND name = ?", doc.Doctype(), doc.Name()).
			Count(&n).Error; err != nil {
			return err
		}
		created = n == 0
		m := documentModel{
			Doctype:    doc.Doctype(),
			Name:       doc.Name(),
			Fields:     datatypes.JSONMap(doc.Fields()),
			ModifiedAt: doc.ModifiedAt(),
		}
		return tx.Save(&m).Error
	})
	if err != nil {
		return false, &db.Error{Op: db.OpUpsert, Err: err}
	}
	return created, nil
}

// Get returns a document by type and name.
func (r *DocumentRepo) Get(ctx context.Context, doctype, name string) (domdoc.Document, error) {
	var m documentModel
	err := r.db.WithContext(ctx).Where("doctype = ? AND name = ?", doctype, name).First(&m).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return domdoc.Document{}, domain.ErrDocumentNotFound
	}
	if err != nil {
		return domdoc.Document{}, &db.Error{Op: db.OpSelect, Err: err}
	}
	return m.toDomain(), nil
}

// List returns one page of documents of a type with offset cursors.
func (r *DocumentRepo) List(ctx context.Context, doctype, cursor string, limit int) ([]domdoc.Document, string, error) {
	if limit <= 0 {
		limit = 20
	}
	offset := 0
	if cursor != "" {
		parsed, err := strconv.Atoi(cursor)
		if err != nil || parsed < 0 {
			return nil, "", fmt.Errorf("invalid cursor %q: %w", cursor, domain.ErrInvalidSchema)
		}
		offset = parsed
	}

	var rows []documentModel
	if err := r.db.WithContext(ctx).Where("doctype = ?", doctype).
		Order("name").Offset(offset).Limit(limit + 1).Find(&rows).Error; err != nil {
		return nil, "", &db.Error{Op: db.OpSelect, Err: err}
	}

	var next string
	if len(rows) > limit {
		rows = rows[:limit]
		next = strconv.Itoa(offset + limit)
	}
	docs := make([]domdoc.Document, len(rows))
	for i, m := range rows {
		docs[i] = m.toDomain()
	}
	return docs, next, nil
}

// All returns every document of a type.
func (r *DocumentRepo) All(ctx context.Context, doctype string) ([]domdoc.Document, error) {
	var rows []documentModel
	if err := r.db.WithContext(ctx).Where("doctype = ?", doctype).Order("name").Find(&rows).Error; err != nil {
		return nil, &db.Error{Op: db.OpSelect, Err: err}
	}
	docs := make([]domdoc.Document, len(rows))
	for i, m := range rows {
		docs[i] = m.toDomain()
	}
	return docs, nil
}

// Count returns the number of documents of a type.
func (r *DocumentRepo) Count(ctx context.Context, doctype string) (int, error) {
	var n int64
	if err := r.db.WithContext(ctx).Model(&documentModel{}).Where("doctype = ?", doctype).Count(&n).Error; err != nil {
		return 0, &db.Error{Op: db.OpSelect, Err: err}
	}
	return int(n), nil
}

// Delete removes a document.
func (r *DocumentRepo) Delete(ctx context.Context, doctype, name string) error {
	res := r.db.WithContext(ctx).Where("doctype = ? AND name = ?", doctype, name).Delete(&documentModel{})
	if res.Error != nil {
		return &db.Error{Op: db.OpDelete, Err: res.Error}
	}
	if res.RowsAffected == 0 {
		return domain.ErrDocumentNotFound
	}
	return nil
}

func (m documentModel) toDomain() domdoc.Document {
	return domdoc.Reconstruct(m.Doctype, m.Name, map[string]any(m.Fields), m.ModifiedAt)
}
