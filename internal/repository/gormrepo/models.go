// Package gormrepo implements the repositories on a relational database via gorm.
package gormrepo

import (
	"gorm.io/datatypes"

	specrepo "github.com/kailas-cloud/specdex/internal/repository/specification"
)

type specModel struct {
	Name        string `gorm:"primaryKey;size:140"`
	ScopeType   string
	ScopeField  string
	ApplyOn     string
	Enabled     bool
	Attributes  datatypes.JSONType[[]specrepo.AttributeRow]
	CreatedAtMS int64 `gorm:"column:created_at_ms"`
	Revision    int
}

func (specModel) TableName() string { return "specifications" }

// valueModel has no unique constraint: multi-valued attributes repeat the
// (reference, specification, attribute) key once per value.
type valueModel struct {
	ID            string   `gorm:"primaryKey;size:36"`
	ReferenceType string   `gorm:"index:idx_value_ref,priority:1"`
	ReferenceName string   `gorm:"index:idx_value_ref,priority:2"`
	Specification string   `gorm:"index:idx_value_ref,priority:3"`
	Attribute     string   `gorm:"index:idx_value_ref,priority:4"`
	Field         string
	Text          string   `gorm:"column:value_text"`
	Num           *float64 `gorm:"index"`
}

func (valueModel) TableName() string { return "attribute_values" }

type documentModel struct {
	Doctype    string `gorm:"primaryKey"`
	Name       string `gorm:"primaryKey"`
	Fields     datatypes.JSONMap
	ModifiedAt int64
}

func (documentModel) TableName() string { return "documents" }

type colorModel struct {
	Name  string `gorm:"primaryKey"`
	Hex   string
	Image string
}

func (colorModel) TableName() string { return "colors" }

// Models lists every table for AutoMigrate.
func Models() []any {
	return []any{&specModel{}, &valueModel{}, &documentModel{}, &colorModel{}}
}
