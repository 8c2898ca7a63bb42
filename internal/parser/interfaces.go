package parser

import "github.com/toyz/defn/internal/models"

// UnitParser defines the interface for turning .defn sources into units
type UnitParser interface {
	Parse(filename string, src []byte) (*models.Unit, error)
	ParseFile(path string) (*models.Unit, error)
}

var _ UnitParser = (*Parser)(nil)
