package generator

import "github.com/toyz/defn/internal/models"

// CodeGenerator defines the interface for turning parsed .defn units into C++ headers
type CodeGenerator interface {
	Generate(unit *models.Unit) (*models.GeneratedHeader, error)
}

// PolicyChecker validates the syntheses of a unit against user rules
type PolicyChecker interface {
	Check(syn models.Synthesis) error
}
