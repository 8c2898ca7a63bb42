package decorators

import (
	"fmt"

	"github.com/toyz/defn/internal/errors"
	"github.com/toyz/defn/internal/models"
	"github.com/toyz/defn/internal/utils"
)

// Registry defines the interface for looking up decorators by name
type Registry interface {
	// Register adds a decorator; names must be unique
	Register(d Decorator) error

	// Resolve returns the decorator registered under name
	Resolve(name string) (Decorator, error)

	// List returns every registered decorator ordered by name
	List() []Decorator

	// Clone returns an independent copy that can be extended without affecting the receiver
	Clone() Registry
}

// registry is the concrete implementation of Registry
type registry struct {
	items *utils.BaseRegistry[string, Decorator]
}

// NewRegistry creates an empty decorator registry
func NewRegistry() Registry {
	items := utils.NewBaseRegistry[string, Decorator]("decorator")
	items.SetValidator(utils.AllOf(
		utils.NonEmptyName[Decorator]("decorator name"),
		utils.Unique[string, Decorator]("decorator"),
	))
	return &registry{items: items}
}

// NewBuiltinRegistry creates a registry holding one decorator per kind,
// named after the kind and calling into the defn support header
func NewBuiltinRegistry() Registry {
	r := NewRegistry()
	for _, kind := range Kinds() {
		d, err := New(string(kind), BuiltinNamespace+"::"+string(kind), kind)
		if err != nil {
			panic(fmt.Sprintf("builtin decorator %s: %v", kind, err))
		}
		if err := r.Register(d); err != nil {
			panic(fmt.Sprintf("builtin decorator %s: %v", kind, err))
		}
	}
	return r
}

// BuiltinNamespace is the C++ namespace of the built-in decorator objects
const BuiltinNamespace = "::defn"

// Register adds a decorator; names must be unique
func (r *registry) Register(d Decorator) error {
	if d == nil {
		return errors.New(errors.ConfigurationErrorCode, "decorator cannot be nil")
	}
	if err := r.items.Register(d.Name(), d); err != nil {
		dup := errors.Wrap(errors.DuplicateDeclarationErrorCode, err.Error(), err).
			WithContext("decorator", d.Name())
		if located, ok := d.(interface{ Location() models.SourceLocation }); ok {
			dup.WithLocation(located.Location())
		}
		return dup
	}
	return nil
}

// Resolve returns the decorator registered under name
func (r *registry) Resolve(name string) (Decorator, error) {
	if d, ok := r.items.Get(name); ok {
		return d, nil
	}
	return nil, errors.NewUnknownDecoratorError(name, utils.ClosestMatches(name, r.items.Keys(), 3))
}

// List returns every registered decorator ordered by name
func (r *registry) List() []Decorator {
	return r.items.Values()
}

// Clone returns an independent copy that can be extended without affecting the receiver
func (r *registry) Clone() Registry {
	return &registry{items: r.items.Clone()}
}

// Declare registers every decorator declared in unit into r
func Declare(r Registry, unit *models.Unit) error {
	errs := errors.NewMultipleErrors()
	for _, decl := range unit.Decorators {
		d, err := FromDecl(decl)
		if err != nil {
			errs.AddError(err)
			continue
		}
		if err := r.Register(d); err != nil {
			errs.AddError(errors.Locate(err, decl.Loc))
		}
	}
	return errs.ErrOrNil()
}
