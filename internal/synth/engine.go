// Package synth turns a closure's operator() overload set into forwarding
// declarations. Every stage is a pure function of its input: Extract reads the
// overload set, Validate rejects collisions under qualification erasure,
// DeduceReceivers locates the object parameter in member mode and Synthesize
// emits one entity per overload.
package synth

import (
	"fmt"

	"github.com/toyz/defn/internal/errors"
	"github.com/toyz/defn/internal/models"
)

// MixedTemplatePolicy decides what happens when a templated and a non-templated
// overload of compatible arity are synthesized side by side
type MixedTemplatePolicy string

const (
	MixedTemplatesAllow MixedTemplatePolicy = "allow"
	MixedTemplatesWarn  MixedTemplatePolicy = "warn"
	MixedTemplatesError MixedTemplatePolicy = "error"
)

// Valid reports whether p is a known policy
func (p MixedTemplatePolicy) Valid() bool {
	switch p {
	case MixedTemplatesAllow, MixedTemplatesWarn, MixedTemplatesError:
		return true
	}
	return false
}

// Options configures an Engine
type Options struct {
	MixedTemplates MixedTemplatePolicy
}

// DefaultOptions returns the options used when none are configured
func DefaultOptions() Options {
	return Options{MixedTemplates: MixedTemplatesWarn}
}

// Engine runs the synthesis pipeline. It holds no mutable state and may be
// shared between goroutines.
type Engine struct {
	options Options
}

// NewEngine creates a new engine with the given options
func NewEngine(options Options) *Engine {
	if !options.MixedTemplates.Valid() {
		options.MixedTemplates = MixedTemplatesWarn
	}
	return &Engine{options: options}
}

// Request is one synthesis call
type Request struct {
	Target  Target
	Binding models.ClosureBinding
}

// Result is everything produced for one request
type Result struct {
	Descriptor models.CallableDescriptor
	Receivers  []models.ReceiverSpec
	Entities   []models.GeneratedEntity
	Warnings   []string
}

// Run executes Extract, Validate, DeduceReceivers (member mode) and Synthesize.
// The first failing stage aborts the request; nothing is emitted for it.
func (e *Engine) Run(req Request) (Result, error) {
	name := req.Target.Name
	loc := req.Binding.Loc

	desc, err := Extract(name, req.Binding)
	if err != nil {
		return Result{}, err
	}

	if err := Validate(name, desc, loc); err != nil {
		return Result{}, err
	}

	warnings, err := e.checkMixedTemplates(name, desc, loc)
	if err != nil {
		return Result{}, err
	}

	var receivers []models.ReceiverSpec
	if req.Target.Mode == models.MemberMode {
		receivers, err = DeduceReceivers(name, req.Target.Owner, desc, loc)
		if err != nil {
			return Result{}, err
		}
	}

	return Result{
		Descriptor: desc,
		Receivers:  receivers,
		Entities:   Synthesize(desc, receivers, req.Binding, req.Target),
		Warnings:   warnings,
	}, nil
}

func (e *Engine) checkMixedTemplates(name string, desc models.CallableDescriptor, loc models.SourceLocation) ([]string, error) {
	if e.options.MixedTemplates == MixedTemplatesAllow {
		return nil, nil
	}

	var warnings []string
	for _, pair := range MixedTemplatePairs(desc) {
		first, second := desc.Overloads[pair[0]], desc.Overloads[pair[1]]
		if e.options.MixedTemplates == MixedTemplatesError {
			err := errors.NewTemplateShapeError(name, pair[1], second.Signature(),
				fmt.Sprintf("templated and non-templated overloads of compatible arity are mixed with overload #%d", pair[0]))
			err.WithContext("first_overload", fmt.Sprintf("#%d %s", pair[0], first.Signature())).
				WithSuggestion("Set mixed_templates: warn or allow in defn.yaml to keep both and rely on overload resolution").
				WithLocation(loc)
			return nil, err
		}
		warnings = append(warnings, fmt.Sprintf("%s: '%s' mixes a templated and a non-templated overload of compatible arity (#%d and #%d); both are kept",
			loc, name, pair[0], pair[1]))
	}
	return warnings, nil
}
