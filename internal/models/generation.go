package models

// Synthesis is the result of one define_function or decorator application
type Synthesis struct {
	Target     string // public name
	Scope      *Scope
	Binding    ClosureBinding
	Renamed    *RenamedDefinition // set for decorator applications
	Decorators []string           // applied decorator names, outermost first
	Entities   []GeneratedEntity
	Warnings   []string
}

// RenamedDefinition is the hand-written definition under its internal name
type RenamedDefinition struct {
	InternalName string
	Function     FunctionDefinition
}

// GeneratedHeader represents one generated C++ header
type GeneratedHeader struct {
	SourceFile string      // .defn file the header was generated from
	FilePath   string      // path where the header should be written
	Content    string      // generated C++ source
	Syntheses  []Synthesis // everything emitted into the header, in source order
	Warnings   []string
}

// EntityCount returns the number of generated entities in the header
func (h *GeneratedHeader) EntityCount() int {
	n := 0
	for _, s := range h.Syntheses {
		n += len(s.Entities)
	}
	return n
}
