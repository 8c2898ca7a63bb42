package parser

import (
	"strings"

	"github.com/alecthomas/participle/v2/lexer"

	"github.com/toyz/defn/internal/errors"
	"github.com/toyz/defn/internal/models"
)

// lowerer turns the grammar tree into the model handed to the engine,
// collecting every semantic error instead of stopping at the first
type lowerer struct {
	file string
	unit *models.Unit
	errs *errors.MultipleErrors
}

func lower(file string, tree *fileNode) (*models.Unit, error) {
	l := &lowerer{
		file: file,
		unit: &models.Unit{File: file},
		errs: errors.NewMultipleErrors(),
	}

	root := &models.Scope{Kind: models.ScopeGlobal, Loc: models.SourceLocation{File: file, Line: 1, Column: 1}}
	l.items(root, tree.Items)
	l.unit.Root = root

	if err := l.errs.ErrOrNil(); err != nil {
		return nil, err
	}
	return l.unit, nil
}

func (l *lowerer) loc(pos lexer.Position) models.SourceLocation {
	return models.SourceLocation{File: l.file, Line: pos.Line, Column: pos.Column}
}

func (l *lowerer) fail(pos lexer.Position, message, token string) {
	l.errs.Add(errors.NewSyntaxError(l.loc(pos), message, token))
}

func (l *lowerer) items(scope *models.Scope, items []*itemNode) {
	for _, item := range items {
		switch {
		case item.Decorator != nil:
			d := item.Decorator
			l.unit.Decorators = append(l.unit.Decorators, models.DecoratorDecl{
				Name:       d.Name,
				Expression: unquote(d.Expression),
				Kind:       d.Kind,
				Loc:        l.loc(d.Pos),
			})

		case item.Closure != nil:
			c := item.Closure
			l.unit.Closures = append(l.unit.Closures, models.ClosureDecl{
				Name:    c.Name,
				Closure: models.Closure{Expression: unquote(c.Expression), Operators: l.overloads(c.Overloads)},
				Loc:     l.loc(c.Pos),
			})

		case item.Namespace != nil:
			l.namespace(scope, item.Namespace)

		case item.Class != nil:
			l.class(scope, item.Class)

		case item.Define != nil:
			if def := l.define(item.Define); def != nil {
				scope.Declarations = append(scope.Declarations, models.Declaration{Define: def})
			}

		case item.Decorated != nil:
			if def := l.decorated(scope, item.Decorated); def != nil {
				scope.Declarations = append(scope.Declarations, models.Declaration{Decorated: def})
			}
		}
	}
}

func (l *lowerer) namespace(parent *models.Scope, n *namespaceNode) {
	if parent.Kind == models.ScopeClass {
		l.fail(n.Pos, "a namespace cannot be declared inside a class", "namespace")
		return
	}
	scope := &models.Scope{
		Kind: models.ScopeNamespace,
		Name: strings.Join(n.Names, "::"),
		Path: appendPath(parent.Path, n.Names...),
		Loc:  l.loc(n.Pos),
	}
	scope.Namespaces = len(scope.Path)
	l.items(scope, n.Items)
	parent.Declarations = append(parent.Declarations, models.Declaration{Scope: scope})
}

func (l *lowerer) class(parent *models.Scope, n *classNode) {
	scope := &models.Scope{
		Kind:       models.ScopeClass,
		Name:       n.Name,
		Path:       appendPath(parent.Path, n.Name),
		Namespaces: parent.Namespaces,
		Loc:        l.loc(n.Pos),
	}
	l.items(scope, n.Items)
	parent.Declarations = append(parent.Declarations, models.Declaration{Scope: scope})
}

func (l *lowerer) define(n *defineNode) *models.DefineFunction {
	def := &models.DefineFunction{Name: n.Name, Loc: l.loc(n.Pos)}

	if n.Inline != nil {
		def.Callable.Inline = &models.Closure{
			Expression: unquote(*n.Inline),
			Operators:  l.overloads(n.Overloads),
		}
		return def
	}

	if n.Overloads != nil {
		l.fail(n.Overloads.Pos, "define_function with a closure name takes no overload block; declare the overloads on closure '"+n.Closure+"'", "{")
		return nil
	}
	def.Callable.ClosureName = n.Closure
	return def
}

func (l *lowerer) decorated(scope *models.Scope, n *decoratedNode) *models.DecoratedDefinition {
	fn := n.Function

	def := &models.DecoratedDefinition{Loc: l.loc(n.Pos)}
	for _, ref := range n.Decorators {
		args := joinTokens(ref.Args)
		if ref.Raw != nil {
			args = unquote(*ref.Raw)
		}
		def.Decorators = append(def.Decorators, models.DecoratorRef{
			Name: ref.Name,
			Args: args,
			Loc:  l.loc(ref.Pos),
		})
	}

	result := l.typeRef(fn.Result)
	if fn.Trailing != nil {
		if !result.IsAuto() {
			l.fail(fn.Pos, "a trailing return type requires 'auto' in front of the function name", result.String())
			return nil
		}
		result = l.typeRef(fn.Trailing)
	}

	qualifiers := models.OperatorQualifiers{Const: fn.Const, Ref: refKind(fn.Ref)}
	if !qualifiers.IsZero() && scope.Kind != models.ScopeClass {
		l.fail(fn.Pos, "only member functions can be cv- or ref-qualified", strings.TrimSpace(qualifiers.String()))
		return nil
	}

	tpl := l.templateHead(fn.Template)
	def.Function = models.FunctionDefinition{
		Name:       fn.Name,
		Template:   tpl,
		Params:     l.params(fn.Params, tpl),
		Return:     result,
		Qualifiers: qualifiers,
		Noexcept:   fn.Noexcept,
		Constexpr:  fn.Constexpr,
		Body:       strings.TrimSpace(unquote(fn.Body)),
		Loc:        l.loc(fn.Pos),
	}
	return def
}

func (l *lowerer) overloads(block *overloadBlock) []models.OverloadSignature {
	if block == nil {
		return nil
	}
	out := make([]models.OverloadSignature, 0, len(block.Overloads))
	for _, o := range block.Overloads {
		tpl := l.templateHead(o.Template)
		sig := models.OverloadSignature{
			Return:     l.typeRef(o.Return),
			Params:     l.params(o.Params, tpl),
			Template:   tpl,
			Qualifiers: models.OperatorQualifiers{Const: o.Const, Ref: refKind(o.Ref)},
			Noexcept:   o.Noexcept,
			Constexpr:  o.Constexpr,
			Loc:        l.loc(o.Pos),
		}
		sig.Templated = tpl != nil
		for _, p := range sig.Params {
			if p.Type.IsAuto() {
				sig.Templated = true
			}
		}
		out = append(out, sig)
	}
	return out
}

func (l *lowerer) params(nodes []*paramNode, tpl *models.TemplateParameterList) []models.Parameter {
	params := make([]models.Parameter, 0, len(nodes))
	for i, n := range nodes {
		t := l.typeRef(n.Type)
		params = append(params, models.Parameter{
			Type:     t,
			Category: models.Classify(t, tpl),
			Index:    i,
			Name:     n.Name,
		})
	}
	return params
}

func (l *lowerer) templateHead(n *templateHeadNode) *models.TemplateParameterList {
	if n == nil {
		return nil
	}

	tpl := &models.TemplateParameterList{Params: make([]models.TemplateParameter, 0, len(n.Params))}
	for _, p := range n.Params {
		tpl.Params = append(tpl.Params, l.templateParam(p))
	}

	if r := n.Requires; r != nil {
		if r.Raw != nil {
			tpl.Requires = strings.TrimSpace(unquote(*r.Raw))
		} else {
			var b strings.Builder
			b.WriteString(typeName(r.First))
			for _, term := range r.Rest {
				b.WriteString(" " + term.Op + " " + typeName(term.Name))
			}
			tpl.Requires = b.String()
		}
	}
	return tpl
}

func (l *lowerer) templateParam(n *templateParamNode) models.TemplateParameter {
	if n.Kind != "" {
		spelling := n.Kind
		if n.Pack {
			spelling += "..."
		}
		if n.Name != "" {
			spelling += " " + n.Name
		}
		if n.Default != nil {
			spelling += " = " + l.typeRef(n.Default).String()
		}
		return models.TemplateParameter{
			Kind:     models.TemplateTypeParam,
			Pack:     n.Pack,
			Name:     n.Name,
			Spelling: spelling,
		}
	}

	t := l.typeRef(n.Type)
	unpacked := t
	unpacked.Pack = false

	p := models.TemplateParameter{Pack: t.Pack, Name: n.DeclName}
	if isConstraint(unpacked) {
		p.Kind = models.TemplateTypeParam
		p.Type = unpacked.String()
	} else {
		p.Kind = models.TemplateNonTypeParam
		p.Type = unpacked.String()
	}
	p.Spelling = t.String() + " " + n.DeclName
	if len(n.DefaultValue) > 0 {
		p.Spelling += " = " + joinTokens(n.DefaultValue)
	}
	return p
}

// isConstraint reports whether a template parameter declared as "X Name" is a
// constrained type parameter rather than a non-type parameter of type X.
// Builtin scalars, placeholders and compound types declare values.
func isConstraint(t models.TypeRef) bool {
	if t.Const || t.Pointers > 0 || t.Ref != models.RefNone {
		return false
	}
	if t.IsScalar() || t.IsAuto() || strings.HasPrefix(t.Base, "decltype") {
		return false
	}
	return true
}

func (l *lowerer) typeRef(n *typeNode) models.TypeRef {
	if n == nil {
		return models.TypeRef{}
	}
	return models.TypeRef{
		Const:    n.Const || n.EastConst,
		Base:     typeName(n.Name),
		Pointers: len(n.Pointers),
		Ref:      refKind(n.Ref),
		Pack:     n.Pack,
	}
}

func typeName(n *typeNameNode) string {
	if n == nil {
		return ""
	}
	if n.Decltype != nil {
		return "decltype(" + strings.TrimSpace(unquote(*n.Decltype)) + ")"
	}
	if len(n.Builtin) > 0 {
		return strings.Join(n.Builtin, " ")
	}

	parts := make([]string, len(n.Parts))
	for i, p := range n.Parts {
		parts[i] = p.Ident
		if p.Args != nil {
			args := make([]string, len(p.Args))
			for j, a := range p.Args {
				if a.Type != nil {
					args[j] = (&lowerer{}).typeRef(a.Type).String()
				} else {
					args[j] = a.Number
				}
			}
			parts[i] += "<" + strings.Join(args, ", ") + ">"
		}
	}

	name := strings.Join(parts, "::")
	if n.Global {
		name = "::" + name
	}
	return name
}

func refKind(s string) models.RefKind {
	switch s {
	case "&":
		return models.RefLValue
	case "&&":
		return models.RefRValue
	default:
		return models.RefNone
	}
}

func appendPath(path []string, names ...string) []string {
	out := make([]string, 0, len(path)+len(names))
	out = append(out, path...)
	return append(out, names...)
}

// unquote strips the backticks of a raw token
func unquote(raw string) string {
	if len(raw) >= 2 && raw[0] == '`' && raw[len(raw)-1] == '`' {
		return raw[1 : len(raw)-1]
	}
	return raw
}

// joinTokens rebuilds source text from tokens, separating only adjacent words
func joinTokens(tokens []string) string {
	var b strings.Builder
	for i, tok := range tokens {
		if i > 0 && isWord(tokens[i-1]) && isWord(tok) {
			b.WriteByte(' ')
		}
		if tok == "," && i < len(tokens)-1 {
			b.WriteString(", ")
			continue
		}
		b.WriteString(tok)
	}
	return b.String()
}

func isWord(tok string) bool {
	if tok == "" {
		return false
	}
	c := tok[len(tok)-1]
	return c == '_' || c == '"' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9')
}
