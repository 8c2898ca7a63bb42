package parser

import (
	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"
)

// defnLexer tokenizes .defn files. C++ that the tool never needs to understand
// (closure expressions, bodies, complex constraints) is written between backticks.
var defnLexer = lexer.MustSimple([]lexer.SimpleRule{
	{Name: "Comment", Pattern: `//[^\n]*`},
	{Name: "BlockComment", Pattern: `/\*(?s:.)*?\*/`},
	{Name: "Raw", Pattern: "`[^`]*`"},
	{Name: "String", Pattern: `"(\\.|[^"\\])*"`},
	{Name: "Ellipsis", Pattern: `\.\.\.`},
	{Name: "Scope", Pattern: `::`},
	{Name: "Arrow", Pattern: `->`},
	{Name: "AndAnd", Pattern: `&&`},
	{Name: "OrOr", Pattern: `\|\|`},
	{Name: "Ident", Pattern: `[a-zA-Z_][a-zA-Z0-9_]*`},
	{Name: "Number", Pattern: `[0-9][0-9a-zA-Z_.']*`},
	{Name: "Punct", Pattern: `[@;{}()<>,=&*\[\]+\-!|.%/^~?:]`},
	{Name: "Whitespace", Pattern: `\s+`},
})

func newGrammar() *participle.Parser[fileNode] {
	return participle.MustBuild[fileNode](
		participle.Lexer(defnLexer),
		participle.Elide("Whitespace", "Comment", "BlockComment"),
		participle.UseLookahead(2),
	)
}

type fileNode struct {
	Items []*itemNode `parser:"@@*"`
}

type itemNode struct {
	Decorator *decoratorDeclNode `parser:"  @@"`
	Closure   *closureDeclNode   `parser:"| @@"`
	Namespace *namespaceNode     `parser:"| @@"`
	Class     *classNode         `parser:"| @@"`
	Define    *defineNode        `parser:"| @@"`
	Decorated *decoratedNode     `parser:"| @@"`
}

// decorator traced = `::trace::traced` as preserve;
type decoratorDeclNode struct {
	Pos        lexer.Position
	Name       string `parser:"'decorator' @Ident '='"`
	Expression string `parser:"@Raw"`
	Kind       string `parser:"'as' @Ident ';'"`
}

// closure twice = `[](auto f) { ... }` { overloads }
type closureDeclNode struct {
	Pos        lexer.Position
	Name       string         `parser:"'closure' @Ident '='"`
	Expression string         `parser:"@Raw"`
	Overloads  *overloadBlock `parser:"( @@ | ';' )"`
}

type namespaceNode struct {
	Pos   lexer.Position
	Names []string    `parser:"'namespace' @Ident ( '::' @Ident )*"`
	Items []*itemNode `parser:"'{' @@* '}'"`
}

type classNode struct {
	Pos   lexer.Position
	Kind  string      `parser:"@( 'struct' | 'class' )"`
	Name  string      `parser:"@Ident"`
	Items []*itemNode `parser:"'{' @@* '}' ';'?"`
}

// define_function(name, `expr`) { overloads } or define_function(name, closure);
type defineNode struct {
	Pos       lexer.Position
	Name      string         `parser:"'define_function' '(' @Ident ','"`
	Inline    *string        `parser:"( @Raw"`
	Closure   string         `parser:"| @Ident ) ')'"`
	Overloads *overloadBlock `parser:"( @@ | ';' )"`
}

type overloadBlock struct {
	Pos       lexer.Position
	Overloads []*overloadNode `parser:"'{' @@* '}' ';'?"`
}

// [template <...>] [constexpr] auto operator()(params) [const] [&|&&] [noexcept] -> R;
type overloadNode struct {
	Pos       lexer.Position
	Template  *templateHeadNode `parser:"@@?"`
	Constexpr bool              `parser:"@'constexpr'?"`
	Params    []*paramNode      `parser:"'auto' 'operator' '(' ')' '(' ( @@ ( ',' @@ )* )? ')'"`
	Const     bool              `parser:"@'const'?"`
	Ref       string            `parser:"@( '&&' | '&' )?"`
	Noexcept  bool              `parser:"@'noexcept'?"`
	Return    *typeNode         `parser:"'->' @@ ';'"`
}

type decoratedNode struct {
	Pos        lexer.Position
	Decorators []*decoratorRefNode `parser:"@@+"`
	Function   *functionNode       `parser:"@@"`
}

// @name, @name(args) or @name(`args`)
type decoratorRefNode struct {
	Pos  lexer.Position
	Name string   `parser:"'@' @Ident"`
	Raw  *string  `parser:"( '(' ( @Raw"`
	Args []string `parser:"| @( Ident | Number | String | Scope | Ellipsis | AndAnd | OrOr | '<' | '>' | ',' | '{' | '}' | '.' | '*' | '&' | '+' | '-' | '!' | '[' | ']' )* ) ')' )?"`
}

type functionNode struct {
	Pos       lexer.Position
	Template  *templateHeadNode `parser:"@@?"`
	Constexpr bool              `parser:"@'constexpr'?"`
	Result    *typeNode         `parser:"@@"`
	Name      string            `parser:"@Ident"`
	Params    []*paramNode      `parser:"'(' ( @@ ( ',' @@ )* )? ')'"`
	Const     bool              `parser:"@'const'?"`
	Ref       string            `parser:"@( '&&' | '&' )?"`
	Noexcept  bool              `parser:"@'noexcept'?"`
	Trailing  *typeNode         `parser:"( '->' @@ )?"`
	Body      string            `parser:"'{' @Raw? '}'"`
}

type templateHeadNode struct {
	Pos      lexer.Position
	Params   []*templateParamNode `parser:"'template' '<' ( @@ ( ',' @@ )* )? '>'"`
	Requires *constraintNode      `parser:"( 'requires' @@ )?"`
}

// class T, typename... Ts, std::size_t N = 0, std::integral T
type templateParamNode struct {
	Kind         string    `parser:"(   @( 'class' | 'typename' )"`
	Pack         bool      `parser:"    @'...'?"`
	Name         string    `parser:"    @Ident?"`
	Default      *typeNode `parser:"    ( '=' @@ )?"`
	Type         *typeNode `parser:"  ) | ( @@"`
	DeclName     string    `parser:"    @Ident"`
	DefaultValue []string  `parser:"    ( '=' @( Number | Ident | Scope )+ )? )"`
}

// requires `expr` or requires C<T> && D<T>
type constraintNode struct {
	Raw   *string           `parser:"  @Raw"`
	First *typeNameNode     `parser:"| @@"`
	Rest  []*constraintTerm `parser:"  @@*"`
}

type constraintTerm struct {
	Op   string        `parser:"@( '&&' | '||' )"`
	Name *typeNameNode `parser:"@@"`
}

type paramNode struct {
	Pos  lexer.Position
	Type *typeNode `parser:"@@"`
	Name string    `parser:"@Ident?"`
}

type typeNode struct {
	Const     bool          `parser:"@'const'?"`
	Name      *typeNameNode `parser:"@@"`
	EastConst bool          `parser:"@'const'?"`
	Pointers  []string      `parser:"@'*'*"`
	Ref       string        `parser:"@( '&&' | '&' )?"`
	Pack      bool          `parser:"@'...'?"`
}

type typeNameNode struct {
	Decltype *string         `parser:"  'decltype' '(' @( 'auto' | Raw | Ident ) ')'"`
	Builtin  []string        `parser:"| @( 'unsigned' | 'signed' | 'short' | 'long' | 'int' | 'char' | 'wchar_t' | 'char8_t' | 'char16_t' | 'char32_t' | 'bool' | 'float' | 'double' | 'void' | 'auto' )+"`
	Global   bool            `parser:"| @'::'?"`
	Parts    []*namePartNode `parser:"  @@ ( '::' @@ )*"`
}

type namePartNode struct {
	Ident string             `parser:"@Ident"`
	Args  []*templateArgNode `parser:"( '<' ( @@ ( ',' @@ )* )? '>' )?"`
}

type templateArgNode struct {
	Number string    `parser:"  @Number"`
	Type   *typeNode `parser:"| @@"`
}
