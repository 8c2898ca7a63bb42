package parser

import (
	stderrors "errors"
	"os"
	"strings"

	"github.com/alecthomas/participle/v2"

	"github.com/toyz/defn/internal/errors"
	"github.com/toyz/defn/internal/models"
)

// Parser reads .defn declaration files into units
type Parser struct {
	grammar *participle.Parser[fileNode]
}

// New creates a parser. A Parser is safe for concurrent use.
func New() *Parser {
	return &Parser{grammar: newGrammar()}
}

// Parse parses src as the contents of filename
func (p *Parser) Parse(filename string, src []byte) (*models.Unit, error) {
	tree, err := p.grammar.ParseBytes(filename, src)
	if err != nil {
		return nil, syntaxError(filename, err)
	}
	return lower(filename, tree)
}

// ParseFile reads and parses the file at path
func (p *Parser) ParseFile(path string) (*models.Unit, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.WrapFileSystemError("read", path, err)
	}
	return p.Parse(path, src)
}

// syntaxError converts a participle failure into a located SyntaxError
func syntaxError(filename string, err error) error {
	var perr participle.Error
	if !stderrors.As(err, &perr) {
		return errors.NewSyntaxError(models.SourceLocation{File: filename}, err.Error(), "")
	}

	pos := perr.Position()
	loc := models.SourceLocation{File: filename, Line: pos.Line, Column: pos.Column}

	token := ""
	var unexpected *participle.UnexpectedTokenError
	if stderrors.As(err, &unexpected) {
		token = unexpected.Unexpected.Value
	}

	syntaxErr := errors.NewSyntaxError(loc, perr.Message(), token)
	if strings.Contains(strings.ToLower(perr.Message()), "<raw>") {
		syntaxErr.WithSuggestion("C++ expressions and bodies are written between backticks")
	}
	return syntaxErr
}
