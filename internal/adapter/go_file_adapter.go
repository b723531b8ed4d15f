package adapter

import (
	"context"
	"go/ast"
	"go/parser"
	"go/scanner"
	"go/token"
)

// GoFileAdapter encapsulates Go-specific parsing and lexing so the domain layer
// can focus on mutation rules while delegating compilation details to an
// infrastructure component.
type GoFileAdapter interface {
	// Parse builds an AST using the provided file set and source bytes.
	Parse(ctx context.Context, fileSet *token.FileSet, filename string, src []byte) (*ast.File, error)

	// Tokenize splits a single source line into Go tokens. It never fails:
	// illegal input yields ILLEGAL tokens and scanning continues.
	Tokenize(line []byte) []LineToken
}

// LineToken is one lexical token found on a line.
type LineToken struct {
	Offset int
	Text   string
	Tok    token.Token
}

// LocalGoFileAdapter provides a concrete GoFileAdapter backed by go/parser.
type LocalGoFileAdapter struct{}

// NewLocalGoFileAdapter constructs a LocalGoFileAdapter.
func NewLocalGoFileAdapter() *LocalGoFileAdapter {
	return &LocalGoFileAdapter{}
}

// Parse builds an AST for the provided filename/source pair.
func (a *LocalGoFileAdapter) Parse(ctx context.Context, fileSet *token.FileSet, filename string, src []byte) (*ast.File, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	return parser.ParseFile(fileSet, filename, src, parser.ParseComments|parser.AllErrors)
}

// Tokenize scans line with go/scanner, skipping comments and the automatic
// semicolons the scanner inserts at line ends.
func (a *LocalGoFileAdapter) Tokenize(line []byte) []LineToken {
	fset := token.NewFileSet()
	file := fset.AddFile("", fset.Base(), len(line))

	var s scanner.Scanner

	s.Init(file, line, func(token.Position, string) {}, 0)

	var tokens []LineToken

	for {
		pos, tok, lit := s.Scan()
		if tok == token.EOF {
			break
		}

		if tok == token.SEMICOLON && lit == "\n" {
			continue
		}

		text := lit
		if text == "" {
			text = tok.String()
		}

		tokens = append(tokens, LineToken{
			Offset: file.Offset(pos),
			Text:   text,
			Tok:    tok,
		})
	}

	return tokens
}
