// Package domain contains the core mutation testing engine.
package domain

import (
	"context"
	"fmt"
	"go/ast"
	"go/token"
	"log/slog"

	"gooze.dev/pkg/mutscore/internal/adapter"
	"gooze.dev/pkg/mutscore/internal/domain/mutagens"
	m "gooze.dev/pkg/mutscore/internal/model"
)

// Mutagen discovers mutation sites in Go source and produces mutants from them.
type Mutagen interface {
	// Discover returns every mutation in src in traversal order. The result
	// depends only on src, so repeated calls yield identical catalogs.
	Discover(ctx context.Context, path m.Path, src []byte) ([]m.Mutation, error)

	// Apply returns src with exactly the token of mutation replaced.
	Apply(ctx context.Context, path m.Path, src []byte, mutation m.Mutation) (m.Mutant, error)

	// ApplyID discovers src and applies the mutation with the given id.
	ApplyID(ctx context.Context, path m.Path, src []byte, id uint) (m.Mutant, error)
}

type mutagen struct {
	adapter.GoFileAdapter
}

// NewMutagen creates a new Mutagen instance.
func NewMutagen(goFileAdapter adapter.GoFileAdapter) Mutagen {
	return &mutagen{GoFileAdapter: goFileAdapter}
}

func (mg *mutagen) Discover(ctx context.Context, path m.Path, src []byte) ([]m.Mutation, error) {
	fset := token.NewFileSet()

	file, err := mg.Parse(ctx, fset, string(path), src)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}

		slog.Error("Failed to parse artifact", "path", path, "error", err)

		return nil, &ParseError{Path: path, Err: err}
	}

	var mutations []m.Mutation

	mutagens.Walk(file, func(id uint, _ ast.Node, site mutagens.Site) bool {
		pos := fset.Position(site.Pos)

		mutations = append(mutations, m.Mutation{
			ID:            id,
			Kind:          site.Kind,
			OriginalToken: site.Original,
			MutatedToken:  site.Mutated,
			Line:          pos.Line,
			Column:        pos.Column,
			Offset:        pos.Offset,
		})

		return true
	})

	slog.Debug("Discovered mutations", "path", path, "count", len(mutations))

	return mutations, nil
}

func (mg *mutagen) ApplyID(ctx context.Context, path m.Path, src []byte, id uint) (m.Mutant, error) {
	catalog, err := mg.Discover(ctx, path, src)
	if err != nil {
		return m.Mutant{}, err
	}

	mutation, err := FindMutation(catalog, id)
	if err != nil {
		return m.Mutant{}, err
	}

	return mg.Apply(ctx, path, src, mutation)
}

// FindMutation returns the catalog entry with the given id.
func FindMutation(catalog []m.Mutation, id uint) (m.Mutation, error) {
	if id == 0 || id > uint(len(catalog)) {
		return m.Mutation{}, fmt.Errorf("%w: %d (catalog has %d)", ErrUnknownMutation, id, len(catalog))
	}

	return catalog[id-1], nil
}
