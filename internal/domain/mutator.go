package domain

import (
	"bytes"
	"context"
	"fmt"
	"go/ast"
	"go/token"
	"log/slog"

	"gooze.dev/pkg/mutscore/internal/domain/mutagens"
	m "gooze.dev/pkg/mutscore/internal/model"
)

// Apply produces the mutant for mutation. The tree strategy is tried first; when
// it cannot locate or verify the site, the first token on the recorded line
// equal to the original token is replaced instead.
func (mg *mutagen) Apply(ctx context.Context, path m.Path, src []byte, mutation m.Mutation) (m.Mutant, error) {
	if err := ctx.Err(); err != nil {
		return m.Mutant{}, err
	}

	code, treeErr := mg.applyTree(ctx, path, src, mutation)
	if treeErr == nil {
		return m.Mutant{Mutation: mutation, Code: code, Strategy: m.StrategyTree}, nil
	}

	slog.Debug("Tree strategy failed, falling back to line strategy", "path", path, "id", mutation.ID, "error", treeErr)

	code, lineErr := mg.applyLine(ctx, path, src, mutation)
	if lineErr == nil {
		return m.Mutant{Mutation: mutation, Code: code, Strategy: m.StrategyLine}, nil
	}

	slog.Warn("Failed to apply mutation", "path", path, "id", mutation.ID, "tree", treeErr, "line", lineErr)

	return m.Mutant{}, fmt.Errorf("mutation %d %q -> %q at %d:%d: %w",
		mutation.ID, mutation.OriginalToken, mutation.MutatedToken, mutation.Line, mutation.Column, ErrTokenNotFound)
}

func (mg *mutagen) applyTree(ctx context.Context, path m.Path, src []byte, mutation m.Mutation) ([]byte, error) {
	offset, err := mg.locate(ctx, path, src, mutation.ID, mutation.Kind, mutation.OriginalToken)
	if err != nil {
		return nil, err
	}

	code := splice(src, offset, mutation.OriginalToken, mutation.MutatedToken)

	// The mutant must parse to the same site carrying the new token.
	if _, err := mg.locate(ctx, path, code, mutation.ID, mutation.Kind, mutation.MutatedToken); err != nil {
		return nil, fmt.Errorf("verify mutant: %w", err)
	}

	return code, nil
}

// locate walks src to the site with the given id and returns the byte offset
// of its token after checking that kind and text match.
func (mg *mutagen) locate(ctx context.Context, path m.Path, src []byte, id uint, kind m.MutationKind, text string) (int, error) {
	fset := token.NewFileSet()

	file, err := mg.Parse(ctx, fset, string(path), src)
	if err != nil {
		return 0, err
	}

	var (
		found bool
		site  mutagens.Site
	)

	mutagens.Walk(file, func(siteID uint, _ ast.Node, s mutagens.Site) bool {
		if siteID != id {
			return true
		}

		found, site = true, s

		return false
	})

	if !found {
		return 0, fmt.Errorf("no site with id %d", id)
	}

	if site.Kind != kind || site.Original != text {
		return 0, fmt.Errorf("site %d is %s %q, expected %s %q", id, site.Kind, site.Original, kind, text)
	}

	offset := fset.Position(site.Pos).Offset
	if offset < 0 || offset+len(text) > len(src) || !bytes.Equal(src[offset:offset+len(text)], []byte(text)) {
		return 0, fmt.Errorf("site %d token does not match source at offset %d", id, offset)
	}

	return offset, nil
}

func (mg *mutagen) applyLine(ctx context.Context, path m.Path, src []byte, mutation m.Mutation) ([]byte, error) {
	start, end, ok := lineBounds(src, mutation.Line)
	if !ok {
		return nil, fmt.Errorf("line %d out of range", mutation.Line)
	}

	for _, tok := range mg.Tokenize(src[start:end]) {
		if tok.Text != mutation.OriginalToken {
			continue
		}

		code := splice(src, start+tok.Offset, mutation.OriginalToken, mutation.MutatedToken)

		// The new token can fuse with its neighbours, e.g. "/" before "/*".
		if !mg.tokenAt(code[start:end-len(mutation.OriginalToken)+len(mutation.MutatedToken)], tok.Offset, mutation.MutatedToken) {
			return nil, fmt.Errorf("line mutant does not scan %q at column %d", mutation.MutatedToken, tok.Offset+1)
		}

		if _, err := mg.Parse(ctx, token.NewFileSet(), string(path), code); err != nil {
			return nil, fmt.Errorf("line mutant does not parse: %w", err)
		}

		return code, nil
	}

	return nil, fmt.Errorf("token %q not on line %d", mutation.OriginalToken, mutation.Line)
}

func (mg *mutagen) tokenAt(line []byte, offset int, text string) bool {
	for _, tok := range mg.Tokenize(line) {
		if tok.Offset == offset {
			return tok.Text == text
		}
	}

	return false
}

// lineBounds returns the byte range of the 1-based line, excluding its newline.
func lineBounds(src []byte, line int) (int, int, bool) {
	if line < 1 {
		return 0, 0, false
	}

	start := 0

	for current := 1; current < line; current++ {
		idx := bytes.IndexByte(src[start:], '\n')
		if idx < 0 {
			return 0, 0, false
		}

		start += idx + 1
	}

	end := len(src)
	if idx := bytes.IndexByte(src[start:], '\n'); idx >= 0 {
		end = start + idx
	}

	return start, end, true
}

func splice(src []byte, offset int, original, mutated string) []byte {
	out := make([]byte, 0, len(src)-len(original)+len(mutated))
	out = append(out, src[:offset]...)
	out = append(out, mutated...)
	out = append(out, src[offset+len(original):]...)

	return out
}
