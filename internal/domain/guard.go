package domain

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"gooze.dev/pkg/mutscore/internal/adapter"
	m "gooze.dev/pkg/mutscore/internal/model"
)

// JournalSuffix marks the on-disk copy of an artifact taken before a mutant is installed.
const JournalSuffix = ".mutscore-orig"

// PatchGuard installs mutants over the artifact and guarantees the original
// bytes are back in place when it returns.
type PatchGuard interface {
	// WithMutant writes mutant over path, runs body, and restores the original. The
	// restore happens on every exit path, including cancellation and panics.
	// A failed restore is reported as *RestoreError.
	WithMutant(ctx context.Context, path m.Path, mutant []byte, body func(context.Context) error) error

	// Recover restores path from a journal left behind by an interrupted run.
	// It reports whether a journal was found.
	Recover(ctx context.Context, path m.Path) (bool, error)
}

type patchGuard struct {
	fs adapter.SourceFSAdapter
}

// NewPatchGuard constructs a PatchGuard writing through fsAdapter.
func NewPatchGuard(fsAdapter adapter.SourceFSAdapter) PatchGuard {
	return &patchGuard{fs: fsAdapter}
}

// JournalPath returns the journal location for path: a hidden sibling file.
func JournalPath(path m.Path) m.Path {
	dir, base := filepath.Split(string(path))
	return m.Path(filepath.Join(dir, "."+base+JournalSuffix))
}

func (g *patchGuard) WithMutant(ctx context.Context, path m.Path, mutant []byte, body func(context.Context) error) (err error) {
	if err := ctx.Err(); err != nil {
		return err
	}

	info, err := g.fs.FileInfo(ctx, path)
	if err != nil {
		return fmt.Errorf("%w: stat %s: %w", ErrInstallMutant, path, err)
	}

	perm := info.Mode().Perm()

	original, err := g.fs.ReadFile(ctx, path)
	if err != nil {
		return fmt.Errorf("%w: read %s: %w", ErrInstallMutant, path, err)
	}

	journal := JournalPath(path)
	if err := g.fs.WriteFile(ctx, journal, original, perm); err != nil {
		return fmt.Errorf("%w: write journal %s: %w", ErrInstallMutant, journal, err)
	}

	defer func() {
		recovered := recover()

		if restoreErr := g.restore(ctx, path, journal, original, perm); restoreErr != nil {
			err = errors.Join(err, restoreErr)
		}

		if recovered != nil {
			panic(recovered)
		}
	}()

	if err := g.fs.WriteFile(ctx, path, mutant, perm); err != nil {
		return fmt.Errorf("%w: %s: %w", ErrInstallMutant, path, err)
	}

	return body(ctx)
}

// restore runs detached from ctx so a cancelled run still puts the original back.
func (g *patchGuard) restore(ctx context.Context, path, journal m.Path, original []byte, perm fs.FileMode) error {
	ctx = context.WithoutCancel(ctx)

	if err := g.fs.WriteFile(ctx, path, original, perm); err != nil {
		slog.Error("Failed to restore artifact", "path", path, "journal", journal, "error", err)
		return &RestoreError{Path: path, Journal: journal, Err: err}
	}

	current, err := g.fs.ReadFile(ctx, path)
	if err != nil {
		slog.Error("Failed to read back restored artifact", "path", path, "error", err)
		return &RestoreError{Path: path, Journal: journal, Err: err}
	}

	if !bytes.Equal(current, original) {
		slog.Error("Restored artifact differs from original", "path", path, "journal", journal)
		return &RestoreError{Path: path, Journal: journal, Err: errors.New("content differs after restore")}
	}

	if err := g.fs.Remove(ctx, journal); err != nil {
		slog.Warn("Failed to remove journal", "journal", journal, "error", err)
	}

	return nil
}

func (g *patchGuard) Recover(ctx context.Context, path m.Path) (bool, error) {
	journal := JournalPath(path)

	if _, err := g.fs.FileInfo(ctx, journal); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return false, nil
		}

		return false, err
	}

	original, err := g.fs.ReadFile(ctx, journal)
	if err != nil {
		return true, &RestoreError{Path: path, Journal: journal, Err: err}
	}

	perm := fs.FileMode(0o644)
	if info, err := g.fs.FileInfo(ctx, path); err == nil {
		perm = info.Mode().Perm()
	}

	slog.Warn("Restoring artifact from journal of an interrupted run", "path", path, "journal", journal)

	if err := g.restore(ctx, path, journal, original, perm); err != nil {
		return true, err
	}

	return true, nil
}
