package domain

import (
	"context"
	"errors"
	"fmt"
	"go/token"
	"log/slog"
	"path/filepath"
	"strings"

	"gooze.dev/pkg/mutscore/internal/adapter"
	m "gooze.dev/pkg/mutscore/internal/model"
)

const recursiveSuffix = "/..."

func isPackagePattern(path m.Path) bool {
	return strings.Contains(string(path), "...")
}

// ResolveTarget builds the test target for artifact. An empty tests path
// selects the artifact's own package. An empty workDir selects the module
// root of the artifact, or its directory outside a module. Package patterns
// inside the module become import path patterns.
func ResolveTarget(ctx context.Context, fs adapter.SourceFSAdapter, artifact, tests, workDir m.Path) (m.TestTarget, error) {
	if tests == "" {
		tests = m.Path(filepath.Dir(string(artifact)))
	}

	root, module, err := fs.FindProjectRoot(ctx, artifact)
	if err != nil && !errors.Is(err, adapter.ErrNoModule) {
		return m.TestTarget{}, err
	}

	if workDir == "" {
		workDir = root
		if root == "" {
			workDir = m.Path(filepath.Dir(string(artifact)))
		}
	}

	absWorkDir, err := filepath.Abs(string(workDir))
	if err != nil {
		return m.TestTarget{}, err
	}

	pattern := isPackagePattern(tests)
	dir := strings.TrimSuffix(string(tests), recursiveSuffix)

	if !pattern && strings.HasSuffix(dir, ".go") {
		dir = filepath.Dir(dir)
	}

	target := m.TestTarget{Path: tests, WorkDir: m.Path(absWorkDir), Module: module}

	if pattern && module != "" {
		if importPath, ok := importPathFor(ctx, fs, root, module, m.Path(absWorkDir), dir); ok {
			target.Arg = importPath + recursiveSuffix
			return target, nil
		}
	}

	arg, err := targetArg(ctx, fs, m.Path(absWorkDir), dir)
	if err != nil {
		return m.TestTarget{}, err
	}

	if pattern {
		arg = strings.TrimSuffix(arg, "/") + recursiveSuffix
	}

	target.Arg = arg

	return target, nil
}

// importPathFor maps dir to its import path in module. It fails when dir or
// the working directory lies outside the module root, where the go command
// would not resolve the module's import paths.
func importPathFor(ctx context.Context, fs adapter.SourceFSAdapter, root m.Path, module string, workDir m.Path, dir string) (string, bool) {
	if !within(ctx, fs, root, workDir) {
		return "", false
	}

	absDir, err := filepath.Abs(dir)
	if err != nil || !within(ctx, fs, root, m.Path(absDir)) {
		return "", false
	}

	rel, err := fs.RelPath(ctx, root, m.Path(absDir))
	if err != nil {
		return "", false
	}

	if rel == "." {
		return module, true
	}

	return module + "/" + filepath.ToSlash(string(rel)), true
}

func within(ctx context.Context, fs adapter.SourceFSAdapter, root, path m.Path) bool {
	rel, err := fs.RelPath(ctx, root, path)
	return err == nil && rel != ".." && !strings.HasPrefix(string(rel), ".."+string(filepath.Separator))
}

func targetArg(ctx context.Context, fs adapter.SourceFSAdapter, workDir m.Path, dir string) (string, error) {
	absDir, err := filepath.Abs(dir)
	if err != nil {
		return "", err
	}

	rel, err := fs.RelPath(ctx, workDir, m.Path(absDir))
	if err != nil || strings.HasPrefix(string(rel), "..") {
		// Outside the working directory: hand the absolute path to the command.
		return filepath.ToSlash(absDir), nil //nolint:nilerr
	}

	if rel == "." {
		return ".", nil
	}

	return "./" + filepath.ToSlash(string(rel)), nil
}

// ValidateTestTarget checks that a local test location holds at least one
// parseable *_test.go file. Package patterns are left to the test command.
func ValidateTestTarget(ctx context.Context, fs adapter.SourceFSAdapter, goFile adapter.GoFileAdapter, tests m.Path) error {
	if isPackagePattern(tests) {
		return nil
	}

	info, err := fs.FileInfo(ctx, tests)
	if err != nil {
		return fmt.Errorf("%w: %s: %w", ErrNoValidTests, tests, err)
	}

	candidates := []m.Path{tests}

	if info.IsDir() {
		candidates, err = fs.ListFiles(ctx, tests, "*_test.go")
		if err != nil {
			return fmt.Errorf("list test files in %s: %w", tests, err)
		}
	}

	valid := 0

	for _, candidate := range candidates {
		src, err := fs.ReadFile(ctx, candidate)
		if err != nil {
			slog.Warn("Skipping unreadable test file", "path", candidate, "error", err)
			continue
		}

		if _, err := goFile.Parse(ctx, token.NewFileSet(), string(candidate), src); err != nil {
			slog.Warn("Skipping test file that does not parse", "path", candidate, "error", err)
			continue
		}

		valid++
	}

	if valid == 0 {
		return fmt.Errorf("%w in %s", ErrNoValidTests, tests)
	}

	slog.Debug("Validated test target", "path", tests, "files", valid)

	return nil
}
