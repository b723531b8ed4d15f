package domain

import (
	"os"
	"path/filepath"
	"testing"

	"gooze.dev/pkg/mutscore/internal/adapter"
	m "gooze.dev/pkg/mutscore/internal/model"
)

func examplePath(t *testing.T, elem ...string) m.Path {
	t.Helper()

	path, err := filepath.Abs(filepath.Join(append([]string{"..", "..", "examples"}, elem...)...))
	if err != nil {
		t.Fatalf("abs: %v", err)
	}

	return m.Path(path)
}

func readFileBytes(t *testing.T, path m.Path) []byte {
	t.Helper()

	data, err := os.ReadFile(string(path))
	if err != nil {
		t.Fatalf("read %s: %v", path, err)
	}

	return data
}

func writeFile(t *testing.T, path string, content string) m.Path {
	t.Helper()

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}

	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}

	return m.Path(path)
}

// copyExample copies an example package into a fresh temp dir and returns the
// copy of the named file.
func copyExample(t *testing.T, name, file string) m.Path {
	t.Helper()

	dir := filepath.Join(t.TempDir(), name)

	entries, err := os.ReadDir(string(examplePath(t, name)))
	if err != nil {
		t.Fatalf("read example %s: %v", name, err)
	}

	for _, entry := range entries {
		data := readFileBytes(t, examplePath(t, name, entry.Name()))
		writeFile(t, filepath.Join(dir, entry.Name()), string(data))
	}

	return m.Path(filepath.Join(dir, file))
}

func newTestMutagen() Mutagen {
	return NewMutagen(adapter.NewLocalGoFileAdapter())
}
