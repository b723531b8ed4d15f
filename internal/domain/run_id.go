package domain

import (
	"context"
	"encoding/json"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"gooze.dev/pkg/mutscore/internal/adapter"
	m "gooze.dev/pkg/mutscore/internal/model"
)

// RunDirLayout is the timestamp layout of run directories produced by the
// experiment harness.
const RunDirLayout = "20060102_150405"

// RunMetadataFile holds the run id when the run directory is not timestamped.
const RunMetadataFile = ".run_metadata.json"

type runMetadata struct {
	RunID string `json:"run_id"`
}

// ResolveRunID picks the run identifier: explicit wins; then a timestamped
// test directory or parent; then run_id from a metadata file in either of
// them; otherwise a fresh UUID.
func ResolveRunID(ctx context.Context, fs adapter.SourceFSAdapter, explicit string, testPath m.Path) string {
	if explicit != "" {
		return explicit
	}

	for _, dir := range runDirCandidates(testPath) {
		base := filepath.Base(dir)
		if _, err := time.Parse(RunDirLayout, base); err == nil {
			return base
		}
	}

	for _, dir := range runDirCandidates(testPath) {
		data, err := fs.ReadFile(ctx, fs.JoinPath(ctx, dir, RunMetadataFile))
		if err != nil {
			continue
		}

		var meta runMetadata
		if err := json.Unmarshal(data, &meta); err != nil {
			slog.Warn("Ignoring malformed run metadata", "dir", dir, "error", err)
			continue
		}

		if meta.RunID != "" {
			return meta.RunID
		}
	}

	return uuid.NewString()
}

func runDirCandidates(testPath m.Path) []string {
	if testPath == "" || isPackagePattern(testPath) {
		return nil
	}

	abs, err := filepath.Abs(string(testPath))
	if err != nil {
		return nil
	}

	if strings.HasSuffix(abs, ".go") {
		abs = filepath.Dir(abs)
	}

	return []string{abs, filepath.Dir(abs)}
}
