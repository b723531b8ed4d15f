package adapter

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	m "gooze.dev/pkg/mutscore/internal/model"
)

// Supported summary encodings.
const (
	FormatJSON = "json"
	FormatYAML = "yaml"
)

// ReportStore persists mutation summaries for downstream aggregation.
type ReportStore interface {
	SaveSummary(ctx context.Context, path m.Path, summary m.MutationSummary, format string) error
	LoadSummary(ctx context.Context, path m.Path) (m.MutationSummary, error)
}

// LocalReportStore stores summaries as JSON or YAML files.
type LocalReportStore struct{}

// NewReportStore constructs a LocalReportStore.
func NewReportStore() *LocalReportStore {
	return &LocalReportStore{}
}

// FormatForPath picks an encoding from the file extension, falling back to JSON.
func FormatForPath(path m.Path) string {
	switch strings.ToLower(filepath.Ext(string(path))) {
	case ".yaml", ".yml":
		return FormatYAML
	default:
		return FormatJSON
	}
}

// SaveSummary writes summary to path, creating parent directories. An empty
// format is derived from the path.
func (s *LocalReportStore) SaveSummary(ctx context.Context, path m.Path, summary m.MutationSummary, format string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if format == "" {
		format = FormatForPath(path)
	}

	data, err := encodeSummary(summary, format)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(string(path)), 0o750); err != nil {
		return fmt.Errorf("create report directory: %w", err)
	}

	if err := os.WriteFile(string(path), data, 0o600); err != nil {
		return fmt.Errorf("write summary: %w", err)
	}

	return nil
}

// LoadSummary reads a summary previously written by SaveSummary.
func (s *LocalReportStore) LoadSummary(ctx context.Context, path m.Path) (m.MutationSummary, error) {
	if err := ctx.Err(); err != nil {
		return m.MutationSummary{}, err
	}

	// #nosec G304 - path is the user's own report file
	data, err := os.ReadFile(string(path))
	if err != nil {
		return m.MutationSummary{}, fmt.Errorf("read summary: %w", err)
	}

	var summary m.MutationSummary

	switch FormatForPath(path) {
	case FormatYAML:
		err = yaml.Unmarshal(data, &summary)
	default:
		err = json.Unmarshal(data, &summary)
	}

	if err != nil {
		return m.MutationSummary{}, fmt.Errorf("decode summary %s: %w", path, err)
	}

	return summary, nil
}

func encodeSummary(summary m.MutationSummary, format string) ([]byte, error) {
	switch format {
	case FormatJSON:
		data, err := json.MarshalIndent(summary, "", "  ")
		if err != nil {
			return nil, err
		}

		return append(data, '\n'), nil
	case FormatYAML:
		return yaml.Marshal(summary)
	default:
		return nil, fmt.Errorf("unsupported summary format %q", format)
	}
}
