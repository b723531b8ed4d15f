package domain

import (
	"errors"
	"fmt"

	m "gooze.dev/pkg/mutscore/internal/model"
)

var (
	// ErrArtifactNotFound is returned when the file under test does not exist.
	ErrArtifactNotFound = errors.New("artifact not found")
	// ErrNoValidTests is returned when a test directory holds no usable test files.
	ErrNoValidTests = errors.New("no valid test files")
	// ErrTokenNotFound is returned when neither apply strategy can locate the original token.
	ErrTokenNotFound = errors.New("original token not found")
	// ErrUnknownMutation is returned when a mutation id is not in the catalog.
	ErrUnknownMutation = errors.New("unknown mutation id")
	// ErrInstallMutant is returned when the mutant could not be written over the artifact.
	ErrInstallMutant = errors.New("install mutant")
)

// ParseError reports an artifact that is not syntactically valid Go.
type ParseError struct {
	Path m.Path
	Err  error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse %s: %v", e.Path, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// RestoreError reports an artifact that could not be returned to its original
// bytes. The run must stop: every later result would be measured against a
// corrupted file. Journal names the copy of the original left on disk.
type RestoreError struct {
	Path    m.Path
	Journal m.Path
	Err     error
}

func (e *RestoreError) Error() string {
	return fmt.Sprintf("restore %s (original kept at %s): %v", e.Path, e.Journal, e.Err)
}

func (e *RestoreError) Unwrap() error {
	return e.Err
}
