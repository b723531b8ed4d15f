package domain

import (
	"fmt"
	"time"

	m "gooze.dev/pkg/mutscore/internal/model"
)

// Classify maps one test execution to an outcome label. runErr set means the
// execution produced no result at all and wins over everything else, then a
// timeout, then the exit code.
func Classify(execution m.Execution, runErr error) m.OutcomeLabel {
	switch {
	case runErr != nil:
		return m.Error
	case execution.TimedOut:
		return m.Timeout
	case execution.ExitCode != 0:
		return m.Killed
	default:
		return m.Survived
	}
}

func outcomeFor(mutation m.Mutation, execution m.Execution, runErr error) m.MutationOutcome {
	outcome := m.MutationOutcome{
		MutationID: mutation.ID,
		Label:      Classify(execution, runErr),
		Duration:   execution.Duration,
	}

	switch outcome.Label {
	case m.Error:
		outcome.Detail = runErr.Error()
	case m.Timeout:
		outcome.Detail = fmt.Sprintf("timed out after %s", execution.Duration.Round(time.Millisecond))
	case m.Killed:
		outcome.Detail = fmt.Sprintf("exit status %d", execution.ExitCode)
	case m.Survived:
	}

	return outcome
}
