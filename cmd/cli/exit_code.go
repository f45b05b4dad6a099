package cli

import (
	"errors"

	"github.com/temirov/pageaudit/internal/audit"
	"github.com/temirov/pageaudit/internal/rules"
)

// Process exit codes.
const (
	ExitCodeSuccess        = 0
	ExitCodeAuditFailed    = 1
	ExitCodeInfrastructure = 2
)

// ExitCode maps an execution error to the process exit code. Infrastructure
// errors take precedence over failing audits.
func ExitCode(executionError error) int {
	switch {
	case executionError == nil:
		return ExitCodeSuccess
	case errors.Is(executionError, rules.ErrConfigNotFound),
		errors.Is(executionError, rules.ErrConfigMalformed),
		errors.Is(executionError, rules.ErrSourceUnreadable):
		return ExitCodeInfrastructure
	case errors.Is(executionError, audit.ErrAuditFailed):
		return ExitCodeAuditFailed
	default:
		return ExitCodeInfrastructure
	}
}
