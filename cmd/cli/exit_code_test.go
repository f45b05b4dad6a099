package cli_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/multierr"

	"github.com/temirov/pageaudit/cmd/cli"
	"github.com/temirov/pageaudit/internal/audit"
	"github.com/temirov/pageaudit/internal/rules"
)

func TestExitCode(testInstance *testing.T) {
	testCases := []struct {
		name             string
		executionError   error
		expectedExitCode int
	}{
		{name: "success", executionError: nil, expectedExitCode: cli.ExitCodeSuccess},
		{name: "audit_failed", executionError: fmt.Errorf("%w: route /legal/terms", audit.ErrAuditFailed), expectedExitCode: cli.ExitCodeAuditFailed},
		{name: "config_not_found", executionError: fmt.Errorf("route /x: %w", rules.ErrConfigNotFound), expectedExitCode: cli.ExitCodeInfrastructure},
		{name: "config_malformed", executionError: rules.ErrConfigMalformed, expectedExitCode: cli.ExitCodeInfrastructure},
		{name: "source_unreadable", executionError: rules.ErrSourceUnreadable, expectedExitCode: cli.ExitCodeInfrastructure},
		{
			name:             "infrastructure_dominates",
			executionError:   multierr.Combine(audit.ErrAuditFailed, rules.ErrSourceUnreadable),
			expectedExitCode: cli.ExitCodeInfrastructure,
		},
		{name: "usage_error", executionError: errors.New("unknown flag: --verbose"), expectedExitCode: cli.ExitCodeInfrastructure},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			require.Equal(testInstance, testCase.expectedExitCode, cli.ExitCode(testCase.executionError))
		})
	}
}
