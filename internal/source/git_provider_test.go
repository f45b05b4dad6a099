package source_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/temirov/pageaudit/internal/rules"
	"github.com/temirov/pageaudit/internal/source"
)

const (
	gitRevisionConstant         = "release-2024"
	gitWorkingDirectoryConstant = "/srv/site"
	gitPagePathConstant         = "app/legal/terms/page.tsx"
)

type recordedCommand struct {
	workingDirectory string
	name             string
	arguments        []string
}

type stubCommandRunner struct {
	result   source.CommandResult
	runError error
	commands []recordedCommand
}

func (runner *stubCommandRunner) Run(_ context.Context, workingDirectory string, name string, arguments ...string) (source.CommandResult, error) {
	runner.commands = append(runner.commands, recordedCommand{workingDirectory: workingDirectory, name: name, arguments: arguments})
	return runner.result, runner.runError
}

func TestGitRevisionProviderReadSource(testInstance *testing.T) {
	runner := &stubCommandRunner{result: source.CommandResult{StandardOutput: pageContentConstant}}
	provider := source.NewGitRevisionProvider(context.Background(), runner, nil, gitRevisionConstant, gitWorkingDirectoryConstant)

	content, readError := provider.ReadSource(gitPagePathConstant)
	require.NoError(testInstance, readError)
	require.Equal(testInstance, pageContentConstant, content)
	require.Equal(testInstance, []recordedCommand{{
		workingDirectory: gitWorkingDirectoryConstant,
		name:             "git",
		arguments:        []string{"show", "release-2024:./app/legal/terms/page.tsx"},
	}}, runner.commands)

	_, absoluteError := provider.ReadSource(gitWorkingDirectoryConstant + "/" + gitPagePathConstant)
	require.NoError(testInstance, absoluteError)
	require.Equal(testInstance, []string{"show", "release-2024:./app/legal/terms/page.tsx"}, runner.commands[1].arguments)
}

func TestGitRevisionProviderFailures(testInstance *testing.T) {
	testCases := []struct {
		name     string
		revision string
		path     string
		runner   *stubCommandRunner
	}{
		{name: "missing_revision", revision: " ", path: gitPagePathConstant, runner: &stubCommandRunner{}},
		{name: "missing_path", revision: gitRevisionConstant, path: "", runner: &stubCommandRunner{}},
		{name: "runner_error", revision: gitRevisionConstant, path: gitPagePathConstant, runner: &stubCommandRunner{runError: errors.New("git not installed")}},
		{
			name:     "non_zero_exit",
			revision: gitRevisionConstant,
			path:     gitPagePathConstant,
			runner:   &stubCommandRunner{result: source.CommandResult{ExitCode: 128, StandardError: "fatal: path does not exist"}},
		},
		{
			name:     "invalid_utf8",
			revision: gitRevisionConstant,
			path:     gitPagePathConstant,
			runner:   &stubCommandRunner{result: source.CommandResult{StandardOutput: string([]byte{0xff, 0xfe})}},
		},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			provider := source.NewGitRevisionProvider(context.Background(), testCase.runner, nil, testCase.revision, gitWorkingDirectoryConstant)
			_, readError := provider.ReadSource(testCase.path)
			require.ErrorIs(testInstance, readError, rules.ErrSourceUnreadable)
		})
	}
}

func TestGitRevisionProviderLogsCommands(testInstance *testing.T) {
	testCases := []struct {
		name             string
		runner           *stubCommandRunner
		expectedMessages []string
		expectedExitCode int64
	}{
		{
			name:             "successful_show",
			runner:           &stubCommandRunner{result: source.CommandResult{StandardOutput: pageContentConstant}},
			expectedMessages: []string{"git show started", "git show completed"},
		},
		{
			name:             "failed_show",
			runner:           &stubCommandRunner{result: source.CommandResult{ExitCode: 128, StandardError: "fatal: bad revision"}},
			expectedMessages: []string{"git show started", "git show failed"},
			expectedExitCode: 128,
		},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			observedCore, observedLogs := observer.New(zapcore.DebugLevel)
			provider := source.NewGitRevisionProvider(context.Background(), testCase.runner, zap.New(observedCore), gitRevisionConstant, gitWorkingDirectoryConstant)
			_, _ = provider.ReadSource(gitPagePathConstant)

			entries := observedLogs.AllUntimed()
			require.Len(testInstance, entries, len(testCase.expectedMessages))
			for entryIndex, entry := range entries {
				require.Equal(testInstance, zapcore.DebugLevel, entry.Level)
				require.Equal(testInstance, testCase.expectedMessages[entryIndex], entry.Message)
				fields := entry.ContextMap()
				require.Equal(testInstance, gitRevisionConstant, fields["revision"])
				require.Equal(testInstance, "release-2024:./app/legal/terms/page.tsx", fields["object"])
				require.Equal(testInstance, gitWorkingDirectoryConstant, fields["working_directory"])
			}
			require.Equal(testInstance, testCase.expectedExitCode, entries[len(entries)-1].ContextMap()["exit_code"])
		})
	}
}
