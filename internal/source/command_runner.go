package source

import (
	"bytes"
	"context"
	"errors"
	"os/exec"
)

// CommandResult captures the output of an external command.
type CommandResult struct {
	StandardOutput string
	StandardError  string
	ExitCode       int
}

// CommandRunner executes external commands.
type CommandRunner interface {
	Run(executionContext context.Context, workingDirectory string, name string, arguments ...string) (CommandResult, error)
}

// OSCommandRunner executes commands using os/exec.
type OSCommandRunner struct{}

// NewOSCommandRunner constructs a runner backed by os/exec.
func NewOSCommandRunner() *OSCommandRunner {
	return &OSCommandRunner{}
}

// Run executes the command. A non-zero exit status is reported through ExitCode, not as an error.
func (runner *OSCommandRunner) Run(executionContext context.Context, workingDirectory string, name string, arguments ...string) (CommandResult, error) {
	executable := exec.CommandContext(executionContext, name, arguments...)
	if len(workingDirectory) > 0 {
		executable.Dir = workingDirectory
	}

	var standardOutputBuffer bytes.Buffer
	var standardErrorBuffer bytes.Buffer
	executable.Stdout = &standardOutputBuffer
	executable.Stderr = &standardErrorBuffer

	result := CommandResult{}
	if runError := executable.Run(); runError != nil {
		var exitError *exec.ExitError
		if !errors.As(runError, &exitError) {
			return CommandResult{}, runError
		}
		result.ExitCode = exitError.ExitCode()
	}

	result.StandardOutput = standardOutputBuffer.String()
	result.StandardError = standardErrorBuffer.String()
	return result, nil
}
