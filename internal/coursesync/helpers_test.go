package coursesync_test

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/temirov/coursesync/internal/coursesync"
	"github.com/temirov/coursesync/internal/execshell"
)

const (
	testRepositoryPath    = "/work/course"
	forEachRefCommand     = "for-each-ref --format=%(refname) refs/heads refs/remotes"
	gitDirectoryCommand   = "rev-parse --absolute-git-dir"
	currentBranchCommand  = "rev-parse --abbrev-ref HEAD"
	introCommit           = "aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa"
	loopsCommit           = "bbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbb"
	standardLessonRefList = "refs/heads/01-intro\n" +
		"refs/heads/01-intro-solution\n" +
		"refs/heads/02-loops\n" +
		"refs/heads/02-loops-solution\n" +
		"refs/heads/main\n" +
		"refs/remotes/origin/01-intro\n" +
		"refs/remotes/origin/HEAD\n" +
		"refs/remotes/origin/main\n"
)

type scriptedFailure struct {
	exitCode      int
	standardError string
}

// scriptedGitExecutor answers git invocations from canned outputs and records them.
type scriptedGitExecutor struct {
	gitDirectory string
	outputs      map[string]string
	failures     map[string]scriptedFailure
	effects      map[string]func()
	executed     []execshell.CommandDetails
}

func newScriptedGitExecutor(testInstance *testing.T) *scriptedGitExecutor {
	testInstance.Helper()
	gitDirectory := testInstance.TempDir()
	return &scriptedGitExecutor{
		gitDirectory: gitDirectory,
		outputs: map[string]string{
			gitDirectoryCommand: gitDirectory + "\n",
		},
		failures: map[string]scriptedFailure{},
		effects:  map[string]func(){},
	}
}

func newLessonGitExecutor(testInstance *testing.T) *scriptedGitExecutor {
	gitExecutor := newScriptedGitExecutor(testInstance)
	gitExecutor.outputs[forEachRefCommand] = standardLessonRefList
	gitExecutor.outputs["rev-parse 01-intro"] = introCommit + "\n"
	gitExecutor.outputs["rev-parse 02-loops"] = loopsCommit + "\n"
	return gitExecutor
}

// ExecuteGit fails each scripted failure once, then succeeds. Effects run before the command returns.
func (executor *scriptedGitExecutor) ExecuteGit(_ context.Context, details execshell.CommandDetails) (execshell.ExecutionResult, error) {
	executor.executed = append(executor.executed, details)
	key := strings.Join(details.Arguments, " ")
	if effect, exists := executor.effects[key]; exists {
		effect()
	}
	if failure, exists := executor.failures[key]; exists {
		delete(executor.failures, key)
		result := execshell.ExecutionResult{ExitCode: failure.exitCode, StandardError: failure.standardError}
		return execshell.ExecutionResult{}, execshell.CommandFailedError{
			Command: execshell.ShellCommand{Name: execshell.CommandGit, Details: details},
			Result:  result,
		}
	}
	return execshell.ExecutionResult{StandardOutput: executor.outputs[key]}, nil
}

func (executor *scriptedGitExecutor) commands() []string {
	commands := make([]string, 0, len(executor.executed))
	for _, details := range executor.executed {
		commands = append(commands, strings.Join(details.Arguments, " "))
	}
	return commands
}

func (executor *scriptedGitExecutor) reset() {
	executor.executed = nil
}

type fixedClock struct{}

func (fixedClock) Now() time.Time {
	return time.Date(2025, time.March, 4, 10, 0, 0, 0, time.UTC)
}

type stubProtectionChecker struct {
	protected []string
	err       error
	calls     int
}

func newTestService(testInstance *testing.T, gitExecutor *scriptedGitExecutor, checker coursesync.ProtectionChecker) (*coursesync.Service, *bytes.Buffer) {
	testInstance.Helper()
	output := &bytes.Buffer{}
	service, serviceError := coursesync.NewService(coursesync.ServiceDependencies{
		GitExecutor:       gitExecutor,
		Clock:             fixedClock{},
		ProtectionChecker: checker,
		Output:            output,
	})
	require.NoError(testInstance, serviceError)
	return service, output
}

func defaultOptions() coursesync.Options {
	return coursesync.Options{
		RepositoryPath: testRepositoryPath,
		Remote:         "origin",
		MainBranch:     "main",
	}
}

func regenerationCommands(exercise string, commit string) []string {
	return []string{
		"rev-parse " + exercise,
		"checkout " + exercise + "-solution",
		"branch -D " + exercise,
		"checkout -b " + exercise,
		"cherry-pick " + commit,
	}
}

func joinCommands(groups ...[]string) []string {
	joined := make([]string, 0)
	for _, group := range groups {
		joined = append(joined, group...)
	}
	return joined
}
