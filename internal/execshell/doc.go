// Package execshell provides structured helpers for invoking git.
//
// ShellExecutor wraps a CommandRunner with lifecycle reporting and converts
// non-zero exits into CommandFailedError values that keep the exit code.
// OSCommandRunner is the os/exec backed runner and can attach interactive
// commands such as an interactive rebase to the controlling terminal.
package execshell
