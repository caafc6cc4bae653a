// Package gitrepo contains read-only helpers for interrogating a Git repository.
//
// RepositoryManager locates the git directory, reports the current branch and
// worktree cleanliness, reads remote URLs and detects a rebase or cherry-pick
// left in progress. ParseRemoteURL turns a remote URL into owner and
// repository names for hosting APIs.
package gitrepo
