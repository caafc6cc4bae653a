package coursesync

import "errors"

// ErrNoSolutionBranches indicates that discovery found no solution branch to rebase.
var ErrNoSolutionBranches = errors.New("No solution branches found")

// ErrMissingSolution indicates that an exercise branch has no solution counterpart.
var ErrMissingSolution = errors.New("exercise branches without a solution branch")

// ErrPendingCheckpoint indicates that an unfinished run must be resumed or reset first.
var ErrPendingCheckpoint = errors.New("an unfinished run exists")

// ErrNoCheckpoint indicates that resume found nothing to continue.
var ErrNoCheckpoint = errors.New("no unfinished run to resume")

// ErrWorktreeNotClean indicates that the working tree has uncommitted changes.
var ErrWorktreeNotClean = errors.New("working tree has uncommitted changes")

// ErrOperationStillInProgress indicates that git is still inside a rebase or cherry-pick.
var ErrOperationStillInProgress = errors.New("git operation still in progress")

// ErrProtectedBranch indicates that a branch about to be force-pushed is protected.
var ErrProtectedBranch = errors.New("protected branches would be force-pushed")

// ErrServiceDependenciesMissing indicates that the service was created without a git executor.
var ErrServiceDependenciesMissing = errors.New("coursesync service requires a git executor")
