// Package checkpoint persists the progress of a rebase-and-regenerate run so
// that it can be resumed after the operator resolves a conflict.
//
// The checkpoint lives in <git-dir>/coursesync/checkpoint.yaml and is guarded by
// an exclusive file lock in the same directory.
package checkpoint
