// Package coursesync keeps the lesson branches of a course repository in step.
//
// Lesson branches come in pairs: an exercise branch named NN-topic and its
// solution NN-topic-solution. The default mode rebases the latest solution
// branch onto main with --update-refs, then rebuilds every exercise branch
// from its rebased solution by replaying the exercise's own commit. Force mode
// pushes every lesson branch with --force-with-lease instead.
//
// Runs are checkpointed after every stage so that a rebase or cherry-pick
// conflict can be resolved by hand and the run resumed.
package coursesync
