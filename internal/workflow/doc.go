// Package workflow runs ordered, resumable operations over a checkpointed run state.
//
// Operations advance the checkpoint stage by stage and persist it through the
// Environment. The Executor skips operations the checkpoint already records as
// done, which is how an interrupted run picks up where it stopped.
package workflow
