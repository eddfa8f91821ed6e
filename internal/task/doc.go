// Package task manages the lifecycle of background operations: an in-memory
// registry of task records with a pending/processing/completed/failed state
// machine, and a staged executor that runs multi-phase pipelines in
// goroutines, mapping each stage's sub-progress into the task's overall
// progress. Long-running operations like content generation report through
// this package so HTTP handlers can return immediately and clients poll for
// status.
package task
