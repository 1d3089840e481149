// Package sync contains the period synchronization engine: the task model, the scheduler
// that decides which period to fetch next, the manager that executes one task, and the
// maintenance sweeps run at startup.
//
// # Core Interfaces
//
//   - Scheduler: picks the next foreground (current week, daily) or background
//     (past weeks, weekly) task from registry state and wall-clock time
//   - Manager: executes one task end to end and classifies its Outcome
//   - Observer: receives every state transition as an Event
//
// The sync/coordinator subpackage drives these in run loops. See its package
// documentation for the foreground pass, the background loop and the service loop.
//
// # Scheduling
//
// Foreground scheduling first retries due Pending or Waiting days of the current week,
// oldest attempt first, then walks the week from today back to Monday. Background
// scheduling prefers last week, then every older week down to the configured minimum
// date, most recent first. Neither ever returns a period of a week whose weekly entry is
// final, and a per-pass Exclusions set keeps a failing period from being retried within
// the same pass.
//
// A Pending entry is a lease: it is skipped while fresh and becomes eligible again once
// its last attempt is older than the configured pending lease.
//
// # Execution
//
// The manager registers the task as Pending (insert if absent), pages through the report
// until a short page or a cursor that does not advance, aggregates the rows and persists
// them through the writer. The registry entry is marked Success (and, for weekly tasks,
// final) inside the write transaction. Empty and failed outcomes are settled by the caller.
//
// # Maintenance
//
//   - Recover: every non-Success entry becomes Waiting with an immediate retry time
//   - RepairCorruption: weeks holding sale records with an empty size label and a
//     quantity above the threshold are cleared and their registry entries reset to Pending
package sync
