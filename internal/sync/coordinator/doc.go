// Package coordinator runs the sync engine: the foreground and background run loops
// and the periodic service loop around them.
//
// It sits on top of internal/sync (scheduler, executor, maintenance) and handles:
//
//   - Foreground passes over the current week, driven synchronously by the caller
//   - A single detached background loop with cooperative cancellation and a pause window
//   - Settling empty and failed outcomes in the registry
//   - Startup recovery and corruption repair
//   - Periodic scheduling with a jittered ticker and graceful shutdown
//
// # Run Loops
//
// Runner owns both loops. A pass asks the scheduler for the next task, executes it and
// settles its outcome, until the scheduler returns no task or the pass is cancelled.
// Every dispatched period is excluded from the rest of the pass:
//
//	runner := coordinator.NewRunner(scheduler, manager, registry, coordinator.NewConfig(cfg.Sync))
//	summary := runner.RunForeground(ctx, nil)
//
// Outcomes are settled as follows:
//
//   - Success: already recorded by the executor in the task's transaction
//   - Empty: Waiting, retried after Config.EmptyRetryDelay
//   - Failure: Failed with the error message; the pass continues with the next period
//   - Cancelled: registry untouched; the pass stops
//
// # Background Loop
//
// StartBackground launches at most one background loop; a second start while one is
// running is a no-op. PauseBackground holds the loop before its next task until the given
// time, re-checking every Config.PauseCheckInterval. A manual refresh uses it to keep the
// background loop off the shared upstream quota.
//
// # Service
//
// Coordinator.Start recovers the registry, repairs corrupted weeks and then, on every
// poll tick, runs a foreground pass followed by a background start. Stop cancels both
// loops and waits for them. Refresh runs an extra foreground pass with the background
// loop paused.
package coordinator
