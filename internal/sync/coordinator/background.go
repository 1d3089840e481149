package coordinator

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
)

// BackgroundStatus is a snapshot of the background loop
type BackgroundStatus struct {
	Running     bool       `json:"running"`
	RunID       string     `json:"runId,omitempty"`
	StartedAt   *time.Time `json:"startedAt,omitempty"`
	PausedUntil *time.Time `json:"pausedUntil,omitempty"`
	// LastRun is the summary of the most recently finished run
	LastRun *Summary `json:"lastRun,omitempty"`
}

// backgroundLoop owns the single detached background run.
type backgroundLoop struct {
	runner *Runner

	mu          sync.Mutex
	running     bool
	runID       uuid.UUID
	startedAt   time.Time
	pausedUntil time.Time
	// holds counts active refreshes; heldUntil is the latest end among them
	holds     int
	heldUntil time.Time
	lastRun     *Summary
	cancel      context.CancelFunc
	done        chan struct{}
}

func newBackgroundLoop(r *Runner) *backgroundLoop {
	return &backgroundLoop{runner: r}
}

func (b *backgroundLoop) start(ctx context.Context) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.running {
		return false
	}

	runCtx, cancel := context.WithCancel(ctx)
	b.running = true
	b.runID = uuid.New()
	b.startedAt = b.runner.now()
	b.cancel = cancel
	b.done = make(chan struct{})

	runID, done := b.runID, b.done
	slog.InfoContext(ctx, "Background loop started", "run_id", runID)

	go func() {
		summary := b.runner.run(runCtx, "background", b.runner.scheduler.NextBackground, b.waitWhilePaused)

		b.mu.Lock()
		b.running = false
		b.lastRun = &summary
		b.mu.Unlock()

		cancel()
		close(done)
		slog.Info("Background loop stopped", "run_id", runID, "tasks", summary.Tasks)
	}()
	return true
}

func (b *backgroundLoop) stop() {
	b.mu.Lock()
	cancel, done := b.cancel, b.done
	b.mu.Unlock()
	if cancel == nil {
		return
	}
	cancel()
	<-done
}

func (b *backgroundLoop) pause(until time.Time) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.pausedUntil = until
	if !until.IsZero() {
		slog.Info("Background loop paused", "until", until)
	}
}

// hold pauses the loop until the given time on behalf of one caller. The pause stays in
// place until every holder has called its release.
func (b *backgroundLoop) hold(until time.Time) (release func()) {
	b.mu.Lock()
	b.holds++
	if until.After(b.heldUntil) {
		b.heldUntil = until
	}
	b.mu.Unlock()
	slog.Info("Background loop held", "until", until)

	var once sync.Once
	return func() {
		once.Do(func() {
			b.mu.Lock()
			defer b.mu.Unlock()
			b.holds--
			if b.holds == 0 {
				b.heldUntil = time.Time{}
			}
		})
	}
}

// pauseEnd returns the end of the active pause window. The caller holds b.mu.
func (b *backgroundLoop) pauseEnd() time.Time {
	if b.heldUntil.After(b.pausedUntil) {
		return b.heldUntil
	}
	return b.pausedUntil
}

// waitWhilePaused sleeps in short steps while a pause window is active.
// It returns false when ctx is cancelled.
func (b *backgroundLoop) waitWhilePaused(ctx context.Context) bool {
	for {
		b.mu.Lock()
		until := b.pauseEnd()
		b.mu.Unlock()
		if until.IsZero() || !b.runner.now().Before(until) {
			return true
		}

		timer := time.NewTimer(b.runner.config.PauseCheckInterval)
		select {
		case <-ctx.Done():
			timer.Stop()
			return false
		case <-timer.C:
		}
	}
}

func (b *backgroundLoop) status() BackgroundStatus {
	b.mu.Lock()
	defer b.mu.Unlock()

	st := BackgroundStatus{Running: b.running, LastRun: b.lastRun}
	if b.running {
		startedAt := b.startedAt
		st.RunID = b.runID.String()
		st.StartedAt = &startedAt
	}
	if until := b.pauseEnd(); !until.IsZero() && b.runner.now().Before(until) {
		st.PausedUntil = &until
	}
	return st
}
