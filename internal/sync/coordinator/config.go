package coordinator

import (
	"time"

	"github.com/NikolayVerchenko/wb-analytics-sub001/internal/config"
)

// Config holds the run loop timings
type Config struct {
	// EmptyRetryDelay is added to now when a task returned no rows
	EmptyRetryDelay time.Duration
	// PauseCheckInterval is the sleep step of a paused background loop
	PauseCheckInterval time.Duration
	// RefreshPause is how long a manual refresh holds the background loop
	RefreshPause time.Duration
	// PollInterval is the base interval of the service loop
	PollInterval time.Duration
}

// NewConfig extracts the run loop timings from the sync configuration.
// A nil section yields the defaults.
func NewConfig(sc *config.SyncConfig) Config {
	return Config{
		EmptyRetryDelay:    sc.GetEmptyRetryDelay(),
		PauseCheckInterval: sc.GetPauseCheckInterval(),
		RefreshPause:       sc.GetRefreshPause(),
		PollInterval:       sc.GetPollInterval(),
	}
}

func (c Config) withDefaults() Config {
	if c.EmptyRetryDelay <= 0 {
		c.EmptyRetryDelay = config.DefaultEmptyRetryDelay
	}
	if c.PauseCheckInterval <= 0 {
		c.PauseCheckInterval = config.DefaultPauseCheckInterval
	}
	if c.RefreshPause <= 0 {
		c.RefreshPause = config.DefaultRefreshPause
	}
	if c.PollInterval <= 0 {
		c.PollInterval = config.DefaultPollInterval
	}
	return c
}
