package profiler

import (
	"time"

	log "github.com/sirupsen/logrus"
)

// WallTime measures named intervals of host time.
type WallTime struct {
	starttimes map[string]time.Time
}

// NewWallTime creates an empty measurement set.
func NewWallTime() *WallTime {
	return &WallTime{
		starttimes: make(map[string]time.Time),
	}
}

// Start begins the interval with the given flag.
func (w *WallTime) Start(flag string) {
	if _, found := w.starttimes[flag]; found {
		log.Panicf("wall time %q is already running", flag)
	}

	w.starttimes[flag] = time.Now()
}

// Stop ends the interval and returns its length in seconds.
func (w *WallTime) Stop(flag string) float64 {
	startTime, found := w.starttimes[flag]
	if !found {
		log.Panicf("wall time %q was not started", flag)
	}

	delete(w.starttimes, flag)

	return time.Since(startTime).Seconds()
}
