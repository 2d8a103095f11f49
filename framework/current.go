package framework

import "sync"

var (
	currentMu  sync.RWMutex
	currentApp Application
)

// setCurrent records app as the process-wide current application. Called
// during construction; last write wins.
func setCurrent(app Application) {
	currentMu.Lock()
	defer currentMu.Unlock()
	currentApp = app
}

// Current returns the most recently constructed application instance, or
// nil before any construction. The cell assumes a single-writer
// lifecycle: one application per process, constructed before serving
// starts. Constructing applications concurrently leaves the cell on
// whichever finished last.
func Current() Application {
	currentMu.RLock()
	defer currentMu.RUnlock()
	return currentApp
}
