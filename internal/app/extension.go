package app

import "sync"

// Extension plugs into an App while it is built, e.g. to register models,
// controllers or dispatcher interceptors
type Extension interface {
	Name() string
	Register(a *App) error
}

var (
	extMu      sync.Mutex
	extensions []Extension
)

// Extend registers an extension applied to every App created afterwards.
// It is meant to be called from init functions.
func Extend(ext Extension) {
	extMu.Lock()
	defer extMu.Unlock()
	extensions = append(extensions, ext)
}

func registered() []Extension {
	extMu.Lock()
	defer extMu.Unlock()
	return append([]Extension(nil), extensions...)
}
