// Package logger provides structured logging built on zerolog.
//
// Components accept a *logger.Logger and tag their output with a component
// field:
//
//	log := logger.NewDefault("shieldkit").WithComponent("cache")
//	log.Info("entry evicted", logger.Fields("key", key, "size", size))
//
// A package-level global logger is available for code that has no injected
// instance; tests should use logger.Nop().
package logger
