// Package log provides the leveled logging interface used by every
// talentsearch component.
//
// Components accept a Logger in their options and fall back to the
// package-level default (see OrDefault). The binary installs a GologLogger
// backed by kataras/golog; tests usually pass NoOpLogger or a
// DefaultLogger writing into a buffer.
//
//	logger := log.NewGologLogger(golog.New())
//	logger.SetLevel(log.LogLevelDebug)
//	log.SetDefaultLogger(logger)
//	log.Info("listening on %s", addr)
package log
