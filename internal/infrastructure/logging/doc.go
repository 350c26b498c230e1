// Package logging provides structured logging for Andon Core.
//
// It wraps log/slog with the service's default fields and level handling.
// Components derive their own loggers via With:
//
//	log := logging.New(cfg.Logging, version)
//	serverLog := log.With("component", "server")
package logging
