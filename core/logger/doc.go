// Package logger provides a structured logging facility based on Zap.
//
// It offers a configured logger instance that supports different environments (development vs production)
// and integrates with the Fiber web framework.
//
// # Log File
//
// When Config.File is set, every record is also written as JSON to that file. The file is
// rotated by lumberjack according to MaxSizeMB, MaxBackups and MaxAgeDays, which gives
// reconciliation runs a durable audit trail of inserted and updated rows.
//
// # Context Awareness
//
// The WithRayID helper extracts the RayID from a Fiber context and attaches it to the
// log entry, so every record of one HTTP triggered run can be correlated.
//
// # Usage
//
//	log, _ := logger.New(&logger.Config{Level: "info", File: "db_sync.log"})
//	log.Info("Reconciliation started")
package logger
