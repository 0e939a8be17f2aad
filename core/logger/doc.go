// Package logger builds the zap logger shared by the CLI, the storage
// engine and the HTTP server.
//
// Logs go to stderr by default because commands such as "objectfs cat"
// stream object bytes on stdout. Set log.output (LOG_OUTPUT) to stdout or a
// file path to move them.
//
// Request handlers tag their entries with WithRayID, which reads the ID
// stored by the rayid middleware:
//
//	l := logger.WithRayID(log, c)
//	l.Warn("read failed", zap.String("key", key), zap.Error(err))
package logger
