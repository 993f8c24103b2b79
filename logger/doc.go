// Package logger provides structured logging for the container packages
// using zerolog.
//
// The library logs resolution decisions at debug level only. Hosts that want
// to see them install a logger with Init or SetGlobalLogger:
//
//	logger.Init(&logger.Config{Level: "debug", Format: "json"})
package logger
