// Package logger provides structured logging for authd using zerolog.
//
// It supports JSON and console output, level configuration, and
// component-scoped loggers with structured fields.
//
// # Configuration
//
//	logging:
//	  level: "info"
//	  format: "json"
//
// # Usage
//
//	log := logger.New(&cfg.Logging, "authd").WithComponent("oauth")
//	log.Info("token pair issued", logger.Fields("registration_id", id))
package logger
