// Package logger provides structured logging for the OpenID Connect
// relying-party module using zerolog.
//
// It supports JSON and console output, log level configuration, and
// component-scoped loggers with structured fields.
//
// # Usage
//
//	log := logger.WithComponent("openid-connect")
//	log.Info("callback handled", logger.Fields(logger.FieldEmail, email))
package logger
