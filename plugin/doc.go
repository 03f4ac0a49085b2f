// Package plugin ties the OpenID Connect flow together: initiating the
// authorization redirect, handling the provider callback, refreshing
// sessions, and building logout URLs.
//
// Each operation follows a chain-of-responsibility convention: when the
// plugin is inactive the caller's previous value passes through untouched,
// so the host can stack several authentication plugins.
//
// This is the only layer that translates lower-level failures into
// caller-facing validation errors; components below it raise typed errors.
package plugin
