// Package server exposes the authentication flow over HTTP: JSON
// endpoints for initiating login, refreshing and logging out, and the
// provider callback route. It is a thin Gin adapter around the plugin;
// all flow logic lives below it.
package server
