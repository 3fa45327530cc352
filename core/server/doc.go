// Package server holds the HTTP server configuration.
//
// The main application entry point handles the server startup; this package
// only defines the configuration structure for server settings such as the
// listen port, the API key, and the store identifier.
//
// # Usage
//
// This package is primarily used by core/config to embed server settings.
package server
