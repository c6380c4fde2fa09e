// Package server holds the HTTP server configuration and constants.
//
// While the start command handles the server startup, this package defines the
// configuration structure and valid values for server settings.
//
// # Configuration
//
// The Config struct defines the HTTP port, the API key and the server mode. In
// "readonly" mode the server reports tables and schemas but refuses to run corrections.
package server
