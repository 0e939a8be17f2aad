// Package server holds the HTTP server configuration.
//
// The start command owns the Fiber application; this package only defines
// the settings it needs: the listen port, the API key checked by the auth
// middleware, the upload body limit and a read-only switch for the gateway.
package server
