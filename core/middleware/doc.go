// Package middleware contains HTTP middleware for the Fiber application.
//
// # Components
//
//   - auth: API key validation (X-API-Key or Bearer token).
//   - rayid: generates a RayID for every request, stores it in the context
//     for logger.WithRayID and echoes it in the X-Ray-ID response header.
//
// Both are registered globally by the start command; rayid first.
package middleware
