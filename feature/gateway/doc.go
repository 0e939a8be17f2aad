// Package gateway exposes one storage engine over HTTP.
//
// Every engine operation has a route. Failures are rendered as
// {"error": message, "kind": kind} with an HTTP status derived from the
// error kind, so a client on the other side of the wire sees the same
// taxonomy as a Go caller.
//
// # HTTP Endpoints
//
//   - GET /describe : Backend description.
//   - GET /objects : One listing page (?prefix, ?marker, ?limit=10) or the
//     whole listing with ?all=true.
//   - GET /stat/{key} : Object metadata.
//   - GET /objects/{key} : Object bytes (?offset, ?limit).
//   - PUT /objects/{key} : Replace the object with the request body.
//   - DELETE /objects/{key} : Remove the object.
package gateway
