// Package integrity probes a running storage engine for contract
// violations.
//
// Unlike the gateway, which serves objects, this package validates that the
// bound backend behaves the way the engine promises: writes become visible
// only after commit, ranged reads are exact, and paginated listings neither
// lose nor repeat keys.
//
// # Checks Provided
//
//   - Structure: The root can be listed and the requested directories exist.
//   - RoundTrip: Writes, reads (whole and ranged), removes and re-stats a probe key.
//   - Pagination: Pages through a prefix and compares the result with a full listing.
//   - Schema: For SQL backends, validates the blob table columns and types.
//
// # HTTP Endpoints
//
//   - GET /integrity : Runs all checks.
//   - GET /integrity/structure : Runs structure check (?dirs=a,b and ?fix=true).
//   - GET /integrity/roundtrip : Runs the round trip probe.
//   - GET /integrity/pagination : Runs pagination check (?prefix, ?page_size).
//   - GET /integrity/schema : Runs the blob table schema check.
package integrity
