// Package config assembles the objectfs configuration from its sections.
//
// Values are resolved per key, highest precedence first:
//
//  1. environment variables, after a .env file in the working directory
//     has been loaded over them
//  2. objectfs.yaml in the same directory, if present
//  3. the `default` struct tag of the field
//
// Nested keys map to upper case environment variables joined with "_", so
// storage.endpoint is read from STORAGE_ENDPOINT and reconcile.workers from
// RECONCILE_WORKERS.
//
// Sections: server (HTTP gateway), storage (engine and driver), log,
// metrics and reconcile (the sync command).
package config
