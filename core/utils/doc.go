// Package utils provides small parsing and formatting helpers shared by the
// HTTP gateway and the CLI.
package utils
