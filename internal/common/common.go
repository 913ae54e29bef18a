// Package common holds small helpers shared across the generator's
// internal packages.
package common

// UnknownStr is the string representation for unrecognized enum values.
const UnknownStr = "unknown"
