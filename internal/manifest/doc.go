// Package manifest reads pypack.json, the dependency declaration consumed by
// the installer. Loading is deliberately lenient: a missing or malformed file
// yields a named status rather than an error. Strict validation against an
// embedded JSON schema is available separately for diagnostics.
package manifest
