// Package runtime drives the Python interpreter as an opaque external
// program. It builds interpreter command lines from a location prefix, runs
// them through a Runner (quietly for probes and pip, with inherited stdio for
// the target script) and reports the resulting exit codes.
package runtime
