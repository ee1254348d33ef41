// Package cli wires the launcher and the pypack admin commands into a Cobra
// command tree. The base name of argv[0] selects the mode: "pypack" runs the
// admin commands, any other name launches the script of that name.
package cli
