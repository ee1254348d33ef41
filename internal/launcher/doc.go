// Package launcher ties the bootstrap together: it derives the script name
// from how the binary was invoked, resolves an interpreter, installs the
// manifest dependencies and runs <name>.py, handing back the script's exit
// code.
package launcher
