// Package resolver decides which Python interpreter a launch uses. It probes
// the system path first, then a previously downloaded local copy, and as a
// last resort downloads the portable distribution once. The outcome is a
// location prefix shared by every later interpreter command of the run.
package resolver
