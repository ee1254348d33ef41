// Package platform provides host-dependent helpers: the name of the Python
// executable on a given OS and permission handling that degrades to a no-op
// on Windows.
package platform
