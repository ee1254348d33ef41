// Package portable downloads and unpacks the self-contained Python
// distribution that is used when no interpreter is found on the system path.
// Only hosts listed in the distribution table can bootstrap this way; the
// check is made at run time so that one binary serves every target.
package portable
