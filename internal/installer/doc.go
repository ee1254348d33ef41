// Package installer makes sure every package declared in pypack.json is
// present for the resolved interpreter, querying pip for each one and
// installing what is missing. The first failed install aborts the run.
package installer
