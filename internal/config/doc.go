// Package config manages user-level settings stored at ~/.pypack/config.yaml
// with PYPACK_* environment overrides: the portable distribution source, the
// local runtime directory, the manifest file name, the minimum accepted
// interpreter version and the log level.
package config
