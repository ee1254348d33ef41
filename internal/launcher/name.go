package launcher

import "strings"

// InvocationName derives the logical script name from argv[0]: leading
// directories are removed for both '/' and '\' separators, then the last
// extension. "/usr/bin/foo.exe" and `C:\tools\foo.exe` both yield "foo".
func InvocationName(argv0 string) string {
	name := argv0
	if i := strings.LastIndex(name, "/"); i >= 0 {
		name = name[i+1:]
	}
	if i := strings.LastIndex(name, `\`); i >= 0 {
		name = name[i+1:]
	}
	if i := strings.LastIndex(name, "."); i >= 0 {
		name = name[:i]
	}
	return name
}
