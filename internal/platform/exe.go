package platform

import "runtime"

// Python executable names.
const (
	PythonExeWindows = "python.exe"
	PythonExeUnix    = "python3"
)

// PythonExe returns the name of the Python executable for goos.
func PythonExe(goos string) string {
	if goos == "windows" {
		return PythonExeWindows
	}
	return PythonExeUnix
}

// HostPythonExe returns the Python executable name for the running host.
func HostPythonExe() string {
	return PythonExe(runtime.GOOS)
}

// IsWindows returns true if the current OS is Windows.
func IsWindows() bool {
	return runtime.GOOS == "windows"
}
