//go:build integration

package integration_test

import (
	"archive/zip"
	"bytes"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	goruntime "runtime"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/charmbracelet/log"
)

// fakeInterpreter answers the commands the launcher issues. It keeps the set
// of installed packages in installed.txt, appends every pip call to pip.log
// and records the script invocation in ran.txt, all in its working directory.
// The script exits with $FAKE_EXIT_CODE. Installing "broken" fails. Only
// shell builtins are used because PATH holds nothing but the test's bin dir.
const fakeInterpreter = `#!/bin/sh
case "$1" in
-V)
	echo "Python 3.12.4"
	exit 0
	;;
-m)
	shift
	[ "$1" = pip ] || exit 2
	shift
	op=$1
	shift
	echo "$op $*" >> pip.log
	case "$op" in
	show)
		[ -f installed.txt ] || exit 1
		while read -r pkg; do
			[ "$pkg" = "$1" ] && exit 0
		done < installed.txt
		exit 1
		;;
	install)
		[ "$1" = broken ] && exit 1
		echo "$1" >> installed.txt
		exit 0
		;;
	esac
	exit 2
	;;
*)
	echo "$*" > ran.txt
	exit "${FAKE_EXIT_CODE:-0}"
	;;
esac
`

// testEnv is an isolated working directory with its own PATH.
type testEnv struct {
	WorkDir string // holds the script, the manifest and python/
	BinDir  string // the only PATH entry
	Logs    *bytes.Buffer
}

func setupTestEnv(t *testing.T) *testEnv {
	t.Helper()
	if goruntime.GOOS == "windows" {
		t.Skip("the fake interpreter is a POSIX shell script")
	}

	env := &testEnv{
		WorkDir: t.TempDir(),
		BinDir:  t.TempDir(),
		Logs:    &bytes.Buffer{},
	}
	t.Setenv("PATH", env.BinDir)
	return env
}

func (e *testEnv) logger() *log.Logger {
	return log.New(e.Logs)
}

// installInterpreterOnPath makes the fake interpreter the python3 on PATH.
func (e *testEnv) installInterpreterOnPath(t *testing.T) {
	t.Helper()
	path := filepath.Join(e.BinDir, "python3")
	if err := os.WriteFile(path, []byte(fakeInterpreter), 0755); err != nil {
		t.Fatal(err)
	}
}

func (e *testEnv) writeFile(t *testing.T, name, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(e.WorkDir, name), []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
}

func (e *testEnv) readLines(t *testing.T, name string) []string {
	t.Helper()
	data, err := os.ReadFile(filepath.Join(e.WorkDir, name))
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		t.Fatal(err)
	}
	return strings.Split(strings.TrimSpace(string(data)), "\n")
}

// serveDistribution serves a zip shaped like the embeddable distribution:
// the fake interpreter as python.exe plus the ._pth marker.
func serveDistribution(t *testing.T) (*httptest.Server, *atomic.Int32) {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	files := []struct {
		name    string
		content string
		mode    os.FileMode
	}{
		{"python.exe", fakeInterpreter, 0755},
		{"python312._pth", "python312.zip\n.\n", 0644},
		{"Lib/site.py", "", 0644},
	}
	for _, f := range files {
		hdr := &zip.FileHeader{Name: f.name, Method: zip.Deflate}
		hdr.SetMode(f.mode)
		w, err := zw.CreateHeader(hdr)
		if err != nil {
			t.Fatal(err)
		}
		if _, err := w.Write([]byte(f.content)); err != nil {
			t.Fatal(err)
		}
	}
	if err := zw.Close(); err != nil {
		t.Fatal(err)
	}

	hits := new(atomic.Int32)
	data := buf.Bytes()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.Write(data)
	}))
	t.Cleanup(server.Close)
	return server, hits
}

func assertFileExists(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); err != nil {
		t.Errorf("expected %s to exist: %v", path, err)
	}
}

func assertFileMissing(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); err == nil {
		t.Errorf("expected %s to be absent", path)
	}
}

func equalLines(got, want []string) bool {
	if len(got) != len(want) {
		return false
	}
	for i := range got {
		if got[i] != want[i] {
			return false
		}
	}
	return true
}
