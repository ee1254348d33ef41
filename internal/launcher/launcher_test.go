package launcher

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/pypack-labs/pypack/internal/installer"
	"github.com/pypack-labs/pypack/internal/resolver"
	"github.com/pypack-labs/pypack/internal/runtime"
	"github.com/pypack-labs/pypack/internal/runtime/runtimetest"
)

type fakeResolver struct {
	res resolver.Result
	err error
}

func (f *fakeResolver) Resolve(context.Context) (resolver.Result, error) {
	return f.res, f.err
}

var pathPython = resolver.Result{State: resolver.FoundInPath, Exe: "python3"}

func newLauncher(res *fakeResolver, runner *runtimetest.Runner, logs *bytes.Buffer) *Launcher {
	return &Launcher{Resolver: res, Runner: runner, Logger: log.New(logs)}
}

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
}

func TestRun_PropagatesScriptExitCode(t *testing.T) {
	for _, code := range []int{0, 1, 7, 255} {
		t.Run(strconv.Itoa(code), func(t *testing.T) {
			runner := &runtimetest.Runner{Codes: map[string]int{"python3 tool.py": code}}
			l := newLauncher(&fakeResolver{res: pathPython}, runner, &bytes.Buffer{})

			got, err := l.Run(context.Background(), Options{Argv0: "/usr/local/bin/tool", WorkDir: t.TempDir()})
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != code {
				t.Errorf("exit code = %d, want %d", got, code)
			}
		})
	}
}

func TestRun_LaunchCommand(t *testing.T) {
	dir := t.TempDir()
	runner := &runtimetest.Runner{}
	res := &fakeResolver{res: resolver.Result{State: resolver.Downloaded, Prefix: "python/", Exe: "python.exe"}}
	l := newLauncher(res, runner, &bytes.Buffer{})

	stdio := runtime.Stdio{Stdout: &bytes.Buffer{}}
	if _, err := l.Run(context.Background(), Options{
		Argv0:   `C:\apps\report.exe`,
		Args:    []string{"--month", "may"},
		WorkDir: dir,
		Stdio:   stdio,
	}); err != nil {
		t.Fatal(err)
	}

	calls := runner.Calls()
	last := calls[len(calls)-1]
	if got := last.Line(); got != "python/python.exe report.py --month may" {
		t.Errorf("launch command = %q", got)
	}
	if last.Command.Dir != dir {
		t.Errorf("Dir = %q, want %q", last.Command.Dir, dir)
	}
	if last.Stdio.Stdout != stdio.Stdout {
		t.Error("script did not receive the launcher's stdio")
	}
}

func TestRun_PrefixSharedWithInstaller(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "pypack.json", `{"deps":["requests"]}`)

	runner := &runtimetest.Runner{Codes: map[string]int{"python/python.exe -m pip show requests": 1}}
	res := &fakeResolver{res: resolver.Result{State: resolver.FoundLocally, Prefix: "python/", Exe: "python.exe"}}
	l := newLauncher(res, runner, &bytes.Buffer{})

	if _, err := l.Run(context.Background(), Options{Argv0: "tool.exe", WorkDir: dir}); err != nil {
		t.Fatal(err)
	}
	for _, line := range runner.Lines() {
		if !strings.HasPrefix(line, "python/python.exe ") {
			t.Errorf("command %q does not use the resolved prefix", line)
		}
	}
	if runner.Count("pip install requests") != 1 {
		t.Errorf("expected one install, got %v", runner.Lines())
	}
}

func TestRun_InstallFailureStopsLaunch(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "pypack.json", `{"deps":["broken"]}`)

	runner := &runtimetest.Runner{Default: 1}
	var logs bytes.Buffer
	l := newLauncher(&fakeResolver{res: pathPython}, runner, &logs)

	code, err := l.Run(context.Background(), Options{Argv0: "tool", WorkDir: dir})
	if code != 1 {
		t.Errorf("exit code = %d, want 1", code)
	}
	var installErr *installer.InstallError
	if !errors.As(err, &installErr) {
		t.Fatalf("error = %v, want *installer.InstallError", err)
	}
	if runner.Count("tool.py") != 0 {
		t.Errorf("script launched after install failure: %v", runner.Lines())
	}
	if !strings.Contains(logs.String(), "Failed to install a dependency!") {
		t.Errorf("failure message not logged: %q", logs.String())
	}
}

func TestRun_NoManifestStillLaunches(t *testing.T) {
	runner := &runtimetest.Runner{Codes: map[string]int{"python3 tool.py": 0}}
	var logs bytes.Buffer
	l := newLauncher(&fakeResolver{res: pathPython}, runner, &logs)

	code, err := l.Run(context.Background(), Options{Argv0: "tool", WorkDir: t.TempDir()})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if code != 0 {
		t.Errorf("exit code = %d, want 0", code)
	}
	if runner.Count("tool.py") != 1 {
		t.Errorf("script not launched: %v", runner.Lines())
	}
	if !strings.Contains(logs.String(), "pypack.json not found") {
		t.Errorf("missing-manifest warning not logged: %q", logs.String())
	}
}

func TestRun_CustomManifestPath(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "deps.json", `{"deps":["rich"]}`)

	runner := &runtimetest.Runner{}
	l := newLauncher(&fakeResolver{res: pathPython}, runner, &bytes.Buffer{})

	if _, err := l.Run(context.Background(), Options{Argv0: "tool", WorkDir: dir, ManifestPath: filepath.Join(dir, "deps.json")}); err != nil {
		t.Fatal(err)
	}
	if runner.Count("pip show rich") != 1 {
		t.Errorf("custom manifest not used: %v", runner.Lines())
	}
}

func TestRun_RuntimeUnavailable(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		message string
	}{
		{"no runtime", resolver.ErrNoRuntime, "Python could not be found"},
		{"download failed", resolver.ErrDownloadFailed, "Python download failed!"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			runner := &runtimetest.Runner{}
			var logs bytes.Buffer
			l := newLauncher(&fakeResolver{err: tt.err}, runner, &logs)

			code, err := l.Run(context.Background(), Options{Argv0: "tool", WorkDir: t.TempDir()})
			if code != FailureCode {
				t.Errorf("exit code = %d, want %d", code, FailureCode)
			}
			if !errors.Is(err, tt.err) {
				t.Errorf("error = %v, want %v", err, tt.err)
			}
			if len(runner.Calls()) != 0 {
				t.Errorf("commands issued without a runtime: %v", runner.Lines())
			}
			if !strings.Contains(logs.String(), tt.message) {
				t.Errorf("logs %q do not contain %q", logs.String(), tt.message)
			}
		})
	}
}

func TestRun_ScriptCannotStart(t *testing.T) {
	runner := &runtimetest.Runner{
		Handler: func(cmd runtime.Command, _ runtime.Stdio) (int, error) {
			if strings.HasSuffix(cmd.Line(), "tool.py") {
				return -1, errors.New("exec: not found")
			}
			return 0, nil
		},
	}
	l := newLauncher(&fakeResolver{res: pathPython}, runner, &bytes.Buffer{})

	code, err := l.Run(context.Background(), Options{Argv0: "tool", WorkDir: t.TempDir()})
	if err == nil {
		t.Fatal("expected error when the script cannot start")
	}
	if code != FailureCode {
		t.Errorf("exit code = %d, want %d", code, FailureCode)
	}
}

func TestRun_EmptyName(t *testing.T) {
	l := newLauncher(&fakeResolver{res: pathPython}, &runtimetest.Runner{}, &bytes.Buffer{})
	if _, err := l.Run(context.Background(), Options{Argv0: "/usr/bin/", WorkDir: t.TempDir()}); err == nil {
		t.Fatal("expected error for an empty invocation name")
	}
}
