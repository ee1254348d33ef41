package portable

import "testing"

func TestLookup(t *testing.T) {
	tests := []struct {
		goos, goarch string
		found        bool
	}{
		{"windows", "amd64", true},
		{"windows", "arm64", false},
		{"linux", "amd64", false},
		{"darwin", "arm64", false},
	}

	for _, tt := range tests {
		t.Run(tt.goos+"/"+tt.goarch, func(t *testing.T) {
			d, ok := Lookup(tt.goos, tt.goarch)
			if ok != tt.found {
				t.Fatalf("Lookup(%s, %s) found = %v, want %v", tt.goos, tt.goarch, ok, tt.found)
			}
			if ok && d.Exe != "python.exe" {
				t.Errorf("Exe = %q, want python.exe", d.Exe)
			}
		})
	}
}

func TestDefaultDistributionURL(t *testing.T) {
	d, _ := Lookup("windows", "amd64")
	want := "https://www.python.org/ftp/python/3.12.8/python-3.12.8-embed-amd64.zip"
	if d.URL != want {
		t.Errorf("URL = %q, want %q", d.URL, want)
	}
}

func TestMarkerName(t *testing.T) {
	tests := []struct {
		version string
		want    string
		wantErr bool
	}{
		{"3.12.8", "python312._pth", false},
		{"3.9.13", "python39._pth", false},
		{"3.13.1", "python313._pth", false},
		{"latest", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.version, func(t *testing.T) {
			got, err := Distribution{Version: tt.version}.MarkerName()
			if tt.wantErr {
				if err == nil {
					t.Errorf("expected error, got %q", got)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("MarkerName() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestWithVersion(t *testing.T) {
	d, _ := Lookup("windows", "amd64")

	other := d.WithVersion("v3.11.9")
	if other.Version != "3.11.9" {
		t.Errorf("Version = %q, want 3.11.9", other.Version)
	}
	want := "https://www.python.org/ftp/python/3.11.9/python-3.11.9-embed-amd64.zip"
	if other.URL != want {
		t.Errorf("URL = %q, want %q", other.URL, want)
	}

	if same := d.WithVersion(""); same != d {
		t.Errorf("WithVersion(\"\") changed the distribution: %+v", same)
	}
}

func TestSourceURL_Mirror(t *testing.T) {
	d, _ := Lookup("windows", "amd64")

	if got := New().SourceURL(d); got != d.URL {
		t.Errorf("SourceURL without mirror = %q, want %q", got, d.URL)
	}

	f := New(WithMirror("https://mirror.example.com/python/"))
	want := "https://mirror.example.com/python/python-3.12.8-embed-amd64.zip"
	if got := f.SourceURL(d); got != want {
		t.Errorf("SourceURL with mirror = %q, want %q", got, want)
	}
}
