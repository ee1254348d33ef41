package manifest

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
)

// Load reads the manifest at path. It never fails: problems are reported
// through Status and Reason so the caller can continue without
// dependencies.
func Load(path string) *Manifest {
	data, err := os.ReadFile(path)
	if err != nil {
		return &Manifest{Path: path, Status: StatusMissing, Reason: err.Error()}
	}

	m, err := Parse(data)
	if err != nil {
		return &Manifest{Path: path, Status: StatusMalformed, Reason: err.Error()}
	}
	m.Path = path
	return m
}

// Parse decodes manifest bytes. The document must be a JSON object whose
// first key is "deps"; keys after it are ignored.
func Parse(data []byte) (*Manifest, error) {
	if !json.Valid(data) {
		return nil, fmt.Errorf("invalid JSON")
	}

	raw, err := firstEntry(data)
	if err != nil {
		return nil, err
	}

	var deps []Dependency
	if err := json.Unmarshal(raw, &deps); err != nil {
		return nil, fmt.Errorf("parsing %q: %w", DepsKey, err)
	}
	return &Manifest{Status: StatusOK, Deps: deps}, nil
}

// firstEntry returns the raw value of the first key of the top-level object,
// provided that key is DepsKey.
func firstEntry(data []byte) (json.RawMessage, error) {
	dec := json.NewDecoder(bytes.NewReader(data))

	tok, err := dec.Token()
	if err != nil {
		return nil, fmt.Errorf("reading document: %w", err)
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return nil, fmt.Errorf("top-level value is not an object")
	}

	tok, err = dec.Token()
	if err != nil {
		return nil, fmt.Errorf("reading first key: %w", err)
	}
	key, ok := tok.(string)
	if !ok {
		return nil, fmt.Errorf("object is empty")
	}
	if key != DepsKey {
		return nil, fmt.Errorf("first key is %q, not %q", key, DepsKey)
	}

	var raw json.RawMessage
	if err := dec.Decode(&raw); err != nil {
		return nil, fmt.Errorf("reading %q: %w", DepsKey, err)
	}
	return raw, nil
}
