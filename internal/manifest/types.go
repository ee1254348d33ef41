package manifest

import (
	"encoding/json"
	"fmt"
)

// DefaultFileName is the manifest file looked up in the working directory.
const DefaultFileName = "pypack.json"

// DepsKey is the top-level key holding the dependency list. It must be the
// first key of the document.
const DepsKey = "deps"

// Status classifies the outcome of loading a manifest.
type Status int

const (
	// StatusOK means the manifest was recognized; Deps may still be empty.
	StatusOK Status = iota
	// StatusMissing means the file could not be opened.
	StatusMissing
	// StatusMalformed means the file was read but is not a recognized
	// manifest: invalid JSON, not an object, first key other than "deps",
	// or a "deps" value that is not a list of names.
	StatusMalformed
)

func (s Status) String() string {
	switch s {
	case StatusOK:
		return "ok"
	case StatusMissing:
		return "missing"
	case StatusMalformed:
		return "malformed"
	default:
		return fmt.Sprintf("Status(%d)", int(s))
	}
}

// Manifest is a loaded pypack.json.
type Manifest struct {
	Path   string
	Status Status
	// Deps lists the declared packages in document order.
	Deps []Dependency
	// Reason explains a StatusMalformed or StatusMissing outcome.
	Reason string
}

// Names returns the dependency names in document order.
func (m *Manifest) Names() []string {
	names := make([]string, len(m.Deps))
	for i, d := range m.Deps {
		names[i] = d.Name
	}
	return names
}

// Dependency is one entry of the "deps" list. It is written either as a bare
// string or as an object with a "name" field.
type Dependency struct {
	Name string `json:"name"`
}

// UnmarshalJSON accepts "requests" as well as {"name": "requests"}.
func (d *Dependency) UnmarshalJSON(data []byte) error {
	var name string
	if err := json.Unmarshal(data, &name); err == nil {
		if name == "" {
			return fmt.Errorf("empty dependency name")
		}
		d.Name = name
		return nil
	}

	var obj struct {
		Name *string `json:"name"`
	}
	if err := json.Unmarshal(data, &obj); err != nil {
		return fmt.Errorf("dependency must be a string or an object with a name: %w", err)
	}
	if obj.Name == nil || *obj.Name == "" {
		return fmt.Errorf("dependency object has no name")
	}
	d.Name = *obj.Name
	return nil
}
