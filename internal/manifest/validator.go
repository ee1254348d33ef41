package manifest

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

//go:embed schema/pypack.schema.json
var schemaBytes []byte

var (
	compiledSchema *jsonschema.Schema
	compileOnce    sync.Once
	compileErr     error
	printer        = message.NewPrinter(language.English)
)

// ValidationResult contains the outcome of a schema validation.
type ValidationResult struct {
	Valid  bool
	Issues []ValidationIssue
}

// ValidationIssue represents a single validation error.
type ValidationIssue struct {
	Path    string // Instance location (e.g., "/deps/0")
	Message string // Human-readable error message
	Keyword string // Schema keyword that failed
}

// getSchema compiles the embedded JSON schema once and returns it.
func getSchema() (*jsonschema.Schema, error) {
	compileOnce.Do(func() {
		doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(schemaBytes))
		if err != nil {
			compileErr = fmt.Errorf("unmarshaling schema JSON: %w", err)
			return
		}

		c := jsonschema.NewCompiler()
		if err := c.AddResource("pypack.schema.json", doc); err != nil {
			compileErr = fmt.Errorf("adding schema resource: %w", err)
			return
		}
		compiledSchema, compileErr = c.Compile("pypack.schema.json")
		if compileErr != nil {
			compileErr = fmt.Errorf("compiling schema: %w", compileErr)
		}
	})
	return compiledSchema, compileErr
}

// Validate checks manifest bytes against the schema and against the
// key-order rule that Load applies ("deps" must come first). The error
// return is for unparsable input or schema compilation failures.
func Validate(data []byte) (*ValidationResult, error) {
	schema, err := getSchema()
	if err != nil {
		return nil, fmt.Errorf("loading schema: %w", err)
	}

	inst, err := jsonschema.UnmarshalJSON(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("parsing JSON: %w", err)
	}

	var issues []ValidationIssue
	if err := schema.Validate(inst); err != nil {
		var ve *jsonschema.ValidationError
		if !errors.As(err, &ve) {
			return nil, fmt.Errorf("validating manifest: %w", err)
		}
		issues = extractIssues(ve)
	}

	// The schema cannot express key order; Load ignores manifests whose
	// first key is not "deps", so report it here.
	if _, isObject := inst.(map[string]any); isObject {
		if _, err := firstEntry(data); err != nil {
			issues = append(issues, ValidationIssue{
				Path:    "",
				Message: err.Error(),
				Keyword: "order",
			})
		}
	}

	return &ValidationResult{Valid: len(issues) == 0, Issues: issues}, nil
}

// ValidateFile reads a file and validates it.
func ValidateFile(path string) (*ValidationResult, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading file %s: %w", path, err)
	}
	return Validate(data)
}

// msgDependencyShape replaces the per-branch type errors of a deps entry
// that matches neither accepted form.
const msgDependencyShape = `must be a package name or an object with a "name" field`

// extractIssues flattens the error tree into one issue per failing keyword
// and instance location.
func extractIssues(ve *jsonschema.ValidationError) []ValidationIssue {
	var issues []ValidationIssue
	collectIssues(ve, &issues)
	if len(issues) == 0 {
		return []ValidationIssue{{Message: ve.Error()}}
	}
	return uniqueIssues(issues)
}

func collectIssues(ve *jsonschema.ValidationError, issues *[]ValidationIssue) {
	kw := keywordOf(ve)
	if len(ve.Causes) == 0 {
		switch kw {
		case "", "oneOf", "allOf", "$ref":
			return
		}
		*issues = append(*issues, ValidationIssue{
			Path:    instancePath(ve.InstanceLocation),
			Message: ve.ErrorKind.LocalizedString(printer),
			Keyword: kw,
		})
		return
	}

	// A deps entry of the wrong JSON type fails both alternatives with a
	// type error each; report it once.
	if kw == "oneOf" && onlyTypeMismatches(ve) {
		*issues = append(*issues, ValidationIssue{
			Path:    instancePath(ve.InstanceLocation),
			Message: msgDependencyShape,
			Keyword: "type",
		})
		return
	}

	for _, cause := range ve.Causes {
		collectIssues(cause, issues)
	}
}

// onlyTypeMismatches reports whether every leaf below ve is a type error on
// ve's own instance.
func onlyTypeMismatches(ve *jsonschema.ValidationError) bool {
	path := instancePath(ve.InstanceLocation)
	var leaves []ValidationIssue
	for _, cause := range ve.Causes {
		collectIssues(cause, &leaves)
	}
	if len(leaves) == 0 {
		return false
	}
	for _, leaf := range leaves {
		if leaf.Keyword != "type" || leaf.Path != path {
			return false
		}
	}
	return true
}

func keywordOf(ve *jsonschema.ValidationError) string {
	if ve.ErrorKind == nil {
		return ""
	}
	kwPath := ve.ErrorKind.KeywordPath()
	if len(kwPath) == 0 {
		return ""
	}
	return kwPath[len(kwPath)-1]
}

// instancePath renders a location as a JSON pointer, "" for the document.
func instancePath(loc []string) string {
	if len(loc) == 0 {
		return ""
	}
	return "/" + strings.Join(loc, "/")
}

func uniqueIssues(issues []ValidationIssue) []ValidationIssue {
	seen := make(map[ValidationIssue]bool, len(issues))
	result := issues[:0]
	for _, issue := range issues {
		if seen[issue] {
			continue
		}
		seen[issue] = true
		result = append(result, issue)
	}
	return result
}
