// Package specs provides embedded sample artifacts.
//
// The embedded files form a small self-contained demo set: a
// questionnaire, the terminology it binds (one ValueSet and its
// CodeSystem), and a conformant response. They power the CLI's demo
// mode, the examples, and the integration tests.
//
// Usage:
//
//	data, err := specs.ReadFile(specs.Files.Questionnaire)
//	if err != nil {
//	    return err
//	}
package specs

import (
	"embed"
	"fmt"
	"io/fs"
)

//go:embed artifacts/*.json
var artifacts embed.FS

// Dir is the directory name inside the embedded filesystem.
const Dir = "artifacts"

// QuestionnaireURL is the canonical URL of the embedded questionnaire.
const QuestionnaireURL = "http://example.org/fhir/Questionnaire/weekly-check-in"

// ValueSetURL is the canonical URL of the embedded value set.
const ValueSetURL = "http://example.org/fhir/ValueSet/check-in-frequency"

// Files contains the file names of the embedded artifacts.
var Files = struct {
	Questionnaire string
	ValueSet      string
	CodeSystem    string
	Response      string
}{
	Questionnaire: "Questionnaire-weekly-check-in.json",
	ValueSet:      "ValueSet-check-in-frequency.json",
	CodeSystem:    "CodeSystem-check-in-frequency.json",
	Response:      "QuestionnaireResponse-weekly-check-in-example.json",
}

// FS returns the embedded filesystem and the directory the artifacts
// live in. The directory name should be used as a prefix when reading
// files, and can be handed to loaders that accept an fs.FS.
func FS() (fs.FS, string) {
	return artifacts, Dir
}

// ReadFile reads one embedded artifact by file name.
func ReadFile(name string) ([]byte, error) {
	data, err := artifacts.ReadFile(Dir + "/" + name)
	if err != nil {
		return nil, fmt.Errorf("read embedded artifact %s: %w", name, err)
	}
	return data, nil
}

// ListFiles returns the names of all embedded artifacts.
func ListFiles() ([]string, error) {
	entries, err := artifacts.ReadDir(Dir)
	if err != nil {
		return nil, fmt.Errorf("read embedded artifacts: %w", err)
	}

	files := make([]string, 0, len(entries))
	for _, entry := range entries {
		if !entry.IsDir() {
			files = append(files, entry.Name())
		}
	}
	return files, nil
}

// HasFile checks whether an embedded artifact exists.
func HasFile(name string) bool {
	_, err := artifacts.ReadFile(Dir + "/" + name)
	return err == nil
}
