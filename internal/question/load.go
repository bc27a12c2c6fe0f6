package question

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/mod/semver"
	"gopkg.in/yaml.v3"
)

// supportedSchemaMajor is the corpus file format major version this build
// understands. Minor/patch bumps are additive and accepted.
const supportedSchemaMajor = "v1"

// CorpusFile is the top-level shape of a corpus document.
type CorpusFile struct {
	SchemaVersion string        `json:"schema_version" yaml:"schema_version"`
	Questions     []RawQuestion `json:"questions" yaml:"questions"`
}

// LoadCorpus reads a corpus file (JSON or YAML, chosen by extension),
// verifies its schema_version and shape, and validates every record.
// The returned LoadReport carries per-record failures and near-duplicate
// warnings; only an unreadable or structurally invalid document is a hard
// error.
func LoadCorpus(path string) (*Corpus, *LoadReport, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("read corpus: %w", err)
	}
	return ParseCorpus(data, path)
}

// ParseCorpus is LoadCorpus over in-memory bytes; path selects the format
// by extension (".json" for JSON, anything else is treated as YAML).
func ParseCorpus(data []byte, path string) (*Corpus, *LoadReport, error) {
	isJSON := strings.ToLower(filepath.Ext(path)) == ".json"

	doc, err := parseGeneric(data, isJSON)
	if err != nil {
		return nil, nil, err
	}
	if err := validateShape(doc); err != nil {
		return nil, nil, err
	}

	var file CorpusFile
	if isJSON {
		file, err = decodeJSONFile(data)
	} else {
		file, err = decodeYAMLFile(data)
	}
	if err != nil {
		return nil, nil, err
	}

	if err := checkSchemaVersion(file.SchemaVersion); err != nil {
		return nil, nil, err
	}

	corpus, report := BuildCorpus(file.Questions)
	return corpus, report, nil
}

// checkSchemaVersion gates the document on a supported semver range.
func checkSchemaVersion(v string) error {
	canon := v
	if !strings.HasPrefix(canon, "v") {
		canon = "v" + canon
	}
	if !semver.IsValid(canon) {
		return fmt.Errorf("schema_version %q is not valid semver", v)
	}
	if semver.Major(canon) != supportedSchemaMajor {
		return fmt.Errorf("schema_version %q: unsupported major version (want %s)",
			v, supportedSchemaMajor)
	}
	return nil
}

// parseGeneric produces the any-typed document the shape validator needs.
// YAML is round-tripped through encoding/json so numbers and maps arrive in
// the representation the jsonschema library expects.
func parseGeneric(data []byte, isJSON bool) (any, error) {
	if isJSON {
		var doc any
		if err := json.Unmarshal(data, &doc); err != nil {
			return nil, fmt.Errorf("parse json: %w", err)
		}
		return doc, nil
	}
	var raw any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse yaml: %w", err)
	}
	jsonBytes, err := json.Marshal(raw)
	if err != nil {
		return nil, fmt.Errorf("normalize yaml: %w", err)
	}
	var doc any
	if err := json.Unmarshal(jsonBytes, &doc); err != nil {
		return nil, fmt.Errorf("normalize yaml: %w", err)
	}
	return doc, nil
}

func decodeJSONFile(data []byte) (CorpusFile, error) {
	var file CorpusFile
	decoder := json.NewDecoder(bytes.NewReader(data))
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&file); err != nil {
		return CorpusFile{}, fmt.Errorf("parse json: %w", err)
	}
	if err := decoder.Decode(&struct{}{}); err != io.EOF {
		if err == nil {
			return CorpusFile{}, fmt.Errorf("parse json: multiple documents are not supported")
		}
		return CorpusFile{}, fmt.Errorf("parse json: %w", err)
	}
	return file, nil
}

func decodeYAMLFile(data []byte) (CorpusFile, error) {
	var file CorpusFile
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&file); err != nil {
		return CorpusFile{}, fmt.Errorf("parse yaml: %w", err)
	}
	if err := decoder.Decode(&struct{}{}); err != io.EOF {
		if err == nil {
			return CorpusFile{}, fmt.Errorf("parse yaml: multiple documents are not supported")
		}
		return CorpusFile{}, fmt.Errorf("parse yaml: %w", err)
	}
	return file, nil
}
