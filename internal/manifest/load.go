package manifest

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

// Supported manifest formats.
const (
	FormatYAML = "yaml"
	FormatTOML = "toml"
	FormatCUE  = "cue"
)

// Load reads, parses and validates the manifest at path. The format is
// chosen by file extension.
func Load(path string) (*Document, error) {
	format, err := FormatOf(path)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read manifest: %w", err)
	}

	doc, err := Parse(data, format, path)
	if err != nil {
		return nil, err
	}

	if errs := Validate(doc); len(errs) > 0 {
		return nil, fmt.Errorf("invalid manifest: %w", ValidationErrors(errs))
	}
	return doc, nil
}

// FormatOf maps a file extension to a manifest format.
func FormatOf(path string) (string, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".toml":
		return FormatTOML, nil
	case ".cue":
		return FormatCUE, nil
	default:
		return "", fmt.Errorf("unsupported manifest extension %q: use .yaml, .yml, .toml or .cue", filepath.Ext(path))
	}
}

// Parse decodes data in the given format. Unknown fields are rejected for
// YAML and TOML. filename is used in CUE positions.
func Parse(data []byte, format, filename string) (*Document, error) {
	var doc Document
	switch format {
	case FormatYAML:
		decoder := yaml.NewDecoder(bytes.NewReader(data))
		decoder.KnownFields(true) // Reject unknown fields
		if err := decoder.Decode(&doc); err != nil {
			return nil, fmt.Errorf("failed to parse YAML: %w", err)
		}

	case FormatTOML:
		md, err := toml.Decode(string(data), &doc)
		if err != nil {
			return nil, fmt.Errorf("failed to parse TOML: %w", err)
		}
		if undecoded := md.Undecoded(); len(undecoded) > 0 {
			return nil, fmt.Errorf("failed to parse TOML: unknown field %q", undecoded[0].String())
		}

	case FormatCUE:
		value := cuecontext.New().CompileBytes(data, cue.Filename(filename))
		if err := value.Err(); err != nil {
			return nil, fmt.Errorf("failed to compile CUE: %w", err)
		}
		if err := value.Decode(&doc); err != nil {
			return nil, fmt.Errorf("failed to decode CUE: %w", err)
		}

	default:
		return nil, fmt.Errorf("unsupported manifest format %q", format)
	}
	return &doc, nil
}
