package storage

import (
	"bytes"
	"encoding/json"
	"encoding/xml"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"powertree/local-app/src/pkg/model"
)

// Supported document formats.
const (
	FormatJSON = "json"
	FormatXML  = "xml"
	FormatYAML = "yaml"
)

// ParseError reports a document that is not well-formed or does not
// describe a node.
type ParseError struct {
	Format string
	Err    error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("invalid %s tree document: %v", e.Format, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

var errNotNodeObject = errors.New("document is not a node object")

// FormatFromFilename picks the format matching the file extension, or
// fallback when the extension is unknown.
func FormatFromFilename(filename, fallback string) string {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".json":
		return FormatJSON
	case ".xml":
		return FormatXML
	case ".yaml", ".yml":
		return FormatYAML
	default:
		return fallback
	}
}

// ValidFormat reports whether format is supported.
func ValidFormat(format string) bool {
	switch format {
	case FormatJSON, FormatXML, FormatYAML:
		return true
	}
	return false
}

// Serialize encodes the tree below root, derived fields included, with
// two-space indentation.
func Serialize(root *model.Node, format string) ([]byte, error) {
	var data []byte
	var err error
	switch format {
	case FormatJSON:
		data, err = json.MarshalIndent(root, "", "  ")
	case FormatXML:
		data, err = xml.MarshalIndent(root, "", "  ")
		if err == nil {
			data = append([]byte(xml.Header), data...)
		}
	case FormatYAML:
		var buf bytes.Buffer
		enc := yaml.NewEncoder(&buf)
		enc.SetIndent(2)
		if err = enc.Encode(root); err == nil {
			err = enc.Close()
		}
		data = buf.Bytes()
	default:
		return nil, fmt.Errorf("unsupported format: %s", format)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to marshal tree: %w", err)
	}
	return data, nil
}

// Deserialize decodes a tree document and normalizes it. Malformed input
// yields a *ParseError.
func Deserialize(data []byte, format string) (*model.Node, error) {
	var doc legacyNode
	var err error
	switch format {
	case FormatJSON:
		trimmed := bytes.TrimSpace(data)
		if len(trimmed) == 0 || trimmed[0] != '{' {
			err = errNotNodeObject
		} else {
			err = json.Unmarshal(trimmed, &doc)
		}
	case FormatXML:
		err = xml.Unmarshal(data, &doc)
	case FormatYAML:
		var node yaml.Node
		if err = yaml.Unmarshal(data, &node); err == nil {
			if len(node.Content) == 0 || node.Content[0].Kind != yaml.MappingNode {
				err = errNotNodeObject
			} else {
				err = node.Content[0].Decode(&doc)
			}
		}
	default:
		return nil, fmt.Errorf("unsupported format: %s", format)
	}
	if err != nil {
		return nil, &ParseError{Format: format, Err: err}
	}
	return normalize(&doc), nil
}

// FileExport writes the tree below root to a file in the given format.
func FileExport(root *model.Node, filename string, format string) error {
	data, err := Serialize(root, format)
	if err != nil {
		return err
	}

	// Ensure the directory exists
	dir := filepath.Dir(filename)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	if err := os.WriteFile(filename, data, 0644); err != nil {
		return fmt.Errorf("failed to write file: %w", err)
	}
	return nil
}

// FileImport reads and normalizes a tree document from a file.
func FileImport(filename string, format string) (*model.Node, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}
	return Deserialize(data, format)
}
