package style

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/matzehuels/graphview/pkg/errors"
)

// Format is a stylesheet document encoding.
type Format string

const (
	FormatTOML Format = "toml"
	FormatYAML Format = "yaml"
)

// document is the on-disk shape shared by both encodings:
//
//	[[rules]]
//	selector = "node.important"
//	fill-color = ["yellow", "red"]
//	fill-mode = "dyn-plain"
//	size = "14px"
type document struct {
	Rules []map[string]any `toml:"rules" yaml:"rules"`
}

// FormatFromPath picks the encoding from the file extension.
func FormatFromPath(path string) (Format, error) {
	if err := errors.ValidateStyleSheetPath(path); err != nil {
		return "", err
	}
	if strings.EqualFold(filepath.Ext(path), ".toml") {
		return FormatTOML, nil
	}
	return FormatYAML, nil
}

// LoadFile reads and parses a stylesheet document.
func LoadFile(path string) (*StyleSheet, error) {
	format, err := FormatFromPath(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "stylesheet %s", path)
		}
		return nil, fmt.Errorf("read stylesheet %s: %w", path, err)
	}
	return Parse(data, format)
}

// ParseAny parses a document of unknown encoding, trying TOML then YAML.
func ParseAny(data []byte) (*StyleSheet, error) {
	s, tomlErr := Parse(data, FormatTOML)
	if tomlErr == nil {
		return s, nil
	}
	s, yamlErr := Parse(data, FormatYAML)
	if yamlErr == nil {
		return s, nil
	}
	return nil, errors.Wrap(errors.ErrCodeInvalidStyleSheet, tomlErr, "not a TOML or YAML stylesheet (yaml: %v)", yamlErr)
}

// Parse decodes a stylesheet. Structural problems (undecodable document, bad
// selector) are errors; a bad property value is skipped and recorded in
// StyleSheet.Warnings.
func Parse(data []byte, format Format) (*StyleSheet, error) {
	var doc document
	var err error
	switch format {
	case FormatTOML:
		_, err = toml.Decode(string(data), &doc)
	case FormatYAML:
		err = yaml.Unmarshal(data, &doc)
	default:
		return nil, errors.New(errors.ErrCodeInvalidStyleSheet, "unknown stylesheet format %q", format)
	}
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidStyleSheet, err, "decode %s stylesheet", format)
	}

	sheet := NewStyleSheet()
	for i, raw := range doc.Rules {
		selText, ok := raw["selector"].(string)
		if !ok {
			return nil, errors.New(errors.ErrCodeInvalidStyleSheet, "rule %d: missing selector", i)
		}
		sel, event, err := ParseSelector(selText)
		if err != nil {
			return nil, err
		}
		rule := sheet.Rule(sel)

		// Deterministic order so warnings are stable.
		keys := make([]string, 0, len(raw))
		for k := range raw {
			if k != "selector" {
				keys = append(keys, k)
			}
		}
		sort.Strings(keys)

		for _, k := range keys {
			prop, ok := ParseProperty(k)
			if !ok {
				sheet.Warnings = append(sheet.Warnings,
					errors.New(errors.ErrCodeInvalidStyleValue, "%s: unknown property %q", selText, k))
				continue
			}
			v, err := ParsePropertyValue(prop, normalize(raw[k]))
			if err != nil {
				sheet.Warnings = append(sheet.Warnings, fmt.Errorf("%s: %w", selText, err))
				continue
			}
			if event != "" {
				rule.SetEvent(event, prop, v)
			} else {
				rule.Set(prop, v)
			}
		}
	}
	return sheet, nil
}

// normalize turns decoder-specific slice types into []any.
func normalize(v any) any {
	switch x := v.(type) {
	case []any:
		return x
	case []map[string]any:
		return v
	case []string:
		out := make([]any, len(x))
		for i, s := range x {
			out[i] = s
		}
		return out
	case []int64:
		out := make([]any, len(x))
		for i, n := range x {
			out[i] = n
		}
		return out
	case []float64:
		out := make([]any, len(x))
		for i, n := range x {
			out[i] = n
		}
		return out
	}
	return v
}
