package compiler

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/aretw0/wayfinder/pkg/domain"
	"github.com/mitchellh/mapstructure"
	"gopkg.in/yaml.v3"
)

// Format identifies the encoding of a route file.
type Format string

const (
	FormatYAML Format = "yaml"
	FormatJSON Format = "json"
)

// FormatFromPath guesses the format from a file extension. YAML is the default.
func FormatFromPath(path string) Format {
	if strings.EqualFold(filepath.Ext(path), ".json") {
		return FormatJSON
	}
	return FormatYAML
}

// Parse decodes a route file. The document is either a list of routes or
// a mapping with a "routes" key.
func Parse(data []byte, format Format) ([]domain.RouteConfig, error) {
	var raw any
	switch format {
	case FormatJSON:
		if err := json.Unmarshal(data, &raw); err != nil {
			return nil, fmt.Errorf("failed to parse json routes: %w", err)
		}
	case FormatYAML, "yml", "":
		if err := yaml.Unmarshal(data, &raw); err != nil {
			return nil, fmt.Errorf("failed to parse yaml routes: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported route format %q", format)
	}

	if doc, ok := raw.(map[string]any); ok {
		if routes, ok := doc["routes"]; ok {
			raw = routes
		}
	}
	if raw == nil {
		return nil, nil
	}
	return decodeConfigs(raw)
}

func decodeConfigs(raw any) ([]domain.RouteConfig, error) {
	var configs []domain.RouteConfig
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           &configs,
		TagName:          "mapstructure",
		WeaklyTypedInput: true,
		ErrorUnused:      true,
	})
	if err != nil {
		return nil, err
	}

	// A single mapping is a one-route list.
	if m, ok := raw.(map[string]any); ok {
		raw = []any{m}
	}
	if err := decoder.Decode(raw); err != nil {
		return nil, fmt.Errorf("failed to decode routes: %w", err)
	}
	return configs, nil
}
