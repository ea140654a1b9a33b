package cache

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// Export formats.
const (
	FormatJSON = "json"
	FormatTOML = "toml"
	FormatYAML = "yaml"
)

// Formats lists the supported export formats.
var Formats = []string{FormatJSON, FormatTOML, FormatYAML}

type document struct {
	Systems []Entry `json:"systems" toml:"systems" yaml:"systems"`
}

// Export writes entries to w in the given format.
func Export(w io.Writer, entries []Entry, format string) error {
	doc := document{Systems: entries}
	if doc.Systems == nil {
		doc.Systems = []Entry{}
	}

	switch strings.ToLower(format) {
	case FormatJSON, "":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(doc); err != nil {
			return fmt.Errorf("cache: export json: %w", err)
		}
	case FormatTOML:
		if err := toml.NewEncoder(w).Encode(doc); err != nil {
			return fmt.Errorf("cache: export toml: %w", err)
		}
	case FormatYAML, "yml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(doc); err != nil {
			return fmt.Errorf("cache: export yaml: %w", err)
		}
		if err := enc.Close(); err != nil {
			return fmt.Errorf("cache: export yaml: %w", err)
		}
	default:
		return fmt.Errorf("cache: unknown export format %q (want one of %s)", format, strings.Join(Formats, ", "))
	}
	return nil
}
