package parsers

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// Decode reads one JSON or YAML document from r into v. The format comes
// from filename's extension; anything but .json is read as YAML, which
// also accepts JSON.
func Decode(filename string, r io.Reader, v any) error {
	if formatOf(filename) == "json" {
		if err := json.NewDecoder(r).Decode(v); err != nil {
			return fmt.Errorf("parsing JSON %s: %w", filename, err)
		}
		return nil
	}

	if err := yaml.NewDecoder(r).Decode(v); err != nil && err != io.EOF {
		return fmt.Errorf("parsing YAML %s: %w", filename, err)
	}
	return nil
}

// DecodeFile opens path and decodes it with Decode.
func DecodeFile(path string, v any) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("opening file: %w", err)
	}
	defer f.Close()

	return Decode(path, f, v)
}
