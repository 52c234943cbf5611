package parsers

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"

	"github.com/ersonp/lore-forge/internal/domain/entities"
)

// JSONParser parses templates from JSON: either one template object or an
// array of them.
type JSONParser struct{}

// Parse reads JSON from the reader and returns parsed templates.
func (p *JSONParser) Parse(r io.Reader) ([]RawTemplate, error) {
	br := bufio.NewReader(r)
	first, err := peekNonSpace(br)
	if err != nil {
		return nil, fmt.Errorf("parsing JSON: %w", err)
	}

	decoder := json.NewDecoder(br)

	if first != '[' {
		var tpl entities.Template
		if err := decoder.Decode(&tpl); err != nil {
			return nil, fmt.Errorf("parsing JSON: %w", err)
		}
		return []RawTemplate{{Template: tpl, Line: 1}}, nil
	}

	var templates []entities.Template
	if err := decoder.Decode(&templates); err != nil {
		return nil, fmt.Errorf("parsing JSON: %w", err)
	}

	// Set line numbers (array index + 1, 1-indexed)
	result := make([]RawTemplate, len(templates))
	for i := range templates {
		result[i] = RawTemplate{Template: templates[i], Line: i + 1}
	}
	return result, nil
}

// peekNonSpace returns the first non-whitespace byte without consuming it.
func peekNonSpace(br *bufio.Reader) (byte, error) {
	for {
		b, err := br.ReadByte()
		if err != nil {
			if err == io.EOF {
				return 0, io.ErrUnexpectedEOF
			}
			return 0, err
		}
		switch b {
		case ' ', '\t', '\r', '\n':
			continue
		}
		return b, br.UnreadByte()
	}
}
