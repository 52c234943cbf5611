package parsers

import (
	"errors"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	"github.com/ersonp/lore-forge/internal/domain/entities"
)

// YAMLParser parses templates from YAML. A stream may hold several
// documents separated by "---"; a document may be one template or a
// sequence of them.
type YAMLParser struct{}

// Parse reads every YAML document from the reader.
func (p *YAMLParser) Parse(r io.Reader) ([]RawTemplate, error) {
	decoder := yaml.NewDecoder(r)
	result := []RawTemplate{}

	for {
		var doc yaml.Node
		err := decoder.Decode(&doc)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("parsing YAML: %w", err)
		}
		if len(doc.Content) == 0 {
			continue
		}

		root := doc.Content[0]
		nodes := []*yaml.Node{root}
		if root.Kind == yaml.SequenceNode {
			nodes = root.Content
		}

		for _, node := range nodes {
			var tpl entities.Template
			if err := node.Decode(&tpl); err != nil {
				return nil, fmt.Errorf("parsing YAML: line %d: %w", node.Line, err)
			}
			result = append(result, RawTemplate{Template: tpl, Line: node.Line})
		}
	}

	return result, nil
}
