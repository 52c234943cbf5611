package parsers

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/ersonp/lore-forge/internal/domain/entities"
)

// CSVParser parses flat templates from CSV, one per row.
// Required columns: contentType, name. Optional: id, description,
// dependencies ("type:id" pairs separated by ";"). Every other column
// becomes a base field; empty cells are skipped.
type CSVParser struct{}

// Parse reads CSV from the reader and returns parsed templates.
func (p *CSVParser) Parse(r io.Reader) ([]RawTemplate, error) {
	reader := csv.NewReader(r)

	header, err := p.readHeader(reader)
	if err != nil {
		return nil, err
	}

	return p.readRecords(reader, header)
}

// readHeader reads and validates the CSV header row.
func (p *CSVParser) readHeader(reader *csv.Reader) ([]string, error) {
	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("reading CSV header: %w", err)
	}

	present := make(map[string]bool, len(header))
	for i, col := range header {
		header[i] = strings.TrimSpace(col)
		present[header[i]] = true
	}

	for _, col := range []string{entities.KeyContentType, entities.KeyName} {
		if !present[col] {
			return nil, fmt.Errorf("missing required column: %s", col)
		}
	}

	return header, nil
}

// readRecords reads all data rows and converts them to templates.
func (p *CSVParser) readRecords(reader *csv.Reader, header []string) ([]RawTemplate, error) {
	result := []RawTemplate{}
	lineNum := 1 // Header is line 1

	for {
		lineNum++
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", lineNum, err)
		}

		tpl, err := p.parseRecord(record, header, lineNum)
		if err != nil {
			return nil, err
		}
		result = append(result, RawTemplate{Template: tpl, Line: lineNum})
	}

	return result, nil
}

// parseRecord converts a CSV record to a template.
func (p *CSVParser) parseRecord(record, header []string, lineNum int) (entities.Template, error) {
	var tpl entities.Template

	for i, col := range header {
		if i >= len(record) {
			break
		}
		cell := strings.TrimSpace(record[i])
		if cell == "" {
			continue
		}

		switch col {
		case entities.KeyID:
			tpl.ID = cell
		case entities.KeyContentType:
			tpl.Type = entities.ContentType(cell)
		case entities.KeyName:
			tpl.Name = cell
		case entities.KeyDescription:
			tpl.Description = cell
		case entities.KeyDependencies:
			deps, err := parseDependencies(cell)
			if err != nil {
				return entities.Template{}, fmt.Errorf("line %d: %w", lineNum, err)
			}
			tpl.Dependencies = deps
		default:
			if tpl.Fields == nil {
				tpl.Fields = make(map[string]any)
			}
			tpl.Fields[col] = parseScalar(cell)
		}
	}

	return tpl, nil
}

// parseDependencies reads "type:id;type:id".
func parseDependencies(cell string) ([]entities.DependencyRef, error) {
	var deps []entities.DependencyRef
	for _, part := range strings.Split(cell, ";") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		typ, id, ok := strings.Cut(part, ":")
		if !ok || typ == "" || id == "" {
			return nil, fmt.Errorf("invalid dependency %q (want type:id)", part)
		}
		deps = append(deps, entities.DependencyRef{ID: id, Type: entities.ContentType(typ)})
	}
	return deps, nil
}

// parseScalar turns a cell into a bool, int, float or string.
func parseScalar(cell string) any {
	if b, err := strconv.ParseBool(cell); err == nil && (cell == "true" || cell == "false") {
		return b
	}
	if n, err := strconv.Atoi(cell); err == nil {
		return n
	}
	if f, err := strconv.ParseFloat(cell, 64); err == nil {
		return f
	}
	return cell
}
