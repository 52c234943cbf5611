package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/ersonp/lore-forge/internal/domain/entities"
)

// GetTemplate returns the template stored under (id, contentType), or nil
// when there is none.
func (r *Repository) GetTemplate(ctx context.Context, id string, contentType entities.ContentType) (*entities.Template, error) {
	query := `
		SELECT data, created_at, updated_at
		FROM templates
		WHERE id = ? AND content_type = ?
	`
	row := r.db.QueryRowContext(ctx, query, id, string(contentType))

	tpl, err := scanTemplate(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("scanning template %s:%s: %w", contentType, id, err)
	}
	tpl.ID = id
	tpl.Type = contentType
	return tpl, nil
}

// SaveTemplate inserts or replaces a template and returns its id. A
// template without an id gets a new UUID. Replacing keeps the original
// creation time.
func (r *Repository) SaveTemplate(ctx context.Context, template *entities.Template, contentType entities.ContentType) (string, error) {
	tpl := template.Clone()
	tpl.Type = contentType
	if tpl.ID == "" {
		tpl.ID = generateUUID()
	}

	now := timeNow()
	if tpl.CreatedAt.IsZero() {
		tpl.CreatedAt = now
	}
	tpl.UpdatedAt = now

	data, err := json.Marshal(tpl)
	if err != nil {
		return "", fmt.Errorf("marshaling template: %w", err)
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	query := `
		INSERT INTO templates (id, content_type, name, description, data, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id, content_type) DO UPDATE SET
			name = excluded.name,
			description = excluded.description,
			data = excluded.data,
			updated_at = excluded.updated_at
	`
	if _, err := tx.ExecContext(ctx, query,
		tpl.ID,
		string(contentType),
		tpl.Name,
		tpl.Description,
		string(data),
		tpl.CreatedAt,
		tpl.UpdatedAt,
	); err != nil {
		return "", fmt.Errorf("saving template: %w", err)
	}

	if err := replaceDependencies(ctx, tx, tpl); err != nil {
		return "", err
	}

	if err := logAction(ctx, tx, entities.AuditTemplateSaved, tpl.Ref(), map[string]any{
		"name":         tpl.Name,
		"dependencies": len(tpl.Dependencies),
	}); err != nil {
		return "", err
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("committing template: %w", err)
	}
	return tpl.ID, nil
}

func replaceDependencies(ctx context.Context, tx *sql.Tx, tpl *entities.Template) error {
	if _, err := tx.ExecContext(ctx,
		`DELETE FROM template_dependencies WHERE template_id = ? AND template_type = ?`,
		tpl.ID, string(tpl.Type),
	); err != nil {
		return fmt.Errorf("clearing template dependencies: %w", err)
	}

	if len(tpl.Dependencies) == 0 {
		return nil
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO template_dependencies (template_id, template_type, dependency_id, dependency_type, position)
		VALUES (?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("preparing dependency insert: %w", err)
	}
	defer stmt.Close()

	for i, dep := range tpl.Dependencies {
		if _, err := stmt.ExecContext(ctx, tpl.ID, string(tpl.Type), dep.ID, string(dep.Type), i); err != nil {
			return fmt.Errorf("saving dependency %s: %w", dep, err)
		}
	}
	return nil
}

// ListTemplatesByType returns every template of one type ordered by name.
func (r *Repository) ListTemplatesByType(ctx context.Context, contentType entities.ContentType) ([]entities.Template, error) {
	query := `
		SELECT id, data, created_at, updated_at
		FROM templates
		WHERE content_type = ?
		ORDER BY name, id
	`
	rows, err := r.db.QueryContext(ctx, query, string(contentType))
	if err != nil {
		return nil, fmt.Errorf("querying templates: %w", err)
	}
	defer rows.Close()

	templates := make([]entities.Template, 0, 16)
	for rows.Next() {
		var id string
		var data string
		var tpl entities.Template
		if err := rows.Scan(&id, &data, &tpl.CreatedAt, &tpl.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scanning template: %w", err)
		}
		decoded, err := decodeTemplate(data)
		if err != nil {
			return nil, fmt.Errorf("decoding template %s: %w", id, err)
		}
		decoded.ID = id
		decoded.Type = contentType
		decoded.CreatedAt = tpl.CreatedAt
		decoded.UpdatedAt = tpl.UpdatedAt
		templates = append(templates, *decoded)
	}
	return templates, rows.Err()
}

// DeleteTemplate removes a template with its dependency rows. Deleting a
// missing template is not an error.
func (r *Repository) DeleteTemplate(ctx context.Context, id string, contentType entities.ContentType) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	result, err := tx.ExecContext(ctx,
		`DELETE FROM templates WHERE id = ? AND content_type = ?`,
		id, string(contentType),
	)
	if err != nil {
		return fmt.Errorf("deleting template: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking rows affected: %w", err)
	}
	if rows > 0 {
		ref := entities.DependencyRef{ID: id, Type: contentType}
		if err := logAction(ctx, tx, entities.AuditTemplateDeleted, ref, nil); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing delete: %w", err)
	}
	return nil
}

// CountTemplates returns the number of templates of each content type.
func (r *Repository) CountTemplates(ctx context.Context) (map[entities.ContentType]int, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT content_type, COUNT(*) FROM templates GROUP BY content_type`)
	if err != nil {
		return nil, fmt.Errorf("counting templates: %w", err)
	}
	defer rows.Close()

	counts := make(map[entities.ContentType]int)
	for rows.Next() {
		var contentType string
		var count int
		if err := rows.Scan(&contentType, &count); err != nil {
			return nil, fmt.Errorf("scanning template count: %w", err)
		}
		counts[entities.ContentType(contentType)] = count
	}
	return counts, rows.Err()
}

// FindDependents returns the templates that depend on (id, contentType),
// directly or through up to depth levels of other templates, ordered by
// type then id. Uses a recursive CTE for the traversal.
func (r *Repository) FindDependents(ctx context.Context, id string, contentType entities.ContentType, depth int) ([]entities.DependencyRef, error) {
	if depth < 1 {
		return []entities.DependencyRef{}, nil
	}

	query := `
		WITH RECURSIVE dependents(template_id, template_type, level) AS (
			-- Base case: templates that declare the target directly
			SELECT template_id, template_type, 1
			FROM template_dependencies
			WHERE dependency_id = ? AND dependency_type = ?

			UNION

			-- Recursive case: templates that declare an already found dependent
			SELECT d.template_id, d.template_type, dependents.level + 1
			FROM template_dependencies d
			JOIN dependents ON d.dependency_id = dependents.template_id
				AND d.dependency_type = dependents.template_type
			WHERE dependents.level < ?
		)
		SELECT DISTINCT template_id, template_type
		FROM dependents
		WHERE NOT (template_id = ? AND template_type = ?)
		ORDER BY template_type, template_id
	`

	rows, err := r.db.QueryContext(ctx, query,
		id, string(contentType), depth, id, string(contentType))
	if err != nil {
		return nil, fmt.Errorf("querying dependents: %w", err)
	}
	defer rows.Close()

	refs := make([]entities.DependencyRef, 0, 8)
	for rows.Next() {
		var ref entities.DependencyRef
		var refType string
		if err := rows.Scan(&ref.ID, &refType); err != nil {
			return nil, fmt.Errorf("scanning dependent: %w", err)
		}
		ref.Type = entities.ContentType(refType)
		refs = append(refs, ref)
	}
	return refs, rows.Err()
}

func scanTemplate(row *sql.Row) (*entities.Template, error) {
	var data string
	var tpl entities.Template
	if err := row.Scan(&data, &tpl.CreatedAt, &tpl.UpdatedAt); err != nil {
		return nil, err
	}

	decoded, err := decodeTemplate(data)
	if err != nil {
		return nil, err
	}
	decoded.CreatedAt = tpl.CreatedAt
	decoded.UpdatedAt = tpl.UpdatedAt
	return decoded, nil
}

func decodeTemplate(data string) (*entities.Template, error) {
	var tpl entities.Template
	if err := json.Unmarshal([]byte(data), &tpl); err != nil {
		return nil, fmt.Errorf("unmarshaling template: %w", err)
	}
	return &tpl, nil
}
