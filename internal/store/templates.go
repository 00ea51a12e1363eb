package store

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/hal9000y/mailvoice/internal/mail"
)

const templateColumns = `id, user_id, name, subject, body, category, is_active, created_at`

// SaveTemplate inserts t, or replaces the user's template with the same name.
func (s *Store) SaveTemplate(ctx context.Context, t mail.Template) (mail.Template, error) {
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	if t.CreatedAt.IsZero() {
		t.CreatedAt = s.timestamp()
	}

	_, err := s.db.ExecContext(ctx, `
	INSERT INTO templates (`+templateColumns+`)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	ON CONFLICT(user_id, name) DO UPDATE SET
		subject = excluded.subject,
		body = excluded.body,
		category = excluded.category,
		is_active = excluded.is_active
	`, t.ID, t.UserID, t.Name, t.Subject, t.Body, t.Category, boolInt(t.IsActive), formatTime(t.CreatedAt))
	if err != nil {
		return mail.Template{}, fmt.Errorf("save template: %w", err)
	}

	return s.TemplateByName(ctx, t.UserID, t.Name)
}

// TemplateByName finds a template by case-insensitive name.
func (s *Store) TemplateByName(ctx context.Context, userID, name string) (mail.Template, error) {
	row := s.db.QueryRowContext(ctx, `
	SELECT `+templateColumns+`
	FROM templates
	WHERE user_id = ? AND lower(name) = lower(?)
	`, userID, name)

	t, err := scanTemplate(row)
	if err != nil {
		return mail.Template{}, fmt.Errorf("load template %q: %w", name, notFound(err))
	}
	return t, nil
}

// ListTemplates returns the user's templates ordered by name.
func (s *Store) ListTemplates(ctx context.Context, userID string) ([]mail.Template, error) {
	rows, err := s.db.QueryContext(ctx, `
	SELECT `+templateColumns+`
	FROM templates
	WHERE user_id = ?
	ORDER BY name
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("list templates: %w", err)
	}
	defer rows.Close()

	templates := []mail.Template{}
	for rows.Next() {
		t, err := scanTemplate(rows)
		if err != nil {
			return nil, fmt.Errorf("scan template: %w", err)
		}
		templates = append(templates, t)
	}
	return templates, rows.Err()
}

// DeleteTemplate removes a template by case-insensitive name.
func (s *Store) DeleteTemplate(ctx context.Context, userID, name string) error {
	err := affected(s.db.ExecContext(ctx, `
	DELETE FROM templates WHERE user_id = ? AND lower(name) = lower(?)
	`, userID, name))
	if err != nil {
		return fmt.Errorf("delete template %q: %w", name, err)
	}
	return nil
}

func scanTemplate(row scanner) (mail.Template, error) {
	var (
		t         mail.Template
		active    int
		createdAt string
	)
	if err := row.Scan(&t.ID, &t.UserID, &t.Name, &t.Subject, &t.Body, &t.Category, &active, &createdAt); err != nil {
		return mail.Template{}, err
	}

	created, err := parseTime(createdAt)
	if err != nil {
		return mail.Template{}, err
	}
	t.CreatedAt = created
	t.IsActive = active == 1

	return t, nil
}
