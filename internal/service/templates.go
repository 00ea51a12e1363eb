package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/hal9000y/mailvoice/internal/mail"
)

type templateStore interface {
	ListTemplates(ctx context.Context, userID string) ([]mail.Template, error)
	SaveTemplate(ctx context.Context, t mail.Template) (mail.Template, error)
	DeleteTemplate(ctx context.Context, userID, name string) error
}

type Templates struct {
	store templateStore
}

func NewTemplates(st templateStore) *Templates {
	return &Templates{store: st}
}

func (t *Templates) GetTemplates(ctx context.Context, userID string) ([]mail.Template, error) {
	return t.store.ListTemplates(ctx, userID)
}

// SaveTemplate creates the template or replaces the one with the same name.
func (t *Templates) SaveTemplate(ctx context.Context, tpl mail.Template) (mail.Template, error) {
	tpl.Name = strings.TrimSpace(tpl.Name)
	if tpl.Name == "" {
		return mail.Template{}, errors.New("template name is empty")
	}

	saved, err := t.store.SaveTemplate(ctx, tpl)
	if err != nil {
		return mail.Template{}, fmt.Errorf("store.SaveTemplate failed: %w", err)
	}
	return saved, nil
}

func (t *Templates) DeleteTemplate(ctx context.Context, userID, name string) error {
	return t.store.DeleteTemplate(ctx, userID, name)
}
