package service_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/hal9000y/mailvoice/internal/mail"
	"github.com/hal9000y/mailvoice/internal/store"
)

var epoch = time.Date(2025, 9, 14, 12, 0, 0, 0, time.UTC)

func clock() time.Time { return epoch }

func newStore(t *testing.T) *store.Store {
	t.Helper()

	s, err := store.Open(context.Background(), ":memory:", store.WithClock(clock))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	return s
}

type modifyCall struct {
	MsgID  string
	Add    []string
	Remove []string
}

type mailboxMock struct {
	SendFunc        func(ctx context.Context, out mail.Outgoing) (mail.Sent, error)
	ListFunc        func(ctx context.Context, labelID, q string, limit int64) ([]mail.Email, error)
	ModifyFunc      func(ctx context.Context, msgID string, add, remove []string) error
	TrashFunc       func(ctx context.Context, msgID string) error
	LabelsFunc      func(ctx context.Context) ([]mail.Folder, error)
	CreateLabelFunc func(ctx context.Context, name string) (mail.Folder, error)
	DeleteLabelFunc func(ctx context.Context, labelID string) error

	mu       sync.Mutex
	sent     []mail.Outgoing
	modified []modifyCall
	deleted  []string
}

func (m *mailboxMock) Send(ctx context.Context, out mail.Outgoing) (mail.Sent, error) {
	m.mu.Lock()
	m.sent = append(m.sent, out)
	m.mu.Unlock()

	if m.SendFunc != nil {
		return m.SendFunc(ctx, out)
	}
	return mail.Sent{ID: "msg-1", To: out.To, Subject: out.Subject}, nil
}

func (m *mailboxMock) List(ctx context.Context, labelID, q string, limit int64) ([]mail.Email, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx, labelID, q, limit)
	}
	return []mail.Email{}, nil
}

func (m *mailboxMock) Modify(ctx context.Context, msgID string, add, remove []string) error {
	m.mu.Lock()
	m.modified = append(m.modified, modifyCall{MsgID: msgID, Add: add, Remove: remove})
	m.mu.Unlock()

	if m.ModifyFunc != nil {
		return m.ModifyFunc(ctx, msgID, add, remove)
	}
	return nil
}

func (m *mailboxMock) Trash(ctx context.Context, msgID string) error {
	if m.TrashFunc != nil {
		return m.TrashFunc(ctx, msgID)
	}
	return nil
}

func (m *mailboxMock) Labels(ctx context.Context) ([]mail.Folder, error) {
	if m.LabelsFunc != nil {
		return m.LabelsFunc(ctx)
	}
	return []mail.Folder{
		{ID: "INBOX", Name: "INBOX", Type: "system"},
		{ID: "Label_9", Name: "Receipts", Type: "user"},
	}, nil
}

func (m *mailboxMock) CreateLabel(ctx context.Context, name string) (mail.Folder, error) {
	if m.CreateLabelFunc != nil {
		return m.CreateLabelFunc(ctx, name)
	}
	return mail.Folder{ID: "Label_10", Name: name, Type: "user"}, nil
}

func (m *mailboxMock) DeleteLabel(ctx context.Context, labelID string) error {
	m.mu.Lock()
	m.deleted = append(m.deleted, labelID)
	m.mu.Unlock()

	if m.DeleteLabelFunc != nil {
		return m.DeleteLabelFunc(ctx, labelID)
	}
	return nil
}

type senderMock struct {
	SendEmailFunc func(ctx context.Context, userID string, out mail.Outgoing) (mail.Sent, error)
}

func (m *senderMock) SendEmail(ctx context.Context, userID string, out mail.Outgoing) (mail.Sent, error) {
	return m.SendEmailFunc(ctx, userID, out)
}
