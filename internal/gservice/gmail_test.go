package gservice_test

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"
	"google.golang.org/api/option"

	"github.com/hal9000y/mailvoice/internal/gservice"
	"github.com/hal9000y/mailvoice/internal/mail"
)

type tokenMock struct {
	err error
}

func (m tokenMock) OAuthToken() (*oauth2.Token, error) {
	if m.err != nil {
		return nil, m.err
	}
	return &oauth2.Token{AccessToken: "test-token"}, nil
}

func newGmail(t *testing.T, mux *http.ServeMux) *gservice.GMail {
	t.Helper()

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	return gservice.NewGmail(&oauth2.Config{}, tokenMock{}, option.WithEndpoint(srv.URL+"/"))
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

func TestGMailSend(t *testing.T) {
	var raw string
	mux := http.NewServeMux()
	mux.HandleFunc("POST /gmail/v1/users/me/messages/send", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer test-token", r.Header.Get("Authorization"))

		var body struct {
			Raw string `json:"raw"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))

		decoded, err := base64.URLEncoding.DecodeString(body.Raw)
		require.NoError(t, err)
		raw = string(decoded)

		writeJSON(w, map[string]string{"id": "m1", "threadId": "t1"})
	})

	sent, err := newGmail(t, mux).Send(context.Background(), mail.Outgoing{
		To:       []string{"bob@co.com", "ann@co.com"},
		Subject:  "Hello",
		Body:     "Body text",
		Priority: "high",
	})
	require.NoError(t, err)

	assert.Equal(t, mail.Sent{ID: "m1", ThreadID: "t1", To: []string{"bob@co.com", "ann@co.com"}, Subject: "Hello"}, sent)
	assert.Contains(t, raw, "To: bob@co.com, ann@co.com\r\n")
	assert.Contains(t, raw, "Subject: Hello\r\n")
	assert.Contains(t, raw, "X-Priority: 1\r\n")
	assert.Contains(t, raw, "\r\n\r\nBody text")
}

func TestGMailList(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /gmail/v1/users/me/messages", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "INBOX", r.URL.Query().Get("labelIds"))
		assert.Equal(t, "20", r.URL.Query().Get("maxResults"))
		writeJSON(w, map[string]any{"messages": []map[string]string{{"id": "m1"}}})
	})
	mux.HandleFunc("GET /gmail/v1/users/me/messages/{id}", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "m1", r.PathValue("id"))
		assert.Equal(t, "METADATA", r.URL.Query().Get("format"))
		writeJSON(w, map[string]any{
			"id":       "m1",
			"threadId": "t1",
			"snippet":  "It&#39;s attached",
			"labelIds": []string{"INBOX", "UNREAD"},
			"payload": map[string]any{
				"headers": []map[string]string{
					{"name": "From", "value": `"Bob Smith" <bob@co.com>`},
					{"name": "To", "value": "me@co.com, Ann <ann@co.com>"},
					{"name": "Subject", "value": "Invoice"},
					{"name": "Date", "value": "Sun, 14 Sep 2025 12:00:00 +0000"},
				},
			},
		})
	})

	emails, err := newGmail(t, mux).List(context.Background(), "INBOX", "", 0)
	require.NoError(t, err)
	require.Len(t, emails, 1)

	assert.Equal(t, mail.Email{
		ID:        "m1",
		ThreadID:  "t1",
		Timestamp: "Sun, 14 Sep 2025 12:00:00 +0000",
		From:      mail.Address{Name: "Bob Smith", Email: "bob@co.com"},
		To:        []mail.Address{{Email: "me@co.com"}, {Name: "Ann", Email: "ann@co.com"}},
		Subject:   "Invoice",
		Snippet:   "It's attached",
		Labels:    []string{"INBOX", "UNREAD"},
		Unread:    true,
	}, emails[0])
}

func TestGMailNotFound(t *testing.T) {
	mux := http.NewServeMux()
	notFound := func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"error":{"code":404,"message":"Requested entity was not found."}}`))
	}
	mux.HandleFunc("POST /gmail/v1/users/me/messages/{id}/trash", notFound)
	mux.HandleFunc("POST /gmail/v1/users/me/messages/{id}/modify", notFound)
	mux.HandleFunc("DELETE /gmail/v1/users/me/labels/{id}", notFound)

	g := newGmail(t, mux)
	ctx := context.Background()

	assert.ErrorIs(t, g.Trash(ctx, "missing"), mail.ErrNotFound)
	assert.ErrorIs(t, g.Modify(ctx, "missing", []string{"STARRED"}, nil), mail.ErrNotFound)
	assert.ErrorIs(t, g.DeleteLabel(ctx, "Label_1"), mail.ErrNotFound)
}

func TestGMailLabels(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /gmail/v1/users/me/labels", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, map[string]any{"labels": []map[string]string{
			{"id": "INBOX", "name": "INBOX", "type": "system"},
			{"id": "Label_1", "name": "Receipts", "type": "user"},
		}})
	})
	mux.HandleFunc("POST /gmail/v1/users/me/labels", func(w http.ResponseWriter, r *http.Request) {
		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "Taxes", body["name"])
		writeJSON(w, map[string]string{"id": "Label_2", "name": body["name"], "type": "user"})
	})

	g := newGmail(t, mux)
	ctx := context.Background()

	folders, err := g.Labels(ctx)
	require.NoError(t, err)
	assert.Equal(t, []mail.Folder{
		{ID: "INBOX", Name: "INBOX", Type: "system"},
		{ID: "Label_1", Name: "Receipts", Type: "user"},
	}, folders)

	created, err := g.CreateLabel(ctx, "Taxes")
	require.NoError(t, err)
	assert.Equal(t, mail.Folder{ID: "Label_2", Name: "Taxes", Type: "user"}, created)
}

func TestGMailWithoutToken(t *testing.T) {
	errNoToken := errors.New("no token defined")
	g := gservice.NewGmail(&oauth2.Config{}, tokenMock{err: errNoToken})

	_, err := g.Labels(context.Background())
	assert.ErrorIs(t, err, errNoToken)
}

func TestGMailMessage(t *testing.T) {
	encode := func(s string) string { return base64.URLEncoding.EncodeToString([]byte(s)) }

	mux := http.NewServeMux()
	mux.HandleFunc("GET /gmail/v1/users/me/messages/{id}", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "FULL", r.URL.Query().Get("format"))
		writeJSON(w, map[string]any{
			"id": r.PathValue("id"),
			"payload": map[string]any{
				"mimeType": "multipart/mixed",
				"headers":  []map[string]string{{"name": "Subject", "value": "Invoice 1042"}},
				"parts": []map[string]any{
					{
						"mimeType": "multipart/alternative",
						"parts": []map[string]any{
							{"mimeType": "text/html", "body": map[string]any{"data": encode("<p>Hi Carol,</p><p>Invoice <b>1042</b> attached.</p>")}},
						},
					},
					{
						"mimeType": "application/pdf",
						"filename": "invoice-1042.pdf",
						"body":     map[string]any{"attachmentId": "att-1", "size": 2048},
					},
				},
			},
		})
	})

	msg, err := newGmail(t, mux).Message(context.Background(), "m7")
	require.NoError(t, err)

	assert.Equal(t, "m7", msg.Email.ID)
	assert.Equal(t, "Invoice 1042", msg.Email.Subject)
	assert.Equal(t, "Hi Carol,\nInvoice 1042 attached.", msg.Body)
	assert.Equal(t, []mail.Attachment{
		{ID: "att-1", Filename: "invoice-1042.pdf", MimeType: "application/pdf", Size: 2048},
	}, msg.Attachments)
}
