package mail

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	mail "github.com/go-mail/mail/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/blogcms/cms-api/internal/core/domain"
)

type captureSender struct {
	sent []*mail.Message
	err  error
}

func (s *captureSender) DialAndSend(m ...*mail.Message) error {
	s.sent = append(s.sent, m...)
	return s.err
}

func testNote() domain.CommentNotification {
	return domain.CommentNotification{
		BlogID:      "b1",
		BlogTitle:   "Hello World",
		BlogSlug:    "hello-world",
		AuthorName:  "Ann",
		AuthorEmail: "ann@example.com",
		Text:        "<script>alert(1)</script>",
		SubmittedAt: time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC),
	}
}

func TestSMTPNotifier_Notify(t *testing.T) {
	cs := &captureSender{}
	n := &SMTPNotifier{
		cfg:    Config{From: "blog@example.com", To: "owner@example.com", SiteURL: "https://blog.example.com/"},
		sender: cs,
	}

	require.NoError(t, n.Notify(context.Background(), testNote()))
	require.Len(t, cs.sent, 1)

	var buf bytes.Buffer
	_, err := cs.sent[0].WriteTo(&buf)
	require.NoError(t, err)
	raw := buf.String()

	assert.Contains(t, raw, "To: owner@example.com")
	assert.Contains(t, raw, "Reply-To:")
	assert.Contains(t, raw, "text/html")
	assert.NotContains(t, raw, "<script>alert(1)</script></blockquote>")
}

func TestSMTPNotifier_SendError(t *testing.T) {
	cs := &captureSender{err: errors.New("connection refused")}
	n := &SMTPNotifier{cfg: Config{From: "a@example.com", To: "b@example.com"}, sender: cs}

	err := n.Notify(context.Background(), testNote())
	assert.ErrorContains(t, err, "connection refused")
}

func TestSMTPNotifier_CancelledContext(t *testing.T) {
	cs := &captureSender{}
	n := &SMTPNotifier{cfg: Config{From: "a@example.com", To: "b@example.com"}, sender: cs}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.ErrorIs(t, n.Notify(ctx, testNote()), context.Canceled)
	assert.Empty(t, cs.sent)
}

func TestBodies(t *testing.T) {
	note := testNote()

	plain := plainBody(note, "https://blog.example.com/blog/hello-world")
	assert.Contains(t, plain, `commented on "Hello World"`)
	assert.Contains(t, plain, note.Text)

	h := htmlBody(note, "")
	assert.Contains(t, h, "&lt;script&gt;")
	assert.False(t, strings.Contains(h, "View post"))
}

func TestLogNotifier(t *testing.T) {
	var buf bytes.Buffer
	n := NewLogNotifier(zerolog.New(&buf))

	require.NoError(t, n.Notify(context.Background(), testNote()))
	assert.Contains(t, buf.String(), `"blog_id":"b1"`)
}
