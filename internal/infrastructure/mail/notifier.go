// Package mail delivers comment notifications to the site owner.
package mail

import (
	"context"
	"fmt"
	"html"
	"strings"
	"time"

	mail "github.com/go-mail/mail/v2"
	"github.com/rs/zerolog"

	"github.com/blogcms/cms-api/internal/core/domain"
	"github.com/blogcms/cms-api/internal/core/ports"
)

const dialTimeout = 10 * time.Second

type Config struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
	To       string
	// SiteURL is used to build links back to the post.
	SiteURL string
}

type sender interface {
	DialAndSend(m ...*mail.Message) error
}

// SMTPNotifier sends one mail per notification.
type SMTPNotifier struct {
	cfg    Config
	sender sender
}

var _ ports.CommentNotifier = (*SMTPNotifier)(nil)

func NewSMTPNotifier(cfg Config) *SMTPNotifier {
	d := mail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password)
	d.Timeout = dialTimeout
	if cfg.Username != "" {
		d.StartTLSPolicy = mail.MandatoryStartTLS
	}
	return &SMTPNotifier{cfg: cfg, sender: d}
}

func (n *SMTPNotifier) Notify(ctx context.Context, note domain.CommentNotification) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := n.sender.DialAndSend(n.message(note)); err != nil {
		return fmt.Errorf("send comment notification: %w", err)
	}
	return nil
}

func (n *SMTPNotifier) message(note domain.CommentNotification) *mail.Message {
	m := mail.NewMessage()
	m.SetHeader("From", n.cfg.From)
	m.SetHeader("To", n.cfg.To)
	if note.AuthorEmail != "" {
		m.SetAddressHeader("Reply-To", note.AuthorEmail, note.AuthorName)
	}
	m.SetHeader("Subject", fmt.Sprintf("New comment on %q", note.BlogTitle))
	m.SetBody("text/plain", plainBody(note, n.postURL(note)))
	m.AddAlternative("text/html", htmlBody(note, n.postURL(note)))
	return m
}

func (n *SMTPNotifier) postURL(note domain.CommentNotification) string {
	if n.cfg.SiteURL == "" || note.BlogSlug == "" {
		return ""
	}
	return strings.TrimRight(n.cfg.SiteURL, "/") + "/blog/" + note.BlogSlug
}

func plainBody(note domain.CommentNotification, link string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s <%s> commented on %q at %s:\n\n", note.AuthorName, note.AuthorEmail,
		note.BlogTitle, note.SubmittedAt.Format(time.RFC1123))
	b.WriteString(note.Text)
	b.WriteString("\n\nThe comment is waiting for approval.")
	if link != "" {
		b.WriteString("\n" + link)
	}
	return b.String()
}

func htmlBody(note domain.CommentNotification, link string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "<p><strong>%s</strong> &lt;%s&gt; commented on <em>%s</em> at %s:</p>",
		html.EscapeString(note.AuthorName), html.EscapeString(note.AuthorEmail),
		html.EscapeString(note.BlogTitle), note.SubmittedAt.Format(time.RFC1123))
	fmt.Fprintf(&b, "<blockquote>%s</blockquote>",
		strings.ReplaceAll(html.EscapeString(note.Text), "\n", "<br>"))
	b.WriteString("<p>The comment is waiting for approval.</p>")
	if link != "" {
		fmt.Fprintf(&b, `<p><a href="%s">View post</a></p>`, html.EscapeString(link))
	}
	return b.String()
}

// LogNotifier writes notifications to the log. It is used when no SMTP host
// is configured.
type LogNotifier struct {
	log zerolog.Logger
}

var _ ports.CommentNotifier = LogNotifier{}

func NewLogNotifier(log zerolog.Logger) LogNotifier {
	return LogNotifier{log: log}
}

func (n LogNotifier) Notify(_ context.Context, note domain.CommentNotification) error {
	n.log.Info().
		Str("blog_id", note.BlogID).
		Str("blog_title", note.BlogTitle).
		Str("author", note.AuthorName).
		Msg("new comment awaiting approval")
	return nil
}
