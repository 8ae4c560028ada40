// Package imap fetches inbox windows from generic IMAP servers.
package imap

import (
	"context"
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"jobify-backend/internal/tracker/domain"
	"jobify-backend/pkg/crypto"
	"jobify-backend/pkg/mailtext"

	"github.com/emersion/go-imap"
	"github.com/emersion/go-imap/client"
	"github.com/emersion/go-message/mail"
)

type Service struct {
	encryptionKey string
}

func NewService(encryptionKey string) *Service {
	return &Service{encryptionKey: encryptionKey}
}

// Fetch searches INBOX for messages in [since, until) and returns them
// sorted ascending by receipt time. IMAP SEARCH has day granularity, so the
// window is re-filtered precisely on InternalDate after fetching.
func (s *Service) Fetch(ctx context.Context, user *domain.User, since, until time.Time) ([]domain.InboundEmail, error) {
	password, err := crypto.Decrypt(user.ImapPassword, s.encryptionKey)
	if err != nil {
		return nil, fmt.Errorf("failed to decrypt IMAP password: %w", err)
	}

	addr := fmt.Sprintf("%s:%d", user.ImapServer, user.ImapPort)
	c, err := client.DialTLS(addr, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to %s: %w", addr, err)
	}
	defer c.Logout()

	if err := c.Login(user.Email, password); err != nil {
		return nil, fmt.Errorf("IMAP login failed: %w", err)
	}

	if _, err := c.Select("INBOX", true); err != nil {
		return nil, fmt.Errorf("failed to select INBOX: %w", err)
	}

	criteria := imap.NewSearchCriteria()
	criteria.Since = since.Truncate(24 * time.Hour)
	criteria.Before = until.Add(24 * time.Hour).Truncate(24 * time.Hour)
	seqNums, err := c.Search(criteria)
	if err != nil {
		return nil, fmt.Errorf("IMAP search failed: %w", err)
	}
	if len(seqNums) == 0 {
		return nil, nil
	}

	seqSet := new(imap.SeqSet)
	seqSet.AddNum(seqNums...)

	section := &imap.BodySectionName{Peek: true}
	items := []imap.FetchItem{imap.FetchEnvelope, imap.FetchInternalDate, imap.FetchUid, section.FetchItem()}

	messages := make(chan *imap.Message, 16)
	done := make(chan error, 1)
	go func() {
		done <- c.Fetch(seqSet, items, messages)
	}()

	var emails []domain.InboundEmail
	for msg := range messages {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		received := msg.InternalDate.UTC()
		if received.Before(since) || !received.Before(until) {
			continue
		}

		subject := ""
		if msg.Envelope != nil {
			subject = msg.Envelope.Subject
		}

		emails = append(emails, domain.InboundEmail{
			ID:         fmt.Sprintf("imap-%s-%d", user.Email, msg.Uid),
			Subject:    subject,
			Body:       extractBody(msg.GetBody(section)),
			ReceivedAt: received,
		})
	}
	if err := <-done; err != nil {
		return nil, fmt.Errorf("IMAP fetch failed: %w", err)
	}

	sort.Slice(emails, func(i, j int) bool {
		return emails[i].ReceivedAt.Before(emails[j].ReceivedAt)
	})
	return emails, nil
}

// extractBody reads MIME parts preferring text/plain over text/html.
func extractBody(r io.Reader) string {
	if r == nil {
		return ""
	}
	mr, err := mail.CreateReader(r)
	if err != nil {
		return ""
	}

	var htmlBody string
	for {
		part, err := mr.NextPart()
		if err == io.EOF {
			break
		}
		if err != nil {
			break
		}

		header, ok := part.Header.(*mail.InlineHeader)
		if !ok {
			continue
		}
		contentType, _, _ := header.ContentType()
		raw, err := io.ReadAll(part.Body)
		if err != nil {
			continue
		}

		switch {
		case strings.HasPrefix(contentType, "text/plain"):
			return mailtext.Clean(string(raw))
		case strings.HasPrefix(contentType, "text/html") && htmlBody == "":
			htmlBody = string(raw)
		}
	}
	if htmlBody != "" {
		return mailtext.FromHTML(htmlBody)
	}
	return ""
}
