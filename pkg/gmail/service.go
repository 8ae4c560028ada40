// Package gmail fetches inbox windows through the Gmail REST API.
package gmail

import (
	"context"
	"encoding/base64"
	"fmt"
	"sort"
	"strings"
	"time"

	"jobify-backend/internal/tracker/domain"
	"jobify-backend/pkg/mailtext"

	"github.com/cenkalti/backoff/v4"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/gmail/v1"
	"google.golang.org/api/option"
)

type Service struct {
	clientID     string
	clientSecret string
	maxResults   int64
}

func NewService(clientID, clientSecret string, maxResults int64) *Service {
	if maxResults <= 0 {
		maxResults = 100
	}
	return &Service{
		clientID:     clientID,
		clientSecret: clientSecret,
		maxResults:   maxResults,
	}
}

func (s *Service) gmailService(ctx context.Context, refreshToken string) (*gmail.Service, error) {
	config := &oauth2.Config{
		ClientID:     s.clientID,
		ClientSecret: s.clientSecret,
		Endpoint:     google.Endpoint,
		Scopes:       []string{gmail.GmailReadonlyScope},
	}
	tokenSource := config.TokenSource(ctx, &oauth2.Token{RefreshToken: refreshToken})

	srv, err := gmail.NewService(ctx, option.WithTokenSource(tokenSource))
	if err != nil {
		return nil, fmt.Errorf("unable to create Gmail service: %w", err)
	}
	return srv, nil
}

// Fetch lists INBOX messages received in [since, until) and returns them
// sorted ascending by receipt time. Callers rely on that ordering: later
// reconciliation depends on applications created by earlier emails.
func (s *Service) Fetch(ctx context.Context, user *domain.User, since, until time.Time) ([]domain.InboundEmail, error) {
	srv, err := s.gmailService(ctx, user.GoogleRefreshToken)
	if err != nil {
		return nil, err
	}

	// Gmail's after:/before: operators take Unix seconds
	query := fmt.Sprintf("after:%d before:%d", since.Unix(), until.Unix())

	var ids []string
	pageToken := ""
	for {
		var resp *gmail.ListMessagesResponse
		operation := func() error {
			var listErr error
			resp, listErr = srv.Users.Messages.List("me").
				Q(query).
				LabelIds("INBOX").
				MaxResults(s.maxResults).
				PageToken(pageToken).
				Context(ctx).
				Do()
			return listErr
		}
		if err := backoff.Retry(operation, retryPolicy(ctx)); err != nil {
			return nil, fmt.Errorf("failed to list messages: %w", err)
		}

		for _, stub := range resp.Messages {
			ids = append(ids, stub.Id)
		}
		pageToken = resp.NextPageToken
		if pageToken == "" {
			break
		}
	}

	emails := make([]domain.InboundEmail, 0, len(ids))
	for _, id := range ids {
		var msg *gmail.Message
		operation := func() error {
			var getErr error
			msg, getErr = srv.Users.Messages.Get("me", id).Format("full").Context(ctx).Do()
			return getErr
		}
		if err := backoff.Retry(operation, retryPolicy(ctx)); err != nil {
			return nil, fmt.Errorf("failed to get message %s: %w", id, err)
		}

		emails = append(emails, domain.InboundEmail{
			ID:         msg.Id,
			Subject:    getHeader(msg.Payload, "Subject"),
			Body:       extractBody(msg.Payload),
			ReceivedAt: time.UnixMilli(msg.InternalDate).UTC(),
		})
	}

	sort.Slice(emails, func(i, j int) bool {
		return emails[i].ReceivedAt.Before(emails[j].ReceivedAt)
	})
	return emails, nil
}

func getHeader(payload *gmail.MessagePart, name string) string {
	if payload == nil {
		return ""
	}
	for _, h := range payload.Headers {
		if strings.EqualFold(h.Name, name) {
			return h.Value
		}
	}
	return ""
}

// extractBody walks MIME parts preferring text/plain, decoding HTML parts
// to text, recursing into nested multiparts.
func extractBody(payload *gmail.MessagePart) string {
	if payload == nil {
		return ""
	}

	if len(payload.Parts) == 0 {
		decoded := decodePart(payload)
		if payload.MimeType == "text/html" {
			return mailtext.FromHTML(decoded)
		}
		return mailtext.Clean(decoded)
	}

	var htmlBody string
	for _, part := range payload.Parts {
		switch part.MimeType {
		case "text/plain":
			if decoded := decodePart(part); decoded != "" {
				return mailtext.Clean(decoded)
			}
		case "text/html":
			if htmlBody == "" {
				htmlBody = decodePart(part)
			}
		default:
			if len(part.Parts) > 0 {
				if nested := extractBody(part); nested != "" {
					return nested
				}
			}
		}
	}
	if htmlBody != "" {
		return mailtext.FromHTML(htmlBody)
	}
	return ""
}

func decodePart(part *gmail.MessagePart) string {
	if part.Body == nil || part.Body.Data == "" {
		return ""
	}
	decoded, err := base64.URLEncoding.DecodeString(part.Body.Data)
	if err != nil {
		// Some senders pad non-canonically; retry raw encoding
		decoded, err = base64.RawURLEncoding.DecodeString(part.Body.Data)
		if err != nil {
			return ""
		}
	}
	return string(decoded)
}

func retryPolicy(ctx context.Context) backoff.BackOffContext {
	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = 1 * time.Second
	policy.RandomizationFactor = 0.1
	return backoff.WithContext(backoff.WithMaxRetries(policy, 4), ctx)
}
