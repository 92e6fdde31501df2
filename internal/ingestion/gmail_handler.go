package ingestion

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/gmail/v1"
	"google.golang.org/api/option"
)

// ErrNotAuthorized is returned when no cached OAuth token exists
var ErrNotAuthorized = errors.New("gmail access not authorized")

// Attachment is one file attached to a matching message
type Attachment struct {
	MessageID string
	Sender    string
	Filename  string
	Data      []byte
}

// MailSource fetches attachments from messages with a given subject
type MailSource interface {
	FetchAttachments(ctx context.Context, subject string) ([]Attachment, error)
}

// GmailHandler manages Gmail operations for fetching attachments
type GmailHandler struct {
	service *gmail.Service
	logger  *zap.Logger
}

func oauthConfig(credentialsPath string) (*oauth2.Config, error) {
	b, err := os.ReadFile(credentialsPath)
	if err != nil {
		return nil, fmt.Errorf("unable to read credentials file: %w", err)
	}
	config, err := google.ConfigFromJSON(b, gmail.GmailReadonlyScope)
	if err != nil {
		return nil, fmt.Errorf("unable to parse credentials: %w", err)
	}
	return config, nil
}

// NewGmailHandler creates a Gmail handler from an OAuth client file and a
// token cached by AuthorizeGmail
func NewGmailHandler(ctx context.Context, credentialsPath, tokenPath string, logger *zap.Logger) (*GmailHandler, error) {
	config, err := oauthConfig(credentialsPath)
	if err != nil {
		return nil, err
	}

	tok, err := tokenFromFile(tokenPath)
	if err != nil {
		return nil, fmt.Errorf("%w: no token at %s, run gmail-auth first", ErrNotAuthorized, tokenPath)
	}

	srv, err := gmail.NewService(ctx, option.WithHTTPClient(config.Client(ctx, tok)))
	if err != nil {
		return nil, fmt.Errorf("unable to create Gmail client: %w", err)
	}

	if logger == nil {
		logger = zap.NewNop()
	}
	return &GmailHandler{service: srv, logger: logger}, nil
}

// AuthorizeGmail runs the interactive OAuth flow: it prints the consent
// URL to out, reads the authorization code from in and caches the token
func AuthorizeGmail(ctx context.Context, credentialsPath, tokenPath string, in io.Reader, out io.Writer) error {
	config, err := oauthConfig(credentialsPath)
	if err != nil {
		return err
	}

	authURL := config.AuthCodeURL("state-token", oauth2.AccessTypeOffline)
	fmt.Fprintf(out, "Go to the following link in your browser then type the authorization code: \n%v\n", authURL)

	var authCode string
	if _, err := fmt.Fscan(in, &authCode); err != nil {
		return fmt.Errorf("unable to read authorization code: %w", err)
	}

	tok, err := config.Exchange(ctx, authCode)
	if err != nil {
		return fmt.Errorf("unable to retrieve token from web: %w", err)
	}

	fmt.Fprintf(out, "Saving credential file to: %s\n", tokenPath)
	return saveToken(tokenPath, tok)
}

// tokenFromFile retrieves a token from a local file
func tokenFromFile(file string) (*oauth2.Token, error) {
	f, err := os.Open(file)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	tok := &oauth2.Token{}
	err = json.NewDecoder(f).Decode(tok)
	return tok, err
}

// saveToken saves a token to a file path
func saveToken(path string, token *oauth2.Token) error {
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0600)
	if err != nil {
		return fmt.Errorf("unable to cache oauth token: %w", err)
	}
	defer f.Close()
	return json.NewEncoder(f).Encode(token)
}

// FetchAttachments downloads every attachment of the messages matching
// subject. Unreadable messages and attachments are logged and skipped.
func (gh *GmailHandler) FetchAttachments(ctx context.Context, subject string) ([]Attachment, error) {
	user := "me"
	query := fmt.Sprintf("subject:%q has:attachment", subject)

	r, err := gh.service.Users.Messages.List(user).Q(query).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("unable to retrieve messages: %w", err)
	}

	var attachments []Attachment
	for _, msg := range r.Messages {
		message, err := gh.service.Users.Messages.Get(user, msg.Id).Context(ctx).Do()
		if err != nil {
			gh.logger.Warn("Unable to retrieve message", zap.String("message_id", msg.Id), zap.Error(err))
			continue
		}
		if message.Payload == nil {
			continue
		}

		sender := extractSenderName(message)
		for _, part := range attachmentParts(message.Payload) {
			attachment, err := gh.service.Users.Messages.Attachments.Get(user, msg.Id, part.Body.AttachmentId).Context(ctx).Do()
			if err != nil {
				gh.logger.Warn("Unable to retrieve attachment",
					zap.String("message_id", msg.Id), zap.String("filename", part.Filename), zap.Error(err))
				continue
			}

			data, err := base64.URLEncoding.DecodeString(attachment.Data)
			if err != nil {
				gh.logger.Warn("Unable to decode attachment",
					zap.String("message_id", msg.Id), zap.String("filename", part.Filename), zap.Error(err))
				continue
			}

			attachments = append(attachments, Attachment{
				MessageID: msg.Id,
				Sender:    sender,
				Filename:  part.Filename,
				Data:      data,
			})
		}
	}

	return attachments, nil
}

// attachmentParts walks a message payload, including nested multipart
// bodies, and returns the parts that carry an attachment
func attachmentParts(part *gmail.MessagePart) []*gmail.MessagePart {
	var out []*gmail.MessagePart
	if part.Filename != "" && part.Body != nil && part.Body.AttachmentId != "" {
		out = append(out, part)
	}
	for _, child := range part.Parts {
		out = append(out, attachmentParts(child)...)
	}
	return out
}

// extractSenderName extracts the sender's name from email headers
func extractSenderName(message *gmail.Message) string {
	if message.Payload == nil {
		return "Unknown"
	}
	for _, header := range message.Payload.Headers {
		if header.Name == "From" {
			// Parse "Name <email@example.com>" format
			from := header.Value
			if idx := strings.Index(from, "<"); idx > 0 {
				return strings.Trim(strings.TrimSpace(from[:idx]), `"`)
			}
			// If no name, use email prefix
			if idx := strings.Index(from, "@"); idx > 0 {
				return from[:idx]
			}
			return "Unknown"
		}
	}
	return "Unknown"
}
