package gmail

import (
	"bytes"
	"encoding/base64"
	"html"
	"io"
	"mime"
	"mime/multipart"
	"net/mail"
	"regexp"
	"strings"
	"time"

	"google.golang.org/api/gmail/v1"

	"github.com/custodia-labs/leadsync/internal/core/domain"
)

// maxBodyLen bounds the body handed to the reply generator.
const maxBodyLen = 16 * 1024

// messageToLead converts a raw-format Gmail message into an unclassified
// lead. It returns false for messages that cannot be answered.
func messageToLead(tenantID string, msg *gmail.Message) (domain.Lead, bool) {
	if isSpamOrTrash(msg.LabelIds) || hasLabel(msg.LabelIds, "SENT") {
		return domain.Lead{}, false
	}

	raw, err := base64.URLEncoding.DecodeString(msg.Raw)
	if err != nil {
		return domain.Lead{}, false
	}
	parsed, err := mail.ReadMessage(bytes.NewReader(raw))
	if err != nil {
		return domain.Lead{}, false
	}

	sender := replyAddress(parsed.Header)
	if sender == "" {
		return domain.Lead{}, false
	}

	received := time.UnixMilli(msg.InternalDate).UTC()
	if msg.InternalDate == 0 {
		if t, err := parsed.Header.Date(); err == nil {
			received = t.UTC()
		}
	}

	body := strings.TrimSpace(extractBody(parsed.Header.Get("Content-Type"), parsed.Body))
	if len(body) > maxBodyLen {
		body = body[:maxBodyLen]
	}

	return domain.Lead{
		ID:             leadID(tenantID, msg.Id),
		TenantID:       tenantID,
		SenderAddress:  sender,
		Subject:        decodeHeader(parsed.Header.Get("Subject")),
		Body:           body,
		PriorityStatus: domain.PriorityUnclassified,
		ReceivedAt:     received,
	}, true
}

// leadID namespaces the Gmail message ID so lead IDs stay unique across
// tenants.
func leadID(tenantID, messageID string) string {
	return "gmail:" + tenantID + ":" + messageID
}

// replyAddress prefers Reply-To over From.
func replyAddress(h mail.Header) string {
	for _, key := range []string{"Reply-To", "From"} {
		value := h.Get(key)
		if value == "" {
			continue
		}
		if addr, err := mail.ParseAddress(decodeHeader(value)); err == nil {
			return addr.Address
		}
	}
	return ""
}

func hasLabel(labels []string, want string) bool {
	for _, label := range labels {
		if label == want {
			return true
		}
	}
	return false
}

func isSpamOrTrash(labels []string) bool {
	return hasLabel(labels, "SPAM") || hasLabel(labels, "TRASH")
}

// decodeHeader decodes RFC 2047 encoded words, returning the input on error.
func decodeHeader(header string) string {
	if header == "" {
		return ""
	}
	dec := new(mime.WordDecoder)
	decoded, err := dec.DecodeHeader(header)
	if err != nil {
		return header
	}
	return decoded
}

// extractBody returns the readable text of a message body. Plain text parts
// win over HTML ones.
func extractBody(contentType string, r io.Reader) string {
	if contentType == "" {
		contentType = "text/plain"
	}
	mediaType, params, err := mime.ParseMediaType(contentType)
	if err != nil {
		body, _ := io.ReadAll(r)
		return string(body)
	}
	if strings.HasPrefix(mediaType, "multipart/") {
		return extractMultipart(r, params["boundary"])
	}

	body, err := io.ReadAll(r)
	if err != nil {
		return ""
	}
	if mediaType == "text/html" {
		return stripHTML(string(body))
	}
	return string(body)
}

func extractMultipart(r io.Reader, boundary string) string {
	if boundary == "" {
		return ""
	}

	mr := multipart.NewReader(r, boundary)
	var textParts, htmlParts []string
	for {
		part, err := mr.NextPart()
		if err != nil {
			break
		}
		content, readErr := io.ReadAll(part)
		_ = part.Close()
		if readErr != nil {
			continue
		}

		mediaType, params, err := mime.ParseMediaType(part.Header.Get("Content-Type"))
		if err != nil {
			continue
		}
		switch {
		case mediaType == "text/plain":
			textParts = append(textParts, string(content))
		case mediaType == "text/html":
			htmlParts = append(htmlParts, stripHTML(string(content)))
		case strings.HasPrefix(mediaType, "multipart/"):
			if nested := extractMultipart(bytes.NewReader(content), params["boundary"]); nested != "" {
				textParts = append(textParts, nested)
			}
		}
	}

	if len(textParts) > 0 {
		return strings.Join(textParts, "\n")
	}
	return strings.Join(htmlParts, "\n")
}

var (
	dropTags     = regexp.MustCompile(`(?is)<(script|style|head|noscript|svg)\b[^>]*>.*?</(script|style|head|noscript|svg)>`)
	htmlComments = regexp.MustCompile(`(?s)<!--.*?-->`)
	blockBreaks  = regexp.MustCompile(`(?i)<br\s*/?>|<hr\s*/?>|</(p|div|h[1-6]|li|tr|blockquote|pre|table)>`)
	allTags      = regexp.MustCompile(`<[^>]+>`)
	multiSpaces  = regexp.MustCompile(`[ \t]+`)
)

// stripHTML reduces an HTML body to its text, one block per line.
func stripHTML(content string) string {
	content = dropTags.ReplaceAllString(content, "")
	content = htmlComments.ReplaceAllString(content, "")
	content = blockBreaks.ReplaceAllString(content, "\n")
	content = allTags.ReplaceAllString(content, "")
	content = html.UnescapeString(content)
	content = multiSpaces.ReplaceAllString(content, " ")

	var lines []string
	for _, line := range strings.Split(content, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			lines = append(lines, line)
		}
	}
	return strings.Join(lines, "\n")
}
