package gmail

import (
	"encoding/base64"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/microcosm-cc/bluemonday"
	"google.golang.org/api/gmail/v1"
)

// Placeholders stored when a message carries no usable body. Callers must
// treat these as "content absent", not as real content.
const (
	PlaceholderHTML = "No content available"
	PlaceholderText = "No plain text available"
)

var (
	whitespacePattern = regexp.MustCompile(`\s+`)
	htmlPolicy        = bluemonday.UGCPolicy()
)

// ExtractBody decodes a message payload into a sanitized HTML body and a
// cleaned plain-text body. The payload tree is walked depth-first preferring
// a text/html part; the first text/plain part is the fallback, then the
// top-level body. The clean text keeps visible text only: tags stripped,
// whitespace collapsed, hrefs and images dropped.
func ExtractBody(payload *gmail.MessagePart) (string, string) {
	raw, isHTML := rawBody(payload)
	if raw == "" {
		return PlaceholderHTML, PlaceholderText
	}

	var clean string
	if isHTML {
		clean = HTMLToText(raw)
		raw = htmlPolicy.Sanitize(raw)
	} else {
		clean = collapseWhitespace(raw)
	}
	if clean == "" {
		clean = PlaceholderText
	}
	if raw == "" {
		raw = PlaceholderHTML
	}
	return raw, clean
}

func rawBody(payload *gmail.MessagePart) (string, bool) {
	if payload == nil {
		return "", false
	}
	if part := findPart(payload, "text/html"); part != nil {
		if decoded := decodePartBody(part.Body); decoded != "" {
			return decoded, true
		}
	}
	if part := findPart(payload, "text/plain"); part != nil {
		if decoded := decodePartBody(part.Body); decoded != "" {
			return decoded, false
		}
	}
	if decoded := decodePartBody(payload.Body); decoded != "" {
		return decoded, strings.EqualFold(payload.MimeType, "text/html")
	}
	return "", false
}

func findPart(part *gmail.MessagePart, mimeType string) *gmail.MessagePart {
	if part == nil {
		return nil
	}
	if part.MimeType == mimeType && part.Body != nil && part.Body.Data != "" {
		return part
	}
	for _, child := range part.Parts {
		if found := findPart(child, mimeType); found != nil {
			return found
		}
	}
	return nil
}

func decodePartBody(body *gmail.MessagePartBody) string {
	if body == nil || body.Data == "" {
		return ""
	}
	decoded, err := base64.URLEncoding.DecodeString(body.Data)
	if err != nil {
		// Gmail sometimes omits padding.
		decoded, err = base64.RawURLEncoding.DecodeString(body.Data)
		if err != nil {
			return ""
		}
	}
	return string(decoded)
}

// HTMLToText converts an HTML body to the visible text a reader would see.
func HTMLToText(htmlBody string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(htmlBody))
	if err != nil {
		return collapseWhitespace(htmlBody)
	}
	doc.Find("script, style, head").Remove()
	return collapseWhitespace(doc.Text())
}

func collapseWhitespace(s string) string {
	return strings.TrimSpace(whitespacePattern.ReplaceAllString(s, " "))
}
