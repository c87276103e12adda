package mailbox

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"mime"
	"strings"

	"github.com/emersion/go-message"
	"github.com/emersion/go-message/charset"
	"github.com/emersion/go-message/mail"
	"github.com/mikey/llm-phish-analyzer/internal/core"
	"golang.org/x/text/encoding/charmap"
)

func init() {
	charset.RegisterEncoding("windows-1252", charmap.Windows1252)
	charset.RegisterEncoding("iso-8859-1", charmap.ISO8859_1)
	charset.RegisterEncoding("iso-8859-15", charmap.ISO8859_15)
}

// UnknownSender is used when a message has no usable From header
const UnknownSender = "Unknown"

var wordDecoder = &mime.WordDecoder{CharsetReader: charset.Reader}

// ParseMessage reads an RFC 5322 message into an Email. The body is the
// first text/plain part, or the first text/html part when there is none.
func ParseMessage(r io.Reader) (*core.Email, error) {
	mr, err := mail.CreateReader(r)
	if err != nil && (mr == nil || !message.IsUnknownCharset(err)) {
		return nil, fmt.Errorf("failed to create mail reader: %w", err)
	}

	email := &core.Email{
		Subject: subject(mr.Header),
		Sender:  sender(mr.Header),
	}
	if date, err := mr.Header.Date(); err == nil {
		email.Timestamp = date
	}

	var htmlBody string
	for {
		part, err := mr.NextPart()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil && (part == nil || !message.IsUnknownCharset(err)) {
			return nil, fmt.Errorf("failed to read part: %w", err)
		}

		h, ok := part.Header.(*mail.InlineHeader)
		if !ok {
			continue
		}

		contentType, _, _ := h.ContentType()
		body, err := io.ReadAll(part.Body)
		if err != nil {
			return nil, fmt.Errorf("failed to read body: %w", err)
		}

		switch {
		case strings.HasPrefix(contentType, "text/plain") || contentType == "":
			if email.Body == "" {
				email.Body = string(body)
			}
		case strings.HasPrefix(contentType, "text/html"):
			if htmlBody == "" {
				htmlBody = string(body)
			}
		}
	}

	if email.Body == "" {
		email.Body = htmlBody
	}

	return email, nil
}

// ParseMessageBytes is ParseMessage over an in-memory message
func ParseMessageBytes(raw []byte) (*core.Email, error) {
	return ParseMessage(bytes.NewReader(raw))
}

func subject(h mail.Header) string {
	if s, err := h.Subject(); err == nil {
		return s
	}
	raw := h.Get("Subject")
	if decoded, err := wordDecoder.DecodeHeader(raw); err == nil {
		return decoded
	}
	return raw
}

// sender formats the From header as "Name <address>"
func sender(h mail.Header) string {
	addrs, err := h.AddressList("From")
	if err != nil || len(addrs) == 0 {
		if raw := strings.TrimSpace(h.Get("From")); raw != "" {
			return raw
		}
		return UnknownSender
	}

	addr := addrs[0]
	if addr.Name == "" {
		return addr.Address
	}
	return addr.Name + " <" + addr.Address + ">"
}
