package mailer

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"net/textproto"
	"strings"
	"time"
)

// EncodeMessage serializes a Message into RFC 5322 wire format with MIME
// multipart bodies, suitable for SMTP DATA or SES raw sending. The layout
// mirrors what mail clients produce: multipart/mixed around an optional
// multipart/alternative (text + HTML) plus base64 attachment parts.
func EncodeMessage(msg *Message, from string) ([]byte, error) {
	var buf bytes.Buffer

	header := func(k, v string) { fmt.Fprintf(&buf, "%s: %s\r\n", k, v) }
	header("From", from)
	header("To", msg.Recipient.Address())
	if len(msg.Recipient.CC) > 0 {
		header("Cc", strings.Join(msg.Recipient.CC, ", "))
	}
	header("Subject", mime.QEncoding.Encode("utf-8", msg.Subject))
	header("Date", time.Now().Format(time.RFC1123Z))
	header("MIME-Version", "1.0")

	if len(msg.Attachments) == 0 {
		return encodeBody(&buf, msg)
	}

	mixed := multipart.NewWriter(&buf)
	header("Content-Type", fmt.Sprintf("multipart/mixed; boundary=%q", mixed.Boundary()))
	buf.WriteString("\r\n")

	if err := writeBodyPart(mixed, msg); err != nil {
		return nil, err
	}
	for _, att := range msg.Attachments {
		if err := writeAttachmentPart(mixed, att); err != nil {
			return nil, err
		}
	}
	if err := mixed.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// encodeBody finishes a message without attachments.
func encodeBody(buf *bytes.Buffer, msg *Message) ([]byte, error) {
	switch {
	case msg.HTML != "" && msg.Text != "":
		alt := multipart.NewWriter(buf)
		fmt.Fprintf(buf, "Content-Type: multipart/alternative; boundary=%q\r\n\r\n", alt.Boundary())
		if err := writeTextPart(alt, "text/plain", msg.Text); err != nil {
			return nil, err
		}
		if err := writeTextPart(alt, "text/html", msg.HTML); err != nil {
			return nil, err
		}
		if err := alt.Close(); err != nil {
			return nil, err
		}
	case msg.HTML != "":
		buf.WriteString("Content-Type: text/html; charset=utf-8\r\n\r\n")
		buf.WriteString(msg.HTML)
	default:
		buf.WriteString("Content-Type: text/plain; charset=utf-8\r\n\r\n")
		buf.WriteString(msg.Text)
	}
	return buf.Bytes(), nil
}

// writeBodyPart writes the message body into a multipart/mixed writer,
// nesting an alternative part when both text and HTML are present.
func writeBodyPart(mixed *multipart.Writer, msg *Message) error {
	if msg.HTML != "" && msg.Text != "" {
		boundary := multipart.NewWriter(io.Discard).Boundary()
		part, err := mixed.CreatePart(textproto.MIMEHeader{
			"Content-Type": {fmt.Sprintf("multipart/alternative; boundary=%q", boundary)},
		})
		if err != nil {
			return err
		}
		nested := multipart.NewWriter(part)
		if err := nested.SetBoundary(boundary); err != nil {
			return err
		}
		if err := writeTextPart(nested, "text/plain", msg.Text); err != nil {
			return err
		}
		if err := writeTextPart(nested, "text/html", msg.HTML); err != nil {
			return err
		}
		return nested.Close()
	}

	contentType, body := "text/plain", msg.Text
	if msg.HTML != "" {
		contentType, body = "text/html", msg.HTML
	}
	return writeTextPart(mixed, contentType, body)
}

func writeTextPart(w *multipart.Writer, contentType, body string) error {
	part, err := w.CreatePart(textproto.MIMEHeader{
		"Content-Type": {contentType + "; charset=utf-8"},
	})
	if err != nil {
		return err
	}
	_, err = part.Write([]byte(body))
	return err
}

func writeAttachmentPart(w *multipart.Writer, att Attachment) error {
	contentType := att.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	part, err := w.CreatePart(textproto.MIMEHeader{
		"Content-Type":              {contentType},
		"Content-Transfer-Encoding": {"base64"},
		"Content-Disposition":       {fmt.Sprintf("attachment; filename=%q", att.Filename)},
	})
	if err != nil {
		return err
	}

	encoded := base64.StdEncoding.EncodeToString(att.Content)
	// Wrap base64 at 76 columns per RFC 2045.
	for len(encoded) > 0 {
		n := min(len(encoded), 76)
		if _, err := fmt.Fprintf(part, "%s\r\n", encoded[:n]); err != nil {
			return err
		}
		encoded = encoded[n:]
	}
	return nil
}
