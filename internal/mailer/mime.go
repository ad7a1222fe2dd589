package mailer

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"mime"
	"mime/multipart"
	"net/textproto"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
)

// mimeLineLength is the maximum encoded line length per RFC 2045.
const mimeLineLength = 76

// buildMIME renders msg into a complete RFC 5322 message. Messages without
// attachments are multipart/alternative; with attachments the alternative
// section is nested inside multipart/mixed.
func buildMIME(msg *Message, now time.Time) ([]byte, error) {
	var buf bytes.Buffer

	writeHeader(&buf, "From", msg.From())
	writeHeader(&buf, "To", strings.Join(msg.To, ", "))
	writeHeader(&buf, "Subject", mime.QEncoding.Encode("utf-8", msg.Subject))
	writeHeader(&buf, "Date", now.Format(time.RFC1123Z))
	writeHeader(&buf, "MIME-Version", "1.0")

	alternative, altBoundary, err := buildAlternative(msg)
	if err != nil {
		return nil, err
	}

	if len(msg.Attachments) == 0 {
		writeHeader(&buf, "Content-Type", "multipart/alternative; boundary="+altBoundary)
		buf.WriteString("\r\n")
		buf.Write(alternative)

		return buf.Bytes(), nil
	}

	mixed := multipart.NewWriter(&buf)
	writeHeader(&buf, "Content-Type", "multipart/mixed; boundary="+mixed.Boundary())
	buf.WriteString("\r\n")

	bodyPart, err := mixed.CreatePart(textproto.MIMEHeader{
		"Content-Type": {"multipart/alternative; boundary=" + altBoundary},
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to create message body part")
	}

	if _, err := bodyPart.Write(alternative); err != nil {
		return nil, errors.Wrap(err, "failed to write message body part")
	}

	for _, att := range msg.Attachments {
		if err := writeAttachment(mixed, att); err != nil {
			return nil, err
		}
	}

	if err := mixed.Close(); err != nil {
		return nil, errors.Wrap(err, "failed to finalize message")
	}

	return buf.Bytes(), nil
}

// buildAlternative renders the text and HTML bodies as one
// multipart/alternative section and returns it with its boundary.
func buildAlternative(msg *Message) ([]byte, string, error) {
	var buf bytes.Buffer
	alt := multipart.NewWriter(&buf)

	if msg.TextBody != "" {
		if err := writeTextPart(alt, "text/plain", msg.TextBody); err != nil {
			return nil, "", err
		}
	}

	if err := writeTextPart(alt, "text/html", msg.HTMLBody); err != nil {
		return nil, "", err
	}

	if err := alt.Close(); err != nil {
		return nil, "", errors.Wrap(err, "failed to finalize message body")
	}

	return buf.Bytes(), alt.Boundary(), nil
}

func writeTextPart(w *multipart.Writer, contentType, body string) error {
	part, err := w.CreatePart(textproto.MIMEHeader{
		"Content-Type":              {contentType + "; charset=utf-8"},
		"Content-Transfer-Encoding": {"base64"},
	})
	if err != nil {
		return errors.Wrapf(err, "failed to create %s part", contentType)
	}

	if _, err := part.Write([]byte(wrapBase64([]byte(body)))); err != nil {
		return errors.Wrapf(err, "failed to write %s part", contentType)
	}

	return nil
}

func writeAttachment(w *multipart.Writer, att Attachment) error {
	raw, err := base64.StdEncoding.DecodeString(att.Content)
	if err != nil {
		return errors.Wrapf(err, "attachment %s is not valid base64", att.Filename)
	}

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
		return errors.Wrapf(err, "failed to create attachment part for %s", att.Filename)
	}

	if _, err := part.Write([]byte(wrapBase64(raw))); err != nil {
		return errors.Wrapf(err, "failed to write attachment %s", att.Filename)
	}

	return nil
}

func writeHeader(buf *bytes.Buffer, key, value string) {
	buf.WriteString(key)
	buf.WriteString(": ")
	buf.WriteString(value)
	buf.WriteString("\r\n")
}

func wrapBase64(data []byte) string {
	encoded := base64.StdEncoding.EncodeToString(data)

	var b strings.Builder
	for len(encoded) > mimeLineLength {
		b.WriteString(encoded[:mimeLineLength])
		b.WriteString("\r\n")
		encoded = encoded[mimeLineLength:]
	}
	b.WriteString(encoded)

	return b.String()
}
