package artifact

import (
	"encoding/base64"
	"errors"
	"fmt"
	"mime"
	"os"
	"path/filepath"
	"strings"
)

// DefaultMIMEType is assumed when the backend does not name one.
const DefaultMIMEType = "application/pdf"

var (
	// ErrEmptyPayload is returned when there is nothing to decode.
	ErrEmptyPayload = errors.New("empty artifact payload")

	// ErrInvalidBase64 is returned when the payload is not base64 in any accepted alphabet.
	ErrInvalidBase64 = errors.New("invalid base64 artifact payload")
)

// Artifact is a downloaded document.
type Artifact struct {
	FileName string
	MIMEType string
	Data     []byte
}

var encodings = []*base64.Encoding{
	base64.StdEncoding,
	base64.RawStdEncoding,
	base64.URLEncoding,
	base64.RawURLEncoding,
}

// Decode converts a base64 payload into an Artifact. A leading data URI header
// ("data:application/pdf;base64,") is stripped and its media type wins over
// mimeType. Whitespace inside the payload is ignored.
func Decode(payload, mimeType string) (Artifact, error) {
	payload = strings.TrimSpace(payload)
	if strings.HasPrefix(payload, "data:") {
		header, rest, ok := strings.Cut(payload, ",")
		if !ok {
			return Artifact{}, fmt.Errorf("%w: data uri without payload", ErrInvalidBase64)
		}
		if mt := strings.TrimSuffix(strings.TrimPrefix(header, "data:"), ";base64"); mt != "" {
			mimeType = mt
		}
		payload = rest
	}
	payload = strings.Join(strings.Fields(payload), "")
	if payload == "" {
		return Artifact{}, ErrEmptyPayload
	}

	var lastErr error
	for _, enc := range encodings {
		data, err := enc.DecodeString(payload)
		if err == nil {
			return FromBytes(data, mimeType, "")
		}
		lastErr = err
	}
	return Artifact{}, fmt.Errorf("%w: %v", ErrInvalidBase64, lastErr)
}

// FromBytes wraps raw bytes. fileName is sanitized; an empty mimeType means
// [DefaultMIMEType].
func FromBytes(data []byte, mimeType, fileName string) (Artifact, error) {
	if len(data) == 0 {
		return Artifact{}, ErrEmptyPayload
	}
	if mt, _, err := mime.ParseMediaType(mimeType); err == nil {
		mimeType = mt
	} else {
		mimeType = DefaultMIMEType
	}
	return Artifact{
		FileName: SafeFileName(fileName),
		MIMEType: mimeType,
		Data:     data,
	}, nil
}

// Named returns a copy of a with a sanitized file name.
func (a Artifact) Named(name string) Artifact {
	a.FileName = SafeFileName(name)
	return a
}

// WriteTo writes the artifact into dir and returns the file path. An unnamed
// artifact is written as "document" plus an extension for its MIME type.
func (a Artifact) WriteTo(dir string) (string, error) {
	if len(a.Data) == 0 {
		return "", ErrEmptyPayload
	}
	name := a.FileName
	if name == "" {
		name = "document" + extensionFor(a.MIMEType)
	}
	p := filepath.Join(dir, name)
	if err := os.WriteFile(p, a.Data, 0o600); err != nil {
		return "", fmt.Errorf("write artifact: %w", err)
	}
	return p, nil
}

// SafeFileName reduces name to a single path element without separators or
// leading dots.
func SafeFileName(name string) string {
	name = strings.ReplaceAll(name, "\\", "/")
	name = filepath.Base(strings.TrimSpace(name))
	name = strings.TrimLeft(name, ".")
	if name == "" || name == "/" {
		return ""
	}
	return strings.Map(func(r rune) rune {
		if r < 0x20 || r == 0x7f || strings.ContainsRune(`:*?"<>|`, r) {
			return '_'
		}
		return r
	}, name)
}

func extensionFor(mimeType string) string {
	if mimeType == DefaultMIMEType {
		return ".pdf"
	}
	exts, err := mime.ExtensionsByType(mimeType)
	if err != nil || len(exts) == 0 {
		return ".bin"
	}
	return exts[0]
}
