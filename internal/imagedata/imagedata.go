// Package imagedata decodes images submitted as base64 strings or data URLs.
package imagedata

import (
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/gabriel-vasile/mimetype"

	"github.com/saturnino-fabrica-de-software/metamind/internal/domain"
)

var validImageTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/webp": true,
	"image/gif":  true,
	"image/bmp":  true,
}

// Image is a decoded upload
type Image struct {
	Bytes []byte
	MIME  string
	Hash  string
}

// Decode parses a base64 payload. A data URL prefix such as
// "data:image/jpeg;base64," is stripped before decoding.
func Decode(payload string, maxBytes int) (*Image, error) {
	payload = strings.TrimSpace(payload)
	if payload == "" {
		return nil, domain.ErrNoImage
	}

	if _, after, found := strings.Cut(payload, ","); found {
		payload = after
	}

	// base64 expands by 4/3; reject oversized payloads before decoding
	if maxBytes > 0 && base64.StdEncoding.DecodedLen(len(payload)) > maxBytes+3 {
		return nil, domain.ErrImageTooLarge
	}

	raw, err := decodeBase64(payload)
	if err != nil {
		return nil, domain.ErrInvalidImage.WithError(err)
	}

	if len(raw) == 0 {
		return nil, domain.ErrInvalidImage.WithError(fmt.Errorf("empty image"))
	}

	if maxBytes > 0 && len(raw) > maxBytes {
		return nil, domain.ErrImageTooLarge
	}

	mime := mimetype.Detect(raw)
	if !validImageTypes[mime.String()] {
		return nil, domain.ErrInvalidImage.WithError(fmt.Errorf("unsupported content type %s", mime.String()))
	}

	return &Image{
		Bytes: raw,
		MIME:  mime.String(),
		Hash:  Hash(raw),
	}, nil
}

// Hash returns the hex SHA-256 of the image bytes
func Hash(raw []byte) string {
	sum := sha256.Sum256(raw)
	return hex.EncodeToString(sum[:])
}

func decodeBase64(payload string) ([]byte, error) {
	payload = strings.Map(func(r rune) rune {
		switch r {
		case '\n', '\r', ' ', '\t':
			return -1
		}
		return r
	}, payload)

	encodings := []*base64.Encoding{
		base64.StdEncoding,
		base64.RawStdEncoding,
		base64.URLEncoding,
		base64.RawURLEncoding,
	}

	var lastErr error
	for _, enc := range encodings {
		raw, err := enc.DecodeString(payload)
		if err == nil {
			return raw, nil
		}
		lastErr = err
	}

	return nil, fmt.Errorf("decode base64: %w", lastErr)
}
