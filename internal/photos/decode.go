package photos

import (
	"encoding/base64"
	"errors"
	"strings"
)

var (
	// ErrEmptyPayload the photo carries no data
	ErrEmptyPayload = errors.New("photo payload is empty")
	// ErrBadEncoding the payload is neither a data URL nor Base64
	ErrBadEncoding = errors.New("photo payload is not valid base64")
)

// DecodeData accepts "data:image/jpeg;base64,..." or bare Base64 and
// returns the raw bytes plus the media type declared by a data URL.
func DecodeData(payload string) ([]byte, string, error) {
	payload = strings.TrimSpace(payload)
	if payload == "" {
		return nil, "", ErrEmptyPayload
	}

	declared := ""
	if strings.HasPrefix(payload, "data:") {
		header, body, ok := strings.Cut(payload, ",")
		if !ok || !strings.HasSuffix(header, ";base64") {
			return nil, "", ErrBadEncoding
		}
		declared = strings.TrimSuffix(strings.TrimPrefix(header, "data:"), ";base64")
		payload = body
	}

	for _, enc := range []*base64.Encoding{base64.StdEncoding, base64.RawStdEncoding, base64.URLEncoding, base64.RawURLEncoding} {
		if raw, err := enc.DecodeString(payload); err == nil {
			if len(raw) == 0 {
				return nil, "", ErrEmptyPayload
			}
			return raw, declared, nil
		}
	}
	return nil, "", ErrBadEncoding
}

// decodedLen upper bound of the decoded size, used to reject oversized
// payloads before allocating
func decodedLen(payload string) int64 {
	if _, body, ok := strings.Cut(payload, ","); ok && strings.HasPrefix(payload, "data:") {
		payload = body
	}
	return int64(base64.StdEncoding.DecodedLen(len(payload)))
}
