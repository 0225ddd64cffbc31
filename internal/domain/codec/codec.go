// Package codec encodes SEC payloads to URL-safe transport tokens and
// resolves the active payload for a screen.
package codec

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/okian/seccard/internal/adapters/storage"
	"github.com/okian/seccard/internal/domain/model"
)

// Encode serializes a payload to JSON and wraps it in a URL-safe token.
// The encoding is reversible and lossless for all JSON-representable
// values, including embedded unicode.
func Encode(p model.SECPayload) (string, error) {
	raw, err := json.Marshal(p)
	if err != nil {
		return "", fmt.Errorf("encode payload: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(raw), nil
}

// Decode reverses Encode. Any malformed input (bad token, invalid JSON,
// non-object result) yields ErrMissingPayload rather than a distinct
// error; callers must have a fallback.
func Decode(token string) (model.SECPayload, error) {
	if token == "" {
		return model.SECPayload{}, ErrMissingPayload
	}
	raw, err := base64.RawURLEncoding.DecodeString(token)
	if err != nil {
		// Tolerate padded tokens produced by older encoders.
		raw, err = base64.URLEncoding.DecodeString(token)
		if err != nil {
			return model.SECPayload{}, ErrMissingPayload
		}
	}
	return unmarshalPayload(raw)
}

// Resolve loads the payload for a screen: an explicit transport token
// takes precedence, else the most recently stored payload, else
// ErrMissingPayload. A present-but-malformed token degrades to the
// stored fallback.
func Resolve(ctx context.Context, token string, store storage.Store) (model.SECPayload, error) {
	if token != "" {
		if p, err := Decode(token); err == nil {
			return p, nil
		}
	}
	raw, err := store.Get(ctx, storage.KeyPayload)
	if err != nil {
		return model.SECPayload{}, ErrMissingPayload
	}
	return unmarshalPayload(raw)
}

// Persist stores a payload as the most recent one for Resolve fallback.
func Persist(ctx context.Context, store storage.Store, p model.SECPayload) error {
	raw, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("persist payload: %w", err)
	}
	if err := store.Set(ctx, storage.KeyPayload, raw); err != nil {
		return fmt.Errorf("persist payload: %w", err)
	}
	return nil
}

// unmarshalPayload decodes raw JSON, requiring a top-level object so a
// token carrying `null`, an array or a scalar resolves to no payload.
func unmarshalPayload(raw []byte) (model.SECPayload, error) {
	trimmed := bytes.TrimLeft(raw, " \t\r\n")
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return model.SECPayload{}, ErrMissingPayload
	}
	var p model.SECPayload
	if err := json.Unmarshal(trimmed, &p); err != nil {
		return model.SECPayload{}, ErrMissingPayload
	}
	return p, nil
}

// IsMissing reports whether err is the missing-payload condition.
func IsMissing(err error) bool {
	return errors.Is(err, ErrMissingPayload)
}
