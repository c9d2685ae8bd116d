package httpx

import (
	"encoding/json"
	"errors"
	"io"
	"net/url"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
)

// MaxBodyBytes caps request bodies read by DecodeJSON.
const MaxBodyBytes = 1 << 20

var (
	ErrEmptyBody     = errors.New("empty body")
	ErrBodyTooLarge  = errors.New("body too large")
	ErrTrailingData  = errors.New("body must contain a single JSON object")
	ErrInvalidLimit  = errors.New("invalid limit")
	ErrInvalidOffset = errors.New("invalid offset")
)

// DecodeJSON decodes exactly one JSON value into v and rejects unknown fields.
func DecodeJSON(body io.Reader, v interface{}) error {
	limited := &io.LimitedReader{R: body, N: MaxBodyBytes + 1}
	dec := json.NewDecoder(limited)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		if limited.N <= 0 {
			return ErrBodyTooLarge
		}
		if errors.Is(err, io.EOF) {
			return ErrEmptyBody
		}
		return err
	}
	if err := dec.Decode(&struct{}{}); err != io.EOF {
		if limited.N <= 0 {
			return ErrBodyTooLarge
		}
		return ErrTrailingData
	}
	return nil
}

func ValidationDetails(errs validator.ValidationErrors) map[string]string {
	if len(errs) == 0 {
		return nil
	}
	details := make(map[string]string, len(errs))
	for _, err := range errs {
		details[err.Field()] = err.Tag()
	}
	return details
}

func ParseLimitOffset(values url.Values, defaultLimit, maxLimit int64) (int64, int64, error) {
	limit := defaultLimit
	offset := int64(0)

	if raw := strings.TrimSpace(values.Get("limit")); raw != "" {
		parsed, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || parsed <= 0 {
			return 0, 0, ErrInvalidLimit
		}
		limit = min(parsed, maxLimit)
	}

	if raw := strings.TrimSpace(values.Get("offset")); raw != "" {
		parsed, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || parsed < 0 {
			return 0, 0, ErrInvalidOffset
		}
		offset = parsed
	}

	return limit, offset, nil
}

// Page returns the window [offset, offset+limit) of items, never nil.
func Page[T any](items []T, limit, offset int64) []T {
	total := int64(len(items))
	if offset >= total || limit <= 0 {
		return []T{}
	}
	end := min(offset+limit, total)
	return items[offset:end]
}
