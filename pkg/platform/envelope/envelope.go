// Package envelope normalises collaborator list payloads that arrive either as
// a bare JSON array or wrapped in {"data": [...]}.
package envelope

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

var ErrUnsupportedShape = errors.New("envelope: payload is neither an array nor a data envelope")

// List decodes raw into a slice of T. A null or empty body yields an empty slice.
func List[T any](raw []byte) ([]T, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return []T{}, nil
	}

	switch trimmed[0] {
	case '[':
		var items []T
		if err := json.Unmarshal(trimmed, &items); err != nil {
			return nil, fmt.Errorf("decode array payload: %w", err)
		}
		return nonNil(items), nil
	case '{':
		var wrapped struct {
			Data *json.RawMessage `json:"data"`
		}
		if err := json.Unmarshal(trimmed, &wrapped); err != nil {
			return nil, fmt.Errorf("decode envelope payload: %w", err)
		}
		if wrapped.Data == nil {
			return nil, ErrUnsupportedShape
		}
		inner := bytes.TrimSpace(*wrapped.Data)
		if len(inner) == 0 || inner[0] != '[' {
			if bytes.Equal(inner, []byte("null")) {
				return []T{}, nil
			}
			return nil, ErrUnsupportedShape
		}
		var items []T
		if err := json.Unmarshal(inner, &items); err != nil {
			return nil, fmt.Errorf("decode envelope data: %w", err)
		}
		return nonNil(items), nil
	default:
		return nil, ErrUnsupportedShape
	}
}

// Wrap builds the {"data": [...]} form used by list responses.
func Wrap[T any](items []T) map[string][]T {
	return map[string][]T{"data": nonNil(items)}
}

func nonNil[T any](items []T) []T {
	if items == nil {
		return []T{}
	}
	return items
}
