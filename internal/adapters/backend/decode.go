package backend

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	jmespath "github.com/jmespath-community/go-jmespath"
)

// Resource names a backend collection.
type Resource string

const (
	ResourceTeams     Resource = "teams"
	ResourceEquipment Resource = "equipment"
	ResourceTickets   Resource = "tickets"
)

// detailExpressions locate a human-readable message in an error body, most specific first.
// FastAPI sends {"detail": "..."} or, for 422s, {"detail": [{"msg": "..."}]}.
var detailExpressions = []string{
	"detail",
	"detail[0].msg",
	"detail.reason",
	"detail.code",
	"message",
	"error",
}

// detailMessage extracts the backend's error text from body, or returns fallback.
func detailMessage(body []byte, fallback string) string {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 {
		return fallback
	}
	var doc any
	if err := json.Unmarshal(trimmed, &doc); err != nil {
		return fallback
	}
	for _, expr := range detailExpressions {
		v, err := jmespath.Search(expr, doc)
		if err != nil {
			continue
		}
		if s, ok := v.(string); ok && strings.TrimSpace(s) != "" {
			return strings.TrimSpace(s)
		}
	}
	return fallback
}

// wrapperExpressions lists the keys tried, in order, when a list response is an object.
func wrapperExpressions(kind Resource) []string {
	return []string{string(kind), "items", "data." + string(kind)}
}

// DecodeList normalizes a list response: a bare JSON array is used as is,
// otherwise the resource's wrapper key is tried, and any other shape yields an
// empty list. Only malformed JSON is an error.
func DecodeList[T any](kind Resource, body []byte) ([]T, error) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 {
		return []T{}, nil
	}

	if trimmed[0] == '[' {
		var items []T
		if err := json.Unmarshal(trimmed, &items); err != nil {
			return nil, fmt.Errorf("decode %s list: %w", kind, err)
		}
		return nonNil(items), nil
	}

	var doc any
	if err := json.Unmarshal(trimmed, &doc); err != nil {
		return nil, fmt.Errorf("decode %s list: %w", kind, err)
	}
	if _, ok := doc.(map[string]any); !ok {
		return []T{}, nil
	}

	for _, expr := range wrapperExpressions(kind) {
		v, err := jmespath.Search(expr, doc)
		if err != nil {
			continue
		}
		arr, ok := v.([]any)
		if !ok {
			continue
		}
		raw, err := json.Marshal(arr)
		if err != nil {
			return nil, fmt.Errorf("re-encode %s list: %w", kind, err)
		}
		var items []T
		if err := json.Unmarshal(raw, &items); err != nil {
			return nil, fmt.Errorf("decode %s list: %w", kind, err)
		}
		return nonNil(items), nil
	}
	return []T{}, nil
}

func nonNil[T any](items []T) []T {
	if items == nil {
		return []T{}
	}
	return items
}
