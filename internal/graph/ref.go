package graph

import (
	"encoding/json"
	"slices"
	"strings"

	"github.com/satishgoda/watchtower/internal/services"
)

// Ref is a list element that arrives either as a bare id string or as an
// embedded object. Value is nil for the id-only form; a JSON null leaves both
// fields empty.
type Ref[T any] struct {
	ID    string
	Value *T
}

// missingNull stands in for a null or blank element in missing-id lists.
const missingNull = "<null>"

// UnmarshalJSON implements json.Unmarshaler.
func (r *Ref[T]) UnmarshalJSON(data []byte) error {
	trimmed := strings.TrimSpace(string(data))
	if trimmed == "null" {
		*r = Ref[T]{}
		return nil
	}
	if strings.HasPrefix(trimmed, "\"") {
		var id string
		if err := json.Unmarshal(data, &id); err != nil {
			return err
		}
		r.ID = id
		r.Value = nil
		return nil
	}
	if !strings.HasPrefix(trimmed, "{") {
		return services.Wrap(services.ErrMalformedData, "", "decode reference", "expected id string or object, got "+abbreviate(trimmed), nil)
	}
	var head struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(data, &head); err != nil {
		return err
	}
	var value T
	if err := json.Unmarshal(data, &value); err != nil {
		return err
	}
	r.ID = head.ID
	r.Value = &value
	return nil
}

// Resolved reports whether the object form was provided.
func (r Ref[T]) Resolved() bool {
	return r.Value != nil
}

// Empty reports whether the element was null or a blank id.
func (r Ref[T]) Empty() bool {
	return r.Value == nil && strings.TrimSpace(r.ID) == ""
}

// NeedsLookup reports whether any ref is id-only. Null elements need nothing.
func NeedsLookup[T any](refs []Ref[T]) bool {
	for _, ref := range refs {
		if ref.Value == nil && !ref.Empty() {
			return true
		}
	}
	return false
}

// ResolveRefs materialises refs in list order. Embedded objects are used as-is;
// bare ids are looked up in pool. Ids with no match, and null elements, are
// returned in missing.
func ResolveRefs[T any](refs []Ref[T], pool []T, idOf func(T) string) (resolved []T, missing []string) {
	index := make(map[string]T, len(pool))
	for _, item := range pool {
		index[idOf(item)] = item
	}
	for _, ref := range refs {
		if ref.Value != nil {
			resolved = append(resolved, *ref.Value)
			continue
		}
		if ref.Empty() {
			missing = append(missing, missingNull)
			continue
		}
		if item, ok := index[ref.ID]; ok {
			resolved = append(resolved, item)
			continue
		}
		missing = append(missing, ref.ID)
	}
	return resolved, missing
}

// FilterRefs keeps the pool entries named by id-only refs, in pool order, then
// appends any embedded objects in list order. An empty list selects the whole
// pool. Null elements are reported in missing.
func FilterRefs[T any](refs []Ref[T], pool []T, idOf func(T) string) (resolved []T, missing []string) {
	if len(refs) == 0 {
		return slices.Clone(pool), nil
	}
	wanted := make(map[string]bool, len(refs))
	var embedded []T
	for _, ref := range refs {
		switch {
		case ref.Value != nil:
			embedded = append(embedded, *ref.Value)
		case ref.Empty():
			missing = append(missing, missingNull)
		default:
			wanted[ref.ID] = false
		}
	}
	for _, item := range pool {
		id := idOf(item)
		if seen, ok := wanted[id]; ok && !seen {
			resolved = append(resolved, item)
			wanted[id] = true
		}
	}
	for _, ref := range refs {
		if ref.Value == nil && !ref.Empty() && !wanted[ref.ID] {
			missing = append(missing, ref.ID)
		}
	}
	return append(resolved, embedded...), missing
}

func abbreviate(s string) string {
	if len(s) > 32 {
		return s[:32] + "..."
	}
	return s
}
