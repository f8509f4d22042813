package query

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Key is the structural identity of a remote query: a resource name
// followed by its ordered parameters, e.g. {"getUpgradeRequests", 2, "pending"}.
// Two keys are equal when their canonical encodings are equal.
type Key []any

// NewKey builds a key for resource with params.
func NewKey(resource string, params ...any) Key {
	k := make(Key, 0, len(params)+1)
	k = append(k, resource)
	return append(k, params...)
}

// Resource returns the leading resource name.
func (k Key) Resource() string {
	if len(k) == 0 {
		return ""
	}
	s, _ := k[0].(string)
	return s
}

// String returns the canonical, order-stable encoding of the key.
func (k Key) String() string {
	parts := make([]string, len(k))
	for i, v := range k {
		parts[i] = canon(v)
	}
	return "[" + strings.Join(parts, ",") + "]"
}

// HasPrefix reports whether the leading elements of k equal prefix. An empty
// prefix matches every key.
func (k Key) HasPrefix(prefix Key) bool {
	if len(prefix) > len(k) {
		return false
	}
	for i := range prefix {
		if canon(k[i]) != canon(prefix[i]) {
			return false
		}
	}
	return true
}

// canon encodes one element. JSON keeps numbers of any width equal and
// sorts map keys.
func canon(v any) string {
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprintf("%q", fmt.Sprint(v))
	}
	return string(b)
}
