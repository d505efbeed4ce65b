package normalization

import (
	"fmt"
	"sort"
	"strings"
)

// Normalizer provides type-safe string-to-enum normalization with error handling.
// folio uses it for user-facing enum fields in configuration (build mode,
// service categories) so that "Prod", " prod " and "PROD" all mean the same.
type Normalizer[T comparable] struct {
	validValues  map[string]T
	defaultValue T
	validKeys    []string // Cached for error messages
}

// NewNormalizer creates a normalizer with a map of valid string->value pairs.
func NewNormalizer[T comparable](values map[string]T, defaultValue T) *Normalizer[T] {
	normalized := make(map[string]T, len(values))
	validKeys := make([]string, 0, len(values))

	for k, v := range values {
		key := canonicalKey(k)
		normalized[key] = v
		validKeys = append(validKeys, key)
	}
	sort.Strings(validKeys)

	return &Normalizer[T]{
		validValues:  normalized,
		defaultValue: defaultValue,
		validKeys:    validKeys,
	}
}

// Normalize converts a raw string to its enum value, returning the default on
// invalid input.
func (n *Normalizer[T]) Normalize(raw string) T {
	if v, ok := n.validValues[canonicalKey(raw)]; ok {
		return v
	}
	return n.defaultValue
}

// NormalizeWithError converts a raw string to its enum value, returning an
// error naming the valid choices on invalid input.
func (n *Normalizer[T]) NormalizeWithError(raw string) (T, error) {
	if v, ok := n.validValues[canonicalKey(raw)]; ok {
		return v, nil
	}
	return n.defaultValue, fmt.Errorf("unknown value %q (valid: %s)", raw, strings.Join(n.validKeys, ", "))
}

// ValidKeys returns the sorted canonical keys, for help text.
func (n *Normalizer[T]) ValidKeys() []string {
	return n.validKeys
}

func canonicalKey(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
