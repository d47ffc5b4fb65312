package domain

import (
	"maps"
	"slices"
	"strings"

	"github.com/cespare/xxhash/v2"
)

// Params is the parameter set of a query. Empty values are never stored, so a filter
// left blank and a filter never set produce the same key.
type Params map[string]string

// Set stores value under key, or removes the key when value is empty.
func (p Params) Set(key, value string) {
	if value == "" {
		delete(p, key)
		return
	}
	p[key] = value
}

// Clone returns a copy of the parameter set.
func (p Params) Clone() Params {
	out := make(Params, len(p))
	maps.Copy(out, p)
	return out
}

// sortedKeys returns the parameter names in lexical order.
func (p Params) sortedKeys() []string {
	return slices.Sorted(maps.Keys(p))
}

// QueryKey identifies a cached read: a resource name plus its parameters.
type QueryKey struct {
	Resource string
	Params   Params
}

// NewQueryKey builds a key, dropping empty parameter values.
func NewQueryKey(resource string, params Params) QueryKey {
	clean := make(Params, len(params))
	for k, v := range params {
		clean.Set(k, v)
	}
	return QueryKey{Resource: resource, Params: clean}
}

// Equal reports whether both keys name the same resource with deeply equal parameters.
func (k QueryKey) Equal(other QueryKey) bool {
	if k.Resource != other.Resource || len(k.Params) != len(other.Params) {
		return false
	}
	for name, v := range k.Params {
		if ov, ok := other.Params[name]; !ok || ov != v {
			return false
		}
	}
	return true
}

// Fingerprint returns a 64-bit hash of the canonical form of the key.
// Equal keys always share a fingerprint.
func (k QueryKey) Fingerprint() uint64 {
	d := xxhash.New()
	_, _ = d.WriteString(k.Resource)
	for _, name := range k.Params.sortedKeys() {
		_, _ = d.Write([]byte{0})
		_, _ = d.WriteString(name)
		_, _ = d.Write([]byte{'='})
		_, _ = d.WriteString(k.Params[name])
	}
	return d.Sum64()
}

// String renders the key as resource{a=1,b=2} with parameters in lexical order.
func (k QueryKey) String() string {
	var b strings.Builder
	b.WriteString(k.Resource)
	b.WriteByte('{')
	for i, name := range k.Params.sortedKeys() {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(name)
		b.WriteByte('=')
		b.WriteString(k.Params[name])
	}
	b.WriteByte('}')
	return b.String()
}

// KeyPattern selects query keys for invalidation.
// An empty Resource matches every resource; Params must all be present with equal values.
type KeyPattern struct {
	Resource string
	Params   Params
}

// PatternFor returns a pattern matching every key of the given resource.
func PatternFor(resource string) KeyPattern {
	return KeyPattern{Resource: resource}
}

// PatternExact returns a pattern matching exactly the given key and any key extending its params.
func PatternExact(key QueryKey) KeyPattern {
	return KeyPattern{Resource: key.Resource, Params: key.Params.Clone()}
}

// Matches reports whether key is selected by the pattern.
func (p KeyPattern) Matches(key QueryKey) bool {
	if p.Resource != "" && p.Resource != key.Resource {
		return false
	}
	for name, v := range p.Params {
		if kv, ok := key.Params[name]; !ok || kv != v {
			return false
		}
	}
	return true
}
