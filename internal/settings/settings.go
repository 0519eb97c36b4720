// Package settings holds the dynamic cluster settings this service reacts to.
package settings

import (
	"encoding/json"
	"strings"
	"sync"
	"sync/atomic"
)

const (
	AllowListKey = "plugins.alerting.destination.allow_list"
	// LegacyAllowListKey is read when AllowListKey is unset.
	LegacyAllowListKey = "opendistro.alerting.destination.allow_list"

	DestinationEmail = "email"
)

// DefaultAllowList allows every destination type.
var DefaultAllowList = []string{"chime", "slack", "custom_webhook", "email", "test_action", "sns"}

// Registry is an in-memory view of the dynamic settings.
type Registry struct {
	mu     sync.RWMutex
	values map[string]string
	subs   map[string][]func(value string, ok bool)
}

func NewRegistry() *Registry {
	return &Registry{
		values: map[string]string{},
		subs:   map[string][]func(string, bool){},
	}
}

func (r *Registry) Get(key string) (string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	v, ok := r.values[key]
	return v, ok
}

// Subscribe calls fn every time key changes. ok is false once key is removed.
func (r *Registry) Subscribe(key string, fn func(value string, ok bool)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.subs[key] = append(r.subs[key], fn)
}

// Apply replaces all settings with values and notifies the subscribers of
// every key whose value changed.
func (r *Registry) Apply(values map[string]string) {
	r.mu.Lock()
	changed := map[string]bool{}
	for k, v := range values {
		if old, ok := r.values[k]; !ok || old != v {
			changed[k] = true
		}
	}
	for k := range r.values {
		if _, ok := values[k]; !ok {
			changed[k] = true
		}
	}
	next := make(map[string]string, len(values))
	for k, v := range values {
		next[k] = v
	}
	r.values = next

	type call struct {
		fn    func(string, bool)
		value string
		ok    bool
	}
	var calls []call
	for k := range changed {
		v, ok := next[k]
		for _, fn := range r.subs[k] {
			calls = append(calls, call{fn: fn, value: v, ok: ok})
		}
	}
	r.mu.Unlock()

	for _, c := range calls {
		c.fn(c.value, c.ok)
	}
}

// AllowList is the set of destination types requests may use. It is read
// once per request and replaced whole when the setting changes.
type AllowList struct {
	current  atomic.Pointer[[]string]
	registry *Registry
}

// NewAllowList reads the allow list from r and follows its changes.
func NewAllowList(r *Registry) *AllowList {
	a := &AllowList{registry: r}
	a.reload()
	r.Subscribe(AllowListKey, func(string, bool) { a.reload() })
	r.Subscribe(LegacyAllowListKey, func(string, bool) { a.reload() })
	return a
}

// StaticAllowList never changes. Used by tests and tools.
func StaticAllowList(types ...string) *AllowList {
	a := &AllowList{}
	list := append([]string(nil), types...)
	a.current.Store(&list)
	return a
}

func (a *AllowList) reload() {
	list := DefaultAllowList
	if v, ok := a.registry.Get(AllowListKey); ok {
		list = ParseList(v)
	} else if v, ok := a.registry.Get(LegacyAllowListKey); ok {
		list = ParseList(v)
	}
	list = append([]string(nil), list...)
	a.current.Store(&list)
}

// Snapshot returns the current allow list.
func (a *AllowList) Snapshot() []string {
	return *a.current.Load()
}

// Allows reports whether destinationType is in the current allow list.
func (a *AllowList) Allows(destinationType string) bool {
	for _, t := range a.Snapshot() {
		if t == destinationType {
			return true
		}
	}
	return false
}

// ParseList accepts a JSON array or a comma separated list.
func ParseList(v string) []string {
	v = strings.TrimSpace(v)
	if strings.HasPrefix(v, "[") {
		var list []string
		if err := json.Unmarshal([]byte(v), &list); err == nil {
			return list
		}
	}
	out := []string{}
	for _, part := range strings.Split(v, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
