package mapper

import (
	"strconv"
	"strings"
)

// paramEntry is one method argument in a ParamMap.
type paramEntry struct {
	name     string
	fallback string // "param<N>", or "" when an earlier name already claimed it
	value    any
}

// ParamMap is the statement parameter built from several method arguments.
//
// Each argument is reachable by its resolved name and by its positional
// fallback "param1", "param2", ... Lookups try names before fallbacks, and
// fail on a name that was never populated instead of yielding nil.
type ParamMap struct {
	entries []paramEntry
}

// FallbackName returns the positional key for the zero-based ordinal i.
func FallbackName(i int) string {
	return "param" + strconv.Itoa(i+1)
}

// add appends value under name and, unless an earlier entry is already named
// that way, under the fallback key for ordinal.
func (p *ParamMap) add(name string, ordinal int, value any) {
	fallback := FallbackName(ordinal)
	for _, e := range p.entries {
		if e.name == fallback {
			fallback = ""
			break
		}
	}
	p.entries = append(p.entries, paramEntry{name: name, fallback: fallback, value: value})
}

// Get returns the value stored under key.
// A later argument with the same name shadows an earlier one.
func (p *ParamMap) Get(key string) (any, error) {
	for i := len(p.entries) - 1; i >= 0; i-- {
		if p.entries[i].name == key {
			return p.entries[i].value, nil
		}
	}
	for _, e := range p.entries {
		if e.fallback != "" && e.fallback == key {
			return e.value, nil
		}
	}
	return nil, newError(ErrCodeUnknownParameterKey,
		"parameter '%s' not found. Available parameters are [%s]", key, strings.Join(p.Names(), ", "))
}

// Has reports whether key resolves.
func (p *ParamMap) Has(key string) bool {
	_, err := p.Get(key)
	return err == nil
}

// Names returns every resolvable key: names in argument order, then fallbacks.
func (p *ParamMap) Names() []string {
	seen := make(map[string]bool, 2*len(p.entries))
	names := make([]string, 0, 2*len(p.entries))
	for _, e := range p.entries {
		if !seen[e.name] {
			seen[e.name] = true
			names = append(names, e.name)
		}
	}
	for _, e := range p.entries {
		if e.fallback != "" && !seen[e.fallback] {
			seen[e.fallback] = true
			names = append(names, e.fallback)
		}
	}
	return names
}

// Len returns the number of arguments in the map.
func (p *ParamMap) Len() int {
	return len(p.entries)
}

// Map returns a copy of the bag as a plain map, resolving every key with Get.
func (p *ParamMap) Map() map[string]any {
	out := make(map[string]any, 2*len(p.entries))
	for _, name := range p.Names() {
		v, _ := p.Get(name)
		out[name] = v
	}
	return out
}
