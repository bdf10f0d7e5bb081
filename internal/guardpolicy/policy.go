// Package guardpolicy defines the immutable configuration that parameterizes
// the guardrail evaluation engine.
package guardpolicy

import "sort"

// Policy is the guardrail configuration for one evaluation. A Policy is
// treated as immutable once constructed; the engine never mutates it.
type Policy struct {
	AllowedToolNames  map[string]struct{}
	AllowedURLDomains map[string]struct{}
	RequireClaims     bool // consumed by adapters, not by the engine
	BlockOn           map[string]struct{}
	MinCompanySize    *int
	MinPayThreshold   *int
	TreatMetroAsMinor bool
}

// New returns a Policy with empty sets and TreatMetroAsMinor true, matching
// the defaults of the original implementation's Policy dataclass.
func New() Policy {
	return Policy{
		AllowedToolNames:  map[string]struct{}{},
		AllowedURLDomains: map[string]struct{}{},
		RequireClaims:     true,
		BlockOn:           map[string]struct{}{},
		TreatMetroAsMinor: true,
	}
}

// HasAllowedTools reports whether the allow-list is non-empty.
func (p Policy) HasAllowedTools() bool {
	return len(p.AllowedToolNames) > 0
}

// AllowsTool reports whether a tool name is on the allow-list.
func (p Policy) AllowsTool(name string) bool {
	_, ok := p.AllowedToolNames[name]
	return ok
}

// HasAllowedDomains reports whether the domain allow-list is non-empty.
func (p Policy) HasAllowedDomains() bool {
	return len(p.AllowedURLDomains) > 0
}

// AllowsDomain reports whether a normalized domain is on the allow-list.
func (p Policy) AllowsDomain(domain string) bool {
	_, ok := p.AllowedURLDomains[domain]
	return ok
}

// Clone returns a deep-enough copy of the policy (sets and pointers copied).
func (p Policy) Clone() Policy {
	out := Policy{
		AllowedToolNames:  copySet(p.AllowedToolNames),
		AllowedURLDomains: copySet(p.AllowedURLDomains),
		RequireClaims:     p.RequireClaims,
		BlockOn:           copySet(p.BlockOn),
		TreatMetroAsMinor: p.TreatMetroAsMinor,
	}
	if p.MinCompanySize != nil {
		v := *p.MinCompanySize
		out.MinCompanySize = &v
	}
	if p.MinPayThreshold != nil {
		v := *p.MinPayThreshold
		out.MinPayThreshold = &v
	}
	return out
}

// ToMap serializes the policy to a string-keyed dict with sorted sets, for
// stable round-tripping through config files and report payloads.
func (p Policy) ToMap() map[string]any {
	m := map[string]any{
		"allowed_tool_names":  sortedKeys(p.AllowedToolNames),
		"allowed_url_domains": sortedKeys(p.AllowedURLDomains),
		"require_claims":      p.RequireClaims,
		"block_on":            sortedKeys(p.BlockOn),
		"treat_metro_as_minor": p.TreatMetroAsMinor,
	}
	if p.MinCompanySize != nil {
		m["min_company_size"] = *p.MinCompanySize
	} else {
		m["min_company_size"] = nil
	}
	if p.MinPayThreshold != nil {
		m["min_pay_threshold"] = *p.MinPayThreshold
	} else {
		m["min_pay_threshold"] = nil
	}
	return m
}

// FromMap builds a Policy from a string-keyed dict, the inverse of ToMap.
// Unrecognized keys are ignored; missing keys take their zero value
// (TreatMetroAsMinor defaults to true, RequireClaims to true).
func FromMap(m map[string]any) Policy {
	p := New()
	if v, ok := toStringSlice(m["allowed_tool_names"]); ok {
		p.AllowedToolNames = toSet(v)
	}
	if v, ok := toStringSlice(m["allowed_url_domains"]); ok {
		p.AllowedURLDomains = toSet(v)
	}
	if v, ok := m["require_claims"].(bool); ok {
		p.RequireClaims = v
	}
	if v, ok := toStringSlice(m["block_on"]); ok {
		p.BlockOn = toSet(v)
	}
	if v, ok := toInt(m["min_company_size"]); ok {
		p.MinCompanySize = &v
	}
	if v, ok := toInt(m["min_pay_threshold"]); ok {
		p.MinPayThreshold = &v
	}
	if v, ok := m["treat_metro_as_minor"].(bool); ok {
		p.TreatMetroAsMinor = v
	}
	return p
}

func sortedKeys(m map[string]struct{}) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

func toSet(vals []string) map[string]struct{} {
	out := make(map[string]struct{}, len(vals))
	for _, v := range vals {
		out[v] = struct{}{}
	}
	return out
}

func toStringSlice(v any) ([]string, bool) {
	switch vv := v.(type) {
	case []string:
		return vv, true
	case []any:
		out := make([]string, 0, len(vv))
		for _, item := range vv {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out, true
	default:
		return nil, false
	}
}

func toInt(v any) (int, bool) {
	switch vv := v.(type) {
	case int:
		return vv, true
	case int64:
		return int(vv), true
	case float64:
		return int(vv), true
	default:
		return 0, false
	}
}
