package models

import (
	"strings"
)

// Scope vocabulary for tenant data access
const (
	ScopeRead  = "read"
	ScopeWrite = "write"
)

// Credential prefixes. Bearer values carrying AccessTokenPrefix take the
// opaque-token path; everything else is treated as a super-admin JWT.
const (
	ClientIDPrefix    = "hm_"
	AccessTokenPrefix = "hm_access_"
)

var knownScopes = map[string]bool{
	ScopeRead:  true,
	ScopeWrite: true,
}

// DefaultScopes is granted to new clients when no scopes are requested.
const DefaultScopes = ScopeRead

// SplitScopes splits a space-separated scope string into fields.
func SplitScopes(scopes string) []string {
	return strings.Fields(scopes)
}

// JoinScopes joins scopes into the canonical space-separated form.
func JoinScopes(scopes []string) string {
	return strings.Join(scopes, " ")
}

// HasScope reports whether the space-separated set contains scope.
func HasScope(set, scope string) bool {
	for _, s := range SplitScopes(set) {
		if s == scope {
			return true
		}
	}
	return false
}

// ScopeSubset reports whether every scope in requested appears in allowed.
// An empty requested set is a subset of anything.
func ScopeSubset(requested, allowed string) bool {
	for _, s := range SplitScopes(requested) {
		if !HasScope(allowed, s) {
			return false
		}
	}
	return true
}

// IntersectScopes returns the scopes present in both sets, preserving the
// order of the first.
func IntersectScopes(a, b string) string {
	var out []string
	for _, s := range SplitScopes(a) {
		if HasScope(b, s) {
			out = append(out, s)
		}
	}
	return JoinScopes(out)
}

// UnknownScope returns the first scope outside the known vocabulary, or the
// empty string when every scope is known.
func UnknownScope(scopes string) string {
	for _, s := range SplitScopes(scopes) {
		if !knownScopes[s] {
			return s
		}
	}
	return ""
}
