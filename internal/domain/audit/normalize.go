package audit

import "strings"

// DedupKey is the identity of a URL for discovery: lowercased host+path without
// scheme, query, fragment or trailing slashes.
func DedupKey(raw string) string {
	host, path, ok := ParsedURL(raw)
	if !ok {
		return strings.ToLower(strings.TrimRight(strings.TrimSpace(raw), "/"))
	}
	return strings.TrimRight(host+path, "/")
}
