// Package urlnorm extracts a comparable domain token from a URL, the form
// used to match tool-call URLs against a policy's allowed-domain set.
package urlnorm

import (
	"net/url"
	"strings"

	"golang.org/x/net/idna"
)

// Domain returns the normalized domain for a URL: "file" for file-scheme
// URLs, otherwise the lowercased authority with any userinfo@ prefix and
// :port suffix stripped, IDNA-encoded to ASCII. Returns "" when no
// authority can be found.
func Domain(raw string) string {
	parsed, err := url.Parse(raw)
	if err != nil {
		return ""
	}
	if parsed.Scheme == "file" {
		return "file"
	}

	host := parsed.Host
	if host == "" {
		host = parsed.Path
	}
	if host == "" {
		return ""
	}
	host = strings.ToLower(host)
	if idx := strings.Index(host, "@"); idx >= 0 {
		host = host[idx+1:]
	}
	if idx := strings.Index(host, ":"); idx >= 0 {
		host = host[:idx]
	}
	if host == "" {
		return ""
	}

	ascii, err := idna.ToASCII(host)
	if err != nil {
		return host
	}
	return ascii
}
