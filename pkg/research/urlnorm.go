package research

import (
	"net/url"
	"sort"
	"strings"
)

// trackingParams are dropped before comparing URLs.
var trackingParams = map[string]bool{
	"gclid":   true,
	"fbclid":  true,
	"msclkid": true,
	"mc_cid":  true,
	"mc_eid":  true,
	"ref":     true,
	"ref_src": true,
}

// NormalizeURL returns the key used to deduplicate search hits.
// Scheme and host are lowercased, "www." prefixes, default ports, fragments,
// utm_* and known click-tracking parameters are removed, remaining query
// parameters are sorted and a trailing slash on the path is dropped.
// http and https variants of the same page are treated as one.
// Input without a scheme is read as https. Unparseable input falls back to the trimmed
// string with everything before the first slash lowercased.
func NormalizeURL(raw string) string {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return ""
	}
	u, err := url.Parse(trimmed)
	if err == nil && u.Host == "" && !strings.Contains(trimmed, "://") {
		// Scheme-less hits such as "example.com/a".
		u, err = url.Parse("https://" + trimmed)
	}
	if err != nil || u.Host == "" {
		return lowerHostPart(trimmed)
	}

	host := strings.ToLower(u.Hostname())
	host = strings.TrimPrefix(host, "www.")
	port := u.Port()
	if port != "" && port != "80" && port != "443" {
		host += ":" + port
	}

	path := u.EscapedPath()
	path = strings.TrimRight(path, "/")

	q := u.Query()
	keys := make([]string, 0, len(q))
	for k := range q {
		lk := strings.ToLower(k)
		if strings.HasPrefix(lk, "utm_") || trackingParams[lk] {
			continue
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var sb strings.Builder
	sb.WriteString(host)
	sb.WriteString(path)
	if len(keys) > 0 {
		sb.WriteByte('?')
		for i, k := range keys {
			vals := q[k]
			sort.Strings(vals)
			for j, v := range vals {
				if i > 0 || j > 0 {
					sb.WriteByte('&')
				}
				sb.WriteString(url.QueryEscape(k))
				sb.WriteByte('=')
				sb.WriteString(url.QueryEscape(v))
			}
		}
	}
	return sb.String()
}

func lowerHostPart(s string) string {
	i := strings.IndexByte(s, '/')
	if i < 0 {
		return strings.ToLower(s)
	}
	return strings.ToLower(s[:i]) + s[i:]
}

// dedupeHits keeps the first occurrence of every normalized URL, preserving order.
// Hits without a URL are dropped.
func dedupeHits(hits []SearchHit) []SearchHit {
	seen := make(map[string]bool, len(hits))
	unique := make([]SearchHit, 0, len(hits))
	for _, h := range hits {
		key := NormalizeURL(h.URL)
		if key == "" || seen[key] {
			continue
		}
		seen[key] = true
		unique = append(unique, h)
	}
	return unique
}
