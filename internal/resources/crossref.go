package resources

import (
	"net/url"
	"strings"

	"careerlift-backend/internal/llm"
)

// CrossReference returns the structured links whose host is not backed by any discovery source.
// A source backs a link when the hosts match, or when the source title names the link's domain;
// grounded search reports redirect URIs whose title is the publisher domain.
func CrossReference(set StructuredSet, sources []llm.Source) []string {
	known := make(map[string]struct{}, len(sources)*2)
	for _, s := range sources {
		if h := hostOf(s.URI); h != "" {
			known[h] = struct{}{}
		}
		if t := normalizeHost(s.Title); t != "" && !strings.Contains(t, " ") {
			known[t] = struct{}{}
		}
	}

	var unverified []string
	check := func(link string) {
		h := hostOf(link)
		if h == "" || !backed(h, known) {
			unverified = append(unverified, link)
		}
	}
	for _, c := range set.Courses {
		check(c.Link)
	}
	for _, o := range set.Opportunities {
		check(o.Link)
	}
	return unverified
}

func backed(host string, known map[string]struct{}) bool {
	for h := range known {
		if host == h || strings.HasSuffix(host, "."+h) || strings.HasSuffix(h, "."+host) {
			return true
		}
	}
	return false
}

func hostOf(raw string) string {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return ""
	}
	return normalizeHost(u.Hostname())
}

func normalizeHost(h string) string {
	h = strings.ToLower(strings.TrimSpace(h))
	return strings.TrimPrefix(h, "www.")
}
