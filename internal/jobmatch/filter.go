package jobmatch

import (
	"regexp"
	"strings"
)

const (
	DefaultLimit    = 10
	DefaultMaxLimit = 100
)

// Filter narrows a job search. Empty fields do not constrain the result.
type Filter struct {
	Skills   []string `json:"skills"`
	Location string   `json:"location"`
	JobTitle string   `json:"jobTitle"`
	Limit    int      `json:"limit"`
}

// normalized is a Filter after trimming, lower-casing and de-duplication.
type normalized struct {
	skills   []string
	location string
	jobTitle string
	limit    int
}

// normalize trims and lower-cases every value, drops empty skills and keeps the first
// occurrence of each skill. A limit <= 0 becomes DefaultLimit; larger limits are capped at max.
func normalize(f Filter, max int) normalized {
	if max <= 0 {
		max = DefaultMaxLimit
	}
	out := normalized{
		location: normalizeValue(f.Location),
		jobTitle: normalizeValue(f.JobTitle),
		limit:    f.Limit,
	}
	seen := make(map[string]struct{}, len(f.Skills))
	for _, s := range f.Skills {
		v := normalizeValue(s)
		if v == "" {
			continue
		}
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out.skills = append(out.skills, v)
	}
	if out.limit <= 0 {
		out.limit = DefaultLimit
	}
	if out.limit > max {
		out.limit = max
	}
	return out
}

func normalizeValue(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// pattern turns a normalized value into a literal-substring regular expression.
func pattern(v string) string {
	return regexp.QuoteMeta(v)
}
