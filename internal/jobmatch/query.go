package jobmatch

import (
	"fmt"
	"regexp"
	"strings"
)

var (
	projectPattern = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)
	namePattern    = regexp.MustCompile(`^[A-Za-z0-9_]+$`)
)

// Param is a named query parameter. Values are strings except the int64 limit.
type Param struct {
	Name  string
	Value any
}

// Query is an immutable SQL text plus its bound parameters. User values only ever
// appear in the parameters.
type Query struct {
	sql    string
	params []Param
}

// SQL returns the statement text.
func (q Query) SQL() string { return q.sql }

// Params returns a copy of the bound parameters.
func (q Query) Params() []Param {
	out := make([]Param, len(q.params))
	copy(out, q.params)
	return out
}

// Param returns the value bound to name.
func (q Query) Param(name string) (any, bool) {
	for _, p := range q.params {
		if p.Name == name {
			return p.Value, true
		}
	}
	return nil, false
}

// Table names a fully qualified job-postings table.
type Table struct {
	Project string
	Dataset string
	Name    string
}

// Configured reports whether every part of the name is set.
func (t Table) Configured() bool {
	return t.Project != "" && t.Dataset != "" && t.Name != ""
}

// Validate checks each identifier against the characters BigQuery allows unquoted.
func (t Table) Validate() error {
	if !projectPattern.MatchString(t.Project) {
		return fmt.Errorf("invalid project id %q", t.Project)
	}
	if !namePattern.MatchString(t.Dataset) {
		return fmt.Errorf("invalid dataset %q", t.Dataset)
	}
	if !namePattern.MatchString(t.Name) {
		return fmt.Errorf("invalid table %q", t.Name)
	}
	return nil
}

func (t Table) quoted() string {
	return "`" + t.Project + "." + t.Dataset + "." + t.Name + "`"
}

// Builder renders job searches against one validated table.
type Builder struct {
	table    Table
	maxLimit int
}

// NewBuilder validates table once so Build never sees an unchecked identifier.
func NewBuilder(table Table, maxLimit int) (*Builder, error) {
	if err := table.Validate(); err != nil {
		return nil, err
	}
	if maxLimit <= 0 {
		maxLimit = DefaultMaxLimit
	}
	return &Builder{table: table, maxLimit: maxLimit}, nil
}

// Build renders the filter. Clauses present are ANDed; skills are ORed within their clause.
func (b *Builder) Build(f Filter) Query {
	n := normalize(f, b.maxLimit)

	var (
		clauses []string
		params  []Param
	)
	if len(n.skills) > 0 {
		ors := make([]string, len(n.skills))
		for i, s := range n.skills {
			name := fmt.Sprintf("skill%d", i)
			ors[i] = fmt.Sprintf("REGEXP_CONTAINS(LOWER(skills), @%s)", name)
			params = append(params, Param{Name: name, Value: pattern(s)})
		}
		clauses = append(clauses, "("+strings.Join(ors, " OR ")+")")
	}
	if n.location != "" {
		clauses = append(clauses, "REGEXP_CONTAINS(LOWER(location), @loc)")
		params = append(params, Param{Name: "loc", Value: pattern(n.location)})
	}
	if n.jobTitle != "" {
		clauses = append(clauses, "REGEXP_CONTAINS(LOWER(job_title), @title)")
		params = append(params, Param{Name: "title", Value: pattern(n.jobTitle)})
	}
	params = append(params, Param{Name: "limit", Value: int64(n.limit)})

	var sb strings.Builder
	sb.WriteString("SELECT job_title, company, location, skills, salary_range, qualifications, work_type\n")
	sb.WriteString("FROM ")
	sb.WriteString(b.table.quoted())
	sb.WriteString("\n")
	if len(clauses) > 0 {
		sb.WriteString("WHERE ")
		sb.WriteString(strings.Join(clauses, " AND "))
		sb.WriteString("\n")
	}
	sb.WriteString("LIMIT @limit")

	return Query{sql: sb.String(), params: params}
}
