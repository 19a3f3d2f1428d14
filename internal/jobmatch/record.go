package jobmatch

import (
	"fmt"
	"strings"
)

// JobRecord is a read-only projection of one job posting row.
type JobRecord struct {
	JobTitle       string `json:"jobTitle"`
	Company        string `json:"company"`
	Location       string `json:"location"`
	Skills         string `json:"skills"`
	SalaryRange    string `json:"salaryRange"`
	Qualifications string `json:"qualifications"`
	WorkType       string `json:"workType"`
}

func recordFromRow(row map[string]any) JobRecord {
	return JobRecord{
		JobTitle:       stringValue(row["job_title"]),
		Company:        stringValue(row["company"]),
		Location:       stringValue(row["location"]),
		Skills:         stringValue(row["skills"]),
		SalaryRange:    stringValue(row["salary_range"]),
		Qualifications: stringValue(row["qualifications"]),
		WorkType:       stringValue(row["work_type"]),
	}
}

func stringValue(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case []any:
		parts := make([]string, 0, len(t))
		for _, p := range t {
			if s := stringValue(p); s != "" {
				parts = append(parts, s)
			}
		}
		return strings.Join(parts, ", ")
	default:
		return fmt.Sprint(t)
	}
}
