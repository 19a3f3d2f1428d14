package recommendations

import (
	"sort"
	"strings"
	"unicode"
)

// GenerateActionItems builds an ordered, de-duplicated plan from an analysis.
// The same input always yields the same plan.
func GenerateActionItems(in Input) []ActionItem {
	candidates := make([]ActionItem, 0, 16)
	candidates = append(candidates, fromMissingSkills(in)...)
	candidates = append(candidates, fromCertifications(in.Certifications)...)
	candidates = append(candidates, fromOpportunities(in.Opportunities, in.CareerGoal)...)

	deduped := dedupe(candidates)
	sortItems(deduped)
	if len(deduped) > maxActionItems {
		deduped = deduped[:maxActionItems]
	}
	for i := range deduped {
		deduped[i].Order = i + 1
	}
	return deduped
}

func priorityRank(value string) int {
	switch value {
	case "high":
		return 3
	case "medium":
		return 2
	default:
		return 1
	}
}

func categoryRank(value string) int {
	switch value {
	case CategorySkills:
		return 3
	case CategoryCertification:
		return 2
	case CategoryPractice:
		return 1
	default:
		return 0
	}
}

func slugify(input string) string {
	var b strings.Builder
	lastDash := false
	for _, r := range strings.ToLower(strings.TrimSpace(input)) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
			lastDash = false
			continue
		}
		if !lastDash {
			b.WriteByte('-')
			lastDash = true
		}
	}
	out := strings.Trim(b.String(), "-")
	if out == "" {
		return "item"
	}
	return out
}

func dedupe(items []ActionItem) []ActionItem {
	seen := make(map[string]struct{}, len(items))
	out := make([]ActionItem, 0, len(items))
	for _, item := range items {
		if _, ok := seen[item.ID]; ok {
			continue
		}
		seen[item.ID] = struct{}{}
		out = append(out, item)
	}
	return out
}

// sortItems orders by priority, then category; ties keep the analysis order.
func sortItems(items []ActionItem) {
	sort.SliceStable(items, func(i, j int) bool {
		a, b := items[i], items[j]
		if priorityRank(a.Priority) != priorityRank(b.Priority) {
			return priorityRank(a.Priority) > priorityRank(b.Priority)
		}
		return categoryRank(a.Category) > categoryRank(b.Category)
	})
}
