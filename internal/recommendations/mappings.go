package recommendations

import (
	"fmt"
	"strings"
)

func fromMissingSkills(in Input) []ActionItem {
	goal := strings.TrimSpace(in.CareerGoal)
	if goal == "" {
		goal = "your target role"
	}
	out := make([]ActionItem, 0, len(in.MissingSkills))
	for i, skill := range in.MissingSkills {
		skill = strings.TrimSpace(skill)
		if skill == "" {
			continue
		}
		priority := "medium"
		if i < 3 || in.ResumeScore < 50 {
			priority = "high"
		}
		out = append(out, ActionItem{
			ID:       "SKILL_" + slugify(skill),
			Category: CategorySkills,
			Priority: priority,
			Title:    "Learn " + skill,
			Why:      fmt.Sprintf("%s is expected for %s and is not shown on your resume.", skill, goal),
			Action:   fmt.Sprintf("Complete a course or project that uses %s, then add it to your Skills and Experience sections.", skill),
		})
	}
	return out
}

func fromCertifications(certs []string) []ActionItem {
	out := make([]ActionItem, 0, len(certs))
	for _, cert := range certs {
		cert = strings.TrimSpace(cert)
		if cert == "" {
			continue
		}
		out = append(out, ActionItem{
			ID:       "CERT_" + slugify(cert),
			Category: CategoryCertification,
			Priority: "medium",
			Title:    "Earn " + cert,
			Why:      "A recognised certification is verifiable evidence for recruiters.",
			Action:   fmt.Sprintf("Schedule the %s exam and list it under Certifications once passed.", cert),
		})
	}
	return out
}

func fromOpportunities(opps []string, goal string) []ActionItem {
	out := make([]ActionItem, 0, len(opps))
	for _, opp := range opps {
		opp = strings.TrimSpace(opp)
		if opp == "" {
			continue
		}
		why := "Hands-on work closes gaps faster than coursework alone."
		if g := strings.TrimSpace(goal); g != "" {
			why = fmt.Sprintf("Hands-on work shows you can already do parts of the %s role.", g)
		}
		out = append(out, ActionItem{
			ID:       "PRACTICE_" + slugify(opp),
			Category: CategoryPractice,
			Priority: "low",
			Title:    opp,
			Why:      why,
			Action:   "Add the result to your resume with a measurable outcome.",
		})
	}
	return out
}
