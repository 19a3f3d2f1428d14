package recommendations

import "sort"

var details = map[string][]Detail{
	"certifications": {
		{Name: "AWS Certified Cloud Practitioner", Provider: "Amazon Web Services", Description: "Entry-level cloud concepts, billing and core services.", Link: "https://aws.amazon.com/certification/certified-cloud-practitioner/"},
		{Name: "Google Associate Cloud Engineer", Provider: "Google Cloud", Description: "Deploying and operating workloads on Google Cloud.", Link: "https://cloud.google.com/learn/certification/cloud-engineer"},
		{Name: "Certified Kubernetes Administrator", Provider: "CNCF", Description: "Hands-on cluster administration exam.", Link: "https://www.cncf.io/training/certification/cka/"},
		{Name: "Google Data Analytics Certificate", Provider: "Coursera", Description: "Spreadsheets, SQL, R and Tableau for junior analysts.", Link: "https://www.coursera.org/professional-certificates/google-data-analytics"},
		{Name: "PMP", Provider: "PMI", Description: "Project management practices for experienced leads.", Link: "https://www.pmi.org/certifications/project-management-pmp"},
	},
	"opportunities": {
		{Name: "Google Summer of Code", Description: "Paid, mentored open-source contributions for newcomers.", Link: "https://summerofcode.withgoogle.com/"},
		{Name: "Outreachy", Description: "Remote internships in open source for underrepresented groups.", Link: "https://www.outreachy.org/"},
		{Name: "Kaggle competitions", Description: "Public data-science problems with leaderboards.", Link: "https://www.kaggle.com/competitions"},
		{Name: "Major League Hacking", Description: "Student hackathons and fellowship programs.", Link: "https://mlh.io/"},
		{Name: "Hacktoberfest", Description: "Month-long open-source contribution event.", Link: "https://hacktoberfest.com/"},
	},
	"skills": {
		{Name: "SQL", Description: "Querying and modelling relational data."},
		{Name: "Cloud fundamentals", Description: "Compute, storage and networking on a major provider."},
		{Name: "Version control with Git", Description: "Branching, reviews and collaborative workflows."},
		{Name: "Data visualisation", Description: "Turning analysis into charts stakeholders can act on."},
		{Name: "Communication", Description: "Writing design notes and presenting results clearly."},
	},
}

// Details returns the curated list for typ and whether typ is known.
func Details(typ string) ([]Detail, bool) {
	items, ok := details[typ]
	if !ok {
		return nil, false
	}
	out := make([]Detail, len(items))
	copy(out, items)
	return out, true
}

// Types lists the known detail types in sorted order.
func Types() []string {
	out := make([]string, 0, len(details))
	for k := range details {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
