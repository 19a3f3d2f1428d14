package recommendations

// ActionItem is a deterministic next step derived from an analysis result.
type ActionItem struct {
	ID       string `json:"id"`
	Category string `json:"category"`
	Priority string `json:"priority"`
	Title    string `json:"title"`
	Why      string `json:"why"`
	Action   string `json:"action"`
	Order    int    `json:"order"`
}

// Input is the slice of an analysis result the engine needs.
type Input struct {
	ResumeScore    int
	CareerGoal     string
	MissingSkills  []string
	Certifications []string
	Opportunities  []string
}

// Detail is one entry of the curated recommendation catalog.
type Detail struct {
	Name        string `json:"name"`
	Provider    string `json:"provider,omitempty"`
	Description string `json:"description"`
	Link        string `json:"link,omitempty"`
}

const (
	CategorySkills        = "SKILLS"
	CategoryCertification = "CERTIFICATION"
	CategoryPractice      = "PRACTICE"

	maxActionItems = 10
)
