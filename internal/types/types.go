package types

import (
	"encoding/json"
	"strings"
)

// ResumeDocument is the structured resume entity the matching engine and
// the markdown codec operate on. All fields are optional; consumers must
// tolerate partially filled documents.
type ResumeDocument struct {
	Name                   string            `json:"name,omitempty"`
	Summary                string            `json:"summary,omitempty"`
	HardSkills             []string          `json:"hard_skills,omitempty"`
	ProfessionalExperience []ExperienceEntry `json:"professional_experience,omitempty"`
	Education              []EducationEntry  `json:"education,omitempty"`
	Projects               []ProjectEntry    `json:"projects,omitempty"`
}

// ExperienceEntry is one professional experience item.
type ExperienceEntry struct {
	Title   string   `json:"title,omitempty"`
	Company string   `json:"company,omitempty"`
	Dates   string   `json:"dates,omitempty"` // free text, e.g. "2019 - 2022"
	Details []string `json:"details,omitempty"`
}

// EducationEntry is one education item. Education entries carry no detail
// bullets.
type EducationEntry struct {
	Degree string `json:"degree,omitempty"`
	School string `json:"school,omitempty"`
	Dates  string `json:"dates,omitempty"`
}

// ProjectEntry is one project item.
type ProjectEntry struct {
	Title   string   `json:"title,omitempty"`
	Link    string   `json:"link,omitempty"`
	Details []string `json:"details,omitempty"`
}

// Profile carries the contact header rendered above the resume body plus
// the keyword preferences supplied by the profile service.
type Profile struct {
	Name             string   `json:"name,omitempty"`
	Location         string   `json:"location,omitempty"`
	Phone            string   `json:"phone,omitempty"`
	Email            string   `json:"email,omitempty"`
	LinkedIn         string   `json:"linkedin,omitempty"`
	GitHub           string   `json:"github,omitempty"`
	PositiveKeywords []string `json:"positiveKeywords,omitempty"`
	NegativeKeywords []string `json:"negativeKeywords,omitempty"`
}

// KeywordList is a job posting's skill list as found in the wild. Listing
// services deliver it in three shapes: a proper JSON array, a JSON-encoded
// array inside a string, or a plain comma-separated string. The shape is
// resolved once here, at the data boundary, so the rest of the code only
// ever sees []string.
type KeywordList []string

// UnmarshalJSON accepts any of the three keyword shapes. Malformed input
// never produces an error; it degrades to an empty list.
func (k *KeywordList) UnmarshalJSON(data []byte) error {
	var arr []string
	if err := json.Unmarshal(data, &arr); err == nil {
		*k = arr
		return nil
	}

	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*k = ParseKeywords(s)
		return nil
	}

	*k = nil
	return nil
}

// ParseKeywords resolves the string shapes of a keyword field: a
// JSON-encoded array is parsed and used when the parse succeeds, anything
// else is split on commas with empties dropped. It never fails.
func ParseKeywords(s string) []string {
	trimmed := strings.TrimSpace(s)
	if trimmed == "" {
		return nil
	}

	var arr []string
	if err := json.Unmarshal([]byte(trimmed), &arr); err == nil {
		return arr
	}

	var out []string
	for _, part := range strings.Split(trimmed, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// JobPosting is a job record as supplied by the job listing service.
type JobPosting struct {
	URN              string      `json:"urn,omitempty"`
	Title            string      `json:"title,omitempty"`
	Company          string      `json:"company,omitempty"`
	Keywords         KeywordList `json:"keywords,omitempty"`
	Responsibilities []string    `json:"responsibilities,omitempty"`
	Qualifications   []string    `json:"qualifications,omitempty"`
	Description      string      `json:"description,omitempty"`
	Language         string      `json:"language,omitempty"` // heading locale hint, "en" or "pt"
}

// IsComplete reports whether the posting carries enough structure to be
// scored. Incomplete postings are dropped from match results, never
// scored zero.
func (j *JobPosting) IsComplete() bool {
	return len(j.Responsibilities) > 0 && len(j.Qualifications) > 0 && len(j.Keywords) > 0
}

// MatchResult is one scored job. Results are ephemeral: built fresh per
// matching run and owned by the caller.
type MatchResult struct {
	Job           JobPosting `json:"job"`
	MatchScore    float64    `json:"matchScore"`    // 0-100
	MatchedSkills []string   `json:"matchedSkills"` // original job-side display strings
}

// TailorResumeInput represents the input for tailoring a resume
type TailorResumeInput struct {
	ResumeMarkdown string `json:"resumeMarkdown"`
	JobDescription string `json:"jobDescription"`
}

// TailorResumeOutput represents the output from tailoring a resume. The
// tailored markdown is decoded and emptiness-checked by the caller before
// it is accepted.
type TailorResumeOutput struct {
	TailoredMarkdown string `json:"tailoredMarkdown"`
	Notes            string `json:"notes,omitempty"`
}

// SemanticScoreInput represents the payload sent to the external scorer.
type SemanticScoreInput struct {
	JobText    string `json:"job_text"`
	ResumeText string `json:"resume_text"`
}

// SemanticScoreOutput represents the external scorer's response.
type SemanticScoreOutput struct {
	MatchScore float64 `json:"match_score"` // 0-1
}

// RenderedResume wraps rendered resume markdown for output formatting.
type RenderedResume struct {
	Markdown string `json:"markdown"`
}
