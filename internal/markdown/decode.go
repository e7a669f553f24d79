package markdown

import (
	"strings"

	"skillmatch/internal/types"
)

// Decode parses resume markdown back into a structured document. The
// parse is lenient and line-based: recognized H2 headings open sections,
// unrecognized ones close the current section and drop what follows, and
// nothing ever fails. Callers deciding whether the result is usable go
// through IsResumeEmpty.
func Decode(md string) types.ResumeDocument {
	var doc types.ResumeDocument
	var summaryLines []string

	cur := sectionNone
	awaitingMeta := false

	for _, line := range strings.Split(md, "\n") {
		text := strings.TrimSpace(line)
		switch {
		case text == "" || text == "---":
			continue

		case strings.HasPrefix(text, "### "):
			heading := strings.TrimSpace(strings.TrimPrefix(text, "### "))
			awaitingMeta = false
			switch cur {
			case sectionExperience:
				doc.ProfessionalExperience = append(doc.ProfessionalExperience,
					types.ExperienceEntry{Title: heading})
				awaitingMeta = true
			case sectionEducation:
				doc.Education = append(doc.Education,
					types.EducationEntry{Degree: heading})
				awaitingMeta = true
			case sectionProjects:
				entry := types.ProjectEntry{Title: heading}
				if title, link, ok := parseMarkdownLink(heading); ok {
					entry.Title, entry.Link = title, link
				}
				doc.Projects = append(doc.Projects, entry)
			}

		case strings.HasPrefix(text, "## "):
			cur = detectSection(strings.TrimPrefix(text, "## "))
			awaitingMeta = false

		case strings.HasPrefix(text, "# "):
			doc.Name = strings.TrimSpace(strings.TrimPrefix(text, "# "))

		case strings.HasPrefix(text, "- ") || strings.HasPrefix(text, "* "):
			item := strings.TrimSpace(text[2:])
			switch cur {
			case sectionHardSkills:
				// A single bullet may carry several comma-separated
				// skills; flatten them all into one ordered list.
				for _, skill := range strings.Split(item, ",") {
					if s := strings.TrimSpace(skill); s != "" {
						doc.HardSkills = append(doc.HardSkills, s)
					}
				}
			case sectionExperience:
				if n := len(doc.ProfessionalExperience); n > 0 {
					doc.ProfessionalExperience[n-1].Details =
						append(doc.ProfessionalExperience[n-1].Details, item)
				}
				awaitingMeta = false
			case sectionProjects:
				if n := len(doc.Projects); n > 0 {
					doc.Projects[n-1].Details = append(doc.Projects[n-1].Details, item)
				}
			}

		default:
			switch cur {
			case sectionSummary:
				summaryLines = append(summaryLines, text)
			case sectionExperience:
				if awaitingMeta {
					if n := len(doc.ProfessionalExperience); n > 0 {
						company, dates := splitMetaLine(text)
						doc.ProfessionalExperience[n-1].Company = company
						doc.ProfessionalExperience[n-1].Dates = dates
					}
					awaitingMeta = false
				}
			case sectionEducation:
				if awaitingMeta {
					if n := len(doc.Education); n > 0 {
						school, dates := splitMetaLine(text)
						doc.Education[n-1].School = school
						doc.Education[n-1].Dates = dates
					}
					awaitingMeta = false
				}
			}
		}
	}

	doc.Summary = strings.Join(summaryLines, "\n")
	return doc
}

// IsResumeEmpty reports whether a decoded document parsed to nothing
// useful: blank summary, no projects, and no professional experience.
// Hard skills and education deliberately do not count toward emptiness.
func IsResumeEmpty(doc types.ResumeDocument) bool {
	return strings.TrimSpace(doc.Summary) == "" &&
		len(doc.Projects) == 0 &&
		len(doc.ProfessionalExperience) == 0
}

// splitMetaLine splits the paragraph under an entry heading, e.g.
// "**Acme** | *2019 - 2022*", into its two halves with markdown emphasis
// stripped. A line without a separator yields an empty second half.
func splitMetaLine(text string) (string, string) {
	parts := strings.SplitN(text, "|", 2)
	first := stripEmphasis(parts[0])
	if len(parts) < 2 {
		return first, ""
	}
	return first, stripEmphasis(parts[1])
}

func stripEmphasis(s string) string {
	return strings.TrimSpace(strings.Trim(strings.TrimSpace(s), "*"))
}

// parseMarkdownLink extracts text and URL from an inline markdown link
// like "[title](https://example.com)".
func parseMarkdownLink(s string) (text, url string, ok bool) {
	if !strings.HasPrefix(s, "[") || !strings.HasSuffix(s, ")") {
		return "", "", false
	}
	sep := strings.Index(s, "](")
	if sep < 0 {
		return "", "", false
	}
	return s[1:sep], s[sep+2 : len(s)-1], true
}
