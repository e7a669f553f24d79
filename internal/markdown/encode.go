package markdown

import (
	"fmt"
	"strings"

	"skillmatch/internal/types"
)

// Encode renders a profile header plus a resume into canonical markdown,
// with sections in fixed order separated by horizontal rules. A section
// with no content is omitted entirely, heading included. Encode never
// fails; an empty document yields an empty string.
func Encode(profile types.Profile, resume types.ResumeDocument, h Headings) string {
	var blocks []string

	if header := encodeHeader(profile); header != "" {
		blocks = append(blocks, header)
	}
	if strings.TrimSpace(resume.Summary) != "" {
		blocks = append(blocks, h.Summary+"\n\n"+strings.TrimSpace(resume.Summary))
	}
	if skills := encodeSkills(resume.HardSkills, h); skills != "" {
		blocks = append(blocks, skills)
	}
	if experience := encodeExperience(resume.ProfessionalExperience, h); experience != "" {
		blocks = append(blocks, experience)
	}
	if education := encodeEducation(resume.Education, h); education != "" {
		blocks = append(blocks, education)
	}
	if projects := encodeProjects(resume.Projects, h); projects != "" {
		blocks = append(blocks, projects)
	}

	if len(blocks) == 0 {
		return ""
	}
	return strings.Join(blocks, "\n\n---\n\n") + "\n"
}

func encodeHeader(profile types.Profile) string {
	if strings.TrimSpace(profile.Name) == "" {
		return ""
	}

	var contacts []string
	for _, c := range []string{profile.Location, profile.Phone, profile.Email} {
		if strings.TrimSpace(c) != "" {
			contacts = append(contacts, strings.TrimSpace(c))
		}
	}
	if profile.LinkedIn != "" {
		contacts = append(contacts, fmt.Sprintf("[LinkedIn](%s)", profile.LinkedIn))
	}
	if profile.GitHub != "" {
		contacts = append(contacts, fmt.Sprintf("[GitHub](%s)", profile.GitHub))
	}

	header := "# " + strings.TrimSpace(profile.Name)
	if len(contacts) > 0 {
		header += "\n\n" + strings.Join(contacts, " | ")
	}
	return header
}

func encodeSkills(skills []string, h Headings) string {
	var bullets []string
	for _, s := range skills {
		if strings.TrimSpace(s) != "" {
			bullets = append(bullets, "- "+strings.TrimSpace(s))
		}
	}
	if len(bullets) == 0 {
		return ""
	}
	return h.HardSkills + "\n\n" + strings.Join(bullets, "\n")
}

func encodeExperience(entries []types.ExperienceEntry, h Headings) string {
	var parts []string
	for _, e := range entries {
		if e.Title == "" || e.Company == "" || e.Dates == "" {
			continue
		}
		block := fmt.Sprintf("### %s\n\n**%s** | *%s*", e.Title, e.Company, e.Dates)
		if bullets := encodeBullets(e.Details); bullets != "" {
			block += "\n\n" + bullets
		}
		parts = append(parts, block)
	}
	if len(parts) == 0 {
		return ""
	}
	return h.ProfessionalExperience + "\n\n" + strings.Join(parts, "\n\n")
}

func encodeEducation(entries []types.EducationEntry, h Headings) string {
	var parts []string
	for _, e := range entries {
		if e.Degree == "" || e.School == "" || e.Dates == "" {
			continue
		}
		parts = append(parts, fmt.Sprintf("### %s\n\n**%s** | *%s*", e.Degree, e.School, e.Dates))
	}
	if len(parts) == 0 {
		return ""
	}
	return h.Education + "\n\n" + strings.Join(parts, "\n\n")
}

func encodeProjects(entries []types.ProjectEntry, h Headings) string {
	var parts []string
	for _, e := range entries {
		if e.Title == "" || e.Link == "" {
			continue
		}
		block := fmt.Sprintf("### [%s](%s)", e.Title, e.Link)
		if bullets := encodeBullets(e.Details); bullets != "" {
			block += "\n\n" + bullets
		}
		parts = append(parts, block)
	}
	if len(parts) == 0 {
		return ""
	}
	return h.Projects + "\n\n" + strings.Join(parts, "\n\n")
}

func encodeBullets(items []string) string {
	var bullets []string
	for _, d := range items {
		if strings.TrimSpace(d) != "" {
			bullets = append(bullets, "- "+strings.TrimSpace(d))
		}
	}
	return strings.Join(bullets, "\n")
}
