package markdown

import "strings"

// Headings is the locale table of literal section headings emitted by
// Encode. Each value carries its markdown level and emoji so locales can
// restyle sections without touching the codec.
type Headings struct {
	Summary                string
	HardSkills             string
	ProfessionalExperience string
	Education              string
	Projects               string
}

var headingsByLocale = map[string]Headings{
	"en": {
		Summary:                "## 📝 Summary",
		HardSkills:             "## 🛠️ Hard Skills",
		ProfessionalExperience: "## 💼 Professional Experience",
		Education:              "## 🎓 Education",
		Projects:               "## 🚀 Projects",
	},
	"pt": {
		Summary:                "## 📝 Resumo",
		HardSkills:             "## 🛠️ Habilidades",
		ProfessionalExperience: "## 💼 Experiência Profissional",
		Education:              "## 🎓 Educação",
		Projects:               "## 🚀 Projetos",
	},
}

// HeadingsFor returns the heading table for a locale, falling back to
// English for anything unrecognized. Locale matching ignores case and
// region subtags ("pt-BR" selects "pt").
func HeadingsFor(locale string) Headings {
	key := strings.ToLower(strings.TrimSpace(locale))
	if i := strings.IndexAny(key, "-_"); i > 0 {
		key = key[:i]
	}
	if h, ok := headingsByLocale[key]; ok {
		return h
	}
	return headingsByLocale["en"]
}

// section identifies the logical resume section a decoded heading opens.
type section int

const (
	sectionNone section = iota
	sectionSummary
	sectionHardSkills
	sectionExperience
	sectionEducation
	sectionProjects
)

// sectionKeywords drive decode-side heading detection: a heading opens a
// section when it contains any of that section's keywords from either
// locale, case-insensitively.
var sectionKeywords = map[section][]string{
	sectionSummary:    {"summary", "resumo"},
	sectionHardSkills: {"skill", "habilidade"},
	sectionExperience: {"experience", "experiência"},
	sectionEducation:  {"education", "educação", "formação"},
	sectionProjects:   {"project", "projeto"},
}

// detectSection maps an H2 heading to a logical section. Unrecognized
// headings map to sectionNone, which closes the previous section and
// drops the content that follows.
func detectSection(heading string) section {
	lower := strings.ToLower(heading)
	for _, sec := range []section{
		sectionSummary,
		sectionHardSkills,
		sectionExperience,
		sectionEducation,
		sectionProjects,
	} {
		for _, kw := range sectionKeywords[sec] {
			if strings.Contains(lower, kw) {
				return sec
			}
		}
	}
	return sectionNone
}
