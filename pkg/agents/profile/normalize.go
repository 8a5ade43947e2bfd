package profile

import (
	"strings"
	"unicode"

	"github.com/dukex/resumeflow/pkg/models"
)

var aliases = map[string]string{
	"python":                "Python",
	"py":                    "Python",
	"pytorch":               "PyTorch",
	"torch":                 "PyTorch",
	"tensorflow":            "TensorFlow",
	"tf":                    "TensorFlow",
	"keras":                 "Keras",
	"scikit-learn":          "scikit-learn",
	"sklearn":               "scikit-learn",
	"pandas":                "pandas",
	"numpy":                 "NumPy",
	"jupyter":               "Jupyter",
	"llm":                   "LLMs",
	"llms":                  "LLMs",
	"large language models": "LLMs",
	"langchain":             "LangChain",
	"openai":                "OpenAI",
	"hugging face":          "Hugging Face",
	"huggingface":           "Hugging Face",
	"react":                 "React",
	"react.js":              "React",
	"reactjs":               "React",
	"vue":                   "Vue.js",
	"vue.js":                "Vue.js",
	"vuejs":                 "Vue.js",
	"angular":               "Angular",
	"node":                  "Node.js",
	"nodejs":                "Node.js",
	"node.js":               "Node.js",
	"express":               "Express.js",
	"expressjs":             "Express.js",
	"django":                "Django",
	"flask":                 "Flask",
	"fastapi":               "FastAPI",
	"postgresql":            "PostgreSQL",
	"postgres":              "PostgreSQL",
	"mysql":                 "MySQL",
	"mongodb":               "MongoDB",
	"mongo":                 "MongoDB",
	"redis":                 "Redis",
	"sqlite":                "SQLite",
	"aws":                   "AWS",
	"amazon web services":   "AWS",
	"azure":                 "Azure",
	"gcp":                   "GCP",
	"google cloud":          "GCP",
	"docker":                "Docker",
	"kubernetes":            "Kubernetes",
	"k8s":                   "Kubernetes",
	"jenkins":               "Jenkins",
	"git":                   "Git",
	"github":                "GitHub",
	"gitlab":                "GitLab",
	"ci/cd":                 "CI/CD",
	"cicd":                  "CI/CD",
	"terraform":             "Terraform",
	"ansible":               "Ansible",
	"kafka":                 "Kafka",
	"javascript":            "JavaScript",
	"js":                    "JavaScript",
	"typescript":            "TypeScript",
	"ts":                    "TypeScript",
	"java":                  "Java",
	"c++":                   "C++",
	"cpp":                   "C++",
	"c#":                    "C#",
	"csharp":                "C#",
	"go":                    "Go",
	"golang":                "Go",
	"rust":                  "Rust",
	"ruby":                  "Ruby",
	"php":                   "PHP",
	"swift":                 "Swift",
	"kotlin":                "Kotlin",
	"scala":                 "Scala",
	"linux":                 "Linux",
	"bash":                  "Bash",
	"sql":                   "SQL",
}

var categories = map[string]models.SkillCategory{}

func init() {
	groups := map[models.SkillCategory][]string{
		models.SkillCategoryLanguage: {
			"Python", "JavaScript", "TypeScript", "Java", "C++", "C#", "Go",
			"Rust", "Ruby", "PHP", "Swift", "Kotlin", "Scala", "SQL", "Bash",
		},
		models.SkillCategoryFramework: {
			"React", "Vue.js", "Angular", "Django", "Flask", "FastAPI",
			"Express.js", "Node.js", "PyTorch", "TensorFlow", "Keras", "LangChain",
		},
		models.SkillCategoryDatabase: {"PostgreSQL", "MySQL", "MongoDB", "Redis", "SQLite"},
		models.SkillCategoryCloud:    {"AWS", "Azure", "GCP"},
		models.SkillCategoryTool: {
			"Docker", "Kubernetes", "Jenkins", "Git", "GitHub", "GitLab",
			"Terraform", "Ansible", "CI/CD", "Kafka", "Linux", "Jupyter",
		},
	}

	for category, names := range groups {
		for _, name := range names {
			categories[name] = category
		}
	}
}

// Normalize maps a technology alias to its canonical name and category.
// Unknown all-lowercase names are title cased; others are kept as written.
func Normalize(name string) (string, models.SkillCategory) {
	cleaned := strings.TrimSpace(name)
	if cleaned == "" {
		return "", ""
	}

	if canonical, ok := aliases[strings.ToLower(cleaned)]; ok {
		return canonical, categories[canonical]
	}

	if cleaned == strings.ToLower(cleaned) {
		cleaned = titleCase(cleaned)
	}

	return cleaned, categories[cleaned]
}

// NormalizeProfile canonicalizes technology and skill names in place and
// drops duplicates, keeping first-seen order.
func NormalizeProfile(p *models.Profile) {
	for i := range p.Experiences {
		p.Experiences[i].Technologies = normalizeNames(p.Experiences[i].Technologies)
	}

	for i := range p.Projects {
		p.Projects[i].Technologies = normalizeNames(p.Projects[i].Technologies)
	}

	seen := make(map[string]struct{}, len(p.Skills))
	skills := make([]models.Skill, 0, len(p.Skills))

	for _, skill := range p.Skills {
		name, category := Normalize(skill.Name)
		if name == "" {
			continue
		}

		key := strings.ToLower(name)
		if _, dup := seen[key]; dup {
			continue
		}

		seen[key] = struct{}{}

		if skill.Category == "" {
			skill.Category = category
		}

		skill.Name = name
		skills = append(skills, skill)
	}

	p.Skills = skills
}

func normalizeNames(names []string) []string {
	if len(names) == 0 {
		return names
	}

	seen := make(map[string]struct{}, len(names))
	out := make([]string, 0, len(names))

	for _, n := range names {
		name, _ := Normalize(n)
		if name == "" {
			continue
		}

		key := strings.ToLower(name)
		if _, dup := seen[key]; dup {
			continue
		}

		seen[key] = struct{}{}
		out = append(out, name)
	}

	return out
}

func titleCase(s string) string {
	runes := []rune(s)
	upper := true

	for i, r := range runes {
		if upper && unicode.IsLetter(r) {
			runes[i] = unicode.ToUpper(r)
		}

		upper = r == ' ' || r == '-'
	}

	return string(runes)
}
