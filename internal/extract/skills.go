package extract

import (
	"regexp"
	"sort"
	"strings"

	"github.com/fairyhunter13/ai-recruit-chat/internal/domain"
)

// canonicalSkills maps chat keywords to canonical skill names. Keys are
// matched case-insensitively with word boundaries; several aliases may map to
// the same canonical name.
var canonicalSkills = map[string]string{
	"javascript": "JavaScript",
	"js":         "JavaScript",
	"typescript": "TypeScript",
	"ts":         "TypeScript",
	"react":      "React",
	"react.js":   "React",
	"reactjs":    "React",
	"vue":        "Vue.js",
	"angular":    "Angular",
	"node":       "Node.js",
	"node.js":    "Node.js",
	"nodejs":     "Node.js",
	"python":     "Python",
	"django":     "Django",
	"flask":      "Flask",
	"golang":     "Go",
	"java":       "Java",
	"spring":     "Spring",
	"kotlin":     "Kotlin",
	"swift":      "Swift",
	"ruby":       "Ruby",
	"rails":      "Ruby on Rails",
	"php":        "PHP",
	"c++":        "C++",
	"c#":         "C#",
	".net":       ".NET",
	"rust":       "Rust",
	"sql":        "SQL",
	"postgres":   "PostgreSQL",
	"postgresql": "PostgreSQL",
	"mysql":      "MySQL",
	"mongodb":    "MongoDB",
	"mongo":      "MongoDB",
	"redis":      "Redis",
	"kafka":      "Kafka",
	"graphql":    "GraphQL",
	"docker":     "Docker",
	"kubernetes": "Kubernetes",
	"k8s":        "Kubernetes",
	"terraform":  "Terraform",
	"aws":        "AWS",
	"gcp":        "GCP",
	"azure":      "Azure",
	"linux":      "Linux",
	"git":        "Git",
	"html":       "HTML",
	"css":        "CSS",
}

// Level keyword groups scanned in the window around a skill mention.
var levelKeywords = []struct {
	level domain.SkillLevel
	words []string
}{
	{domain.LevelExpert, []string{"expert", "senior", "lead", "architect"}},
	{domain.LevelAdvanced, []string{"advanced", "proficient", "strong", "extensive"}},
	{domain.LevelIntermediate, []string{"intermediate", "familiar", "comfortable"}},
	{domain.LevelBeginner, []string{"beginner", "basic", "learning", "junior", "new to"}},
}

// Confidence cues around a skill mention.
var (
	skillBoosts = []string{"experience with", "years of", "worked with", "working with", "built", "developed", "using", "used"}
	skillHedges = []string{"interested in", "want to learn", "would like to learn", "hoping to", "planning to learn"}
)

// levelWindow bounds the scan for proficiency words; it is kept tight so a
// level claim about one skill does not bleed into the next mention.
// cueRadius bounds the wider scan for boost/hedge phrasing.
const (
	levelWindow = 25
	cueRadius   = 60
)

type skillMatcher struct {
	re        *regexp.Regexp
	keyword   string
	canonical string
}

// buildSkillMatchers compiles one boundary-safe matcher per alias. \b does
// not work next to '+', '#', or '.', so boundaries are expressed explicitly.
func buildSkillMatchers() []skillMatcher {
	out := make([]skillMatcher, 0, len(canonicalSkills))
	for kw, canonical := range canonicalSkills {
		pat := `(?i)(?:^|[^a-z0-9+#.])` + regexp.QuoteMeta(kw) + `(?:$|[^a-z0-9+#.])`
		out = append(out, skillMatcher{
			re:        regexp.MustCompile(pat),
			keyword:   kw,
			canonical: canonical,
		})
	}
	return out
}

// scanSkills finds skill mentions in text, infers levels from surrounding
// words, and scores per-skill confidence. Output is ordered by first
// appearance so repeated extraction over the same text is deterministic.
func scanSkills(matchers []skillMatcher, text string) []domain.Skill {
	lower := strings.ToLower(text)
	type hit struct {
		at int
		s  domain.Skill
	}
	best := make(map[string]hit)
	for _, m := range matchers {
		loc := m.re.FindStringIndex(lower)
		if loc == nil {
			continue
		}
		s := domain.Skill{
			Name:       m.canonical,
			Level:      inferLevel(window(lower, loc, levelWindow)),
			Confidence: skillConfidence(window(lower, loc, cueRadius)),
		}
		prev, ok := best[m.canonical]
		if !ok || s.Confidence > prev.s.Confidence || (s.Confidence == prev.s.Confidence && loc[0] < prev.at) {
			best[m.canonical] = hit{at: loc[0], s: s}
		}
	}
	hits := make([]hit, 0, len(best))
	for _, h := range best {
		hits = append(hits, h)
	}
	sort.Slice(hits, func(i, j int) bool { return hits[i].at < hits[j].at })
	out := make([]domain.Skill, 0, len(hits))
	for _, h := range hits {
		out = append(out, h.s)
	}
	return out
}

func window(text string, loc []int, radius int) string {
	lo := loc[0] - radius
	if lo < 0 {
		lo = 0
	}
	hi := loc[1] + radius
	if hi > len(text) {
		hi = len(text)
	}
	return text[lo:hi]
}

// inferLevel picks the strongest level word in the window, defaulting to
// Intermediate when nothing disambiguates.
func inferLevel(window string) domain.SkillLevel {
	for _, group := range levelKeywords {
		for _, w := range group.words {
			if strings.Contains(window, w) {
				return group.level
			}
		}
	}
	return domain.LevelIntermediate
}

// skillConfidence scores one mention: 0.6 base, boosted by explicit usage
// cues, penalized by hedging language, clamped to [0,1].
func skillConfidence(window string) float64 {
	conf := 0.6
	for _, b := range skillBoosts {
		if strings.Contains(window, b) {
			conf += 0.15
			break
		}
	}
	for _, h := range skillHedges {
		if strings.Contains(window, h) {
			conf -= 0.3
			break
		}
	}
	if conf < 0 {
		return 0
	}
	if conf > 1 {
		return 1
	}
	return conf
}
