package extract

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/fairyhunter13/ai-recruit-chat/internal/domain"
)

// fieldPattern is one row of the extraction table. Patterns for the same
// field are ordered; the first match wins. Transform applies the captured
// groups to the partial profile and reports whether anything was written.
type fieldPattern struct {
	Field          string
	Re             *regexp.Regexp
	Transform      func(m []string, text string, p *domain.CandidateProfile) bool
	BaseConfidence float64
}

// nameBlocklist rejects capitalized non-names that follow "I'm ...".
var nameBlocklist = map[string]struct{}{
	"a": {}, "an": {}, "the": {}, "not": {}, "sure": {}, "happy": {},
	"glad": {}, "sorry": {}, "just": {}, "really": {}, "very": {},
	"currently": {}, "based": {}, "looking": {}, "interested": {},
	"available": {}, "open": {}, "excited": {}, "here": {}, "new": {},
}

var (
	reName1 = regexp.MustCompile(`(?i)\bmy name is\s+([A-Z][a-zA-Z'-]+(?:\s+[A-Z][a-zA-Z'-]+){0,2})`)
	reName2 = regexp.MustCompile(`\bI'?m\s+([A-Z][a-zA-Z'-]+(?:\s+[A-Z][a-zA-Z'-]+){0,2})`)
	reName3 = regexp.MustCompile(`(?i)\bcall me\s+([A-Z][a-zA-Z'-]+(?:\s+[A-Z][a-zA-Z'-]+){0,2})`)

	reEmail = regexp.MustCompile(`[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}`)
	rePhone = regexp.MustCompile(`\(?(\d{3})\)?[-.\s]?(\d{3})[-.\s]?(\d{4})\b`)

	reExperience = regexp.MustCompile(`(?i)\b(\d{1,2})\+?\s*(years?|yrs?|months?)\s+(?:of\s+)?(?:work\s+|professional\s+|hands-on\s+)?experience`)

	reSalarySym = regexp.MustCompile(`(?i)([$€£])\s?(\d{1,3}(?:,\d{3})*(?:\.\d+)?)\s*(k)?\b`)
	reSalaryK   = regexp.MustCompile(`(?i)\b(\d{2,3})\s?k\b`)

	reLocation = regexp.MustCompile(`(?i)\b(?:i live in|based in|located in|i'?m from|living in)\s+([A-Za-z][A-Za-z .'-]*?)(?:\s+and\b|[.,!?;]|$)`)
	reRelocate = regexp.MustCompile(`(?i)\b(?:willing|open|happy)\s+to\s+relocate\b`)

	reAvailNow   = regexp.MustCompile(`(?i)\b(?:available\s+)?(immediately|asap|right away)\b`)
	reAvailMonth = regexp.MustCompile(`(?i)\b(?:start(?:ing)?|available)\s+next month\b`)
	reAvailWeeks = regexp.MustCompile(`(?i)\bin\s+(\d{1,2})\s+weeks?\b`)
	reNotice     = regexp.MustCompile(`(?i)\b(\d{1,2})\s+weeks?'?\s+notice\b`)

	reEducation = regexp.MustCompile(`(?i)\b(bachelor(?:'s)?|master(?:'s)?|phd|b\.?sc|m\.?sc|mba)\b(?:\s+(?:degree\s+)?(?:of|in)\s+([a-zA-Z ]+?))?(?:\s+(?:from|at)\s+([A-Z][\w .&-]+?))?(?:[.,!?;]|$)`)
)

// currencyFor maps a salary symbol to its 3-letter code.
func currencyFor(sym string) string {
	switch sym {
	case "€":
		return "EUR"
	case "£":
		return "GBP"
	default:
		return "USD"
	}
}

func titleCase(s string) string {
	parts := strings.Fields(strings.ToLower(s))
	for i, p := range parts {
		parts[i] = strings.ToUpper(p[:1]) + p[1:]
	}
	return strings.Join(parts, " ")
}

func validName(candidate string) bool {
	first := strings.ToLower(strings.Fields(candidate)[0])
	_, blocked := nameBlocklist[first]
	return !blocked
}

func transformName(m []string, _ string, p *domain.CandidateProfile) bool {
	if p.Name != "" || !validName(m[1]) {
		return false
	}
	p.Name = titleCase(m[1])
	return true
}

// patternTable is the ordered extraction table. First match wins per field;
// rows for an already-populated field are no-ops via their transforms.
func patternTable() []fieldPattern {
	return []fieldPattern{
		{Field: "name", Re: reName1, BaseConfidence: 0.9, Transform: transformName},
		{Field: "name", Re: reName2, BaseConfidence: 0.7, Transform: transformName},
		{Field: "name", Re: reName3, BaseConfidence: 0.8, Transform: transformName},
		{Field: "email", Re: reEmail, BaseConfidence: 0.95, Transform: func(m []string, _ string, p *domain.CandidateProfile) bool {
			if p.Email != "" {
				return false
			}
			p.Email = strings.ToLower(m[0])
			return true
		}},
		{Field: "phone", Re: rePhone, BaseConfidence: 0.9, Transform: func(m []string, _ string, p *domain.CandidateProfile) bool {
			if p.Phone != "" {
				return false
			}
			p.Phone = "(" + m[1] + ") " + m[2] + "-" + m[3]
			return true
		}},
		{Field: "experience", Re: reExperience, BaseConfidence: 0.8, Transform: func(m []string, _ string, p *domain.CandidateProfile) bool {
			if p.HasExperience() {
				return false
			}
			n, err := strconv.Atoi(m[1])
			if err != nil || n < 0 {
				return false
			}
			if strings.HasPrefix(strings.ToLower(m[2]), "month") {
				if n > 11 {
					p.Experience.Years = n / 12
					n = n % 12
				}
				p.Experience.Months = n
			} else {
				p.Experience.Years = n
			}
			return true
		}},
		{Field: "salary", Re: reSalarySym, BaseConfidence: 0.75, Transform: func(m []string, text string, p *domain.CandidateProfile) bool {
			if p.Salary.Expected > 0 {
				return false
			}
			v, err := strconv.ParseFloat(strings.ReplaceAll(m[2], ",", ""), 64)
			if err != nil || v <= 0 {
				return false
			}
			if strings.EqualFold(m[3], "k") {
				v *= 1000
			}
			p.Salary = domain.SalaryExpectation{
				Expected:   v,
				Currency:   currencyFor(m[1]),
				Negotiable: strings.Contains(strings.ToLower(text), "negotiable"),
			}
			return true
		}},
		{Field: "salary", Re: reSalaryK, BaseConfidence: 0.6, Transform: func(m []string, text string, p *domain.CandidateProfile) bool {
			if p.Salary.Expected > 0 {
				return false
			}
			// Bare "NNk" only counts near compensation language.
			lower := strings.ToLower(text)
			if !strings.Contains(lower, "salary") && !strings.Contains(lower, "compensation") &&
				!strings.Contains(lower, "expecting") && !strings.Contains(lower, "looking for") {
				return false
			}
			v, err := strconv.ParseFloat(m[1], 64)
			if err != nil || v <= 0 {
				return false
			}
			p.Salary = domain.SalaryExpectation{
				Expected:   v * 1000,
				Currency:   "USD",
				Negotiable: strings.Contains(lower, "negotiable"),
			}
			return true
		}},
		{Field: "location", Re: reLocation, BaseConfidence: 0.8, Transform: func(m []string, _ string, p *domain.CandidateProfile) bool {
			if p.Location.Current != "" {
				return false
			}
			p.Location.Current = titleCase(strings.TrimSpace(m[1]))
			return true
		}},
		{Field: "location", Re: reRelocate, BaseConfidence: 0.7, Transform: func(_ []string, _ string, p *domain.CandidateProfile) bool {
			if p.Location.WillingToRelocate {
				return false
			}
			p.Location.WillingToRelocate = true
			return true
		}},
		{Field: "availability", Re: reAvailNow, BaseConfidence: 0.8, Transform: func(_ []string, _ string, p *domain.CandidateProfile) bool {
			if p.Availability.StartDate != "" {
				return false
			}
			p.Availability.StartDate = "immediately"
			return true
		}},
		{Field: "availability", Re: reAvailMonth, BaseConfidence: 0.7, Transform: func(_ []string, _ string, p *domain.CandidateProfile) bool {
			if p.Availability.StartDate != "" {
				return false
			}
			p.Availability.StartDate = "next month"
			return true
		}},
		{Field: "availability", Re: reAvailWeeks, BaseConfidence: 0.6, Transform: func(m []string, _ string, p *domain.CandidateProfile) bool {
			if p.Availability.StartDate != "" {
				return false
			}
			p.Availability.StartDate = "in " + m[1] + " weeks"
			return true
		}},
		{Field: "availability", Re: reNotice, BaseConfidence: 0.8, Transform: func(m []string, _ string, p *domain.CandidateProfile) bool {
			if p.Availability.NoticePeriodDays > 0 {
				return false
			}
			n, err := strconv.Atoi(m[1])
			if err != nil {
				return false
			}
			days := n * 7
			if days > 365 {
				days = 365
			}
			p.Availability.NoticePeriodDays = days
			return true
		}},
		{Field: "education", Re: reEducation, BaseConfidence: 0.7, Transform: func(m []string, _ string, p *domain.CandidateProfile) bool {
			if len(p.Education) > 0 {
				return false
			}
			degree := titleCase(m[1])
			if m[2] != "" {
				degree += " in " + titleCase(strings.TrimSpace(m[2]))
			}
			p.Education = append(p.Education, domain.Education{
				Degree:      degree,
				Institution: strings.TrimSpace(m[3]),
			})
			return true
		}},
	}
}
