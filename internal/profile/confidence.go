// Package profile implements candidate profile merging and the deterministic
// confidence score. Both the extraction engine and the session manager use
// the same weight table so a profile's confidence never depends on which code
// path last touched it.
package profile

import "github.com/fairyhunter13/ai-recruit-chat/internal/domain"

// Field weights. A weight contributes only when the field is present; the
// final score is contributed/applicable, so a profile with every tracked
// field populated scores 1.0. Bucket shares: identity 0.25, experience 0.20,
// skills 0.20, education 0.15, remaining fields 0.20.
const (
	weightName         = 0.12
	weightEmail        = 0.08
	weightPhone        = 0.05
	weightExperience   = 0.20
	weightSkills       = 0.20
	weightEducation    = 0.15
	weightSalary       = 0.08
	weightLocation     = 0.06
	weightAvailability = 0.06
)

// skillsFullCredit is the skill count at which the skills weight contributes
// fully; fewer skills contribute proportionally.
const skillsFullCredit = 3

// Score computes the overall profile confidence in [0,1].
func Score(p domain.CandidateProfile) float64 {
	var contributed, applicable float64

	add := func(weight float64, present bool) {
		applicable += weight
		if present {
			contributed += weight
		}
	}

	add(weightName, p.Name != "")
	add(weightEmail, p.Email != "")
	add(weightPhone, p.Phone != "")
	add(weightExperience, p.HasExperience())

	applicable += weightSkills
	if n := len(p.Skills); n > 0 {
		credit := float64(n) / skillsFullCredit
		if credit > 1 {
			credit = 1
		}
		contributed += weightSkills * credit
	}

	add(weightEducation, len(p.Education) > 0)
	add(weightSalary, p.Salary.Expected > 0)
	add(weightLocation, p.Location.Current != "" || len(p.Location.PreferredLocations) > 0)
	add(weightAvailability, p.Availability.StartDate != "" || p.Availability.NoticePeriodDays > 0 || p.Availability.PreferredSchedule != "")

	if applicable == 0 {
		return 0
	}
	return Clamp(contributed / applicable)
}

// Clamp bounds v to [0,1].
func Clamp(v float64) float64 {
	switch {
	case v < 0:
		return 0
	case v > 1:
		return 1
	default:
		return v
	}
}
