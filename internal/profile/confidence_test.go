package profile

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/fairyhunter13/ai-recruit-chat/internal/domain"
)

func TestScore_EmptyProfileIsZero(t *testing.T) {
	t.Parallel()
	assert.Zero(t, Score(domain.CandidateProfile{}))
}

func TestScore_FullProfileIsOne(t *testing.T) {
	t.Parallel()
	p := domain.CandidateProfile{
		Name:       "Sarah Johnson",
		Email:      "sarah@example.com",
		Phone:      "(555) 123-4567",
		Experience: domain.Experience{Years: 6},
		Skills: []domain.Skill{
			{Name: "React"}, {Name: "Node.js"}, {Name: "Go"},
		},
		Education:    []domain.Education{{Degree: "BSc", Institution: "MIT"}},
		Salary:       domain.SalaryExpectation{Expected: 120000, Currency: "USD"},
		Location:     domain.LocationInfo{Current: "Berlin"},
		Availability: domain.Availability{StartDate: "immediately"},
	}
	assert.InDelta(t, 1.0, Score(p), 1e-9)
}

func TestScore_MonotonicInFields(t *testing.T) {
	t.Parallel()
	p := domain.CandidateProfile{Name: "Sarah"}
	base := Score(p)
	p.Email = "s@example.com"
	assert.Greater(t, Score(p), base)
}

func TestScore_PartialSkillCredit(t *testing.T) {
	t.Parallel()
	one := Score(domain.CandidateProfile{Skills: []domain.Skill{{Name: "Go"}}})
	three := Score(domain.CandidateProfile{Skills: []domain.Skill{{Name: "Go"}, {Name: "React"}, {Name: "AWS"}}})
	assert.Greater(t, three, one)
}

func TestScore_BucketShares(t *testing.T) {
	t.Parallel()

	// Weights sum to 1.0, so a single populated bucket scores its share:
	// identity 0.25, experience 0.20, skills 0.20, education 0.15, the
	// salary/location/availability remainder 0.20.
	identity := domain.CandidateProfile{Name: "Sarah", Email: "s@example.com", Phone: "555-0100"}
	assert.InDelta(t, 0.25, Score(identity), 1e-9)

	experience := domain.CandidateProfile{Experience: domain.Experience{Years: 6}}
	assert.InDelta(t, 0.20, Score(experience), 1e-9)

	skills := domain.CandidateProfile{Skills: []domain.Skill{{Name: "Go"}, {Name: "React"}, {Name: "AWS"}}}
	assert.InDelta(t, 0.20, Score(skills), 1e-9)

	education := domain.CandidateProfile{Education: []domain.Education{{Degree: "BSc", Institution: "MIT"}}}
	assert.InDelta(t, 0.15, Score(education), 1e-9)

	rest := domain.CandidateProfile{
		Salary:       domain.SalaryExpectation{Expected: 120000, Currency: "USD"},
		Location:     domain.LocationInfo{Current: "Berlin"},
		Availability: domain.Availability{StartDate: "immediately"},
	}
	assert.InDelta(t, 0.20, Score(rest), 1e-9)
}

func TestScore_Bounded(t *testing.T) {
	t.Parallel()
	for _, p := range []domain.CandidateProfile{
		{},
		{Name: "x"},
		{Skills: make([]domain.Skill, 50)},
	} {
		s := Score(p)
		assert.GreaterOrEqual(t, s, 0.0)
		assert.LessOrEqual(t, s, 1.0)
	}
}

func TestClamp(t *testing.T) {
	t.Parallel()
	assert.Equal(t, 0.0, Clamp(-1))
	assert.Equal(t, 1.0, Clamp(2))
	assert.Equal(t, 0.5, Clamp(0.5))
}
