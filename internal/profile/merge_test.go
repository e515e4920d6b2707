package profile

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fairyhunter13/ai-recruit-chat/internal/domain"
)

func TestMerge_FillKeepsKnownScalars(t *testing.T) {
	t.Parallel()
	existing := domain.CandidateProfile{Name: "Sarah Johnson", Email: "sarah@example.com"}
	incoming := domain.CandidateProfile{Name: "Someone Else", Phone: "(555) 123-4567"}

	merged := Merge(existing, incoming, domain.MergeFill)

	assert.Equal(t, "Sarah Johnson", merged.Name, "merge must not replace a known name")
	assert.Equal(t, "sarah@example.com", merged.Email)
	assert.Equal(t, "(555) 123-4567", merged.Phone, "empty scalar should be filled")
}

func TestMerge_ExperienceTakesMax(t *testing.T) {
	t.Parallel()
	existing := domain.CandidateProfile{Experience: domain.Experience{Years: 3, Months: 8}}
	incoming := domain.CandidateProfile{Experience: domain.Experience{Years: 5, Months: 2}}

	merged := Merge(existing, incoming, domain.MergeFill)

	assert.Equal(t, 5, merged.Experience.Years)
	assert.Equal(t, 8, merged.Experience.Months, "months merged independently of years")
}

func TestMerge_SkillsUnionKeepsHigherConfidence(t *testing.T) {
	t.Parallel()
	existing := domain.CandidateProfile{Skills: []domain.Skill{
		{Name: "React", Level: domain.LevelIntermediate, Confidence: 0.5},
	}}
	incoming := domain.CandidateProfile{Skills: []domain.Skill{
		{Name: "react", Level: domain.LevelExpert, Confidence: 0.9},
		{Name: "Go", Level: domain.LevelAdvanced, Confidence: 0.7},
	}}

	merged := Merge(existing, incoming, domain.MergeFill)

	require.Len(t, merged.Skills, 2)
	assert.Equal(t, domain.LevelExpert, merged.Skills[0].Level)
	assert.InDelta(t, 0.9, merged.Skills[0].Confidence, 1e-9)
	assert.Equal(t, "Go", merged.Skills[1].Name)
}

func TestMerge_EducationUnionByDegreeInstitution(t *testing.T) {
	t.Parallel()
	existing := domain.CandidateProfile{Education: []domain.Education{
		{Degree: "BSc", Institution: "MIT"},
	}}
	incoming := domain.CandidateProfile{Education: []domain.Education{
		{Degree: "bsc", Institution: "mit"},
		{Degree: "MSc", Institution: "Stanford"},
	}}

	merged := Merge(existing, incoming, domain.MergeFill)
	assert.Len(t, merged.Education, 2)
}

func TestMerge_SalaryOverwritesOnlyWhenSet(t *testing.T) {
	t.Parallel()
	existing := domain.CandidateProfile{Salary: domain.SalaryExpectation{Expected: 90000, Currency: "USD"}}

	merged := Merge(existing, domain.CandidateProfile{}, domain.MergeFill)
	assert.InDelta(t, 90000, merged.Salary.Expected, 1e-9)

	merged = Merge(existing, domain.CandidateProfile{Salary: domain.SalaryExpectation{Expected: 120000, Currency: "USD", Negotiable: true}}, domain.MergeFill)
	assert.InDelta(t, 120000, merged.Salary.Expected, 1e-9)
	assert.True(t, merged.Salary.Negotiable)
}

func TestMerge_AppendConcatenatesWithoutDedup(t *testing.T) {
	t.Parallel()
	existing := domain.CandidateProfile{Skills: []domain.Skill{{Name: "React", Confidence: 0.5}}}
	incoming := domain.CandidateProfile{Skills: []domain.Skill{{Name: "React", Confidence: 0.9}}}

	merged := Merge(existing, incoming, domain.MergeAppend)
	assert.Len(t, merged.Skills, 2)
}

func TestMerge_ReplaceOverwrites(t *testing.T) {
	t.Parallel()
	existing := domain.CandidateProfile{Name: "Old Name", Email: "old@example.com"}
	incoming := domain.CandidateProfile{Name: "New Name"}

	merged := Merge(existing, incoming, domain.MergeReplace)
	assert.Equal(t, "New Name", merged.Name)
	assert.Equal(t, "old@example.com", merged.Email, "replace only touches provided fields")
}

func TestMerge_RecomputesConfidenceAndTimestamp(t *testing.T) {
	t.Parallel()
	merged := Merge(domain.CandidateProfile{}, domain.CandidateProfile{Name: "Sarah"}, domain.MergeFill)
	assert.Greater(t, merged.Confidence, 0.0)
	assert.False(t, merged.LastUpdated.IsZero())
}

func TestMerge_DoesNotMutateInputs(t *testing.T) {
	t.Parallel()
	existing := domain.CandidateProfile{Skills: []domain.Skill{{Name: "Go", Confidence: 0.4}}}
	incoming := domain.CandidateProfile{Skills: []domain.Skill{{Name: "go", Confidence: 0.8}}}

	_ = Merge(existing, incoming, domain.MergeFill)
	assert.InDelta(t, 0.4, existing.Skills[0].Confidence, 1e-9)
}
