package profile

import (
	"strings"
	"time"

	"github.com/fairyhunter13/ai-recruit-chat/internal/domain"
)

// Merge combines newly extracted or submitted data into an existing profile
// under the given strategy and returns the result. The input profiles are not
// mutated. Confidence and LastUpdated are always recomputed.
//
// Strategies:
//   - replace: new non-zero fields overwrite old unconditionally
//   - merge (default): fill empty scalars, max experience, union lists by key
//   - append: concatenate lists without de-duplication
func Merge(existing, incoming domain.CandidateProfile, strategy domain.MergeStrategy) domain.CandidateProfile {
	out := clone(existing)

	switch strategy {
	case domain.MergeReplace:
		applyReplace(&out, incoming)
	case domain.MergeAppend:
		applyFillScalars(&out, incoming)
		out.Skills = append(out.Skills, incoming.Skills...)
		out.Education = append(out.Education, incoming.Education...)
		out.Interests = append(out.Interests, incoming.Interests...)
	default: // domain.MergeFill
		applyFillScalars(&out, incoming)
		out.Skills = unionSkills(out.Skills, incoming.Skills)
		out.Education = unionEducation(out.Education, incoming.Education)
		out.Interests = unionInterests(out.Interests, incoming.Interests)
	}

	out.Confidence = Score(out)
	out.LastUpdated = time.Now().UTC()
	return out
}

func clone(p domain.CandidateProfile) domain.CandidateProfile {
	out := p
	out.Skills = append([]domain.Skill(nil), p.Skills...)
	out.Education = append([]domain.Education(nil), p.Education...)
	out.Interests = append([]string(nil), p.Interests...)
	out.Location.PreferredLocations = append([]string(nil), p.Location.PreferredLocations...)
	return out
}

func applyReplace(out *domain.CandidateProfile, in domain.CandidateProfile) {
	if in.Name != "" {
		out.Name = in.Name
	}
	if in.Email != "" {
		out.Email = in.Email
	}
	if in.Phone != "" {
		out.Phone = in.Phone
	}
	if in.HasExperience() || in.Experience.Description != "" {
		out.Experience = in.Experience
	}
	if len(in.Skills) > 0 {
		out.Skills = append([]domain.Skill(nil), in.Skills...)
	}
	if len(in.Education) > 0 {
		out.Education = append([]domain.Education(nil), in.Education...)
	}
	if len(in.Interests) > 0 {
		out.Interests = append([]string(nil), in.Interests...)
	}
	if in.Salary.Expected > 0 {
		out.Salary = in.Salary
	}
	if in.Availability != (domain.Availability{}) {
		out.Availability = in.Availability
	}
	mergeLocation(out, in)
}

// applyFillScalars fills empty scalar fields and takes per-component maxima
// for experience. Salary overwrites only when the new expected value is set.
func applyFillScalars(out *domain.CandidateProfile, in domain.CandidateProfile) {
	if out.Name == "" {
		out.Name = in.Name
	}
	if out.Email == "" {
		out.Email = in.Email
	}
	if out.Phone == "" {
		out.Phone = in.Phone
	}
	if in.Experience.Years > out.Experience.Years {
		out.Experience.Years = in.Experience.Years
	}
	if in.Experience.Months > out.Experience.Months {
		out.Experience.Months = in.Experience.Months
	}
	if out.Experience.Description == "" {
		out.Experience.Description = in.Experience.Description
	}
	if in.Salary.Expected > 0 {
		out.Salary = in.Salary
	}
	if out.Availability.StartDate == "" {
		out.Availability.StartDate = in.Availability.StartDate
	}
	if out.Availability.NoticePeriodDays == 0 {
		out.Availability.NoticePeriodDays = in.Availability.NoticePeriodDays
	}
	if out.Availability.PreferredSchedule == "" {
		out.Availability.PreferredSchedule = in.Availability.PreferredSchedule
	}
	mergeLocation(out, in)
}

// mergeLocation shallow-merges location sub-fields.
func mergeLocation(out *domain.CandidateProfile, in domain.CandidateProfile) {
	if in.Location.Current != "" {
		out.Location.Current = in.Location.Current
	}
	if in.Location.WillingToRelocate {
		out.Location.WillingToRelocate = true
	}
	if len(in.Location.PreferredLocations) > 0 {
		out.Location.PreferredLocations = unionInterests(out.Location.PreferredLocations, in.Location.PreferredLocations)
	}
}

// unionSkills unions by case-insensitive name, keeping the higher-confidence
// entry on conflict.
func unionSkills(a, b []domain.Skill) []domain.Skill {
	out := append([]domain.Skill(nil), a...)
	idx := make(map[string]int, len(out))
	for i, s := range out {
		idx[strings.ToLower(s.Name)] = i
	}
	for _, s := range b {
		key := strings.ToLower(s.Name)
		if i, ok := idx[key]; ok {
			if s.Confidence > out[i].Confidence {
				out[i] = s
			}
			continue
		}
		idx[key] = len(out)
		out = append(out, s)
	}
	return out
}

// unionEducation unions by (degree, institution), skipping duplicates.
func unionEducation(a, b []domain.Education) []domain.Education {
	out := append([]domain.Education(nil), a...)
	seen := make(map[string]struct{}, len(out))
	key := func(e domain.Education) string {
		return strings.ToLower(e.Degree) + "|" + strings.ToLower(e.Institution)
	}
	for _, e := range out {
		seen[key(e)] = struct{}{}
	}
	for _, e := range b {
		if _, ok := seen[key(e)]; ok {
			continue
		}
		seen[key(e)] = struct{}{}
		out = append(out, e)
	}
	return out
}

// unionInterests unions case-insensitively, preserving first-seen casing.
func unionInterests(a, b []string) []string {
	out := append([]string(nil), a...)
	seen := make(map[string]struct{}, len(out))
	for _, s := range out {
		seen[strings.ToLower(s)] = struct{}{}
	}
	for _, s := range b {
		if _, ok := seen[strings.ToLower(s)]; ok {
			continue
		}
		seen[strings.ToLower(s)] = struct{}{}
		out = append(out, s)
	}
	return out
}
