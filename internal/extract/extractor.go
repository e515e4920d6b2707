// Package extract implements best-effort, pattern-based extraction of
// candidate profile fields from free-form chat text. The engine is a pure
// function of its input: same text in, same partial profile out, no side
// effects, and it never fails: at worst it returns an empty profile.
package extract

import (
	"regexp"
	"strings"

	"github.com/fairyhunter13/ai-recruit-chat/internal/domain"
	"github.com/fairyhunter13/ai-recruit-chat/internal/profile"
	"github.com/fairyhunter13/ai-recruit-chat/pkg/textx"
)

// Contextual cues shifting per-field confidence.
var (
	fieldBoosts = []string{"experience with", "years of", "i have", "my", "worked"}
	fieldHedges = []string{"interested in", "want to learn", "hoping to", "thinking about", "maybe"}
)

// Result is the outcome of one extraction pass.
type Result struct {
	Profile domain.CandidateProfile
	// FieldConfidence holds the heuristic score per extracted field.
	FieldConfidence map[string]float64
}

// Engine scans conversation text against an ordered pattern table and a skill
// keyword dictionary.
type Engine struct {
	patterns []fieldPattern
	skills   []skillMatcher
}

// New builds an Engine with the default pattern table and skill dictionary.
func New() *Engine {
	return &Engine{
		patterns: patternTable(),
		skills:   buildSkillMatchers(),
	}
}

// Extract runs extraction over a session's message history. Only candidate
// (user) messages are scanned; assistant text would leak job-posting skills
// into the profile.
func (e *Engine) Extract(messages []domain.ChatMessage) Result {
	var b strings.Builder
	for _, m := range messages {
		if m.Role != domain.RoleUser {
			continue
		}
		b.WriteString(m.Content)
		b.WriteString(" ")
	}
	return e.ExtractText(b.String())
}

// ExtractText runs extraction over raw conversation text. It never panics;
// any internal failure yields an empty partial profile.
func (e *Engine) ExtractText(text string) (res Result) {
	res.FieldConfidence = map[string]float64{}
	defer func() {
		if r := recover(); r != nil {
			res = Result{FieldConfidence: map[string]float64{}}
		}
	}()

	text = textx.CollapseWhitespace(textx.SanitizeText(text))
	if text == "" {
		return res
	}

	for _, row := range e.patterns {
		m := row.Re.FindStringSubmatch(text)
		if m == nil {
			continue
		}
		if !row.Transform(m, text, &res.Profile) {
			continue
		}
		conf := adjustConfidence(row.BaseConfidence, cueWindow(text, row.Re))
		// First match wins per field; later rows must not lower the score.
		if prev, ok := res.FieldConfidence[row.Field]; !ok || conf > prev {
			res.FieldConfidence[row.Field] = conf
		}
	}

	res.Profile.Skills = scanSkills(e.skills, text)
	if len(res.Profile.Skills) > 0 {
		var sum float64
		for _, s := range res.Profile.Skills {
			sum += s.Confidence
		}
		res.FieldConfidence["skills"] = profile.Clamp(sum / float64(len(res.Profile.Skills)))
	}

	res.Profile.Confidence = profile.Score(res.Profile)
	return res
}

// cueWindow returns the text surrounding the first match of re, used for
// boost/hedge scanning.
func cueWindow(text string, re *regexp.Regexp) string {
	loc := re.FindStringIndex(text)
	if loc == nil {
		return ""
	}
	return strings.ToLower(window(text, loc, cueRadius))
}

// adjustConfidence applies contextual boosts and hedging penalties to a
// pattern's base confidence and clamps the result.
func adjustConfidence(base float64, window string) float64 {
	conf := base
	for _, b := range fieldBoosts {
		if strings.Contains(window, b) {
			conf += 0.05
			break
		}
	}
	for _, h := range fieldHedges {
		if strings.Contains(window, h) {
			conf -= 0.2
			break
		}
	}
	return profile.Clamp(conf)
}
