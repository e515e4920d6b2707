// Package stage implements the conversation flow state machine. Next is a
// pure function of (current stage, profile, message count); stages advance
// monotonically and only an explicit Reset returns to the start.
package stage

import "github.com/fairyhunter13/ai-recruit-chat/internal/domain"

// order fixes the visitation sequence of the conversation.
var order = []domain.Stage{
	domain.StageGreeting,
	domain.StageInfoGathering,
	domain.StageAssessment,
	domain.StageSalary,
	domain.StageWrapUp,
	domain.StageCompleted,
}

// greetingMinMessages is how many messages must be exchanged before the
// greeting stage can be left.
const greetingMinMessages = 2

// rank returns the index of s in the visitation order, treating unknown
// values as the start.
func rank(s domain.Stage) int {
	for i, v := range order {
		if v == s {
			return i
		}
	}
	return 0
}

// Next computes the stage for the coming turn. It advances at most one stage
// per call, never regresses, and leaves terminal stages alone.
func Next(current domain.Stage, profile domain.CandidateProfile, messageCount int) domain.Stage {
	if current == domain.StageCompleted {
		return current
	}
	cur := rank(current)
	if ready(order[cur], profile, messageCount) {
		return order[cur+1]
	}
	return order[cur]
}

// ready reports whether the exit condition of s is satisfied.
func ready(s domain.Stage, p domain.CandidateProfile, messageCount int) bool {
	switch s {
	case domain.StageGreeting:
		return messageCount >= greetingMinMessages
	case domain.StageInfoGathering:
		// Identity captured: a name plus some way to contact the candidate.
		return p.Name != "" && (p.Email != "" || p.Phone != "")
	case domain.StageAssessment:
		return p.HasExperience() && len(p.Skills) > 0
	case domain.StageSalary:
		return p.Salary.Expected > 0
	case domain.StageWrapUp:
		// Wrap-up ends by explicit completion, not by profile shape.
		return false
	default:
		return false
	}
}

// Reset returns the initial stage. Used only on explicit session reset.
func Reset() domain.Stage { return domain.StageGreeting }
