package prompt

import "github.com/fairyhunter13/ai-recruit-chat/internal/domain"

// stageFallbacks are the canned replies used when the model provider is
// unavailable. They keep the conversation moving in the current stage.
var stageFallbacks = map[domain.Stage]string{
	domain.StageGreeting:      "Hi there! Thanks for your interest in the role. Could you tell me a bit about yourself to get us started?",
	domain.StageInfoGathering: "Thanks for sharing! Could you let me know your full name and the best email or phone number to reach you?",
	domain.StageAssessment:    "Great. Could you tell me about your professional experience and the technologies you work with most?",
	domain.StageSalary:        "Understood. What salary range are you expecting for this position, and is it negotiable?",
	domain.StageWrapUp:        "Thank you for all the details! We'll review your profile and get back to you with next steps shortly.",
	domain.StageCompleted:     "Thanks again for your time! Our team will be in touch with next steps soon.",
}

// FallbackConfidence is attached to canned replies so callers can treat them
// as lower-confidence output.
const FallbackConfidence = 0.3

// Fallback returns the canned, stage-appropriate assistant reply.
func Fallback(st domain.Stage) string {
	if s, ok := stageFallbacks[st]; ok {
		return s
	}
	return stageFallbacks[domain.StageGreeting]
}
