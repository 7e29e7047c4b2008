package model

import "math"

// ChatCandidateLimit caps how many candidates a single chat turn carries.
const ChatCandidateLimit = 3

// UseCaseCandidate is a catalog use case matched by the backend.
type UseCaseCandidate struct {
	Title        string         `json:"title"`
	Summary      string         `json:"summary"`
	Score        float64        `json:"score"`
	MatchPercent *int           `json:"match_percent,omitempty"`
	Metadata     map[string]any `json:"metadata,omitempty"`
}

func (c UseCaseCandidate) Percent() int {
	return matchPercent(c.MatchPercent, c.Score)
}

// FrameworkCandidate is a scored third-party framework suggestion.
type FrameworkCandidate struct {
	Framework      string   `json:"framework"`
	Score          float64  `json:"score"`
	Description    string   `json:"description,omitempty"`
	MatchReason    string   `json:"match_reason,omitempty"`
	Pros           []string `json:"pros,omitempty"`
	Cons           []string `json:"cons,omitempty"`
	Recommendation string   `json:"recommendation,omitempty"`
	MatchPercent   *int     `json:"match_percent,omitempty"`
	URL            *string  `json:"url,omitempty"`
}

func (c FrameworkCandidate) Percent() int {
	return matchPercent(c.MatchPercent, c.Score)
}

func matchPercent(precomputed *int, score float64) int {
	p := 0
	if precomputed != nil {
		p = *precomputed
	} else if !math.IsNaN(score) {
		p = int(math.Round(score * 100))
	}
	return min(max(p, 0), 100)
}

// LimitUseCases returns at most n candidates; n <= 0 means no limit.
func LimitUseCases(cs []UseCaseCandidate, n int) []UseCaseCandidate {
	if n <= 0 || len(cs) <= n {
		return cs
	}
	return cs[:n]
}

func LimitFrameworks(cs []FrameworkCandidate, n int) []FrameworkCandidate {
	if n <= 0 || len(cs) <= n {
		return cs
	}
	return cs[:n]
}
