// Package matcher interprets free-text chat input against fixed vocabularies.
// Every function is pure; alias tables are plain data so they can be extended
// without touching the chat state machine.
package matcher

import (
	"strings"

	"agent-advisor/internal/model"
)

// Alias maps a substring pattern to a canonical value.
type Alias struct {
	Pattern string
	Value   string
}

func Normalize(input string) string {
	return strings.ToLower(strings.TrimSpace(input))
}

// Exact returns the vocabulary entry equal to input, ignoring case.
func Exact(input string, vocab []string) (string, bool) {
	in := Normalize(input)
	for _, v := range vocab {
		if in == strings.ToLower(v) {
			return v, true
		}
	}
	return "", false
}

// Contains returns the value of the first alias whose pattern occurs in input.
func Contains(input string, aliases []Alias) (string, bool) {
	in := Normalize(input)
	for _, a := range aliases {
		if strings.Contains(in, a.Pattern) {
			return a.Value, true
		}
	}
	return "", false
}

// HasPrefix reports whether input starts with any of the tokens.
func HasPrefix(input string, tokens []string) bool {
	in := Normalize(input)
	for _, t := range tokens {
		if strings.HasPrefix(in, t) {
			return true
		}
	}
	return false
}

var agentTypeAliases = []Alias{
	{Pattern: "chat", Value: string(model.AgentChatbot)},
	{Pattern: "workflow", Value: string(model.AgentWorkflow)},
	{Pattern: "multi", Value: string(model.AgentMulti)},
	{Pattern: "analyse", Value: string(model.AgentAnalysis)},
	{Pattern: "daten", Value: string(model.AgentData)},
}

func AgentType(input string) (model.AgentType, bool) {
	vocab := make([]string, 0, len(model.AgentTypes))
	for _, t := range model.AgentTypes {
		vocab = append(vocab, string(t))
	}
	if v, ok := Exact(input, vocab); ok {
		return model.AgentType(v), true
	}
	if _, ok := Exact(input, []string{model.UnknownDisplay}); ok {
		return model.AgentUnknown, true
	}
	if v, ok := Contains(input, agentTypeAliases); ok {
		return model.AgentType(v), true
	}
	return "", false
}

// Priorities returns every tag whose key or first label word occurs in
// input, in vocabulary order.
func Priorities(input string) []model.Priority {
	in := Normalize(input)
	var out []model.Priority
	for _, o := range model.PriorityOptions {
		w := firstWord(o.Label)
		if strings.Contains(in, string(o.Key)) || (w != "" && strings.Contains(in, w)) {
			out = append(out, o.Key)
		}
	}
	return out
}

func firstWord(label string) string {
	fields := strings.Fields(strings.ToLower(label))
	if len(fields) == 0 {
		return ""
	}
	return fields[0]
}

func Experience(input string) (model.ExperienceLevel, bool) {
	vocab := make([]string, 0, len(model.ExperienceLevels))
	for _, e := range model.ExperienceLevels {
		vocab = append(vocab, string(e))
	}
	v, ok := Exact(input, vocab)
	return model.ExperienceLevel(v), ok
}

func Learning(input string) (model.LearningPreference, bool) {
	vocab := make([]string, 0, len(model.LearningPreferences))
	for _, l := range model.LearningPreferences {
		vocab = append(vocab, string(l))
	}
	v, ok := Exact(input, vocab)
	return model.LearningPreference(v), ok
}

var (
	doneTokens        = []string{"weiter", "fertig", "ok", "done", "next"}
	affirmativeTokens = []string{"ja", "yes", "y"}
	negativeTokens    = []string{"nein", "no", "n"}
)

func IsDone(input string) bool {
	_, ok := Exact(input, doneTokens)
	return ok
}

func IsAffirmative(input string) bool {
	_, ok := Exact(input, affirmativeTokens)
	return ok
}

func IsNegative(input string) bool {
	_, ok := Exact(input, negativeTokens)
	return ok
}

func HasAffirmativePrefix(input string) bool {
	return HasPrefix(input, affirmativeTokens)
}

// HasNegativePrefix is only meaningful after HasAffirmativePrefix failed;
// the two token sets share no prefix.
func HasNegativePrefix(input string) bool {
	return HasPrefix(input, negativeTokens)
}

var editAliases = []Alias{
	{Pattern: "agent", Value: string(model.FieldAgentType)},
	{Pattern: "prio", Value: string(model.FieldPriorities)},
	{Pattern: "level", Value: string(model.FieldExperienceLevel)},
	{Pattern: "learn", Value: string(model.FieldLearningPreference)},
	{Pattern: "usecase", Value: string(model.FieldUseCase)},
	{Pattern: "use case", Value: string(model.FieldUseCase)},
	{Pattern: "use-case", Value: string(model.FieldUseCase)},
}

// EditTarget maps a "change X" instruction to the field it names.
func EditTarget(input string) (model.Field, bool) {
	v, ok := Contains(input, editAliases)
	return model.Field(v), ok
}
