package model

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
)

var (
	ErrInvalidField = errors.New("invalid field")
	ErrInvalidValue = errors.New("invalid value")
)

// Field names a slot of the requirements record. The string values double as
// the JSON keys sent to the backend.
type Field string

const (
	FieldAgentType          Field = "agent_type"
	FieldPriorities         Field = "priorities"
	FieldUseCase            Field = "use_case"
	FieldExperienceLevel    Field = "experience_level"
	FieldLearningPreference Field = "learning_preference"
)

// RequiredFields lists the fields that gate submission, in form order.
var RequiredFields = []Field{
	FieldAgentType,
	FieldExperienceLevel,
	FieldLearningPreference,
	FieldUseCase,
}

type AgentType string

const (
	AgentChatbot  AgentType = "Chatbot"
	AgentData     AgentType = "Daten-Agent"
	AgentWorkflow AgentType = "Workflow-Agent"
	AgentAnalysis AgentType = "Analyse-Agent"
	AgentMulti    AgentType = "Multi-Agent-System"
	AgentUnknown  AgentType = "unknown"
)

// UnknownDisplay is how AgentUnknown is offered to users.
const UnknownDisplay = "Ich weiß es nicht"

var AgentTypes = []AgentType{AgentChatbot, AgentData, AgentWorkflow, AgentAnalysis, AgentMulti, AgentUnknown}

func (a AgentType) Valid() bool {
	for _, t := range AgentTypes {
		if t == a {
			return true
		}
	}
	return false
}

// Label is the display text shown to users.
func (a AgentType) Label() string {
	if a == AgentUnknown {
		return UnknownDisplay
	}
	return string(a)
}

type ExperienceLevel string

const (
	ExperienceBeginner     ExperienceLevel = "beginner"
	ExperienceIntermediate ExperienceLevel = "intermediate"
	ExperienceExpert       ExperienceLevel = "expert"
)

var ExperienceLevels = []ExperienceLevel{ExperienceBeginner, ExperienceIntermediate, ExperienceExpert}

var experienceLabels = map[ExperienceLevel]string{
	ExperienceBeginner:     "Anfänger",
	ExperienceIntermediate: "Fortgeschritten",
	ExperienceExpert:       "Experte",
}

func (e ExperienceLevel) Valid() bool {
	_, ok := experienceLabels[e]
	return ok
}

func (e ExperienceLevel) Label() string {
	if l, ok := experienceLabels[e]; ok {
		return l
	}
	return string(e)
}

type LearningPreference string

const (
	LearningLearn  LearningPreference = "learn"
	LearningSimple LearningPreference = "simple"
)

var LearningPreferences = []LearningPreference{LearningLearn, LearningSimple}

var learningLabels = map[LearningPreference]string{
	LearningLearn:  "Etwas dazu lernen",
	LearningSimple: "Einfache Lösung",
}

func (l LearningPreference) Valid() bool {
	_, ok := learningLabels[l]
	return ok
}

func (l LearningPreference) Label() string {
	if s, ok := learningLabels[l]; ok {
		return s
	}
	return string(l)
}

// Requirements is the structured record both the form and the chat wizard
// fill in. It is a value type: every mutator returns a new record and leaves
// the receiver untouched.
type Requirements struct {
	AgentType          AgentType          `json:"agent_type"`
	Priorities         PrioritySet        `json:"priorities"`
	UseCase            string             `json:"use_case"`
	ExperienceLevel    ExperienceLevel    `json:"experience_level"`
	LearningPreference LearningPreference `json:"learning_preference"`
}

// WithField returns a copy with field set to value. Typed fields only accept
// members of their vocabulary or the empty string.
func (r Requirements) WithField(field Field, value string) (Requirements, error) {
	out := r.clone()
	switch field {
	case FieldAgentType:
		v := AgentType(value)
		if value != "" && !v.Valid() {
			return r, fmt.Errorf("%w: agent type %q", ErrInvalidValue, value)
		}
		out.AgentType = v
	case FieldUseCase:
		out.UseCase = value
	case FieldExperienceLevel:
		v := ExperienceLevel(value)
		if value != "" && !v.Valid() {
			return r, fmt.Errorf("%w: experience level %q", ErrInvalidValue, value)
		}
		out.ExperienceLevel = v
	case FieldLearningPreference:
		v := LearningPreference(value)
		if value != "" && !v.Valid() {
			return r, fmt.Errorf("%w: learning preference %q", ErrInvalidValue, value)
		}
		out.LearningPreference = v
	default:
		return r, fmt.Errorf("%w: %q", ErrInvalidField, field)
	}
	return out, nil
}

func (r Requirements) TogglePriority(p Priority) Requirements {
	out := r.clone()
	out.Priorities = r.Priorities.Toggle(p)
	return out
}

// CanSubmit reports whether every required field holds a non-blank value.
// Priorities may be empty.
func (r Requirements) CanSubmit() bool {
	return len(r.Missing()) == 0
}

func (r Requirements) Missing() []Field {
	var missing []Field
	for _, f := range RequiredFields {
		if strings.TrimSpace(r.value(f)) == "" {
			missing = append(missing, f)
		}
	}
	return missing
}

func (r Requirements) value(f Field) string {
	switch f {
	case FieldAgentType:
		return string(r.AgentType)
	case FieldUseCase:
		return r.UseCase
	case FieldExperienceLevel:
		return string(r.ExperienceLevel)
	case FieldLearningPreference:
		return string(r.LearningPreference)
	}
	return ""
}

func (r Requirements) clone() Requirements {
	out := r
	out.Priorities = r.Priorities.Clone()
	return out
}

// UseCaseRequest is the body of POST /use-cases.
type UseCaseRequest struct {
	AgentType          string   `json:"agent_type"`
	Priorities         []string `json:"priorities"`
	UseCase            string   `json:"use_case"`
	ExperienceLevel    string   `json:"experience_level"`
	LearningPreference string   `json:"learning_preference"`
}

// FrameworkRequest is the body of POST /agent.
type FrameworkRequest struct {
	UseCaseRequest
	ForceFrameworks bool `json:"force_frameworks"`
}

func (r Requirements) UseCaseRequest() UseCaseRequest {
	prios := make([]string, 0, r.Priorities.Len())
	for _, p := range r.Priorities.Sorted() {
		prios = append(prios, string(p))
	}
	return UseCaseRequest{
		AgentType:          string(r.AgentType),
		Priorities:         prios,
		UseCase:            r.UseCase,
		ExperienceLevel:    string(r.ExperienceLevel),
		LearningPreference: string(r.LearningPreference),
	}
}

func (r Requirements) FrameworkRequest(force bool) FrameworkRequest {
	return FrameworkRequest{UseCaseRequest: r.UseCaseRequest(), ForceFrameworks: force}
}

// Priority is a tag from the fixed priority vocabulary.
type Priority string

const (
	PrioritySpeed   Priority = "speed"
	PriorityTools   Priority = "tools"
	PriorityMemory  Priority = "memory"
	PriorityRAG     Priority = "rag"
	PriorityPrivacy Priority = "privacy"
	PriorityMulti   Priority = "multi"
)

type PriorityOption struct {
	Key   Priority `json:"key"`
	Label string   `json:"label"`
}

var PriorityOptions = []PriorityOption{
	{Key: PrioritySpeed, Label: "Schnell & leichtgewichtig"},
	{Key: PriorityTools, Label: "Viele Integrationen / Tools"},
	{Key: PriorityMemory, Label: "Gute Gedächtnisfunktionen"},
	{Key: PriorityRAG, Label: "Dokumenten-Suche (RAG)"},
	{Key: PriorityPrivacy, Label: "Datenschutzfreundlich"},
	{Key: PriorityMulti, Label: "Multi-Agent-Fähig"},
}

func (p Priority) Valid() bool {
	for _, o := range PriorityOptions {
		if o.Key == p {
			return true
		}
	}
	return false
}

func (p Priority) Label() string {
	for _, o := range PriorityOptions {
		if o.Key == p {
			return o.Label
		}
	}
	return string(p)
}

// PrioritySet is an unordered set of priority tags. The zero value is an
// empty set; Toggle never mutates the receiver.
type PrioritySet struct {
	m map[Priority]struct{}
}

func NewPrioritySet(ps ...Priority) PrioritySet {
	s := PrioritySet{m: make(map[Priority]struct{}, len(ps))}
	for _, p := range ps {
		s.m[p] = struct{}{}
	}
	return s
}

func (s PrioritySet) Has(p Priority) bool {
	_, ok := s.m[p]
	return ok
}

func (s PrioritySet) Len() int { return len(s.m) }

func (s PrioritySet) Clone() PrioritySet {
	out := PrioritySet{m: make(map[Priority]struct{}, len(s.m))}
	for p := range s.m {
		out.m[p] = struct{}{}
	}
	return out
}

func (s PrioritySet) Toggle(p Priority) PrioritySet {
	out := s.Clone()
	if out.Has(p) {
		delete(out.m, p)
	} else {
		out.m[p] = struct{}{}
	}
	return out
}

func (s PrioritySet) Equal(o PrioritySet) bool {
	if s.Len() != o.Len() {
		return false
	}
	for p := range s.m {
		if !o.Has(p) {
			return false
		}
	}
	return true
}

// Sorted returns the members in vocabulary order, followed by any unknown
// tags in lexical order.
func (s PrioritySet) Sorted() []Priority {
	out := make([]Priority, 0, len(s.m))
	for _, o := range PriorityOptions {
		if s.Has(o.Key) {
			out = append(out, o.Key)
		}
	}
	var extra []Priority
	for p := range s.m {
		if !p.Valid() {
			extra = append(extra, p)
		}
	}
	sort.Slice(extra, func(i, j int) bool { return extra[i] < extra[j] })
	return append(out, extra...)
}

func (s PrioritySet) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.Sorted())
}

func (s *PrioritySet) UnmarshalJSON(data []byte) error {
	var ps []Priority
	if err := json.Unmarshal(data, &ps); err != nil {
		return err
	}
	*s = NewPrioritySet(ps...)
	return nil
}
