// Package normalizer extracts recommendation candidates from backend payloads.
//
// The backend has answered in two envelopes over time: the candidate array
// directly on the top-level object, or a JSON document encoded as a string in
// an "answer" field. Both are accepted. Anything else yields an empty list;
// no function in this package returns an error.
package normalizer

import (
	"math"
	"strconv"
	"strings"

	"agent-advisor/internal/model"

	"github.com/tidwall/gjson"
)

// Kind selects which candidate array to look for.
type Kind int

const (
	KindUseCases Kind = iota
	KindFrameworks
)

const answerField = "answer"

func (k Kind) keys() []string {
	if k == KindFrameworks {
		return []string{"framework_recommendations", "recommendations"}
	}
	return []string{"use_cases", "agent_recommendations"}
}

// Candidates returns the raw candidate objects for kind, in payload order.
func Candidates(payload []byte, kind Kind) []gjson.Result {
	if !gjson.ValidBytes(payload) {
		return nil
	}
	root := gjson.ParseBytes(payload)
	if !root.IsObject() {
		return nil
	}

	if arr, ok := findArray(root, kind); ok {
		return objects(arr)
	}

	answer := root.Get(answerField)
	if answer.Type != gjson.String || !gjson.Valid(answer.Str) {
		return nil
	}
	nested := gjson.Parse(answer.Str)
	if !nested.IsObject() {
		return nil
	}
	if arr, ok := findArray(nested, kind); ok {
		return objects(arr)
	}
	return nil
}

func findArray(obj gjson.Result, kind Kind) (gjson.Result, bool) {
	for _, key := range kind.keys() {
		if v := obj.Get(key); v.IsArray() {
			return v, true
		}
	}
	return gjson.Result{}, false
}

func objects(arr gjson.Result) []gjson.Result {
	var out []gjson.Result
	arr.ForEach(func(_, v gjson.Result) bool {
		if v.IsObject() {
			out = append(out, v)
		}
		return true
	})
	return out
}

// UseCases decodes every candidate object field by field. Mistyped fields
// are coerced or left empty; an element is dropped only when it is not an
// object.
func UseCases(payload []byte) []model.UseCaseCandidate {
	out := []model.UseCaseCandidate{}
	for _, v := range Candidates(payload, KindUseCases) {
		c := model.UseCaseCandidate{
			Title:        text(v.Get("title")),
			Summary:      text(v.Get("summary")),
			Score:        score(v.Get("score")),
			MatchPercent: percent(v.Get("match_percent")),
		}
		if meta := v.Get("metadata"); meta.IsObject() {
			c.Metadata, _ = meta.Value().(map[string]any)
		}
		p := c.Percent()
		c.MatchPercent = &p
		out = append(out, c)
	}
	return out
}

func Frameworks(payload []byte) []model.FrameworkCandidate {
	out := []model.FrameworkCandidate{}
	for _, v := range Candidates(payload, KindFrameworks) {
		c := model.FrameworkCandidate{
			Framework:      text(v.Get("framework")),
			Score:          score(v.Get("score")),
			Description:    text(v.Get("description")),
			MatchReason:    text(v.Get("match_reason")),
			Pros:           list(v.Get("pros")),
			Cons:           list(v.Get("cons")),
			Recommendation: text(v.Get("recommendation")),
			MatchPercent:   percent(v.Get("match_percent")),
		}
		if url := text(v.Get("url")); url != "" {
			c.URL = &url
		}
		p := c.Percent()
		c.MatchPercent = &p
		out = append(out, c)
	}
	return out
}

// text keeps strings and scalars; objects, arrays and null read as empty.
func text(v gjson.Result) string {
	switch v.Type {
	case gjson.String, gjson.Number, gjson.True, gjson.False:
		return v.String()
	}
	return ""
}

// score accepts numbers and numeric strings.
func score(v gjson.Result) float64 {
	f, ok := number(v)
	if !ok {
		return 0
	}
	return f
}

// percent rounds a fractional or string match_percent; nil when absent or
// not numeric.
func percent(v gjson.Result) *int {
	f, ok := number(v)
	if !ok {
		return nil
	}
	p := int(math.Round(f))
	return &p
}

func number(v gjson.Result) (float64, bool) {
	var f float64
	switch v.Type {
	case gjson.Number:
		f = v.Num
	case gjson.String:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(v.Str), 64)
		if err != nil {
			return 0, false
		}
		f = parsed
	default:
		return 0, false
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

// list accepts an array of scalars or a single string.
func list(v gjson.Result) []string {
	if v.IsArray() {
		var out []string
		v.ForEach(func(_, item gjson.Result) bool {
			if s := text(item); s != "" {
				out = append(out, s)
			}
			return true
		})
		return out
	}
	if s := strings.TrimSpace(text(v)); s != "" {
		return []string{s}
	}
	return nil
}

// SuggestShowFrameworks reads the use-case endpoint's hint. Only an explicit
// boolean false keeps the use-case path; a missing or malformed flag prefers
// frameworks.
func SuggestShowFrameworks(payload []byte) bool {
	if !gjson.ValidBytes(payload) {
		return true
	}
	return gjson.GetBytes(payload, "suggest_show_frameworks").Type != gjson.False
}

// EmbeddedError returns the error text the backend places inside a string
// envelope when its pipeline failed but it still answered 200.
func EmbeddedError(payload []byte) string {
	if !gjson.ValidBytes(payload) {
		return ""
	}
	if e := gjson.GetBytes(payload, "error"); e.Type == gjson.String {
		return e.Str
	}
	answer := gjson.GetBytes(payload, answerField)
	if answer.Type != gjson.String || !gjson.Valid(answer.Str) {
		return ""
	}
	if e := gjson.Get(answer.Str, "error"); e.Type == gjson.String {
		return e.Str
	}
	return ""
}
