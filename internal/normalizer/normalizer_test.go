package normalizer

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFrameworksDirectList(t *testing.T) {
	payload := []byte(`{"framework_recommendations":[
		{"framework":"LangGraph","score":0.82,"pros":["graphs"]},
		{"framework":"CrewAI","score":0.61,"match_percent":64}
	]}`)

	got := Frameworks(payload)
	require.Len(t, got, 2)
	assert.Equal(t, "LangGraph", got[0].Framework)
	assert.Equal(t, []string{"graphs"}, got[0].Pros)
	assert.Equal(t, 82, got[0].Percent())
	assert.Equal(t, "CrewAI", got[1].Framework)
	assert.Equal(t, 64, got[1].Percent())
}

func TestFrameworksStringEnvelope(t *testing.T) {
	inner := `{"mode":"frameworks","framework_recommendations":[{"framework":"AutoGen","score":0.5}]}`
	payload, err := json.Marshal(map[string]string{"answer": inner})
	require.NoError(t, err)

	got := Frameworks(payload)
	require.Len(t, got, 1)
	assert.Equal(t, "AutoGen", got[0].Framework)
}

func TestFrameworksStringEnvelopeRecommendationsKey(t *testing.T) {
	payload := []byte(`{"answer":"{\"recommendations\":[{\"framework\":\"Haystack\",\"score\":0.4}]}"}`)

	got := Frameworks(payload)
	require.Len(t, got, 1)
	assert.Equal(t, "Haystack", got[0].Framework)
}

func TestDirectListWinsOverEnvelope(t *testing.T) {
	payload := []byte(`{
		"framework_recommendations":[{"framework":"A","score":1}],
		"answer":"{\"framework_recommendations\":[{\"framework\":\"B\",\"score\":1}]}"
	}`)

	got := Frameworks(payload)
	require.Len(t, got, 1)
	assert.Equal(t, "A", got[0].Framework)
}

func TestDegradesToEmpty(t *testing.T) {
	payloads := map[string]string{
		"empty object":      `{}`,
		"answer not json":   `{"answer":"not json"}`,
		"answer number":     `{"answer":123}`,
		"answer array json": `{"answer":"[1,2]"}`,
		"not an object":     `[{"framework":"A"}]`,
		"invalid json":      `{"framework_recommendations":[`,
		"empty body":        ``,
		"wrong key inside":  `{"answer":"{\"foo\":[]}"}`,
		"field not array":   `{"framework_recommendations":"LangGraph"}`,
	}
	for name, p := range payloads {
		t.Run(name, func(t *testing.T) {
			assert.NotPanics(t, func() {
				fw := Frameworks([]byte(p))
				assert.NotNil(t, fw)
				assert.Empty(t, fw)
				assert.Empty(t, UseCases([]byte(p)))
			})
		})
	}
}

func TestNonObjectElementsAreSkipped(t *testing.T) {
	payload := []byte(`{"use_cases":[
		{"title":"HR Bot","summary":"answers HR questions","score":0.7},
		"stray string",
		42,
		{"title":"Unscored","score":"high"},
		{"title":"Ticket Triage","summary":"","score":0.4,"metadata":{"owner":"IT"}}
	]}`)

	got := UseCases(payload)
	require.Len(t, got, 3)
	assert.Equal(t, "HR Bot", got[0].Title)
	assert.Equal(t, "Unscored", got[1].Title)
	assert.Zero(t, got[1].Score)
	assert.Equal(t, "Ticket Triage", got[2].Title)
	assert.Equal(t, "IT", got[2].Metadata["owner"])
}

func TestMistypedFieldsAreCoerced(t *testing.T) {
	t.Run("fractional match percent", func(t *testing.T) {
		got := Frameworks([]byte(`{"framework_recommendations":[{"framework":"LangGraph","score":0.8,"match_percent":80.0}]}`))
		require.Len(t, got, 1)
		require.NotNil(t, got[0].MatchPercent)
		assert.Equal(t, 80, *got[0].MatchPercent)
	})

	t.Run("string score", func(t *testing.T) {
		got := Frameworks([]byte(`{"framework_recommendations":[{"framework":"CrewAI","score":"0.7"}]}`))
		require.Len(t, got, 1)
		assert.InDelta(t, 0.7, got[0].Score, 1e-9)
		assert.Equal(t, 70, got[0].Percent())
	})

	t.Run("single string pros in envelope", func(t *testing.T) {
		inner := `{"framework_recommendations":[{"framework":"AutoGen","score":0.5,"pros":"schnell","cons":["komplex"],"url":"https://example.org"}]}`
		payload, err := json.Marshal(map[string]string{"answer": inner})
		require.NoError(t, err)

		got := Frameworks(payload)
		require.Len(t, got, 1)
		assert.Equal(t, []string{"schnell"}, got[0].Pros)
		assert.Equal(t, []string{"komplex"}, got[0].Cons)
		require.NotNil(t, got[0].URL)
		assert.Equal(t, "https://example.org", *got[0].URL)
	})

	t.Run("string match percent on use case", func(t *testing.T) {
		got := UseCases([]byte(`{"use_cases":[{"title":"HR Bot","score":0.2,"match_percent":"91.6"}]}`))
		require.Len(t, got, 1)
		assert.Equal(t, 92, got[0].Percent())
	})
}

func TestMatchPercentIsDerivedFromScore(t *testing.T) {
	got := Frameworks([]byte(`{"framework_recommendations":[
		{"framework":"A","score":0.834},
		{"framework":"B","score":1.7},
		{"framework":"C","match_percent":130}
	]}`))
	require.Len(t, got, 3)
	for i, want := range []int{83, 100, 100} {
		require.NotNil(t, got[i].MatchPercent, got[i].Framework)
		assert.Equal(t, want, *got[i].MatchPercent, got[i].Framework)
	}

	uc := UseCases([]byte(`{"use_cases":[{"title":"HR Bot","score":0.61}]}`))
	require.Len(t, uc, 1)
	data, err := json.Marshal(uc[0])
	require.NoError(t, err)
	assert.Contains(t, string(data), `"match_percent":61`)
}

func TestUseCasesAgentRecommendationsEnvelope(t *testing.T) {
	payload := []byte(`{"answer":"{\"mode\":\"agents\",\"agent_recommendations\":[{\"title\":\"Bosch HR\",\"summary\":\"s\",\"score\":0.9}],\"framework_recommendations\":[]}"}`)

	got := UseCases(payload)
	require.Len(t, got, 1)
	assert.Equal(t, "Bosch HR", got[0].Title)
	assert.Empty(t, Frameworks(payload))
}

func TestSuggestShowFrameworks(t *testing.T) {
	assert.False(t, SuggestShowFrameworks([]byte(`{"use_cases":[],"suggest_show_frameworks":false}`)))
	assert.True(t, SuggestShowFrameworks([]byte(`{"suggest_show_frameworks":true}`)))
	assert.True(t, SuggestShowFrameworks([]byte(`{"use_cases":[]}`)))
	assert.True(t, SuggestShowFrameworks([]byte(`{"suggest_show_frameworks":"false"}`)))
	assert.True(t, SuggestShowFrameworks([]byte(`garbage`)))
}

func TestEmbeddedError(t *testing.T) {
	assert.Equal(t, "boom", EmbeddedError([]byte(`{"answer":"{\"error\":\"boom\",\"framework_recommendations\":[]}"}`)))
	assert.Equal(t, "direct", EmbeddedError([]byte(`{"error":"direct"}`)))
	assert.Empty(t, EmbeddedError([]byte(`{"answer":"{}"}`)))
	assert.Empty(t, EmbeddedError([]byte(`nope`)))
}
