package advisor

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDecodeRecommendation(t *testing.T) {
	t.Run("plain JSON object", func(t *testing.T) {
		rec, err := DecodeRecommendation(`{"type":"call","action":{"strike_price":150,"option_type":"CALL","target_price":160,"expiration_date":"2026-09-18"},"confidence":72,"reasoning":"momentum"}`)
		require.NoError(t, err)
		require.Equal(t, TypeCall, rec.Type)
		require.NotNil(t, rec.Action)
		require.Equal(t, 150.0, rec.Action.StrikePrice)
		require.Equal(t, "call", rec.Action.OptionType)
		require.NotNil(t, rec.Confidence)
		require.Equal(t, 72, *rec.Confidence)
		require.Equal(t, "momentum", rec.Reasoning)
	})

	t.Run("markdown fenced", func(t *testing.T) {
		content := "```json\n{\"type\":\"put\",\"reasoning\":\"overbought\"}\n```"
		rec, err := DecodeRecommendation(content)
		require.NoError(t, err)
		require.Equal(t, TypePut, rec.Type)
		require.Nil(t, rec.Action)
		require.Nil(t, rec.Confidence)
	})

	t.Run("surrounded by prose", func(t *testing.T) {
		content := `Here is my verdict: {"type":"no action","reasoning":"sideways"} — good luck.`
		rec, err := DecodeRecommendation(content)
		require.NoError(t, err)
		require.Equal(t, TypeNoAction, rec.Type)
	})

	t.Run("braces inside JSON strings", func(t *testing.T) {
		rec, err := DecodeRecommendation(`{"type":"call","reasoning":"pattern {cup} and \"handle\""}`)
		require.NoError(t, err)
		require.Equal(t, `pattern {cup} and "handle"`, rec.Reasoning)
	})

	t.Run("type aliases normalize", func(t *testing.T) {
		for raw, want := range map[string]string{
			"Call Option": TypeCall,
			"PUT":         TypePut,
			"hold":        TypeNoAction,
			"No Action":   TypeNoAction,
		} {
			rec, err := DecodeRecommendation(`{"type":"` + raw + `","reasoning":"x"}`)
			require.NoError(t, err, raw)
			require.Equal(t, want, rec.Type, raw)
		}
	})

	t.Run("unknown type is malformed", func(t *testing.T) {
		_, err := DecodeRecommendation(`{"type":"straddle","reasoning":"x"}`)
		require.ErrorIs(t, err, ErrMalformedResponse)
	})

	t.Run("no JSON object is malformed", func(t *testing.T) {
		_, err := DecodeRecommendation("I would buy calls here.")
		require.ErrorIs(t, err, ErrMalformedResponse)
	})

	t.Run("unbalanced JSON is malformed", func(t *testing.T) {
		_, err := DecodeRecommendation(`{"type":"call","reasoning":"trunc`)
		require.ErrorIs(t, err, ErrMalformedResponse)
	})
}

func TestGenerateRecommendationSchema(t *testing.T) {
	schema, err := GenerateSchema(&Recommendation{})
	require.NoError(t, err)

	require.Equal(t, "object", schema["type"])

	props, ok := schema["properties"].(map[string]interface{})
	require.True(t, ok)
	require.Contains(t, props, "type")
	require.Contains(t, props, "action")
	require.Contains(t, props, "confidence")
	require.Contains(t, props, "reasoning")

	required, ok := schema["required"].([]string)
	require.True(t, ok)
	require.ElementsMatch(t, []string{"type", "reasoning"}, required)

	action, ok := props["action"].(map[string]interface{})
	require.True(t, ok)
	actionProps, ok := action["properties"].(map[string]interface{})
	require.True(t, ok)
	require.Contains(t, actionProps, "strike_price")
	require.Contains(t, actionProps, "expiration_reason")
	actionRequired, ok := action["required"].([]string)
	require.True(t, ok)
	require.ElementsMatch(t, []string{"strike_price", "option_type"}, actionRequired)
}
