package parameters

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplitList_JSONArray(t *testing.T) {
	got, err := splitList(`["a","b"]`)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, got)
}

func TestSplitList_CommaDelimited(t *testing.T) {
	got, err := splitList("a, b ,c")
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b", "c"}, got)
}

func TestSplitList_Empty(t *testing.T) {
	got, err := splitList("")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestSplitList_MalformedJSON(t *testing.T) {
	_, err := splitList(`[1,2`)
	require.Error(t, err)
}

func TestValidateTextInput_Color(t *testing.T) {
	require.NoError(t, validateTextInput("color", "#1a2b3c"))
	require.Error(t, validateTextInput("color", "red"))
}

func TestValidateTextInput_DateTimeLocal(t *testing.T) {
	require.NoError(t, validateTextInput("datetime-local", "2023-06-01T10:30"))
	require.Error(t, validateTextInput("datetime-local", "not-a-date"))
}

func TestValidateTextInput_Unconstrained(t *testing.T) {
	require.NoError(t, validateTextInput("text", "anything at all"))
}

func TestValidateTextInput_NumberRejectsDecimals(t *testing.T) {
	require.NoError(t, validateTextInput("number", "42"))
	require.NoError(t, validateTextInput("number", "-7"))
	require.Error(t, validateTextInput("number", "1.5"))
	require.Error(t, validateTextInput("number", "not-a-number"))
}
