package query

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveStatusToken_SingleCodes(t *testing.T) {
	for token, want := range map[string]int{
		"open":     StatusOpen,
		"pending":  StatusPending,
		"resolved": StatusResolved,
		"closed":   StatusClosed,
	} {
		filter, err := ResolveStatusToken(token)
		require.NoError(t, err, token)
		assert.Equal(t, []int{want}, filter.Codes, token)
		assert.False(t, filter.IsCustom(), token)
	}
}

func TestResolveStatusToken_UnresolvedExpandsToOpenAndPending(t *testing.T) {
	filter, err := ResolveStatusToken("unresolved")
	require.NoError(t, err)
	assert.Equal(t, []int{2, 3}, filter.Codes)
}

func TestResolveStatusToken_CaseInsensitive(t *testing.T) {
	filter, err := ResolveStatusToken(" Open ")
	require.NoError(t, err)
	assert.Equal(t, []int{2}, filter.Codes)
}

func TestResolveStatusToken_AwaitingL2IsCustomField(t *testing.T) {
	filter, err := ResolveStatusToken("awaiting_l2_response")
	require.NoError(t, err)

	require.True(t, filter.IsCustom())
	assert.Empty(t, filter.Codes)
	assert.Equal(t, FieldAwaitingL2, filter.Custom.Field)
	assert.Equal(t, KindCustomField, filter.Custom.Kind)
	assert.Equal(t, []string{"true"}, filter.Custom.Values)
}

func TestResolveStatusToken_UnknownToken(t *testing.T) {
	_, err := ResolveStatusToken("snoozed")
	requireDomainCode(t, err, "UNKNOWN_STATUS")
}

func TestStatusName(t *testing.T) {
	two := 2
	ninety := 90
	assert.Equal(t, "Open", StatusName(&two))
	assert.Equal(t, "Unknown (90)", StatusName(&ninety))
	assert.Equal(t, "Unknown", StatusName(nil))
}

func TestPriorityName(t *testing.T) {
	four := 4
	assert.Equal(t, "Urgent", PriorityName(&four))
	assert.Equal(t, "Unknown", PriorityName(nil))
}
