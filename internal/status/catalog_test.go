package status

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDefaultCatalogOrderTones(t *testing.T) {
	t.Parallel()

	want := map[string]string{
		"processing": "blue",
		"shipped":    "yellow",
		"delivered":  "green",
		"cancelled":  "red",
		"pending":    "purple",
	}
	for code, tone := range want {
		badge := Order(code)
		require.Equal(t, tone, badge.Tone, code)
		require.Equal(t, code, badge.Code)
	}
	require.Equal(t, "Delivered", Order(" DELIVERED ").Label)
	require.Equal(t, "red", Order("canceled").Tone)
}

func TestLookupUnknownCode(t *testing.T) {
	t.Parallel()

	badge := Order("on_hold")
	require.Equal(t, DefaultTone, badge.Tone)
	require.Equal(t, "On_hold", badge.Label)
	require.False(t, Default().Known(KindOrder, "on_hold"))

	require.Equal(t, "Unknown", Product("").Label)
}

func TestParseRejectsInvalidYAML(t *testing.T) {
	t.Parallel()

	_, err := Parse([]byte("order: [broken"))
	require.Error(t, err)

	cat, err := Parse([]byte("role:\n  staff:\n    label: Staff\n"))
	require.NoError(t, err)
	require.Equal(t, DefaultTone, cat.Lookup(KindRole, "staff").Tone)
}
