package format

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestBaht(t *testing.T) {
	t.Parallel()

	require.Equal(t, "฿0.00", Baht(0, "en"))
	require.Equal(t, "฿129.50", Baht(129.5, "en"))
	require.Equal(t, "฿1,234,567.89", Baht(1234567.891, "en"))
	require.Equal(t, "-฿12.00", Baht(-12, ""))
}

func TestNumber(t *testing.T) {
	t.Parallel()

	require.Equal(t, "12,500", Number(12500, "en"))
}

func TestDate(t *testing.T) {
	t.Parallel()

	require.Equal(t, "May 1, 2024", Date("2024-05-01", "en"))
	require.Equal(t, "May 1, 2024", Date("2024-05-01T10:11:12Z", "en"))
	require.Equal(t, "May 1, 2024", Date("2024-05-01T10:11:12.123456", "en"))
	require.Equal(t, "01/05/2024", Date("2024-05-01", "th"))
	require.Equal(t, "next week", Date(" next week ", "en"))
	require.Equal(t, "", Date("", "en"))
}

func TestMaskCard(t *testing.T) {
	t.Parallel()

	require.Equal(t, "•••• 4242", MaskCard("4242"))
	require.Equal(t, "•••• 4242", MaskCard("4111111111114242"))
	require.Empty(t, MaskCard(" "))
}
