package richtext

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRenderMarkdown(t *testing.T) {
	t.Parallel()

	out := string(Render("**Reusable** bamboo brush\n\n- compostable handle\n- BPA free"))
	require.Contains(t, out, "<strong>Reusable</strong>")
	require.Contains(t, out, "<li>compostable handle</li>")
}

func TestRenderStripsScripts(t *testing.T) {
	t.Parallel()

	out := string(Render("hello <script>alert(1)</script> [x](javascript:alert(1)) [site](https://example.com)"))
	require.NotContains(t, out, "<script")
	require.NotContains(t, out, "javascript:")
	require.Contains(t, out, `rel="nofollow"`)
}

func TestRenderEmpty(t *testing.T) {
	t.Parallel()

	require.Empty(t, string(Render("   ")))
	require.Empty(t, Plain(""))
}

func TestPlain(t *testing.T) {
	t.Parallel()

	out := Plain("# Tote\n\nMade from *recycled* cotton & jute")
	require.Equal(t, "Tote Made from recycled cotton & jute", out)
	require.False(t, strings.Contains(out, "<"))
}
