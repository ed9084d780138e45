package envutil

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestStringReturnsDefaultWhenUnsetOrBlank(t *testing.T) {
	t.Setenv("SHOPCORE_TEST_STR", "   ")
	require.Equal(t, "fallback", String("SHOPCORE_TEST_STR", "fallback"))
	require.Equal(t, "fallback", String("SHOPCORE_TEST_STR_UNSET", "fallback"))
}

func TestStringTrimsWhitespace(t *testing.T) {
	t.Setenv("SHOPCORE_TEST_STR", "  value  ")
	require.Equal(t, "value", String("SHOPCORE_TEST_STR", "fallback"))
}

func TestIntFallsBackOnUnparsableOrUnset(t *testing.T) {
	t.Setenv("SHOPCORE_TEST_INT", "not-a-number")
	require.Equal(t, 7, Int("SHOPCORE_TEST_INT", 7))
	t.Setenv("SHOPCORE_TEST_INT", "42")
	require.Equal(t, 42, Int("SHOPCORE_TEST_INT", 7))
}

func TestFloatFallsBackOnUnparsableOrUnset(t *testing.T) {
	t.Setenv("SHOPCORE_TEST_FLOAT", "nope")
	require.Equal(t, 1.5, Float("SHOPCORE_TEST_FLOAT", 1.5))
	t.Setenv("SHOPCORE_TEST_FLOAT", "2.25")
	require.Equal(t, 2.25, Float("SHOPCORE_TEST_FLOAT", 1.5))
}

func TestBoolRecognizesTruthyStringsCaseInsensitively(t *testing.T) {
	for _, v := range []string{"1", "true", "TRUE", "yes", "Yes"} {
		t.Setenv("SHOPCORE_TEST_BOOL", v)
		require.True(t, Bool("SHOPCORE_TEST_BOOL", false), "expected %q to parse truthy", v)
	}
	for _, v := range []string{"0", "false", "no", ""} {
		t.Setenv("SHOPCORE_TEST_BOOL", v)
		require.Equal(t, v == "", Bool("SHOPCORE_TEST_BOOL", true), "expected %q to parse falsy unless unset", v)
	}
}
