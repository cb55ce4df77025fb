package platform

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
)

func TestBuildTextComposesPrefixAndSuffix(t *testing.T) {
	spec := TextSpec{Prefix: "Daily: ", Suffix: " #art", MaxLength: 100}
	assert.Equal(t, "Daily: hello #art", BuildText(spec, "hello"))
}

func TestBuildTextNoShapingWhenUnconfigured(t *testing.T) {
	assert.Equal(t, "hello", BuildText(TextSpec{}, "hello"))
}

func TestBuildTextTruncatesWithEllipsis(t *testing.T) {
	spec := TextSpec{MaxLength: 10}
	got := BuildText(spec, "aaaaaaaaaaaaaaaaaaaa")

	assert.Equal(t, 10, utf8.RuneCountInString(got))
	assert.True(t, strings.HasSuffix(got, "…"))
	assert.Equal(t, strings.Repeat("a", 9)+"…", got)
}

func TestBuildTextUnderLimitUntouched(t *testing.T) {
	spec := TextSpec{MaxLength: 10}
	assert.Equal(t, "short", BuildText(spec, "short"))
}

func TestBuildTextExactLimitUntouched(t *testing.T) {
	spec := TextSpec{MaxLength: 5}
	assert.Equal(t, "aaaaa", BuildText(spec, "aaaaa"))
}

func TestBuildTextTruncatesOnRuneBoundaries(t *testing.T) {
	spec := TextSpec{MaxLength: 4}
	got := BuildText(spec, "日本語テキスト")

	assert.Equal(t, 4, utf8.RuneCountInString(got))
	assert.Equal(t, "日本語…", got)
	assert.True(t, utf8.ValidString(got))
}

func TestBuildTextTruncatesAfterShaping(t *testing.T) {
	// The limit applies to the shaped text, prefix included.
	spec := TextSpec{Prefix: "12345", MaxLength: 8}
	got := BuildText(spec, "abcdefgh")

	assert.Equal(t, 8, utf8.RuneCountInString(got))
	assert.Equal(t, "1234567…", got)
}
