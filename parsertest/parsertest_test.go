package parsertest_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wikimedia/parsoid-core-go/parsertest"
)

const metaPlaceholderFixture = `
!! test
meta placeholder
!! wikitext
[[X
!! html/parsoid
<meta typeof="mw:Placeholder" data-parsoid='{"src":"[[X"}'/>
!! end
`

func TestParseSingleTestCase(t *testing.T) {
	fx := parsertest.Parse(metaPlaceholderFixture)
	require.Len(t, fx.Tests, 1)
	tc := fx.Tests[0]
	assert.Equal(t, "meta placeholder", tc.Name)
	assert.Equal(t, "[[X", tc.Wikitext)
	assert.Contains(t, tc.HTMLParsoid, `typeof="mw:Placeholder"`)
}

const multiSectionFixture = `
!! article
Template:Foo
!! text
hello from template
!! endarticle

!! test
language variant twoway
!! wikitext
-{zh-hans:X;zh-hant:Y}-
!! html/parsoid
<span typeof="mw:LanguageVariant" data-mw-variant='{"twoway":[{"l":"zh-hans","t":"X"},{"l":"zh-hant","t":"Y"}]}'/>
!! html/php+tidy
<p>X</p>
!! end

!! test
second case
!! wikitext
plain text
!! html/parsoid
<p>plain text</p>
!! end
`

func TestParseMultipleTestsAndArticles(t *testing.T) {
	fx := parsertest.Parse(multiSectionFixture)
	require.Len(t, fx.Articles, 1)
	assert.Equal(t, "Template:Foo", fx.Articles[0].Title)
	assert.Equal(t, "hello from template", fx.Articles[0].Wikitext)

	require.Len(t, fx.Tests, 2)
	assert.Equal(t, "language variant twoway", fx.Tests[0].Name)
	assert.Equal(t, "-{zh-hans:X;zh-hant:Y}-", fx.Tests[0].Wikitext)
	assert.Contains(t, fx.Tests[0].HTMLParsoid, "mw:LanguageVariant")
	assert.Equal(t, "<p>X</p>", fx.Tests[0].HTMLPhpTidy)

	assert.Equal(t, "second case", fx.Tests[1].Name)
	assert.Equal(t, "plain text", fx.Tests[1].Wikitext)
}

func TestParseIgnoresUnterminatedTrailingSection(t *testing.T) {
	fx := parsertest.Parse("!! test\nno end\n!! wikitext\nabc\n")
	assert.Empty(t, fx.Tests)
}

func TestParseHooksSection(t *testing.T) {
	fx := parsertest.Parse("!! test\nhooked\n!! hooks\npoem\n!! wikitext\nx\n!! end\n")
	require.Len(t, fx.Tests, 1)
	assert.Equal(t, "poem", fx.Tests[0].Hooks)
}
