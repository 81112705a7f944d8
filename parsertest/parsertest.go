// Package parsertest implements the parser-test fixture reader (C8): a
// scanner over the `!! test` / `!! wikitext` / `!! html/parsoid` /
// `!! article` fixture format (§6 "Parser test format"), producing
// in-memory cases that pin the seed scenarios of spec.md §8.
package parsertest

import (
	"bufio"
	"strings"
)

// TestCase is one `!! test ... !! end` block.
type TestCase struct {
	Name        string
	Wikitext    string
	HTMLPhpTidy string
	HTMLParsoid string
	Hooks       string
}

// Article is one `!! article ... !! endarticle` block: a named page whose
// wikitext is available to templates/transclusions referenced by a
// TestCase.
type Article struct {
	Title    string
	Wikitext string
}

// Fixture is the parsed contents of one fixture file.
type Fixture struct {
	Tests    []TestCase
	Articles []Article
}

// sectionKind enumerates the `!! ...` markers this scanner recognizes.
type sectionKind int

const (
	sectionNone sectionKind = iota
	sectionTest
	sectionArticle
	sectionWikitext
	sectionHTMLPhpTidy
	sectionHTMLParsoid
	sectionTitle
	sectionHooks
	sectionText
)

// Parse scans src and returns its test cases and articles.
func Parse(src string) Fixture {
	var fx Fixture
	var cur TestCase
	var art Article
	inTest, inArticle := false, false
	kind := sectionNone
	var buf strings.Builder

	flush := func() {
		body := strings.TrimSuffix(buf.String(), "\n")
		switch kind {
		case sectionWikitext:
			cur.Wikitext = body
		case sectionHTMLPhpTidy:
			cur.HTMLPhpTidy = body
		case sectionHTMLParsoid:
			cur.HTMLParsoid = body
		case sectionHooks:
			cur.Hooks = body
		case sectionText:
			art.Wikitext = body
		case sectionTitle:
			if inArticle {
				art.Title = body
			} else {
				cur.Name = body
			}
		}
		buf.Reset()
		kind = sectionNone
	}

	sc := bufio.NewScanner(strings.NewReader(src))
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for sc.Scan() {
		line := sc.Text()
		trimmed := strings.TrimSpace(line)
		if !strings.HasPrefix(trimmed, "!!") {
			if kind != sectionNone {
				buf.WriteString(line)
				buf.WriteByte('\n')
			}
			continue
		}

		marker := strings.TrimSpace(strings.TrimPrefix(trimmed, "!!"))
		rest := ""
		if sp := strings.IndexByte(marker, ' '); sp >= 0 {
			rest = strings.TrimSpace(marker[sp+1:])
			marker = marker[:sp]
		}

		switch marker {
		case "test":
			flush()
			cur = TestCase{Name: rest}
			inTest = true
			if rest == "" {
				kind = sectionTitle
			}
		case "article":
			flush()
			art = Article{Title: rest}
			inArticle = true
			if rest == "" {
				kind = sectionTitle
			}
		case "wikitext":
			flush()
			if inArticle {
				kind = sectionText
			} else {
				kind = sectionWikitext
			}
		case "text":
			flush()
			kind = sectionText
		case "html/php+tidy", "html+tidy":
			flush()
			kind = sectionHTMLPhpTidy
		case "html/parsoid", "html":
			flush()
			kind = sectionHTMLParsoid
		case "hooks":
			flush()
			kind = sectionHooks
		case "end":
			flush()
			if inTest {
				fx.Tests = append(fx.Tests, cur)
				inTest = false
			}
		case "endarticle":
			flush()
			if inArticle {
				fx.Articles = append(fx.Articles, art)
				inArticle = false
			}
		default:
			flush()
		}
	}
	return fx
}
