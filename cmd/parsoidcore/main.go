// Command parsoidcore is a small batch CLI over the core's standalone
// operations: diffing two DOM snapshots, serializing a meta element or
// language-variant span in isolation, expanding a token's attributes, and
// validating a page bundle. No CLI-framework dependency appears anywhere
// in the reference corpus (dpotapov-go-pages/example/main.go is the
// closest ambient precedent: a main.go that wires dependencies by hand and
// reads flags with the standard library), so this wires stdlib `flag` and
// log/slog directly rather than introducing one.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"golang.org/x/net/html"

	"github.com/wikimedia/parsoid-core-go/domdiff"
	"github.com/wikimedia/parsoid-core-go/env"
	"github.com/wikimedia/parsoid-core-go/expander"
	"github.com/wikimedia/parsoid-core-go/pagebundle"
	"github.com/wikimedia/parsoid-core-go/store"
	"github.com/wikimedia/parsoid-core-go/token"
	"github.com/wikimedia/parsoid-core-go/wts"
)

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}))

	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	var err error
	switch os.Args[1] {
	case "diff":
		err = runDiff(os.Args[2:], logger)
	case "serialize-meta":
		err = runSerializeMeta(os.Args[2:], logger)
	case "expand-attrs":
		err = runExpandAttrs(os.Args[2:], logger)
	case "page-bundle":
		err = runPageBundle(os.Args[2:], logger)
	default:
		usage()
		os.Exit(2)
	}
	if err != nil {
		logger.Error(err.Error())
		os.Exit(1)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, "usage: parsoidcore <diff|serialize-meta|expand-attrs|page-bundle> [flags]")
}

func runDiff(args []string, logger *slog.Logger) error {
	fs := flag.NewFlagSet("diff", flag.ExitOnError)
	oldPath := fs.String("old", "", "path to the old HTML file")
	newPath := fs.String("new", "", "path to the new HTML file")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *oldPath == "" || *newPath == "" {
		return fmt.Errorf("diff requires -old and -new")
	}

	oldDoc, err := parseFile(*oldPath)
	if err != nil {
		return err
	}
	newDoc, err := parseFile(*newPath)
	if err != nil {
		return err
	}

	s := store.New()
	changed := domdiff.Diff(s, oldDoc, newDoc)
	logger.Info("diff complete", "changed", changed)
	fmt.Println(changed)
	return nil
}

func runSerializeMeta(args []string, logger *slog.Logger) error {
	fs := flag.NewFlagSet("serialize-meta", flag.ExitOnError)
	inPath := fs.String("in", "", "path to a standalone <meta> or language-variant span fragment")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *inPath == "" {
		return fmt.Errorf("serialize-meta requires -in")
	}
	data, err := os.ReadFile(*inPath)
	if err != nil {
		return err
	}
	frag, err := html.ParseFragment(strings.NewReader(string(data)), &html.Node{Type: html.ElementNode, Data: "body"})
	if err != nil {
		return err
	}
	if len(frag) == 0 {
		return fmt.Errorf("no element parsed from %s", *inPath)
	}

	s := store.New()
	site := env.DefaultSiteConfig()
	e := env.NewSlogEnv(site, logger)
	d := wts.NewDispatcher(s, site, e)
	st := wts.NewState()
	d.Dispatch(st, frag[0])
	fmt.Println(st.Out())
	return nil
}

func runPageBundle(args []string, logger *slog.Logger) error {
	fs := flag.NewFlagSet("page-bundle", flag.ExitOnError)
	inPath := fs.String("in", "", "path to a page bundle JSON file")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *inPath == "" {
		return fmt.Errorf("page-bundle requires -in")
	}
	data, err := os.ReadFile(*inPath)
	if err != nil {
		return err
	}
	b, err := pagebundle.Unmarshal(data)
	if err != nil {
		return err
	}
	ok, msg := b.Validate()
	if !ok {
		logger.Warn("page bundle invalid", "reason", msg)
		return fmt.Errorf("invalid page bundle: %s", msg)
	}
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(map[string]any{"valid": true, "profile": b.ContentProfile()})
}

// cliToken is the JSON wire shape for one token/plain-string attribute value
// fed to expand-attrs over stdin. A KV's key or value is either a plain
// string (kTokens/vTokens omitted) or a token list (kTokens/vTokens given),
// matching token.KV's "string or []Token" duality.
type cliToken struct {
	Kind     string `json:"kind"`
	Text     string `json:"text,omitempty"`
	Typeof   string `json:"typeof,omitempty"`
	TSRStart int    `json:"tsrStart,omitempty"`
	TSREnd   int    `json:"tsrEnd,omitempty"`
}

type cliKV struct {
	K       string     `json:"k,omitempty"`
	KTokens []cliToken `json:"kTokens,omitempty"`
	V       string     `json:"v,omitempty"`
	VTokens []cliToken `json:"vTokens,omitempty"`
}

type expandAttrsInput struct {
	Name     string  `json:"name"`
	TSRStart int     `json:"tsrStart"`
	TSREnd   int     `json:"tsrEnd"`
	FrameSrc string  `json:"frameSrc"`
	Attribs  []cliKV `json:"attribs"`
}

type expandAttrsOutputToken struct {
	Kind    string  `json:"kind"`
	Name    string  `json:"name,omitempty"`
	Attribs []outKV `json:"attribs,omitempty"`
}

type outKV struct {
	K string `json:"k"`
	V string `json:"v"`
}

type expandAttrsOutput struct {
	Tokens []expandAttrsOutputToken `json:"tokens"`
	Retry  bool                     `json:"retry"`
}

func cliTokToToken(t cliToken) token.Token {
	switch t.Kind {
	case "newline":
		return token.NewNewline()
	case "meta":
		var da *token.DataAttribs
		if t.TSRStart != 0 || t.TSREnd != 0 {
			da = &token.DataAttribs{TSR: &[2]int{t.TSRStart, t.TSREnd}}
		}
		return token.NewSelfClosingTag("meta", []token.KV{{K: "typeof", V: t.Typeof}}, da)
	default:
		return token.NewText(t.Text)
	}
}

func cliKVToKV(kv cliKV) token.KV {
	out := token.KV{K: kv.K, V: kv.V}
	if len(kv.KTokens) > 0 {
		toks := make([]token.Token, len(kv.KTokens))
		for i, t := range kv.KTokens {
			toks[i] = cliTokToToken(t)
		}
		out.K = toks
	}
	if len(kv.VTokens) > 0 {
		toks := make([]token.Token, len(kv.VTokens))
		for i, t := range kv.VTokens {
			toks[i] = cliTokToToken(t)
		}
		out.V = toks
	}
	return out
}

func renderKV(kv token.KV) outKV {
	k, ok := kv.KStr()
	if !ok {
		k = "<tokens>"
	}
	v, ok := kv.VStr()
	if !ok {
		v = "<tokens>"
	}
	return outKV{K: k, V: v}
}

// staticFrame adapts a plain string into env.Frame for a CLI invocation that
// has no surrounding pipeline source buffer of its own.
type staticFrame string

func (f staticFrame) GetSrcText() string { return string(f) }

// runExpandAttrs drives the attribute expander (C4) over a single token read
// as JSON from stdin, and writes the resulting token(s) as JSON to stdout.
func runExpandAttrs(args []string, logger *slog.Logger) error {
	fs := flag.NewFlagSet("expand-attrs", flag.ExitOnError)
	if err := fs.Parse(args); err != nil {
		return err
	}

	var in expandAttrsInput
	if err := json.NewDecoder(os.Stdin).Decode(&in); err != nil {
		return fmt.Errorf("decoding expand-attrs input: %w", err)
	}

	kvs := make([]token.KV, len(in.Attribs))
	for i, kv := range in.Attribs {
		kvs[i] = cliKVToKV(kv)
	}
	var da *token.DataAttribs
	if in.TSRStart != 0 || in.TSREnd != 0 {
		da = &token.DataAttribs{TSR: &[2]int{in.TSRStart, in.TSREnd}}
	}
	tok := token.NewTag(in.Name, kvs, da)

	site := env.DefaultSiteConfig()
	e := env.NewSlogEnv(site, logger)
	exp := expander.New(staticFrame(in.FrameSrc), nil, e)
	res := exp.OnAny(tok)

	out := expandAttrsOutput{Retry: res.Retry}
	for _, tk := range res.Tokens {
		ot := expandAttrsOutputToken{Kind: tk.Kind.String(), Name: tk.Name}
		for _, kv := range tk.Attribs {
			ot.Attribs = append(ot.Attribs, renderKV(kv))
		}
		out.Tokens = append(out.Tokens, ot)
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}

func parseFile(path string) (*html.Node, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return html.Parse(strings.NewReader(string(data)))
}
