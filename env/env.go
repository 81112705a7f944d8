// Package env defines the narrow external-collaborator interfaces of §6
// (Tokenizer, Frame, Token manager, Env, Data Access) that the core depends
// on but does not implement, plus the two pieces of legitimate process-wide
// state named in §5 and §9: the monotonic about-ID counter and the
// read-only site configuration.
package env

import (
	"log/slog"
	"sync/atomic"

	"github.com/wikimedia/parsoid-core-go/token"
)

// LogLevel mirrors the handful of severities the core actually emits.
type LogLevel int

const (
	LevelInfo LogLevel = iota
	LevelWarn
	LevelError
)

// Env is the host-provided environment a pipeline run is given: site
// configuration, the about-ID allocator, and a logger. It is the single
// dependency-injected point of contact with anything resembling ambient
// state (§9 "Global state").
type Env interface {
	SiteConfig() *SiteConfig
	NewAboutID() string
	Log(level LogLevel, msg string, args ...any)
}

// Tokenizer is the external collaborator that re-tokenizes a wikitext
// fragment under a named grammar rule (§6 "Tokenizer collaborator").
type Tokenizer interface {
	TokenizeAs(source, rule string, sol bool) ([]token.Token, error)
}

// Frame carries the current source string a token's tsr/srcOffsets index
// into, used by the attribute expander to extract unwrappedWT substrings
// (§6 "Frame").
type Frame interface {
	GetSrcText() string
}

// TokenManager accepts a handler's retry signal and re-invokes it on the
// rewritten stream (§6 "Token manager", §9 "Token-stream re-entry").
type TokenManager interface {
	Retry(tokens []token.Token)
}

// DataAccess groups the page/file/template fetchers and wikitext
// pre/post-processing calls the surrounding pipeline exposes; the core
// never calls these directly, only handlers that are themselves external
// collaborators per §1's scope boundary. Declared here so a host can wire
// one implementation through to everything it constructs.
type DataAccess interface {
	GetPageInfo(titles []string) (any, error)
	GetFileInfo(files []string) (any, error)
	DoPst(wikitext string) (string, error)
	ParseWikitext(wikitext string) (any, error)
	PreprocessWikitext(wikitext string) (string, error)
	FetchPageContent(title string, oldid string) (string, error)
	FetchTemplateData(title string) (any, error)
	LogLinterData(lints []LintEntry) error
}

// LintEntry is one warning the top-level driver aggregates into the page
// bundle's linter data channel (§7 "Propagation policy").
type LintEntry struct {
	Type    string
	Message string
	DSR     *[4]int
}

// AboutIDAllocator is the process-wide monotonic about-ID counter (§5, §9).
// It may be partitioned per document by constructing one instance per
// in-flight transformation, as the resource-scoping rules in §5 allow.
type AboutIDAllocator struct {
	counter int64
}

// Next returns the next "#mwtN" about id, using an atomic fetch-add so the
// allocator is safe to share across goroutines if a host chooses to.
func (a *AboutIDAllocator) Next() string {
	n := atomic.AddInt64(&a.counter, 1)
	return "#mwt" + itoa(n)
}

func itoa(n int64) string {
	if n == 0 {
		return "0"
	}
	neg := n < 0
	if neg {
		n = -n
	}
	var buf [20]byte
	i := len(buf)
	for n > 0 {
		i--
		buf[i] = byte('0' + n%10)
		n /= 10
	}
	if neg {
		i--
		buf[i] = '-'
	}
	return string(buf[i:])
}

// SlogEnv is a minimal Env built on an AboutIDAllocator, a SiteConfig, and
// log/slog (the structured-logging library the ambient stack standardizes
// on — see SPEC_FULL.md "Logging"). It is the Env a host binary (C10's CLI,
// or a test) typically constructs.
type SlogEnv struct {
	Config *SiteConfig
	IDs    *AboutIDAllocator
	Logger *slog.Logger
}

// NewSlogEnv builds an Env around the given site config and logger. If
// logger is nil, slog.Default() is used.
func NewSlogEnv(cfg *SiteConfig, logger *slog.Logger) *SlogEnv {
	if logger == nil {
		logger = slog.Default()
	}
	return &SlogEnv{Config: cfg, IDs: &AboutIDAllocator{}, Logger: logger}
}

func (e *SlogEnv) SiteConfig() *SiteConfig { return e.Config }
func (e *SlogEnv) NewAboutID() string      { return e.IDs.Next() }

func (e *SlogEnv) Log(level LogLevel, msg string, args ...any) {
	switch level {
	case LevelWarn:
		e.Logger.Warn(msg, args...)
	case LevelError:
		e.Logger.Error(msg, args...)
	default:
		e.Logger.Info(msg, args...)
	}
}
