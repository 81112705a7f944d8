// Package wts implements the Serializer Handlers (C5) and their shared
// chunk-emission/newline-budget state (C6): the Meta Serializer Handler
// (C5a), the Language-Variant Serializer Handler (C5b), and a dispatch
// table that routes an element to the right one (§9 "Dynamic dispatch
// across handlers").
//
// State is grounded on markdown.SerializerState from the document-model
// package this repo started from: the same Write/EnsureNewLine/CloseBlock
// chunk-and-margin discipline, renamed to the domain and generalized from a
// delimiter-prefixed block writer to a plain newline-budget writer (this
// domain has no notion of blockquote/list indentation delimiters).
package wts

import "strings"

// State tracks emitted wikitext and the pending newline-budget request
// across handler calls (§4.5 "Before/after spacing").
type State struct {
	out        strings.Builder
	pendingMin int
	wroteAny   bool
}

// NewState builds an empty serializer state.
func NewState() *State { return &State{} }

// Out returns the wikitext emitted so far.
func (s *State) Out() string { return s.out.String() }

// RequestMinNewlines records a handler's margin request; the largest
// pending request wins at the next Emit, mirroring
// markdown.SerializerState's Delim accumulation but for a newline count
// instead of a prefix string.
func (s *State) RequestMinNewlines(min int) {
	if min > s.pendingMin {
		s.pendingMin = min
	}
}

func (s *State) trailingNewlines() int {
	str := s.out.String()
	n := 0
	for i := len(str) - 1; i >= 0 && str[i] == '\n'; i-- {
		n++
	}
	return n
}

func (s *State) flushPending() {
	if !s.wroteAny {
		s.pendingMin = 0
		return
	}
	for s.trailingNewlines() < s.pendingMin {
		s.out.WriteByte('\n')
	}
	s.pendingMin = 0
}

// Emit writes literal wikitext, first satisfying any pending newline-budget
// request (markdown.SerializerState.Write renamed to the domain).
func (s *State) Emit(text string) {
	s.flushPending()
	if text == "" {
		return
	}
	s.out.WriteString(text)
	s.wroteAny = true
}

// EnsureNL ensures the output ends with at least one newline
// (markdown.SerializerState.EnsureNewLine renamed to the domain).
func (s *State) EnsureNL() {
	if s.wroteAny && s.trailingNewlines() == 0 {
		s.out.WriteByte('\n')
	}
}

// EmitConstrained writes a chunk the caller must not split or reflow
// (§4.6 step 9): the language-variant handler's "-{...}-" output.
func (s *State) EmitConstrained(text string) {
	s.Emit(text)
}
