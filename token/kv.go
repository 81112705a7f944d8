package token

// KV is one key-value attribute pair on a tag-ish token (§3.2). Either side
// may be a plain string or, when the attribute is still templated, an
// unresolved token list.
type KV struct {
	K interface{} // string or []Token
	V interface{} // string or []Token
	KSrc       string
	VSrc       string
	SrcOffsets *SrcOffsets
}

// KStr returns the key as a string, and whether it is currently a plain
// string (as opposed to a pending token list).
func (kv KV) KStr() (string, bool) {
	s, ok := kv.K.(string)
	return s, ok
}

// VStr returns the value as a string, and whether it is currently a plain
// string.
func (kv KV) VStr() (string, bool) {
	s, ok := kv.V.(string)
	return s, ok
}

// KTokens returns the key as a token list, and whether it currently holds
// one (as opposed to an already-resolved string).
func (kv KV) KTokens() ([]Token, bool) {
	toks, ok := kv.K.([]Token)
	return toks, ok
}

// VTokens returns the value as a token list, and whether it currently holds
// one.
func (kv KV) VTokens() ([]Token, bool) {
	toks, ok := kv.V.([]Token)
	return toks, ok
}

// WithK returns a copy of kv with the key replaced.
func (kv KV) WithK(k interface{}) KV {
	kv.K = k
	return kv
}

// WithV returns a copy of kv with the value replaced.
func (kv KV) WithV(v interface{}) KV {
	kv.V = v
	return kv
}

// CloneKVs deep-copies a KV slice and the token lists it may hold, per §4.4
// "Deep-clone (tokens may be mutated downstream)".
func CloneKVs(kvs []KV) []KV {
	out := make([]KV, len(kvs))
	for i, kv := range kvs {
		cp := kv
		if toks, ok := kv.KTokens(); ok {
			cp.K = cloneTokens(toks)
		}
		if toks, ok := kv.VTokens(); ok {
			cp.V = cloneTokens(toks)
		}
		out[i] = cp
	}
	return out
}

func cloneTokens(toks []Token) []Token {
	out := make([]Token, len(toks))
	for i, t := range toks {
		cp := t
		if len(t.Attribs) > 0 {
			cp.Attribs = CloneKVs(t.Attribs)
		}
		out[i] = cp
	}
	return out
}
