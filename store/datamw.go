package store

import "encoding/json"

// AttribValue is one side (k or v) of a templated-attribute entry recorded
// in data-mw.attribs (§4.4 step 8, §9 "Templated attribute payload"). HTML
// holds the *serialized* original token fragment, never a live DOM
// reference, so the page-bundle JSON never cycles back into the DOM.
type AttribValue struct {
	Txt        string          `json:"txt,omitempty"`
	HTML       json.RawMessage `json:"html,omitempty"`
	SrcOffsets *[2]int         `json:"srcOffsets,omitempty"`
}

// AttribPair is one {k,v} entry of data-mw.attribs.
type AttribPair struct {
	K AttribValue `json:"k"`
	V AttribValue `json:"v"`
}

// ExtBody is an extension tag's body payload, e.g. {"extsrc": "...raw..."}.
type ExtBody struct {
	ExtSrc string `json:"extsrc,omitempty"`
}

// DataMw is the template/extension payload attached to the first element of
// an encapsulation group (§3.3).
type DataMw struct {
	Name    string            `json:"name,omitempty"`
	Attrs   map[string]string `json:"attrs,omitempty"`
	Body    *ExtBody          `json:"body,omitempty"`
	Attribs []AttribPair      `json:"attribs,omitempty"`
}

// Clone deep-copies a DataMw record.
func (dm *DataMw) Clone() *DataMw {
	if dm == nil {
		return nil
	}
	cp := *dm
	if dm.Attrs != nil {
		m := make(map[string]string, len(dm.Attrs))
		for k, v := range dm.Attrs {
			m[k] = v
		}
		cp.Attrs = m
	}
	if dm.Body != nil {
		b := *dm.Body
		cp.Body = &b
	}
	if dm.Attribs != nil {
		cp.Attribs = append([]AttribPair(nil), dm.Attribs...)
	}
	return &cp
}
