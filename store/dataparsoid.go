package store

import "encoding/json"

// DataParsoid is the bookkeeping JSON Parsoid attaches to a generated
// element (§3.3). Fields unused by a given element are simply omitted from
// the marshaled form.
type DataParsoid struct {
	// Dsr is [src_start, src_end, opening_tag_width, closing_tag_width].
	Dsr *[4]int `json:"dsr,omitempty"`

	Stx               string `json:"stx,omitempty"`
	Src               string `json:"src,omitempty"`
	UnwrappedWT       string `json:"unwrappedWT,omitempty"`
	MagicSrc          string `json:"magicSrc,omitempty"`
	AutoInsertedStart bool   `json:"autoInsertedStart,omitempty"`
	AutoInsertedEnd   bool   `json:"autoInsertedEnd,omitempty"`

	// DPI is the load-time identity key the DOM diff uses to pair elements
	// across a pre-/post-edit tree when positional pairing is unreliable
	// (§4.3 step 1).
	DPI *int `json:"dpi,omitempty"`

	// FlSp / TSp are whitespace arrays for language-variant spans. The
	// language-variant handler reads FlSp[i] as the number of spaces to
	// emit after the i-th flag; it does not read TSp.
	FlSp []int `json:"flSp,omitempty"`
	TSp  []int `json:"tSp,omitempty"`

	// Fl carries the original per-flag source positions used to
	// re-sort flags into their original order (§4.6 step 6).
	Fl map[string]int `json:"fl,omitempty"`

	Tmp map[string]json.RawMessage `json:"tmp,omitempty"`
}

// Clone deep-copies a DataParsoid record.
func (dp *DataParsoid) Clone() *DataParsoid {
	if dp == nil {
		return nil
	}
	cp := *dp
	if dp.Dsr != nil {
		d := *dp.Dsr
		cp.Dsr = &d
	}
	if dp.DPI != nil {
		v := *dp.DPI
		cp.DPI = &v
	}
	if dp.FlSp != nil {
		cp.FlSp = append([]int(nil), dp.FlSp...)
	}
	if dp.TSp != nil {
		cp.TSp = append([]int(nil), dp.TSp...)
	}
	if dp.Fl != nil {
		m := make(map[string]int, len(dp.Fl))
		for k, v := range dp.Fl {
			m[k] = v
		}
		cp.Fl = m
	}
	return &cp
}

// HasSrc reports whether dp.Src is set and can be emitted verbatim (§4.5
// decision 1).
func (dp *DataParsoid) HasSrc() bool {
	return dp != nil && dp.Src != ""
}
