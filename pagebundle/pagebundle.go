// Package pagebundle implements the page bundle codec (C7): the persisted
// `{html, data-parsoid, data-mw, version}` JSON envelope a host stores
// alongside a transformed document (§6 "Page bundle").
package pagebundle

import (
	"encoding/json"
	"fmt"
	"regexp"

	"github.com/wikimedia/parsoid-core-go/errs"
)

// IDMap is a node-ID-keyed table of per-node side-band records.
type IDMap map[string]json.RawMessage

// Section is the `{ids: {...}}` wrapper data-parsoid/data-mw each carry.
type Section struct {
	IDs IDMap `json:"ids,omitempty"`
}

// Bundle is the page bundle envelope.
type Bundle struct {
	HTML        string   `json:"html"`
	DataParsoid *Section `json:"data-parsoid,omitempty"`
	DataMw      *Section `json:"data-mw,omitempty"`
	Version     string   `json:"version"`
}

// profileTemplate is the MediaWiki content-negotiation profile URI
// template; see original_source/ for the spec URL this is modeled on.
const profileTemplate = "https://www.mediawiki.org/wiki/Specs/pagebundle/%s"

// dataMwRequiredVersion matches versions for which data-mw.ids is required
// (§6 "data-mw.ids required when version satisfies ^999.0.0"). A regexp is
// sufficient here; no pack example pulls in a semver library for this kind
// of single major-version gate.
var dataMwRequiredVersion = regexp.MustCompile(`^999\.`)

// Marshal renders b as page-bundle JSON.
func Marshal(b *Bundle) ([]byte, error) {
	return json.Marshal(b)
}

// Unmarshal parses page-bundle JSON into a Bundle.
func Unmarshal(data []byte) (*Bundle, error) {
	var b Bundle
	if err := json.Unmarshal(data, &b); err != nil {
		return nil, err
	}
	return &b, nil
}

// Validate checks the envelope invariants of §6, returning ok=false and an
// error message (never a Go error) on violation, per the ValidationError
// error kind (§7): validate() returns false with errorMessage set.
func (b *Bundle) Validate() (bool, string) {
	if b.DataParsoid == nil || b.DataParsoid.IDs == nil {
		return false, "data-parsoid.ids is required"
	}
	if dataMwRequiredVersion.MatchString(b.Version) {
		if b.DataMw == nil || b.DataMw.IDs == nil {
			return false, "data-mw.ids is required for version " + b.Version
		}
	}
	return true, ""
}

// ValidationErr wraps Validate's failure as a kinded error, for callers
// that want the uniform errs.Error shape instead of the (bool, string)
// return.
func (b *Bundle) ValidationErr() error {
	if ok, msg := b.Validate(); !ok {
		return errs.New(errs.ValidationError, "%s", msg)
	}
	return nil
}

// ContentProfile builds the content-type `profile` parameter value for
// this bundle's version.
func (b *Bundle) ContentProfile() string {
	return fmt.Sprintf(profileTemplate, b.Version)
}
