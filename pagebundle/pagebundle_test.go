package pagebundle_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wikimedia/parsoid-core-go/pagebundle"
)

func TestMarshalUnmarshalRoundTrip(t *testing.T) {
	b := &pagebundle.Bundle{
		HTML:    "<p>hi</p>",
		Version: "2.4.0",
		DataParsoid: &pagebundle.Section{
			IDs: pagebundle.IDMap{"mwAA": json.RawMessage(`{"dsr":[0,2,0,0]}`)},
		},
	}
	data, err := pagebundle.Marshal(b)
	require.NoError(t, err)

	out, err := pagebundle.Unmarshal(data)
	require.NoError(t, err)
	assert.Equal(t, b.HTML, out.HTML)
	assert.Equal(t, b.Version, out.Version)
	assert.Contains(t, string(out.DataParsoid.IDs["mwAA"]), "dsr")
}

func TestValidateRequiresDataParsoidIds(t *testing.T) {
	b := &pagebundle.Bundle{HTML: "<p>x</p>", Version: "2.4.0"}
	ok, msg := b.Validate()
	assert.False(t, ok)
	assert.Contains(t, msg, "data-parsoid.ids")
}

func TestValidateRequiresDataMwIdsForMajorVersion999(t *testing.T) {
	b := &pagebundle.Bundle{
		HTML:        "<p>x</p>",
		Version:     "999.0.0",
		DataParsoid: &pagebundle.Section{IDs: pagebundle.IDMap{"mwAA": json.RawMessage(`{}`)}},
	}
	ok, msg := b.Validate()
	assert.False(t, ok)
	assert.Contains(t, msg, "data-mw.ids")

	b.DataMw = &pagebundle.Section{IDs: pagebundle.IDMap{"mwAA": json.RawMessage(`{}`)}}
	ok, msg = b.Validate()
	assert.True(t, ok)
	assert.Empty(t, msg)
}

func TestValidateSkipsDataMwIdsBelowVersion999(t *testing.T) {
	b := &pagebundle.Bundle{
		HTML:        "<p>x</p>",
		Version:     "2.4.0",
		DataParsoid: &pagebundle.Section{IDs: pagebundle.IDMap{"mwAA": json.RawMessage(`{}`)}},
	}
	ok, _ := b.Validate()
	assert.True(t, ok)
}

func TestValidationErrWrapsFailureAsKindedError(t *testing.T) {
	b := &pagebundle.Bundle{HTML: "<p>x</p>", Version: "2.4.0"}
	err := b.ValidationErr()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "data-parsoid.ids")
}

func TestContentProfileEmbedsVersion(t *testing.T) {
	b := &pagebundle.Bundle{Version: "2.4.0"}
	assert.Contains(t, b.ContentProfile(), "2.4.0")
}
