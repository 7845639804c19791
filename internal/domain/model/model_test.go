package model

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func rate(t *testing.T, s string) *Rate {
	t.Helper()
	r, err := NewRate(s)
	require.NoError(t, err)
	return &r
}

func TestParseRateType(t *testing.T) {
	rt, ok := ParseRateType("Spot_Buying_Rate")
	assert.True(t, ok)
	assert.Equal(t, SpotBuying, rt)

	_, ok = ParseRateType("spot_rate")
	assert.False(t, ok)
}

func TestThreshold_Valid(t *testing.T) {
	assert.True(t, (&Threshold{Min: rate(t, "700")}).Valid())
	assert.True(t, (&Threshold{Min: rate(t, "700"), Max: rate(t, "700")}).Valid())
	assert.False(t, (&Threshold{Min: rate(t, "800"), Max: rate(t, "700")}).Valid())

	var nilTh *Threshold
	assert.True(t, nilTh.Valid())
	assert.True(t, nilTh.Empty())
	assert.Nil(t, nilTh.Bound(SideMin))
}

func TestThreshold_CloneOfNil(t *testing.T) {
	var th *Threshold
	clone := th.Clone()
	require.NotNil(t, clone)
	assert.True(t, clone.Empty())
}

func TestDocument_FindIsCaseInsensitive(t *testing.T) {
	doc := &Document{Currencies: []*Currency{{Name: "US Dollar", Code: "USD"}}}
	assert.NotNil(t, doc.Find("usd"))
	assert.Nil(t, doc.Find("JPY"))
}

func TestDocument_EnsureCreatesPlaceholder(t *testing.T) {
	doc := &Document{}
	cur := doc.Ensure("eur")
	assert.Equal(t, "EUR", cur.Code)
	assert.Equal(t, "EUR", cur.Name, "placeholder name follows the normalized code")
	assert.Same(t, cur, doc.Ensure("EUR"))
	assert.Len(t, doc.Currencies, 1)
}

func TestDocument_CloneIsDeep(t *testing.T) {
	doc := &Document{
		Currencies: []*Currency{
			{
				Name: "US Dollar",
				Code: "USD",
				Conditions: map[RateType]*Threshold{
					SpotBuying: {Min: rate(t, "700")},
				},
			},
		},
		Processed: []string{"<a@mail>"},
	}

	clone := doc.Clone()
	clone.Currencies[0].Conditions[SpotBuying].SetBound(SideMax, *rate(t, "750"))
	clone.Currencies[0].Conditions[CashBuying] = &Threshold{Min: rate(t, "1")}
	clone.MarkProcessed("<b@mail>")

	assert.Nil(t, doc.Currencies[0].Conditions[SpotBuying].Max)
	assert.NotContains(t, doc.Currencies[0].Conditions, CashBuying)
	assert.Equal(t, []string{"<a@mail>"}, doc.Processed)
}

func TestDocument_MarkProcessed(t *testing.T) {
	doc := &Document{}

	doc.MarkProcessed("<a@mail>")
	doc.MarkProcessed("<a@mail>")
	doc.MarkProcessed("")

	assert.Equal(t, []string{"<a@mail>"}, doc.Processed)
	assert.True(t, doc.IsProcessed("<a@mail>"))
	assert.False(t, doc.IsProcessed("<b@mail>"))
}

func TestDocument_ProcessedLogIsCapped(t *testing.T) {
	doc := &Document{}
	for i := 0; i < processedLogCap+10; i++ {
		doc.MarkProcessed(fmt.Sprintf("<%d@mail>", i))
	}

	assert.Len(t, doc.Processed, processedLogCap)
	assert.False(t, doc.IsProcessed("<0@mail>"), "oldest identifiers drop off")
	assert.True(t, doc.IsProcessed(fmt.Sprintf("<%d@mail>", processedLogCap+9)))
}
