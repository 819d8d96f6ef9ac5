package report

import (
	"bytes"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kingrea/slcsp/internal/rates"
)

func sampleRows() []rates.OutputRow {
	return []rates.OutputRow{
		{Zipcode: "64148", Rate: decimal.NewNullDecimal(decimal.RequireFromString("245.2"))},
		{Zipcode: "40813"},
		{Zipcode: "54923", Rate: decimal.NewNullDecimal(decimal.RequireFromString("265.82"))},
	}
}

func TestRenderListsEveryRow(t *testing.T) {
	out := Render(sampleRows())

	assert.Contains(t, out, "zipcode")
	assert.Contains(t, out, "245.20")
	assert.Contains(t, out, "265.82")
	assert.Less(t, strings.Index(out, "64148"), strings.Index(out, "40813"))
	assert.Less(t, strings.Index(out, "40813"), strings.Index(out, "54923"))
}

func TestSelect(t *testing.T) {
	lookups := Select(sampleRows(), []string{"54923", "abc", "99999", " 64148 "})
	require.Len(t, lookups, 4)

	assert.NoError(t, lookups[0].Err)
	require.Len(t, lookups[0].Rows, 1)
	assert.Equal(t, "265.82", lookups[0].Rows[0].FormattedRate())

	assert.ErrorIs(t, lookups[1].Err, ErrMalformedZip)
	assert.ErrorIs(t, lookups[2].Err, ErrUnknownZip)

	assert.NoError(t, lookups[3].Err)
	assert.Equal(t, "64148", lookups[3].Rows[0].Zipcode)
}

func TestSelectRejectsSignedAndEmpty(t *testing.T) {
	for _, arg := range []string{"", "-1", "123.4"} {
		lookups := Select(sampleRows(), []string{arg})
		assert.ErrorIs(t, lookups[0].Err, ErrMalformedZip, arg)
	}
}

func TestWriteLookups(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteLookups(&buf, Select(sampleRows(), []string{"40813", "12x"})))

	out := buf.String()
	assert.Contains(t, out, "40813")
	assert.Contains(t, out, "Please re-check the zipcode: 12x")
	assert.NotContains(t, out, "64148")
}

func TestSummaryLine(t *testing.T) {
	line := SummaryLine(rates.Summary{Total: 1200, Resolved: 1150, Blank: 50})
	assert.Equal(t, "resolved 1,150 of 1,200 zip codes (50 blank)", line)
}

func TestSelectIgnoresLeadingZeros(t *testing.T) {
	rows := []rates.OutputRow{
		{Zipcode: "02108", Rate: decimal.NewNullDecimal(decimal.NewFromInt(310))},
		{Zipcode: "10001"},
	}
	lookups := Select(rows, []string{"2108", "010001", "0210"})
	require.Len(t, lookups, 3)

	require.NoError(t, lookups[0].Err)
	assert.Equal(t, "02108", lookups[0].Rows[0].Zipcode)
	require.NoError(t, lookups[1].Err)
	assert.Equal(t, "10001", lookups[1].Rows[0].Zipcode)
	assert.ErrorIs(t, lookups[2].Err, ErrUnknownZip)
}
