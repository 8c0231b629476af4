package records

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseAmount(t *testing.T) {
	tests := []struct {
		in      string
		want    float64
		wantErr bool
	}{
		{"$1,234.50", 1234.50, false},
		{"$0.00", 0, false},
		{"$50.00", 50, false},
		{"-$12.30", -12.30, false},
		{"AUD $9.99", 9.99, false},
		{"pending", 0, true},
		{"", 0, true},
	}

	for _, tt := range tests {
		got, err := ParseAmount(tt.in)
		if tt.wantErr {
			assert.Error(t, err, tt.in)
			continue
		}
		require.NoError(t, err, tt.in)
		assert.InDelta(t, tt.want, got, 0.0001, tt.in)
	}
}

func TestAmountRequiresCurrencyMarker(t *testing.T) {
	// A numeric cell without a marker is never the amount cell.
	row := Row{Cells: []string{"200", "1234.50"}, Link: "200"}
	_, ok := row.Amount()
	assert.False(t, ok)

	row = Row{Cells: []string{"200", "$1,234.50"}, Link: "200"}
	v, ok := row.Amount()
	require.True(t, ok)
	assert.InDelta(t, 1234.50, v, 0.0001)
}

func TestSelectTarget(t *testing.T) {
	t.Run("first positive amount wins", func(t *testing.T) {
		rows := []Row{
			{Cells: []string{"100", "$0.00"}, Link: "100"},
			{Cells: []string{"200", "$50.00"}, Link: "200"},
			{Cells: []string{"300", "$75.00"}, Link: "300"},
		}
		target, ok := SelectTarget(rows)
		require.True(t, ok)
		assert.Equal(t, "200", target.Link)
	})

	t.Run("zero amounts never qualify", func(t *testing.T) {
		rows := []Row{
			{Cells: []string{"100", "$0.00"}, Link: "100"},
			{Cells: []string{"200", "$0.00"}, Link: "200"},
		}
		_, ok := SelectTarget(rows)
		assert.False(t, ok)
	})

	t.Run("rows without link labels are skipped", func(t *testing.T) {
		rows := []Row{
			{Cells: []string{"header", "$99.00"}},
			{Cells: []string{"200", "$50.00"}, Link: "200"},
		}
		target, ok := SelectTarget(rows)
		require.True(t, ok)
		assert.Equal(t, "200", target.Link)
	})

	t.Run("empty input", func(t *testing.T) {
		_, ok := SelectTarget(nil)
		assert.False(t, ok)
	})
}

func TestParseTable(t *testing.T) {
	html := `
	<table>
	  <thead><tr><th>Invoice</th><th>Issued</th><th>Amount</th></tr></thead>
	  <tbody>
	    <tr><td><a href="/inv/100">100</a></td><td>2026-07-01</td><td>$0.00</td></tr>
	    <tr><td><a href="/inv/200">  200 </a></td><td>2026-08-01</td><td>$50.00</td></tr>
	  </tbody>
	</table>`

	rows, err := ParseTable(html)
	require.NoError(t, err)
	require.Len(t, rows, 2)

	assert.Equal(t, "100", rows[0].Link)
	assert.Equal(t, []string{"100", "2026-07-01", "$0.00"}, rows[0].Cells)
	assert.Equal(t, "200", rows[1].Link)

	target, ok := SelectTarget(rows)
	require.True(t, ok)
	assert.Equal(t, "200", target.Link)
}

func TestParseTableNoRows(t *testing.T) {
	rows, err := ParseTable(`<div>No results found</div>`)
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestFirstInvoiceLink(t *testing.T) {
	tests := []struct {
		name  string
		links []string
		want  string
		ok    bool
	}{
		{"first long numeric wins", []string{"Home", "1234", "987654", "555555"}, "987654", true},
		{"trims whitespace", []string{" 123456 "}, "123456", true},
		{"mixed text rejected", []string{"inv-123456", "order 98765x"}, "", false},
		{"short numbers rejected", []string{"1", "22", "4444"}, "", false},
		{"empty input", nil, "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := FirstInvoiceLink(tt.links)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}
