package csv

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// serialize writes a table back to CSV text. Only valid for fields that do
// not contain commas.
func serialize(t *Table) string {
	var b strings.Builder
	b.WriteString(strings.Join(t.Header, ","))
	for _, r := range t.Records {
		b.WriteString("\n")
		b.WriteString(strings.Join(r.Values(), ","))
	}
	return b.String()
}

func TestParse(t *testing.T) {
	table := Parse("Industry,Emissions,Regulation\nSteel,1200,EU ETS\nCement,800,UK Carbon Tax\n")

	assert.Equal(t, []string{"Industry", "Emissions", "Regulation"}, table.Header)
	require.Equal(t, 2, table.Len())
	assert.Equal(t, map[string]string{
		"Industry":   "Steel",
		"Emissions":  "1200",
		"Regulation": "EU ETS",
	}, table.Records[0].Map())
	assert.Equal(t, []string{"Cement", "800", "UK Carbon Tax"}, table.Records[1].Values())
}

func TestParse_RecordCountAndKeys(t *testing.T) {
	for _, tc := range []struct {
		cols, rows int
	}{
		{1, 0}, {1, 1}, {3, 4}, {7, 20},
	} {
		t.Run(fmt.Sprintf("%dx%d", tc.cols, tc.rows), func(t *testing.T) {
			header := make([]string, tc.cols)
			for i := range header {
				header[i] = fmt.Sprintf("h%d", i+1)
			}
			lines := []string{strings.Join(header, ",")}
			for r := 0; r < tc.rows; r++ {
				row := make([]string, tc.cols)
				for c := range row {
					row[c] = fmt.Sprintf("v%d_%d", r, c)
				}
				lines = append(lines, strings.Join(row, ","))
			}

			table := Parse(strings.Join(lines, "\n"))

			require.Len(t, table.Records, tc.rows)
			for _, rec := range table.Records {
				assert.Equal(t, header, rec.Keys())
			}
		})
	}
}

func TestParse_RoundTrip(t *testing.T) {
	text := "Regulation,Status,Deadline\nEU ETS,Compliant,2024-06-15\nUS EPA,Pending,2024-04-20\nUK Carbon Tax,,"
	first := Parse(text)
	second := Parse(serialize(first))

	assert.Equal(t, first.Header, second.Header)
	require.Equal(t, first.Len(), second.Len())
	for i := range first.Records {
		assert.True(t, first.Records[i].Equal(second.Records[i]), "record %d differs", i)
	}
}

func TestParse_Idempotent(t *testing.T) {
	text := "a, b ,c\n1,2\n\n4,5,6,7"
	assert.Equal(t, Parse(text), Parse(text))
}

func TestParse_RaggedRow(t *testing.T) {
	table := Parse("h1,h2\nv1")

	require.Equal(t, 1, table.Len())
	assert.Equal(t, map[string]string{"h1": "v1", "h2": ""}, table.Records[0].Map())
}

func TestParse_ExtraFieldsDropped(t *testing.T) {
	table := Parse("h1,h2\na,b,c,d")

	require.Equal(t, 1, table.Len())
	assert.Equal(t, []string{"a", "b"}, table.Records[0].Values())
}

func TestParse_Whitespace(t *testing.T) {
	table := Parse(" h1 , h2 \n a , b ")

	assert.Equal(t, []string{"h1", "h2"}, table.Header)
	require.Equal(t, 1, table.Len())
	assert.Equal(t, map[string]string{"h1": "a", "h2": "b"}, table.Records[0].Map())
}

func TestParse_Empty(t *testing.T) {
	for _, text := range []string{"", "   ", "\n\n", "\uFEFF"} {
		table := Parse(text)
		assert.Equal(t, []string{""}, table.Header, "input %q", text)
		assert.Empty(t, table.Records, "input %q", text)
		assert.Equal(t, 0, table.Len())
	}
}

func TestParse_TrimSet(t *testing.T) {
	table := Parse("a,b\n\u0085x\u0085,\u00a0\u2028y\u3000")

	require.Equal(t, 1, table.Len())
	assert.Equal(t, "\u0085x\u0085", table.Records[0].Value("a"))
	assert.Equal(t, "y", table.Records[0].Value("b"))
}

func TestParse_HeaderOnly(t *testing.T) {
	table := Parse("Industry,Emissions\n")

	assert.Equal(t, []string{"Industry", "Emissions"}, table.Header)
	assert.Empty(t, table.Records)
}

func TestParse_CRLF(t *testing.T) {
	table := Parse("a,b\r\n1,2\r\n3,4\r\n")

	assert.Equal(t, []string{"a", "b"}, table.Header)
	require.Equal(t, 2, table.Len())
	assert.Equal(t, []string{"3", "4"}, table.Records[1].Values())
}

func TestParse_BlankInteriorLine(t *testing.T) {
	table := Parse("a,b\n1,2\n\n3,4")

	require.Equal(t, 3, table.Len())
	assert.Equal(t, map[string]string{"a": "", "b": ""}, table.Records[1].Map())
}

func TestParse_DuplicateHeaders(t *testing.T) {
	table := Parse("id,name,id\n1,steel,2")

	assert.Equal(t, []string{"id", "name", "id"}, table.Header)
	assert.Equal(t, []string{"id", "name"}, table.Columns())
	rec := table.Records[0]
	assert.Equal(t, []string{"id", "name"}, rec.Keys())
	assert.Equal(t, "2", rec.Value("id"))
}

func TestParse_NoNumericCoercion(t *testing.T) {
	table := Parse("value\n007\n1e3")

	assert.Equal(t, "007", table.Records[0].Value("value"))
	assert.Equal(t, "1e3", table.Records[1].Value("value"))
}

func TestTable_Head(t *testing.T) {
	table := Parse("n\n1\n2\n3\n4\n5\n6\n7")

	assert.Len(t, table.Head(5), 5)
	assert.Len(t, table.Head(0), 7)
	assert.Len(t, table.Head(-1), 7)
	assert.Len(t, table.Head(100), 7)
	assert.Equal(t, "1", table.Head(5)[0].Value("n"))
}
