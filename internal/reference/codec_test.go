package reference

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLine(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		line string
		want Record
		ok   bool
	}{
		{"upper case state", "123 multiply SAVED", Record{"123", "multiply", StateSaved}, true},
		{"lower case state", "123 multiply final", Record{"123", "multiply", StateFinal}, true},
		{"extra whitespace", "  123\tmultiply   QUEUED  ", Record{"123", "multiply", StateQueued}, true},
		{"legacy two fields", "123 multiply", Record{}, false},
		{"four fields", "123 multiply SAVED x", Record{}, false},
		{"unknown state", "123 multiply DONE", Record{}, false},
		{"blank", "", Record{}, false},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, ok := ParseLine(tt.line)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFormatLine(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "1 kata COMPLETED", FormatLine(Record{ID: "1", Slug: "kata", State: StateCompleted}))
}

func TestDecode_ReportsSkippedLineNumbers(t *testing.T) {
	t.Parallel()

	records, skipped := Decode([]byte("1 a SAVED\nbroken\n\n2 b ACTIVE\n"))
	require.Len(t, records, 2)
	assert.Equal(t, []int{2}, skipped)
}

func TestDecode_LongLine(t *testing.T) {
	t.Parallel()

	data := "1 a SAVED\n" + strings.Repeat("y", 128*1024) + "\n2 b ACTIVE"
	records, skipped := Decode([]byte(data))
	assert.Equal(t, []Record{
		{ID: "1", Slug: "a", State: StateSaved},
		{ID: "2", Slug: "b", State: StateActive},
	}, records)
	assert.Equal(t, []int{2}, skipped)
}

func TestEncodeDecode(t *testing.T) {
	t.Parallel()

	in := []Record{
		{ID: "1", Slug: "a", State: StateSaved},
		{ID: "2", Slug: "b", State: StateCompleted},
	}
	out, skipped := Decode(Encode(in))
	assert.Empty(t, skipped)
	assert.Equal(t, in, out)
}

func TestParseState(t *testing.T) {
	t.Parallel()

	for _, st := range States {
		got, err := ParseState(string(st))
		require.NoError(t, err)
		assert.Equal(t, st, got)
	}
	_, err := ParseState("archived")
	assert.Error(t, err)
}
