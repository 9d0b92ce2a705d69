package reference

import (
	"bytes"
	"fmt"
	"strings"
	"unicode"
)

// fieldCount is the number of whitespace-separated fields per line:
// id, slug, state.
const fieldCount = 3

// ParseLine decodes one data-file line. ok is false for blank lines, lines
// with the wrong field count, and lines with an unknown state.
func ParseLine(line string) (rec Record, ok bool) {
	fields := strings.Fields(line)
	if len(fields) != fieldCount {
		return Record{}, false
	}
	st, err := ParseState(fields[2])
	if err != nil {
		return Record{}, false
	}
	return Record{ID: fields[0], Slug: fields[1], State: st}, true
}

// FormatLine encodes a record as a single line without the trailing newline.
func FormatLine(rec Record) string {
	return fmt.Sprintf("%s %s %s", rec.ID, rec.Slug, rec.State)
}

// Decode parses a whole data file. Malformed lines are returned as skipped
// line numbers so callers can log them. Lines have no length limit.
func Decode(data []byte) (records []Record, skipped []int) {
	for i, raw := range bytes.Split(data, []byte{'\n'}) {
		lineNum := i + 1
		line := strings.TrimSpace(string(raw))
		if line == "" {
			continue
		}
		rec, ok := ParseLine(line)
		if !ok {
			skipped = append(skipped, lineNum)
			continue
		}
		records = append(records, rec)
	}
	return records, skipped
}

// Encode serializes records one per line, in order.
func Encode(records []Record) []byte {
	var buf bytes.Buffer
	for _, rec := range records {
		buf.WriteString(FormatLine(rec))
		buf.WriteByte('\n')
	}
	return buf.Bytes()
}

func validField(s string) bool {
	return s != "" && strings.IndexFunc(s, unicode.IsSpace) < 0
}
