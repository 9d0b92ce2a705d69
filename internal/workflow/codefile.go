package workflow

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/thruflo/nodewars/internal/api"
	"golang.org/x/text/unicode/norm"
)

// BeginCodeMarker separates the generated header from user-authored code.
// Everything after the line holding it is submitted.
const BeginCodeMarker = "&==BEGIN CODE==&"

const (
	markerLine  = BeginCodeMarker + " (DO NOT REMOVE THIS LINE)"
	headerTitle = "Nodewars: helps you choose practice over work"
	headerRule  = "--------"
	kataURLBase = "https://www.codewars.com/kata/"
	wrapWidth   = 80
)

// ErrMissingMarker is returned when a code file no longer contains
// BeginCodeMarker.
var ErrMissingMarker = errors.New("begin-code marker not found in code file")

var breakTag = regexp.MustCompile(`(?i)<br\s*/?>`)

// KataURL returns the public page for a challenge.
func KataURL(c *api.Challenge) string {
	if c.URL != "" {
		return c.URL
	}
	return kataURLBase + c.Slug
}

// BuildCodeFile renders the code template: a commented header describing
// the challenge, the provided setup and sample tests, the marker line, and
// then the session's starter code.
func BuildCodeFile(lang Language, c *api.Challenge, ts *api.TrainingSession) string {
	width := wrapWidth - utf8.RuneCountInString(lang.CommentPrefix) - 1

	tags := make([]string, len(c.Tags))
	for i, tag := range c.Tags {
		tags[i] = strings.ToLower(tag)
	}

	header := []string{
		headerTitle,
		headerRule,
		fmt.Sprintf("kata: %s [%s / %s]", c.Name, c.Category, c.Rank.Name),
		fmt.Sprintf("by:   %s (%s)", c.CreatedBy.Username, c.CreatedBy.URL),
		"url:  " + KataURL(c),
		"tags: " + strings.Join(tags, " | "),
		"description:",
	}
	header = append(header, WrapText(c.Description, width)...)
	header = append(header, headerRule, "provided code:")
	header = append(header, splitLines(ts.Session.Setup)...)
	header = append(header, "", "sample tests:")
	header = append(header, splitLines(ts.Session.ExampleFixture)...)
	header = append(header, "", markerLine)

	var sb strings.Builder
	for _, line := range header {
		sb.WriteString(strings.TrimRight(lang.CommentPrefix+" "+line, " "))
		sb.WriteByte('\n')
	}
	sb.WriteString(ts.Session.StarterCode())
	return sb.String()
}

// ExtractCode returns everything after the marker line.
func ExtractCode(content string) (string, error) {
	idx := strings.Index(content, BeginCodeMarker)
	if idx < 0 {
		return "", ErrMissingMarker
	}
	nl := strings.IndexByte(content[idx:], '\n')
	if nl < 0 {
		return "", nil
	}
	return content[idx+nl+1:], nil
}

// WrapText normalizes text, turns <br> tags into line breaks, and word-wraps
// each line to width runes. Words longer than width are kept whole.
func WrapText(text string, width int) []string {
	var out []string
	for _, line := range splitLines(breakTag.ReplaceAllString(text, "\n")) {
		out = append(out, wrapLine(line, width)...)
	}
	return out
}

func wrapLine(line string, width int) []string {
	words := strings.Fields(line)
	if len(words) == 0 {
		return []string{""}
	}

	var lines []string
	var cur strings.Builder
	curLen := 0
	for _, word := range words {
		n := utf8.RuneCountInString(word)
		if curLen > 0 && curLen+1+n > width {
			lines = append(lines, cur.String())
			cur.Reset()
			curLen = 0
		}
		if curLen > 0 {
			cur.WriteByte(' ')
			curLen++
		}
		cur.WriteString(word)
		curLen += n
	}
	return append(lines, cur.String())
}

func splitLines(text string) []string {
	text = norm.NFC.String(text)
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.TrimRight(text, "\n")
	if text == "" {
		return nil
	}
	return strings.Split(text, "\n")
}
