package render

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/mattn/go-runewidth"

	"github.com/Zuo-Peng/mdc/internal/session"
)

const (
	colorReset   = "\033[0m"
	colorUser    = "\033[1;34m" // bold blue
	colorAssist  = "\033[1;32m" // bold green
	colorThink   = "\033[2;35m" // dim magenta for the pending answer
	colorDim     = "\033[2m"
	colorError   = "\033[1;31m"
	colorBoldRed = "\033[1;31m" // keyword highlights
)

type Options struct {
	Width    int    // wrap width (0 = no wrap)
	Thinking bool   // append a pending-answer line
	Query    string // terms to highlight in answers
	Plain    bool   // no ANSI colors
	// ErrorText marks an assistant message as a failed turn.
	ErrorText string
}

// stopWords are not highlighted as keywords.
var stopWords = map[string]bool{
	"a": true, "an": true, "and": true, "is": true, "of": true,
	"or": true, "the": true, "to": true, "what": true, "who": true,
}

// highlightKeywords wraps case-insensitive matches of query terms in bold red
// ANSI codes. Matches are found in one left-to-right pass over the original
// text, longest term first at each position, so highlights never overlap and
// never land inside an inserted escape sequence.
func highlightKeywords(text, query string) string {
	terms := keywordTerms(query)
	if len(terms) == 0 {
		return text
	}

	var b strings.Builder
	last := 0
	for i := 0; i < len(text); {
		n := 0
		for _, term := range terms {
			if k := foldPrefix(text[i:], term); k > n {
				n = k
			}
		}
		if n == 0 {
			_, size := utf8.DecodeRuneInString(text[i:])
			i += size
			continue
		}
		b.WriteString(text[last:i])
		b.WriteString(colorBoldRed)
		b.WriteString(text[i : i+n])
		b.WriteString(colorReset)
		i += n
		last = i
	}
	if last == 0 {
		return text
	}
	b.WriteString(text[last:])
	return b.String()
}

// keywordTerms splits a query into highlightable terms, dropping punctuation
// and stop words.
func keywordTerms(query string) []string {
	var terms []string
	for _, t := range strings.Fields(query) {
		t = strings.Trim(t, "?!.,;:\"'")
		if t == "" || stopWords[strings.ToLower(t)] {
			continue
		}
		terms = append(terms, t)
	}
	return terms
}

// foldPrefix reports how many bytes at the start of s match term under
// simple case folding, or 0 when s does not start with term.
func foldPrefix(s, term string) int {
	n := 0
	for _, tr := range term {
		if n >= len(s) {
			return 0
		}
		r, size := utf8.DecodeRuneInString(s[n:])
		if r != tr && !strings.EqualFold(string(r), string(tr)) {
			return 0
		}
		n += size
	}
	return n
}

// indentLines prepends each line of text with the given prefix.
func indentLines(text, prefix string) string {
	lines := strings.Split(text, "\n")
	for i, l := range lines {
		lines[i] = prefix + l
	}
	return strings.Join(lines, "\n")
}

// wrapLine breaks a single line into multiple lines that fit within maxWidth
// visible columns, correctly skipping ANSI escape sequences when measuring width.
func wrapLine(line string, maxWidth int) []string {
	if maxWidth <= 0 {
		return []string{line}
	}

	var result []string
	var cur strings.Builder
	visW := 0

	i := 0
	for i < len(line) {
		// check for ANSI escape sequence: ESC[ ... m
		if i+1 < len(line) && line[i] == '\033' && line[i+1] == '[' {
			j := i + 2
			for j < len(line) && line[j] != 'm' {
				j++
			}
			if j < len(line) {
				j++ // include 'm'
			}
			cur.WriteString(line[i:j])
			i = j
			continue
		}

		r, size := utf8.DecodeRuneInString(line[i:])
		rw := runewidth.RuneWidth(r)

		if visW+rw > maxWidth {
			result = append(result, cur.String())
			cur.Reset()
			visW = 0
		}

		cur.WriteRune(r)
		visW += rw
		i += size
	}

	if cur.Len() > 0 {
		result = append(result, cur.String())
	}

	if len(result) == 0 {
		return []string{""}
	}
	return result
}

// Transcript renders messages oldest first and returns the content and the
// 0-based line of the last message header (-1 when there are no messages).
func Transcript(msgs []session.Message, opts Options) (string, int) {
	var b strings.Builder
	lastHeader := -1
	lineCount := 0

	color := func(c string) string {
		if opts.Plain {
			return ""
		}
		return c
	}
	reset := color(colorReset)

	writeLine := func(s string) {
		for _, wl := range wrapLine(s, opts.Width) {
			b.WriteString(wl)
			b.WriteString("\n")
			lineCount++
		}
	}

	if len(msgs) == 0 && !opts.Thinking {
		writeLine(color(colorDim) + "(no messages yet)" + reset)
		return b.String(), -1
	}

	lastQuestion := ""
	for _, m := range msgs {
		lastHeader = lineCount

		var roleColor, roleLabel string
		switch m.Role {
		case session.RoleUser:
			roleColor, roleLabel = colorUser, "YOU"
			lastQuestion = m.Text
		case session.RoleAssistant:
			roleColor, roleLabel = colorAssist, "ASST"
			if opts.ErrorText != "" && m.Text == opts.ErrorText {
				roleColor = colorError
			}
		default:
			roleColor, roleLabel = colorDim, strings.ToUpper(string(m.Role))
		}

		ts := ""
		if !m.At.IsZero() {
			ts = m.At.Format("15:04:05")
		}
		writeLine(fmt.Sprintf("%s%s >%s %s%s%s", color(roleColor), roleLabel, reset, color(colorDim), ts, reset))

		text := m.Text
		if m.Role == session.RoleAssistant && !opts.Plain {
			q := opts.Query
			if q == "" {
				q = lastQuestion
			}
			text = highlightKeywords(text, q)
		}
		for _, tl := range strings.Split(indentLines(text, "  "), "\n") {
			writeLine(tl)
		}
		writeLine("") // blank line after message
	}

	if opts.Thinking {
		writeLine(color(colorThink) + "ASST > thinking..." + reset)
	}

	return b.String(), lastHeader
}
