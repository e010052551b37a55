package tui

import (
	"fmt"
	"strings"

	"github.com/mattn/go-runewidth"

	"github.com/Zuo-Peng/mdc/internal/session"
	"github.com/Zuo-Peng/mdc/internal/staging"
)

// sessionLines is the fixed height of the session block at the top of the
// sidebar, including its trailing blank line.
const sessionLines = 5

// maxIngestedLines caps the ingested block so the staged list keeps room.
const maxIngestedLines = 6

// renderSidebar renders the left panel: session info, staged files with a
// cursor and the documents of the current session.
func (m model) renderSidebar(width, height int) string {
	st := m.sess.State()
	snap := m.sess.Staging()
	docs := m.sess.Ingested()

	lines := make([]string, 0, height)
	lines = append(lines, m.sessionBlock(st, width)...)

	ingested := ingestedBlock(docs, width)
	stagedH := height - len(lines) - len(ingested) - 1
	if stagedH < 2 {
		stagedH = 2
	}
	lines = append(lines, m.stagedBlock(snap, width, stagedH)...)
	lines = append(lines, "")
	lines = append(lines, ingested...)

	if len(lines) > height {
		lines = lines[:height]
	}
	for len(lines) < height {
		lines = append(lines, "")
	}
	return strings.Join(lines, "\n")
}

func (m model) sessionBlock(st session.State, width int) []string {
	id := st.SessionID
	if id == "" {
		id = "(none)"
	}
	var status string
	switch st.Status {
	case session.StatusIndexed:
		status = styleStatusOK.Render(st.Status.String())
	case session.StatusIndexing:
		status = styleStatusBusy.Render(m.spinner.View() + st.Status.String())
	case session.StatusFailed:
		status = styleStatusFailed.Render(st.Status.String())
	default:
		status = styleMime.Render(st.Status.String())
	}
	at := "-"
	if !st.IndexedAt.IsZero() {
		at = st.IndexedAt.Local().Format("2006-01-02 15:04")
	}
	return []string{
		styleTitle.Render("Session"),
		truncate("id: "+id, width),
		"status: " + status,
		truncate("indexed: "+at, width),
		"",
	}
}

func (m model) stagedBlock(snap staging.Snapshot, width, height int) []string {
	title := fmt.Sprintf("Staged (%d, %s)", snap.Count, staging.FormatBytes(snap.TotalBytes))
	lines := []string{styleTitle.Render(title)}
	if snap.Count == 0 {
		lines = append(lines, styleMime.Render("  C-o or drop files to add"))
		return lines
	}

	visible := height - 1
	for i, f := range snap.Files {
		if i < m.listOffset {
			continue
		}
		if len(lines)-1 >= visible {
			break
		}
		lines = append(lines, formatStagedLine(i, f, width, i == m.cursor))
	}
	return lines
}

// formatStagedLine formats one staged file as:
//
//	[>] index name  mime  size
//
// The index is the one ctrl+x accepts from the input.
func formatStagedLine(index int, f staging.StagedFile, width int, selected bool) string {
	num := fmt.Sprintf("%d ", index)
	size := staging.FormatBytes(f.SizeBytes)
	mime := f.MimeType
	if mime == "" {
		mime = "?"
	}
	nameMax := width - 2 - len(num) - runewidth.StringWidth(mime) - runewidth.StringWidth(size) - 2
	name := truncate(f.Name, nameMax)
	pad := nameMax - runewidth.StringWidth(name)
	if pad < 0 {
		pad = 0
	}

	line := styleMime.Render(num) + name + strings.Repeat(" ", pad) + " " + styleMime.Render(mime) + " " + size
	if selected {
		return styleListSelected.Render("> ") + line
	}
	return "  " + styleListNormal.Render(line)
}

func ingestedBlock(docs []session.IngestedDocument, width int) []string {
	lines := []string{styleTitle.Render(fmt.Sprintf("Indexed (%d)", len(docs)))}
	for i, d := range docs {
		if i == maxIngestedLines-1 && len(docs) > maxIngestedLines {
			lines = append(lines, styleMime.Render(fmt.Sprintf("  ... %d more", len(docs)-i)))
			break
		}
		lines = append(lines, "  "+styleIndexed.Render(truncate(d.Name, width-2)))
	}
	return lines
}

// stagedListHeight is how many staged rows fit in a sidebar of panel height h.
func (m model) stagedListHeight(h int) int {
	n := len(m.sess.Ingested())
	if n > maxIngestedLines {
		n = maxIngestedLines
	}
	v := h - sessionLines - (n + 1) - 1 - 1
	if v < 1 {
		v = 1
	}
	return v
}

// adjustListScroll keeps the cursor visible within the staged list.
func (m *model) adjustListScroll(visibleItems int) {
	if visibleItems < 1 {
		visibleItems = 1
	}
	if m.cursor < m.listOffset {
		m.listOffset = m.cursor
	}
	if m.cursor >= m.listOffset+visibleItems {
		m.listOffset = m.cursor - visibleItems + 1
	}
}

func truncate(s string, max int) string {
	if max <= 0 {
		return ""
	}
	s = strings.ReplaceAll(s, "\n", " ")
	if runewidth.StringWidth(s) > max {
		return runewidth.Truncate(s, max, "…")
	}
	return s
}

