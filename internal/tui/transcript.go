package tui

import (
	"github.com/charmbracelet/bubbles/viewport"

	"github.com/Zuo-Peng/mdc/internal/controller"
	"github.com/Zuo-Peng/mdc/internal/render"
)

// refreshTranscript re-renders the transcript into the viewport and follows
// the newest message unless the user has scrolled up.
func (m *model) refreshTranscript() {
	follow := m.transcript.AtBottom() || m.transcript.TotalLineCount() == 0
	content, _ := render.Transcript(m.sess.Transcript(), render.Options{
		Width:     m.transcriptWidth(),
		Thinking:  m.pending > 0,
		ErrorText: controller.AnswerErrorText,
	})
	m.transcript.SetContent(content)
	if follow {
		m.transcript.GotoBottom()
	}
}

// newViewport creates a new viewport model with the given dimensions. The
// panel border is drawn by View, not by the viewport.
func newViewport(width, height int) viewport.Model {
	vp := viewport.New(width, height)
	vp.MouseWheelEnabled = true
	return vp
}
