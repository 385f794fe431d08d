package export

import (
	"fmt"
	"strings"
	"time"

	"github.com/jwulff/voicememo/internal/memo"
)

// Metadata is extra header information for the rendered markdown.
type Metadata struct {
	Model     string
	Generated string
}

// RenderMarkdown renders the transcript and chat log of rec.
func RenderMarkdown(rec memo.Recording, meta Metadata) string {
	var b strings.Builder

	title := rec.Name
	if title == "" {
		title = "Voice Memo"
	}
	fmt.Fprintf(&b, "# %s\n\n", title)
	fmt.Fprintf(&b, "- Recorded: %s\n", rec.CreatedAt.Format("2006-01-02 15:04:05"))
	fmt.Fprintf(&b, "- Duration: %s\n", rec.Duration().Truncate(time.Second))
	if meta.Model != "" {
		fmt.Fprintf(&b, "- Model: `%s`\n", meta.Model)
	}
	if meta.Generated != "" {
		fmt.Fprintf(&b, "- Generated: %s\n", meta.Generated)
	}
	b.WriteString("\n---\n\n")

	b.WriteString("## Transcript\n\n")
	if text, ok := rec.Transcript.Text(); ok && strings.TrimSpace(text) != "" {
		b.WriteString(strings.TrimSpace(text))
		b.WriteString("\n\n")
	} else {
		b.WriteString("_No transcript available._\n\n")
	}

	if len(rec.ChatHistory) == 0 {
		return b.String()
	}

	b.WriteString("## Chat\n\n")
	for _, m := range rec.ChatHistory {
		who := "You"
		if m.Sender == memo.SenderAssistant {
			who = "Assistant"
		}
		fmt.Fprintf(&b, "**%s** [%s]: %s\n\n", who, m.Timestamp.Format("15:04:05"), strings.TrimSpace(m.Text))
	}
	return b.String()
}
