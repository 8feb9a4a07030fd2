package output

import (
	"fmt"
	"io"
	"strings"
	"time"
)

const sectionWidth = 61 // inner width between │ and line end

// Section renders a box-drawing framed block of rows.
type Section struct {
	w     io.Writer
	color bool
}

// NewSection writes the header for name and returns the open section.
// A non-zero elapsed is shown right-aligned in the header.
func NewSection(w io.Writer, name string, elapsed time.Duration, color bool) *Section {
	s := &Section{w: w, color: color}

	label := fmt.Sprintf("── %s ", name)
	suffix := "──"
	if elapsed > 0 {
		suffix = fmt.Sprintf(" %s ──", formatElapsed(elapsed))
	}
	fill := sectionWidth + 4 - len([]rune(label)) - len([]rune(suffix))
	if fill < 1 {
		fill = 1
	}
	header := label + strings.Repeat("─", fill) + suffix
	fmt.Fprintf(w, "\n    %s\n", paint(ansiHeader, header, color))
	return s
}

// Row writes a content line inside the frame.
func (s *Section) Row(format string, args ...any) {
	fmt.Fprintf(s.w, "    │ %s\n", fmt.Sprintf(format, args...))
}

// Status writes a row with a status icon, a fixed-width label and detail.
func (s *Section) Status(label, status, detail string) {
	icon := StatusIcon(status, s.color)
	if detail == "" {
		s.Row("%s %s", icon, label)
		return
	}
	s.Row("%s %-16s %s", icon, label, Dimmed(detail, s.color))
}

// Separator writes a mid-section divider.
func (s *Section) Separator() {
	fmt.Fprintf(s.w, "    ├%s\n", strings.Repeat("─", sectionWidth))
}

// Close writes the footer.
func (s *Section) Close() {
	fmt.Fprintf(s.w, "    └%s\n", strings.Repeat("─", sectionWidth))
}

// formatElapsed formats a duration for section headers.
func formatElapsed(d time.Duration) string {
	switch {
	case d < time.Millisecond:
		return "<1ms"
	case d < time.Second:
		return fmt.Sprintf("%dms", d.Milliseconds())
	case d < time.Minute:
		return fmt.Sprintf("%.1fs", d.Seconds())
	}
	mins := int(d.Minutes())
	secs := d.Seconds() - float64(mins*60)
	return fmt.Sprintf("%dm%.1fs", mins, secs)
}
