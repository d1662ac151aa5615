package formatter

import (
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/sergi/go-diff/diffmatchpatch"
)

// SegmentOp marks how a segment of an inline diff relates to the two values.
type SegmentOp int

const (
	SegmentEqual SegmentOp = iota
	SegmentRemoved
	SegmentAdded
)

// Segment is one run of text in an inline diff.
type Segment struct {
	Op   SegmentOp
	Text string
}

// Segments computes a semantic character diff between before and after.
func Segments(before, after string) []Segment {
	dmp := diffmatchpatch.New()
	diffs := dmp.DiffMain(before, after, false)
	diffs = dmp.DiffCleanupSemantic(diffs)

	segments := make([]Segment, 0, len(diffs))
	for _, d := range diffs {
		if d.Text == "" {
			continue
		}
		op := SegmentEqual
		switch d.Type {
		case diffmatchpatch.DiffDelete:
			op = SegmentRemoved
		case diffmatchpatch.DiffInsert:
			op = SegmentAdded
		}
		segments = append(segments, Segment{Op: op, Text: d.Text})
	}
	return segments
}

// Inline renders a modified value with removals as [-text-] and additions as {+text+}.
func Inline(before, after string) string {
	var sb strings.Builder
	for _, s := range Segments(before, after) {
		switch s.Op {
		case SegmentRemoved:
			sb.WriteString("[-" + s.Text + "-]")
		case SegmentAdded:
			sb.WriteString("{+" + s.Text + "+}")
		default:
			sb.WriteString(s.Text)
		}
	}
	return sb.String()
}

// RenderMarkdown styles Markdown for the terminal, wrapping at width columns.
func RenderMarkdown(md []byte, width int) (string, error) {
	if width <= 0 {
		width = 80
	}
	renderer, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return "", err
	}
	return renderer.Render(string(md))
}
