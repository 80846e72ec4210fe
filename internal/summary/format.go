// Package summary splits completed summary text into display lines.
package summary

import (
	"regexp"
	"strings"
)

var (
	sectionPattern = regexp.MustCompile(`^\d+\.\s*(Genre|Emotion/tone|Point-wise Summary|Summary|Key takeaway)`)
	labelPattern   = regexp.MustCompile(`^(\d+\.)\s*(.*?):`)
)

// Line is one rendered summary line. Section headings carry Number and
// Label; bullet lines set Point.
type Line struct {
	Number string `json:"number,omitempty"`
	Label  string `json:"label,omitempty"`
	Text   string `json:"text"`
	Point  bool   `json:"point,omitempty"`
}

// IsSection reports whether the line is a numbered section heading.
func (l Line) IsSection() bool {
	return l.Label != ""
}

// String renders the line back to plain text.
func (l Line) String() string {
	if l.IsSection() {
		return l.Number + " " + l.Label + ":" + l.Text
	}
	return l.Text
}

// Format drops blank lines and classifies the rest.
func Format(content string) []Line {
	raw := strings.Split(strings.ReplaceAll(content, "\r\n", "\n"), "\n")
	lines := make([]Line, 0, len(raw))
	for _, line := range raw {
		if sectionPattern.MatchString(line) {
			if match := labelPattern.FindStringSubmatch(line); match != nil {
				lines = append(lines, Line{
					Number: match[1],
					Label:  match[2],
					Text:   line[len(match[0]):],
				})
				continue
			}
		}
		if strings.TrimSpace(line) == "" {
			continue
		}
		lines = append(lines, Line{Text: line, Point: strings.HasPrefix(line, "-")})
	}
	return lines
}

// Plain renders formatted lines as newline separated text.
func Plain(lines []Line) string {
	var b strings.Builder
	for i, line := range lines {
		if i > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(line.String())
	}
	return b.String()
}
