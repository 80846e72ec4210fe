package summary

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatSections(t *testing.T) {
	content := "1. Genre: Drama\n\n2. Emotion/tone: Tense: mostly\n3. Point-wise Summary:\n- first point\n- second point\n\n5. Key takeaway: Keep going"

	lines := Format(content)
	require.Len(t, lines, 6)

	assert.Equal(t, Line{Number: "1.", Label: "Genre", Text: " Drama"}, lines[0])
	assert.Equal(t, Line{Number: "2.", Label: "Emotion/tone", Text: " Tense: mostly"}, lines[1])
	assert.Equal(t, Line{Number: "3.", Label: "Point-wise Summary", Text: ""}, lines[2])
	assert.Equal(t, Line{Text: "- first point", Point: true}, lines[3])
	assert.True(t, lines[4].Point)
	assert.Equal(t, "Key takeaway", lines[5].Label)
	assert.True(t, lines[5].IsSection())
}

func TestFormatPlainLines(t *testing.T) {
	lines := Format("Intro line\r\n   \r\n4. Other: not a known section")
	require.Len(t, lines, 2)
	assert.Equal(t, Line{Text: "Intro line"}, lines[0])
	assert.False(t, lines[1].IsSection())
	assert.Equal(t, "4. Other: not a known section", lines[1].Text)
}

func TestPlainRoundTrip(t *testing.T) {
	content := "1. Genre: Drama\n- point"
	assert.Equal(t, "1. Genre: Drama\n- point", Plain(Format(content)))
	assert.Empty(t, Format(""))
}
