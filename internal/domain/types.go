package domain

// ArtifactKind names one of the two results that can be requested for a video.
type ArtifactKind string

const (
	ArtifactSummary    ArtifactKind = "summary"
	ArtifactTranscript ArtifactKind = "transcript"
)

// ArtifactKinds lists every artifact in display order.
var ArtifactKinds = []ArtifactKind{ArtifactSummary, ArtifactTranscript}

// ArtifactStatus tracks one artifact through its fetch lifecycle.
type ArtifactStatus string

const (
	ArtifactStatusIdle       ArtifactStatus = "idle"
	ArtifactStatusProcessing ArtifactStatus = "processing"
	ArtifactStatusCompleted  ArtifactStatus = "completed"
	ArtifactStatusError      ArtifactStatus = "error"
)

// SummaryLength controls how long the generated summary should be.
type SummaryLength string

const (
	LengthShort  SummaryLength = "short"
	LengthMedium SummaryLength = "medium"
	LengthLong   SummaryLength = "long"
)

// Valid reports whether the length is one the backend accepts.
func (l SummaryLength) Valid() bool {
	switch l {
	case LengthShort, LengthMedium, LengthLong:
		return true
	default:
		return false
	}
}

// DefaultFocusArea is used whenever no focus area is selected.
const DefaultFocusArea = "balanced_overview"

// Settings contains user-selectable summary preferences.
type Settings struct {
	Length     SummaryLength `json:"length" yaml:"length"`
	FocusAreas []string      `json:"focus_areas" yaml:"focus_areas"`
	Language   string        `json:"language" yaml:"language"`
}

// EffectiveFocusAreas returns the focus areas sent to the backend.
func (s Settings) EffectiveFocusAreas() []string {
	if len(s.FocusAreas) == 0 {
		return []string{DefaultFocusArea}
	}
	return s.FocusAreas
}

// Artifact is the view state of one summary or transcript.
type Artifact struct {
	Kind       ArtifactKind   `json:"kind" yaml:"kind"`
	VideoID    string         `json:"videoId" yaml:"video_id"`
	Title      string         `json:"title" yaml:"title"`
	Status     ArtifactStatus `json:"status" yaml:"status"`
	Content    string         `json:"content,omitempty" yaml:"content,omitempty"`
	Error      string         `json:"error,omitempty" yaml:"error,omitempty"`
	ErrorKind  string         `json:"errorKind,omitempty" yaml:"error_kind,omitempty"`
	Generation uint64         `json:"generation" yaml:"-"`
}

// Option is one selectable value offered by the settings form.
type Option struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

// ViewState is everything the window needs to render itself.
type ViewState struct {
	VideoURL       string   `json:"videoUrl"`
	ShowTranscript bool     `json:"showTranscript"`
	Settings       Settings `json:"settings"`
	Summary        Artifact `json:"summary"`
	Transcript     Artifact `json:"transcript"`
	LastSeq        int64    `json:"lastSeq"`
}
