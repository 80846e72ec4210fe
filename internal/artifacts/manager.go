package artifacts

import (
	"errors"
	"fmt"
	"sync"

	"yousum/internal/domain"
)

// DefaultTitle is shown for a video whose title could not be resolved.
const DefaultTitle = "YouTube Video"

// ErrUnknownArtifact is returned for a kind other than summary or transcript.
var ErrUnknownArtifact = errors.New("unknown artifact")

// ErrStaleGeneration is returned when a superseded fetch tries to resolve.
var ErrStaleGeneration = errors.New("stale artifact generation")

// Manager owns the summary and transcript view states. Every StartFetch and
// Reset bumps the artifact generation; resolutions must present the
// generation they started with.
type Manager struct {
	mu      sync.RWMutex
	states  map[domain.ArtifactKind]domain.Artifact
	nextGen uint64
}

// NewManager creates a manager with both artifacts idle.
func NewManager() *Manager {
	m := &Manager{states: make(map[domain.ArtifactKind]domain.Artifact, len(domain.ArtifactKinds))}
	for _, kind := range domain.ArtifactKinds {
		m.states[kind] = domain.Artifact{Kind: kind, Status: domain.ArtifactStatusIdle}
	}
	return m
}

// StartFetch moves an artifact to processing, clears any previous payload and
// returns the generation the fetch must resolve with.
func (m *Manager) StartFetch(kind domain.ArtifactKind, videoID string) (domain.Artifact, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	current, ok := m.states[kind]
	if !ok {
		return domain.Artifact{}, fmt.Errorf("%w: %s", ErrUnknownArtifact, kind)
	}
	if !isValidTransition(current.Status, domain.ArtifactStatusProcessing) {
		return domain.Artifact{}, fmt.Errorf("invalid transition: %s -> %s", current.Status, domain.ArtifactStatusProcessing)
	}

	m.nextGen++
	next := domain.Artifact{
		Kind:       kind,
		VideoID:    videoID,
		Title:      current.Title,
		Status:     domain.ArtifactStatusProcessing,
		Generation: m.nextGen,
	}
	m.states[kind] = next
	return next, nil
}

// ResolveSuccess completes the fetch started with generation gen.
func (m *Manager) ResolveSuccess(kind domain.ArtifactKind, gen uint64, videoID, title, content string) (domain.Artifact, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	current, err := m.resolvable(kind, gen, domain.ArtifactStatusCompleted)
	if err != nil {
		return domain.Artifact{}, err
	}

	if videoID == "" {
		videoID = current.VideoID
	}
	if title == "" {
		title = DefaultTitle
	}
	next := domain.Artifact{
		Kind:       kind,
		VideoID:    videoID,
		Title:      title,
		Status:     domain.ArtifactStatusCompleted,
		Content:    content,
		Generation: gen,
	}
	m.states[kind] = next
	return next, nil
}

// ResolveError fails the fetch started with generation gen.
func (m *Manager) ResolveError(kind domain.ArtifactKind, gen uint64, message, errorKind string) (domain.Artifact, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, err := m.resolvable(kind, gen, domain.ArtifactStatusError); err != nil {
		return domain.Artifact{}, err
	}

	if message == "" {
		message = fmt.Sprintf("Failed to fetch %s", kind)
	}
	next := domain.Artifact{
		Kind:       kind,
		Status:     domain.ArtifactStatusError,
		Error:      message,
		ErrorKind:  errorKind,
		Generation: gen,
	}
	m.states[kind] = next
	return next, nil
}

// Reset returns an artifact to idle and invalidates any in-flight fetch.
func (m *Manager) Reset(kind domain.ArtifactKind) (domain.Artifact, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.states[kind]; !ok {
		return domain.Artifact{}, fmt.Errorf("%w: %s", ErrUnknownArtifact, kind)
	}

	m.nextGen++
	next := domain.Artifact{Kind: kind, Status: domain.ArtifactStatusIdle, Generation: m.nextGen}
	m.states[kind] = next
	return next, nil
}

// Current returns a snapshot of one artifact.
func (m *Manager) Current(kind domain.ArtifactKind) domain.Artifact {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.states[kind]
}

// Snapshot returns every artifact in display order.
func (m *Manager) Snapshot() []domain.Artifact {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]domain.Artifact, 0, len(domain.ArtifactKinds))
	for _, kind := range domain.ArtifactKinds {
		out = append(out, m.states[kind])
	}
	return out
}

// IsCurrent reports whether gen is still the live generation of kind.
func (m *Manager) IsCurrent(kind domain.ArtifactKind, gen uint64) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.states[kind].Generation == gen
}

// resolvable checks that gen is live and the artifact may move to status.
func (m *Manager) resolvable(kind domain.ArtifactKind, gen uint64, status domain.ArtifactStatus) (domain.Artifact, error) {
	current, ok := m.states[kind]
	if !ok {
		return domain.Artifact{}, fmt.Errorf("%w: %s", ErrUnknownArtifact, kind)
	}
	if current.Generation != gen {
		return domain.Artifact{}, ErrStaleGeneration
	}
	if !isValidTransition(current.Status, status) {
		return domain.Artifact{}, fmt.Errorf("invalid transition: %s -> %s", current.Status, status)
	}
	return current, nil
}

// isValidTransition enforces the allowed artifact state machine edges.
func isValidTransition(from, to domain.ArtifactStatus) bool {
	switch from {
	case domain.ArtifactStatusIdle:
		return to == domain.ArtifactStatusProcessing
	case domain.ArtifactStatusProcessing:
		return to == domain.ArtifactStatusProcessing || to == domain.ArtifactStatusCompleted || to == domain.ArtifactStatusError
	case domain.ArtifactStatusCompleted, domain.ArtifactStatusError:
		return to == domain.ArtifactStatusProcessing
	default:
		return false
	}
}
