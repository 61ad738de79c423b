package session

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"weatherwatch/datasource"
	"weatherwatch/models"
)

// Phase is the state of the query-result machine
type Phase string

const (
	PhaseIdle    Phase = "idle"
	PhaseLoading Phase = "loading"
	PhaseSuccess Phase = "success"
	PhaseError   Phase = "error"
)

// Snapshot is a consistent copy of the session state.
// Report and Failure are mutually exclusive. Configuration lists fatal
// configuration errors that outlive any single request.
type Snapshot struct {
	Phase         Phase                       `json:"phase"`
	Token         string                      `json:"token,omitempty"`
	Query         string                      `json:"query"`
	LocationName  string                      `json:"locationName,omitempty"`
	Report        *models.WeatherReport       `json:"report,omitempty"`
	Failure       *datasource.Classification  `json:"failure,omitempty"`
	Suggestions   []models.Suggestion         `json:"suggestions"`
	Configuration []datasource.Classification `json:"configuration"`
	Updated       time.Time                   `json:"updated"`

	// Superseded is set on a snapshot returned to a caller whose request was
	// replaced by a newer one before it completed. The state then belongs to
	// the newer request.
	Superseded bool `json:"superseded,omitempty"`
}

// Loading reports whether a request is outstanding
func (s Snapshot) Loading() bool {
	return s.Phase == PhaseLoading
}

// State holds the session's query text, suggestions and the latest request
// outcome. Every request is identified by a token; only the most recent
// token may complete the machine, and only once.
type State struct {
	mu      sync.RWMutex
	current Snapshot
	cancel  context.CancelFunc
}

// NewState creates an idle state
func NewState() *State {
	return &State{
		current: Snapshot{
			Phase:         PhaseIdle,
			Suggestions:   []models.Suggestion{},
			Configuration: []datasource.Classification{},
			Updated:       time.Now(),
		},
	}
}

// Begin starts a new request: it cancels the outstanding one, drops any previous
// result or error and moves to Loading. The returned context is canceled when the
// request is superseded or completed.
func (s *State) Begin(ctx context.Context) (string, context.Context) {
	reqCtx, cancel := context.WithCancel(ctx)
	token := uuid.NewString()

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cancel != nil {
		s.cancel()
	}
	s.cancel = cancel
	s.current.Phase = PhaseLoading
	s.current.Token = token
	s.current.Report = nil
	s.current.Failure = nil
	s.current.Updated = time.Now()
	return token, reqCtx
}

// Succeed applies a report if token is still the latest request.
// It reports whether the report was applied.
func (s *State) Succeed(token string, report models.WeatherReport) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.finishLocked(token) {
		return false
	}
	s.current.Phase = PhaseSuccess
	s.current.Report = &report
	s.current.Failure = nil
	s.current.LocationName = report.Current.DisplayName()
	return true
}

// Fail applies a classified failure if token is still the latest request.
// Any previous result is cleared.
func (s *State) Fail(token string, failure datasource.Classification) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.finishLocked(token) {
		return false
	}
	s.current.Phase = PhaseError
	s.current.Report = nil
	s.current.Failure = &failure
	return true
}

// Reject records a failure that happened before any request was started,
// e.g. invalid input. It supersedes whatever request is outstanding and
// returns the token it used.
func (s *State) Reject(failure datasource.Classification) string {
	token, _ := s.Begin(context.Background())
	s.Fail(token, failure)
	return token
}

func (s *State) finishLocked(token string) bool {
	if token == "" || token != s.current.Token || s.current.Phase != PhaseLoading {
		return false
	}
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
	s.current.Updated = time.Now()
	return true
}

// SetQuery replaces the query text
func (s *State) SetQuery(text string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.current.Query = text
}

// SetSuggestions stores suggestions computed for text. They are dropped when
// the query text has moved on since the lookup started.
func (s *State) SetSuggestions(text string, suggestions []models.Suggestion) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.current.Query != text {
		return false
	}
	s.current.Suggestions = append([]models.Suggestion{}, suggestions...)
	return true
}

// ClearSuggestions empties the suggestion list
func (s *State) ClearSuggestions() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.current.Suggestions = []models.Suggestion{}
}

// AddConfiguration records a fatal configuration error. A message already
// recorded is ignored. It reports whether the error was new.
func (s *State) AddConfiguration(failure datasource.Classification) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, c := range s.current.Configuration {
		if c.Message == failure.Message {
			return false
		}
	}
	s.current.Configuration = append(s.current.Configuration, failure)
	return true
}

// Snapshot returns a copy of the current state
func (s *State) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap := s.current
	snap.Suggestions = append([]models.Suggestion{}, s.current.Suggestions...)
	snap.Configuration = append([]datasource.Classification{}, s.current.Configuration...)
	return snap
}
