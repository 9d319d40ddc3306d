package slides

import (
	"strings"
	"time"
)

type Slide struct {
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

// State is everything a recording session accumulates. It is not safe for
// concurrent use; the session controller serializes access.
type State struct {
	transcript  string
	cursor      int
	lastExcerpt string
	lastSlide   *Slide
	lastAt      time.Time
	slides      []Slide
	current     int
	pendingEnd  int
	// send times: the request in flight, the latest request and the request
	// behind the last slide
	pendingAt   time.Time
	sentAt      time.Time
	slideSentAt time.Time
}

func NewState() *State {
	s := &State{}
	s.Reset()
	return s
}

func (s *State) Reset() {
	*s = State{current: -1, pendingEnd: -1}
}

// AppendTranscript adds a completed transcription fragment, space separated.
func (s *State) AppendTranscript(fragment string) bool {
	fragment = strings.TrimSpace(fragment)
	if fragment == "" {
		return false
	}
	if s.transcript != "" {
		s.transcript += " "
	}
	s.transcript += fragment
	return true
}

func (s *State) Transcript() string { return s.transcript }
func (s *State) Cursor() int        { return s.cursor }

// Unsummarized is the trimmed transcript after the cursor.
func (s *State) Unsummarized() string {
	return strings.TrimSpace(s.transcript[s.cursor:])
}

func (s *State) LastExcerpt() string { return s.lastExcerpt }

func (s *State) LastSlide() (Slide, bool) {
	if s.lastSlide == nil {
		return Slide{}, false
	}
	return *s.lastSlide, true
}

func (s *State) LastSummarizedAt() time.Time { return s.lastAt }

func (s *State) Len() int { return len(s.slides) }

// Slides returns a copy of the slide list.
func (s *State) Slides() []Slide {
	out := make([]Slide, len(s.slides))
	copy(out, s.slides)
	return out
}

// Current is the navigation position, -1 without slides.
func (s *State) Current() int { return s.current }

// Navigate moves the current position by delta within bounds. It reports
// whether the position changed.
func (s *State) Navigate(delta int) (int, bool) {
	if len(s.slides) == 0 {
		return s.current, false
	}
	next := s.current + delta
	if next < 0 {
		next = 0
	}
	if next > len(s.slides)-1 {
		next = len(s.slides) - 1
	}
	if next == s.current {
		return s.current, false
	}
	s.current = next
	return next, true
}

// GoTo jumps to an absolute slide index.
func (s *State) GoTo(index int) bool {
	if index < 0 || index >= len(s.slides) {
		return false
	}
	s.current = index
	return true
}

func (s *State) pending() bool { return s.pendingEnd >= 0 }
