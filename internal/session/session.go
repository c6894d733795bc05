// Package session holds the state of one upload as seen by a preview: the
// file name, the parsed table and the loading and error flags.
//
// A Session has a single owner and is not safe for concurrent use. Views
// that share uploaded data receive the same *Session explicitly.
package session

import (
	"time"

	"github.com/dev-shimada/regscan/internal/csv"
	"github.com/google/uuid"
)

type Session struct {
	ID       string
	FileName string
	Table    *csv.Table
	Loading  bool
	Err      error
	LoadedAt time.Time

	now func() time.Time
}

func New() *Session {
	return &Session{
		ID:  uuid.NewString(),
		now: time.Now,
	}
}

// Begin marks an upload of name as in progress. The previous table stays
// visible until Load or Fail replaces it.
func (s *Session) Begin(name string) {
	s.FileName = name
	s.Loading = true
	s.Err = nil
}

// Load parses text and replaces the current table with the result.
func (s *Session) Load(name, text string) *csv.Table {
	s.FileName = name
	s.Table = csv.Parse(text)
	s.Loading = false
	s.Err = nil
	s.LoadedAt = s.clock()()
	return s.Table
}

// Fail records err for the current upload and drops the table.
func (s *Session) Fail(err error) {
	s.Table = nil
	s.Loading = false
	s.Err = err
	s.LoadedAt = time.Time{}
}

// Reset discards the upload entirely.
func (s *Session) Reset() {
	s.FileName = ""
	s.Table = nil
	s.Loading = false
	s.Err = nil
	s.LoadedAt = time.Time{}
}

// Len returns the number of loaded records.
func (s *Session) Len() int {
	if s.Table == nil {
		return 0
	}
	return s.Table.Len()
}

// HasData reports whether there is at least one record to display. A
// header-only or empty upload has no data.
func (s *Session) HasData() bool {
	return s.Len() > 0
}

// Preview returns the first n records, or all of them when n <= 0.
func (s *Session) Preview(n int) []csv.Record {
	if s.Table == nil {
		return nil
	}
	return s.Table.Head(n)
}

func (s *Session) clock() func() time.Time {
	if s.now == nil {
		return time.Now
	}
	return s.now
}
