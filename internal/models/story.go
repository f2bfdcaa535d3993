package models

import (
	"math"
	"time"

	"github.com/google/uuid"
)

// StoryStatus defines the lifecycle states of a story.
// Matches the ENUM type 'story_status' in the DB.
type StoryStatus string

const (
	StatusDraft     StoryStatus = "draft"     // Editable by its author, invisible to readers
	StatusPublished StoryStatus = "published" // Visible and playable by readers
	StatusSuspended StoryStatus = "suspended" // Hidden by an admin, pending moderation
)

// Choice is a directed edge from its containing page to a target page.
// The target is stored as a plain identifier and is deliberately NOT
// validated at write time; a published story may carry dangling edges.
type Choice struct {
	ID           uuid.UUID `json:"id"`
	Text         string    `json:"text"`
	TargetPageID uuid.UUID `json:"target_page_id"`
}

// Page is a node of the story graph, owned by its story. Pages are
// embedded in the story document and never outlive it.
type Page struct {
	ID          uuid.UUID `json:"id"`
	Title       string    `json:"title,omitempty"`
	Text        string    `json:"text"`
	ImageURL    string    `json:"image_url,omitempty"`
	IsEnding    bool      `json:"is_ending"`
	EndingLabel string    `json:"ending_label,omitempty"` // meaningful only when IsEnding
	Choices     []Choice  `json:"choices"`
}

// Rating is one reader's score for a story. At most one per (reader, story);
// a second rating from the same reader overwrites the first.
type Rating struct {
	ReaderID  uuid.UUID `json:"reader_id"`
	Score     int       `json:"score"` // 1..5
	Comment   string    `json:"comment,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Report is one reader's moderation report for a story. At most one per
// (reader, story); duplicates are rejected, never merged.
type Report struct {
	ReaderID  uuid.UUID `json:"reader_id"`
	Reason    string    `json:"reason"`
	CreatedAt time.Time `json:"created_at"`
}

// Story is the top-level authored document: the page/choice graph plus
// feedback and aggregate counters. Pages, ratings and reports are owned
// sub-documents persisted inline with the story row.
type Story struct {
	ID            uuid.UUID   `json:"id" db:"id"`
	AuthorID      uuid.UUID   `json:"author_id" db:"author_id"`
	Title         string      `json:"title" db:"title"`
	Description   string      `json:"description" db:"description"`
	Tags          []string    `json:"tags" db:"tags"`
	Theme         string      `json:"theme,omitempty" db:"theme"`
	Status        StoryStatus `json:"status" db:"status"`
	StartPageID   *uuid.UUID  `json:"start_page_id,omitempty" db:"start_page_id"`
	TimesStarted  int64       `json:"times_started" db:"times_started"`
	TimesFinished int64       `json:"times_finished" db:"times_finished"`
	Pages         []Page      `json:"pages" db:"-"`
	Ratings       []Rating    `json:"-" db:"-"`
	Reports       []Report    `json:"-" db:"-"`
	CreatedAt     time.Time   `json:"created_at" db:"created_at"`
	UpdatedAt     time.Time   `json:"updated_at" db:"updated_at"`
}

// FindPage returns the page with the given id, or nil if the story has no
// such page. The returned pointer aliases the story's page slice.
func (s *Story) FindPage(pageID uuid.UUID) *Page {
	for i := range s.Pages {
		if s.Pages[i].ID == pageID {
			return &s.Pages[i]
		}
	}
	return nil
}

// AddPage appends a new page with a fresh identifier and returns a copy.
// A pointer into Pages would go stale on the next append, so callers that
// want to mutate the page afterwards must resolve it through FindPage.
func (s *Story) AddPage(page Page) Page {
	page.ID = uuid.New()
	if page.Choices == nil {
		page.Choices = []Choice{}
	}
	s.Pages = append(s.Pages, page)
	return page
}

// RemovePage removes the page with the given id. Choices elsewhere that
// point at the removed page are left dangling on purpose, and so is a
// start pointer that named it; publishing and reading surface both as
// broken references.
func (s *Story) RemovePage(pageID uuid.UUID) bool {
	for i := range s.Pages {
		if s.Pages[i].ID == pageID {
			s.Pages = append(s.Pages[:i], s.Pages[i+1:]...)
			return true
		}
	}
	return false
}

// SetStartPage designates the story's entry page. The page must exist.
func (s *Story) SetStartPage(pageID uuid.UUID) error {
	if s.FindPage(pageID) == nil {
		return ErrInvalidReference
	}
	id := pageID
	s.StartPageID = &id
	return nil
}

// StartPage resolves the designated start page, if any.
func (s *Story) StartPage() *Page {
	if s.StartPageID == nil {
		return nil
	}
	return s.FindPage(*s.StartPageID)
}

// CanPublish decides whether the story may transition to published.
// Only the start page is checked: it must be set and must resolve.
// Unreachable pages and dangling choice targets are tolerated so that
// authors can publish work in progress.
func (s *Story) CanPublish() error {
	if s.StartPageID == nil {
		return ErrNoStartPage
	}
	if s.FindPage(*s.StartPageID) == nil {
		return ErrInvalidReference
	}
	return nil
}

// EndingPages returns the story's terminal pages in document order.
func (s *Story) EndingPages() []*Page {
	var endings []*Page
	for i := range s.Pages {
		if s.Pages[i].IsEnding {
			endings = append(endings, &s.Pages[i])
		}
	}
	return endings
}

// FindRating returns the reader's rating, or nil when they have not rated.
func (s *Story) FindRating(readerID uuid.UUID) *Rating {
	for i := range s.Ratings {
		if s.Ratings[i].ReaderID == readerID {
			return &s.Ratings[i]
		}
	}
	return nil
}

// FindReport returns the reader's report, or nil when they have not reported.
func (s *Story) FindReport(readerID uuid.UUID) *Report {
	for i := range s.Reports {
		if s.Reports[i].ReaderID == readerID {
			return &s.Reports[i]
		}
	}
	return nil
}

// MeanRating derives the average score over the live rating set, rounded
// to one decimal. It is never persisted. Returns 0 without ratings.
func (s *Story) MeanRating() float64 {
	if len(s.Ratings) == 0 {
		return 0
	}
	sum := 0
	for i := range s.Ratings {
		sum += s.Ratings[i].Score
	}
	return math.Round(float64(sum)/float64(len(s.Ratings))*10) / 10
}

// FindChoice returns the choice with the given id, or nil.
func (p *Page) FindChoice(choiceID uuid.UUID) *Choice {
	for i := range p.Choices {
		if p.Choices[i].ID == choiceID {
			return &p.Choices[i]
		}
	}
	return nil
}

// AddChoice appends a new choice with a fresh identifier and returns a
// copy. The target id is accepted as-is, whether or not it currently
// resolves.
func (p *Page) AddChoice(text string, targetPageID uuid.UUID) Choice {
	choice := Choice{
		ID:           uuid.New(),
		Text:         text,
		TargetPageID: targetPageID,
	}
	p.Choices = append(p.Choices, choice)
	return choice
}

// RemoveChoice removes the choice with the given id.
func (p *Page) RemoveChoice(choiceID uuid.UUID) bool {
	for i := range p.Choices {
		if p.Choices[i].ID == choiceID {
			p.Choices = append(p.Choices[:i], p.Choices[i+1:]...)
			return true
		}
	}
	return false
}
