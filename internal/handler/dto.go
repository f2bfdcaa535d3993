package handler

import "github.com/google/uuid"

// Authoring requests.

type createStoryRequest struct {
	Title       string   `json:"title" validate:"required,max=200"`
	Description string   `json:"description" validate:"max=500"`
	Tags        []string `json:"tags" validate:"dive,max=50"`
	Theme       string   `json:"theme" validate:"max=100"`
}

type updateStoryRequest struct {
	Title       *string  `json:"title" validate:"omitempty,max=200"`
	Description *string  `json:"description" validate:"omitempty,max=500"`
	Tags        []string `json:"tags" validate:"omitempty,dive,max=50"`
	Theme       *string  `json:"theme" validate:"omitempty,max=100"`
}

type pageRequest struct {
	Title       string `json:"title" validate:"max=200"`
	Text        string `json:"text" validate:"required"`
	ImageURL    string `json:"image_url" validate:"omitempty,url"`
	IsEnding    bool   `json:"is_ending"`
	EndingLabel string `json:"ending_label" validate:"max=100"`
}

type addChoiceRequest struct {
	Text         string    `json:"text" validate:"required,max=500"`
	TargetPageID uuid.UUID `json:"target_page_id" validate:"required"`
}

type setStartPageRequest struct {
	PageID uuid.UUID `json:"page_id" validate:"required"`
}

// Reading requests.

type advanceRequest struct {
	ChoiceID uuid.UUID `json:"choice_id" validate:"required"`
}

type saveProgressRequest struct {
	StoryID       uuid.UUID   `json:"story_id" validate:"required"`
	CurrentPageID uuid.UUID   `json:"current_page_id" validate:"required"`
	Path          []uuid.UUID `json:"path"`
}

type finishPlayRequest struct {
	StoryID      uuid.UUID   `json:"story_id" validate:"required"`
	EndingPageID uuid.UUID   `json:"ending_page_id" validate:"required"`
	Path         []uuid.UUID `json:"path"`
	StartedAt    string      `json:"started_at" validate:"omitempty"`
}

type similarityRequest struct {
	StoryID uuid.UUID   `json:"story_id" validate:"required"`
	Path    []uuid.UUID `json:"path" validate:"required"`
}

// Feedback requests.

type rateStoryRequest struct {
	Score   int    `json:"score" validate:"required,min=1,max=5"`
	Comment string `json:"comment" validate:"max=1000"`
}

type reportStoryRequest struct {
	Reason string `json:"reason" validate:"required,max=1000"`
}
