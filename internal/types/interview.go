package types

import (
	"time"

	"github.com/google/uuid"
)

// Interview is a scheduled interview stage for a position.
type Interview struct {
	ID              uuid.UUID        `json:"id"`
	PositionID      uuid.UUID        `json:"position_id"`
	Type            InterviewType    `json:"type"`
	Place           InterviewPlace   `json:"place"`
	ScheduledDate   time.Time        `json:"scheduled_date"`
	DurationMinutes *int             `json:"duration_minutes,omitempty"`
	Notes           string           `json:"notes,omitempty"`
	Outcome         InterviewOutcome `json:"outcome"`
	CreatedAt       time.Time        `json:"created_at"`
	UpdatedAt       time.Time        `json:"updated_at"`
}

// Day returns the calendar date the interview is scheduled on.
func (i Interview) Day() Date {
	return DateOf(i.ScheduledDate)
}

// CreateInterviewRequest is the payload for adding an interview to a position.
type CreateInterviewRequest struct {
	Type            InterviewType    `json:"type" validate:"required,oneof=technical behavioral hr final"`
	Place           InterviewPlace   `json:"place" validate:"required,oneof=phone video onsite"`
	ScheduledDate   *time.Time       `json:"scheduled_date" validate:"required"`
	DurationMinutes *int             `json:"duration_minutes,omitempty" validate:"omitempty,min=1,max=480"`
	Notes           string           `json:"notes,omitempty"`
	Outcome         InterviewOutcome `json:"outcome,omitempty" validate:"omitempty,oneof=pending passed failed cancelled"`
}

// UpdateInterviewRequest is a partial update; nil fields are left unchanged.
type UpdateInterviewRequest struct {
	Type            *InterviewType    `json:"type,omitempty" validate:"omitempty,oneof=technical behavioral hr final"`
	Place           *InterviewPlace   `json:"place,omitempty" validate:"omitempty,oneof=phone video onsite"`
	ScheduledDate   *time.Time        `json:"scheduled_date,omitempty"`
	DurationMinutes *int              `json:"duration_minutes,omitempty" validate:"omitempty,min=1,max=480"`
	Notes           *string           `json:"notes,omitempty"`
	Outcome         *InterviewOutcome `json:"outcome,omitempty" validate:"omitempty,oneof=pending passed failed cancelled"`
}

// Apply copies the non-nil fields of the request onto iv.
func (r *UpdateInterviewRequest) Apply(iv *Interview) {
	if r.Type != nil {
		iv.Type = *r.Type
	}
	if r.Place != nil {
		iv.Place = *r.Place
	}
	if r.ScheduledDate != nil {
		iv.ScheduledDate = *r.ScheduledDate
	}
	if r.DurationMinutes != nil {
		d := *r.DurationMinutes
		iv.DurationMinutes = &d
	}
	if r.Notes != nil {
		iv.Notes = *r.Notes
	}
	if r.Outcome != nil {
		iv.Outcome = *r.Outcome
	}
}

// ScheduleUpdateRequest moves an interview.
type ScheduleUpdateRequest struct {
	ScheduledDate   *time.Time `json:"scheduled_date" validate:"required"`
	DurationMinutes *int       `json:"duration_minutes,omitempty" validate:"omitempty,min=1,max=480"`
}

// NotesUpdateRequest replaces an interview's notes.
type NotesUpdateRequest struct {
	Notes string `json:"notes"`
}

// OutcomeUpdateRequest records an interview's outcome.
type OutcomeUpdateRequest struct {
	Outcome InterviewOutcome `json:"outcome" validate:"required,oneof=pending passed failed cancelled"`
}

// InterviewListResponse wraps a list of interviews with its size.
type InterviewListResponse struct {
	Interviews []Interview `json:"interviews"`
	Total      int         `json:"total"`
}
