package types

import (
	"time"

	"github.com/google/uuid"
)

// Position is a tracked job application owned by a single user.
type Position struct {
	ID              uuid.UUID      `json:"id"`
	UserID          uuid.UUID      `json:"user_id"`
	Title           string         `json:"title"`
	Company         string         `json:"company"`
	Description     string         `json:"description,omitempty"`
	Location        string         `json:"location,omitempty"`
	SalaryRange     string         `json:"salary_range,omitempty"`
	Status          PositionStatus `json:"status"`
	ApplicationDate Date           `json:"application_date"`
	CreatedAt       time.Time      `json:"created_at"`
	UpdatedAt       time.Time      `json:"updated_at"`
	Interviews      []Interview    `json:"interviews,omitempty"`
}

// CreatePositionRequest is the payload for creating a position.
type CreatePositionRequest struct {
	Title           string         `json:"title" validate:"required,max=255"`
	Company         string         `json:"company" validate:"required,max=255"`
	Description     string         `json:"description,omitempty"`
	Location        string         `json:"location,omitempty" validate:"max=255"`
	SalaryRange     string         `json:"salary_range,omitempty" validate:"max=100"`
	Status          PositionStatus `json:"status,omitempty" validate:"omitempty,oneof=applied screening interviewing offer rejected withdrawn"`
	ApplicationDate *Date          `json:"application_date" validate:"required"`
}

// UpdatePositionRequest is a partial update; nil fields are left unchanged.
type UpdatePositionRequest struct {
	Title           *string         `json:"title,omitempty" validate:"omitempty,min=1,max=255"`
	Company         *string         `json:"company,omitempty" validate:"omitempty,min=1,max=255"`
	Description     *string         `json:"description,omitempty"`
	Location        *string         `json:"location,omitempty" validate:"omitempty,max=255"`
	SalaryRange     *string         `json:"salary_range,omitempty" validate:"omitempty,max=100"`
	Status          *PositionStatus `json:"status,omitempty" validate:"omitempty,oneof=applied screening interviewing offer rejected withdrawn"`
	ApplicationDate *Date           `json:"application_date,omitempty"`
}

// Apply copies the non-nil fields of the request onto p.
func (r *UpdatePositionRequest) Apply(p *Position) {
	if r.Title != nil {
		p.Title = *r.Title
	}
	if r.Company != nil {
		p.Company = *r.Company
	}
	if r.Description != nil {
		p.Description = *r.Description
	}
	if r.Location != nil {
		p.Location = *r.Location
	}
	if r.SalaryRange != nil {
		p.SalaryRange = *r.SalaryRange
	}
	if r.Status != nil {
		p.Status = *r.Status
	}
	if r.ApplicationDate != nil {
		p.ApplicationDate = *r.ApplicationDate
	}
}

// PositionListOptions holds filtering, sorting and paging for position listings.
type PositionListOptions struct {
	Status    PositionStatus
	Company   string
	DateFrom  *Date
	DateTo    *Date
	Search    string
	SortBy    string
	SortOrder string
	Page      int
	PerPage   int
}

// PositionListResponse is a single page of positions.
type PositionListResponse struct {
	Positions []Position `json:"positions"`
	Total     int        `json:"total"`
	Page      int        `json:"page"`
	PerPage   int        `json:"per_page"`
	HasNext   bool       `json:"has_next"`
	HasPrev   bool       `json:"has_prev"`
}
