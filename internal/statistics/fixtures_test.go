package statistics

import (
	"time"

	"github.com/google/uuid"
	"github.com/haimn-support/job-search-tracker-api/internal/types"
)

func newPosition(company string, status types.PositionStatus, applied types.Date) types.Position {
	return types.Position{
		ID:              uuid.New(),
		Title:           "Software Engineer",
		Company:         company,
		Status:          status,
		ApplicationDate: applied,
		CreatedAt:       applied.Time,
		UpdatedAt:       applied.Time,
	}
}

func newInterview(p types.Position, at time.Time, typ types.InterviewType, outcome types.InterviewOutcome) types.Interview {
	return types.Interview{
		ID:            uuid.New(),
		PositionID:    p.ID,
		Type:          typ,
		Place:         types.PlaceVideo,
		ScheduledDate: at,
		Outcome:       outcome,
	}
}

func at(year int, month time.Month, day, hour int) time.Time {
	return time.Date(year, month, day, hour, 0, 0, 0, time.UTC)
}
