// Package types provides type definitions for structured data used throughout the job search tracker.
//
//nolint:revive // types is a standard Go package name pattern
package types

// PositionStatus is the lifecycle state of a job application.
type PositionStatus string

const (
	StatusApplied      PositionStatus = "applied"
	StatusScreening    PositionStatus = "screening"
	StatusInterviewing PositionStatus = "interviewing"
	StatusOffer        PositionStatus = "offer"
	StatusRejected     PositionStatus = "rejected"
	StatusWithdrawn    PositionStatus = "withdrawn"
)

// PositionStatuses lists every position status in declaration order.
func PositionStatuses() []PositionStatus {
	return []PositionStatus{
		StatusApplied,
		StatusScreening,
		StatusInterviewing,
		StatusOffer,
		StatusRejected,
		StatusWithdrawn,
	}
}

// Valid reports whether s is a known position status.
func (s PositionStatus) Valid() bool {
	for _, v := range PositionStatuses() {
		if s == v {
			return true
		}
	}
	return false
}

// InterviewType is the purpose of an interview stage.
type InterviewType string

const (
	InterviewTechnical  InterviewType = "technical"
	InterviewBehavioral InterviewType = "behavioral"
	InterviewHR         InterviewType = "hr"
	InterviewFinal      InterviewType = "final"
)

// InterviewTypes lists every interview type in declaration order.
func InterviewTypes() []InterviewType {
	return []InterviewType{InterviewTechnical, InterviewBehavioral, InterviewHR, InterviewFinal}
}

// Valid reports whether t is a known interview type.
func (t InterviewType) Valid() bool {
	for _, v := range InterviewTypes() {
		if t == v {
			return true
		}
	}
	return false
}

// InterviewPlace is the format an interview takes place in.
type InterviewPlace string

const (
	PlacePhone  InterviewPlace = "phone"
	PlaceVideo  InterviewPlace = "video"
	PlaceOnsite InterviewPlace = "onsite"
)

// InterviewPlaces lists every interview place in declaration order.
func InterviewPlaces() []InterviewPlace {
	return []InterviewPlace{PlacePhone, PlaceVideo, PlaceOnsite}
}

// Valid reports whether p is a known interview place.
func (p InterviewPlace) Valid() bool {
	for _, v := range InterviewPlaces() {
		if p == v {
			return true
		}
	}
	return false
}

// InterviewOutcome is the result of an interview stage.
type InterviewOutcome string

const (
	OutcomePending   InterviewOutcome = "pending"
	OutcomePassed    InterviewOutcome = "passed"
	OutcomeFailed    InterviewOutcome = "failed"
	OutcomeCancelled InterviewOutcome = "cancelled"
)

// InterviewOutcomes lists every interview outcome in declaration order.
func InterviewOutcomes() []InterviewOutcome {
	return []InterviewOutcome{OutcomePending, OutcomePassed, OutcomeFailed, OutcomeCancelled}
}

// Valid reports whether o is a known interview outcome.
func (o InterviewOutcome) Valid() bool {
	for _, v := range InterviewOutcomes() {
		if o == v {
			return true
		}
	}
	return false
}
