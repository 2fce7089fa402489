// Package scheduler builds and solves the weekly timetable constraint
// model: a dense (batch, subject, period, room, faculty) decision space
// with no-overlap, capacity, weekly-hours, faculty-load and fixed-slot
// constraints, optimized lexicographically over idle gaps, room
// utilization and load imbalance. It is reentrant given a Catalog and a
// variant count, and never imports the HTTP or persistence stack.
package scheduler

import (
	"context"
	"errors"
	"time"
)

// Weekly layout constants, part of the external contract: fixed slots and
// decoded Period records are bound to these values at every boundary.
const (
	Days          = 6
	PeriodsPerDay = 8
	TotalPeriods  = Days * PeriodsPerDay
)

// DefaultSolveTimeout caps a single GenerateVariants call.
const DefaultSolveTimeout = 120 * time.Second

// Sentinel errors returned by GenerateVariants. The scheduler never wraps
// these in an application error type; callers (the service layer) do that.
var (
	ErrInvalidInput = errors.New("scheduler: invalid input snapshot")
	ErrInternal     = errors.New("scheduler: internal solver failure")
)

// Room is the scheduler's read-only view of a bookable space.
type Room struct {
	ID             string
	Name           string
	Type           string
	Capacity       int
	AvailableSlots []byte // opaque, never interpreted by the core
}

// Faculty is the scheduler's read-only view of a teacher.
type Faculty struct {
	ID         string
	Name       string
	MaxDay     int
	MaxWeek    int
	LeaveAvg   float64 // unused by the core
	SubjectIDs []string
}

// Batch is the scheduler's read-only view of a class group.
type Batch struct {
	ID        string
	Name      string
	Size      int
	Programme string
	Semester  int
}

// Subject is the scheduler's read-only view of a course offering.
type Subject struct {
	ID        string
	Code      string
	Name      string
	HoursWeek int
	Type      string
	Semester  int
}

// FixedSlot is an authored cell that must appear in every solution.
type FixedSlot struct {
	ID      string
	BatchID string
	Day     int // 0-based, [0, Days)
	Period  int // 1-based, [1, PeriodsPerDay]
	RoomID  *string
}

// Catalog is the read-only bulk data source the scheduler consumes. No
// filtering, no pagination, no transactions: each method returns the
// entire table for the run.
type Catalog interface {
	Rooms(ctx context.Context) ([]Room, error)
	Faculty(ctx context.Context) ([]Faculty, error)
	Batches(ctx context.Context) ([]Batch, error)
	Subjects(ctx context.Context) ([]Subject, error)
	FixedSlots(ctx context.Context) ([]FixedSlot, error)
}

// Period is one atomic scheduled class in a solution.
type Period struct {
	Day       int
	PeriodNo  int
	RoomID    string
	BatchID   string
	SubjectID string
	FacultyID string
}

// SolutionRecord is an ordered list of Period records in decode order.
type SolutionRecord struct {
	Periods []Period
}

// Suggestion is one necessary-condition finding from the infeasibility
// explainer.
type Suggestion struct {
	Type     string
	Message  string
	Solution string
}

// Diagnostic is returned instead of solutions when the instance is
// infeasible, or times out without finding one. It is a value, not an
// error: spec classifies Infeasible as "not a fault".
type Diagnostic struct {
	Error       string
	Suggestions []Suggestion
}

// Result is the sum-type outcome of GenerateVariants: either a non-empty
// solution list, or a Diagnostic. Exactly one of the two is populated.
type Result struct {
	Solutions  []SolutionRecord
	Diagnostic *Diagnostic
}
