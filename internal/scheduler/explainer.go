package scheduler

import "fmt"

// Explainer is the InfeasibilityExplainer: on UNSAT (or a time-out
// without solutions) it runs three necessary-condition checks, none
// individually sufficient, and emits zero or more suggestions. It never
// re-runs the solver; it is a static diagnostic over the snapshot.
type Explainer struct {
	snap *Snapshot
}

// NewExplainer binds an Explainer to the run's snapshot.
func NewExplainer(snap *Snapshot) *Explainer {
	return &Explainer{snap: snap}
}

// Explain runs the three checks and returns a Diagnostic. reason names
// why the caller is invoking the explainer (UNSAT vs. timeout) so the
// generic message can distinguish the two when no check fires.
func (e *Explainer) Explain(reason string) *Diagnostic {
	var suggestions []Suggestion
	suggestions = append(suggestions, e.checkRoomCapacity()...)
	suggestions = append(suggestions, e.checkAggregateFacultyWorkload()...)
	suggestions = append(suggestions, e.checkPerBatchHourEnvelope()...)

	msg := "no feasible timetable found"
	if reason != "" {
		msg = reason
	}
	return &Diagnostic{Error: msg, Suggestions: suggestions}
}

// checkRoomCapacity flags any batch whose size exceeds every room's
// capacity: no room could ever host it.
func (e *Explainer) checkRoomCapacity() []Suggestion {
	maxCapacity := 0
	for _, r := range e.snap.Rooms {
		if r.Capacity > maxCapacity {
			maxCapacity = r.Capacity
		}
	}
	var out []Suggestion
	for _, b := range e.snap.Batches {
		if b.Size > maxCapacity {
			out = append(out, Suggestion{
				Type:    "room_capacity",
				Message: fmt.Sprintf("batch %s (size %d) exceeds the capacity of every available room (max %d)", b.Name, b.Size, maxCapacity),
				Solution: "add or resize a room with capacity >= " + fmt.Sprint(b.Size),
			})
		}
	}
	return out
}

// checkAggregateFacultyWorkload flags total weekly teaching demand that
// exceeds total faculty weekly capacity.
func (e *Explainer) checkAggregateFacultyWorkload() []Suggestion {
	totalHours := 0
	for _, s := range e.snap.Subjects {
		totalHours += s.HoursWeek
	}
	totalCapacity := 0
	for _, f := range e.snap.Faculty {
		totalCapacity += f.MaxWeek
	}
	if totalHours <= totalCapacity {
		return nil
	}
	return []Suggestion{{
		Type:    "faculty_workload",
		Message: fmt.Sprintf("teaching demand (%d hours/week) exceeds capacity (%d hours/week)", totalHours, totalCapacity),
		Solution: "hire additional faculty or raise max_week limits",
	}}
}

// checkPerBatchHourEnvelope flags a batch whose same-semester subjects
// demand more hours than the week has periods.
func (e *Explainer) checkPerBatchHourEnvelope() []Suggestion {
	envelope := Days * PeriodsPerDay
	var out []Suggestion
	for _, b := range e.snap.Batches {
		sum := 0
		for _, s := range e.snap.Subjects {
			if s.Semester == b.Semester {
				sum += s.HoursWeek
			}
		}
		if sum > envelope {
			out = append(out, Suggestion{
				Type:    "subject_hours",
				Message: fmt.Sprintf("batch %s's semester %d subjects demand %d hours, exceeding the %d periods in a week", b.Name, b.Semester, sum, envelope),
				Solution: "reduce hours_week for some subjects or split the batch",
			})
		}
	}
	return out
}
