package scheduler

import "github.com/mlsaran/tt-scheduler-api/internal/cpsolver"

// assignmentVars is the dense 5-D X[b,s,p,r,f] storage, keyed by a
// row-major index computed once. Hash maps are avoided on the hot path
// per the documented "no global state / dense table" pattern.
type assignmentVars struct {
	dims [5]int
	vars []cpsolver.BoolVar
}

func newAssignmentVars(numBatches, numSubjects, numPeriods, numRooms, numFaculty int) assignmentVars {
	total := numBatches * numSubjects * numPeriods * numRooms * numFaculty
	return assignmentVars{
		dims: [5]int{numBatches, numSubjects, numPeriods, numRooms, numFaculty},
		vars: make([]cpsolver.BoolVar, total),
	}
}

func (a *assignmentVars) index(b, s, p, r, f int) int {
	return ((((b*a.dims[1])+s)*a.dims[2]+p)*a.dims[3]+r)*a.dims[4] + f
}

func (a *assignmentVars) get(b, s, p, r, f int) cpsolver.BoolVar {
	return a.vars[a.index(b, s, p, r, f)]
}

func (a *assignmentVars) set(b, s, p, r, f int, v cpsolver.BoolVar) {
	a.vars[a.index(b, s, p, r, f)] = v
}

// ModelBuilder allocates the decision variables and emits every hard
// constraint from the data model (§3 invariants 1-7).
type ModelBuilder struct {
	snap  *Snapshot
	idx   IndexSpace
	model *cpsolver.Model
	x     assignmentVars

	// EnforceQualifiedFaculty and EnforceSemesterMatch gate the two
	// candidate constraints named in the Open Questions: faculty
	// qualification is loaded but historically unenforced, and subject
	// semester is not matched against batch semester by default.
	EnforceQualifiedFaculty bool
	EnforceSemesterMatch    bool
}

// NewModelBuilder allocates the dense assignment table and returns a
// builder ready to emit constraints against it.
func NewModelBuilder(snap *Snapshot, idx IndexSpace) *ModelBuilder {
	model := cpsolver.NewModel()
	x := newAssignmentVars(idx.NumBatches, idx.NumSubjects, idx.NumPeriods, idx.NumRooms, idx.NumFaculty)
	for b := 0; b < idx.NumBatches; b++ {
		for s := 0; s < idx.NumSubjects; s++ {
			for p := 0; p < idx.NumPeriods; p++ {
				for r := 0; r < idx.NumRooms; r++ {
					for f := 0; f < idx.NumFaculty; f++ {
						x.set(b, s, p, r, f, model.NewBoolVar("x"))
					}
				}
			}
		}
	}
	return &ModelBuilder{snap: snap, idx: idx, model: model, x: x}
}

// Model returns the underlying cpsolver model, for the ObjectiveBuilder
// and SearchDriver.
func (mb *ModelBuilder) Model() *cpsolver.Model { return mb.model }

// X returns the decision variable table, for the ObjectiveBuilder and
// SolutionDecoder.
func (mb *ModelBuilder) X() *assignmentVars { return &mb.x }

// Build emits every hard constraint. Each private method below matches
// one invariant from the data model.
func (mb *ModelBuilder) Build() {
	mb.addNoOverlapConstraints()
	mb.addCapacityConstraints()
	mb.addWeeklyHoursConstraints()
	mb.addFacultyLoadConstraints()
	mb.addFixedSlotConstraints()
	if mb.EnforceQualifiedFaculty {
		mb.addQualifiedFacultyConstraints()
	}
	if mb.EnforceSemesterMatch {
		mb.addSemesterMatchConstraints()
	}
}

// addNoOverlapConstraints: invariants 2-4. For each axis in
// {batch, room, faculty} and each period, at most one assignment.
func (mb *ModelBuilder) addNoOverlapConstraints() {
	idx := mb.idx

	for b := 0; b < idx.NumBatches; b++ {
		for p := 0; p < idx.NumPeriods; p++ {
			vars := make([]cpsolver.IntVar, 0, idx.NumSubjects*idx.NumRooms*idx.NumFaculty)
			for s := 0; s < idx.NumSubjects; s++ {
				for r := 0; r < idx.NumRooms; r++ {
					for f := 0; f < idx.NumFaculty; f++ {
						vars = append(vars, mb.x.get(b, s, p, r, f).V())
					}
				}
			}
			mb.model.AddLE(cpsolver.Sum(vars...), 1)
		}
	}

	for r := 0; r < idx.NumRooms; r++ {
		for p := 0; p < idx.NumPeriods; p++ {
			vars := make([]cpsolver.IntVar, 0, idx.NumBatches*idx.NumSubjects*idx.NumFaculty)
			for b := 0; b < idx.NumBatches; b++ {
				for s := 0; s < idx.NumSubjects; s++ {
					for f := 0; f < idx.NumFaculty; f++ {
						vars = append(vars, mb.x.get(b, s, p, r, f).V())
					}
				}
			}
			mb.model.AddLE(cpsolver.Sum(vars...), 1)
		}
	}

	for f := 0; f < idx.NumFaculty; f++ {
		for p := 0; p < idx.NumPeriods; p++ {
			vars := make([]cpsolver.IntVar, 0, idx.NumBatches*idx.NumSubjects*idx.NumRooms)
			for b := 0; b < idx.NumBatches; b++ {
				for s := 0; s < idx.NumSubjects; s++ {
					for r := 0; r < idx.NumRooms; r++ {
						vars = append(vars, mb.x.get(b, s, p, r, f).V())
					}
				}
			}
			mb.model.AddLE(cpsolver.Sum(vars...), 1)
		}
	}
}

// addCapacityConstraints: invariant 1. Every X[b,*,*,r,*] with
// batch.size > room.capacity is fixed to 0.
func (mb *ModelBuilder) addCapacityConstraints() {
	idx := mb.idx
	for b, batch := range mb.snap.Batches {
		for r, room := range mb.snap.Rooms {
			if batch.Size <= room.Capacity {
				continue
			}
			for s := 0; s < idx.NumSubjects; s++ {
				for p := 0; p < idx.NumPeriods; p++ {
					for f := 0; f < idx.NumFaculty; f++ {
						mb.model.AddEQ(cpsolver.Sum(mb.x.get(b, s, p, r, f).V()), 0)
					}
				}
			}
		}
	}
}

// addWeeklyHoursConstraints: invariant 5. Sum of X[b,s,*,*,*] equals
// subject.hours_week, including the hours_week == 0 case (subject off).
func (mb *ModelBuilder) addWeeklyHoursConstraints() {
	idx := mb.idx
	for b := 0; b < idx.NumBatches; b++ {
		for s, subject := range mb.snap.Subjects {
			vars := make([]cpsolver.IntVar, 0, idx.NumPeriods*idx.NumRooms*idx.NumFaculty)
			for p := 0; p < idx.NumPeriods; p++ {
				for r := 0; r < idx.NumRooms; r++ {
					for f := 0; f < idx.NumFaculty; f++ {
						vars = append(vars, mb.x.get(b, s, p, r, f).V())
					}
				}
			}
			mb.model.AddEQ(cpsolver.Sum(vars...), subject.HoursWeek)
		}
	}
}

// addFacultyLoadConstraints: invariant 6. Weekly sum <= max_week; daily
// sum <= max_day for every (faculty, day).
func (mb *ModelBuilder) addFacultyLoadConstraints() {
	idx := mb.idx
	for f, fac := range mb.snap.Faculty {
		weekVars := make([]cpsolver.IntVar, 0, idx.NumPeriods*idx.NumBatches*idx.NumSubjects*idx.NumRooms)
		for d := 0; d < Days; d++ {
			dayVars := make([]cpsolver.IntVar, 0, PeriodsPerDay*idx.NumBatches*idx.NumSubjects*idx.NumRooms)
			for k := 1; k <= PeriodsPerDay; k++ {
				p := Slot(d, k)
				for b := 0; b < idx.NumBatches; b++ {
					for s := 0; s < idx.NumSubjects; s++ {
						for r := 0; r < idx.NumRooms; r++ {
							dayVars = append(dayVars, mb.x.get(b, s, p, r, f).V())
						}
					}
				}
			}
			mb.model.AddLE(cpsolver.Sum(dayVars...), fac.MaxDay)
			weekVars = append(weekVars, dayVars...)
		}
		mb.model.AddLE(cpsolver.Sum(weekVars...), fac.MaxWeek)
	}
}

// addFixedSlotConstraints: invariant 7. For each FixedSlot the batch holds
// exactly one class at that (batch, slot); when the slot names a room,
// every X at that (batch, slot) with a different room is forced to 0.
// A slot without a room leaves the room free: no pairwise "at most one of
// these rooms" restriction is emitted, since addNoOverlapConstraints's
// per-batch clause already subsumes it.
func (mb *ModelBuilder) addFixedSlotConstraints() {
	idx := mb.idx
	for _, fs := range mb.snap.FixedSlots {
		b, ok := mb.snap.BatchIdx(fs.BatchID)
		if !ok {
			continue // validated at snapshot build time; defensive only
		}
		p := Slot(fs.Day, fs.Period)
		slotVars := make([]cpsolver.IntVar, 0, idx.NumSubjects*idx.NumRooms*idx.NumFaculty)
		for s := 0; s < idx.NumSubjects; s++ {
			for r := 0; r < idx.NumRooms; r++ {
				for f := 0; f < idx.NumFaculty; f++ {
					slotVars = append(slotVars, mb.x.get(b, s, p, r, f).V())
				}
			}
		}
		mb.model.AddEQ(cpsolver.Sum(slotVars...), 1)
		if fs.RoomID == nil {
			continue
		}
		wantRoom, ok := mb.snap.RoomIdx(*fs.RoomID)
		if !ok {
			continue
		}
		for r := 0; r < idx.NumRooms; r++ {
			if r == wantRoom {
				continue
			}
			for s := 0; s < idx.NumSubjects; s++ {
				for f := 0; f < idx.NumFaculty; f++ {
					mb.model.AddEQ(cpsolver.Sum(mb.x.get(b, s, p, r, f).V()), 0)
				}
			}
		}
	}
}

// addQualifiedFacultyConstraints forces X[b,s,p,r,f] = 0 whenever f is
// not qualified for s, per Open Question 1. Off by default to preserve
// observed behaviour; enabled via SchedulerConfig.EnforceQualifiedFaculty.
func (mb *ModelBuilder) addQualifiedFacultyConstraints() {
	idx := mb.idx
	for f, fac := range mb.snap.Faculty {
		qualified := make(map[int]bool, len(fac.SubjectIDs))
		for _, sid := range fac.SubjectIDs {
			if s, ok := mb.snap.SubjectIdx(sid); ok {
				qualified[s] = true
			}
		}
		for s := 0; s < idx.NumSubjects; s++ {
			if qualified[s] {
				continue
			}
			for b := 0; b < idx.NumBatches; b++ {
				for p := 0; p < idx.NumPeriods; p++ {
					for r := 0; r < idx.NumRooms; r++ {
						mb.model.AddEQ(cpsolver.Sum(mb.x.get(b, s, p, r, f).V()), 0)
					}
				}
			}
		}
	}
}

// addSemesterMatchConstraints forces X[b,s,*,*,*] = 0 whenever subject s's
// semester differs from batch b's semester, per Open Question 4. Off by
// default; enabled via SchedulerConfig.EnforceSemesterMatch.
func (mb *ModelBuilder) addSemesterMatchConstraints() {
	idx := mb.idx
	for b, batch := range mb.snap.Batches {
		for s, subject := range mb.snap.Subjects {
			if subject.Semester == batch.Semester {
				continue
			}
			for p := 0; p < idx.NumPeriods; p++ {
				for r := 0; r < idx.NumRooms; r++ {
					for f := 0; f < idx.NumFaculty; f++ {
						mb.model.AddEQ(cpsolver.Sum(mb.x.get(b, s, p, r, f).V()), 0)
					}
				}
			}
		}
	}
}
