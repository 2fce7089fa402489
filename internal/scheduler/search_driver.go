package scheduler

import (
	"context"

	"github.com/mlsaran/tt-scheduler-api/internal/cpsolver"
)

// SearchDriver runs the solver with a time cap and a callback that
// captures up to N distinct solutions. It does not cancel the solver on
// quota reached: additional callbacks are simply ignored so the solver
// keeps improving until optimal, the time cap, or an exhausted search
// tree.
type SearchDriver struct {
	snap *Snapshot
	idx  IndexSpace
	x    *assignmentVars
}

// NewSearchDriver binds a SearchDriver to the built model's variable
// table, for decoding solutions back to domain tuples.
func NewSearchDriver(snap *Snapshot, idx IndexSpace, mb *ModelBuilder) *SearchDriver {
	return &SearchDriver{snap: snap, idx: idx, x: mb.X()}
}

// solutionCollector is the SolutionCollector callback: it decodes and
// appends every solution the solver reports, and stops accepting new
// ones once numVariants have been recorded.
type solutionCollector struct {
	driver      *SearchDriver
	numVariants int
	solutions   []SolutionRecord
}

func (c *solutionCollector) OnSolution(s *cpsolver.Solution) {
	if len(c.solutions) >= c.numVariants {
		return
	}
	c.solutions = append(c.solutions, c.driver.decodeSolution(s))
}

// Run drives the solver to completion or timeout and returns the
// collected solutions (0..numVariants) and the terminal solver status.
func (sd *SearchDriver) Run(ctx context.Context, model *cpsolver.Model, numVariants int) ([]SolutionRecord, cpsolver.Status) {
	collector := &solutionCollector{driver: sd, numVariants: numVariants}
	solver := cpsolver.NewSolver()
	status := solver.Solve(ctx, model, collector)
	return collector.solutions, status
}

// decodeSolution is the SolutionDecoder: walks the dense assignment
// table for every variable with value 1, translating p -> (day,
// period_no) and dense indices back to domain ids. Order is insertion
// order from the decode walk, not canonical.
func (sd *SearchDriver) decodeSolution(sol *cpsolver.Solution) SolutionRecord {
	idx := sd.idx
	var periods []Period
	for b := 0; b < idx.NumBatches; b++ {
		for s := 0; s < idx.NumSubjects; s++ {
			for p := 0; p < idx.NumPeriods; p++ {
				for r := 0; r < idx.NumRooms; r++ {
					for f := 0; f < idx.NumFaculty; f++ {
						if !sol.BoolValue(sd.x.get(b, s, p, r, f)) {
							continue
						}
						day, periodNo := Unslot(p)
						periods = append(periods, Period{
							Day:       day,
							PeriodNo:  periodNo,
							RoomID:    sd.snap.Rooms[r].ID,
							BatchID:   sd.snap.Batches[b].ID,
							SubjectID: sd.snap.Subjects[s].ID,
							FacultyID: sd.snap.Faculty[f].ID,
						})
					}
				}
			}
		}
	}
	return SolutionRecord{Periods: periods}
}
