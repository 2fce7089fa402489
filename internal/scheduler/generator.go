package scheduler

import (
	"context"
	"fmt"

	"github.com/mlsaran/tt-scheduler-api/internal/cpsolver"
)

// Generator wires InputSnapshot -> IndexSpace -> ModelBuilder ->
// ObjectiveBuilder -> SearchDriver -> SolutionDecoder (on success) or
// InputSnapshot -> InfeasibilityExplainer (on UNSAT) in the order
// described by the system overview. It is reentrant: each
// GenerateVariants call builds its own model and owns it for the run.
type Generator struct {
	catalog Catalog

	// EnforceQualifiedFaculty and EnforceSemesterMatch gate the two
	// candidate constraints from the Open Questions; both default false
	// to preserve observed behaviour.
	EnforceQualifiedFaculty bool
	EnforceSemesterMatch    bool
}

// NewGenerator binds a Generator to its Catalog collaborator.
func NewGenerator(catalog Catalog) *Generator {
	return &Generator{catalog: catalog}
}

// GenerateVariants is the scheduler's single boundary operation. It
// blocks for up to DefaultSolveTimeout, then returns either up to
// numVariants solutions or a Diagnostic. A numVariants outside [1,5] is
// InvalidInput.
func (g *Generator) GenerateVariants(ctx context.Context, numVariants int) (Result, error) {
	if numVariants < 1 || numVariants > 5 {
		return Result{}, fmt.Errorf("%w: numVariants must be in [1,5], got %d", ErrInvalidInput, numVariants)
	}

	snap, err := BuildSnapshot(ctx, g.catalog)
	if err != nil {
		return Result{}, err
	}

	idx := NewIndexSpace(snap)

	mb := NewModelBuilder(snap, idx)
	mb.EnforceQualifiedFaculty = g.EnforceQualifiedFaculty
	mb.EnforceSemesterMatch = g.EnforceSemesterMatch
	mb.Build()

	ob := NewObjectiveBuilder(snap, idx, mb)
	ob.Build()

	runCtx, cancel := context.WithTimeout(ctx, DefaultSolveTimeout)
	defer cancel()

	driver := NewSearchDriver(snap, idx, mb)
	solutions, status := driver.Run(runCtx, mb.Model(), numVariants)

	switch status {
	case cpsolver.StatusOptimal, cpsolver.StatusFeasible:
		// Both statuses imply at least one solution was reported to the
		// callback (cpsolver.Solve only returns StatusFeasible when a
		// timed-out search still found something); GenerateVariants always
		// requests numVariants >= 1 into a collector that keeps its first
		// find, so solutions is never empty here.
		return Result{Solutions: solutions}, nil
	case cpsolver.StatusInfeasible:
		return Result{Diagnostic: NewExplainer(snap).Explain("no feasible timetable found")}, nil
	case cpsolver.StatusTimeout:
		return Result{Diagnostic: NewExplainer(snap).Explain("solver timed out before finding a feasible timetable")}, nil
	default:
		return Result{}, fmt.Errorf("%w: solver returned unknown status", ErrInternal)
	}
}
