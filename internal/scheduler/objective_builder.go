package scheduler

import "github.com/mlsaran/tt-scheduler-api/internal/cpsolver"

// ObjectiveBuilder derives the auxiliary variables for gaps, room
// utilization and load imbalance, and emits the weighted lexicographic
// objective: minimize 10000*Gaps - 100*Utilization + Imbalance.
type ObjectiveBuilder struct {
	snap  *Snapshot
	idx   IndexSpace
	model *cpsolver.Model
	x     *assignmentVars
}

// NewObjectiveBuilder binds an ObjectiveBuilder to an already-allocated
// ModelBuilder's variables.
func NewObjectiveBuilder(snap *Snapshot, idx IndexSpace, mb *ModelBuilder) *ObjectiveBuilder {
	return &ObjectiveBuilder{snap: snap, idx: idx, model: mb.Model(), x: mb.X()}
}

// Build emits the gap/utilization/imbalance auxiliary variables and the
// final Minimize call.
func (ob *ObjectiveBuilder) Build() {
	gaps := ob.buildGaps()
	utilization := ob.buildUtilization()
	imbalance := ob.buildImbalance()

	objective := cpsolver.Scaled(10000, gaps).
		Plus(cpsolver.Scaled(-100, utilization)).
		Plus(cpsolver.Scaled(1, imbalance))
	ob.model.Minimize(objective)
}

// buildGaps reifies sched[f,d,i] against the per-slot faculty load, then
// for each interior period reifies hasEarlier/hasLater occupancy and
// finally gap[f,d,i] itself, encoding both directions of each
// implication per the "reified auxiliary variables" pattern. Returns the
// IntVar totalling Gaps = sum(gap[f,d,i]).
func (ob *ObjectiveBuilder) buildGaps() cpsolver.IntVar {
	idx := ob.idx
	sched := make([][][]cpsolver.BoolVar, idx.NumFaculty)
	for f := 0; f < idx.NumFaculty; f++ {
		sched[f] = make([][]cpsolver.BoolVar, Days)
		for d := 0; d < Days; d++ {
			sched[f][d] = make([]cpsolver.BoolVar, PeriodsPerDay)
			for i := 0; i < PeriodsPerDay; i++ {
				s := ob.model.NewBoolVar("sched")
				p := Slot(d, i+1)
				sum := ob.facultySlotSum(f, p)
				ob.model.AddGE(sum, 1).OnlyEnforceIf(s.Lit())
				ob.model.AddEQ(sum, 0).OnlyEnforceIf(s.Not())
				sched[f][d][i] = s
			}
		}
	}

	var gapVars []cpsolver.IntVar
	for f := 0; f < idx.NumFaculty; f++ {
		for d := 0; d < Days; d++ {
			for i := 1; i <= PeriodsPerDay-2; i++ {
				earlier := make([]cpsolver.Literal, i)
				for j := 0; j < i; j++ {
					earlier[j] = sched[f][d][j].Lit()
				}
				later := make([]cpsolver.Literal, 0, PeriodsPerDay-i-1)
				for j := i + 1; j < PeriodsPerDay; j++ {
					later = append(later, sched[f][d][j].Lit())
				}

				hasEarlier := ob.reifyOr(earlier, "hasEarlier")
				hasLater := ob.reifyOr(later, "hasLater")

				gap := ob.model.NewBoolVar("gap")
				ob.model.AddBoolAnd(hasEarlier.Lit(), sched[f][d][i].Not(), hasLater.Lit()).OnlyEnforceIf(gap.Lit())
				ob.model.AddBoolOr(hasEarlier.Not(), sched[f][d][i].Lit(), hasLater.Not()).OnlyEnforceIf(gap.Not())
				gapVars = append(gapVars, gap.V())
			}
		}
	}

	gaps := ob.model.NewIntVar(0, len(gapVars), "gaps")
	ob.model.AddEQ(cpsolver.Sum(gapVars...).Minus(cpsolver.Sum(gaps)), 0)
	return gaps
}

// reifyOr reifies b <=> OR(lits) in both directions: b true forces at
// least one literal true, b false forces every literal false.
func (ob *ObjectiveBuilder) reifyOr(lits []cpsolver.Literal, name string) cpsolver.BoolVar {
	b := ob.model.NewBoolVar(name)
	if len(lits) == 0 {
		ob.model.AddEQ(cpsolver.Sum(b.V()), 0)
		return b
	}
	ob.model.AddBoolOr(lits...).OnlyEnforceIf(b.Lit())
	negated := make([]cpsolver.Literal, len(lits))
	for i, lit := range lits {
		negated[i] = cpsolver.Not(lit)
	}
	ob.model.AddBoolAnd(negated...).OnlyEnforceIf(b.Not())
	return b
}

// facultySlotSum sums X[*,*,p,*,f] over every batch, subject and room.
func (ob *ObjectiveBuilder) facultySlotSum(f, p int) cpsolver.LinearExpr {
	idx := ob.idx
	vars := make([]cpsolver.IntVar, 0, idx.NumBatches*idx.NumSubjects*idx.NumRooms)
	for b := 0; b < idx.NumBatches; b++ {
		for s := 0; s < idx.NumSubjects; s++ {
			for r := 0; r < idx.NumRooms; r++ {
				vars = append(vars, ob.x.get(b, s, p, r, f).V())
			}
		}
	}
	return cpsolver.Sum(vars...)
}

// buildUtilization reifies used[r,p] against the per-slot room occupancy
// and returns the IntVar totalling Utilization = sum(used[r,p]).
func (ob *ObjectiveBuilder) buildUtilization() cpsolver.IntVar {
	idx := ob.idx
	var usedVars []cpsolver.IntVar
	for r := 0; r < idx.NumRooms; r++ {
		for p := 0; p < idx.NumPeriods; p++ {
			used := ob.model.NewBoolVar("used")
			sum := ob.roomSlotSum(r, p)
			ob.model.AddGE(sum, 1).OnlyEnforceIf(used.Lit())
			ob.model.AddEQ(sum, 0).OnlyEnforceIf(used.Not())
			usedVars = append(usedVars, used.V())
		}
	}
	utilization := ob.model.NewIntVar(0, len(usedVars), "utilization")
	ob.model.AddEQ(cpsolver.Sum(usedVars...).Minus(cpsolver.Sum(utilization)), 0)
	return utilization
}

func (ob *ObjectiveBuilder) roomSlotSum(r, p int) cpsolver.LinearExpr {
	idx := ob.idx
	vars := make([]cpsolver.IntVar, 0, idx.NumBatches*idx.NumSubjects*idx.NumFaculty)
	for b := 0; b < idx.NumBatches; b++ {
		for s := 0; s < idx.NumSubjects; s++ {
			for f := 0; f < idx.NumFaculty; f++ {
				vars = append(vars, ob.x.get(b, s, p, r, f).V())
			}
		}
	}
	return cpsolver.Sum(vars...)
}

// buildImbalance derives per-faculty load, the mean load (floored when
// not evenly divisible, per the documented rounding behaviour), the
// signed per-faculty deviation, and its absolute value, returning the
// IntVar totalling Imbalance = sum(abs_diff[f]).
func (ob *ObjectiveBuilder) buildImbalance() cpsolver.IntVar {
	idx := ob.idx
	if idx.NumFaculty == 0 {
		return ob.model.NewIntVar(0, 0, "imbalance")
	}

	loads := make([]cpsolver.IntVar, idx.NumFaculty)
	for f := 0; f < idx.NumFaculty; f++ {
		vars := make([]cpsolver.IntVar, 0, idx.NumBatches*idx.NumSubjects*idx.NumPeriods*idx.NumRooms)
		for b := 0; b < idx.NumBatches; b++ {
			for s := 0; s < idx.NumSubjects; s++ {
				for p := 0; p < idx.NumPeriods; p++ {
					for r := 0; r < idx.NumRooms; r++ {
						vars = append(vars, ob.x.get(b, s, p, r, f).V())
					}
				}
			}
		}
		load := ob.model.NewIntVar(0, TotalPeriods, "load")
		ob.model.AddEQ(cpsolver.Sum(vars...).Minus(cpsolver.Sum(load)), 0)
		loads[f] = load
	}

	avg := ob.model.NewIntVar(0, TotalPeriods, "avg")
	totalLoad := cpsolver.Sum(loads...)
	ob.model.AddEQ(cpsolver.Scaled(idx.NumFaculty, avg).Minus(totalLoad), 0)

	absDiffs := make([]cpsolver.IntVar, idx.NumFaculty)
	for f, load := range loads {
		diff := ob.model.NewIntVar(-TotalPeriods, TotalPeriods, "diff")
		diffExpr := cpsolver.Sum(load).Minus(cpsolver.Sum(avg))
		ob.model.AddEQ(diffExpr.Minus(cpsolver.Sum(diff)), 0)

		absDiff := ob.model.NewIntVar(0, TotalPeriods, "absDiff")
		ob.model.AddAbsEquality(absDiff, cpsolver.Sum(diff))
		absDiffs[f] = absDiff
	}

	imbalance := ob.model.NewIntVar(0, idx.NumFaculty*TotalPeriods, "imbalance")
	ob.model.AddEQ(cpsolver.Sum(absDiffs...).Minus(cpsolver.Sum(imbalance)), 0)
	return imbalance
}
