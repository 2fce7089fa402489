package cpsolver

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type collectingCallback struct {
	solutions []map[string]int
	names     []string
}

func (c *collectingCallback) OnSolution(s *Solution) {
	vals := make(map[string]int, len(c.names))
	for i, name := range c.names {
		vals[name] = s.values[i]
	}
	c.solutions = append(c.solutions, vals)
}

func TestSolverBoolVarDomain(t *testing.T) {
	model := NewModel()
	b := model.NewBoolVar("b")
	model.AddEQ(Sum(b.V()), 1)

	cb := &collectingCallback{names: []string{"b"}}
	status := NewSolver().Solve(context.Background(), model, cb)

	require.Equal(t, StatusOptimal, status)
	require.Len(t, cb.solutions, 1)
	assert.Equal(t, 1, cb.solutions[0]["b"])
}

func TestSolverIntVarBounds(t *testing.T) {
	model := NewModel()
	x := model.NewIntVar(3, 5, "x")
	model.AddEQ(Sum(x), 4)

	cb := &collectingCallback{names: []string{"x"}}
	status := NewSolver().Solve(context.Background(), model, cb)

	require.Equal(t, StatusOptimal, status)
	require.Len(t, cb.solutions, 1)
	assert.Equal(t, 4, cb.solutions[0]["x"])
}

func TestSolverLinearSumConstraint(t *testing.T) {
	model := NewModel()
	a := model.NewIntVar(0, 3, "a")
	b := model.NewIntVar(0, 3, "b")
	model.AddEQ(Sum(a, b), 5)
	model.Minimize(Sum(a))

	cb := &collectingCallback{names: []string{"a", "b"}}
	status := NewSolver().Solve(context.Background(), model, cb)

	require.Equal(t, StatusOptimal, status)
	require.NotEmpty(t, cb.solutions)
	best := cb.solutions[len(cb.solutions)-1]
	assert.Equal(t, 5, best["a"]+best["b"])
	assert.Equal(t, 2, best["a"])
}

func TestSolverReifiedImplication(t *testing.T) {
	model := NewModel()
	trigger := model.NewBoolVar("trigger")
	x := model.NewIntVar(0, 1, "x")
	model.AddEQ(Sum(x), 1).OnlyEnforceIf(trigger.Lit())
	model.AddEQ(Sum(trigger.V()), 0)

	cb := &collectingCallback{names: []string{"trigger", "x"}}
	status := NewSolver().Solve(context.Background(), model, cb)

	require.Equal(t, StatusOptimal, status)
	for _, sol := range cb.solutions {
		assert.Equal(t, 0, sol["trigger"])
	}
}

func TestSolverBoolAnd(t *testing.T) {
	model := NewModel()
	a := model.NewBoolVar("a")
	b := model.NewBoolVar("b")
	model.AddBoolAnd(a.Lit(), b.Lit())

	cb := &collectingCallback{names: []string{"a", "b"}}
	status := NewSolver().Solve(context.Background(), model, cb)

	require.Equal(t, StatusOptimal, status)
	require.NotEmpty(t, cb.solutions)
	for _, sol := range cb.solutions {
		assert.Equal(t, 1, sol["a"])
		assert.Equal(t, 1, sol["b"])
	}
}

func TestSolverBoolOr(t *testing.T) {
	model := NewModel()
	a := model.NewBoolVar("a")
	b := model.NewBoolVar("b")
	model.AddBoolOr(a.Lit(), b.Lit())

	cb := &collectingCallback{names: []string{"a", "b"}}
	status := NewSolver().Solve(context.Background(), model, cb)

	require.Equal(t, StatusOptimal, status)
	require.NotEmpty(t, cb.solutions)
	for _, sol := range cb.solutions {
		assert.True(t, sol["a"] == 1 || sol["b"] == 1)
	}
}

func TestSolverAbsEquality(t *testing.T) {
	model := NewModel()
	x := model.NewIntVar(-3, 3, "x")
	abs := model.NewIntVar(0, 3, "abs")
	model.AddAbsEquality(abs, Sum(x))
	model.AddEQ(Sum(x), -2)

	cb := &collectingCallback{names: []string{"x", "abs"}}
	status := NewSolver().Solve(context.Background(), model, cb)

	require.Equal(t, StatusOptimal, status)
	require.Len(t, cb.solutions, 1)
	assert.Equal(t, -2, cb.solutions[0]["x"])
	assert.Equal(t, 2, cb.solutions[0]["abs"])
}

func TestSolverInfeasible(t *testing.T) {
	model := NewModel()
	x := model.NewIntVar(0, 1, "x")
	model.AddEQ(Sum(x), 5)

	cb := &collectingCallback{names: []string{"x"}}
	status := NewSolver().Solve(context.Background(), model, cb)

	assert.Equal(t, StatusInfeasible, status)
	assert.Empty(t, cb.solutions)
}

func TestSolverTimeout(t *testing.T) {
	// A large block of unconstrained Boolean variables and no constraints
	// at all: search() descends straight through each one's first domain
	// value with nothing to backtrack on, so nodeCheckInterval is crossed
	// — and the pre-canceled context observed — well before the first
	// leaf is ever reached. This holds independent of how constraint
	// propagation prunes any particular branch.
	model := NewModel()
	for i := 0; i < 3000; i++ {
		model.NewBoolVar("free")
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	cb := &collectingCallback{names: []string{}}
	status := NewSolver().Solve(ctx, model, cb)

	assert.Equal(t, StatusTimeout, status)
	assert.Empty(t, cb.solutions)
}
