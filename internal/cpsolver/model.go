// Package cpsolver implements a small CP-SAT-style constraint solver:
// bounded integer and Boolean variables, linear sum constraints, reified
// implications, Boolean AND/OR, absolute-value equality, and a
// branch-and-bound search with a solution callback. It exists so that
// internal/scheduler can depend on the same variable/constraint surface
// a real CP-SAT binding would expose, without pulling in a cgo solver.
package cpsolver

type relOp int

const (
	opLE relOp = iota
	opEQ
	opGE
)

type constraintKind int

const (
	kindLinear constraintKind = iota
	kindBoolAnd
	kindBoolOr
	kindAbs
)

// BoolVar references a 0/1 decision variable inside a Model.
type BoolVar struct{ id int }

// IntVar references a bounded integer variable inside a Model.
type IntVar struct{ id int }

// V returns the IntVar view of a BoolVar (Booleans are IntVars with domain [0,1]).
func (b BoolVar) V() IntVar { return IntVar{id: b.id} }

// Lit returns the positive literal for b.
func (b BoolVar) Lit() Literal { return Literal{id: b.id} }

// Not returns the negated literal for b.
func (b BoolVar) Not() Literal { return Literal{id: b.id, negated: true} }

// Literal is a BoolVar or its negation, used by reified and Boolean constraints.
type Literal struct {
	id      int
	negated bool
}

// Not returns the opposite literal.
func Not(lit Literal) Literal {
	return Literal{id: lit.id, negated: !lit.negated}
}

// Term is a coefficient applied to an integer variable within a LinearExpr.
type Term struct {
	Coeff int
	Var   IntVar
}

// LinearExpr is a sum of weighted variables plus a constant.
type LinearExpr struct {
	Terms    []Term
	Constant int
}

// Sum builds a LinearExpr summing the given variables with coefficient 1.
func Sum(vars ...IntVar) LinearExpr {
	terms := make([]Term, len(vars))
	for i, v := range vars {
		terms[i] = Term{Coeff: 1, Var: v}
	}
	return LinearExpr{Terms: terms}
}

// BoolSum is Sum restricted to BoolVars.
func BoolSum(vars ...BoolVar) LinearExpr {
	ivars := make([]IntVar, len(vars))
	for i, v := range vars {
		ivars[i] = v.V()
	}
	return Sum(ivars...)
}

// Scaled builds a single-term LinearExpr coeff*v.
func Scaled(coeff int, v IntVar) LinearExpr {
	return LinearExpr{Terms: []Term{{Coeff: coeff, Var: v}}}
}

// Plus returns e + other.
func (e LinearExpr) Plus(other LinearExpr) LinearExpr {
	terms := make([]Term, 0, len(e.Terms)+len(other.Terms))
	terms = append(terms, e.Terms...)
	terms = append(terms, other.Terms...)
	return LinearExpr{Terms: terms, Constant: e.Constant + other.Constant}
}

// Minus returns e - other.
func (e LinearExpr) Minus(other LinearExpr) LinearExpr {
	terms := make([]Term, 0, len(e.Terms)+len(other.Terms))
	terms = append(terms, e.Terms...)
	for _, t := range other.Terms {
		terms = append(terms, Term{Coeff: -t.Coeff, Var: t.Var})
	}
	return LinearExpr{Terms: terms, Constant: e.Constant - other.Constant}
}

// AddConst returns e with the constant shifted by c.
func (e LinearExpr) AddConst(c int) LinearExpr {
	e.Constant += c
	return e
}

// Constraint is a single emitted constraint, optionally reified behind
// enforcement literals added through OnlyEnforceIf.
type Constraint struct {
	kind   constraintKind
	expr   LinearExpr
	op     relOp
	bound  int
	lits   []Literal
	target IntVar

	enforceLits []Literal
}

// OnlyEnforceIf makes the constraint binding only when every lit holds.
// Constraints without any OnlyEnforceIf call are always enforced.
func (c *Constraint) OnlyEnforceIf(lits ...Literal) *Constraint {
	c.enforceLits = append(c.enforceLits, lits...)
	return c
}

type varInfo struct {
	lb, ub int
	name   string
}

// Model holds decision variables, constraints and the objective of a
// single scheduling run. A Model is built once and handed to a Solver.
type Model struct {
	vars        []varInfo
	constraints []*Constraint
	objective   LinearExpr
	minimize    bool
	hasObjective bool
}

// NewModel returns an empty model.
func NewModel() *Model {
	return &Model{}
}

// NewBoolVar allocates a Boolean decision variable.
func (m *Model) NewBoolVar(name string) BoolVar {
	id := len(m.vars)
	m.vars = append(m.vars, varInfo{lb: 0, ub: 1, name: name})
	return BoolVar{id: id}
}

// NewIntVar allocates a bounded integer variable.
func (m *Model) NewIntVar(lb, ub int, name string) IntVar {
	id := len(m.vars)
	m.vars = append(m.vars, varInfo{lb: lb, ub: ub, name: name})
	return IntVar{id: id}
}

// NumVars reports how many variables have been allocated.
func (m *Model) NumVars() int { return len(m.vars) }

// AddLE emits expr <= bound.
func (m *Model) AddLE(expr LinearExpr, bound int) *Constraint { return m.addLinear(expr, opLE, bound) }

// AddEQ emits expr == bound.
func (m *Model) AddEQ(expr LinearExpr, bound int) *Constraint { return m.addLinear(expr, opEQ, bound) }

// AddGE emits expr >= bound.
func (m *Model) AddGE(expr LinearExpr, bound int) *Constraint { return m.addLinear(expr, opGE, bound) }

func (m *Model) addLinear(expr LinearExpr, op relOp, bound int) *Constraint {
	c := &Constraint{kind: kindLinear, expr: expr, op: op, bound: bound}
	m.constraints = append(m.constraints, c)
	return c
}

// AddBoolAnd emits AND(lits) as a constraint (true only if every literal holds).
func (m *Model) AddBoolAnd(lits ...Literal) *Constraint {
	c := &Constraint{kind: kindBoolAnd, lits: lits}
	m.constraints = append(m.constraints, c)
	return c
}

// AddBoolOr emits OR(lits) as a constraint (true if any literal holds).
func (m *Model) AddBoolOr(lits ...Literal) *Constraint {
	c := &Constraint{kind: kindBoolOr, lits: lits}
	m.constraints = append(m.constraints, c)
	return c
}

// AddAbsEquality emits target == |expr|, always enforced.
func (m *Model) AddAbsEquality(target IntVar, expr LinearExpr) *Constraint {
	c := &Constraint{kind: kindAbs, target: target, expr: expr}
	m.constraints = append(m.constraints, c)
	return c
}

// Minimize sets the objective. Only one objective is kept; later calls replace it.
func (m *Model) Minimize(expr LinearExpr) {
	m.objective = expr
	m.minimize = true
	m.hasObjective = true
}
