package farm

import (
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/samber/lo"
)

// StepResult is the outcome of one step in a run.
type StepResult struct {
	Index         int
	ID            string
	Name          string
	Tag           string
	Target        common.Address
	AmountIn      *big.Int
	AmountOut     *big.Int
	Outputs       []*big.Int // set by multi-output steps
	Return        []byte     // simulated or settled return data; nil if unknown
	Authoritative bool
	Err           error // tolerated simulation failure
	Inner         []StepResult
}

// Estimate is the result of simulating a workflow.
type Estimate struct {
	Workflow      string
	RunID         string
	AmountIn      *big.Int
	AmountOut     *big.Int
	Outputs       []*big.Int
	Steps         []StepResult
	Authoritative bool
}

// Leaves returns the results of every action in execution order, with pipes
// replaced by their inner actions.
func (e *Estimate) Leaves() []StepResult {
	return lo.FlatMap(e.Steps, func(s StepResult, _ int) []StepResult {
		if len(s.Inner) > 0 {
			return s.Inner
		}
		return []StepResult{s}
	})
}

// PlannedStep describes one entry of a plan.
type PlannedStep struct {
	Index        int
	ID           string
	Name         string
	Tag          string
	Target       common.Address
	AmountIn     *big.Int
	Expected     *big.Int // expected output, nil for pass-through steps
	MinAmountOut *big.Int
	Call         PreparedCall
	Inner        []PlannedStep

	action *Action
	pipe   *Pipe
	scope  string
	tags   map[string]int
}

// IsPipe reports whether the step is a nested pipe.
func (s PlannedStep) IsPipe() bool {
	return s.pipe != nil
}

// Plan is the ordered atomic batch produced by Execute.
type Plan struct {
	Workflow  string
	RunID     string
	AmountIn  *big.Int
	AmountOut *big.Int
	Calls     []PreparedCall
	Steps     []PlannedStep

	tags map[string]int
}

// Len returns the number of top-level calls.
func (p *Plan) Len() int {
	return len(p.Calls)
}

// Targets returns the target address of every top-level call.
func (p *Plan) Targets() []common.Address {
	return lo.Map(p.Calls, func(c PreparedCall, _ int) common.Address {
		return c.Target
	})
}

// Leaves returns every planned action in execution order, with pipes
// replaced by their inner actions.
func (p *Plan) Leaves() []PlannedStep {
	return lo.FlatMap(p.Steps, func(s PlannedStep, _ int) []PlannedStep {
		if s.IsPipe() {
			return s.Inner
		}
		return []PlannedStep{s}
	})
}

// EncodeFarm compiles the plan into a single advancedFarm call on farm.
// Every call must target farm itself.
func (p *Plan) EncodeFarm(farm *Contract) (*Call, error) {
	batch := make([]FarmCall, len(p.Calls))
	value := new(big.Int)
	for i, c := range p.Calls {
		if c.Target != farm.Address() {
			return nil, fmt.Errorf("%w: call %d targets %s", ErrForeignTarget, i, c.Target.Hex())
		}
		batch[i] = FarmCall{
			CallData:  c.CallData,
			Clipboard: clipboardBytes(c.Clipboard),
		}
		if c.Value != nil {
			value.Add(value, c.Value)
		}
	}
	call, err := farm.Invoke(AdvancedFarmMethod, batch)
	if err != nil {
		return nil, err
	}
	if value.Sign() > 0 {
		call = call.WithValue(value)
	}
	return call, nil
}

// Settle decodes the return data of a submitted plan, one entry per
// top-level call, and records it in rc's scopes in place of the simulated
// values. The result carries the realized amounts.
func (p *Plan) Settle(rc *RunContext, returns [][]byte) (*Estimate, error) {
	if len(returns) != len(p.Steps) {
		return nil, fmt.Errorf("%w: %d calls, %d returns", ErrReturnCount, len(p.Steps), len(returns))
	}

	scope := rc.enter(p.Workflow, p.tags)
	amount := p.AmountIn
	var outputs []*big.Int
	results := make([]StepResult, len(p.Steps))

	settle := func(s PlannedStep, ret []byte, in *big.Int, scope *Scope) (StepResult, error) {
		res := StepResult{
			Index:         s.Index,
			ID:            s.ID,
			Name:          s.Name,
			Tag:           s.Tag,
			Target:        s.Target,
			AmountIn:      in,
			AmountOut:     in,
			Return:        ret,
			Authoritative: true,
		}
		if s.action != nil && s.action.producesAmount() {
			out, outs, err := s.action.decode(ret, in)
			if err != nil {
				return res, &StepError{Step: s.ID, Err: err}
			}
			res.AmountOut, res.Outputs = out, outs
			outputs = outs
		}
		if err := scope.Record(s.Tag, ret); err != nil {
			return res, &StepError{Step: s.ID, Err: err}
		}
		return res, nil
	}

	for i, s := range p.Steps {
		if !s.IsPipe() {
			res, err := settle(s, returns[i], amount, scope)
			if err != nil {
				return nil, err
			}
			results[i] = res
			amount = res.AmountOut
			continue
		}

		rets, err := s.pipe.Decode(returns[i])
		if err != nil {
			return nil, &StepError{Step: s.ID, Err: err}
		}
		if len(rets) != len(s.Inner) {
			return nil, &StepError{Step: s.ID, Err: ErrReturnCount}
		}
		inner := rc.enter(s.scope, s.tags)
		res := StepResult{
			Index:         s.Index,
			ID:            s.ID,
			Name:          s.Name,
			Tag:           s.Tag,
			Target:        s.Target,
			AmountIn:      amount,
			Return:        returns[i],
			Authoritative: true,
		}
		for j, is := range s.Inner {
			ir, err := settle(is, rets[j], amount, inner)
			if err != nil {
				return nil, err
			}
			amount = ir.AmountOut
			res.Inner = append(res.Inner, ir)
		}
		res.AmountOut = amount
		if err := scope.Record(s.Tag, returns[i]); err != nil {
			return nil, &StepError{Step: s.ID, Err: err}
		}
		results[i] = res
	}

	return &Estimate{
		Workflow:      p.Workflow,
		RunID:         p.RunID,
		AmountIn:      p.AmountIn,
		AmountOut:     amount,
		Outputs:       outputs,
		Steps:         results,
		Authoritative: true,
	}, nil
}
