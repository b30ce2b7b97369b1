package farm

import (
	"context"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"
)

// Workflow is an ordered list of steps compiled into one atomic batch.
//
// A Workflow holds only assembly-time data. Every run takes its own
// RunContext, so one Workflow may be estimated and executed many times.
type Workflow struct {
	name    string
	entries []entry
	tags    map[string]int
	sim     Simulator
	logger  *zap.Logger
}

// NewWorkflow creates an empty workflow.
func NewWorkflow(name string, opts ...WorkflowOption) *Workflow {
	w := &Workflow{
		name:   name,
		tags:   make(map[string]int),
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Name returns the workflow name.
func (w *Workflow) Name() string {
	return w.name
}

// Add appends step. Sequences are flattened into their units; a tag may
// only be applied to a single unit and must be unique in the workflow.
func (w *Workflow) Add(step Step, opts ...AddOption) error {
	entries, err := appendEntries(w.name, w.entries, w.tags, step, opts, true)
	if err != nil {
		return err
	}
	w.entries = entries
	return nil
}

// MustAdd is like Add but panics on error.
func (w *Workflow) MustAdd(step Step, opts ...AddOption) *Workflow {
	if err := w.Add(step, opts...); err != nil {
		panic(err)
	}
	return w
}

// Len returns the number of top-level units.
func (w *Workflow) Len() int {
	return len(w.entries)
}

// StepAt returns the unit at index i, or nil if out of range.
func (w *Workflow) StepAt(i int) Step {
	if i < 0 || i >= len(w.entries) {
		return nil
	}
	return w.entries[i].step
}

// Tags returns the declared top-level tags, sorted.
func (w *Workflow) Tags() []string {
	return sortedTags(w.tags)
}

// Estimate simulates the workflow from amountIn.
//
// Each step is encoded with the running amount, its clipboards are resolved
// against earlier simulated returns, and its output is taken from the step's
// Quote or from the Simulator. A step without a decoder that cannot be
// simulated is marked non-authoritative and passes its input through.
func (w *Workflow) Estimate(ctx context.Context, amountIn *big.Int, rc *RunContext) (*Estimate, error) {
	if rc == nil {
		rc = NewRunContext(common.Address{})
	}
	if err := rc.begin(ModeEstimate); err != nil {
		return nil, err
	}
	r := w.newRun(rc, executeConfig{})

	out, err := r.walk(ctx, amountOrZero(amountIn))
	if err != nil {
		return nil, err
	}

	est := &Estimate{
		Workflow:      w.name,
		RunID:         rc.ID,
		AmountIn:      amountOrZero(amountIn),
		AmountOut:     out.amount,
		Outputs:       r.outputs,
		Steps:         out.results,
		Authoritative: true,
	}
	for _, res := range est.Leaves() {
		if !res.Authoritative {
			est.Authoritative = false
			break
		}
	}
	r.logger.Debug("estimate complete",
		zap.Stringer("amountIn", est.AmountIn),
		zap.Stringer("amountOut", est.AmountOut),
		zap.Bool("authoritative", est.Authoritative),
	)
	return est, nil
}

// Execute builds the ordered call batch from amountIn.
//
// Step outputs come from a prior estimate (WithQuote) or from strict
// re-simulation (WithStagedSimulation). Encoders see the expected output of
// their step through RunContext.MinAmountOut. Any failure returns an
// *ExecutionAbort and no plan.
func (w *Workflow) Execute(ctx context.Context, amountIn *big.Int, rc *RunContext, opts ...ExecuteOption) (*Plan, error) {
	cfg := executeConfig{}
	for _, opt := range opts {
		opt(&cfg)
	}
	if rc == nil {
		rc = NewRunContext(common.Address{})
	}
	if err := rc.begin(ModeExecute); err != nil {
		return nil, &ExecutionAbort{Workflow: w.name, Err: err}
	}
	amountIn = amountOrZero(amountIn)
	if cfg.quote != nil && !w.matches(cfg.quote, amountIn) {
		return nil, &ExecutionAbort{Workflow: w.name, Err: ErrQuoteMismatch}
	}

	r := w.newRun(rc, cfg)
	out, err := r.walk(ctx, amountIn)
	if err != nil {
		return nil, err
	}

	plan := &Plan{
		Workflow:  w.name,
		RunID:     rc.ID,
		AmountIn:  amountIn,
		AmountOut: out.amount,
		Calls:     out.calls,
		Steps:     out.planned,
		tags:      w.tags,
	}
	r.logger.Debug("plan complete",
		zap.Int("calls", len(plan.Calls)),
		zap.Stringer("amountOut", plan.AmountOut),
	)
	return plan, nil
}

// matches reports whether est was produced by this workflow's steps from amountIn.
func (w *Workflow) matches(est *Estimate, amountIn *big.Int) bool {
	if est.Workflow != w.name || len(est.Steps) != len(w.entries) {
		return false
	}
	if est.AmountIn == nil || est.AmountIn.Cmp(amountIn) != 0 {
		return false
	}
	for i, e := range w.entries {
		if est.Steps[i].Name != e.step.StepName() {
			return false
		}
	}
	return true
}

func (w *Workflow) newRun(rc *RunContext, cfg executeConfig) *run {
	return &run{
		wf:  w,
		rc:  rc,
		cfg: cfg,
		logger: w.logger.With(
			zap.String("run", rc.ID),
			zap.String("workflow", w.name),
			zap.Stringer("mode", rc.Mode()),
		),
	}
}

// run is the state of one Estimate or Execute walk.
type run struct {
	wf      *Workflow
	rc      *RunContext
	cfg     executeConfig
	logger  *zap.Logger
	outputs []*big.Int
}

// unit locates an action within its scope.
type unit struct {
	scope    *Scope
	position int
	id       string
	tag      string
	from     common.Address
}

type walkResult struct {
	amount  *big.Int
	results []StepResult
	planned []PlannedStep
	calls   []PreparedCall
}

// walk runs the top-level units in order.
func (r *run) walk(ctx context.Context, amount *big.Int) (*walkResult, error) {
	scope := r.rc.enter(r.wf.name, r.wf.tags)
	out := &walkResult{}

	for i, e := range r.wf.entries {
		id := stepID(r.wf.name, i, e.step.StepName(), e.tag)
		if err := ctx.Err(); err != nil {
			return nil, r.fail(id, err)
		}

		var quoted *StepResult
		if r.cfg.quote != nil {
			quoted = &r.cfg.quote.Steps[i]
		}

		var (
			res     StepResult
			planned PlannedStep
			err     error
		)
		switch s := e.step.(type) {
		case *Action:
			u := unit{scope: scope, position: i, id: id, tag: e.tag, from: r.rc.Account}
			res, planned, err = r.action(ctx, s, u, amount, quoted)
		case *Pipe:
			res, planned, err = r.pipe(ctx, s, i, e.tag, scope, amount, quoted)
		default:
			err = &StepError{Step: id, Err: ErrNilStep}
		}
		if err != nil {
			return nil, r.fail(id, err)
		}

		res.Index, planned.Index = i, i
		amount = res.AmountOut
		out.results = append(out.results, res)
		out.planned = append(out.planned, planned)
		out.calls = append(out.calls, planned.Call)
	}

	out.amount = amount
	return out, nil
}

// fail wraps err for the current mode.
func (r *run) fail(id string, err error) error {
	if r.rc.Mode() == ModeExecute {
		return &ExecutionAbort{Workflow: r.wf.name, Step: id, Err: err}
	}
	return err
}

// action runs a single call in scope.
func (r *run) action(ctx context.Context, a *Action, u unit, amountIn *big.Int, quoted *StepResult) (StepResult, PlannedStep, error) {
	mode := r.rc.Mode()
	info := StepInfo{ID: u.id, Name: a.Name, Index: u.position}

	if quoted != nil {
		if quoted.Name != a.Name {
			return StepResult{}, PlannedStep{}, &StepError{Step: u.id, Err: ErrQuoteMismatch}
		}
		if a.producesAmount() {
			info.Expected = quoted.AmountOut
			info.Outputs = quoted.Outputs
		}
	}
	r.rc.setStep(info)

	call, clip, err := r.encode(ctx, a, u, amountIn)
	if err != nil {
		return StepResult{}, PlannedStep{}, err
	}

	res := StepResult{
		ID:            u.id,
		Name:          a.Name,
		Tag:           u.tag,
		Target:        call.Target(),
		AmountIn:      amountIn,
		AmountOut:     amountIn,
		Authoritative: true,
	}

	var ret []byte
	switch {
	case mode == ModeEstimate:
		ret, err = r.simulate(ctx, a, call, u.from, amountIn)
		if err != nil {
			if a.producesAmount() {
				return StepResult{}, PlannedStep{}, &SimulationError{Step: u.id, Target: call.Target(), Err: err}
			}
			r.logger.Warn("simulation failed, passing amount through",
				zap.String("step", u.id),
				zap.String("target", call.Target().Hex()),
				zap.Error(err),
			)
			res.Authoritative = false
			res.Err = err
			ret = nil
		}
	case quoted != nil:
		ret = quoted.Return
		res.Authoritative = quoted.Authoritative
	case r.cfg.staged && (a.producesAmount() || u.tag != ""):
		ret, err = r.simulate(ctx, a, call, u.from, amountIn)
		if err != nil {
			return StepResult{}, PlannedStep{}, &SimulationError{Step: u.id, Target: call.Target(), Err: err}
		}
	case a.producesAmount():
		return StepResult{}, PlannedStep{}, &StepError{Step: u.id, Err: ErrNoOutputSource}
	}

	if a.producesAmount() {
		if quoted != nil {
			res.AmountOut, res.Outputs = quoted.AmountOut, quoted.Outputs
		} else {
			res.AmountOut, res.Outputs, err = a.decode(ret, amountIn)
			if err != nil {
				return StepResult{}, PlannedStep{}, &SimulationError{Step: u.id, Target: call.Target(), Err: err}
			}
		}
		r.outputs = res.Outputs
	}

	// staged outputs are only known after the first encode
	if mode == ModeExecute && quoted == nil && a.producesAmount() {
		info.Expected = res.AmountOut
		info.Outputs = res.Outputs
		r.rc.setStep(info)
		call, clip, err = r.encode(ctx, a, u, amountIn)
		if err != nil {
			return StepResult{}, PlannedStep{}, err
		}
	}

	if ret != nil {
		if err := u.scope.Record(u.tag, ret); err != nil {
			return StepResult{}, PlannedStep{}, &StepError{Step: u.id, Err: err}
		}
	}
	res.Return = ret

	planned := PlannedStep{
		ID:       u.id,
		Name:     a.Name,
		Tag:      u.tag,
		Target:   call.Target(),
		AmountIn: amountIn,
		Call: PreparedCall{
			Target:    call.Target(),
			CallData:  call.Data(),
			Value:     call.EthValue(),
			Clipboard: clip,
		},
		action: a,
	}
	if mode == ModeExecute {
		planned.Expected = info.Expected
		planned.MinAmountOut = r.rc.MinAmountOut()
	}

	r.logger.Debug("step",
		zap.String("step", u.id),
		zap.String("target", call.Target().Hex()),
		zap.Stringer("amountIn", amountIn),
		zap.Stringer("amountOut", res.AmountOut),
		zap.Int("clipboards", len(a.Clipboard)),
		zap.Bool("authoritative", res.Authoritative),
	)
	return res, planned, nil
}

// encode builds the call and splices its clipboards.
func (r *run) encode(ctx context.Context, a *Action, u unit, amountIn *big.Int) (*Call, []byte, error) {
	call, err := a.Encode(ctx, amountIn, r.rc)
	if err != nil {
		return nil, nil, &StepError{Step: u.id, Err: err}
	}
	if call == nil {
		return nil, nil, &StepError{Step: u.id, Err: ErrNilStep}
	}
	return applyClipboards(call, a.Clipboard, u.scope, u.position, u.id)
}

// simulate returns the step's return data from its Quote or the Simulator.
func (r *run) simulate(ctx context.Context, a *Action, call *Call, from common.Address, amountIn *big.Int) ([]byte, error) {
	if a.Quote != nil {
		return a.Quote(ctx, amountIn, r.rc, r.wf.sim)
	}
	if r.wf.sim == nil {
		return nil, ErrNoSimulator
	}
	return r.wf.sim.Simulate(ctx, call.SimCall(from))
}

// pipe runs the inner actions of p in a fresh scope and compiles them into
// one advancedPipe call.
func (r *run) pipe(ctx context.Context, p *Pipe, index int, tag string, outer *Scope, amountIn *big.Int, quoted *StepResult) (StepResult, PlannedStep, error) {
	entries, tags := p.seal()
	id := stepID(r.wf.name, index, p.name, tag)
	scopeName := stepID(r.wf.name, index, p.name, "")
	inner := r.rc.enter(scopeName, tags)

	if quoted != nil && (quoted.Name != p.name || len(quoted.Inner) != len(entries)) {
		return StepResult{}, PlannedStep{}, &StepError{Step: id, Err: ErrQuoteMismatch}
	}

	res := StepResult{
		ID:            id,
		Name:          p.name,
		Tag:           tag,
		Target:        p.executor.Address(),
		AmountIn:      amountIn,
		Authoritative: true,
	}
	planned := PlannedStep{
		ID:       id,
		Name:     p.name,
		Tag:      tag,
		Target:   p.executor.Address(),
		AmountIn: amountIn,
		pipe:     p,
		scope:    scopeName,
		tags:     tags,
	}

	amount := amountIn
	rets := make([][]byte, len(entries))
	calls := make([]PreparedCall, 0, len(entries))
	for j, e := range entries {
		innerID := stepID(scopeName, j, e.step.StepName(), e.tag)
		if err := ctx.Err(); err != nil {
			return StepResult{}, PlannedStep{}, err
		}
		var q *StepResult
		if quoted != nil {
			q = &quoted.Inner[j]
		}

		u := unit{scope: inner, position: j, id: innerID, tag: e.tag, from: p.pipeline}
		ir, ip, err := r.action(ctx, e.step.(*Action), u, amount, q)
		if err != nil {
			return StepResult{}, PlannedStep{}, err
		}
		ir.Index, ip.Index = j, j
		amount = ir.AmountOut
		rets[j] = ir.Return
		res.Authoritative = res.Authoritative && ir.Authoritative
		res.Inner = append(res.Inner, ir)
		planned.Inner = append(planned.Inner, ip)
		calls = append(calls, ip.Call)
	}

	r.rc.setStep(StepInfo{ID: id, Name: p.name, Index: index})
	call, err := p.Encode(calls)
	if err != nil {
		return StepResult{}, PlannedStep{}, &StepError{Step: id, Err: err}
	}
	clip, err := EncodeClipboard(nil, call.EthValue())
	if err != nil {
		return StepResult{}, PlannedStep{}, &StepError{Step: id, Err: err}
	}

	ret := EncodeBytesSlice(rets)
	if err := outer.Record(tag, ret); err != nil {
		return StepResult{}, PlannedStep{}, &StepError{Step: id, Err: err}
	}

	res.AmountOut = amount
	res.Return = ret
	planned.Expected = amount
	planned.Call = PreparedCall{
		Target:    call.Target(),
		CallData:  call.Data(),
		Value:     call.EthValue(),
		Clipboard: clip,
	}

	r.logger.Debug("pipe",
		zap.String("step", id),
		zap.Int("calls", len(calls)),
		zap.Stringer("amountIn", amountIn),
		zap.Stringer("amountOut", amount),
	)
	return res, planned, nil
}

// stepID formats the identity of a step for errors and logs, e.g.
// "swap[1] hops[0] approve (hop0)".
func stepID(prefix string, index int, name, tag string) string {
	id := fmt.Sprintf("%s[%d] %s", prefix, index, name)
	if tag != "" {
		id += " (" + tag + ")"
	}
	return id
}

func amountOrZero(v *big.Int) *big.Int {
	if v == nil {
		return new(big.Int)
	}
	return v
}
