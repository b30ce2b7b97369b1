package farm

import (
	"math/big"
	"sort"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/google/uuid"
)

// RunMode tells step encoders whether they are being simulated or planned
// for submission.
type RunMode uint8

const (
	// ModeIdle is the mode of a context that has not started a run.
	ModeIdle RunMode = iota

	// ModeEstimate is a dry simulation producing a quote.
	ModeEstimate

	// ModeExecute builds the call list for submission.
	ModeExecute
)

// String returns the mode name.
func (m RunMode) String() string {
	switch m {
	case ModeEstimate:
		return "estimate"
	case ModeExecute:
		return "execute"
	default:
		return "idle"
	}
}

// StepInfo describes the step currently being encoded.
type StepInfo struct {
	ID       string
	Name     string
	Index    int
	Expected *big.Int   // quoted output in execute mode, nil otherwise
	Outputs  []*big.Int // quoted outputs of multi-output steps
}

// RunContext holds the state of one workflow run. A context must not be
// shared between runs or goroutines; create one per Estimate or Execute.
type RunContext struct {
	ID       string
	Account  common.Address
	From     BalanceMode
	To       BalanceMode
	Slippage float64 // percent applied by MinAmountOut
	Deadline time.Time
	Data     map[string]any

	mode   RunMode
	scopes map[string]*Scope
	step   StepInfo
}

// RunContextOption configures a RunContext.
type RunContextOption func(*RunContext)

// WithModes sets the overall source and destination balance modes.
func WithModes(from, to BalanceMode) RunContextOption {
	return func(rc *RunContext) {
		rc.From = from
		rc.To = to
	}
}

// WithSlippage sets the slippage percent used for minimum outputs.
func WithSlippage(pct float64) RunContextOption {
	return func(rc *RunContext) {
		rc.Slippage = pct
	}
}

// WithDeadline sets the deadline passed to venues that accept one.
func WithDeadline(t time.Time) RunContextOption {
	return func(rc *RunContext) {
		rc.Deadline = t
	}
}

// WithData stores an auxiliary value for steps to read.
func WithData(key string, value any) RunContextOption {
	return func(rc *RunContext) {
		rc.Data[key] = value
	}
}

// NewRunContext creates a fresh context for one run by account.
func NewRunContext(account common.Address, opts ...RunContextOption) *RunContext {
	rc := &RunContext{
		ID:       uuid.NewString(),
		Account:  account,
		Slippage: 0.1,
		Data:     make(map[string]any),
		scopes:   make(map[string]*Scope),
	}
	for _, opt := range opts {
		opt(rc)
	}
	return rc
}

// Mode returns the current run mode.
func (rc *RunContext) Mode() RunMode {
	return rc.mode
}

// Step returns the step currently being encoded.
func (rc *RunContext) Step() StepInfo {
	return rc.step
}

// MinAmountOut returns the minimum acceptable output of the current step:
// zero while estimating, the quoted output less slippage while executing.
func (rc *RunContext) MinAmountOut() *big.Int {
	if rc.mode != ModeExecute || rc.step.Expected == nil {
		return new(big.Int)
	}
	return NewAmount(rc.step.Expected, 0).SubSlippage(rc.Slippage).Raw()
}

// MinAmountsOut returns n minimum outputs for a multi-output step, each the
// quoted output less slippage. Unknown outputs are zero.
func (rc *RunContext) MinAmountsOut(n int) []*big.Int {
	out := make([]*big.Int, n)
	for i := range out {
		out[i] = new(big.Int)
		if rc.mode == ModeExecute && i < len(rc.step.Outputs) && rc.step.Outputs[i] != nil {
			out[i] = NewAmount(rc.step.Outputs[i], 0).SubSlippage(rc.Slippage).Raw()
		}
	}
	return out
}

// DeadlineUnix returns the deadline as a uint256 timestamp. An unset deadline
// is the maximum uint256, which venues treat as no deadline.
func (rc *RunContext) DeadlineUnix() *big.Int {
	if rc.Deadline.IsZero() {
		return new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 256), big.NewInt(1))
	}
	return big.NewInt(rc.Deadline.Unix())
}

// Scope returns the captured outputs of a scope by name. The workflow's own
// scope is named after the workflow; a pipe's scope is named by its step id.
func (rc *RunContext) Scope(name string) (*Scope, bool) {
	s, ok := rc.scopes[name]
	return s, ok
}

// ScopeNames returns the names of all scopes entered in this run, sorted.
func (rc *RunContext) ScopeNames() []string {
	names := make([]string, 0, len(rc.scopes))
	for name := range rc.scopes {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// begin marks the context as used by a run.
func (rc *RunContext) begin(mode RunMode) error {
	if rc.mode != ModeIdle {
		return ErrContextReused
	}
	rc.mode = mode
	return nil
}

// enter creates the scope for name. Tags come from assembly.
func (rc *RunContext) enter(name string, tags map[string]int) *Scope {
	s := NewScope(name, tags)
	rc.scopes[name] = s
	return s
}

func (rc *RunContext) setStep(info StepInfo) {
	rc.step = info
}

// Scope is the tag registry of one workflow or pipe within a run. Declared
// tags map to step positions at assembly; outputs are captured as steps run.
type Scope struct {
	name     string
	position map[string]int
	outputs  map[string][]byte
}

// NewScope creates a scope whose tags sit at the given step positions.
func NewScope(name string, tags map[string]int) *Scope {
	position := make(map[string]int, len(tags))
	for tag, pos := range tags {
		position[tag] = pos
	}
	return &Scope{
		name:     name,
		position: position,
		outputs:  make(map[string][]byte),
	}
}

// Name returns the scope name.
func (s *Scope) Name() string {
	return s.name
}

// Record captures the return data of the step tagged tag. An empty tag is
// ignored. Recording a tag twice fails with ErrDuplicateTag.
func (s *Scope) Record(tag string, ret []byte) error {
	if tag == "" {
		return nil
	}
	if _, exists := s.outputs[tag]; exists {
		return ErrDuplicateTag
	}
	data := make([]byte, len(ret))
	copy(data, ret)
	s.outputs[tag] = data
	return nil
}

// Output returns a copy of the captured return data for tag.
func (s *Scope) Output(tag string) ([]byte, bool) {
	ret, ok := s.outputs[tag]
	if !ok {
		return nil, false
	}
	out := make([]byte, len(ret))
	copy(out, ret)
	return out, true
}

// Tags returns the tags captured so far, sorted.
func (s *Scope) Tags() []string {
	tags := make([]string, 0, len(s.outputs))
	for tag := range s.outputs {
		tags = append(tags, tag)
	}
	sort.Strings(tags)
	return tags
}

// lookup returns the output for tag as seen from the step at position.
func (s *Scope) lookup(tag string, position int) ([]byte, int, error) {
	pos, declared := s.position[tag]
	if !declared || pos >= position {
		return nil, 0, ErrTagNotFound
	}
	ret, captured := s.outputs[tag]
	if !captured {
		return nil, 0, ErrTagNotFound
	}
	return ret, pos, nil
}
