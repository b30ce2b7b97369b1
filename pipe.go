package farm

import (
	"fmt"
	"math/big"
	"sort"
	"sync"

	"github.com/ethereum/go-ethereum/common"
)

// Method names the executor contract must expose.
const (
	AdvancedPipeMethod = "advancedPipe"
	AdvancedFarmMethod = "advancedFarm"
)

// PipeCall is one entry of an advancedPipe batch.
type PipeCall struct {
	Target    common.Address
	CallData  []byte
	Clipboard []byte
}

// FarmCall is one entry of an advancedFarm batch.
type FarmCall struct {
	CallData  []byte
	Clipboard []byte
}

// entry is a runnable unit with its optional tag.
type entry struct {
	step Step
	tag  string
}

// Pipe is a nested sub-workflow compiled into a single advancedPipe call.
// Its inner steps have their own tag scope and run from the pipeline
// executor's balance.
//
// A pipe is sealed after its first run; later Add calls fail with
// ErrPipeSealed.
type Pipe struct {
	name     string
	executor *Contract
	pipeline common.Address

	mu      sync.Mutex
	entries []entry
	tags    map[string]int
	sealed  bool
}

// NewPipe creates an empty pipe executed through executor's advancedPipe.
func NewPipe(name string, executor *Contract, opts ...PipeOption) *Pipe {
	p := &Pipe{
		name:     name,
		executor: executor,
		tags:     make(map[string]int),
	}
	if executor != nil {
		p.pipeline = executor.Address()
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func (p *Pipe) isStep() {}

// StepName returns the pipe name.
func (p *Pipe) StepName() string {
	return p.name
}

// Name returns the pipe name.
func (p *Pipe) Name() string {
	return p.name
}

// Executor returns the contract the pipe is compiled against.
func (p *Pipe) Executor() *Contract {
	return p.executor
}

// Pipeline returns the address inner steps run from.
func (p *Pipe) Pipeline() common.Address {
	return p.pipeline
}

// Add appends step to the pipe. Sequences are flattened, pipes are rejected.
func (p *Pipe) Add(step Step, opts ...AddOption) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.sealed {
		return &ConstructionError{Scope: p.name, Step: stepName(step), Err: ErrPipeSealed}
	}
	entries, err := appendEntries(p.name, p.entries, p.tags, step, opts, false)
	if err != nil {
		return err
	}
	p.entries = entries
	return nil
}

// MustAdd is like Add but panics on error.
func (p *Pipe) MustAdd(step Step, opts ...AddOption) *Pipe {
	if err := p.Add(step, opts...); err != nil {
		panic(err)
	}
	return p
}

// Len returns the number of inner actions.
func (p *Pipe) Len() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.entries)
}

// Tags returns the declared inner tags, sorted.
func (p *Pipe) Tags() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return sortedTags(p.tags)
}

// Sealed reports whether the pipe has run.
func (p *Pipe) Sealed() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.sealed
}

// seal freezes the pipe and returns its entries and tags.
func (p *Pipe) seal() ([]entry, map[string]int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.sealed = true
	return p.entries, p.tags
}

// Encode compiles inner calls into the executor's advancedPipe call. The
// call's value is the sum of the inner values.
func (p *Pipe) Encode(calls []PreparedCall) (*Call, error) {
	batch := make([]PipeCall, len(calls))
	value := new(big.Int)
	for i, c := range calls {
		batch[i] = PipeCall{
			Target:    c.Target,
			CallData:  c.CallData,
			Clipboard: clipboardBytes(c.Clipboard),
		}
		if c.Value != nil {
			value.Add(value, c.Value)
		}
	}
	call, err := p.executor.Invoke(AdvancedPipeMethod, batch, value)
	if err != nil {
		return nil, err
	}
	if value.Sign() > 0 {
		call = call.WithValue(value)
	}
	return call, nil
}

// Decode unpacks the bytes[] returned by advancedPipe.
func (p *Pipe) Decode(ret []byte) ([][]byte, error) {
	return DecodeBytesSlice(ret)
}

// DecodeBytesSlice unpacks an ABI encoded bytes[] return value.
func DecodeBytesSlice(ret []byte) ([][]byte, error) {
	values, err := bytesSliceArgs.Unpack(ret)
	if err != nil {
		return nil, err
	}
	out, ok := values[0].([][]byte)
	if !ok {
		return nil, fmt.Errorf("farm: unexpected bytes[] type %T", values[0])
	}
	return out, nil
}

// EncodeBytesSlice packs rets as the return data of advancedPipe. Missing
// returns are encoded as empty bytes.
func EncodeBytesSlice(rets [][]byte) []byte {
	items := make([][]byte, len(rets))
	for i, r := range rets {
		if r == nil {
			r = []byte{}
		}
		items[i] = r
	}
	data, _ := bytesSliceArgs.Pack(items)
	return data
}

// clipboardBytes returns the no-copy clipboard for an empty one.
func clipboardBytes(clip []byte) []byte {
	if len(clip) == 0 {
		return []byte{ClipboardNoCopy, 0x00}
	}
	return clip
}

// appendEntries validates step and appends its runnable units.
func appendEntries(scope string, entries []entry, tags map[string]int, step Step, opts []AddOption, allowPipe bool) ([]entry, error) {
	cfg := &addConfig{}
	for _, opt := range opts {
		opt(cfg)
	}
	fail := func(name string, err error) ([]entry, error) {
		return nil, &ConstructionError{Scope: scope, Step: name, Err: err}
	}

	if step == nil {
		return fail("", ErrNilStep)
	}
	units := Flatten(step)
	if cfg.tagged {
		if cfg.tag == "" {
			return fail(step.StepName(), ErrEmptyTag)
		}
		if len(units) != 1 {
			return fail(step.StepName(), ErrTagOnSequence)
		}
		if _, exists := tags[cfg.tag]; exists {
			return fail(step.StepName(), ErrDuplicateTag)
		}
	}

	for _, u := range units {
		switch v := u.(type) {
		case *Action:
			if v.Encode == nil {
				return fail(v.Name, ErrNilStep)
			}
		case *Pipe:
			if !allowPipe {
				return fail(v.name, ErrNestedPipe)
			}
			if v.executor == nil {
				return fail(v.name, ErrNilStep)
			}
		}
	}

	for _, u := range units {
		entries = append(entries, entry{step: u, tag: cfg.tag})
		if cfg.tagged {
			tags[cfg.tag] = len(entries) - 1
		}
	}
	return entries, nil
}

func stepName(step Step) string {
	if step == nil {
		return ""
	}
	return step.StepName()
}

func sortedTags(tags map[string]int) []string {
	out := make([]string, 0, len(tags))
	for tag := range tags {
		out = append(out, tag)
	}
	sort.Strings(out)
	return out
}
