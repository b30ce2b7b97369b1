package farm

import (
	"errors"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
)

// Sentinel errors for common failure conditions.
var (
	// ErrDuplicateTag indicates a tag was declared or recorded twice in one scope.
	ErrDuplicateTag = errors.New("farm: duplicate tag in scope")

	// ErrTagNotFound indicates a clipboard references a tag that is undefined,
	// declared later in the scope, or not yet captured in this run.
	ErrTagNotFound = errors.New("farm: clipboard tag not found")

	// ErrSlotOutOfRange indicates a clipboard copy or paste slot falls outside the data.
	ErrSlotOutOfRange = errors.New("farm: clipboard slot out of range")

	// ErrEmptyTag indicates a tag option was given an empty name.
	ErrEmptyTag = errors.New("farm: empty tag")

	// ErrTagOnSequence indicates a tag was applied to a sequence of several steps.
	ErrTagOnSequence = errors.New("farm: tag requires a single step")

	// ErrNilStep indicates a nil step or an action without an encoder.
	ErrNilStep = errors.New("farm: nil step")

	// ErrNestedPipe indicates a pipe was added inside another pipe.
	ErrNestedPipe = errors.New("farm: pipes cannot be nested")

	// ErrPipeSealed indicates a pipe was modified after it started running.
	ErrPipeSealed = errors.New("farm: pipe is sealed after its first run")

	// ErrContextReused indicates a RunContext was passed to a second run.
	ErrContextReused = errors.New("farm: run context already used")

	// ErrNoSimulator indicates a simulation was requested without a Simulator.
	ErrNoSimulator = errors.New("farm: no simulator configured")

	// ErrNoOutputSource indicates an execution step produces an amount but
	// neither a quote nor staged simulation was provided.
	ErrNoOutputSource = errors.New("farm: no quote or simulator to source step output")

	// ErrQuoteMismatch indicates a quote was produced by a different step sequence.
	ErrQuoteMismatch = errors.New("farm: quote does not match workflow steps")

	// ErrInTransitMode indicates the in-transit mode was used where a farm balance mode is required.
	ErrInTransitMode = errors.New("farm: in-transit balance has no farm mode")

	// ErrForeignTarget indicates a call cannot be batched into the farm contract.
	ErrForeignTarget = errors.New("farm: call does not target the farm contract")

	// ErrShortReturn indicates return data is too short to decode.
	ErrShortReturn = errors.New("farm: return data too short")

	// ErrArgumentCount indicates a method was invoked with the wrong number of arguments.
	ErrArgumentCount = errors.New("farm: wrong number of arguments")

	// ErrReturnCount indicates settlement received a different number of return values than calls.
	ErrReturnCount = errors.New("farm: return data count does not match calls")
)

// MethodNotFoundError indicates the contract doesn't have the requested method.
type MethodNotFoundError struct {
	Contract common.Address
	Method   string
}

func (e *MethodNotFoundError) Error() string {
	return fmt.Sprintf("farm: method %q not found in contract %s", e.Method, e.Contract.Hex())
}

// ArgumentError indicates an issue with a function argument.
type ArgumentError struct {
	Method string
	Index  int
	Err    error
}

func (e *ArgumentError) Error() string {
	return fmt.Sprintf("farm: argument %d for method %q: %v", e.Index, e.Method, e.Err)
}

func (e *ArgumentError) Unwrap() error {
	return e.Err
}

// DecimalsMismatchError is the panic value of arithmetic between two Amounts
// of different precision.
type DecimalsMismatchError struct {
	Left  uint8
	Right uint8
}

func (e *DecimalsMismatchError) Error() string {
	return fmt.Sprintf("farm: amount decimals mismatch: %d vs %d", e.Left, e.Right)
}

// ConstructionError reports malformed workflow or recipe assembly. It is
// returned before any run starts.
type ConstructionError struct {
	Scope string
	Step  string
	Err   error
}

func (e *ConstructionError) Error() string {
	if e.Step != "" {
		return fmt.Sprintf("farm: build %s: step %s: %v", e.Scope, e.Step, e.Err)
	}
	return fmt.Sprintf("farm: build %s: %v", e.Scope, e.Err)
}

func (e *ConstructionError) Unwrap() error {
	return e.Err
}

// ResolutionError reports a clipboard that could not be resolved. Err is
// ErrTagNotFound or ErrSlotOutOfRange.
type ResolutionError struct {
	Step      string
	Tag       string
	CopySlot  int
	PasteSlot int
	Err       error
}

func (e *ResolutionError) Error() string {
	return fmt.Sprintf("farm: step %s: clipboard {tag %q, copy %d, paste %d}: %v",
		e.Step, e.Tag, e.CopySlot, e.PasteSlot, e.Err)
}

func (e *ResolutionError) Unwrap() error {
	return e.Err
}

// SimulationError reports a failed or unparseable read-only pre-flight call.
type SimulationError struct {
	Step   string
	Target common.Address
	Err    error
}

func (e *SimulationError) Error() string {
	return fmt.Sprintf("farm: simulate step %s on %s: %v", e.Step, e.Target.Hex(), e.Err)
}

func (e *SimulationError) Unwrap() error {
	return e.Err
}

// StepError reports a step whose encoder or decoder failed.
type StepError struct {
	Step string
	Err  error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("farm: step %s: %v", e.Step, e.Err)
}

func (e *StepError) Unwrap() error {
	return e.Err
}

// ExecutionAbort wraps any failure during execution. No plan is returned
// alongside it.
type ExecutionAbort struct {
	Workflow string
	Step     string
	Err      error
}

func (e *ExecutionAbort) Error() string {
	if e.Step != "" {
		return fmt.Sprintf("farm: execute %s aborted at %s: %v", e.Workflow, e.Step, e.Err)
	}
	return fmt.Sprintf("farm: execute %s aborted: %v", e.Workflow, e.Err)
}

func (e *ExecutionAbort) Unwrap() error {
	return e.Err
}
