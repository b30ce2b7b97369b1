package farm

import (
	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"
)

// WorkflowOption configures a Workflow.
type WorkflowOption func(*Workflow)

// WithSimulator sets the read-only call collaborator used by Estimate and by
// staged execution.
func WithSimulator(sim Simulator) WorkflowOption {
	return func(w *Workflow) {
		w.sim = sim
	}
}

// WithLogger sets the logger. The default discards everything.
func WithLogger(logger *zap.Logger) WorkflowOption {
	return func(w *Workflow) {
		if logger != nil {
			w.logger = logger
		}
	}
}

// PipeOption configures a Pipe.
type PipeOption func(*Pipe)

// WithPipelineAddress sets the address inner calls are simulated from. It
// defaults to the executor's address.
func WithPipelineAddress(addr common.Address) PipeOption {
	return func(p *Pipe) {
		p.pipeline = addr
	}
}

// AddOption configures a step as it is added to a workflow or pipe.
type AddOption func(*addConfig)

type addConfig struct {
	tag    string
	tagged bool
}

// WithTag names the step's return data so later steps in the same scope can
// copy from it.
func WithTag(tag string) AddOption {
	return func(c *addConfig) {
		c.tag = tag
		c.tagged = true
	}
}

// ExecuteOption configures the Execute operation.
type ExecuteOption func(*executeConfig)

// executeConfig holds configuration for the Execute method.
type executeConfig struct {
	quote  *Estimate
	staged bool
}

// WithQuote takes step outputs from a prior Estimate of the same workflow
// and input amount.
func WithQuote(est *Estimate) ExecuteOption {
	return func(c *executeConfig) {
		c.quote = est
	}
}

// WithStagedSimulation re-simulates every step that produces an amount and
// fails on the first simulation error.
func WithStagedSimulation() ExecuteOption {
	return func(c *executeConfig) {
		c.staged = true
	}
}
