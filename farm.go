// Package farm composes multi-step on-chain operations into a single atomic
// batch of contract calls for the Beanstalk farm and Pipeline executors.
//
// A workflow is an ordered list of steps. Each step encodes one contract call
// from the running token amount, and optionally decodes the call's return data
// into the amount handed to the next step. Steps can be grouped into nested
// pipes, which compile into one advancedPipe call that the Pipeline contract
// unwraps, and can splice bytes of an earlier step's return value into their
// own call data through clipboards.
//
// # Basic Usage
//
// Wrap contracts, describe actions, add them to a workflow, then estimate and
// execute:
//
//	beanstalk := farm.NewContract(beanstalkAddr, farm.MustParseABI(beanstalkABI))
//
//	pipe := farm.NewPipe("pipelineSwap", beanstalk, farm.WithPipelineAddress(pipelineAddr))
//	pipe.MustAdd(approve)
//	pipe.MustAdd(swap, farm.WithTag("swap"))
//	pipe.MustAdd(transferBack) // transferBack.Clipboard = []farm.Clipboard{{Tag: "swap", PasteSlot: 2}}
//
//	wf := farm.NewWorkflow("swap", farm.WithSimulator(sim))
//	wf.MustAdd(loadPipeline)
//	wf.MustAdd(pipe)
//
//	quote, err := wf.Estimate(ctx, amountIn, farm.NewRunContext(account))
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	plan, err := wf.Execute(ctx, amountIn, farm.NewRunContext(account), farm.WithQuote(quote))
//	if err != nil {
//	    log.Fatal(err)
//	}
//	call, _ := plan.EncodeFarm(beanstalk) // one advancedFarm transaction
//
// # Steps
//
// A Step is one of three shapes:
//
//   - *Action: a single contract call with encode/decode behaviour.
//
//   - Sequence: an ordered list of steps, flattened when added.
//
//   - *Pipe: an ordered list of actions compiled into one executor call.
//
// # Clipboards
//
// A Clipboard copies one 32-byte word of a tagged step's return data into a
// word of a later step's call data. Tags are scoped to the workflow or pipe
// that declares them and must be unique inside that scope. A reference is
// resolved immediately before the referencing call is finalized, against the
// outputs captured so far in the run.
//
// # Runs
//
// Every Estimate or Execute uses its own RunContext. The workflow holds no run
// state, so the same workflow can be estimated and executed concurrently from
// separate contexts.
//
// # References
//
//   - https://docs.bean.money/almanac/farm/pipeline (Pipeline and Depot)
//   - https://github.com/BeanstalkFarms/Beanstalk (LibClipboard, LibFunction)
package farm
