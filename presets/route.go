package presets

import (
	"fmt"

	farm "github.com/branched-services/go-farm"
	"github.com/branched-services/go-farm/actions"
	"github.com/ethereum/go-ethereum/common"
)

// hop is one venue conversion inside a recipe's pipe.
type hop struct {
	in, out farm.Token

	// spender is approved for the input before the venue call. Sync hops
	// take tokens transferred into the well and approve nothing.
	spender common.Address

	// amountSlot is the venue call's argument word holding the input amount,
	// or -1 when the call carries none.
	amountSlot int

	// direct venues send their output to a recipient of the caller's choice.
	direct bool

	// well is set for sync hops.
	well *actions.Well

	build func(recipient farm.AddressFunc) *farm.Action
}

func hopTag(k int) string {
	return fmt.Sprintf("hop%d", k)
}

// pipeBuilder adds steps to a pipe, keeping the first error.
type pipeBuilder struct {
	pipe *farm.Pipe
	err  error
}

func (b *pipeBuilder) add(step farm.Step, opts ...farm.AddOption) {
	if b.err == nil {
		b.err = b.pipe.Add(step, opts...)
	}
}

// compose builds a recipe: an optional load into Pipeline, then one pipe
// running every hop, then the transfer-back rule for to.
func (l *Library) compose(name string, route []hop, from, to farm.BalanceMode, permit actions.PermitSource) (farm.Step, error) {
	if len(route) == 0 {
		return nil, &farm.ConstructionError{Scope: name, Err: ErrEmptyRoute}
	}

	var steps farm.Sequence
	first := route[0]
	dest := l.d.Addresses.Pipeline
	if first.well != nil {
		dest = first.well.Address()
	}
	load, err := l.load(name, first.in, from, dest, permit)
	if err != nil {
		return nil, err
	}
	steps = append(steps, load...)

	b := &pipeBuilder{pipe: farm.NewPipe(name, l.beanstalk, farm.WithPipelineAddress(l.d.Addresses.Pipeline))}
	for k, h := range route {
		prev := farm.Clipboard{Tag: hopTag(k - 1)}
		if h.well != nil {
			switch {
			case k == 0 && len(load) == 0:
				// funds already sit in Pipeline
				b.add(actions.TransferERC20(h.in, farm.Fixed(h.well.Address())))
			case k > 0 && !route[k-1].direct:
				b.add(actions.TransferERC20(h.in, farm.Fixed(h.well.Address())).
					WithClipboard(withPaste(prev, actions.ERC20AmountSlot)))
			}
		} else {
			approve := actions.ApproveERC20(h.in, farm.Fixed(h.spender))
			if k > 0 {
				approve = approve.WithClipboard(withPaste(prev, actions.ERC20AmountSlot))
			}
			b.add(approve)
		}

		venue := h.build(l.recipient(route, k, to))
		if k > 0 && h.amountSlot >= 0 {
			venue = venue.WithClipboard(withPaste(prev, h.amountSlot))
		}
		b.add(venue, farm.WithTag(hopTag(k)))
	}

	last := route[len(route)-1]
	l.deliver(b, last.out, hopTag(len(route)-1), 0, to, last.direct)
	if b.err != nil {
		return nil, b.err
	}
	return append(steps, b.pipe), nil
}

// recipient picks where hop k sends its output. Intermediate outputs stay in
// Pipeline unless the next hop syncs a well; the final output goes to the
// account only when it ends external and the venue can send it there.
func (l *Library) recipient(route []hop, k int, to farm.BalanceMode) farm.AddressFunc {
	if k < len(route)-1 {
		if next := route[k+1]; next.well != nil && route[k].direct {
			return farm.Fixed(next.well.Address())
		}
		return farm.Fixed(l.d.Addresses.Pipeline)
	}
	if to == farm.External && route[k].direct {
		return farm.Account()
	}
	return farm.Fixed(l.d.Addresses.Pipeline)
}

// deliver applies the transfer-back rule to the output at copySlot of the
// step tagged tag. Internal destinations approve the farm contract and move
// the output into the account's internal balance. External destinations
// need a plain transfer only when the venue could not pay the account
// itself. In-transit output stays in Pipeline.
func (l *Library) deliver(b *pipeBuilder, out farm.Token, tag string, copySlot int, to farm.BalanceMode, direct bool) {
	src := farm.Clipboard{Tag: tag, CopySlot: copySlot}
	switch to {
	case farm.Internal:
		b.add(actions.ApproveERC20(out, farm.Fixed(l.d.Addresses.Beanstalk)).
			WithClipboard(withPaste(src, actions.ERC20AmountSlot)))
		b.add(actions.TransferToken(l.beanstalk, out, farm.Account(), farm.External, farm.Internal).
			WithClipboard(withPaste(src, actions.TransferTokenAmountSlot)))
	case farm.External:
		if !direct {
			b.add(actions.TransferERC20(out, farm.Account()).
				WithClipboard(withPaste(src, actions.ERC20AmountSlot)))
		}
	}
}

func withPaste(c farm.Clipboard, slot int) farm.Clipboard {
	c.PasteSlot = slot
	return c
}
