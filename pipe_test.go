package farm

import (
	"bytes"
	"context"
	"errors"
	"math/big"
	"testing"
)

func newTestPipe(name string) *Pipe {
	return NewPipe(name, testFarm(), WithPipelineAddress(testPipelineAddr))
}

func TestPipeAdd(t *testing.T) {
	venue := testVenue()

	t.Run("defaults pipeline to executor", func(t *testing.T) {
		p := NewPipe("p", testFarm())
		if p.Pipeline() != testFarmAddr {
			t.Errorf("Expected %s, got %s", testFarmAddr.Hex(), p.Pipeline().Hex())
		}
	})

	t.Run("flattens and tags", func(t *testing.T) {
		p := newTestPipe("p")
		p.MustAdd(Sequence{approveAction("approve", venue), swapAction("swap", venue)})
		p.MustAdd(depositAction("deposit", venue), WithTag("out"))
		if p.Len() != 3 {
			t.Errorf("Expected 3 inner steps, got %d", p.Len())
		}
		if tags := p.Tags(); len(tags) != 1 || tags[0] != "out" {
			t.Errorf("Expected [out], got %v", tags)
		}
	})

	tests := []struct {
		name string
		add  func(p *Pipe) error
		want error
	}{
		{
			name: "nested pipe",
			add:  func(p *Pipe) error { return p.Add(newTestPipe("inner")) },
			want: ErrNestedPipe,
		},
		{
			name: "nested pipe in sequence",
			add: func(p *Pipe) error {
				return p.Add(Sequence{swapAction("swap", venue), newTestPipe("inner")})
			},
			want: ErrNestedPipe,
		},
		{
			name: "duplicate tag",
			add: func(p *Pipe) error {
				p.MustAdd(swapAction("a", venue), WithTag("hop0"))
				return p.Add(swapAction("b", venue), WithTag("hop0"))
			},
			want: ErrDuplicateTag,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := newTestPipe("p")
			err := tt.add(p)
			var constructionErr *ConstructionError
			if !errors.As(err, &constructionErr) || !errors.Is(err, tt.want) {
				t.Errorf("Expected ConstructionError with %v, got %v", tt.want, err)
			}
		})
	}

	t.Run("failed add leaves pipe unchanged", func(t *testing.T) {
		p := newTestPipe("p")
		_ = p.Add(Sequence{swapAction("swap", venue), newTestPipe("inner")})
		if p.Len() != 0 {
			t.Errorf("Expected no inner steps, got %d", p.Len())
		}
	})
}

func TestPipeWorkflow(t *testing.T) {
	venue := testVenue()
	sim := &stubSimulator{}

	pipe := newTestPipe("hops")
	pipe.MustAdd(approveAction("approve", venue))
	pipe.MustAdd(swapAction("swap", venue), WithTag("hop0"))
	pipe.MustAdd(depositAction("deliver", venue).WithClipboard(Clipboard{Tag: "hop0", PasteSlot: 0}))

	wf := NewWorkflow("wf", WithSimulator(sim))
	wf.MustAdd(depositAction("load", testFarm()))
	wf.MustAdd(pipe, WithTag("pipe"))

	rc := NewRunContext(testAccount)
	est, err := wf.Estimate(context.Background(), big.NewInt(100), rc)
	if err != nil {
		t.Fatalf("Estimate failed: %v", err)
	}

	t.Run("output is the last decoded inner output", func(t *testing.T) {
		if est.AmountOut.Int64() != 200 {
			t.Errorf("Expected 200, got %s", est.AmountOut)
		}
	})

	t.Run("inner steps simulate from the pipeline", func(t *testing.T) {
		if len(sim.calls) != 4 {
			t.Fatalf("Expected 4 simulations, got %d", len(sim.calls))
		}
		if sim.calls[0].From != testAccount {
			t.Error("Outer step should simulate from the account")
		}
		for _, c := range sim.calls[1:] {
			if c.From != testPipelineAddr {
				t.Errorf("Inner step simulated from %s", c.From.Hex())
			}
		}
	})

	t.Run("identities", func(t *testing.T) {
		p := est.Steps[1]
		if p.ID != "wf[1] hops (pipe)" || p.Target != testFarmAddr {
			t.Errorf("Unexpected pipe result %q at %s", p.ID, p.Target.Hex())
		}
		if len(p.Inner) != 3 || p.Inner[1].ID != "wf[1] hops[1] swap (hop0)" {
			t.Errorf("Unexpected inner results %+v", p.Inner)
		}
	})

	t.Run("return is bytes of inner returns", func(t *testing.T) {
		rets, err := pipe.Decode(est.Steps[1].Return)
		if err != nil {
			t.Fatalf("Decode failed: %v", err)
		}
		if len(rets) != 3 || new(big.Int).SetBytes(rets[1]).Int64() != 200 {
			t.Errorf("Unexpected inner returns %x", rets)
		}
	})

	t.Run("scopes", func(t *testing.T) {
		names := rc.ScopeNames()
		if len(names) != 2 || names[0] != "wf" || names[1] != "wf[1] hops" {
			t.Errorf("Unexpected scopes %v", names)
		}
	})

	t.Run("sealed after run", func(t *testing.T) {
		if !pipe.Sealed() {
			t.Fatal("Expected sealed pipe")
		}
		if err := pipe.Add(swapAction("late", venue)); !errors.Is(err, ErrPipeSealed) {
			t.Errorf("Expected ErrPipeSealed, got %v", err)
		}
	})

	t.Run("execute compiles one pipe call", func(t *testing.T) {
		plan, err := wf.Execute(context.Background(), big.NewInt(100), NewRunContext(testAccount), WithQuote(est))
		if err != nil {
			t.Fatalf("Execute failed: %v", err)
		}
		if plan.Len() != 2 {
			t.Fatalf("Expected 2 calls, got %d", plan.Len())
		}
		call := plan.Calls[1]
		if call.Target != testFarmAddr {
			t.Errorf("Pipe call should target the executor, got %s", call.Target.Hex())
		}

		leaves := plan.Leaves()
		if len(leaves) != 4 {
			t.Fatalf("Expected 4 leaves, got %d", len(leaves))
		}
		inner := make([]PreparedCall, 0, 3)
		for _, l := range leaves[1:] {
			inner = append(inner, l.Call)
		}
		want, err := pipe.Encode(inner)
		if err != nil {
			t.Fatalf("Encode failed: %v", err)
		}
		if !bytes.Equal(call.CallData, want.Data()) {
			t.Error("Pipe call data should encode the inner calls")
		}

		deliver := leaves[3]
		if argWord(deliver.Call.CallData, 0).Int64() != 200 {
			t.Errorf("Expected pasted 200, got %s", argWord(deliver.Call.CallData, 0))
		}
		_, slots, _, err := DecodeClipboard(deliver.Call.Clipboard)
		if err != nil || len(slots) != 1 || slots[0].ReturnIndex != 1 {
			t.Errorf("Expected clipboard copying inner return 1, got %+v (%v)", slots, err)
		}
	})
}

func TestPipeTagScopes(t *testing.T) {
	venue := testVenue()

	first := newTestPipe("first")
	first.MustAdd(swapAction("swap", venue), WithTag("hop0"))
	second := newTestPipe("second")
	second.MustAdd(swapAction("swap", venue), WithTag("hop0"))
	second.MustAdd(depositAction("deliver", venue).WithClipboard(Clipboard{Tag: "hop0"}))

	t.Run("same tag in sibling pipes", func(t *testing.T) {
		wf := NewWorkflow("wf", WithSimulator(&stubSimulator{}))
		wf.MustAdd(first)
		wf.MustAdd(second)

		est, err := wf.Estimate(context.Background(), big.NewInt(1), NewRunContext(testAccount))
		if err != nil {
			t.Fatalf("Estimate failed: %v", err)
		}
		if est.AmountOut.Int64() != 4 {
			t.Errorf("Expected 4, got %s", est.AmountOut)
		}
	})

	t.Run("inner tags are not visible outside", func(t *testing.T) {
		wf := NewWorkflow("wf", WithSimulator(&stubSimulator{}))
		wf.MustAdd(first)
		wf.MustAdd(depositAction("outside", venue).WithClipboard(Clipboard{Tag: "hop0"}))

		_, err := wf.Estimate(context.Background(), big.NewInt(1), NewRunContext(testAccount))
		if !errors.Is(err, ErrTagNotFound) {
			t.Errorf("Expected ErrTagNotFound, got %v", err)
		}
	})
}

func TestPipeEncodeValue(t *testing.T) {
	venue := testVenue()
	p := newTestPipe("p")

	calls := []PreparedCall{
		venue.MustInvoke("deposit", big.NewInt(1)).WithValue(big.NewInt(5)).Prepared(),
		venue.MustInvoke("deposit", big.NewInt(2)).WithValue(big.NewInt(7)).Prepared(),
	}
	call, err := p.Encode(calls)
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}
	if call.EthValue() == nil || call.EthValue().Int64() != 12 {
		t.Errorf("Expected value 12, got %v", call.EthValue())
	}
	if argWord(call.Data(), 1).Int64() != 12 {
		t.Errorf("Expected value argument 12, got %s", argWord(call.Data(), 1))
	}
}

func TestBytesSliceRoundTrip(t *testing.T) {
	rets := [][]byte{EncodeUint256(big.NewInt(1)), nil, {0xab}}
	decoded, err := DecodeBytesSlice(EncodeBytesSlice(rets))
	if err != nil {
		t.Fatalf("DecodeBytesSlice failed: %v", err)
	}
	if len(decoded) != 3 || len(decoded[1]) != 0 || !bytes.Equal(decoded[2], []byte{0xab}) {
		t.Errorf("Unexpected decode %x", decoded)
	}
}
