package farm

import (
	"errors"
	"math/big"
	"testing"
)

func TestFlatten(t *testing.T) {
	venue := testVenue()
	a := swapAction("a", venue)
	b := depositAction("b", venue)
	p := newTestPipe("p")

	units := Flatten(a, nil, Sequence{b, Sequence{}, Sequence{p}}, (*Action)(nil))
	if len(units) != 3 {
		t.Fatalf("Expected 3 units, got %d", len(units))
	}
	if units[0] != Step(a) || units[1] != Step(b) || units[2] != Step(p) {
		t.Errorf("Unexpected order %v", units)
	}
	if (Sequence{a, b}).StepName() != "sequence(2)" {
		t.Error("Unexpected sequence name")
	}
}

func TestActionWithClipboard(t *testing.T) {
	base := depositAction("deposit", testVenue())
	withOne := base.WithClipboard(Clipboard{Tag: "a"})
	withTwo := withOne.WithClipboard(Clipboard{Tag: "b", PasteSlot: 1})

	if len(base.Clipboard) != 0 || len(withOne.Clipboard) != 1 || len(withTwo.Clipboard) != 2 {
		t.Errorf("WithClipboard should copy: %d %d %d", len(base.Clipboard), len(withOne.Clipboard), len(withTwo.Clipboard))
	}
	if withTwo.Name != "deposit" || withTwo.Encode == nil {
		t.Error("WithClipboard should keep the action")
	}
}

func TestActionDecode(t *testing.T) {
	in := big.NewInt(5)

	t.Run("pass-through", func(t *testing.T) {
		out, outs, err := depositAction("d", testVenue()).decode(nil, in)
		if err != nil || out != in || outs != nil {
			t.Errorf("Expected pass-through, got %v %v %v", out, outs, err)
		}
	})

	t.Run("single", func(t *testing.T) {
		out, _, err := swapAction("s", testVenue()).decode(EncodeUint256(big.NewInt(8)), in)
		if err != nil || out.Int64() != 8 {
			t.Errorf("Expected 8, got %v (%v)", out, err)
		}
	})

	t.Run("multi output", func(t *testing.T) {
		a := &Action{Name: "m", DecodeOutputs: DecodeUint256Slice}
		out, outs, err := a.decode(EncodeUint256Slice([]*big.Int{big.NewInt(3), big.NewInt(4)}), in)
		if err != nil || out.Int64() != 3 || len(outs) != 2 {
			t.Errorf("Unexpected decode %v %v %v", out, outs, err)
		}
	})

	t.Run("short return", func(t *testing.T) {
		_, err := DecodeUint256([]byte{0x01})
		if !errors.Is(err, ErrShortReturn) {
			t.Errorf("Expected ErrShortReturn, got %v", err)
		}
	})
}

func TestAddressFuncs(t *testing.T) {
	rc := NewRunContext(testAccount)
	if Account()(rc) != testAccount {
		t.Error("Account should resolve the run account")
	}
	if Fixed(testPipelineAddr)(rc) != testPipelineAddr {
		t.Error("Fixed should return its address")
	}
}
