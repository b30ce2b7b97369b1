package farm

import (
	"bytes"
	"context"
	"errors"
	"math/big"
	"testing"
)

// settleWorkflow is a farm-level swap followed by a pipe holding one swap.
func settleWorkflow() *Workflow {
	pipe := newTestPipe("hops")
	pipe.MustAdd(swapAction("swap", testVenue()), WithTag("in"))

	wf := NewWorkflow("wf", WithSimulator(&stubSimulator{}))
	wf.MustAdd(swapAction("farmSwap", testFarm()), WithTag("s"))
	wf.MustAdd(pipe)
	return wf
}

func TestPlanViews(t *testing.T) {
	wf := settleWorkflow()
	plan, err := wf.Execute(context.Background(), big.NewInt(10), NewRunContext(testAccount), WithStagedSimulation())
	if err != nil {
		t.Fatalf("Execute failed: %v", err)
	}

	if plan.AmountIn.Int64() != 10 || plan.AmountOut.Int64() != 40 {
		t.Errorf("Expected 10 -> 40, got %s -> %s", plan.AmountIn, plan.AmountOut)
	}
	targets := plan.Targets()
	if len(targets) != 2 || targets[0] != testFarmAddr || targets[1] != testFarmAddr {
		t.Errorf("Unexpected targets %v", targets)
	}

	leaves := plan.Leaves()
	if len(leaves) != 2 || leaves[1].Target != testVenueAddr {
		t.Fatalf("Unexpected leaves %+v", leaves)
	}
	if !plan.Steps[1].IsPipe() || plan.Steps[0].IsPipe() {
		t.Error("IsPipe mismatch")
	}
	if leaves[1].Expected.Int64() != 40 || leaves[1].MinAmountOut.Int64() != 39 {
		t.Errorf("Unexpected expectation %s / %s", leaves[1].Expected, leaves[1].MinAmountOut)
	}
}

func TestPlanEncodeFarm(t *testing.T) {
	wf := settleWorkflow()
	plan, err := wf.Execute(context.Background(), big.NewInt(10), NewRunContext(testAccount), WithStagedSimulation())
	if err != nil {
		t.Fatalf("Execute failed: %v", err)
	}

	t.Run("batches into advancedFarm", func(t *testing.T) {
		call, err := plan.EncodeFarm(testFarm())
		if err != nil {
			t.Fatalf("EncodeFarm failed: %v", err)
		}
		method := testFarm().ABI().Methods[AdvancedFarmMethod]
		if !bytes.Equal(call.Data()[:4], method.ID) {
			t.Error("Expected advancedFarm selector")
		}
		if call.Target() != testFarmAddr {
			t.Errorf("Expected farm target, got %s", call.Target().Hex())
		}
	})

	t.Run("foreign target", func(t *testing.T) {
		venueWf := NewWorkflow("wf").MustAdd(depositAction("deposit", testVenue()))
		venuePlan, err := venueWf.Execute(context.Background(), big.NewInt(1), NewRunContext(testAccount))
		if err != nil {
			t.Fatal(err)
		}
		if _, err := venuePlan.EncodeFarm(testFarm()); !errors.Is(err, ErrForeignTarget) {
			t.Errorf("Expected ErrForeignTarget, got %v", err)
		}
	})
}

func TestPlanSettle(t *testing.T) {
	wf := settleWorkflow()
	rc := NewRunContext(testAccount)
	plan, err := wf.Execute(context.Background(), big.NewInt(10), rc, WithStagedSimulation())
	if err != nil {
		t.Fatalf("Execute failed: %v", err)
	}

	returns := [][]byte{
		EncodeUint256(big.NewInt(300)),
		EncodeBytesSlice([][]byte{EncodeUint256(big.NewInt(700))}),
	}

	settled, err := plan.Settle(rc, returns)
	if err != nil {
		t.Fatalf("Settle failed: %v", err)
	}
	if settled.AmountOut.Int64() != 700 {
		t.Errorf("Expected 700, got %s", settled.AmountOut)
	}
	if settled.Steps[0].AmountOut.Int64() != 300 {
		t.Errorf("Expected first step 300, got %s", settled.Steps[0].AmountOut)
	}
	inner := settled.Steps[1].Inner
	if len(inner) != 1 || inner[0].AmountIn.Int64() != 300 || inner[0].AmountOut.Int64() != 700 {
		t.Errorf("Unexpected inner settlement %+v", inner)
	}

	t.Run("records settled outputs", func(t *testing.T) {
		scope, _ := rc.Scope("wf")
		out, ok := scope.Output("s")
		if !ok || new(big.Int).SetBytes(out).Int64() != 300 {
			t.Errorf("Expected settled 300, got %x", out)
		}
		pipeScope, ok := rc.Scope("wf[1] hops")
		if !ok {
			t.Fatal("Expected pipe scope")
		}
		out, ok = pipeScope.Output("in")
		if !ok || new(big.Int).SetBytes(out).Int64() != 700 {
			t.Errorf("Expected settled 700, got %x", out)
		}
	})

	t.Run("return count", func(t *testing.T) {
		_, err := plan.Settle(NewRunContext(testAccount), returns[:1])
		if !errors.Is(err, ErrReturnCount) {
			t.Errorf("Expected ErrReturnCount, got %v", err)
		}
	})

	t.Run("inner return count", func(t *testing.T) {
		bad := [][]byte{returns[0], EncodeBytesSlice(nil)}
		_, err := plan.Settle(NewRunContext(testAccount), bad)
		if !errors.Is(err, ErrReturnCount) {
			t.Errorf("Expected ErrReturnCount, got %v", err)
		}
	})
}

func TestEstimateOutputs(t *testing.T) {
	split := &Action{
		Name: "split",
		Encode: func(_ context.Context, amountIn *big.Int, _ *RunContext) (*Call, error) {
			return testVenue().Invoke("split", amountIn)
		},
		DecodeOutputs: DecodeUint256Slice,
	}
	wf := NewWorkflow("wf", WithSimulator(&stubSimulator{})).MustAdd(split)

	est, err := wf.Estimate(context.Background(), big.NewInt(9), NewRunContext(testAccount))
	if err != nil {
		t.Fatalf("Estimate failed: %v", err)
	}
	if len(est.Outputs) != 2 || est.Outputs[0].Int64() != 4 || est.Outputs[1].Int64() != 5 {
		t.Errorf("Unexpected outputs %v", est.Outputs)
	}
	if est.AmountOut.Int64() != 4 {
		t.Errorf("Expected first output as amount, got %s", est.AmountOut)
	}
}
