package farm

import (
	"bytes"
	"context"
	"errors"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
)

func TestContract(t *testing.T) {
	c := testVenue()

	t.Run("name and address", func(t *testing.T) {
		if c.Name() != "venue" || c.Address() != testVenueAddr {
			t.Errorf("Unexpected contract %s at %s", c.Name(), c.Address().Hex())
		}
		unnamed := NewContract(testVenueAddr, c.ABI())
		if unnamed.Name() != testVenueAddr.Hex() {
			t.Errorf("Expected address as name, got %s", unnamed.Name())
		}
	})

	t.Run("at", func(t *testing.T) {
		other := common.HexToAddress("0x9999999999999999999999999999999999999999")
		moved := c.At(other)
		if moved.Address() != other || c.Address() != testVenueAddr {
			t.Error("At should return a copy at the new address")
		}
		if !moved.HasMethod("swap") {
			t.Error("At should keep the ABI")
		}
	})

	t.Run("method names sorted", func(t *testing.T) {
		names := c.MethodNames()
		for i := 1; i < len(names); i++ {
			if names[i-1] > names[i] {
				t.Fatalf("Names not sorted: %v", names)
			}
		}
	})

	t.Run("missing method", func(t *testing.T) {
		_, err := c.Invoke("nope")
		var notFound *MethodNotFoundError
		if !errors.As(err, &notFound) || notFound.Method != "nope" {
			t.Errorf("Expected MethodNotFoundError, got %v", err)
		}
	})

	t.Run("must invoke panics", func(t *testing.T) {
		defer func() {
			if recover() == nil {
				t.Error("Expected panic")
			}
		}()
		c.MustInvoke("nope")
	})

	t.Run("unpack", func(t *testing.T) {
		values, err := c.Unpack("swap", EncodeUint256(big.NewInt(77)))
		if err != nil {
			t.Fatalf("Unpack failed: %v", err)
		}
		if values[0].(*big.Int).Int64() != 77 {
			t.Errorf("Expected 77, got %v", values[0])
		}
	})
}

func TestCallEncoding(t *testing.T) {
	c := testVenue()
	call, err := c.Invoke("swap", 1000, big.NewInt(5))
	if err != nil {
		t.Fatalf("Invoke failed: %v", err)
	}

	if call.Target() != testVenueAddr || call.Contract() != c {
		t.Error("Unexpected call target")
	}
	if !bytes.Equal(call.Data()[:4], c.ABI().Methods["swap"].ID) {
		t.Error("Call data should start with the selector")
	}
	sel := call.Selector()
	if !bytes.Equal(sel[:], c.ABI().Methods["swap"].ID) {
		t.Error("Selector mismatch")
	}
	if argWord(call.Data(), 0).Int64() != 1000 || argWord(call.Data(), 1).Int64() != 5 {
		t.Errorf("Unexpected arguments in %x", call.Data())
	}
	if len(call.Data()) != 4+2*WordSize {
		t.Errorf("Expected %d bytes, got %d", 4+2*WordSize, len(call.Data()))
	}
	if !call.HasReturnValue() {
		t.Error("swap has a return value")
	}
	if call.EthValue() != nil {
		t.Error("Expected no value")
	}
}

func TestCallArgumentErrors(t *testing.T) {
	c := testVenue()

	t.Run("count", func(t *testing.T) {
		_, err := c.Invoke("swap", big.NewInt(1))
		if !errors.Is(err, ErrArgumentCount) {
			t.Errorf("Expected ErrArgumentCount, got %v", err)
		}
	})

	t.Run("type names index", func(t *testing.T) {
		_, err := c.Invoke("approve", testFarmAddr, "not a number")
		var argErr *ArgumentError
		if !errors.As(err, &argErr) {
			t.Fatalf("Expected ArgumentError, got %v", err)
		}
		if argErr.Index != 1 || argErr.Method != "approve" {
			t.Errorf("Unexpected ArgumentError %+v", argErr)
		}
	})
}

func TestCallWithValue(t *testing.T) {
	call := testVenue().MustInvoke("deposit", big.NewInt(1))
	v := big.NewInt(10)
	withValue := call.WithValue(v)
	v.SetInt64(99)

	if withValue.EthValue().Int64() != 10 {
		t.Error("WithValue should copy the amount")
	}
	if call.EthValue() != nil {
		t.Error("WithValue should not modify the original")
	}
	if withValue.Prepared().Value.Int64() != 10 {
		t.Error("Prepared should carry the value")
	}
}

func TestCallQuery(t *testing.T) {
	call := testVenue().MustInvoke("swap", big.NewInt(21), big.NewInt(0))

	t.Run("decodes simulated return", func(t *testing.T) {
		sim := &stubSimulator{}
		values, err := call.Query(context.Background(), sim, testAccount)
		if err != nil {
			t.Fatalf("Query failed: %v", err)
		}
		if values[0].(*big.Int).Int64() != 42 {
			t.Errorf("Expected 42, got %v", values[0])
		}
		if sim.calls[0].From != testAccount || sim.calls[0].To != testVenueAddr {
			t.Errorf("Unexpected sim call %+v", sim.calls[0])
		}
	})

	t.Run("no simulator", func(t *testing.T) {
		if _, err := call.Query(context.Background(), nil, testAccount); !errors.Is(err, ErrNoSimulator) {
			t.Errorf("Expected ErrNoSimulator, got %v", err)
		}
	})
}

func TestHeadLayout(t *testing.T) {
	abi := MustParseABI(testABIJSON)

	tests := []struct {
		method string
		want   []bool
	}{
		{"swap", []bool{true, true}},
		{"label", []bool{false, true}},
		{"advancedPipe", []bool{false, true}},
		{"split", []bool{true}},
	}

	for _, tt := range tests {
		t.Run(tt.method, func(t *testing.T) {
			got := headLayout(abi.Methods[tt.method].Inputs)
			if len(got) != len(tt.want) {
				t.Fatalf("Expected %v, got %v", tt.want, got)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("Word %d: expected %v, got %v", i, tt.want[i], got[i])
				}
			}
		})
	}
}
