package ethsim

import (
	"context"
	"errors"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	farm "github.com/branched-services/go-farm"
)

type fakeClient struct {
	msgs   []ethereum.CallMsg
	blocks []*big.Int
	out    []byte
	err    error
}

func (f *fakeClient) CallContract(_ context.Context, msg ethereum.CallMsg, block *big.Int) ([]byte, error) {
	f.msgs = append(f.msgs, msg)
	f.blocks = append(f.blocks, block)
	return f.out, f.err
}

func TestSimulateBuildsCallMsg(t *testing.T) {
	client := &fakeClient{out: farm.EncodeUint256(big.NewInt(42))}
	sim := New(client, WithLogger(zaptest.NewLogger(t)))

	call := farm.SimCall{
		From:  common.HexToAddress("0xaa"),
		To:    common.HexToAddress("0xbb"),
		Data:  []byte{1, 2, 3, 4},
		Value: big.NewInt(7),
	}
	out, err := sim.Simulate(context.Background(), call)
	require.NoError(t, err)
	v, err := farm.DecodeUint256(out)
	require.NoError(t, err)
	assert.Equal(t, int64(42), v.Int64())

	require.Len(t, client.msgs, 1)
	msg := client.msgs[0]
	assert.Equal(t, call.From, msg.From)
	require.NotNil(t, msg.To)
	assert.Equal(t, call.To, *msg.To)
	assert.Equal(t, call.Data, msg.Data)
	assert.Equal(t, int64(7), msg.Value.Int64())
	assert.Nil(t, client.blocks[0])
}

func TestSimulatePinnedBlock(t *testing.T) {
	client := &fakeClient{}
	sim := New(client, WithBlock(big.NewInt(19_000_000)))

	_, err := sim.Simulate(context.Background(), farm.SimCall{To: common.HexToAddress("0x01")})
	require.NoError(t, err)
	assert.Equal(t, int64(19_000_000), client.blocks[0].Int64())
}

func TestSimulateError(t *testing.T) {
	revert := errors.New("execution reverted")
	sim := New(&fakeClient{err: revert})

	_, err := sim.Simulate(context.Background(), farm.SimCall{To: common.HexToAddress("0x01")})
	require.ErrorIs(t, err, revert)
	assert.Contains(t, err.Error(), "ethsim: call")
}

func TestSimulatorDrivesWorkflow(t *testing.T) {
	client := &fakeClient{out: farm.EncodeUint256(big.NewInt(1500))}
	wf := farm.NewWorkflow("single", farm.WithSimulator(New(client)))

	c := farm.NewContract(common.HexToAddress("0x0c"), farm.MustParseABI(`[{"name":"swap","type":"function","stateMutability":"nonpayable","inputs":[{"name":"amount","type":"uint256"}],"outputs":[{"name":"","type":"uint256"}]}]`))
	require.NoError(t, wf.Add(&farm.Action{
		Name: "swap",
		Encode: func(_ context.Context, amountIn *big.Int, _ *farm.RunContext) (*farm.Call, error) {
			return c.Invoke("swap", amountIn)
		},
		Decode: farm.DecodeUint256,
	}))

	account := common.HexToAddress("0xacc")
	est, err := wf.Estimate(context.Background(), big.NewInt(1000), farm.NewRunContext(account))
	require.NoError(t, err)
	assert.Equal(t, int64(1500), est.AmountOut.Int64())
	require.Len(t, client.msgs, 1)
	assert.Equal(t, account, client.msgs[0].From)
}
