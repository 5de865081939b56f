package parser

import (
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"odos-swap/pkg/types"
)

const testKey = "0x4c0883a69102937d6231471b5dbb6204fe5129617082792ae468d01a3f362318"

func TestParseSwapArgs(t *testing.T) {
	t.Parallel()

	req, err := ParseSwapArgs(SwapArgs{
		RPC:        " https://mainnet.base.org ",
		PrivateKey: testKey,
		TokenIn:    "",
		TokenOut:   "0x833589fcd6edb6e08f4c7c32d4f71b54bda02913",
		Amount:     "1_000_000_000_000_000_000",
	})
	require.NoError(t, err)

	assert.Equal(t, "https://mainnet.base.org", req.RPCEndpoint)
	assert.Equal(t, testKey, req.PrivateKey)
	assert.True(t, types.IsNative(req.TokenIn))
	assert.Equal(t, common.HexToAddress("0x833589fCD6eDb6E08f4c7C32D4f71b54bdA02913"), req.TokenOut)
	assert.Equal(t, "1000000000000000000", req.Amount.String())
}

func TestParseSwapArgsErrors(t *testing.T) {
	t.Parallel()

	base := SwapArgs{
		RPC:        "http://localhost:8545",
		PrivateKey: testKey,
		TokenOut:   "0x833589fCD6eDb6E08f4c7C32D4f71b54bdA02913",
		Amount:     "100",
	}

	tests := []struct {
		name   string
		mutate func(a *SwapArgs)
		want   string
	}{
		{name: "bad token in", mutate: func(a *SwapArgs) { a.TokenIn = "0x1234" }, want: "parse token-in"},
		{name: "bad token out", mutate: func(a *SwapArgs) { a.TokenOut = "usdc" }, want: "parse token-out"},
		{name: "empty amount", mutate: func(a *SwapArgs) { a.Amount = "" }, want: "parse amount"},
		{name: "decimal amount", mutate: func(a *SwapArgs) { a.Amount = "1.5" }, want: "parse amount"},
		{name: "zero amount", mutate: func(a *SwapArgs) { a.Amount = "0" }, want: "parse amount"},
		{name: "missing rpc", mutate: func(a *SwapArgs) { a.RPC = "" }, want: "rpc endpoint is required"},
		{name: "missing key", mutate: func(a *SwapArgs) { a.PrivateKey = "  " }, want: "private key is required"},
		{name: "same token", mutate: func(a *SwapArgs) { a.TokenIn = a.TokenOut }, want: "token in cannot be same as token out"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			args := base
			tt.mutate(&args)

			_, err := ParseSwapArgs(args)
			require.ErrorIs(t, err, types.ErrInvalidInput)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestParseAmount(t *testing.T) {
	t.Parallel()

	tests := []struct {
		input   string
		want    string
		wantErr bool
	}{
		{input: "1", want: "1"},
		{input: " 42 ", want: "42"},
		{input: "1_000", want: "1000"},
		{input: "340282366920938463463374607431768211455", want: "340282366920938463463374607431768211455"},
		{input: "340282366920938463463374607431768211456", wantErr: true},
		{input: "-5", wantErr: true},
		{input: "0", wantErr: true},
		{input: "0x10", wantErr: true},
		{input: "1e18", wantErr: true},
		{input: "", wantErr: true},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.input, func(t *testing.T) {
			t.Parallel()

			got, err := ParseAmount(tt.input)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			want, _ := new(big.Int).SetString(tt.want, 10)
			assert.Equal(t, 0, want.Cmp(got))
		})
	}
}

func TestParseTokenAddress(t *testing.T) {
	t.Parallel()

	native, err := ParseTokenAddress("  ")
	require.NoError(t, err)
	assert.Equal(t, types.NativeToken, native)

	zero, err := ParseTokenAddress("0x0000000000000000000000000000000000000000")
	require.NoError(t, err)
	assert.True(t, types.IsNative(zero))

	_, err = ParseTokenAddress("0xZZ3589fCD6eDb6E08f4c7C32D4f71b54bdA02913")
	require.Error(t, err)
}

func TestNormalizePrivateKey(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "abcd", NormalizePrivateKey(" 0xabcd\n"))
	assert.Equal(t, "abcd", NormalizePrivateKey("0Xabcd"))
	assert.Equal(t, "abcd", NormalizePrivateKey("abcd"))
}
