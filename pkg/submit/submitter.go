package submit

import (
	"context"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/core/types"
	"github.com/sirupsen/logrus"

	"odos-swap/pkg/chain"
	swaptypes "odos-swap/pkg/types"
)

// Submitter signs, sends and confirms the swap transaction
type Submitter struct {
	waiter chain.Waiter
	logger *logrus.Logger
}

// NewSubmitter creates a swap submitter
func NewSubmitter(waiter chain.Waiter, logger *logrus.Logger) *Submitter {
	if waiter == nil {
		waiter = chain.ReceiptWaiter
	}
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &Submitter{
		waiter: waiter,
		logger: logger,
	}
}

// BuildTx turns an assembled payload into an unsigned legacy transaction
func BuildTx(assembled *swaptypes.AssembledTransaction, value *big.Int) *types.Transaction {
	if value == nil {
		value = big.NewInt(0)
	}

	to := assembled.To
	return types.NewTx(&types.LegacyTx{
		Nonce:    assembled.Nonce,
		To:       &to,
		Value:    value,
		Gas:      assembled.Gas,
		GasPrice: assembled.GasPrice,
		Data:     assembled.Data,
	})
}

// Submit sends the swap and blocks until its receipt is observed.
// A reverted receipt is a SwapFailed error; the outcome is returned either way.
func (s *Submitter) Submit(ctx context.Context, session *chain.Session, assembled *swaptypes.AssembledTransaction, value *big.Int) (*swaptypes.SwapOutcome, error) {
	if assembled.ChainID != session.ChainID {
		return nil, swaptypes.NewError(swaptypes.MalformedResponse, "submit",
			fmt.Sprintf("assembled chain id %d does not match connected chain %d", assembled.ChainID, session.ChainID), nil)
	}

	signedTx, err := session.Signer.SignTx(BuildTx(assembled, value))
	if err != nil {
		return nil, swaptypes.NewError(swaptypes.InvalidKey, "sign swap", "", err)
	}

	log := s.logger.WithFields(logrus.Fields{
		"tx_hash": signedTx.Hash().Hex(),
		"nonce":   signedTx.Nonce(),
		"to":      assembled.To.Hex(),
		"value":   signedTx.Value().String(),
	})
	log.Info("sending swap transaction")

	if err := session.Client.SendTransaction(ctx, signedTx); err != nil {
		return nil, swaptypes.NewError(swaptypes.TransportError, "send swap", "", err)
	}

	receipt, err := s.waiter.WaitMined(ctx, session.Client, signedTx)
	if err != nil {
		return nil, swaptypes.NewError(swaptypes.TransportError, "wait swap", signedTx.Hash().Hex(), err)
	}

	outcome := chain.Outcome(receipt)
	log.WithField("status", outcome.Status).Info("swap mined")

	if !outcome.Succeeded() {
		return outcome, swaptypes.NewError(swaptypes.SwapFailed, "swap", "swap transaction "+outcome.TxHash.Hex()+" reverted", nil)
	}

	return outcome, nil
}
