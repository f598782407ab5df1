// Package balance looks up live native and token balances. Results are never
// cached.
package balance

import (
	"context"
	"crypto/ed25519"
	"math/big"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/code-payments/solana-http-server/pkg/apierror"
	"github.com/code-payments/solana-http-server/pkg/codec"
	"github.com/code-payments/solana-http-server/pkg/metrics"
	"github.com/code-payments/solana-http-server/pkg/solana"
	"github.com/code-payments/solana-http-server/pkg/solana/token"
)

const metricsStructName = "balance.service"

type TokenBalance struct {
	// Account is the associated token account that was queried.
	Account  ed25519.PublicKey
	Amount   uint64
	Decimals uint8
}

// UIAmount returns the balance in whole tokens, as a decimal string.
func (b *TokenBalance) UIAmount() string {
	return decimal.NewFromBigInt(new(big.Int).SetUint64(b.Amount), -int32(b.Decimals)).String()
}

type Service struct {
	log    *logrus.Entry
	client solana.Client
}

func NewService(client solana.Client) *Service {
	return &Service{
		log:    logrus.StandardLogger().WithField("type", "balance/service"),
		client: client,
	}
}

// GetNativeBalance returns the lamport balance of address.
func (s *Service) GetNativeBalance(ctx context.Context, address string) (uint64, error) {
	tracer := metrics.TraceMethodCall(ctx, metricsStructName, "GetNativeBalance")
	defer tracer.End()

	key, err := codec.DecodeAddress("address", address)
	if err != nil {
		return 0, err
	}

	balance, err := s.client.GetBalance(key)
	if err != nil {
		s.log.WithError(err).WithField("address", address).Debug("failure getting balance")
		tracer.OnError(err)
		return 0, apierror.Remote(err)
	}
	return balance, nil
}

// GetTokenBalance returns the balance of the associated token account of owner
// for mint. A token account that doesn't exist is a remote error, not a zero
// balance.
func (s *Service) GetTokenBalance(ctx context.Context, owner, mint string) (*TokenBalance, error) {
	tracer := metrics.TraceMethodCall(ctx, metricsStructName, "GetTokenBalance")
	defer tracer.End()

	ownerKey, err := codec.DecodeAddress("address", owner)
	if err != nil {
		return nil, err
	}
	mintKey, err := codec.DecodeAddress("token_mint", mint)
	if err != nil {
		return nil, err
	}

	account, err := codec.DeriveAssociatedAccount(ownerKey, mintKey, token.ProgramKey)
	if err != nil {
		return nil, err
	}

	log := s.log.WithFields(logrus.Fields{
		"owner":   owner,
		"mint":    mint,
		"account": codec.EncodeAddress(account),
	})

	amount, err := s.client.GetTokenAccountBalance(account)
	if err != nil {
		log.WithError(err).Debug("failure getting token balance")
		tracer.OnError(err)
		return nil, apierror.Remote(errors.Wrapf(err, "token account %s", codec.EncodeAddress(account)))
	}

	return &TokenBalance{
		Account:  account,
		Amount:   amount.Amount,
		Decimals: amount.Decimals,
	}, nil
}
