// Package instruction builds unsigned instruction descriptors for the token,
// system and associated token account programs.
package instruction

import (
	"context"
	"crypto/ed25519"

	"github.com/sirupsen/logrus"

	"github.com/code-payments/solana-http-server/pkg/apierror"
	"github.com/code-payments/solana-http-server/pkg/codec"
	"github.com/code-payments/solana-http-server/pkg/metrics"
	"github.com/code-payments/solana-http-server/pkg/solana"
	"github.com/code-payments/solana-http-server/pkg/solana/system"
	"github.com/code-payments/solana-http-server/pkg/solana/token"
)

const metricsStructName = "instruction.builder"

// Descriptor is an unsigned, unsubmitted instruction. When an operation needs
// more than one program instruction, Data is the concatenation of each
// instruction's data and Accounts is the single account list callers sign
// against. Parts keeps the individual instructions.
type Descriptor struct {
	Program  ed25519.PublicKey
	Accounts []solana.AccountMeta
	Data     []byte

	Parts []solana.Instruction
}

// RentProvider returns the minimum lamports an account of the given size must
// hold to be rent exempt.
type RentProvider interface {
	GetMinimumBalanceForRentExemption(size uint64) (uint64, error)
}

type Builder struct {
	log  *logrus.Entry
	rent RentProvider
}

func NewBuilder(rent RentProvider) *Builder {
	return &Builder{
		log:  logrus.StandardLogger().WithField("type", "instruction/builder"),
		rent: rent,
	}
}

// CreateMint allocates a mint account funded by mintAuthority and initializes
// it with mintAuthority as both mint and freeze authority.
func (b *Builder) CreateMint(ctx context.Context, mintAuthority, mint string, decimals uint8) (*Descriptor, error) {
	tracer := metrics.TraceMethodCall(ctx, metricsStructName, "CreateMint")
	defer tracer.End()

	authorityKey, err := codec.DecodeAddress("mint_authority", mintAuthority)
	if err != nil {
		return nil, err
	}
	mintKey, err := codec.DecodeAddress("mint", mint)
	if err != nil {
		return nil, err
	}

	lamports, err := b.rent.GetMinimumBalanceForRentExemption(token.MintSize)
	if err != nil {
		b.log.WithError(err).WithField("method", "CreateMint").Warn("failure getting rent exemption minimum")
		tracer.OnError(err)
		return nil, apierror.Remote(err)
	}
	tracer.AddAttribute("rent_lamports", lamports)

	parts := []solana.Instruction{
		system.CreateAccount(authorityKey, mintKey, token.ProgramKey, lamports, token.MintSize),
		token.InitializeMint(mintKey, authorityKey, authorityKey, decimals),
	}

	return newDescriptor(
		token.ProgramKey,
		parts,
		solana.NewAccountMeta(authorityKey, true),
		solana.NewAccountMeta(mintKey, true),
	), nil
}

// MintTo mints amount tokens into the associated token account of
// destination, creating that account first if it doesn't exist.
func (b *Builder) MintTo(ctx context.Context, mint, destination, authority string, amount uint64) (*Descriptor, error) {
	tracer := metrics.TraceMethodCall(ctx, metricsStructName, "MintTo")
	defer tracer.End()

	authorityKey, err := codec.DecodeAddress("authority", authority)
	if err != nil {
		return nil, err
	}
	mintKey, err := codec.DecodeAddress("mint", mint)
	if err != nil {
		return nil, err
	}
	destinationKey, err := codec.DecodeAddress("destination", destination)
	if err != nil {
		return nil, err
	}

	createAta, ata, err := token.CreateAssociatedTokenAccountIdempotent(authorityKey, destinationKey, mintKey)
	if err != nil {
		tracer.OnError(err)
		return nil, apierror.Transaction(err, "failed to build create associated account instruction: %s", err.Error())
	}

	parts := []solana.Instruction{
		createAta,
		token.MintTo(mintKey, ata, authorityKey, amount),
	}

	return newDescriptor(
		token.ProgramKey,
		parts,
		solana.NewReadonlyAccountMeta(authorityKey, true),
		solana.NewAccountMeta(mintKey, false),
		solana.NewAccountMeta(ata, false),
	), nil
}

// TransferNative moves lamports between two system accounts.
func (b *Builder) TransferNative(ctx context.Context, from, to string, lamports uint64) (*Descriptor, error) {
	tracer := metrics.TraceMethodCall(ctx, metricsStructName, "TransferNative")
	defer tracer.End()

	fromKey, err := codec.DecodeAddress("from", from)
	if err != nil {
		return nil, err
	}
	toKey, err := codec.DecodeAddress("to", to)
	if err != nil {
		return nil, err
	}

	transfer := system.Transfer(fromKey, toKey, lamports)
	return newDescriptor(
		transfer.Program,
		[]solana.Instruction{transfer},
		transfer.Accounts...,
	), nil
}

// TransferToken moves amount tokens from the associated token account of
// owner to the associated token account of destination.
func (b *Builder) TransferToken(ctx context.Context, destination, mint, owner string, amount uint64) (*Descriptor, error) {
	tracer := metrics.TraceMethodCall(ctx, metricsStructName, "TransferToken")
	defer tracer.End()

	ownerKey, err := codec.DecodeAddress("owner", owner)
	if err != nil {
		return nil, err
	}
	mintKey, err := codec.DecodeAddress("mint", mint)
	if err != nil {
		return nil, err
	}
	destinationKey, err := codec.DecodeAddress("destination", destination)
	if err != nil {
		return nil, err
	}

	source, err := codec.DeriveAssociatedAccount(ownerKey, mintKey, token.ProgramKey)
	if err != nil {
		tracer.OnError(err)
		return nil, err
	}
	dest, err := codec.DeriveAssociatedAccount(destinationKey, mintKey, token.ProgramKey)
	if err != nil {
		tracer.OnError(err)
		return nil, err
	}

	transfer := token.Transfer(source, dest, ownerKey, amount)
	return newDescriptor(
		transfer.Program,
		[]solana.Instruction{transfer},
		transfer.Accounts...,
	), nil
}

func newDescriptor(program ed25519.PublicKey, parts []solana.Instruction, accounts ...solana.AccountMeta) *Descriptor {
	var size int
	for _, part := range parts {
		size += len(part.Data)
	}

	data := make([]byte, 0, size)
	for _, part := range parts {
		data = append(data, part.Data...)
	}

	return &Descriptor{
		Program:  program,
		Accounts: accounts,
		Data:     data,
		Parts:    parts,
	}
}
