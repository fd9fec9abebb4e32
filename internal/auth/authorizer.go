package auth

import (
	"context"
	"fmt"

	"github.com/ethereum/go-ethereum/common"

	"github.com/feral-file/ff-crowdfund/internal/domain"
)

// Authorizer is the authorization primitive consumed by the ledger
//
//go:generate mockgen -source=authorizer.go -destination=../mocks/authorizer.go -package=mocks -mock_names=Authorizer=MockAuthorizer
type Authorizer interface {
	// RequireAuth fails with domain.ErrUnauthorized unless identity authorized the current call
	RequireAuth(ctx context.Context, identity common.Address) error
}

type signersKey struct{}

// WithSigners returns a context carrying the identities that authorized the call
func WithSigners(ctx context.Context, signers ...common.Address) context.Context {
	existing := Signers(ctx)
	merged := make([]common.Address, 0, len(existing)+len(signers))
	merged = append(merged, existing...)
	merged = append(merged, signers...)
	return context.WithValue(ctx, signersKey{}, merged)
}

// Signers returns the identities that authorized the call carried by ctx
func Signers(ctx context.Context) []common.Address {
	signers, _ := ctx.Value(signersKey{}).([]common.Address)
	return signers
}

// contextAuthorizer checks identities against the verified signers in the context
type contextAuthorizer struct{}

// NewContextAuthorizer creates an Authorizer backed by WithSigners
func NewContextAuthorizer() Authorizer {
	return &contextAuthorizer{}
}

func (a *contextAuthorizer) RequireAuth(ctx context.Context, identity common.Address) error {
	for _, signer := range Signers(ctx) {
		if signer == identity {
			return nil
		}
	}
	return fmt.Errorf("%w: %s did not authorize the call", domain.ErrUnauthorized, identity.Hex())
}

// allowAll authorizes every identity. Local simulations only.
type allowAll struct{}

// NewAllowAll creates an Authorizer that accepts any identity
func NewAllowAll() Authorizer {
	return &allowAll{}
}

func (a *allowAll) RequireAuth(context.Context, common.Address) error {
	return nil
}
