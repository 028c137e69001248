// Package signer wraps the remote identity signing RPC of a Verus chain as
// a sign/verify service keyed by chain id.
package signer

import (
	"context"

	"github.com/pkg/errors"
)

// Verification is the tri-state outcome of a signature check. Unreachable is
// distinct from Invalid so callers can see which fail-closed branch fired,
// but both must resolve to a rejection.
type Verification int

const (
	Invalid Verification = iota
	Valid
	Unreachable
)

func (v Verification) String() string {
	switch v {
	case Valid:
		return "valid"
	case Invalid:
		return "invalid"
	case Unreachable:
		return "unreachable"
	default:
		return "unknown"
	}
}

var (
	// ErrUnavailable indicates the remote signing service could not be
	// reached or returned a malformed response.
	ErrUnavailable = errors.New("signer unavailable")

	// ErrRejected indicates the signing service refused to sign, e.g. the
	// identity is not known to it.
	ErrRejected = errors.New("signer rejected request")
)

// Signer signs and verifies messages on behalf of identities. Verify must
// fail closed: transport trouble surfaces as Unreachable, never as Valid and
// never as a bare error that could bypass a rejection.
type Signer interface {
	Sign(ctx context.Context, identity string, message []byte) (string, error)
	Verify(ctx context.Context, identity, signature string, message []byte) (Verification, error)
}

// ChainSet holds one Signer per chain id.
type ChainSet struct {
	signers map[string]Signer
}

func NewChainSet() *ChainSet {
	return &ChainSet{signers: make(map[string]Signer)}
}

// Register adds a signer for a chain id, replacing any existing one.
func (cs *ChainSet) Register(chainID string, s Signer) {
	cs.signers[chainID] = s
}

// Get returns the signer for a chain id.
func (cs *ChainSet) Get(chainID string) (Signer, error) {
	s, ok := cs.signers[chainID]
	if !ok {
		return nil, errors.Errorf("no signer registered for chain<%s>", chainID)
	}
	return s, nil
}

// ChainIDs lists the registered chains.
func (cs *ChainSet) ChainIDs() []string {
	ids := make([]string, 0, len(cs.signers))
	for id := range cs.signers {
		ids = append(ids, id)
	}
	return ids
}
