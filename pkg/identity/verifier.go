package identity

import "context"

// Identity is the subject established by the external identity provider.
type Identity struct {
	UID   string
	Email string
}

// Verifier validates a bearer credential and yields the stable subject.
type Verifier interface {
	Verify(ctx context.Context, token string) (Identity, error)
}
