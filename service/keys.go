// file: service/keys.go

package service

import "errors"

// SigningKeyProvider holds the shared HMAC secret used to sign and verify
// access tokens. It is immutable after construction and safe for concurrent
// use by every verifier in the process.
//
// An optional previous key supports secret rotation: verification tries the
// current key first and falls back to the previous one, so tokens signed
// shortly before a rotation stay valid until they expire naturally.
type SigningKeyProvider struct {
	current  []byte
	previous []byte
}

func NewSigningKeyProvider(secret, previousSecret string) (*SigningKeyProvider, error) {
	if len(secret) < 32 {
		return nil, errors.New("jwt secret must be at least 32 bytes")
	}
	p := &SigningKeyProvider{current: []byte(secret)}
	if previousSecret != "" {
		p.previous = []byte(previousSecret)
	}
	return p, nil
}

// SigningKey returns the key new tokens are signed with.
func (p *SigningKeyProvider) SigningKey() []byte {
	return p.current
}

// VerificationKeys returns candidate keys in verification order.
func (p *SigningKeyProvider) VerificationKeys() [][]byte {
	if p.previous == nil {
		return [][]byte{p.current}
	}
	return [][]byte{p.current, p.previous}
}
