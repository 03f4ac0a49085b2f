package oidc

import (
	"context"
	"crypto"
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rsa"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"math/big"
	"net/http"
	"sync"
	"sync/atomic"

	"github.com/kbukum/oidcauth/errors"
	"github.com/kbukum/oidcauth/httpclient"
)

// KeySet caches a provider's JSON Web Key Set.
//
// Readers load an immutable snapshot through an atomic pointer and never
// take a lock. A refresh builds a complete replacement map and swaps it
// in; the mutex only serializes concurrent refreshes.
type KeySet struct {
	jwksURL string
	client  *httpclient.Client

	snapshot  atomic.Pointer[keySnapshot]
	refreshMu sync.Mutex
}

type keySnapshot struct {
	keys map[string]crypto.PublicKey
}

// jwk is a single JSON Web Key as published by the provider.
type jwk struct {
	Kty string `json:"kty"`
	Kid string `json:"kid"`
	Use string `json:"use"`

	// RSA fields
	N string `json:"n"`
	E string `json:"e"`

	// EC fields
	Crv string `json:"crv"`
	X   string `json:"x"`
	Y   string `json:"y"`
}

type jwksDoc struct {
	Keys []jwk `json:"keys"`
}

// NewKeySet creates a KeySet for the given JWKS URL. No keys are fetched
// until the first lookup or an explicit Refresh.
func NewKeySet(jwksURL string, client *httpclient.Client) *KeySet {
	return &KeySet{jwksURL: jwksURL, client: client}
}

// Key returns the public key with the given kid. An unknown kid triggers
// one refresh before the lookup fails, which covers provider key rotation.
func (s *KeySet) Key(ctx context.Context, kid string) (crypto.PublicKey, error) {
	if snap := s.snapshot.Load(); snap != nil {
		if key, ok := snap.keys[kid]; ok {
			return key, nil
		}
	}

	if err := s.Refresh(ctx); err != nil {
		return nil, err
	}

	snap := s.snapshot.Load()
	if snap != nil {
		if key, ok := snap.keys[kid]; ok {
			return key, nil
		}
	}
	return nil, errors.IdentityVerification(fmt.Errorf("signing key %q not found in JWKS", kid))
}

// Refresh fetches the JWKS and atomically replaces the cached snapshot.
// Concurrent callers are serialized; readers keep using the old snapshot
// until the swap.
func (s *KeySet) Refresh(ctx context.Context) error {
	s.refreshMu.Lock()
	defer s.refreshMu.Unlock()

	resp, err := s.client.Do(ctx, httpclient.Request{
		Method: http.MethodGet,
		Path:   s.jwksURL,
	})
	if err != nil {
		if httpclient.IsTimeout(err) {
			return errors.Timeout("fetch JWKS").WithCause(err)
		}
		return errors.ExternalService("JWKS", err)
	}

	var doc jwksDoc
	if err := json.Unmarshal(resp.Body, &doc); err != nil {
		return errors.ExternalService("JWKS", fmt.Errorf("decode JWKS: %w", err))
	}

	keys := make(map[string]crypto.PublicKey, len(doc.Keys))
	for i := range doc.Keys {
		k := &doc.Keys[i]
		if k.Use != "" && k.Use != "sig" {
			continue
		}
		pub, err := k.publicKey()
		if err != nil {
			// Skip keys we cannot parse; the provider may publish key
			// types we do not support alongside usable ones.
			continue
		}
		keys[k.Kid] = pub
	}

	s.snapshot.Store(&keySnapshot{keys: keys})
	return nil
}

// publicKey converts a JWK to a Go crypto.PublicKey.
func (k *jwk) publicKey() (crypto.PublicKey, error) {
	switch k.Kty {
	case "RSA":
		return k.rsaPublicKey()
	case "EC":
		return k.ecPublicKey()
	default:
		return nil, fmt.Errorf("unsupported key type: %s", k.Kty)
	}
}

func (k *jwk) rsaPublicKey() (*rsa.PublicKey, error) {
	nBytes, err := base64.RawURLEncoding.DecodeString(k.N)
	if err != nil {
		return nil, fmt.Errorf("decode RSA N: %w", err)
	}
	eBytes, err := base64.RawURLEncoding.DecodeString(k.E)
	if err != nil {
		return nil, fmt.Errorf("decode RSA E: %w", err)
	}

	return &rsa.PublicKey{
		N: new(big.Int).SetBytes(nBytes),
		E: int(new(big.Int).SetBytes(eBytes).Int64()),
	}, nil
}

func (k *jwk) ecPublicKey() (*ecdsa.PublicKey, error) {
	xBytes, err := base64.RawURLEncoding.DecodeString(k.X)
	if err != nil {
		return nil, fmt.Errorf("decode EC X: %w", err)
	}
	yBytes, err := base64.RawURLEncoding.DecodeString(k.Y)
	if err != nil {
		return nil, fmt.Errorf("decode EC Y: %w", err)
	}

	var curve elliptic.Curve
	switch k.Crv {
	case "P-256":
		curve = elliptic.P256()
	case "P-384":
		curve = elliptic.P384()
	case "P-521":
		curve = elliptic.P521()
	default:
		return nil, fmt.Errorf("unsupported curve: %s", k.Crv)
	}

	return &ecdsa.PublicKey{
		Curve: curve,
		X:     new(big.Int).SetBytes(xBytes),
		Y:     new(big.Int).SetBytes(yBytes),
	}, nil
}
