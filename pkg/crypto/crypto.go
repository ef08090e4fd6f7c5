// Copyright IBM Corp. All Rights Reserved.
//
// SPDX-License-Identifier: Apache-2.0
//

package crypto

import (
	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcec/v2/ecdsa"
	"github.com/pkg/errors"
	"golang.org/x/crypto/sha3"
)

const (
	// SignatureLen is the size of a recoverable signature: r (32) + s (32) + v (1).
	SignatureLen = 65
	// HashLen is the size of a content hash.
	HashLen = 32
	// AddressLen is the size of a derived address.
	AddressLen = 20
	// PrivateKeyLen is the size of a secp256k1 private key.
	PrivateKeyLen = 32

	compactHeaderOffset = 27
)

// Hash returns the Keccak-256 content hash of msg.
func Hash(msg []byte) []byte {
	d := sha3.NewLegacyKeccak256()
	d.Write(msg)
	return d.Sum(nil)
}

// PubkeyToAddress derives an address from a public key: the tail of the
// Keccak-256 hash of the uncompressed key material.
func PubkeyToAddress(pub *btcec.PublicKey) []byte {
	uncompressed := pub.SerializeUncompressed()
	return Hash(uncompressed[1:])[HashLen-AddressLen:]
}

// Recover returns the address of the signer that produced the recoverable
// signature over the given hash.
func Recover(signature, hash []byte) ([]byte, error) {
	if len(signature) != SignatureLen {
		return nil, errors.Errorf("signature must be %d bytes, got %d", SignatureLen, len(signature))
	}
	v := signature[SignatureLen-1]
	if v >= 4 {
		return nil, errors.Errorf("invalid recovery id %d", v)
	}
	// ecdsa.RecoverCompact expects the recovery id in a leading header byte,
	// while the bridge carries signatures as r || s || v.
	compact := make([]byte, SignatureLen)
	compact[0] = compactHeaderOffset + v
	copy(compact[1:], signature[:SignatureLen-1])
	pub, _, err := ecdsa.RecoverCompact(compact, hash)
	if err != nil {
		return nil, errors.Wrap(err, "failed recovering public key")
	}
	return PubkeyToAddress(pub), nil
}

// Signer holds the node's private key and the address derived from it.
// It is immutable after construction.
type Signer struct {
	key     *btcec.PrivateKey
	address []byte
}

// NewSigner creates a Signer from a raw secp256k1 private key.
func NewSigner(privKey []byte) (*Signer, error) {
	if len(privKey) != PrivateKeyLen {
		return nil, errors.Errorf("private key must be %d bytes, got %d", PrivateKeyLen, len(privKey))
	}
	key, _ := btcec.PrivKeyFromBytes(privKey)
	return &Signer{
		key:     key,
		address: PubkeyToAddress(key.PubKey()),
	}, nil
}

// Address returns the address derived from the signer's public key.
func (s *Signer) Address() []byte {
	return s.address
}

// Sign produces a recoverable signature, r || s || v, over the given hash.
func (s *Signer) Sign(hash []byte) ([]byte, error) {
	if len(hash) != HashLen {
		return nil, errors.Errorf("hash must be %d bytes, got %d", HashLen, len(hash))
	}
	compact := ecdsa.SignCompact(s.key, hash, false)
	sig := make([]byte, SignatureLen)
	copy(sig, compact[1:])
	sig[SignatureLen-1] = compact[0] - compactHeaderOffset
	return sig, nil
}
