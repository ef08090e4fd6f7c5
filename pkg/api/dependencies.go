// Copyright IBM Corp. All Rights Reserved.
//
// SPDX-License-Identifier: Apache-2.0
//

package api

import (
	"github.com/bft-go/bridge/pkg/types"
)

// Support is the capability set the bridge hands to the BFT actuator.
// Every method returns a value and never panics on bad input: a nil or
// false result means "no" and it is up to the actuator to retry where
// that makes sense (GetBlock, Sign) or treat the answer as authoritative
// (CheckBlock, CheckTransaction, CheckSig).
type Support interface {
	// CheckBlock reports whether the raw block is valid at the given height.
	CheckBlock(block []byte, height uint64) bool
	// CheckTransaction reports whether the transactions carried by the raw
	// block pass verification for the given height and round.
	CheckTransaction(block []byte, height uint64, round uint64) bool
	// Transmit publishes an outbound proposal or vote produced by the actuator.
	Transmit(event types.Event)
	// Commit hands a finalized block and its commit certificate to the node.
	Commit(commit types.Commit)
	// GetBlock returns the encoded block to propose at the given height,
	// or nil if it cannot be assembled yet.
	GetBlock(height uint64) []byte
	// Sign signs the given hash with the node's private key, or returns nil.
	Sign(hash []byte) []byte
	// CheckSig recovers the signer's address from a recoverable signature,
	// or returns nil on any cryptographic failure.
	CheckSig(signature []byte, hash []byte) []byte
	// CryptHash returns the deterministic content hash of msg.
	CryptHash(msg []byte) []byte
}

// Actuator is the external BFT consensus engine. The bridge drives it by
// sending proposal, vote and status events; the engine drives the bridge
// back through the Support capability set.
type Actuator interface {
	Send(event types.Event) error
}

// Publisher publishes a topic-tagged message onto the node bus.
type Publisher interface {
	Publish(key string, body []byte)
}

// Logger defines the contract for logging.
type Logger interface {
	Debugf(template string, args ...interface{})
	Infof(template string, args ...interface{})
	Errorf(template string, args ...interface{})
	Warnf(template string, args ...interface{})
	Panicf(template string, args ...interface{})
}
