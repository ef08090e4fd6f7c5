// Copyright IBM Corp. All Rights Reserved.
//
// SPDX-License-Identifier: Apache-2.0
//

package bridge

import (
	"sync"

	"github.com/bft-go/bridge/pkg/api"
	"github.com/bft-go/bridge/pkg/crypto"
	"github.com/bft-go/bridge/pkg/types"
)

// Bridge is the capability adapter handed to the BFT actuator. Every call
// that needs the Processor sends one request and blocks on the matching
// response channel; a mutex per channel pair keeps at most one request of
// each kind in flight, so concurrent actuator threads cannot interleave a
// request with an unrelated response.
//
// CheckSig and CryptHash are pure local computations and never touch the
// Processor.
type Bridge struct {
	logger api.Logger

	requests    chan<- bridgeMsg
	blockResp   <-chan bool
	txResp      <-chan bool
	signResp    <-chan []byte
	forwardResp <-chan []byte

	blockLock   sync.Mutex
	txLock      sync.Mutex
	signLock    sync.Mutex
	forwardLock sync.Mutex
}

// CheckBlock asks the Processor whether the raw block is valid.
func (b *Bridge) CheckBlock(block []byte, height uint64) bool {
	b.blockLock.Lock()
	defer b.blockLock.Unlock()

	b.requests <- checkBlockReq{block: block, height: height}
	return b.recvBool(b.blockResp)
}

// CheckTransaction asks the verification subsystem, through the Processor,
// whether the block's transactions pass for the given height and round.
// The call blocks until the verdict arrives on the bus.
func (b *Bridge) CheckTransaction(block []byte, height uint64, round uint64) bool {
	b.txLock.Lock()
	defer b.txLock.Unlock()

	b.requests <- checkTxReq{block: block, height: height, round: round}
	return b.recvBool(b.txResp)
}

// Transmit publishes an outbound proposal or vote. Fire and forget.
func (b *Bridge) Transmit(event types.Event) {
	b.requests <- transmitReq{event: event}
}

// Commit hands a finalized block and its commit certificate to the
// Processor. Fire and forget.
func (b *Bridge) Commit(commit types.Commit) {
	b.requests <- commitReq{commit: commit}
}

// GetBlock returns the encoded block to propose at the given height. The
// call blocks until the Processor has every input needed to assemble it.
func (b *Bridge) GetBlock(height uint64) []byte {
	b.forwardLock.Lock()
	defer b.forwardLock.Unlock()

	b.requests <- getBlockReq{height: height}
	return b.recvBytes(b.forwardResp)
}

// Sign signs the given hash with the node's private key, or returns nil.
func (b *Bridge) Sign(hash []byte) []byte {
	b.signLock.Lock()
	defer b.signLock.Unlock()

	b.requests <- signReq{hash: hash}
	return b.recvBytes(b.signResp)
}

// CheckSig recovers the address of whoever produced the signature over the
// hash. Any cryptographic failure, including a wrong signature size, yields
// nil.
func (b *Bridge) CheckSig(signature []byte, hash []byte) []byte {
	if len(signature) != crypto.SignatureLen {
		return nil
	}
	address, err := crypto.Recover(signature, hash)
	if err != nil {
		b.logger.Debugf("Failed recovering address from signature: %v", err)
		return nil
	}
	return address
}

// CryptHash returns the deterministic content hash of msg.
func (b *Bridge) CryptHash(msg []byte) []byte {
	return crypto.Hash(msg)
}

func (b *Bridge) recvBool(c <-chan bool) bool {
	v, ok := <-c
	if !ok {
		b.logger.Panicf("Response channel was torn down, cannot make progress")
	}
	return v
}

func (b *Bridge) recvBytes(c <-chan []byte) []byte {
	v, ok := <-c
	if !ok {
		b.logger.Panicf("Response channel was torn down, cannot make progress")
	}
	return v
}
