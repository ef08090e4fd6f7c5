// Copyright IBM Corp. All Rights Reserved.
//
// SPDX-License-Identifier: Apache-2.0
//

package test

import (
	"bytes"
	"sync"
	"testing"
	"time"

	bft "github.com/bft-go/bridge/internal/bridge"
	"github.com/bft-go/bridge/pkg/bus"
	"github.com/bft-go/bridge/pkg/consensus"
	"github.com/bft-go/bridge/pkg/crypto"
	"github.com/bft-go/bridge/pkg/types"
	"github.com/bft-go/bridge/pkg/wire"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// recordingActuator stands in for the external BFT engine: it records every
// event the bridge sends it.
type recordingActuator struct {
	mu     sync.Mutex
	events []types.Event
}

func (a *recordingActuator) Send(e types.Event) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.events = append(a.events, e)
	return nil
}

func (a *recordingActuator) recorded() []types.Event {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]types.Event, len(a.events))
	copy(out, a.events)
	return out
}

// topicRecorder captures everything published under one routing key.
type topicRecorder struct {
	mu     sync.Mutex
	bodies [][]byte
}

func (r *topicRecorder) handle(body []byte) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.bodies = append(r.bodies, body)
}

func (r *topicRecorder) recorded() [][]byte {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([][]byte, len(r.bodies))
	copy(out, r.bodies)
	return out
}

func startBridge(t *testing.T, eb *bus.EventBus, actuator *recordingActuator) *consensus.Bridge {
	basicLog, err := zap.NewDevelopment()
	require.NoError(t, err)

	config := consensus.DefaultConfig
	config.PrivateKey = bytes.Repeat([]byte{3}, crypto.PrivateKeyLen)

	b := &consensus.Bridge{
		Config:   config,
		Logger:   basicLog.Sugar(),
		Actuator: actuator,
		Bus:      eb,
	}
	require.NoError(t, b.Start())
	t.Cleanup(b.Stop)
	return b
}

func TestBridgeEndToEnd(t *testing.T) {
	eb := bus.NewEventBus()
	actuator := &recordingActuator{}
	b := startBridge(t, eb, actuator)
	support := b.Support()

	// The verification subsystem: approves every block it is asked about.
	verifier := func(body []byte) {
		var req wire.VerifyBlockReq
		if err := req.Unmarshal(body); err != nil {
			t.Errorf("malformed verification request: %v", err)
			return
		}
		verdict := &wire.VerifyBlockResp{Height: req.Height, Round: req.Round, Pass: true}
		eb.Publish(bus.AuthVerifyBlockResp, verdict.Marshal())
	}
	require.NoError(t, eb.Subscribe(bus.ConsensusVerifyBlockReq, verifier))

	outbound := &topicRecorder{}
	require.NoError(t, eb.Subscribe(bus.ConsensusSignedProposal, outbound.handle))

	// Chain reports height 10, with one node appearing twice.
	a, c := []byte{0xa}, []byte{0xc}
	rs := &wire.RichStatus{
		Hash:     crypto.Hash([]byte("block 9")),
		Height:   10,
		Nodes:    [][]byte{a, a, c},
		Interval: 3000,
		Version:  1,
	}
	eb.Publish(bus.ChainRichStatus, rs.Marshal())

	require.Eventually(t, func() bool {
		return len(actuator.recorded()) == 1
	}, time.Second, 10*time.Millisecond)
	status, ok := actuator.recorded()[0].(types.StatusEvent)
	require.True(t, ok)
	assert.Equal(t, []types.Node{
		{Address: a, ProposalWeight: 2, VoteWeight: 1},
		{Address: c, ProposalWeight: 1, VoteWeight: 1},
	}, status.Status.AuthorityList)

	// The engine commits height 9, making its proof available for block 10.
	proof := types.Proof{
		BlockHash:  crypto.Hash([]byte("block 9")),
		Height:     9,
		Round:      0,
		Precommits: map[string][]byte{string(a): []byte("sig-a"), string(c): []byte("sig-c")},
	}
	support.Commit(types.Commit{Height: 9, Proof: proof, Address: a})

	// The transaction batch for height 10 arrives over the bus.
	batch := &wire.BlockTxs{
		Height: 10,
		Body:   &wire.BlockBody{Transactions: [][]byte{[]byte("tx1"), []byte("tx2")}},
	}
	eb.Publish(bus.AuthBlockTxs, batch.Marshal())

	got := make(chan []byte, 1)
	go func() {
		got <- support.GetBlock(10)
	}()
	var raw []byte
	select {
	case raw = <-got:
	case <-time.After(5 * time.Second):
		t.Fatal("get-block was never answered")
	}

	var block wire.Block
	require.NoError(t, block.Unmarshal(raw))
	assert.Equal(t, uint64(10), block.Header.Height)
	assert.Equal(t, rs.Hash, block.Header.Prevhash)
	assert.Equal(t, b.Address(), block.Header.Proposer)
	assert.Equal(t, batch.Body.Transactions, block.Body.Transactions)

	// The proposal makes a full round: hashed, signed, checked, verified.
	digest := support.CryptHash(raw)
	signature := support.Sign(digest)
	require.Len(t, signature, crypto.SignatureLen)
	assert.Equal(t, b.Address(), support.CheckSig(signature, digest))
	assert.True(t, support.CheckBlock(raw, 10))
	assert.True(t, support.CheckTransaction(raw, 10, 0))

	// The engine broadcasts its proposal through the bridge.
	support.Transmit(types.ProposalEvent{Payload: raw})
	require.Eventually(t, func() bool {
		return len(outbound.recorded()) == 1
	}, time.Second, 10*time.Millisecond)
	assert.Equal(t, raw, outbound.recorded()[0])
}

func TestBridgeForwardsNetworkTraffic(t *testing.T) {
	eb := bus.NewEventBus()
	actuator := &recordingActuator{}
	startBridge(t, eb, actuator)

	eb.Publish(bus.NetSignedProposal, []byte("remote proposal"))
	eb.Publish(bus.NetRawBytes, []byte("remote vote"))

	require.Eventually(t, func() bool {
		return len(actuator.recorded()) == 2
	}, time.Second, 10*time.Millisecond)

	events := actuator.recorded()
	assert.Equal(t, types.ProposalEvent{Payload: []byte("remote proposal")}, events[0])
	assert.Equal(t, types.VoteEvent{Payload: []byte("remote vote")}, events[1])
}

func TestBridgeRejectsBadPrivateKey(t *testing.T) {
	basicLog, err := zap.NewDevelopment()
	require.NoError(t, err)

	b := &consensus.Bridge{
		Config:   consensus.Configuration{PrivateKey: []byte("too short")},
		Logger:   basicLog.Sugar(),
		Actuator: &recordingActuator{},
		Bus:      bus.NewEventBus(),
	}
	assert.Error(t, b.Start())
}

func TestCommittedProofRoundTripsThroughHeader(t *testing.T) {
	eb := bus.NewEventBus()
	actuator := &recordingActuator{}
	b := startBridge(t, eb, actuator)
	support := b.Support()

	proof := types.Proof{
		BlockHash:  crypto.Hash([]byte("block 4")),
		Height:     4,
		Round:      1,
		Precommits: map[string][]byte{"\x01": {0xaa}},
	}
	support.Commit(types.Commit{Height: 4, Proof: proof})

	rs := &wire.RichStatus{Hash: proof.BlockHash, Height: 5, Nodes: [][]byte{{1}}, Version: 1}
	eb.Publish(bus.ChainRichStatus, rs.Marshal())
	batch := &wire.BlockTxs{Height: 5, Body: &wire.BlockBody{}}
	eb.Publish(bus.AuthBlockTxs, batch.Marshal())

	got := make(chan []byte, 1)
	go func() {
		got <- support.GetBlock(5)
	}()
	var raw []byte
	select {
	case raw = <-got:
	case <-time.After(5 * time.Second):
		t.Fatal("get-block was never answered")
	}

	var block wire.Block
	require.NoError(t, block.Unmarshal(raw))
	decoded, err := bft.FromWireProof(block.Header.Proof)
	require.NoError(t, err)
	assert.Equal(t, proof, decoded)
}
