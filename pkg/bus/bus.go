// Copyright IBM Corp. All Rights Reserved.
//
// SPDX-License-Identifier: Apache-2.0
//

// Package bus carries topic-tagged messages between the node's subsystems.
// Routing keys follow the "submodule.msgtype" convention.
package bus

import (
	evbus "github.com/asaskevich/EventBus"
)

// Routing keys consumed by the bridge.
const (
	NetSignedProposal   = "net.signed_proposal"
	NetRawBytes         = "net.raw_bytes"
	ChainRichStatus     = "chain.rich_status"
	AuthBlockTxs        = "auth.block_txs"
	AuthVerifyBlockResp = "auth.verify_block_resp"
	SnapshotReq         = "snapshot.snapshot_req"
)

// Routing keys produced by the bridge.
const (
	ConsensusSignedProposal = "consensus.signed_proposal"
	ConsensusRawBytes       = "consensus.raw_bytes"
	ConsensusVerifyBlockReq = "consensus.verify_block_req"
)

// InboundKeys returns the routing keys the bridge subscribes to.
func InboundKeys() []string {
	return []string{
		NetSignedProposal,
		NetRawBytes,
		ChainRichStatus,
		AuthBlockTxs,
		AuthVerifyBlockResp,
		SnapshotReq,
	}
}

// Message is a raw topic-tagged message.
type Message struct {
	Key  string
	Body []byte
}

// Bus is the node-wide publish/subscribe transport.
type Bus interface {
	Publish(key string, body []byte)
	Subscribe(key string, handler func(body []byte)) error
	Unsubscribe(key string, handler func(body []byte)) error
}

// EventBus is an in-process Bus backed by asaskevich/EventBus.
type EventBus struct {
	bus evbus.Bus
}

// NewEventBus creates an empty in-process bus.
func NewEventBus() *EventBus {
	return &EventBus{bus: evbus.New()}
}

func (e *EventBus) Publish(key string, body []byte) {
	e.bus.Publish(key, body)
}

func (e *EventBus) Subscribe(key string, handler func(body []byte)) error {
	return e.bus.Subscribe(key, handler)
}

func (e *EventBus) Unsubscribe(key string, handler func(body []byte)) error {
	return e.bus.Unsubscribe(key, handler)
}
