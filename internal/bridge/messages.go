// Copyright IBM Corp. All Rights Reserved.
//
// SPDX-License-Identifier: Apache-2.0
//

package bridge

import (
	"github.com/bft-go/bridge/pkg/api"
	"github.com/bft-go/bridge/pkg/bus"
	"github.com/bft-go/bridge/pkg/crypto"
	"github.com/bft-go/bridge/pkg/metrics/disabled"
	"github.com/bft-go/bridge/pkg/types"
	"github.com/bft-go/bridge/pkg/wire"
)

// bridgeMsg is the closed set of requests the capability adapter sends to
// the Processor. Each request kind that expects an answer has a dedicated
// response channel, so a slow answer of one kind never blocks another.
type bridgeMsg interface {
	bridgeMsg()
}

type checkBlockReq struct {
	block  []byte
	height uint64
}

type checkTxReq struct {
	block  []byte
	height uint64
	round  uint64
}

type getBlockReq struct {
	height uint64
}

type signReq struct {
	hash []byte
}

type transmitReq struct {
	event types.Event
}

type commitReq struct {
	commit types.Commit
}

func (checkBlockReq) bridgeMsg() {}
func (checkTxReq) bridgeMsg()    {}
func (getBlockReq) bridgeMsg()   {}
func (signReq) bridgeMsg()       {}
func (transmitReq) bridgeMsg()   {}
func (commitReq) bridgeMsg()     {}

// Options carries the dependencies shared by a Processor and its adapter.
type Options struct {
	Logger   api.Logger
	Actuator api.Actuator
	Bus      api.Publisher
	Signer   *crypto.Signer
	Metrics  *Metrics

	// BusMessages delivers the inbound bus traffic, typically a Relay output.
	BusMessages <-chan bus.Message
	// RequestBuffer bounds the bridge-request channel.
	RequestBuffer int
}

// New creates a Processor and the capability adapter wired to it over a
// request channel and one response channel per request kind.
func New(o Options) (*Processor, *Bridge) {
	if o.Metrics == nil {
		o.Metrics = NewMetrics(api.NewCustomerProvider(&disabled.Provider{}))
	}

	requests := make(chan bridgeMsg, o.RequestBuffer)
	blockResp := make(chan bool, 1)
	txResp := make(chan bool, 1)
	signResp := make(chan []byte, 1)
	forwardResp := make(chan []byte, 1)

	p := &Processor{
		logger:   o.Logger,
		actuator: o.Actuator,
		bus:      o.Bus,
		signer:   o.Signer,
		metrics:  o.Metrics,
		address:  o.Signer.Address(),

		busIn:    o.BusMessages,
		requests: requests,

		blockResp:   blockResp,
		txResp:      txResp,
		signResp:    signResp,
		forwardResp: forwardResp,

		proofs:        make(map[uint64]types.Proof),
		preHashes:     make(map[uint64][]byte),
		versions:      make(map[uint64]uint32),
		blockTxs:      make(map[uint64]*wire.BlockTxs),
		verifyResults: make(map[heightRound]bool),

		stopChan: make(chan struct{}),
	}

	b := &Bridge{
		logger:      o.Logger,
		requests:    requests,
		blockResp:   blockResp,
		txResp:      txResp,
		signResp:    signResp,
		forwardResp: forwardResp,
	}

	return p, b
}
