// Copyright IBM Corp. All Rights Reserved.
//
// SPDX-License-Identifier: Apache-2.0
//

package consensus

import (
	algorithm "github.com/bft-go/bridge/internal/bridge"
	"github.com/bft-go/bridge/pkg/api"
	"github.com/bft-go/bridge/pkg/bus"
	"github.com/bft-go/bridge/pkg/crypto"
	"github.com/bft-go/bridge/pkg/metrics/disabled"
	"github.com/pkg/errors"
)

// Bridge connects a pluggable BFT actuator to the rest of the node: it
// feeds proposals, votes and chain status from the bus to the actuator,
// and answers the actuator's capability calls for block assembly,
// validation, signing and transmission.
type Bridge struct {
	Config   Configuration
	Logger   api.Logger
	Actuator api.Actuator
	Bus      bus.Bus
	// Metrics is optional; when nil every observation is discarded.
	Metrics *api.CustomerProvider

	processor *algorithm.Processor
	support   *algorithm.Bridge
	relay     *bus.Relay
	address   []byte
}

// Start derives the signer from the configured private key, subscribes to
// the bridge's inbound routing keys and runs the processor loop.
func (b *Bridge) Start() error {
	signer, err := crypto.NewSigner(b.Config.PrivateKey)
	if err != nil {
		return errors.Wrap(err, "failed deriving signer from private key")
	}
	b.address = signer.Address()

	provider := b.Metrics
	if provider == nil {
		provider = api.NewCustomerProvider(&disabled.Provider{})
	}

	relay := bus.NewRelay(b.Bus, b.Config.IncomingMessageBufferSize)
	if err := relay.Start(bus.InboundKeys()...); err != nil {
		return errors.Wrap(err, "failed subscribing to bus topics")
	}

	processor, support := algorithm.New(algorithm.Options{
		Logger:        b.Logger,
		Actuator:      b.Actuator,
		Bus:           b.Bus,
		Signer:        signer,
		Metrics:       algorithm.NewMetrics(provider),
		BusMessages:   relay.Messages(),
		RequestBuffer: b.Config.RequestBufferSize,
	})

	b.relay = relay
	b.processor = processor
	b.support = support
	processor.Start()

	b.Logger.Infof("Bridge started, node address %x", b.address)
	return nil
}

// Stop terminates the processor loop and detaches from the bus. The
// processor is stopped first so the relay teardown is not mistaken for a
// torn channel.
func (b *Bridge) Stop() {
	b.processor.Stop()
	b.relay.Stop()
}

// Support returns the capability set to hand to the BFT actuator.
func (b *Bridge) Support() api.Support {
	return b.support
}

// Address returns the node's address, derived from its public key.
// Valid after Start.
func (b *Bridge) Address() []byte {
	return b.address
}
