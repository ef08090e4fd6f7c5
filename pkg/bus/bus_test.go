// Copyright IBM Corp. All Rights Reserved.
//
// SPDX-License-Identifier: Apache-2.0
//

package bus_test

import (
	"testing"
	"time"

	"github.com/bft-go/bridge/pkg/bus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEventBusPublishSubscribe(t *testing.T) {
	eb := bus.NewEventBus()

	received := make(chan []byte, 1)
	handler := func(body []byte) {
		received <- body
	}
	require.NoError(t, eb.Subscribe(bus.ChainRichStatus, handler))

	eb.Publish(bus.ChainRichStatus, []byte{1, 2, 3})
	select {
	case body := <-received:
		assert.Equal(t, []byte{1, 2, 3}, body)
	case <-time.After(time.Second):
		t.Fatal("handler was not invoked")
	}

	require.NoError(t, eb.Unsubscribe(bus.ChainRichStatus, handler))
	eb.Publish(bus.ChainRichStatus, []byte{4})
	select {
	case <-received:
		t.Fatal("handler invoked after unsubscribe")
	case <-time.After(50 * time.Millisecond):
	}
}

func TestRelayFunnelsTopics(t *testing.T) {
	eb := bus.NewEventBus()
	relay := bus.NewRelay(eb, 16)
	require.NoError(t, relay.Start(bus.NetSignedProposal, bus.NetRawBytes))

	eb.Publish(bus.NetSignedProposal, []byte("proposal"))
	eb.Publish(bus.NetRawBytes, []byte("vote"))
	eb.Publish(bus.ChainRichStatus, []byte("not subscribed"))

	m := <-relay.Messages()
	assert.Equal(t, bus.Message{Key: bus.NetSignedProposal, Body: []byte("proposal")}, m)
	m = <-relay.Messages()
	assert.Equal(t, bus.Message{Key: bus.NetRawBytes, Body: []byte("vote")}, m)

	relay.Stop()
	_, ok := <-relay.Messages()
	assert.False(t, ok)
}

func TestRelayStopUnsubscribes(t *testing.T) {
	eb := bus.NewEventBus()
	relay := bus.NewRelay(eb, 1)
	require.NoError(t, relay.Start(bus.InboundKeys()...))
	relay.Stop()

	// Must not panic with a send on the closed channel.
	eb.Publish(bus.AuthBlockTxs, []byte{1})
}
