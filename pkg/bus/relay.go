// Copyright IBM Corp. All Rights Reserved.
//
// SPDX-License-Identifier: Apache-2.0
//

package bus

import (
	"github.com/pkg/errors"
)

// Relay subscribes to a set of routing keys and funnels everything it
// receives into a single ordered channel, so a single consumer can select
// over the whole inbound traffic of the bridge.
type Relay struct {
	bus      Bus
	out      chan Message
	handlers map[string]func([]byte)
}

// NewRelay creates a Relay over the given bus. The buffer bounds how many
// messages may pile up before publishers start blocking.
func NewRelay(b Bus, buffer int) *Relay {
	return &Relay{
		bus:      b,
		out:      make(chan Message, buffer),
		handlers: make(map[string]func([]byte)),
	}
}

// Start subscribes the relay to the given routing keys.
func (r *Relay) Start(keys ...string) error {
	for _, key := range keys {
		key := key
		handler := func(body []byte) {
			r.out <- Message{Key: key, Body: body}
		}
		if err := r.bus.Subscribe(key, handler); err != nil {
			return errors.Wrapf(err, "failed subscribing to %s", key)
		}
		r.handlers[key] = handler
	}
	return nil
}

// Stop unsubscribes from every routing key and closes the output channel.
// The consumer must have stopped reading before Stop is called only if it
// treats a closed channel as fatal.
func (r *Relay) Stop() {
	for key, handler := range r.handlers {
		r.bus.Unsubscribe(key, handler)
		delete(r.handlers, key)
	}
	close(r.out)
}

// Messages returns the channel the relayed messages arrive on.
func (r *Relay) Messages() <-chan Message {
	return r.out
}
