// Copyright IBM Corp. All Rights Reserved.
//
// SPDX-License-Identifier: Apache-2.0
//

package consensus

// Configuration defines the parameters needed in order to create an
// instance of Bridge.
type Configuration struct {
	// PrivateKey is the node's raw secp256k1 signing key. The key and the
	// address derived from it are read-only after Start.
	PrivateKey []byte

	// IncomingMessageBufferSize is the size of the buffer holding inbound
	// bus messages before they are processed. Publishers block once it is
	// full.
	IncomingMessageBufferSize int

	// RequestBufferSize is the size of the buffer holding capability
	// requests issued by the actuator.
	RequestBufferSize int
}

// DefaultConfig contains reasonable values for a single node.
// Set the PrivateKey.
var DefaultConfig = Configuration{
	IncomingMessageBufferSize: 200,
	RequestBufferSize:         8,
}
