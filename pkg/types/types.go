// Copyright IBM Corp. All Rights Reserved.
//
// SPDX-License-Identifier: Apache-2.0
//

package types

// Event is a message crossing the boundary between the bridge and the
// BFT actuator. The set of events is closed: proposals, votes and
// chain status updates.
type Event interface {
	event()
}

// ProposalEvent carries an opaque encoded proposal.
type ProposalEvent struct {
	Payload []byte
}

// VoteEvent carries an opaque encoded vote.
type VoteEvent struct {
	Payload []byte
}

// StatusEvent announces the latest finalized height to the actuator.
type StatusEvent struct {
	Status Status
}

func (ProposalEvent) event() {}
func (VoteEvent) event()     {}
func (StatusEvent) event()   {}

// Node is an authority identity as seen by the BFT engine.
type Node struct {
	// Address is the opaque byte identifier of the authority.
	Address []byte
	// ProposalWeight is the number of times the address appeared among the
	// reporting nodes for the height.
	ProposalWeight uint32
	// VoteWeight is fixed at 1 for every authority.
	VoteWeight uint32
}

// Status is the consensus visible view of the latest finalized height.
type Status struct {
	Height uint64
	// Interval is a proposal timing hint in milliseconds, zero when unknown.
	Interval      uint64
	AuthorityList []Node
}

// Proof is the engine's commit certificate for a height: the set of
// precommit signatures, keyed by voter address.
type Proof struct {
	BlockHash  []byte
	Height     uint64
	Round      uint64
	Precommits map[string][]byte
}

// Commit is produced by the engine when a height is finalized.
type Commit struct {
	Height uint64
	Block  []byte
	Proof  Proof
	// Address is the proposer of the committed block.
	Address []byte
}
