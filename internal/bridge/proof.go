// Copyright IBM Corp. All Rights Reserved.
//
// SPDX-License-Identifier: Apache-2.0
//

package bridge

import (
	"sort"

	"github.com/bft-go/bridge/pkg/types"
	"github.com/bft-go/bridge/pkg/wire"
	"github.com/pkg/errors"
)

// ToWireProof embeds the engine's commit certificate into the tagged proof
// carried by a block header. Precommits are encoded sorted by voter
// address, so the encoding of a given proof is deterministic.
func ToWireProof(p types.Proof) *wire.Proof {
	addresses := make([]string, 0, len(p.Precommits))
	for address := range p.Precommits {
		addresses = append(addresses, address)
	}
	sort.Strings(addresses)

	payload := &wire.BftProof{
		BlockHash: p.BlockHash,
		Height:    p.Height,
		Round:     p.Round,
	}
	for _, address := range addresses {
		payload.Commits = append(payload.Commits, wire.Precommit{
			Address:   []byte(address),
			Signature: p.Precommits[address],
		})
	}

	return &wire.Proof{
		Kind:    wire.ProofBft,
		Content: payload.Marshal(),
	}
}

// FromWireProof reconstructs the engine's commit certificate from a block
// header proof.
func FromWireProof(wp *wire.Proof) (types.Proof, error) {
	if wp == nil {
		return types.Proof{}, errors.New("no proof")
	}
	if wp.Kind != wire.ProofBft {
		return types.Proof{}, errors.Errorf("unexpected proof kind %d", wp.Kind)
	}
	payload := &wire.BftProof{}
	if err := payload.Unmarshal(wp.Content); err != nil {
		return types.Proof{}, errors.Wrap(err, "malformed proof content")
	}

	precommits := make(map[string][]byte, len(payload.Commits))
	for _, pc := range payload.Commits {
		precommits[string(pc.Address)] = pc.Signature
	}
	return types.Proof{
		BlockHash:  payload.BlockHash,
		Height:     payload.Height,
		Round:      payload.Round,
		Precommits: precommits,
	}, nil
}
