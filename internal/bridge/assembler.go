// Copyright IBM Corp. All Rights Reserved.
//
// SPDX-License-Identifier: Apache-2.0
//

package bridge

import (
	"time"

	"github.com/bft-go/bridge/pkg/crypto"
	"github.com/bft-go/bridge/pkg/wire"
)

// assemble builds the encoded block for the given height from the cached
// transaction batch. It succeeds only when version, previous hash and proof
// are all cached for the height; a false result means "not ready yet", not
// an error.
func (p *Processor) assemble(height uint64, batch *wire.BlockTxs) ([]byte, bool) {
	version, okVersion := p.versions[height]
	preHash, okPreHash := p.preHashes[height]
	proof, okProof := p.proofs[height]
	if !okVersion || !okPreHash || !okProof {
		return nil, false
	}

	block := &wire.Block{
		Version: version,
		Body:    batch.Body,
		Header: &wire.BlockHeader{
			Prevhash:         preHash,
			Proof:            ToWireProof(proof),
			Timestamp:        uint64(time.Now().UnixMilli()),
			Height:           height,
			TransactionsRoot: transactionsRoot(batch.Body),
			Proposer:         p.address,
		},
	}
	return block.Marshal(), true
}

// transactionsRoot computes the merkle root over the content hashes of the
// body's transactions. An empty body yields a zeroed root.
func transactionsRoot(body *wire.BlockBody) []byte {
	if body == nil || len(body.Transactions) == 0 {
		return make([]byte, crypto.HashLen)
	}
	leaves := make([][]byte, len(body.Transactions))
	for i, tx := range body.Transactions {
		leaves[i] = crypto.Hash(tx)
	}
	return merkleRoot(leaves)
}

func merkleRoot(level [][]byte) []byte {
	for len(level) > 1 {
		if len(level)%2 == 1 {
			level = append(level, level[len(level)-1])
		}
		next := make([][]byte, len(level)/2)
		for i := 0; i < len(level); i += 2 {
			combined := make([]byte, 0, len(level[i])+len(level[i+1]))
			combined = append(combined, level[i]...)
			combined = append(combined, level[i+1]...)
			next[i/2] = crypto.Hash(combined)
		}
		level = next
	}
	return level[0]
}
