// Copyright IBM Corp. All Rights Reserved.
//
// SPDX-License-Identifier: Apache-2.0
//

package bridge

import (
	"testing"

	"github.com/bft-go/bridge/pkg/crypto"
	"github.com/bft-go/bridge/pkg/types"
	"github.com/bft-go/bridge/pkg/wire"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTransactionsRoot(t *testing.T) {
	empty := transactionsRoot(nil)
	assert.Equal(t, make([]byte, crypto.HashLen), empty)
	assert.Equal(t, empty, transactionsRoot(&wire.BlockBody{}))

	single := &wire.BlockBody{Transactions: [][]byte{[]byte("tx")}}
	assert.Equal(t, crypto.Hash([]byte("tx")), transactionsRoot(single))

	pair := &wire.BlockBody{Transactions: [][]byte{[]byte("tx1"), []byte("tx2")}}
	combined := append(crypto.Hash([]byte("tx1")), crypto.Hash([]byte("tx2"))...)
	assert.Equal(t, crypto.Hash(combined), transactionsRoot(pair))

	// An odd leaf is paired with a copy of itself.
	odd := &wire.BlockBody{Transactions: [][]byte{[]byte("tx1"), []byte("tx2"), []byte("tx3")}}
	right := append(crypto.Hash([]byte("tx3")), crypto.Hash([]byte("tx3"))...)
	top := append(crypto.Hash(combined), crypto.Hash(right)...)
	assert.Equal(t, crypto.Hash(top), transactionsRoot(odd))

	assert.Equal(t, transactionsRoot(odd), transactionsRoot(odd))
}

func TestAssembleRequiresAllCacheEntries(t *testing.T) {
	p := &Processor{
		proofs:    make(map[uint64]types.Proof),
		preHashes: make(map[uint64][]byte),
		versions:  make(map[uint64]uint32),
		address:   []byte{0xde, 0xad},
	}
	batch := &wire.BlockTxs{Height: 4, Body: &wire.BlockBody{Transactions: [][]byte{{1}}}}

	_, ok := p.assemble(4, batch)
	assert.False(t, ok)

	p.versions[4] = 1
	p.preHashes[4] = []byte{0xff}
	_, ok = p.assemble(4, batch)
	assert.False(t, ok)

	p.proofs[4] = types.Proof{Height: 3}
	raw, ok := p.assemble(4, batch)
	require.True(t, ok)

	var block wire.Block
	require.NoError(t, block.Unmarshal(raw))
	assert.Equal(t, uint64(4), block.Header.Height)
	assert.Equal(t, []byte{0xde, 0xad}, block.Header.Proposer)
}
