// Copyright IBM Corp. All Rights Reserved.
//
// SPDX-License-Identifier: Apache-2.0
//

package wire_test

import (
	"testing"

	"github.com/bft-go/bridge/pkg/wire"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/protobuf/encoding/protowire"
)

func TestBlockRoundTrip(t *testing.T) {
	block := &wire.Block{
		Version: 3,
		Header: &wire.BlockHeader{
			Prevhash:         []byte{0xaa, 0xbb},
			Timestamp:        1234567890123,
			Height:           42,
			TransactionsRoot: []byte{0xcc},
			Proof: &wire.Proof{
				Kind:    wire.ProofBft,
				Content: []byte{1, 2, 3},
			},
			Proposer: []byte{0xdd, 0xee},
		},
		Body: &wire.BlockBody{
			Transactions: [][]byte{{1}, {2, 2}, {3, 3, 3}},
		},
	}

	var decoded wire.Block
	require.NoError(t, decoded.Unmarshal(block.Marshal()))
	assert.Equal(t, block, &decoded)
}

func TestRichStatusRoundTripKeepsDuplicateNodes(t *testing.T) {
	rs := &wire.RichStatus{
		Hash:     []byte{1, 2, 3},
		Height:   10,
		Nodes:    [][]byte{{0xa}, {0xa}, {0xb}},
		Interval: 3000,
		Version:  1,
	}

	var decoded wire.RichStatus
	require.NoError(t, decoded.Unmarshal(rs.Marshal()))
	assert.Equal(t, rs, &decoded)
}

func TestVerifyBlockRoundTrip(t *testing.T) {
	req := &wire.VerifyBlockReq{Height: 7, Round: 2, Block: []byte{9, 9}}
	var decodedReq wire.VerifyBlockReq
	require.NoError(t, decodedReq.Unmarshal(req.Marshal()))
	assert.Equal(t, req, &decodedReq)

	resp := &wire.VerifyBlockResp{Height: 7, Round: 2, Pass: true}
	var decodedResp wire.VerifyBlockResp
	require.NoError(t, decodedResp.Unmarshal(resp.Marshal()))
	assert.Equal(t, resp, &decodedResp)
}

func TestMarshalDeterministic(t *testing.T) {
	proof := &wire.BftProof{
		BlockHash: []byte{5},
		Height:    9,
		Round:     1,
		Commits: []wire.Precommit{
			{Address: []byte{0xa}, Signature: []byte{1}},
			{Address: []byte{0xb}, Signature: []byte{2}},
		},
	}
	assert.Equal(t, proof.Marshal(), proof.Marshal())
}

func TestUnmarshalSkipsUnknownFields(t *testing.T) {
	raw := (&wire.VerifyBlockResp{Height: 3, Round: 1, Pass: true}).Marshal()
	// A field number the decoder has never heard of must be skipped.
	raw = protowire.AppendTag(raw, 100, protowire.BytesType)
	raw = protowire.AppendBytes(raw, []byte("future extension"))

	var decoded wire.VerifyBlockResp
	require.NoError(t, decoded.Unmarshal(raw))
	assert.Equal(t, uint64(3), decoded.Height)
	assert.True(t, decoded.Pass)
}

func TestUnmarshalRejectsTruncatedInput(t *testing.T) {
	raw := (&wire.Block{Version: 1, Body: &wire.BlockBody{Transactions: [][]byte{{1, 2, 3}}}}).Marshal()
	var decoded wire.Block
	assert.Error(t, decoded.Unmarshal(raw[:len(raw)-2]))
}
