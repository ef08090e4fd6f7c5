// Copyright IBM Corp. All Rights Reserved.
//
// SPDX-License-Identifier: Apache-2.0
//

// Package wire defines the structures the bridge exchanges over the node
// bus and embeds in blocks, together with their protobuf wire encoding.
// The repository keeps no generated code; messages are encoded directly
// with the low-level protowire primitives, appending fields in ascending
// field order so that encoding is deterministic.
package wire

import (
	"github.com/pkg/errors"
	"google.golang.org/protobuf/encoding/protowire"
)

// ProofKind discriminates the consensus flavor that produced a proof.
type ProofKind uint64

const (
	ProofAuthorityRound ProofKind = iota
	ProofRaft
	ProofBft
)

// BlockBody holds the opaque encoded transactions of a block.
type BlockBody struct {
	Transactions [][]byte // field 1
}

// BlockTxs is the per-height transaction batch delivered by the
// verification subsystem.
type BlockTxs struct {
	Height uint64     // field 1
	Body   *BlockBody // field 2
}

// RichStatus is the chain status update announcing a finalized height.
// Nodes carries one entry per reporting node; an address may repeat.
type RichStatus struct {
	Hash     []byte   // field 1
	Height   uint64   // field 2
	Nodes    [][]byte // field 3
	Interval uint64   // field 4
	Version  uint32   // field 5
}

// Proof is the tagged commit proof embedded in a block header.
type Proof struct {
	Content []byte    // field 1
	Kind    ProofKind // field 2
}

// Precommit is a single voter's entry in a BFT proof.
type Precommit struct {
	Address   []byte // field 1
	Signature []byte // field 2
}

// BftProof is the payload carried by a Proof of kind ProofBft.
type BftProof struct {
	BlockHash []byte      // field 1
	Height    uint64      // field 2
	Round     uint64      // field 3
	Commits   []Precommit // field 4
}

// BlockHeader describes a block.
type BlockHeader struct {
	Prevhash         []byte // field 1
	Timestamp        uint64 // field 2
	Height           uint64 // field 3
	TransactionsRoot []byte // field 4
	Proof            *Proof // field 5
	Proposer         []byte // field 6
}

// Block is a fully formed block.
type Block struct {
	Version uint32       // field 1
	Header  *BlockHeader // field 2
	Body    *BlockBody   // field 3
}

// VerifyBlockReq asks the verification subsystem to check the
// transactions of a proposed block.
type VerifyBlockReq struct {
	Height uint64 // field 1
	Round  uint64 // field 2
	Block  []byte // field 3
}

// VerifyBlockResp is the verification subsystem's verdict.
type VerifyBlockResp struct {
	Height uint64 // field 1
	Round  uint64 // field 2
	Pass   bool   // field 3
}

func appendVarintField(b []byte, num protowire.Number, v uint64) []byte {
	if v == 0 {
		return b
	}
	b = protowire.AppendTag(b, num, protowire.VarintType)
	return protowire.AppendVarint(b, v)
}

func appendBytesField(b []byte, num protowire.Number, v []byte) []byte {
	if len(v) == 0 {
		return b
	}
	b = protowire.AppendTag(b, num, protowire.BytesType)
	return protowire.AppendBytes(b, v)
}

func appendMessageField(b []byte, num protowire.Number, v []byte) []byte {
	b = protowire.AppendTag(b, num, protowire.BytesType)
	return protowire.AppendBytes(b, v)
}

func appendBoolField(b []byte, num protowire.Number, v bool) []byte {
	if !v {
		return b
	}
	return appendVarintField(b, num, 1)
}

func consumeVarint(data []byte) (uint64, []byte, error) {
	v, n := protowire.ConsumeVarint(data)
	if n < 0 {
		return 0, nil, errors.Wrap(protowire.ParseError(n), "malformed varint field")
	}
	return v, data[n:], nil
}

func consumeBytes(data []byte) ([]byte, []byte, error) {
	v, n := protowire.ConsumeBytes(data)
	if n < 0 {
		return nil, nil, errors.Wrap(protowire.ParseError(n), "malformed bytes field")
	}
	out := make([]byte, len(v))
	copy(out, v)
	return out, data[n:], nil
}

func skipField(num protowire.Number, typ protowire.Type, data []byte) ([]byte, error) {
	n := protowire.ConsumeFieldValue(num, typ, data)
	if n < 0 {
		return nil, errors.Wrap(protowire.ParseError(n), "malformed field")
	}
	return data[n:], nil
}

// Marshal encodes the body.
func (m *BlockBody) Marshal() []byte {
	var b []byte
	for _, tx := range m.Transactions {
		b = appendMessageField(b, 1, tx)
	}
	return b
}

// Unmarshal decodes the body, replacing the receiver's contents.
func (m *BlockBody) Unmarshal(data []byte) error {
	*m = BlockBody{}
	var err error
	for len(data) > 0 {
		num, typ, n := protowire.ConsumeTag(data)
		if n < 0 {
			return errors.Wrap(protowire.ParseError(n), "malformed tag")
		}
		data = data[n:]
		switch {
		case num == 1 && typ == protowire.BytesType:
			var tx []byte
			if tx, data, err = consumeBytes(data); err != nil {
				return err
			}
			m.Transactions = append(m.Transactions, tx)
		default:
			if data, err = skipField(num, typ, data); err != nil {
				return err
			}
		}
	}
	return nil
}

// Marshal encodes the batch.
func (m *BlockTxs) Marshal() []byte {
	var b []byte
	b = appendVarintField(b, 1, m.Height)
	if m.Body != nil {
		b = appendMessageField(b, 2, m.Body.Marshal())
	}
	return b
}

// Unmarshal decodes the batch, replacing the receiver's contents.
func (m *BlockTxs) Unmarshal(data []byte) error {
	*m = BlockTxs{}
	var err error
	for len(data) > 0 {
		num, typ, n := protowire.ConsumeTag(data)
		if n < 0 {
			return errors.Wrap(protowire.ParseError(n), "malformed tag")
		}
		data = data[n:]
		switch {
		case num == 1 && typ == protowire.VarintType:
			if m.Height, data, err = consumeVarint(data); err != nil {
				return err
			}
		case num == 2 && typ == protowire.BytesType:
			var raw []byte
			if raw, data, err = consumeBytes(data); err != nil {
				return err
			}
			body := &BlockBody{}
			if err = body.Unmarshal(raw); err != nil {
				return err
			}
			m.Body = body
		default:
			if data, err = skipField(num, typ, data); err != nil {
				return err
			}
		}
	}
	return nil
}

// Marshal encodes the status.
func (m *RichStatus) Marshal() []byte {
	var b []byte
	b = appendBytesField(b, 1, m.Hash)
	b = appendVarintField(b, 2, m.Height)
	for _, node := range m.Nodes {
		b = appendMessageField(b, 3, node)
	}
	b = appendVarintField(b, 4, m.Interval)
	b = appendVarintField(b, 5, uint64(m.Version))
	return b
}

// Unmarshal decodes the status, replacing the receiver's contents.
func (m *RichStatus) Unmarshal(data []byte) error {
	*m = RichStatus{}
	var err error
	for len(data) > 0 {
		num, typ, n := protowire.ConsumeTag(data)
		if n < 0 {
			return errors.Wrap(protowire.ParseError(n), "malformed tag")
		}
		data = data[n:]
		switch {
		case num == 1 && typ == protowire.BytesType:
			if m.Hash, data, err = consumeBytes(data); err != nil {
				return err
			}
		case num == 2 && typ == protowire.VarintType:
			if m.Height, data, err = consumeVarint(data); err != nil {
				return err
			}
		case num == 3 && typ == protowire.BytesType:
			var node []byte
			if node, data, err = consumeBytes(data); err != nil {
				return err
			}
			m.Nodes = append(m.Nodes, node)
		case num == 4 && typ == protowire.VarintType:
			if m.Interval, data, err = consumeVarint(data); err != nil {
				return err
			}
		case num == 5 && typ == protowire.VarintType:
			var v uint64
			if v, data, err = consumeVarint(data); err != nil {
				return err
			}
			m.Version = uint32(v)
		default:
			if data, err = skipField(num, typ, data); err != nil {
				return err
			}
		}
	}
	return nil
}

// Marshal encodes the proof.
func (m *Proof) Marshal() []byte {
	var b []byte
	b = appendBytesField(b, 1, m.Content)
	b = appendVarintField(b, 2, uint64(m.Kind))
	return b
}

// Unmarshal decodes the proof, replacing the receiver's contents.
func (m *Proof) Unmarshal(data []byte) error {
	*m = Proof{}
	var err error
	for len(data) > 0 {
		num, typ, n := protowire.ConsumeTag(data)
		if n < 0 {
			return errors.Wrap(protowire.ParseError(n), "malformed tag")
		}
		data = data[n:]
		switch {
		case num == 1 && typ == protowire.BytesType:
			if m.Content, data, err = consumeBytes(data); err != nil {
				return err
			}
		case num == 2 && typ == protowire.VarintType:
			var v uint64
			if v, data, err = consumeVarint(data); err != nil {
				return err
			}
			m.Kind = ProofKind(v)
		default:
			if data, err = skipField(num, typ, data); err != nil {
				return err
			}
		}
	}
	return nil
}

// Marshal encodes the precommit entry.
func (m *Precommit) Marshal() []byte {
	var b []byte
	b = appendBytesField(b, 1, m.Address)
	b = appendBytesField(b, 2, m.Signature)
	return b
}

// Unmarshal decodes the precommit entry, replacing the receiver's contents.
func (m *Precommit) Unmarshal(data []byte) error {
	*m = Precommit{}
	var err error
	for len(data) > 0 {
		num, typ, n := protowire.ConsumeTag(data)
		if n < 0 {
			return errors.Wrap(protowire.ParseError(n), "malformed tag")
		}
		data = data[n:]
		switch {
		case num == 1 && typ == protowire.BytesType:
			if m.Address, data, err = consumeBytes(data); err != nil {
				return err
			}
		case num == 2 && typ == protowire.BytesType:
			if m.Signature, data, err = consumeBytes(data); err != nil {
				return err
			}
		default:
			if data, err = skipField(num, typ, data); err != nil {
				return err
			}
		}
	}
	return nil
}

// Marshal encodes the BFT proof payload.
func (m *BftProof) Marshal() []byte {
	var b []byte
	b = appendBytesField(b, 1, m.BlockHash)
	b = appendVarintField(b, 2, m.Height)
	b = appendVarintField(b, 3, m.Round)
	for i := range m.Commits {
		b = appendMessageField(b, 4, m.Commits[i].Marshal())
	}
	return b
}

// Unmarshal decodes the BFT proof payload, replacing the receiver's contents.
func (m *BftProof) Unmarshal(data []byte) error {
	*m = BftProof{}
	var err error
	for len(data) > 0 {
		num, typ, n := protowire.ConsumeTag(data)
		if n < 0 {
			return errors.Wrap(protowire.ParseError(n), "malformed tag")
		}
		data = data[n:]
		switch {
		case num == 1 && typ == protowire.BytesType:
			if m.BlockHash, data, err = consumeBytes(data); err != nil {
				return err
			}
		case num == 2 && typ == protowire.VarintType:
			if m.Height, data, err = consumeVarint(data); err != nil {
				return err
			}
		case num == 3 && typ == protowire.VarintType:
			if m.Round, data, err = consumeVarint(data); err != nil {
				return err
			}
		case num == 4 && typ == protowire.BytesType:
			var raw []byte
			if raw, data, err = consumeBytes(data); err != nil {
				return err
			}
			var pc Precommit
			if err = pc.Unmarshal(raw); err != nil {
				return err
			}
			m.Commits = append(m.Commits, pc)
		default:
			if data, err = skipField(num, typ, data); err != nil {
				return err
			}
		}
	}
	return nil
}

// Marshal encodes the header.
func (m *BlockHeader) Marshal() []byte {
	var b []byte
	b = appendBytesField(b, 1, m.Prevhash)
	b = appendVarintField(b, 2, m.Timestamp)
	b = appendVarintField(b, 3, m.Height)
	b = appendBytesField(b, 4, m.TransactionsRoot)
	if m.Proof != nil {
		b = appendMessageField(b, 5, m.Proof.Marshal())
	}
	b = appendBytesField(b, 6, m.Proposer)
	return b
}

// Unmarshal decodes the header, replacing the receiver's contents.
func (m *BlockHeader) Unmarshal(data []byte) error {
	*m = BlockHeader{}
	var err error
	for len(data) > 0 {
		num, typ, n := protowire.ConsumeTag(data)
		if n < 0 {
			return errors.Wrap(protowire.ParseError(n), "malformed tag")
		}
		data = data[n:]
		switch {
		case num == 1 && typ == protowire.BytesType:
			if m.Prevhash, data, err = consumeBytes(data); err != nil {
				return err
			}
		case num == 2 && typ == protowire.VarintType:
			if m.Timestamp, data, err = consumeVarint(data); err != nil {
				return err
			}
		case num == 3 && typ == protowire.VarintType:
			if m.Height, data, err = consumeVarint(data); err != nil {
				return err
			}
		case num == 4 && typ == protowire.BytesType:
			if m.TransactionsRoot, data, err = consumeBytes(data); err != nil {
				return err
			}
		case num == 5 && typ == protowire.BytesType:
			var raw []byte
			if raw, data, err = consumeBytes(data); err != nil {
				return err
			}
			proof := &Proof{}
			if err = proof.Unmarshal(raw); err != nil {
				return err
			}
			m.Proof = proof
		case num == 6 && typ == protowire.BytesType:
			if m.Proposer, data, err = consumeBytes(data); err != nil {
				return err
			}
		default:
			if data, err = skipField(num, typ, data); err != nil {
				return err
			}
		}
	}
	return nil
}

// Marshal encodes the block.
func (m *Block) Marshal() []byte {
	var b []byte
	b = appendVarintField(b, 1, uint64(m.Version))
	if m.Header != nil {
		b = appendMessageField(b, 2, m.Header.Marshal())
	}
	if m.Body != nil {
		b = appendMessageField(b, 3, m.Body.Marshal())
	}
	return b
}

// Unmarshal decodes the block, replacing the receiver's contents.
func (m *Block) Unmarshal(data []byte) error {
	*m = Block{}
	var err error
	for len(data) > 0 {
		num, typ, n := protowire.ConsumeTag(data)
		if n < 0 {
			return errors.Wrap(protowire.ParseError(n), "malformed tag")
		}
		data = data[n:]
		switch {
		case num == 1 && typ == protowire.VarintType:
			var v uint64
			if v, data, err = consumeVarint(data); err != nil {
				return err
			}
			m.Version = uint32(v)
		case num == 2 && typ == protowire.BytesType:
			var raw []byte
			if raw, data, err = consumeBytes(data); err != nil {
				return err
			}
			header := &BlockHeader{}
			if err = header.Unmarshal(raw); err != nil {
				return err
			}
			m.Header = header
		case num == 3 && typ == protowire.BytesType:
			var raw []byte
			if raw, data, err = consumeBytes(data); err != nil {
				return err
			}
			body := &BlockBody{}
			if err = body.Unmarshal(raw); err != nil {
				return err
			}
			m.Body = body
		default:
			if data, err = skipField(num, typ, data); err != nil {
				return err
			}
		}
	}
	return nil
}

// Marshal encodes the request.
func (m *VerifyBlockReq) Marshal() []byte {
	var b []byte
	b = appendVarintField(b, 1, m.Height)
	b = appendVarintField(b, 2, m.Round)
	b = appendBytesField(b, 3, m.Block)
	return b
}

// Unmarshal decodes the request, replacing the receiver's contents.
func (m *VerifyBlockReq) Unmarshal(data []byte) error {
	*m = VerifyBlockReq{}
	var err error
	for len(data) > 0 {
		num, typ, n := protowire.ConsumeTag(data)
		if n < 0 {
			return errors.Wrap(protowire.ParseError(n), "malformed tag")
		}
		data = data[n:]
		switch {
		case num == 1 && typ == protowire.VarintType:
			if m.Height, data, err = consumeVarint(data); err != nil {
				return err
			}
		case num == 2 && typ == protowire.VarintType:
			if m.Round, data, err = consumeVarint(data); err != nil {
				return err
			}
		case num == 3 && typ == protowire.BytesType:
			if m.Block, data, err = consumeBytes(data); err != nil {
				return err
			}
		default:
			if data, err = skipField(num, typ, data); err != nil {
				return err
			}
		}
	}
	return nil
}

// Marshal encodes the verdict.
func (m *VerifyBlockResp) Marshal() []byte {
	var b []byte
	b = appendVarintField(b, 1, m.Height)
	b = appendVarintField(b, 2, m.Round)
	b = appendBoolField(b, 3, m.Pass)
	return b
}

// Unmarshal decodes the verdict, replacing the receiver's contents.
func (m *VerifyBlockResp) Unmarshal(data []byte) error {
	*m = VerifyBlockResp{}
	var err error
	for len(data) > 0 {
		num, typ, n := protowire.ConsumeTag(data)
		if n < 0 {
			return errors.Wrap(protowire.ParseError(n), "malformed tag")
		}
		data = data[n:]
		switch {
		case num == 1 && typ == protowire.VarintType:
			if m.Height, data, err = consumeVarint(data); err != nil {
				return err
			}
		case num == 2 && typ == protowire.VarintType:
			if m.Round, data, err = consumeVarint(data); err != nil {
				return err
			}
		case num == 3 && typ == protowire.VarintType:
			var v uint64
			if v, data, err = consumeVarint(data); err != nil {
				return err
			}
			m.Pass = v != 0
		default:
			if data, err = skipField(num, typ, data); err != nil {
				return err
			}
		}
	}
	return nil
}
