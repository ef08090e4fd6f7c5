// Copyright IBM Corp. All Rights Reserved.
//
// SPDX-License-Identifier: Apache-2.0
//

package bridge

import (
	"sort"
	"sync"

	"github.com/bft-go/bridge/pkg/api"
	"github.com/bft-go/bridge/pkg/bus"
	"github.com/bft-go/bridge/pkg/crypto"
	"github.com/bft-go/bridge/pkg/types"
	"github.com/bft-go/bridge/pkg/wire"
)

type heightRound struct {
	height uint64
	round  uint64
}

// Processor is the single owner of all per-height mutable state. It drains
// the inbound bus traffic and the bridge-request channel on one loop, so
// the caches and pending queues are never mutated concurrently.
type Processor struct {
	logger   api.Logger
	actuator api.Actuator
	bus      api.Publisher
	signer   *crypto.Signer
	metrics  *Metrics

	busIn    <-chan bus.Message
	requests <-chan bridgeMsg

	blockResp   chan<- bool
	txResp      chan<- bool
	signResp    chan<- []byte
	forwardResp chan<- []byte

	address []byte

	// Per-height caches. preHashes and versions are write-once, first
	// writer wins; proofs is overwritten on every commit.
	proofs    map[uint64]types.Proof
	preHashes map[uint64][]byte
	versions  map[uint64]uint32

	// FIFO pending-request queues. An entry is answered only at the front
	// of its queue, once the matching data is cached.
	getBlockReqs []uint64
	checkTxReqs  []heightRound

	blockTxs      map[uint64]*wire.BlockTxs
	verifyResults map[heightRound]bool

	stopOnce sync.Once
	stopChan chan struct{}
	done     sync.WaitGroup
}

// Start runs the processor loop on its own goroutine.
func (p *Processor) Start() {
	p.done.Add(1)
	go func() {
		defer p.done.Done()
		p.run()
	}()
}

// Stop terminates the loop and waits for it to exit.
func (p *Processor) Stop() {
	p.stopOnce.Do(func() {
		close(p.stopChan)
	})
	p.done.Wait()
}

func (p *Processor) run() {
	defer p.logger.Infof("Exiting")

	for {
		select {
		case <-p.stopChan:
			return
		case m, ok := <-p.busIn:
			if !ok {
				p.logger.Panicf("Bus channel was torn down, cannot make progress")
			}
			p.handleBusMessage(m)
		case r, ok := <-p.requests:
			if !ok {
				p.logger.Panicf("Bridge request channel was torn down, cannot make progress")
			}
			p.handleRequest(r)
		}
	}
}

func (p *Processor) handleBusMessage(m bus.Message) {
	p.metrics.BusMessages.With("key", m.Key).Add(1)

	switch m.Key {
	case bus.NetSignedProposal:
		p.sendToActuator(types.ProposalEvent{Payload: m.Body})

	case bus.NetRawBytes:
		p.sendToActuator(types.VoteEvent{Payload: m.Body})

	case bus.ChainRichStatus:
		status, err := p.extractStatus(m.Body)
		if err != nil {
			p.logger.Warnf("Discarding malformed rich status: %v", err)
			return
		}
		p.sendToActuator(types.StatusEvent{Status: status})
		p.serviceGetBlockQueue()

	case bus.AuthBlockTxs:
		batch := &wire.BlockTxs{}
		if err := batch.Unmarshal(m.Body); err != nil {
			p.logger.Warnf("Discarding malformed transaction batch: %v", err)
			return
		}
		// Latest batch for a height wins, unlike the write-once caches.
		p.blockTxs[batch.Height] = batch
		p.serviceGetBlockQueue()

	case bus.AuthVerifyBlockResp:
		verdict := &wire.VerifyBlockResp{}
		if err := verdict.Unmarshal(m.Body); err != nil {
			p.logger.Warnf("Discarding malformed verification verdict: %v", err)
			return
		}
		p.verifyResults[heightRound{verdict.Height, verdict.Round}] = verdict.Pass
		p.serviceCheckTxQueue()

	case bus.SnapshotReq:
		p.logger.Debugf("Snapshot control is recognized but not handled yet")

	default:
		p.logger.Debugf("Ignoring message with unknown routing key %s", m.Key)
	}
}

func (p *Processor) handleRequest(r bridgeMsg) {
	switch r := r.(type) {
	case getBlockReq:
		p.getBlockReqs = append(p.getBlockReqs, r.height)
		p.serviceGetBlockQueue()

	case checkBlockReq:
		p.blockResp <- p.checkBlock(r.block, r.height)

	case checkTxReq:
		req := &wire.VerifyBlockReq{Height: r.height, Round: r.round, Block: r.block}
		p.bus.Publish(bus.ConsensusVerifyBlockReq, req.Marshal())
		p.checkTxReqs = append(p.checkTxReqs, heightRound{r.height, r.round})
		p.serviceCheckTxQueue()

	case signReq:
		p.signResp <- p.sign(r.hash)

	case transmitReq:
		p.transmit(r.event)

	case commitReq:
		// The commit certificate of height H is embedded in block H+1.
		p.proofs[r.commit.Height+1] = r.commit.Proof
		p.commit(r.commit)
		p.serviceGetBlockQueue()

	default:
		p.logger.Warnf("Ignoring unexpected bridge request of type %T", r)
	}

	p.metrics.PendingGetBlock.Set(float64(len(p.getBlockReqs)))
	p.metrics.PendingCheckTx.Set(float64(len(p.checkTxReqs)))
}

// serviceGetBlockQueue answers pending get-block requests in FIFO order.
// The front entry is answered only once its block can be fully assembled;
// the attempt is repeated on every event that may complete the inputs.
func (p *Processor) serviceGetBlockQueue() {
	for len(p.getBlockReqs) > 0 {
		height := p.getBlockReqs[0]
		batch, ok := p.blockTxs[height]
		if !ok {
			return
		}
		block, ok := p.assemble(height, batch)
		if !ok {
			return
		}
		p.forwardResp <- block
		p.getBlockReqs = p.getBlockReqs[1:]
		p.metrics.AssembledBlocks.Add(1)
		p.metrics.PendingGetBlock.Set(float64(len(p.getBlockReqs)))
	}
}

// serviceCheckTxQueue answers pending check-transaction requests in FIFO
// order, pairing each front entry with the exactly matching cached verdict.
func (p *Processor) serviceCheckTxQueue() {
	for len(p.checkTxReqs) > 0 {
		hr := p.checkTxReqs[0]
		pass, ok := p.verifyResults[hr]
		if !ok {
			return
		}
		p.txResp <- pass
		delete(p.verifyResults, hr)
		p.checkTxReqs = p.checkTxReqs[1:]
		p.metrics.PendingCheckTx.Set(float64(len(p.checkTxReqs)))
	}
}

func (p *Processor) sendToActuator(e types.Event) {
	if err := p.actuator.Send(e); err != nil {
		p.logger.Panicf("Failed sending %T to the actuator: %v", e, err)
	}
}

// checkBlock reports whether a raw block is structurally valid. Structural
// and consensus validation live outside the bridge; until a validator is
// attached this answer is authoritative for the actuator.
func (p *Processor) checkBlock(_ []byte, _ uint64) bool {
	return true
}

func (p *Processor) transmit(e types.Event) {
	switch e := e.(type) {
	case types.ProposalEvent:
		p.bus.Publish(bus.ConsensusSignedProposal, e.Payload)
	case types.VoteEvent:
		p.bus.Publish(bus.ConsensusRawBytes, e.Payload)
	default:
		p.logger.Warnf("Transmit of unexpected event type %T, dropping", e)
	}
}

// commit is the persistence hook for a finalized block. Chain storage lives
// outside the bridge; the hook must return quickly and must not fail the
// loop.
func (p *Processor) commit(c types.Commit) {
	p.logger.Debugf("Committed height %d with %d precommits", c.Height, len(c.Proof.Precommits))
}

func (p *Processor) sign(hash []byte) []byte {
	signature, err := p.signer.Sign(hash)
	if err != nil {
		p.logger.Warnf("Failed signing hash %x: %v", hash, err)
		return nil
	}
	return signature
}

// extractStatus derives the consensus visible Status from a rich status
// body, seeding the write-once per-height caches on the way. The authority
// list counts one proposal weight per appearance of an address among the
// reporting nodes, and is sorted by address so derivation is deterministic.
func (p *Processor) extractStatus(body []byte) (types.Status, error) {
	rs := &wire.RichStatus{}
	if err := rs.Unmarshal(body); err != nil {
		return types.Status{}, err
	}

	height := rs.Height
	if _, ok := p.preHashes[height]; !ok {
		p.preHashes[height] = rs.Hash
	}
	if _, ok := p.versions[height]; !ok {
		p.versions[height] = rs.Version
	}

	counts := make(map[string]uint32)
	for _, node := range rs.Nodes {
		counts[string(node)]++
	}
	addresses := make([]string, 0, len(counts))
	for address := range counts {
		addresses = append(addresses, address)
	}
	sort.Strings(addresses)

	authorityList := make([]types.Node, 0, len(addresses))
	for _, address := range addresses {
		authorityList = append(authorityList, types.Node{
			Address:        []byte(address),
			ProposalWeight: counts[address],
			VoteWeight:     1,
		})
	}

	return types.Status{
		Height:        height,
		Interval:      rs.Interval,
		AuthorityList: authorityList,
	}, nil
}
