// Package chord implements the core of the specification: identifier
// routing, the finger table and successor list, join/notify/leave, the
// maintenance engine, and fragment-level Create/Read. It is grounded on
// the teacher's chord/node.go and chord/finger_table.go for structure
// and idiom, and on original_source/src/peer.{h,cpp} for protocol
// semantics.
package chord

import (
	"context"
	"fmt"
	"math/rand"
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"

	"chordhash/ida"
	"chordhash/ring"
	"chordhash/store"
)

// Peer is one participant in the ring. It owns one finger table, one
// successor list, an optional predecessor slot, and one Database.
type Peer struct {
	mu sync.RWMutex

	self        PeerDescriptor
	predecessor *PeerDescriptor

	fingers    *FingerTable
	successors *SuccessorList

	db store.Database

	transport Transport
	latency   *LatencyTracker
	logger    *zap.Logger

	maintCancel context.CancelFunc
}

// NewPeer constructs a peer covering the whole ring by itself, the
// StartChord bootstrap invariant: no predecessor, an empty successor
// list, minKey = selfId+1.
func NewPeer(ipAddr string, port int, transport Transport, db store.Database, logger *zap.Logger) *Peer {
	id := ring.FromPlaintext(ipPort(ipAddr, port))
	self := PeerDescriptor{
		ID:     id,
		MinKey: id.AddInt(1),
		MaxKey: id,
		IPAddr: ipAddr,
		Port:   port,
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Peer{
		self:       self,
		fingers:    NewFingerTable(id),
		successors: NewSuccessorList(SuccessorListCapacity),
		db:         db,
		transport:  transport,
		latency:    NewLatencyTracker(),
		logger:     logger.With(zap.String("peer", id.Hex())),
	}
}

func (p *Peer) selfDescriptor() PeerDescriptor {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.self
}

func (p *Peer) selfID() ring.ID { return p.selfDescriptor().ID }

func (p *Peer) predecessorSnapshot() *PeerDescriptor {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.predecessor == nil {
		return nil
	}
	pred := *p.predecessor
	return &pred
}

func (p *Peer) firstSuccessor() (PeerDescriptor, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.successors.First()
}

// StartChord starts this lone peer's maintenance loop. It has no
// predecessor and an empty successor list until another peer joins.
func (p *Peer) StartChord(ctx context.Context) {
	p.logger.Info("starting chord as the sole ring member")
	p.startMaintenance(ctx)
}

func (p *Peer) startMaintenance(ctx context.Context) {
	maintCtx, cancel := context.WithCancel(ctx)
	p.mu.Lock()
	p.maintCancel = cancel
	p.mu.Unlock()
	go p.runMaintenanceLoop(maintCtx)
}

func (p *Peer) stopMaintenance() {
	p.mu.Lock()
	cancel := p.maintCancel
	p.mu.Unlock()
	if cancel != nil {
		cancel()
	}
}

func (p *Peer) runMaintenanceLoop(ctx context.Context) {
	ticker := time.NewTicker(MaintenanceInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.tick(ctx)
		}
	}
}

// tick runs one maintenance pass (Stabilize, RunLocalMaintenance,
// RunGlobalMaintenance) and forwards a MAINTENANCE message to the first
// successor, the ring-walking gossip sweep.
func (p *Peer) tick(ctx context.Context) {
	p.Stabilize(ctx)
	p.RunLocalMaintenance(ctx)
	p.RunGlobalMaintenance(ctx)
	p.forwardMaintenance(ctx)
}

func (p *Peer) forwardMaintenance(ctx context.Context) {
	succ, ok := p.firstSuccessor()
	if !ok || succ.ID.Equal(p.selfID()) {
		return
	}
	self := p.selfDescriptor()
	_, err := p.transport.Send(ctx, succ, Envelope{
		Command: CmdMaintenance, SenderID: self.ID.Hex(), RecipientID: succ.ID.Hex(),
	})
	if err != nil {
		p.logger.Debug("forwarding maintenance tick failed", zap.Error(err))
	}
}

// OwnedLocally reports whether k falls in this peer's own (minKey,
// selfId] range.
func (p *Peer) OwnedLocally(k ring.ID) bool {
	self := p.selfDescriptor()
	return ring.Between(k, self.MinKey, self.ID, true)
}

// StoredLocally reports whether this peer's database already holds k.
func (p *Peer) StoredLocally(k ring.ID) bool {
	return p.db.Contains(k)
}

func (p *Peer) lookupFinger(k ring.ID) (PeerDescriptor, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.fingers.Lookup(k)
}

// avoidLoop implements the cycle-breaking fallback: if the
// computed forwarding target equals the current requester or equals
// ourselves, forward to our predecessor instead — or, if the requester
// is our predecessor, forward to our first successor.
func (p *Peer) avoidLoop(target PeerDescriptor, requester *ring.ID, self PeerDescriptor, pred *PeerDescriptor) PeerDescriptor {
	if requester == nil {
		return target
	}
	if !target.ID.Equal(*requester) && !target.ID.Equal(self.ID) {
		return target
	}
	if pred != nil && pred.ID.Equal(*requester) {
		if succ, ok := p.firstSuccessor(); ok {
			return succ
		}
	}
	if pred != nil {
		return *pred
	}
	return target
}

// GetSuccessor resolves the successor of k. requester, when
// non-nil, tags the peer that sent us this request so a two-hop cycle
// can be detected without timers.
func (p *Peer) GetSuccessor(ctx context.Context, k ring.ID, requester *ring.ID) (PeerDescriptor, error) {
	p.mu.RLock()
	self := p.self
	pred := p.predecessor
	p.mu.RUnlock()

	if ring.Between(k, self.MinKey, self.ID, true) {
		return self, nil
	}

	target, ok := p.lookupFinger(k)
	if !ok {
		if succ, ok2 := p.firstSuccessor(); ok2 {
			target = succ
		} else {
			return self, nil
		}
	}

	target = p.avoidLoop(target, requester, self, pred)
	if target.ID.Equal(self.ID) {
		return self, nil
	}

	resp, err := p.transport.Send(ctx, target, Envelope{
		Command: CmdGetSucc, Key: k.Hex(), SenderID: self.ID.Hex(), RecipientID: target.ID.Hex(),
	})
	if err != nil {
		if pred != nil {
			return p.remoteGetSuccessor(ctx, *pred, k)
		}
		return PeerDescriptor{}, fmt.Errorf("%w: %v", ErrTransport, err)
	}
	if !resp.Success {
		return PeerDescriptor{}, fmt.Errorf("get_succ rejected: %s", resp.Errors)
	}
	return descriptorFromEnvelope(resp)
}

// GetPredecessor resolves the predecessor of k.
func (p *Peer) GetPredecessor(ctx context.Context, k ring.ID, requester *ring.ID) (PeerDescriptor, error) {
	p.mu.RLock()
	self := p.self
	pred := p.predecessor
	p.mu.RUnlock()

	if pred == nil {
		return self, nil
	}
	if ring.Between(k, self.MinKey, self.ID, true) {
		return *pred, nil
	}

	target, ok := p.lookupFinger(k)
	if !ok {
		return *pred, nil
	}
	target = p.avoidLoop(target, requester, self, pred)
	if target.ID.Equal(self.ID) {
		return *pred, nil
	}

	resp, err := p.transport.Send(ctx, target, Envelope{
		Command: CmdGetPred, Key: k.Hex(), SenderID: self.ID.Hex(), RecipientID: target.ID.Hex(),
	})
	if err != nil {
		return *pred, fmt.Errorf("%w: %v", ErrTransport, err)
	}
	if !resp.Success {
		return *pred, fmt.Errorf("get_pred rejected: %s", resp.Errors)
	}
	return descriptorFromEnvelope(resp)
}

func (p *Peer) remoteGetSuccessor(ctx context.Context, target PeerDescriptor, k ring.ID) (PeerDescriptor, error) {
	self := p.selfDescriptor()
	resp, err := p.transport.Send(ctx, target, Envelope{
		Command: CmdGetSucc, Key: k.Hex(), SenderID: self.ID.Hex(), RecipientID: target.ID.Hex(),
	})
	if err != nil {
		return PeerDescriptor{}, fmt.Errorf("%w: %v", ErrTransport, err)
	}
	if !resp.Success {
		return PeerDescriptor{}, fmt.Errorf("get_succ rejected: %s", resp.Errors)
	}
	return descriptorFromEnvelope(resp)
}

func (p *Peer) remoteOrLocalGetSuccessor(ctx context.Context, asker PeerDescriptor, k ring.ID) (PeerDescriptor, error) {
	if asker.ID.Equal(p.selfID()) {
		return p.GetSuccessor(ctx, k, nil)
	}
	return p.remoteGetSuccessor(ctx, asker, k)
}

// GetNSuccessors iterates, asking for the successor of previous+1,
// collecting n entries and terminating early if the walk returns to k
// (the ring is smaller than n).
func (p *Peer) GetNSuccessors(ctx context.Context, k ring.ID, n int) ([]PeerDescriptor, error) {
	var out []PeerDescriptor
	previous := k
	for i := 0; i < n; i++ {
		succ, err := p.GetSuccessor(ctx, previous.AddInt(1), nil)
		if err != nil {
			return out, err
		}
		if succ.ID.Equal(k) {
			break
		}
		out = append(out, succ)
		previous = succ.ID
	}
	return out, nil
}

// GetNPredecessors is GetNSuccessors' symmetric counterpart.
func (p *Peer) GetNPredecessors(ctx context.Context, k ring.ID, n int) ([]PeerDescriptor, error) {
	var out []PeerDescriptor
	previous := k
	for i := 0; i < n; i++ {
		pred, err := p.GetPredecessor(ctx, previous.Sub(ring.FromInt64(1)), nil)
		if err != nil {
			return out, err
		}
		if pred.ID.Equal(k) {
			break
		}
		out = append(out, pred)
		previous = pred.ID
	}
	return out, nil
}

// Join sends a JOIN request to gateway carrying our own descriptor,
// adopts the returned predecessor, cold-starts the finger table, and
// notifies our first K predecessors and first successor.
func (p *Peer) Join(ctx context.Context, gateway PeerDescriptor) error {
	self := p.selfDescriptor()
	resp, err := p.transport.Send(ctx, gateway, Envelope{
		Command: CmdJoin, NewPeer: ptrWire(toWireDescriptor(self)),
		SenderID: self.ID.Hex(), RecipientID: gateway.ID.Hex(),
	})
	if err != nil {
		return fmt.Errorf("%w: join via %s: %v", ErrTransport, gateway.Addr(), err)
	}
	if !resp.Success || resp.Predecessor == nil {
		return fmt.Errorf("join rejected by gateway: %s", resp.Errors)
	}
	pred, err := fromWireDescriptor(*resp.Predecessor)
	if err != nil {
		return fmt.Errorf("join: %w", err)
	}

	p.mu.Lock()
	p.predecessor = &pred
	p.self.MinKey = pred.ID.AddInt(1)
	p.mu.Unlock()

	if err := p.populateFingerTable(ctx); err != nil {
		p.logger.Warn("finger table cold start incomplete", zap.Error(err))
	}

	toNotify, err := p.GetNPredecessors(ctx, p.selfID(), SuccessorListCapacity)
	if err != nil {
		p.logger.Warn("collecting predecessors to notify failed", zap.Error(err))
	}
	for _, target := range toNotify {
		p.sendNotify(ctx, target)
	}

	if succ, ok := p.firstSuccessor(); ok {
		p.sendNotify(ctx, succ)
	} else {
		p.sendNotify(ctx, pred)
	}

	p.startMaintenance(ctx)
	return nil
}

// populateFingerTable performs the cold-start resolution: finger i's
// lowerBound resolves via the local peer if owned, via the predecessor
// for finger 0, or via finger i-1's successor for i>0.
func (p *Peer) populateFingerTable(ctx context.Context) error {
	self := p.selfDescriptor()
	pred := p.predecessorSnapshot()

	for i := 0; i < NumFingers; i++ {
		lower, _ := p.fingers.Range(i)
		var succ PeerDescriptor
		var err error

		switch {
		case ring.Between(lower, self.MinKey, self.ID, true):
			succ = self
		case i == 0:
			if pred == nil {
				succ = self
			} else {
				succ, err = p.remoteGetSuccessor(ctx, *pred, lower)
			}
		default:
			prevSucc := p.fingers.NthSuccessor(i - 1)
			succ, err = p.remoteOrLocalGetSuccessor(ctx, prevSucc, lower)
		}
		if err != nil {
			return fmt.Errorf("finger %d: %w", i, err)
		}

		p.mu.Lock()
		p.fingers.EditNth(i, succ)
		p.mu.Unlock()
	}

	p.mu.Lock()
	p.successors.Insert(p.fingers.NthSuccessor(0))
	p.mu.Unlock()
	return nil
}

func (p *Peer) sendNotify(ctx context.Context, target PeerDescriptor) {
	self := p.selfDescriptor()
	if target.ID.Equal(self.ID) {
		return
	}
	_, err := p.transport.Send(ctx, target, Envelope{
		Command: CmdNotify, NewPeer: ptrWire(toWireDescriptor(self)), RecipID: target.ID.Hex(),
		SenderID: self.ID.Hex(), RecipientID: target.ID.Hex(),
	})
	if err != nil {
		p.logger.Warn("notify failed", zap.String("target", target.ID.Hex()), zap.Error(err))
	}
}

// NotifyHandler: newPeer becomes our predecessor if we have none, or
// if it is strictly closer than our current one; otherwise it is
// folded into the finger table and successor list.
func (p *Peer) NotifyHandler(newPeer PeerDescriptor) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.predecessor == nil || ring.Between(newPeer.ID, p.predecessor.ID, p.self.ID, false) {
		p.predecessor = &newPeer
		p.self.MinKey = newPeer.ID.AddInt(1)
		p.fingers.AdjustFingers(newPeer)
		return
	}
	p.fingers.AdjustFingers(newPeer)
	p.successors.Insert(newPeer)
}

// Leave performs a graceful departure: notify our successor of
// our predecessor, notify our predecessor of our successor, then stop
// the maintenance loop. Fragment migration is not performed
// synchronously; the next maintenance pass elsewhere re-replicates.
func (p *Peer) Leave(ctx context.Context) error {
	self := p.selfDescriptor()
	pred := p.predecessorSnapshot()
	firstSucc, hasSucc := p.firstSuccessor()

	if hasSucc && !firstSucc.ID.Equal(self.ID) {
		_, err := p.transport.Send(ctx, firstSucc, Envelope{
			Command: CmdLeave, NewPred: wirePtrOf(pred), NewMin: self.MinKey.Hex(),
			SenderID: self.ID.Hex(), RecipientID: firstSucc.ID.Hex(),
		})
		if err != nil {
			p.logger.Warn("leave: notifying successor failed", zap.Error(err))
		}
	}

	if pred != nil && hasSucc && !firstSucc.ID.Equal(self.ID) {
		newSucc := firstSucc
		newSucc.MinKey = self.MinKey
		_, err := p.transport.Send(ctx, *pred, Envelope{
			Command: CmdLeave, NewSucc: ptrWire(toWireDescriptor(newSucc)),
			SenderID: self.ID.Hex(), RecipientID: pred.ID.Hex(),
		})
		if err != nil {
			p.logger.Warn("leave: notifying predecessor failed", zap.Error(err))
		}
	}

	p.stopMaintenance()
	p.logger.Info("left the ring")
	return nil
}

// LeaveHandler applies the update carried by a LEAVE request: adopt a
// new predecessor and minKey when sent by our predecessor, or rewrite
// fingers targeting the leaver when sent by our first successor.
func (p *Peer) LeaveHandler(req Envelope) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if req.NewPred != nil {
		pred, err := fromWireDescriptor(*req.NewPred)
		if err != nil {
			return err
		}
		p.predecessor = &pred
		if req.NewMin != "" {
			minKey, err := ring.FromHex(req.NewMin)
			if err != nil {
				return err
			}
			p.self.MinKey = minKey
		}
	}
	if req.NewSucc != nil {
		newSucc, err := fromWireDescriptor(*req.NewSucc)
		if err != nil {
			return err
		}
		p.fingers.AdjustFingers(newSucc)
		p.successors.Insert(newSucc)
	}
	return nil
}

// Stabilize rebuilds the finger table and successor list by asking,
// for each finger index i, the previous finger's successor for the
// successor of the current finger's lowerBound (finger 0 asks the
// local peer), then calling GetNSuccessors(selfId, K).
func (p *Peer) Stabilize(ctx context.Context) {
	self := p.selfDescriptor()
	newFingers := make([]PeerDescriptor, NumFingers)

	for i := 0; i < NumFingers; i++ {
		lower, _ := p.fingers.Range(i)
		var asker PeerDescriptor
		if i == 0 {
			asker = self
		} else {
			asker = newFingers[i-1]
		}

		succ, err := p.remoteOrLocalGetSuccessor(ctx, asker, lower)
		if err != nil {
			p.logger.Debug("stabilize: finger lookup failed", zap.Int("finger", i), zap.Error(err))
			if i == 0 {
				succ = self
			} else {
				succ = newFingers[i-1]
			}
		}
		newFingers[i] = succ
	}

	p.mu.Lock()
	for i, succ := range newFingers {
		p.fingers.EditNth(i, succ)
	}
	p.mu.Unlock()

	succs, err := p.GetNSuccessors(ctx, p.selfID(), SuccessorListCapacity)
	if err != nil {
		p.logger.Debug("stabilize: refreshing successor list failed", zap.Error(err))
		return
	}
	newList := NewSuccessorList(SuccessorListCapacity)
	for _, s := range succs {
		newList.Insert(s)
	}
	p.mu.Lock()
	p.successors = newList
	p.mu.Unlock()
}

// RunLocalMaintenance calls Synchronize on each of our K successors,
// supplying the ordered list of keys in our range we currently hold.
func (p *Peer) RunLocalMaintenance(ctx context.Context) {
	self := p.selfDescriptor()
	keys := p.db.ReadRange(self.MinKey, self.ID)
	sort.Slice(keys, func(i, j int) bool {
		return keys[i].Sub(self.MinKey).Cmp(keys[j].Sub(self.MinKey)) < 0
	})
	p.mu.RLock()
	succs := p.successors.All()
	p.mu.RUnlock()
	for _, s := range succs {
		p.synchronizeWith(ctx, s, keys)
	}
}

func (p *Peer) synchronizeWith(ctx context.Context, target PeerDescriptor, keys []ring.ID) {
	self := p.selfDescriptor()
	if target.ID.Equal(self.ID) {
		return
	}
	hexKeys := make([]string, len(keys))
	for i, k := range keys {
		hexKeys[i] = k.Hex()
	}
	_, err := p.transport.Send(ctx, target, Envelope{
		Command: CmdSynchronize, Keys: hexKeys, SenderID: self.ID.Hex(), RecipientID: target.ID.Hex(),
	})
	if err != nil {
		p.logger.Debug("synchronize failed", zap.String("target", target.ID.Hex()), zap.Error(err))
	}
}

// SynchronizeHandler retrieves and stores any key from req's KEYS field
// that we currently lack. The specification resolves an open question
// here: the original source iterated the response object's keys rather
// than the request's when deciding what to fetch, which meant nothing
// was ever retrieved; this implementation reads the request's KEYS, as
// specified.
func (p *Peer) SynchronizeHandler(ctx context.Context, req Envelope) {
	for _, hexKey := range req.Keys {
		k, err := ring.FromHex(hexKey)
		if err != nil {
			continue
		}
		if p.db.Contains(k) {
			continue
		}
		if err := p.RetrieveMissing(ctx, k); err != nil {
			p.logger.Debug("retrieve missing during synchronize failed",
				zap.String("key", hexKey), zap.Error(err))
		}
	}
}

// RunGlobalMaintenance walks the ring starting at selfId, relocating
// any locally-held key that has drifted out of our top-K successor set
// onto that set.
func (p *Peer) RunGlobalMaintenance(ctx context.Context) {
	self := p.selfDescriptor()
	current := self.ID

	for {
		succs, err := p.GetNSuccessors(ctx, current, SuccessorListCapacity)
		if err != nil || len(succs) == 0 {
			return
		}

		if !descriptorsContain(succs, self.ID) {
			misplaced := p.db.ReadRange(current.AddInt(1), succs[0].ID)
			for _, k := range misplaced {
				frag, err := p.db.Lookup(k)
				if err != nil {
					continue
				}
				placed := false
				for _, target := range succs {
					if p.createFragmentOn(ctx, target, k, frag) {
						placed = true
						break
					}
				}
				if placed {
					_ = p.db.Delete(k)
				}
			}
		}

		next := succs[0].ID
		if ring.Between(next, self.MinKey, self.ID, true) {
			return
		}
		current = next
	}
}

func descriptorsContain(descs []PeerDescriptor, id ring.ID) bool {
	for _, d := range descs {
		if d.ID.Equal(id) {
			return true
		}
	}
	return false
}

func (p *Peer) createFragmentOn(ctx context.Context, target PeerDescriptor, k ring.ID, frag ida.Fragment) bool {
	self := p.selfDescriptor()
	if target.ID.Equal(self.ID) {
		return p.db.Insert(k, frag) == nil
	}
	resp, err := p.transport.Send(ctx, target, Envelope{
		Command: CmdCreateFrag, Key: k.Hex(), Fragment: frag.String(),
		SenderID: self.ID.Hex(), RecipientID: target.ID.Hex(),
	})
	if err != nil {
		return false
	}
	return resp.Success
}

// RetrieveMissing reconstructs the block at k via Read, picks one
// fragment uniformly at random, and inserts it locally — how a
// newly-arrived successor fills its replica slot.
func (p *Peer) RetrieveMissing(ctx context.Context, k ring.ID) error {
	block, err := p.Read(ctx, k)
	if err != nil {
		return fmt.Errorf("retrieve missing %s: %w", k.Hex(), err)
	}
	if len(block.Fragments) == 0 {
		return fmt.Errorf("retrieve missing %s: no fragments available to pick from", k.Hex())
	}
	pick := block.Fragments[rand.Intn(len(block.Fragments))]
	return p.db.Insert(k, pick)
}

// Create encodes v into a DataBlock and attempts to deliver one
// fragment to each of k's N successors, returning true iff at least M
// placements succeed. A placement only counts when createFragmentOn's
// underlying Insert actually succeeds; peer.cpp's Create counts its
// local branch unconditionally instead, which lets a key collide with
// one already held locally and silently overwrite it. The stricter
// count here means a ring with fewer than M distinct peers can never
// reach M placements, since no single peer's Database can hold more
// than one fragment per key.
func (p *Peer) Create(ctx context.Context, k ring.ID, v []byte) (bool, error) {
	block, err := ida.NewBlockFromPlaintext(v)
	if err != nil {
		return false, fmt.Errorf("create: %w", err)
	}
	succs, err := p.GetNSuccessors(ctx, k, SuccessorListCapacity)
	if err != nil {
		return false, fmt.Errorf("create: %w", err)
	}
	if len(succs) < ida.M {
		return false, nil
	}

	successes := 0
	limit := ida.N
	if len(succs) < limit {
		limit = len(succs)
	}
	for i := 0; i < limit; i++ {
		if p.createFragmentOn(ctx, succs[i], k, block.Fragments[i]) {
			successes++
		}
	}
	return successes >= ida.M, nil
}

func (p *Peer) readFragmentFrom(ctx context.Context, target PeerDescriptor, k ring.ID) (ida.Fragment, bool) {
	self := p.selfDescriptor()
	if target.ID.Equal(self.ID) {
		frag, err := p.db.Lookup(k)
		return frag, err == nil
	}
	resp, err := p.transport.Send(ctx, target, Envelope{
		Command: CmdReadFrag, Key: k.Hex(), SenderID: self.ID.Hex(), RecipientID: target.ID.Hex(),
	})
	if err != nil || !resp.Success {
		return ida.Fragment{}, false
	}
	frag, err := ida.ParseFragment(resp.Fragment)
	if err != nil {
		return ida.Fragment{}, false
	}
	return frag, true
}

func (p *Peer) gatherFragments(ctx context.Context, succs []PeerDescriptor, k ring.ID) (ida.Block, error) {
	seen := make(map[int]bool)
	var fragments []ida.Fragment
	for _, s := range succs {
		if len(fragments) >= ida.M {
			break
		}
		frag, ok := p.readFragmentFrom(ctx, s, k)
		if !ok || seen[frag.Index] {
			continue
		}
		seen[frag.Index] = true
		fragments = append(fragments, frag)
	}
	if len(fragments) < ida.M {
		return ida.Block{}, fmt.Errorf("%w: gathered %d of %d", ErrInsufficientRead, len(fragments), ida.M)
	}
	return ida.NewBlockFromFragments(fragments)
}

// Read resolves k's successors and walks them in order, issuing
// READ_FRAG (or a local lookup) until M distinct fragments are
// collected, then reconstructs the value.
func (p *Peer) Read(ctx context.Context, k ring.ID) (ida.Block, error) {
	succs, err := p.GetNSuccessors(ctx, k, SuccessorListCapacity)
	if err != nil {
		return ida.Block{}, fmt.Errorf("read: %w", err)
	}
	return p.gatherFragments(ctx, succs, k)
}

// ReadPreferringLowLatency is additive to Read: it walks k's successors
// ordered by ascending mean latency instead of plain ring order, so a
// caller can prefer a faster replica when multiple successors hold a
// usable fragment. The peer records no round-trip samples into its
// tracker itself, so every mean is 0 and the walk keeps ring order.
func (p *Peer) ReadPreferringLowLatency(ctx context.Context, k ring.ID) (ida.Block, error) {
	succs, err := p.GetNSuccessors(ctx, k, SuccessorListCapacity)
	if err != nil {
		return ida.Block{}, fmt.Errorf("read: %w", err)
	}
	ordered := SortDescriptorsByLatency(succs, p.latency)
	return p.gatherFragments(ctx, ordered, k)
}

func ptrWire(w WireDescriptor) *WireDescriptor { return &w }

func wirePtrOf(d *PeerDescriptor) *WireDescriptor {
	if d == nil {
		return nil
	}
	w := toWireDescriptor(*d)
	return &w
}
