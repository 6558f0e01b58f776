package plasmonet

import "github.com/segmentio/ksuid"

// Handle is a stable integer reference to a node registered in a Graph.
// Nodes carry handles rather than pointers to each other so that save and
// restore snapshots only ever need to move a handle plus a value, following
// the arena-plus-index scheme: every node lives in the Graph's nodes slice,
// and dependents/dirty-upstream sets store Handles, never node references.
type Handle int

// invalidHandle marks a node that has not yet been registered with a graph.
const invalidHandle Handle = -1

// node is the minimal interface the Graph needs to drive dirty propagation
// and checkpointing. Every concrete node type (Parameter, Accumulator,
// Ordering, ParentSet, ...) embeds nodeBase[T], which implements this
// interface once for every T.
type node interface {
	isDirty() bool
	setClean()
	dependents() []Handle
	addDependent(Handle)
	markDirty() bool // returns true the first time a node transitions clean->dirty
	addDirtyUpstream(Handle)
	hasSaved(id ksuid.KSUID) bool
	saveStateRaw(id ksuid.KSUID)
	restoreStateRaw(id ksuid.KSUID)
	acceptStateRaw(id ksuid.KSUID)
}

// Graph owns every node that participates in a single MCMC chain's
// dependency relation. Each chain in a replica-exchange ladder owns its own
// Graph; there is no shared mutable state between chains (see replica.go).
type Graph struct {
	nodes []node
}

// NewGraph creates an empty dependency graph.
func NewGraph() *Graph {
	return &Graph{}
}

// register adds a node to the graph and returns its stable handle. Nodes
// must be registered in dependee-before-dependent order: a node can only
// name handles of nodes already registered, which is what keeps the
// dependency relation acyclic by construction (spec invariant 5).
func (g *Graph) register(n node) Handle {
	h := Handle(len(g.nodes))
	g.nodes = append(g.nodes, n)
	return h
}

// AddDependent records that the node at `dependent` depends on the node at
// `dependee`: when `dependee` changes, `dependent` must be marked dirty.
func (g *Graph) AddDependent(dependee, dependent Handle) {
	g.nodes[dependee].addDependent(dependent)
}

// MarkDirty propagates a dirty flag from the node at h through every node
// transitively reachable via the dependent relation. A node already dirty
// stops the recursion (spec invariant 1): this caps propagation cost at
// O(edges) regardless of how many upstream parameters change in the same
// mutation.
func (g *Graph) MarkDirty(h Handle) {
	n := g.nodes[h]
	if !n.markDirty() {
		return
	}
	for _, dep := range n.dependents() {
		g.propagateDirty(dep, h)
	}
}

// propagateDirty marks the node at h dirty because the node at source
// became dirty, recording source in h's dirty-upstream set regardless of
// whether h was already dirty (so accumulators can later find every
// upstream that changed since their last clean state).
func (g *Graph) propagateDirty(h, source Handle) {
	n := g.nodes[h]
	n.addDirtyUpstream(source)
	if !n.markDirty() {
		return
	}
	for _, dep := range n.dependents() {
		g.propagateDirty(dep, h)
	}
}

// SaveState snapshots the subtree rooted at h under id. It is a no-op if a
// snapshot under id already exists for this node (nested proposals that
// touch overlapping subtrees layer correctly: the first saveState call for
// a given id wins). The node itself is saved before its dependents.
func (g *Graph) SaveState(h Handle, id ksuid.KSUID) {
	n := g.nodes[h]
	if n.hasSaved(id) {
		return
	}
	n.saveStateRaw(id)
	for _, dep := range n.dependents() {
		g.SaveState(dep, id)
	}
}

// RestoreState returns every node transitively affected by h's change back
// to the value captured under id. Dependents are restored before this node,
// so that by the time a node's own value is rolled back, nothing downstream
// is still reading the post-proposal value.
func (g *Graph) RestoreState(h Handle, id ksuid.KSUID) {
	n := g.nodes[h]
	if !n.hasSaved(id) {
		return
	}
	for _, dep := range n.dependents() {
		g.RestoreState(dep, id)
	}
	n.restoreStateRaw(id)
}

// AcceptState discards the snapshot under id, making the node's current
// value the new baseline. Dependents are accepted before this node.
func (g *Graph) AcceptState(h Handle, id ksuid.KSUID) {
	n := g.nodes[h]
	if !n.hasSaved(id) {
		return
	}
	for _, dep := range n.dependents() {
		g.AcceptState(dep, id)
	}
	n.acceptStateRaw(id)
}

// IsDirty reports whether the node at h needs recomputation.
func (g *Graph) IsDirty(h Handle) bool {
	return g.nodes[h].isDirty()
}

// nodeBase implements the node interface for a value of type T. Every
// concrete node (Parameter[T], Accumulator, Ordering, ...) embeds a
// nodeBase[T] and gets dirty propagation, dirty-upstream bookkeeping, and
// keyed save/restore/accept for free; it supplies its own Value/Peek and,
// for interior nodes, its own recompute logic.
type nodeBase[T any] struct {
	graph   *Graph
	handle  Handle
	current T

	dirty         bool
	dirtyUpstream map[Handle]struct{}
	deps          []Handle

	saved map[ksuid.KSUID]T
}

func (n *nodeBase[T]) init(g *Graph, self node) {
	n.graph = g
	n.dirty = true
	n.handle = g.register(self)
}

// Handle returns the stable graph handle for this node.
func (n *nodeBase[T]) Handle() Handle { return n.handle }

func (n *nodeBase[T]) isDirty() bool { return n.dirty }

func (n *nodeBase[T]) setClean() {
	n.dirty = false
	n.dirtyUpstream = nil
}

func (n *nodeBase[T]) dependents() []Handle { return n.deps }

func (n *nodeBase[T]) addDependent(h Handle) { n.deps = append(n.deps, h) }

func (n *nodeBase[T]) markDirty() bool {
	if n.dirty {
		return false
	}
	n.dirty = true
	return true
}

func (n *nodeBase[T]) addDirtyUpstream(h Handle) {
	if n.dirtyUpstream == nil {
		n.dirtyUpstream = make(map[Handle]struct{})
	}
	n.dirtyUpstream[h] = struct{}{}
}

// DirtyUpstream returns the set of upstream handles that have changed since
// this node's last clean state, used by accumulators to recompute
// incrementally instead of summing all children from scratch.
func (n *nodeBase[T]) DirtyUpstream() map[Handle]struct{} { return n.dirtyUpstream }

func (n *nodeBase[T]) hasSaved(id ksuid.KSUID) bool {
	_, ok := n.saved[id]
	return ok
}

func (n *nodeBase[T]) saveStateRaw(id ksuid.KSUID) {
	if n.saved == nil {
		n.saved = make(map[ksuid.KSUID]T)
	}
	n.saved[id] = n.current
}

func (n *nodeBase[T]) restoreStateRaw(id ksuid.KSUID) {
	n.current = n.saved[id]
	delete(n.saved, id)
	n.setClean()
}

func (n *nodeBase[T]) acceptStateRaw(id ksuid.KSUID) {
	delete(n.saved, id)
}

// Peek returns the last-cached value without triggering a recompute. For an
// interior node that is the value its last Value() call computed, even while
// it is dirty; for a Parameter it is the value SetValue last assigned. The
// incremental accumulator in accumulator.go does not use Peek: it keeps its
// own record of each child's last contribution.
func (n *nodeBase[T]) Peek() T { return n.current }
