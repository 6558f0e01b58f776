package plasmonet

// ParentSet holds, for one infection event, the subset of earlier events
// permitted to be its transmission source. It is derived from an Ordering
// and an allowed-parents mask, maintained incrementally: whenever a
// permitted candidate crosses to the left of the child in the ordering it
// is added, and whenever it crosses back to the right it is removed.
// Nothing in ParentSet ever rescans the full ordering after construction.
type ParentSet struct {
	child          *InfectionEvent
	allowed        map[Handle]bool
	allowedList    []*InfectionEvent
	members        map[Handle]*InfectionEvent
	onAdded        []func(*InfectionEvent)
	onRemoved      []func(*InfectionEvent)
}

// NewParentSet builds a ParentSet for child, permitting only the events in
// allowedParents as candidate sources, and subscribes it to ordering's
// keyed moved events for child. allowedParents should already exclude
// child itself and any id the input's disallowed_parents list named.
func NewParentSet(ordering *Ordering, child *InfectionEvent, allowedParents []*InfectionEvent) *ParentSet {
	ps := &ParentSet{
		child:       child,
		allowed:     make(map[Handle]bool, len(allowedParents)),
		allowedList: allowedParents,
		members:     make(map[Handle]*InfectionEvent),
	}
	for _, p := range allowedParents {
		ps.allowed[p.handle] = true
	}

	ordering.RegisterMovedLeftListener(child.handle, func(other *InfectionEvent) {
		if ps.allowed[other.handle] {
			ps.members[other.handle] = other
			ps.notifyAdded(other)
		}
	})
	ordering.RegisterMovedRightListener(child.handle, func(other *InfectionEvent) {
		if ps.allowed[other.handle] {
			delete(ps.members, other.handle)
			ps.notifyRemoved(other)
		}
	})

	for _, ev := range ordering.Value() {
		if ev == child {
			continue
		}
		if ev.InfectionTime() >= child.InfectionTime() {
			continue
		}
		if ps.allowed[ev.handle] {
			ps.members[ev.handle] = ev
		}
	}
	return ps
}

// Value returns the current parent set members. The caller must not
// mutate the returned map.
func (ps *ParentSet) Value() map[Handle]*InfectionEvent { return ps.members }

// AllowedParents returns every candidate parent this set was constructed
// with, regardless of current membership. NodeTransmission uses this to
// wire a standing dependency on each candidate's latent genotype, since a
// parent not currently a member can still become one later without its
// genotype parameter ever changing again.
func (ps *ParentSet) AllowedParents() []*InfectionEvent { return ps.allowedList }

// Len returns the number of current members.
func (ps *ParentSet) Len() int { return len(ps.members) }

// RegisterAddedObserver registers fn to run whenever a parent is added.
func (ps *ParentSet) RegisterAddedObserver(fn func(*InfectionEvent)) {
	ps.onAdded = append(ps.onAdded, fn)
}

// RegisterRemovedObserver registers fn to run whenever a parent is removed.
func (ps *ParentSet) RegisterRemovedObserver(fn func(*InfectionEvent)) {
	ps.onRemoved = append(ps.onRemoved, fn)
}

func (ps *ParentSet) notifyAdded(ev *InfectionEvent) {
	for _, fn := range ps.onAdded {
		fn(ev)
	}
}

func (ps *ParentSet) notifyRemoved(ev *InfectionEvent) {
	for _, fn := range ps.onRemoved {
		fn(ev)
	}
}

// RecomputeFromScratch rebuilds the parent set by scanning the full
// ordering rather than relying on incremental moved-event bookkeeping. It
// exists for cross-checking incremental updates against ground truth (see
// parentset_test.go) and is never called on the hot path.
func RecomputeFromScratch(ordering *Ordering, child *InfectionEvent, allowed map[Handle]bool) map[Handle]*InfectionEvent {
	out := make(map[Handle]*InfectionEvent)
	for _, ev := range ordering.Value() {
		if ev == child {
			continue
		}
		if ev.InfectionTime() >= child.InfectionTime() {
			continue
		}
		if allowed[ev.handle] {
			out[ev.handle] = ev
		}
	}
	return out
}
