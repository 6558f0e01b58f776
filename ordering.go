package plasmonet

import "sort"

// MovedListener is called when an element crosses past another named
// element in an Ordering, carrying the element that was crossed.
type MovedListener func(other *InfectionEvent)

// Ordering holds a sequence of infection events sorted by infection time
// (observation time minus infection duration). When one event's duration
// changes, Ordering relocates it in place and fires keyed moved-left /
// moved-right notifications for every element it passed over, so a
// ParentSet keyed to a specific child only hears about the crossings that
// affect its own candidate-parent membership.
type Ordering struct {
	events []*InfectionEvent

	movedLeft  map[Handle][]MovedListener
	movedRight map[Handle][]MovedListener
}

// NewOrdering creates an empty ordering.
func NewOrdering() *Ordering {
	return &Ordering{
		movedLeft:  make(map[Handle][]MovedListener),
		movedRight: make(map[Handle][]MovedListener),
	}
}

// AddElements adds every event to the ordering, sorts the sequence by
// infection time, and subscribes to each event's infection-duration
// parameter so later duration changes trigger relocation. Ties in
// infection time are broken by the order events were added, since Go's
// sort.SliceStable preserves input order among equal keys.
func (o *Ordering) AddElements(events []*InfectionEvent) {
	o.events = append(o.events, events...)
	sort.SliceStable(o.events, func(i, j int) bool {
		return o.events[i].InfectionTime() < o.events[j].InfectionTime()
	})
	for _, ev := range events {
		ev := ev
		ev.duration.RegisterPostChangeObserver(func(old, new float64) {
			o.relocate(ev)
		})
	}
}

// Value returns the current sequence, sorted by infection time. The caller
// must not mutate the returned slice.
func (o *Ordering) Value() []*InfectionEvent { return o.events }

// RegisterMovedLeftListener registers fn to be called whenever an element
// crosses to the left of child (child's infection time becomes later than
// the crossed element's).
func (o *Ordering) RegisterMovedLeftListener(child Handle, fn MovedListener) {
	o.movedLeft[child] = append(o.movedLeft[child], fn)
}

// RegisterMovedRightListener registers fn to be called whenever an element
// crosses to the right of child.
func (o *Ordering) RegisterMovedRightListener(child Handle, fn MovedListener) {
	o.movedRight[child] = append(o.movedRight[child], fn)
}

func (o *Ordering) notifyMovedLeft(pivot Handle, other *InfectionEvent) {
	for _, fn := range o.movedLeft[pivot] {
		fn(other)
	}
}

func (o *Ordering) notifyMovedRight(pivot Handle, other *InfectionEvent) {
	for _, fn := range o.movedRight[pivot] {
		fn(other)
	}
}

// relocate finds ev's destination index under its new infection time and
// moves it there, notifying every element it passes over. Elements between
// the old and new index each have ev cross one of their sides: if ev moves
// earlier (left), every passed element sees ev move left of it and sees
// itself move right of ev; if ev moves later (right), the notifications
// are mirrored.
func (o *Ordering) relocate(ev *InfectionEvent) {
	src := indexOf(o.events, ev)
	if src < 0 {
		return
	}
	t := ev.InfectionTime()

	dest := src
	switch {
	case src > 0 && o.events[src-1].InfectionTime() > t:
		dest = src - 1
		for dest > 0 && o.events[dest-1].InfectionTime() > t {
			dest--
		}
	case src < len(o.events)-1 && o.events[src+1].InfectionTime() < t:
		dest = src + 1
		for dest < len(o.events)-1 && o.events[dest+1].InfectionTime() < t {
			dest++
		}
	default:
		return
	}

	if dest < src {
		for i := dest; i < src; i++ {
			other := o.events[i]
			o.notifyMovedRight(ev.handle, other)
			o.notifyMovedLeft(other.handle, ev)
		}
	} else {
		for i := src + 1; i <= dest; i++ {
			other := o.events[i]
			o.notifyMovedLeft(ev.handle, other)
			o.notifyMovedRight(other.handle, ev)
		}
	}

	o.events = append(o.events[:src], o.events[src+1:]...)
	o.events = append(o.events[:dest], append([]*InfectionEvent{ev}, o.events[dest:]...)...)
}

func indexOf(events []*InfectionEvent, ev *InfectionEvent) int {
	for i, e := range events {
		if e == ev {
			return i
		}
	}
	return -1
}
