package calendar

// Selection tracks which slots of a single fetch are picked. The picked
// slots always form one contiguous run of indices, or nothing.
//
// A Selection belongs to exactly one fetch: a new date or a refetch
// builds a new Selection, so nothing carries over even when slot IDs
// repeat across fetches.
type Selection struct {
	slots    []Slot
	selected []bool
}

func NewSelection(slots []Slot) *Selection {
	cp := make([]Slot, len(slots))
	copy(cp, slots)
	return &Selection{
		slots:    cp,
		selected: make([]bool, len(cp)),
	}
}

func (s *Selection) Len() int {
	return len(s.slots)
}

func (s *Selection) Count() int {
	n := 0
	for _, sel := range s.selected {
		if sel {
			n++
		}
	}
	return n
}

// Range returns the lowest and highest selected index.
func (s *Selection) Range() (lo, hi int, ok bool) {
	lo, hi = -1, -1
	for i, sel := range s.selected {
		if !sel {
			continue
		}
		if lo < 0 {
			lo = i
		}
		hi = i
	}
	return lo, hi, lo >= 0
}

// Toggle flips slot i.
//
// Selecting is allowed when nothing is selected yet, or when i extends the
// current run at either end. Deselecting an end slot shrinks the run;
// deselecting an interior slot cuts the run just before it. A rejected
// toggle returns a *ValidationError and leaves the selection unchanged.
func (s *Selection) Toggle(i int) error {
	if i < 0 || i >= len(s.slots) {
		return ErrSlotOutOfRange
	}

	if s.selected[i] {
		lo, hi, _ := s.Range()
		if i == lo || i == hi {
			s.selected[i] = false
			return nil
		}
		for j := i; j <= hi; j++ {
			s.selected[j] = false
		}
		return nil
	}

	if s.slots[i].Status != SlotAvailable {
		return ErrSlotUnavailable
	}

	lo, hi, ok := s.Range()
	if ok && i != lo-1 && i != hi+1 {
		return ErrNonContiguous
	}
	s.selected[i] = true
	return nil
}

// Restore rebuilds a selection from slot IDs, as sent back by a client that
// holds selection state between requests. The IDs must name available
// slots of this fetch and form one contiguous run.
func (s *Selection) Restore(ids []string) error {
	if len(ids) == 0 {
		s.Clear()
		return nil
	}

	index := make(map[string]int, len(s.slots))
	for i, slot := range s.slots {
		if _, dup := index[slot.ID]; !dup {
			index[slot.ID] = i
		}
	}

	next := make([]bool, len(s.slots))
	for _, id := range ids {
		i, ok := index[id]
		if !ok {
			return ErrUnknownSlot
		}
		if s.slots[i].Status != SlotAvailable {
			return ErrSlotUnavailable
		}
		next[i] = true
	}

	lo, hi := -1, -1
	for i, sel := range next {
		if sel {
			if lo < 0 {
				lo = i
			}
			hi = i
		}
	}
	for i := lo; i <= hi; i++ {
		if !next[i] {
			return ErrNonContiguous
		}
	}

	s.selected = next
	return nil
}

func (s *Selection) Clear() {
	s.selected = make([]bool, len(s.slots))
}

func (s *Selection) SelectedIDs() []string {
	ids := make([]string, 0, s.Count())
	for i, sel := range s.selected {
		if sel {
			ids = append(ids, s.slots[i].ID)
		}
	}
	return ids
}

func (s *Selection) SelectedIndices() []int {
	idx := make([]int, 0, s.Count())
	for i, sel := range s.selected {
		if sel {
			idx = append(idx, i)
		}
	}
	return idx
}

// Times returns the start time of the first and last selected slot.
func (s *Selection) Times() (start, end string) {
	lo, hi, ok := s.Range()
	if !ok {
		return "", ""
	}
	return s.slots[lo].StartTime, s.slots[hi].StartTime
}

func (s *Selection) Views() []SlotView {
	views := make([]SlotView, len(s.slots))
	for i, slot := range s.slots {
		views[i] = SlotView{Slot: slot, Selected: s.selected[i]}
	}
	return views
}
