package record

// Store holds the canonical list.
//
// INVARIANTS:
//   - IDs are unique across the list after every mutation.
//   - New records are prepended; relative order of survivors is otherwise
//     never disturbed.
//
// Mutations are synchronous and never rolled back: the remote sync layer
// is strictly downstream of the Store (optimistic, non-transactional).
type Store struct {
	records []Record
}

// NewStore creates an empty Store.
func NewStore() *Store {
	return &Store{records: make([]Record, 0, 16)}
}

// Load replaces the canonical list wholesale. No prior data is merged.
// Used on initial fetch; the slice is copied to keep ownership here.
func (s *Store) Load(records []Record) {
	s.records = make([]Record, len(records))
	copy(s.records, records)
}

// Insert prepends a new record with a freshly minted ID equal to
// max(existing IDs, 0)+1 and returns the stored record. The ID field of
// the argument is ignored; minting here is what guarantees uniqueness.
func (s *Store) Insert(r Record) Record {
	r.ID = s.MaxID() + 1
	s.records = append([]Record{r}, s.records...)
	return r
}

// Update writes one field of the record with the given ID. An absent ID
// fails silently: the boolean reports whether anything was written, and
// callers that want the silent-no-op contract simply ignore it.
func (s *Store) Update(id int, f Field, raw string) (Record, bool) {
	for i := range s.records {
		if s.records[i].ID == id {
			s.records[i].apply(f, raw)
			return s.records[i], true
		}
	}
	return Record{}, false
}

// Remove deletes the record with the given ID if present.
func (s *Store) Remove(id int) bool {
	for i := range s.records {
		if s.records[i].ID == id {
			s.records = append(s.records[:i], s.records[i+1:]...)
			return true
		}
	}
	return false
}

// Get returns the record with the given ID.
func (s *Store) Get(id int) (Record, bool) {
	for _, r := range s.records {
		if r.ID == id {
			return r, true
		}
	}
	return Record{}, false
}

// Records returns a defensive copy of the canonical list.
func (s *Store) Records() []Record {
	out := make([]Record, len(s.records))
	copy(out, s.records)
	return out
}

// Len returns the canonical list size.
func (s *Store) Len() int {
	return len(s.records)
}

// MaxID returns the largest ID in the list, or 0 when empty.
func (s *Store) MaxID() int {
	max := 0
	for _, r := range s.records {
		if r.ID > max {
			max = r.ID
		}
	}
	return max
}
