package domain

import (
	"bytes"
	"encoding/json"
	"sort"

	"github.com/google/uuid"
)

// IDSet is an unordered set of identities. The zero value is ready for reads;
// use NewIDSet or Add (on a non-nil set) for writes.
type IDSet map[uuid.UUID]struct{}

func NewIDSet(ids ...uuid.UUID) IDSet {
	s := make(IDSet, len(ids))
	for _, id := range ids {
		s[id] = struct{}{}
	}
	return s
}

func (s IDSet) Has(id uuid.UUID) bool {
	_, ok := s[id]
	return ok
}

func (s IDSet) Add(id uuid.UUID) {
	s[id] = struct{}{}
}

func (s IDSet) Remove(id uuid.UUID) {
	delete(s, id)
}

func (s IDSet) Len() int {
	return len(s)
}

func (s IDSet) Clone() IDSet {
	out := make(IDSet, len(s))
	for id := range s {
		out[id] = struct{}{}
	}
	return out
}

// Slice returns the members ordered by their string form so output is stable.
func (s IDSet) Slice() []uuid.UUID {
	out := make([]uuid.UUID, 0, len(s))
	for id := range s {
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool {
		return bytes.Compare(out[i][:], out[j][:]) < 0
	})
	return out
}

func (s IDSet) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.Slice())
}

func (s *IDSet) UnmarshalJSON(data []byte) error {
	var ids []uuid.UUID
	if err := json.Unmarshal(data, &ids); err != nil {
		return err
	}
	*s = NewIDSet(ids...)
	return nil
}
