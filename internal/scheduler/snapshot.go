package scheduler

import (
	"context"
	"fmt"
)

// Snapshot is the immutable, dense view of the catalog a generation run
// builds once at the start and shares read-only across ModelBuilder,
// ObjectiveBuilder and the decoder. Nothing after Build mutates it.
type Snapshot struct {
	Rooms      []Room
	Faculty    []Faculty
	Batches    []Batch
	Subjects   []Subject
	FixedSlots []FixedSlot

	roomIndex    map[string]int
	facultyIndex map[string]int
	batchIndex   map[string]int
	subjectIndex map[string]int
}

// BuildSnapshot reads the full catalog and materializes the dense,
// reverse-indexed view the rest of the scheduler operates on. A dangling
// fixed-slot reference (unknown batch or room) fails with ErrInvalidInput,
// as do out-of-range day/period values.
func BuildSnapshot(ctx context.Context, catalog Catalog) (*Snapshot, error) {
	rooms, err := catalog.Rooms(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: rooms: %v", ErrInternal, err)
	}
	faculty, err := catalog.Faculty(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: faculty: %v", ErrInternal, err)
	}
	batches, err := catalog.Batches(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: batches: %v", ErrInternal, err)
	}
	subjects, err := catalog.Subjects(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: subjects: %v", ErrInternal, err)
	}
	fixedSlots, err := catalog.FixedSlots(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: fixed slots: %v", ErrInternal, err)
	}

	snap := &Snapshot{
		Rooms:        rooms,
		Faculty:      faculty,
		Batches:      batches,
		Subjects:     subjects,
		FixedSlots:   fixedSlots,
		roomIndex:    make(map[string]int, len(rooms)),
		facultyIndex: make(map[string]int, len(faculty)),
		batchIndex:   make(map[string]int, len(batches)),
		subjectIndex: make(map[string]int, len(subjects)),
	}
	for i, r := range rooms {
		snap.roomIndex[r.ID] = i
	}
	for i, f := range faculty {
		snap.facultyIndex[f.ID] = i
	}
	for i, b := range batches {
		snap.batchIndex[b.ID] = i
	}
	for i, s := range subjects {
		snap.subjectIndex[s.ID] = i
	}

	for _, fs := range fixedSlots {
		if _, ok := snap.batchIndex[fs.BatchID]; !ok {
			return nil, fmt.Errorf("%w: fixed slot %s references unknown batch %s", ErrInvalidInput, fs.ID, fs.BatchID)
		}
		if fs.RoomID != nil {
			if _, ok := snap.roomIndex[*fs.RoomID]; !ok {
				return nil, fmt.Errorf("%w: fixed slot %s references unknown room %s", ErrInvalidInput, fs.ID, *fs.RoomID)
			}
		}
		if fs.Day < 0 || fs.Day >= Days {
			return nil, fmt.Errorf("%w: fixed slot %s has out-of-range day %d", ErrInvalidInput, fs.ID, fs.Day)
		}
		if fs.Period < 1 || fs.Period > PeriodsPerDay {
			return nil, fmt.Errorf("%w: fixed slot %s has out-of-range period %d", ErrInvalidInput, fs.ID, fs.Period)
		}
	}

	return snap, nil
}

// RoomIdx returns the dense index of a room id.
func (s *Snapshot) RoomIdx(id string) (int, bool) { i, ok := s.roomIndex[id]; return i, ok }

// FacultyIdx returns the dense index of a faculty id.
func (s *Snapshot) FacultyIdx(id string) (int, bool) { i, ok := s.facultyIndex[id]; return i, ok }

// BatchIdx returns the dense index of a batch id.
func (s *Snapshot) BatchIdx(id string) (int, bool) { i, ok := s.batchIndex[id]; return i, ok }

// SubjectIdx returns the dense index of a subject id.
func (s *Snapshot) SubjectIdx(id string) (int, bool) { i, ok := s.subjectIndex[id]; return i, ok }

// IndexSpace computes the dense dimensions and the slot<->(day,period)
// mapping. No other component is allowed to encode these constants
// directly.
type IndexSpace struct {
	NumBatches  int
	NumSubjects int
	NumPeriods  int
	NumRooms    int
	NumFaculty  int
}

// NewIndexSpace derives the dense dimensions from a snapshot.
func NewIndexSpace(snap *Snapshot) IndexSpace {
	return IndexSpace{
		NumBatches:  len(snap.Batches),
		NumSubjects: len(snap.Subjects),
		NumPeriods:  TotalPeriods,
		NumRooms:    len(snap.Rooms),
		NumFaculty:  len(snap.Faculty),
	}
}

// Slot packs a 0-based day and a 1-based period-of-day into a flat index.
func Slot(day, periodNo int) int {
	return day*PeriodsPerDay + (periodNo - 1)
}

// Unslot is the inverse of Slot: flat index -> (day, period-of-day).
func Unslot(p int) (day, periodNo int) {
	return p / PeriodsPerDay, p%PeriodsPerDay + 1
}
