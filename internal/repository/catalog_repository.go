package repository

import (
	"context"
	"fmt"

	"github.com/mlsaran/tt-scheduler-api/internal/models"
	"github.com/mlsaran/tt-scheduler-api/internal/scheduler"
)

// CatalogRepository adapts the application's CRUD repositories into the
// bulk, read-only scheduler.Catalog the solver core consumes.
type CatalogRepository struct {
	rooms    *RoomRepository
	teachers *TeacherRepository
	classes  *ClassRepository
	subjects *SubjectRepository
	fixed    *FixedSlotRepository
}

// NewCatalogRepository wires the individual table repositories into a
// single Catalog implementation.
func NewCatalogRepository(rooms *RoomRepository, teachers *TeacherRepository, classes *ClassRepository, subjects *SubjectRepository, fixed *FixedSlotRepository) *CatalogRepository {
	return &CatalogRepository{
		rooms:    rooms,
		teachers: teachers,
		classes:  classes,
		subjects: subjects,
		fixed:    fixed,
	}
}

// Rooms returns every room converted to the scheduler's read-only view.
func (c *CatalogRepository) Rooms(ctx context.Context) ([]scheduler.Room, error) {
	rows, err := c.rooms.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("catalog rooms: %w", err)
	}
	out := make([]scheduler.Room, 0, len(rows))
	for _, room := range rows {
		out = append(out, scheduler.Room{
			ID:             room.ID,
			Name:           room.Name,
			Type:           room.Type,
			Capacity:       room.Capacity,
			AvailableSlots: []byte(room.AvailableSlots),
		})
	}
	return out, nil
}

// Faculty returns every active teacher, with subject qualifications
// attached from the teacher_subjects join table.
func (c *CatalogRepository) Faculty(ctx context.Context) ([]scheduler.Faculty, error) {
	rows, err := c.teachers.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("catalog faculty: %w", err)
	}
	links, err := c.teachers.ListQualifications(ctx)
	if err != nil {
		return nil, fmt.Errorf("catalog faculty qualifications: %w", err)
	}
	bySubject := make(map[string][]string, len(rows))
	for _, link := range links {
		bySubject[link.TeacherID] = append(bySubject[link.TeacherID], link.SubjectID)
	}

	out := make([]scheduler.Faculty, 0, len(rows))
	for _, teacher := range rows {
		out = append(out, scheduler.Faculty{
			ID:         teacher.ID,
			Name:       teacher.FullName,
			MaxDay:     teacher.MaxDay,
			MaxWeek:    teacher.MaxWeek,
			LeaveAvg:   teacher.LeaveAvg,
			SubjectIDs: bySubject[teacher.ID],
		})
	}
	return out, nil
}

// Batches returns every class converted to the scheduler's batch view.
func (c *CatalogRepository) Batches(ctx context.Context) ([]scheduler.Batch, error) {
	rows, err := c.classes.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("catalog batches: %w", err)
	}
	out := make([]scheduler.Batch, 0, len(rows))
	for _, class := range rows {
		out = append(out, scheduler.Batch{
			ID:        class.ID,
			Name:      class.Name,
			Size:      class.Size,
			Programme: class.Programme,
			Semester:  class.Semester,
		})
	}
	return out, nil
}

// Subjects returns every subject converted to the scheduler's view, with
// Track standing in for the spec's subject "type".
func (c *CatalogRepository) Subjects(ctx context.Context) ([]scheduler.Subject, error) {
	rows, err := c.subjects.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("catalog subjects: %w", err)
	}
	out := make([]scheduler.Subject, 0, len(rows))
	for _, subject := range rows {
		out = append(out, scheduler.Subject{
			ID:        subject.ID,
			Code:      subject.Code,
			Name:      subject.Name,
			HoursWeek: subject.HoursWeek,
			Type:      subject.Track,
			Semester:  subject.Semester,
		})
	}
	return out, nil
}

// FixedSlots returns every pre-pinned batch/day/period assignment.
func (c *CatalogRepository) FixedSlots(ctx context.Context) ([]scheduler.FixedSlot, error) {
	rows, err := c.fixed.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("catalog fixed slots: %w", err)
	}
	out := make([]scheduler.FixedSlot, 0, len(rows))
	for _, slot := range rows {
		out = append(out, scheduler.FixedSlot{
			ID:      slot.ID,
			BatchID: slot.ClassID,
			Day:     slot.Day,
			Period:  slot.Period,
			RoomID:  slot.RoomID,
		})
	}
	return out, nil
}

var _ scheduler.Catalog = (*CatalogRepository)(nil)
