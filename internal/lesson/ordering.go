package lesson

import (
	"cmp"
	"errors"
	"slices"

	"github.com/Juenzo/CloudComputing-Project/internal/model"
)

// ErrLessonNotInCourse is returned by Reorder when the moved lesson is not in
// the given list.
var ErrLessonNotInCourse = errors.New("lesson does not belong to this course")

// NextOrder returns the order a lesson appended to existing should get:
// 0 for an empty course, otherwise one past the highest order in use.
func NextOrder(existing []model.Lesson) int {
	next := 0
	for _, l := range existing {
		if l.Order >= next {
			next = l.Order + 1
		}
	}
	return next
}

// Sort returns lessons in display order: ascending Order, equal Order values
// keeping their relative input sequence. The input is not modified.
func Sort(lessons []model.Lesson) []model.Lesson {
	out := slices.Clone(lessons)
	slices.SortStableFunc(out, func(a, b model.Lesson) int {
		return cmp.Compare(a.Order, b.Order)
	})
	return out
}

// Reorder moves the lesson movedID to newIndex in display order and returns
// the list renumbered densely from 0. newIndex is clamped to the list bounds.
func Reorder(lessons []model.Lesson, movedID int64, newIndex int) ([]model.Lesson, error) {
	sorted := Sort(lessons)

	from := slices.IndexFunc(sorted, func(l model.Lesson) bool { return l.ID == movedID })
	if from < 0 {
		return nil, ErrLessonNotInCourse
	}

	moved := sorted[from]
	sorted = slices.Delete(sorted, from, from+1)

	newIndex = max(0, min(newIndex, len(sorted)))
	sorted = slices.Insert(sorted, newIndex, moved)

	for i := range sorted {
		sorted[i].Order = i
	}
	return sorted, nil
}
