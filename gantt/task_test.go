package gantt

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func ids(tasks []Task) []int {
	out := make([]int, len(tasks))
	for i, t := range tasks {
		out[i] = t.ID
	}
	return out
}

func TestNormalize(t *testing.T) {
	t.Run("fills end and duration", func(t *testing.T) {
		tasks := normalize([]Task{
			{ID: 1, Start: date(2024, 3, 4), Duration: 5},
			{ID: 2, Start: date(2024, 3, 4), End: date(2024, 3, 6)},
			{ID: 3, Start: date(2024, 3, 4), End: date(2024, 3, 9), Type: TypeMilestone},
			{ID: 4, Start: date(2024, 3, 4), End: date(2024, 3, 1), Progress: 140},
		})

		assert.Equal(t, date(2024, 3, 9), tasks[0].End)
		assert.Equal(t, 2, tasks[1].Duration)
		assert.Equal(t, TypeTask, tasks[1].Type)
		assert.Equal(t, date(2024, 3, 4), tasks[2].End)
		assert.Equal(t, 0, tasks[2].Duration)
		assert.Equal(t, 0, tasks[3].Duration)
		assert.Equal(t, 100, tasks[3].Progress)
	})

	t.Run("sorts by start then id", func(t *testing.T) {
		tasks := normalize([]Task{
			{ID: 3, Start: date(2024, 3, 5)},
			{ID: 2, Start: date(2024, 3, 4)},
			{ID: 1, Start: date(2024, 3, 5)},
		})

		assert.Equal(t, []int{2, 1, 3}, ids(tasks))
	})

	t.Run("summaries span their children", func(t *testing.T) {
		tasks := normalize([]Task{
			{ID: 1, Type: TypeSummary},
			{ID: 2, Parent: 1, Type: TypeSummary},
			{ID: 3, Parent: 2, Start: date(2024, 3, 6), Duration: 2},
			{ID: 4, Parent: 1, Start: date(2024, 3, 4), Duration: 1},
		})

		byID := map[int]Task{}
		for _, task := range tasks {
			byID[task.ID] = task
		}

		assert.Equal(t, date(2024, 3, 6), byID[2].Start)
		assert.Equal(t, date(2024, 3, 8), byID[2].End)
		assert.Equal(t, date(2024, 3, 4), byID[1].Start)
		assert.Equal(t, date(2024, 3, 8), byID[1].End)
		assert.Equal(t, 4, byID[1].Duration)
	})

	t.Run("parent cycles do not loop", func(t *testing.T) {
		tasks := normalize([]Task{
			{ID: 1, Parent: 2, Type: TypeSummary, Start: date(2024, 3, 4)},
			{ID: 2, Parent: 1, Type: TypeSummary, Start: date(2024, 3, 5)},
		})

		assert.Len(t, tasks, 2)
	})
}

func TestTaskPatch(t *testing.T) {
	base := Task{ID: 1, Text: "a", Start: date(2024, 3, 4), End: date(2024, 3, 6), Duration: 2}

	duration := 4
	patched := TaskPatch{Duration: &duration}.apply(base)
	assert.Equal(t, 4, patched.Duration)
	assert.True(t, patched.End.IsZero())

	end := date(2024, 3, 10)
	patched = TaskPatch{End: &end}.apply(base)
	assert.Equal(t, end, patched.End)
	assert.Equal(t, 0, patched.Duration)

	text := "b"
	patched = TaskPatch{Text: &text}.apply(base)
	assert.Equal(t, "b", patched.Text)
	assert.Equal(t, base.End, patched.End)
}

func TestDescendants(t *testing.T) {
	tasks := []Task{{ID: 1}, {ID: 2, Parent: 1}, {ID: 3, Parent: 2}, {ID: 4}}

	assert.Equal(t, map[int]bool{1: true, 2: true, 3: true}, descendants(tasks, 1))
	assert.Equal(t, 5, nextID(tasks))
	assert.Equal(t, 1, nextID(nil))
}
