package gantt

import (
	"cmp"
	"math"
	"slices"
	"time"
)

type TaskType string

const (
	TypeTask      TaskType = "task"
	TypeSummary   TaskType = "summary"
	TypeMilestone TaskType = "milestone"
)

type Task struct {
	ID       int       `yaml:"id"`
	Text     string    `yaml:"text"`
	Start    time.Time `yaml:"start"`
	End      time.Time `yaml:"end,omitempty"`
	Duration int       `yaml:"duration,omitempty"` // whole days
	Progress int       `yaml:"progress,omitempty"` // percent
	Parent   int       `yaml:"parent,omitempty"`
	Type     TaskType  `yaml:"type,omitempty"`
}

// TaskPatch holds the fields an update-task command overwrites, nil fields are kept.
type TaskPatch struct {
	Text     *string
	Start    *time.Time
	End      *time.Time
	Duration *int
	Progress *int
	Parent   *int
	Type     *TaskType
}

func (p TaskPatch) apply(t Task) Task {
	if p.Text != nil {
		t.Text = *p.Text
	}
	if p.Start != nil {
		t.Start = *p.Start
	}
	if p.End != nil {
		t.End = *p.End
		// the end wins over a stale duration
		if p.Duration == nil {
			t.Duration = 0
		}
	}
	if p.Duration != nil {
		t.Duration = *p.Duration
		if p.End == nil {
			t.End = time.Time{}
		}
	}
	if p.Progress != nil {
		t.Progress = *p.Progress
	}
	if p.Parent != nil {
		t.Parent = *p.Parent
	}
	if p.Type != nil {
		t.Type = *p.Type
	}
	return t
}

func days(from, to time.Time) int {
	return int(math.Round(to.Sub(from).Hours() / 24))
}

// normalize fills End or Duration from the other, clamps progress, spans
// summaries over their children and sorts by start then id.
func normalize(tasks []Task) []Task {
	out := make([]Task, len(tasks))
	children := make(map[int][]int)

	for i, t := range tasks {
		if t.Type == "" {
			t.Type = TypeTask
		}

		switch {
		case t.Type == TypeMilestone:
			t.End = t.Start
			t.Duration = 0
		case !t.End.IsZero():
			t.Duration = max(days(t.Start, t.End), 0)
		default:
			t.End = t.Start.AddDate(0, 0, t.Duration)
		}

		t.Progress = min(max(t.Progress, 0), 100)

		out[i] = t
		if t.Parent != 0 {
			children[t.Parent] = append(children[t.Parent], i)
		}
	}

	index := make(map[int]int, len(out))
	for i, t := range out {
		index[t.ID] = i
	}

	done := make(map[int]bool)
	var span func(i int, path map[int]bool)
	span = func(i int, path map[int]bool) {
		t := &out[i]
		if done[t.ID] || path[t.ID] {
			return
		}
		path[t.ID] = true
		defer delete(path, t.ID)

		kids := children[t.ID]
		for _, k := range kids {
			span(k, path)
		}
		done[t.ID] = true

		if t.Type != TypeSummary || len(kids) == 0 {
			return
		}

		start, end := out[kids[0]].Start, out[kids[0]].End
		for _, k := range kids[1:] {
			if out[k].Start.Before(start) {
				start = out[k].Start
			}
			if out[k].End.After(end) {
				end = out[k].End
			}
		}
		t.Start, t.End = start, end
		t.Duration = max(days(start, end), 0)
	}

	for _, t := range out {
		span(index[t.ID], map[int]bool{})
	}

	slices.SortStableFunc(out, func(a, b Task) int {
		if c := a.Start.Compare(b.Start); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})

	return out
}

// descendants returns id and the ids of every task below it.
func descendants(tasks []Task, id int) map[int]bool {
	out := map[int]bool{id: true}

	for grew := true; grew; {
		grew = false
		for _, t := range tasks {
			if t.Parent != 0 && out[t.Parent] && !out[t.ID] {
				out[t.ID] = true
				grew = true
			}
		}
	}

	return out
}

func nextID(tasks []Task) int {
	id := 0
	for _, t := range tasks {
		id = max(id, t.ID)
	}
	return id + 1
}
