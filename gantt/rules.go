package gantt

import (
	"slices"
	"time"

	"github.com/AnatoleLucet/sigstore"
)

const (
	fieldTasks     = "tasks"
	fieldStart     = "start"
	fieldEnd       = "end"
	fieldScales    = "scales"
	fieldUnit      = "scales.unit"
	fieldStep      = "scales.step"
	fieldCellWidth = "cellWidth"
	fieldSelected  = "selected"

	fieldNormalized = "_tasks"
	fieldRangeStart = "_start"
	fieldRangeEnd   = "_end"
	fieldScale      = "_scales"
	fieldBars       = "_bars"
	fieldSelection  = "_selected"
)

// get reads a value of type T, the zero value when missing or of another type.
func get[T any](f interface{ Get(string) any }, name string) T {
	v, _ := f.Get(name).(T)
	return v
}

func unitOf(v any) Unit {
	switch u := v.(type) {
	case Unit:
		return u
	case string:
		if parsed, err := ParseUnit(u); err == nil {
			return parsed
		}
	}
	return Day
}

func stepOf(v any) int {
	if n, ok := v.(int); ok && n > 0 {
		return n
	}
	return 1
}

func routes() []sigstore.Rule {
	return []sigstore.Rule{
		{
			Name: "normalize",
			In:   []string{fieldTasks},
			Out:  []string{fieldNormalized},
			Exec: func(f *sigstore.Flush) error {
				f.Set(map[string]any{fieldNormalized: normalize(get[[]Task](f, fieldTasks))})
				return nil
			},
		},
		{
			Name: "range",
			In:   []string{fieldNormalized, fieldStart, fieldEnd, fieldUnit},
			Out:  []string{fieldRangeStart, fieldRangeEnd},
			Exec: func(f *sigstore.Flush) error {
				start, end := timelineRange(
					get[[]Task](f, fieldNormalized),
					get[time.Time](f, fieldStart),
					get[time.Time](f, fieldEnd),
					unitOf(f.Get(fieldUnit)),
				)
				f.Set(map[string]any{fieldRangeStart: start, fieldRangeEnd: end})
				return nil
			},
		},
		{
			Name: "scales",
			In:   []string{fieldRangeStart, fieldRangeEnd, fieldScales, fieldCellWidth},
			Out:  []string{fieldScale},
			Exec: func(f *sigstore.Flush) error {
				unit, step := unitOf(f.Get(fieldUnit)), stepOf(f.Get(fieldStep))
				n := cells(get[time.Time](f, fieldRangeStart), get[time.Time](f, fieldRangeEnd), unit, step)

				f.Set(map[string]any{fieldScale: Scale{
					Unit:  unit,
					Step:  step,
					Cells: n,
					Width: n * get[int](f, fieldCellWidth),
				}})
				return nil
			},
		},
		{
			Name: "bars",
			In:   []string{fieldNormalized, fieldRangeStart, fieldScale, fieldCellWidth},
			Out:  []string{fieldBars},
			Exec: func(f *sigstore.Flush) error {
				tasks := get[[]Task](f, fieldNormalized)
				start := get[time.Time](f, fieldRangeStart)
				scale := get[Scale](f, fieldScale)
				width := get[int](f, fieldCellWidth)

				bars := make(map[int]Bar, len(tasks))
				for _, t := range tasks {
					bars[t.ID] = bar(t, start, scale, width)
				}
				f.Set(map[string]any{fieldBars: bars})
				return nil
			},
		},
		{
			Name: "selection",
			In:   []string{fieldSelected, fieldNormalized},
			Out:  []string{fieldSelection},
			Exec: func(f *sigstore.Flush) error {
				f.Set(map[string]any{fieldSelection: selection(
					get[[]int](f, fieldSelected),
					get[[]Task](f, fieldNormalized),
				)})
				return nil
			},
		},
	}
}

// timelineRange returns the explicit bounds when set, otherwise the task span
// padded by one unit on each side.
func timelineRange(tasks []Task, start, end time.Time, u Unit) (time.Time, time.Time) {
	if len(tasks) == 0 || (!start.IsZero() && !end.IsZero()) {
		return start, end
	}

	lo, hi := tasks[0].Start, tasks[0].End
	for _, t := range tasks[1:] {
		if t.Start.Before(lo) {
			lo = t.Start
		}
		if t.End.After(hi) {
			hi = t.End
		}
	}

	if start.IsZero() {
		start = add(align(lo, u), u, -1)
	}
	if end.IsZero() {
		end = add(ceil(hi, u), u, 1)
	}
	return start, end
}

// selection keeps the selected ids that still exist, once each.
func selection(selected []int, tasks []Task) []int {
	out := make([]int, 0, len(selected))
	for _, id := range selected {
		if slices.Contains(out, id) {
			continue
		}
		if slices.ContainsFunc(tasks, func(t Task) bool { return t.ID == id }) {
			out = append(out, id)
		}
	}
	return out
}
