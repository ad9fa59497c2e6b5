package gantt

import (
	"fmt"
	"math"
	"time"
)

type Unit string

const (
	Day   Unit = "day"
	Week  Unit = "week"
	Month Unit = "month"
)

func ParseUnit(s string) (Unit, error) {
	switch u := Unit(s); u {
	case Day, Week, Month:
		return u, nil
	case "":
		return Day, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownUnit, s)
	}
}

// Scale is the timeline grid: Cells columns of Step units, Width pixels wide.
type Scale struct {
	Unit  Unit
	Step  int
	Cells int
	Width int
}

// Bar is the horizontal geometry of a task in pixels from the timeline start.
type Bar struct {
	Left  int
	Width int
}

// align moves t back to the start of its unit.
func align(t time.Time, u Unit) time.Time {
	y, m, d := t.Date()
	day := time.Date(y, m, d, 0, 0, 0, 0, t.Location())

	switch u {
	case Week:
		// weeks start on monday
		offset := (int(day.Weekday()) + 6) % 7
		return day.AddDate(0, 0, -offset)
	case Month:
		return time.Date(y, m, 1, 0, 0, 0, 0, t.Location())
	default:
		return day
	}
}

// ceil moves t forward to the next unit start, unless it already is one.
func ceil(t time.Time, u Unit) time.Time {
	a := align(t, u)
	if a.Equal(t) {
		return a
	}
	return add(a, u, 1)
}

func add(t time.Time, u Unit, n int) time.Time {
	switch u {
	case Week:
		return t.AddDate(0, 0, 7*n)
	case Month:
		return t.AddDate(0, n, 0)
	default:
		return t.AddDate(0, 0, n)
	}
}

// maxCells bounds the grid so a wild date cannot spin the scale loops.
const maxCells = 100_000

// cells counts the steps needed to cover [start, end).
func cells(start, end time.Time, u Unit, step int) int {
	n := 0
	for cur := start; cur.Before(end) && n < maxCells; cur = add(cur, u, step) {
		n++
	}
	return n
}

// position returns the fractional cell index of t on a grid starting at start.
func position(start, t time.Time, u Unit, step int) float64 {
	if t.Before(start) {
		first := add(start, u, step)
		return t.Sub(start).Seconds() / first.Sub(start).Seconds()
	}

	n := 0
	cur := start
	for n < maxCells {
		next := add(cur, u, step)
		if next.After(t) {
			return float64(n) + t.Sub(cur).Seconds()/next.Sub(cur).Seconds()
		}
		cur = next
		n++
	}
	return float64(n)
}

func bar(t Task, start time.Time, s Scale, cellWidth int) Bar {
	left := int(math.Round(position(start, t.Start, s.Unit, s.Step) * float64(cellWidth)))
	right := int(math.Round(position(start, t.End, s.Unit, s.Step) * float64(cellWidth)))

	return Bar{Left: left, Width: max(right-left, 0)}
}
