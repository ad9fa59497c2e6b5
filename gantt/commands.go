package gantt

import (
	"context"
	"fmt"
	"slices"

	"github.com/AnatoleLucet/sigstore"
)

type Action string

const (
	ActionAddTask    Action = "add-task"
	ActionUpdateTask Action = "update-task"
	ActionDeleteTask Action = "delete-task"
	ActionMoveTask   Action = "move-task"
	ActionSelectTask Action = "select-task"
)

func (a Action) String() string { return string(a) }

// Actions lists the built-in commands.
func Actions() []Action {
	return []Action{ActionAddTask, ActionUpdateTask, ActionDeleteTask, ActionMoveTask, ActionSelectTask}
}

// AddTask is the add-task payload. The assigned id is written back to Task.ID.
type AddTask struct {
	Task *Task
}

type UpdateTask struct {
	ID    int
	Patch TaskPatch
}

type DeleteTask struct {
	ID int
}

// MoveTask shifts a task and its children by Days.
type MoveTask struct {
	ID   int
	Days int
}

// SelectTask replaces the selection with ID, or toggles ID when Toggle is set.
type SelectTask struct {
	ID     int
	Toggle bool
}

type builtin struct{}

func (g *Gantt) registerCommands() {
	g.bus.On(string(ActionAddTask), sigstore.Handle(atomic(g, g.addTask)), builtin{})
	g.bus.On(string(ActionUpdateTask), sigstore.Handle(atomic(g, g.updateTask)), builtin{})
	g.bus.On(string(ActionDeleteTask), sigstore.Handle(atomic(g, g.deleteTask)), builtin{})
	g.bus.On(string(ActionMoveTask), sigstore.Handle(atomic(g, g.moveTask)), builtin{})
	g.bus.On(string(ActionSelectTask), sigstore.Handle(atomic(g, g.selectTask)), builtin{})
}

// atomic runs a command inside a store batch. The batch holds the store for
// the whole handler, so its reads and its write cannot interleave with
// another command.
func atomic[P any](g *Gantt, fn func(context.Context, P) (bool, error)) func(context.Context, P) (bool, error) {
	return func(ctx context.Context, p P) (bool, error) {
		var ok bool
		var err error

		if berr := g.store.Batch(func() { ok, err = fn(ctx, p) }); berr != nil {
			return false, berr
		}
		return ok, err
	}
}

func (g *Gantt) rawTasks() []Task {
	return get[[]Task](g.store, fieldTasks)
}

func (g *Gantt) find(tasks []Task, id int) (int, error) {
	i := slices.IndexFunc(tasks, func(t Task) bool { return t.ID == id })
	if i < 0 {
		return -1, fmt.Errorf("%w: %d", ErrTaskNotFound, id)
	}
	return i, nil
}

func (g *Gantt) addTask(_ context.Context, p AddTask) (bool, error) {
	if p.Task == nil {
		return false, fmt.Errorf("%w: add-task without task", sigstore.ErrInvalidPayload)
	}

	tasks := g.rawTasks()
	if p.Task.ID == 0 {
		p.Task.ID = nextID(tasks)
	} else if _, err := g.find(tasks, p.Task.ID); err == nil {
		return false, fmt.Errorf("%w: duplicate task id %d", sigstore.ErrInvalidPayload, p.Task.ID)
	}
	if p.Task.Parent != 0 {
		if _, err := g.find(tasks, p.Task.Parent); err != nil {
			return false, err
		}
	}

	return true, g.store.SetState(map[string]any{
		fieldTasks: append(slices.Clone(tasks), *p.Task),
	})
}

func (g *Gantt) updateTask(_ context.Context, p UpdateTask) (bool, error) {
	tasks := slices.Clone(g.rawTasks())
	i, err := g.find(tasks, p.ID)
	if err != nil {
		return false, err
	}

	tasks[i] = p.Patch.apply(tasks[i])
	return true, g.store.SetState(map[string]any{fieldTasks: tasks})
}

func (g *Gantt) deleteTask(_ context.Context, p DeleteTask) (bool, error) {
	tasks := g.rawTasks()
	if _, err := g.find(tasks, p.ID); err != nil {
		return false, err
	}

	gone := descendants(tasks, p.ID)
	kept := slices.DeleteFunc(slices.Clone(tasks), func(t Task) bool { return gone[t.ID] })
	selected := slices.DeleteFunc(slices.Clone(get[[]int](g.store, fieldSelected)), func(id int) bool { return gone[id] })

	return true, g.store.SetState(map[string]any{fieldTasks: kept, fieldSelected: selected})
}

func (g *Gantt) moveTask(_ context.Context, p MoveTask) (bool, error) {
	tasks := slices.Clone(g.rawTasks())
	if _, err := g.find(tasks, p.ID); err != nil {
		return false, err
	}
	if p.Days == 0 {
		return true, nil
	}

	moved := descendants(tasks, p.ID)
	for i, t := range tasks {
		if !moved[t.ID] {
			continue
		}
		t.Start = t.Start.AddDate(0, 0, p.Days)
		if !t.End.IsZero() {
			t.End = t.End.AddDate(0, 0, p.Days)
		}
		tasks[i] = t
	}

	return true, g.store.SetState(map[string]any{fieldTasks: tasks})
}

func (g *Gantt) selectTask(_ context.Context, p SelectTask) (bool, error) {
	if _, err := g.find(g.rawTasks(), p.ID); err != nil {
		return false, err
	}

	selected := []int{p.ID}
	if p.Toggle {
		current := get[[]int](g.store, fieldSelected)
		if slices.Contains(current, p.ID) {
			selected = slices.DeleteFunc(slices.Clone(current), func(id int) bool { return id == p.ID })
		} else {
			selected = append(slices.Clone(current), p.ID)
		}
	}

	return true, g.store.SetState(map[string]any{fieldSelected: selected})
}
