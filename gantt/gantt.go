// Package gantt is the headless data layer of a Gantt chart: tasks, the
// timeline they span, the scale grid, bar geometry and selection, kept
// consistent by a sigstore route table and driven by commands.
package gantt

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/AnatoleLucet/sigstore"
)

var (
	ErrTaskNotFound = errors.New("task not found")
	ErrUnknownUnit  = errors.New("unknown scale unit")
)

const DefaultCellWidth = 40

// Config is the initial state of a chart.
type Config struct {
	Tasks     []Task    `yaml:"tasks"`
	Start     time.Time `yaml:"start,omitempty"`
	End       time.Time `yaml:"end,omitempty"`
	Unit      Unit      `yaml:"unit,omitempty"`
	Step      int       `yaml:"step,omitempty"`
	CellWidth int       `yaml:"cellWidth,omitempty"`
	Selected  []int     `yaml:"selected,omitempty"`
}

type options struct {
	log   *zap.Logger
	store []sigstore.Option
}

type Option func(*options)

func WithLogger(log *zap.Logger) Option {
	return func(o *options) { o.log = log }
}

// WithStoreOptions passes options to the underlying store.
func WithStoreOptions(opts ...sigstore.Option) Option {
	return func(o *options) { o.store = append(o.store, opts...) }
}

type Gantt struct {
	store *sigstore.Store
	bus   *sigstore.Bus

	log *zap.Logger
}

func New(cfg Config, opts ...Option) (*Gantt, error) {
	o := &options{log: zap.NewNop()}
	for _, opt := range opts {
		opt(o)
	}

	if cfg.Unit == "" {
		cfg.Unit = Day
	}
	if _, err := ParseUnit(string(cfg.Unit)); err != nil {
		return nil, err
	}
	if cfg.Step <= 0 {
		cfg.Step = 1
	}
	if cfg.CellWidth <= 0 {
		cfg.CellWidth = DefaultCellWidth
	}

	storeOpts := append([]sigstore.Option{sigstore.WithLogger(o.log)}, o.store...)
	store, err := sigstore.New(map[string]any{
		fieldTasks:     cfg.Tasks,
		fieldStart:     cfg.Start,
		fieldEnd:       cfg.End,
		fieldScales:    map[string]any{"unit": cfg.Unit, "step": cfg.Step},
		fieldCellWidth: cfg.CellWidth,
		fieldSelected:  cfg.Selected,
	}, routes(), storeOpts...)
	if err != nil {
		return nil, err
	}

	g := &Gantt{
		store: store,
		bus:   sigstore.NewBus(sigstore.WithLogger(o.log)),
		log:   o.log.Named("gantt"),
	}
	g.registerCommands()

	return g, nil
}

// Exec dispatches a command through the handler chain.
func (g *Gantt) Exec(ctx context.Context, action Action, payload any) error {
	g.log.Debug("exec", zap.Stringer("action", action))
	return g.bus.Exec(ctx, string(action), payload)
}

// On registers a handler running after the built-in one.
func (g *Gantt) On(action Action, fn sigstore.Handler, tag ...any) {
	g.bus.On(string(action), fn, tag...)
}

// Intercept registers a handler running before the built-in one,
// returning false from it cancels the command.
func (g *Gantt) Intercept(action Action, fn sigstore.Handler, tag ...any) {
	g.bus.Intercept(string(action), fn, tag...)
}

func (g *Gantt) Detach(tag any) { g.bus.Detach(tag) }

// SetNext forwards every command that went through the chain to next.
func (g *Gantt) SetNext(next sigstore.Dispatcher) { g.bus.SetNext(next) }

func (g *Gantt) GetState() map[string]any { return g.store.GetState() }

func (g *Gantt) GetReactiveState() map[string]*sigstore.Field { return g.store.GetReactive() }

// Store exposes the underlying store, for subscriptions and raw writes.
func (g *Gantt) Store() *sigstore.Store { return g.store }

// Tasks returns the normalized tasks, sorted by start.
func (g *Gantt) Tasks() []Task { return get[[]Task](g.store, fieldNormalized) }

// Task returns the normalized task with the given id.
func (g *Gantt) Task(id int) (Task, bool) {
	for _, t := range g.Tasks() {
		if t.ID == id {
			return t, true
		}
	}
	return Task{}, false
}

// Range returns the visible timeline bounds.
func (g *Gantt) Range() (time.Time, time.Time) {
	return get[time.Time](g.store, fieldRangeStart), get[time.Time](g.store, fieldRangeEnd)
}

func (g *Gantt) Scale() Scale { return get[Scale](g.store, fieldScale) }

func (g *Gantt) Bars() map[int]Bar { return get[map[int]Bar](g.store, fieldBars) }

func (g *Gantt) Selected() []int { return get[[]int](g.store, fieldSelection) }

// SetScale changes the grid unit and step.
func (g *Gantt) SetScale(unit Unit, step int) error {
	if _, err := ParseUnit(string(unit)); err != nil {
		return err
	}
	return g.store.SetState(map[string]any{fieldScales: map[string]any{"unit": unit, "step": max(step, 1)}})
}

// SetRange pins the timeline bounds, zero values fall back to the task span.
func (g *Gantt) SetRange(start, end time.Time) error {
	return g.store.SetState(map[string]any{fieldStart: start, fieldEnd: end})
}

func (g *Gantt) SetCellWidth(width int) error {
	if width <= 0 {
		width = DefaultCellWidth
	}
	return g.store.SetState(map[string]any{fieldCellWidth: width})
}

// Load replaces every task and clears the selection.
func (g *Gantt) Load(tasks []Task) error {
	return g.store.SetState(map[string]any{fieldTasks: tasks, fieldSelected: []int{}})
}

func (g *Gantt) Close() { g.store.Close() }
