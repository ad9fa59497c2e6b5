package internal

// NotifyQueue holds the fields changed during a flush, each at most once.
type NotifyQueue struct {
	fields []*Field
}

func NewNotifyQueue() *NotifyQueue {
	return &NotifyQueue{
		fields: make([]*Field, 0),
	}
}

func (q *NotifyQueue) Enqueue(f *Field) {
	if f.queued {
		return
	}
	f.queued = true

	q.fields = append(q.fields, f)
}

func (q *NotifyQueue) Len() int { return len(q.fields) }

// Notification is a field with the value it settled on.
type Notification struct {
	Field *Field
	Value any
}

// Take empties the queue and returns its fields in first-change order.
// Values are captured now, while the caller holds the store, so writes made
// after the flush cannot leak into its notifications.
func (q *NotifyQueue) Take() []Notification {
	fields := q.fields
	q.fields = make([]*Field, 0, len(fields))

	out := make([]Notification, len(fields))
	for i, f := range fields {
		f.queued = false
		out[i] = Notification{f, f.Value()}
	}

	return out
}

// Trigger notifies the subscribers of every field with its settled value.
func Trigger(notes []Notification) {
	for _, n := range notes {
		n.Field.notify(n.Value)
	}
}
