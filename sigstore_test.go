package sigstore

import (
	"context"
	"fmt"
)

func ExampleStore() {
	s, _ := New(map[string]any{"start": 10, "end": 20}, []Rule{{
		In:  []string{"start", "end"},
		Out: []string{"range"},
		Exec: func(f *Flush) error {
			f.Set(map[string]any{"range": f.Get("end").(int) - f.Get("start").(int)})
			return nil
		},
	}})
	defer s.Close()

	s.Field("range").Subscribe(func(v any) {
		fmt.Println("range", v)
	}, true)

	s.SetState(map[string]any{"end": 25})
	fmt.Println(s.Get("range"))

	// Output:
	// range 10
	// range 15
	// 15
}

func ExampleBus() {
	bus := NewBus()
	bus.Intercept("delete-task", func(ctx context.Context, payload any) (bool, error) {
		fmt.Println("confirm delete", payload)
		return payload != 1, nil
	})
	bus.On("delete-task", func(ctx context.Context, payload any) (bool, error) {
		fmt.Println("deleted", payload)
		return true, nil
	})

	bus.Exec(context.Background(), "delete-task", 1)
	bus.Exec(context.Background(), "delete-task", 2)

	// Output:
	// confirm delete 1
	// confirm delete 2
	// deleted 2
}
