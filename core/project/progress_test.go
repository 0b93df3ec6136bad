package project

import "testing"

func TestProgress(t *testing.T) {
	mkTasks := func(weights ...float64) []Task {
		tasks := make([]Task, 0, len(weights))
		for i, w := range weights {
			tasks = append(tasks, Task{ID: i + 1, Weight: w})
		}
		return tasks
	}

	tests := []struct {
		name     string
		tasks    []Task
		approved map[int]bool
		want     int
	}{
		{name: "no tasks", tasks: nil, approved: nil, want: 0},
		{name: "zero total weight", tasks: mkTasks(0, 0), approved: map[int]bool{1: true}, want: 0},
		{name: "nothing approved", tasks: mkTasks(50, 50), approved: nil, want: 0},
		{name: "all approved", tasks: mkTasks(10, 20, 70), approved: map[int]bool{1: true, 2: true, 3: true}, want: 100},
		{name: "partial grouped", tasks: mkTasks(10, 20, 25, 45), approved: map[int]bool{1: true}, want: 10},
		{name: "partial flat", tasks: mkTasks(50, 30, 20), approved: map[int]bool{1: true, 3: true}, want: 70},
		{name: "rounds half up", tasks: mkTasks(1, 1, 1), approved: map[int]bool{1: true}, want: 33},
		{name: "rounds half up boundary", tasks: mkTasks(1, 1, 1, 1, 1, 1, 1, 1), approved: map[int]bool{1: true, 2: true, 3: true}, want: 38},
		{name: "uneven weights", tasks: mkTasks(3, 7), approved: map[int]bool{1: true}, want: 30},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Progress(tt.tasks, tt.approved); got != tt.want {
				t.Errorf("Progress() = %d, want %d", got, tt.want)
			}
		})
	}
}

// approving one more task never lowers the percentage
func TestProgressMonotonic(t *testing.T) {
	tasks := []Task{{ID: 1, Weight: 12}, {ID: 2, Weight: 33}, {ID: 3, Weight: 5}, {ID: 4, Weight: 50}}
	approved := map[int]bool{}
	prev := Progress(tasks, approved)
	for _, tsk := range tasks {
		approved[tsk.ID] = true
		got := Progress(tasks, approved)
		if got < prev {
			t.Fatalf("Progress() dropped from %d to %d after approving task %d", prev, got, tsk.ID)
		}
		prev = got
	}
	if prev != 100 {
		t.Errorf("Progress() with all tasks approved = %d, want 100", prev)
	}
}
