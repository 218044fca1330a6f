package apples

import "time"

// Ticker is a virtual clock that drives a fixed set of periodic tasks.
// It never spawns goroutines: the host calls Advance from its own loop and
// due tasks run synchronously, one at a time.
type Ticker struct {
	now     time.Duration
	tasks   []*task
	running bool
}

type task struct {
	name  string
	every time.Duration
	next  time.Duration
	left  time.Duration // time still owed when paused
	fn    func()
}

// NewTicker creates a stopped ticker with no tasks.
func NewTicker() *Ticker {
	return &Ticker{}
}

// Every registers a periodic task. Registration order breaks ties between
// tasks due at the same instant. Non-positive periods never fire.
func (t *Ticker) Every(name string, every time.Duration, fn func()) {
	tk := &task{name: name, every: every, fn: fn}
	if t.running {
		tk.next = t.now + every
	}
	t.tasks = append(t.tasks, tk)
}

// Start arms every task one period from now.
// Starting a running ticker re-arms it.
func (t *Ticker) Start() {
	for _, tk := range t.tasks {
		tk.next = t.now + tk.every
	}
	t.running = true
}

// Stop disarms every task. Pending fires are dropped, not queued.
func (t *Ticker) Stop() {
	t.running = false
}

// Pause disarms every task but remembers how long each had left.
// Pausing a stopped ticker does nothing.
func (t *Ticker) Pause() {
	if !t.running {
		return
	}
	for _, tk := range t.tasks {
		tk.left = tk.next - t.now
	}
	t.running = false
}

// Resume re-arms every task with the time it had left at Pause.
// Resuming a running ticker does nothing.
func (t *Ticker) Resume() {
	if t.running {
		return
	}
	for _, tk := range t.tasks {
		left := tk.left
		if left <= 0 || left > tk.every {
			left = tk.every
		}
		tk.next = t.now + left
		tk.left = 0
	}
	t.running = true
}

// Running reports whether tasks are armed.
func (t *Ticker) Running() bool {
	return t.running
}

// Now returns the virtual time accumulated by Advance.
func (t *Ticker) Now() time.Duration {
	return t.now
}

// Period returns the period of the named task, or 0 if it is unknown.
func (t *Ticker) Period(name string) time.Duration {
	if tk := t.find(name); tk != nil {
		return tk.every
	}
	return 0
}

// Reset changes the period of the named task and re-arms it from now.
func (t *Ticker) Reset(name string, every time.Duration) {
	tk := t.find(name)
	if tk == nil {
		return
	}
	tk.every = every
	tk.next = t.now + every
}

// Advance moves the clock forward by dt, running every task that falls due
// in due-time order. It returns the number of task invocations.
// A task that stops the ticker prevents any further fires in this call.
func (t *Ticker) Advance(dt time.Duration) int {
	if dt < 0 {
		dt = 0
	}
	target := t.now + dt
	fired := 0

	for t.running {
		tk := t.nextDue(target)
		if tk == nil {
			break
		}
		t.now = tk.next
		tk.next += tk.every
		tk.fn()
		fired++
	}

	t.now = target
	return fired
}

// nextDue returns the earliest task due at or before target.
func (t *Ticker) nextDue(target time.Duration) *task {
	var due *task
	for _, tk := range t.tasks {
		if tk.every <= 0 || tk.next > target {
			continue
		}
		if due == nil || tk.next < due.next {
			due = tk
		}
	}
	return due
}

func (t *Ticker) find(name string) *task {
	for _, tk := range t.tasks {
		if tk.name == name {
			return tk
		}
	}
	return nil
}
