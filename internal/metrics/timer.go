package metrics

import "time"

// Timer measures an operation and reports it as a timing metric on Stop.
type Timer struct {
	start     time.Time
	publisher Publisher
	name      string
	tags      []string
}

func NewTimer(publisher Publisher, name string, tags ...string) *Timer {
	return &Timer{
		publisher: publisher,
		name:      name,
		tags:      tags,
		start:     time.Now(),
	}
}

// Stop records the elapsed time and returns it.
func (t *Timer) Stop() time.Duration {
	d := time.Since(t.start)
	t.publisher.Timing(t.name, d, t.tags...)
	return d
}

// Elapsed returns the time since the timer started without recording.
func (t *Timer) Elapsed() time.Duration {
	return time.Since(t.start)
}
