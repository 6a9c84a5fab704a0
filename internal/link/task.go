package link

import "context"

// Task is a handle on a movement running in the background
type Task struct {
	cancel context.CancelFunc
	done   chan struct{}
	err    error
}

// Cancel stops the movement after its current tick. It does not wait, use Wait for that.
func (t *Task) Cancel() {
	t.cancel()
}

// Done is closed when the movement has stopped
func (t *Task) Done() <-chan struct{} {
	return t.done
}

// Wait blocks until the movement stops and returns its result.
// A cancelled task returns context.Canceled.
func (t *Task) Wait() error {
	<-t.done
	return t.err
}

func (s *Sender) start(ctx context.Context, fn func(ctx context.Context) error) (*Task, error) {
	s.tasksMu.Lock()
	defer s.tasksMu.Unlock()

	if s.closed {
		return nil, ErrSenderClosed
	}

	ctx, cancel := context.WithCancel(ctx)
	t := &Task{cancel: cancel, done: make(chan struct{})}

	s.tasks.Add(1)
	go func() {
		defer s.tasks.Done()
		defer close(t.done)
		defer cancel()

		t.err = fn(ctx)
	}()

	return t, nil
}
