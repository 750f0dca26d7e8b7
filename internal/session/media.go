package session

import "context"

// MediaStream is an acquired local media handle. Stop must be safe to call
// once per acquired stream on every coordinator exit path.
type MediaStream interface {
	Stop()
}

// MediaAcquirer obtains local media (camera/microphone equivalent) for a
// session attempt. Acquisition honors ctx cancellation so an abandoned start
// never leaks a live stream.
type MediaAcquirer interface {
	Acquire(ctx context.Context) (MediaStream, error)
}

// MediaAcquirerFunc adapts a function to the MediaAcquirer interface.
type MediaAcquirerFunc func(ctx context.Context) (MediaStream, error)

func (f MediaAcquirerFunc) Acquire(ctx context.Context) (MediaStream, error) {
	return f(ctx)
}
