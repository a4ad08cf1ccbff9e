package worker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/phanxgames/glyphscape/dataset"
)

// ErrClosed is returned by Send after Close.
var ErrClosed = errors.New("worker: channel closed")

// queueSize is the number of requests that can wait for the worker.
const queueSize = 64

// Handler executes one request and returns its reply. An error is sent
// as an error reply.
type Handler interface {
	Handle(ctx context.Context, req Request) (Reply, error)
}

// HandlerFunc adapts a function to Handler.
type HandlerFunc func(ctx context.Context, req Request) (Reply, error)

// Handle calls f.
func (f HandlerFunc) Handle(ctx context.Context, req Request) (Reply, error) { return f(ctx, req) }

type job struct {
	seq uint64
	req Request
}

// Channel runs requests on a single worker goroutine, one at a time in the
// order they were sent. Every reply is offered to all pending senders.
type Channel struct {
	handler Handler
	jobs    chan job
	seq     atomic.Uint64

	mu      sync.Mutex
	subs    map[uint64]func(Reply)
	nextSub uint64

	ctx       context.Context
	cancel    context.CancelFunc
	done      chan struct{}
	closeOnce sync.Once
	wg        sync.WaitGroup
}

// NewChannel starts a worker goroutine running h.
func NewChannel(h Handler) *Channel {
	ctx, cancel := context.WithCancel(context.Background())
	c := &Channel{
		handler: h,
		jobs:    make(chan job, queueSize),
		subs:    map[uint64]func(Reply){},
		ctx:     ctx,
		cancel:  cancel,
		done:    make(chan struct{}),
	}
	c.wg.Add(1)
	go c.loop()
	return c
}

func (c *Channel) loop() {
	defer c.wg.Done()
	for {
		select {
		case <-c.done:
			return
		case j := <-c.jobs:
			r := c.run(j.req)
			r.Seq = j.seq
			if r.Type == ReplyError {
				logWarn("%s %s: %s", j.req.Type, j.req.File, r.Message)
			}
			c.broadcast(r)
		}
	}
}

// run executes one request. A handler panic becomes an error reply.
func (c *Channel) run(req Request) (r Reply) {
	defer func() {
		if p := recover(); p != nil {
			r = Reply{Type: ReplyError, File: req.File, Message: fmt.Sprintf("panic: %v", p)}
		}
	}()
	r, err := c.handler.Handle(c.ctx, req)
	if err != nil {
		return Reply{Type: ReplyError, File: req.File, Message: err.Error()}
	}
	return r
}

func (c *Channel) broadcast(r Reply) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, fn := range c.subs {
		fn(r)
	}
}

func (c *Channel) subscribe(fn func(Reply)) uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.nextSub++
	c.subs[c.nextSub] = fn
	return c.nextSub
}

func (c *Channel) unsubscribe(id uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.subs, id)
}

// Send queues req and waits for the first reply of type want accepted by
// match. A nil match accepts every reply of that type. An error reply to
// req itself rejects the call with a *ReplyError; error replies to other
// requests are ignored.
func (c *Channel) Send(ctx context.Context, req Request, want ReplyType, match func(Reply) bool) (Reply, error) {
	select {
	case <-c.done:
		return Reply{}, ErrClosed
	default:
	}
	seq := c.seq.Add(1)
	result := make(chan Reply, 1)
	id := c.subscribe(func(r Reply) {
		ok := r.Type == want && (match == nil || match(r))
		if !ok && r.Seq != seq {
			return
		}
		select {
		case result <- r:
		default:
		}
	})
	defer c.unsubscribe(id)

	select {
	case c.jobs <- job{seq: seq, req: req}:
	case <-ctx.Done():
		return Reply{}, ctx.Err()
	case <-c.done:
		return Reply{}, ErrClosed
	}

	select {
	case r := <-result:
		switch {
		case r.Type == want:
			return r, nil
		case r.Type == ReplyError:
			return Reply{}, &ReplyError{Message: r.Message}
		default:
			return Reply{}, fmt.Errorf("worker: %s: unexpected %s reply", req.Type, r.Type)
		}
	case <-ctx.Done():
		return Reply{}, ctx.Err()
	case <-c.done:
		return Reply{}, ErrClosed
	}
}

// Close stops the worker. Pending and later sends fail with ErrClosed.
func (c *Channel) Close() {
	c.closeOnce.Do(func() {
		close(c.done)
		c.cancel()
	})
	c.wg.Wait()
}

// Process uploads a CSV file and returns the collection the worker holds
// after processing it.
func (c *Channel) Process(ctx context.Context, fileName string, data []byte) (dataset.Collection, error) {
	r, err := c.Send(ctx, Request{Type: RequestProcess, File: fileName, Data: data}, ReplyProcessed, nil)
	if err != nil {
		return nil, err
	}
	return r.Dataset, nil
}

// Unzip uploads an archive and returns the folder it was unpacked into and
// the images found there.
func (c *Channel) Unzip(ctx context.Context, fileName string, data []byte) (string, []string, error) {
	r, err := c.Send(ctx, Request{Type: RequestUnzip, File: fileName, Data: data}, ReplyUnzipped, nil)
	if err != nil {
		return "", nil, err
	}
	return r.Folder, r.Images, nil
}

// FetchJSON reads a JSON file held by the worker into v.
func (c *Channel) FetchJSON(ctx context.Context, file string, v any) error {
	r, err := c.Send(ctx, Request{Type: RequestGetJSON, File: file}, ReplyJSON, matchFile(file))
	if err != nil {
		return err
	}
	if err := json.Unmarshal(r.Data, v); err != nil {
		return fmt.Errorf("worker: decode %s: %w", file, err)
	}
	return nil
}

// FetchThumb reads the raw bytes of a thumbnail held by the worker.
func (c *Channel) FetchThumb(ctx context.Context, file string) ([]byte, error) {
	r, err := c.Send(ctx, Request{Type: RequestGetThumb, File: file}, ReplyThumb, matchFile(file))
	if err != nil {
		return nil, err
	}
	return r.Data, nil
}

func matchFile(file string) func(Reply) bool {
	return func(r Reply) bool { return r.File == file }
}

// Source reads dataset files through a worker channel.
type Source struct {
	Channel *Channel
}

// ReadJSON implements dataset.Source. Files the worker cannot deliver are
// reported as dataset.ErrNoData.
func (s Source) ReadJSON(ctx context.Context, file string, v any) error {
	err := s.Channel.FetchJSON(ctx, file, v)
	var re *ReplyError
	if errors.As(err, &re) {
		return fmt.Errorf("%w: %s", dataset.ErrNoData, re.Message)
	}
	return err
}

var _ dataset.Source = Source{}
