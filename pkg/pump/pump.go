// Package pump bridges a polled byte transport to the protocol decoder.
// A dedicated goroutine drains the transport, feeds the framer, and hands
// raw chunks and completed frames to the presentation context over
// ordered channels. The framer's buffer is owned by that goroutine alone.
package pump

import (
	"context"
	"sync"
	"time"

	"hht-term/pkg/protocol"
)

const (
	// idleSleep bounds latency when the line is quiet. The protocol runs
	// at low data rates, so polling wins over edge-triggered wakeups.
	idleSleep = 5 * time.Millisecond

	readBufSize = 4096
	queueDepth  = 64
)

// Transport is the byte source and sink the pump drains. Available must
// not block; Read returns however many bytes are ready, up to len(p).
type Transport interface {
	Available() (int, error)
	Read(p []byte) (int, error)
	Write(p []byte) (int, error)
}

// Pump owns the reader goroutine and the handoff channels. Frames and
// chunks are delivered in arrival order and never dropped; a slow
// consumer backpressures the reader instead.
type Pump struct {
	transport Transport
	framer    *protocol.Framer
	frames    chan []byte
	raw       chan []byte
	wg        sync.WaitGroup
}

// New creates a pump for the given transport.
func New(t Transport) *Pump {
	return &Pump{
		transport: t,
		framer:    protocol.NewFramer(),
		frames:    make(chan []byte, queueDepth),
		raw:       make(chan []byte, queueDepth),
	}
}

// Frames returns the ordered stream of completed frames.
func (p *Pump) Frames() <-chan []byte {
	return p.frames
}

// Raw returns the ordered stream of chunks exactly as read, for the
// traffic log.
func (p *Pump) Raw() <-chan []byte {
	return p.raw
}

// Start launches the reader goroutine. It runs until ctx is cancelled,
// finishing any in-flight read before exiting, then closes both channels.
func (p *Pump) Start(ctx context.Context) {
	p.wg.Add(1)
	go p.run(ctx)
}

// Wait blocks until the reader goroutine has exited.
func (p *Pump) Wait() {
	p.wg.Wait()
}

func (p *Pump) run(ctx context.Context) {
	defer p.wg.Done()
	defer close(p.frames)
	defer close(p.raw)

	buf := make([]byte, readBufSize)

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		avail, err := p.transport.Available()
		if err != nil || avail == 0 {
			// Transient read-side errors and quiet lines both resolve by
			// polling again; the framer self-heals across any gap.
			if !p.sleep(ctx) {
				return
			}
			continue
		}

		if avail > len(buf) {
			avail = len(buf)
		}
		n, err := p.transport.Read(buf[:avail])
		if err != nil || n == 0 {
			if !p.sleep(ctx) {
				return
			}
			continue
		}

		chunk := make([]byte, n)
		copy(chunk, buf[:n])

		if !p.deliver(ctx, p.raw, chunk) {
			return
		}
		for _, frame := range p.framer.Feed(chunk) {
			if !p.deliver(ctx, p.frames, frame) {
				return
			}
		}
	}
}

func (p *Pump) deliver(ctx context.Context, ch chan<- []byte, b []byte) bool {
	select {
	case ch <- b:
		return true
	case <-ctx.Done():
		return false
	}
}

func (p *Pump) sleep(ctx context.Context) bool {
	select {
	case <-time.After(idleSleep):
		return true
	case <-ctx.Done():
		return false
	}
}
