package revision

import (
	"context"
	"io"

	"git.home.luguber.info/inful/assetrev/internal/foundation/errors"
)

// Source yields descriptors until it returns io.EOF.
type Source interface {
	Next(ctx context.Context) (Descriptor, error)
}

// Sink receives revisioned outputs.
type Sink interface {
	Emit(ctx context.Context, out Output) error
}

// SinkFunc adapts a function to Sink.
type SinkFunc func(ctx context.Context, out Output) error

func (f SinkFunc) Emit(ctx context.Context, out Output) error {
	return f(ctx, out)
}

// SliceSource serves a fixed list of descriptors.
type SliceSource struct {
	items []Descriptor
	next  int
}

// NewSliceSource returns a Source over descs.
func NewSliceSource(descs []Descriptor) *SliceSource {
	return &SliceSource{items: descs}
}

func (s *SliceSource) Next(ctx context.Context) (Descriptor, error) {
	if err := ctx.Err(); err != nil {
		return Descriptor{}, err
	}
	if s.next >= len(s.items) {
		return Descriptor{}, io.EOF
	}
	d := s.items[s.next]
	s.next++
	return d, nil
}

// ChannelSource adapts a push-style transport. The transport closes descs when done and
// may send one upstream failure on errs before closing descs.
type ChannelSource struct {
	descs <-chan Descriptor
	errs  <-chan error
}

// NewChannelSource returns a Source reading from descs; errs may be nil.
func NewChannelSource(descs <-chan Descriptor, errs <-chan error) *ChannelSource {
	return &ChannelSource{descs: descs, errs: errs}
}

func (s *ChannelSource) Next(ctx context.Context) (Descriptor, error) {
	select {
	case <-ctx.Done():
		return Descriptor{}, ctx.Err()
	case err, ok := <-s.errs:
		if !ok {
			s.errs = nil
		} else if err != nil {
			return Descriptor{}, err
		}
		return s.Next(ctx)
	case d, ok := <-s.descs:
		if !ok {
			// A failure sent just before close must still win over completion.
			for s.errs != nil {
				select {
				case err, ok := <-s.errs:
					if !ok {
						s.errs = nil
					} else if err != nil {
						return Descriptor{}, err
					}
				default:
					return Descriptor{}, io.EOF
				}
			}
			return Descriptor{}, io.EOF
		}
		return d, nil
	}
}

// Collector buffers descriptors until the transport signals completion. Nothing can be
// computed earlier because any resource may be referenced by one that arrives later.
type Collector struct {
	descs  []Descriptor
	err    error
	closed bool
}

// Add buffers one descriptor.
func (c *Collector) Add(d Descriptor) error {
	if c.closed {
		return errors.InternalError("collector already closed").Build()
	}
	if c.err != nil {
		return c.err
	}
	c.descs = append(c.descs, d)
	return nil
}

// Fail records an upstream failure; Close will report it and discard the buffer.
// Unclassified failures are reported as fatal filesystem errors.
func (c *Collector) Fail(err error) {
	if c.err != nil || err == nil {
		return
	}
	if errors.IsClassified(err) {
		c.err = err
		return
	}
	c.err = errors.WrapError(err, errors.CategoryFileSystem, "upstream collection failed").
		Fatal().
		Build()
}

// Drain adds every descriptor from src until io.EOF. A source error is recorded
// through Fail and returned.
func (c *Collector) Drain(ctx context.Context, src Source) error {
	for {
		d, err := src.Next(ctx)
		if err == io.EOF {
			return nil
		}
		if err != nil {
			if ctx.Err() != nil {
				c.err = ctx.Err()
				return c.err
			}
			c.Fail(err)
			return c.err
		}
		if err := c.Add(d); err != nil {
			return err
		}
	}
}

// Close signals completion and hands over the buffered descriptors.
func (c *Collector) Close() ([]Descriptor, error) {
	c.closed = true
	if c.err != nil {
		c.descs = nil
		return nil, c.err
	}
	descs := c.descs
	c.descs = nil
	return descs, nil
}

// Len returns the number of buffered descriptors.
func (c *Collector) Len() int {
	return len(c.descs)
}
