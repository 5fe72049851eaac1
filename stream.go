package refreshflow

import (
	"context"
	"errors"
	"fmt"
	"io"
)

// ChunkStream is a finite, single-pass sequence of byte chunks, e.g. a
// view's CSV content as served by the remote system. Next returns io.EOF
// after the final chunk. Streams are not restartable.
type ChunkStream interface {
	Next(ctx context.Context) ([]byte, error)
}

// Drain copies every chunk of src into sink and returns the number of bytes
// written. Cancellation is checked between chunks, so a slow stream can be
// abandoned without waiting for its end.
func Drain(ctx context.Context, src ChunkStream, sink DataStreamSink) (int64, error) {
	var written int64
	for {
		select {
		case <-ctx.Done():
			return written, fmt.Errorf("%w: after %d bytes", ErrCallerCancelled, written)
		default:
		}

		chunk, err := src.Next(ctx)
		if err != nil {
			if errors.Is(err, io.EOF) {
				return written, nil
			}
			return written, fmt.Errorf("reading stream: %w", err)
		}
		if len(chunk) == 0 {
			continue
		}

		if err := sink.WriteChunk(ctx, chunk); err != nil {
			return written, fmt.Errorf("writing chunk: %w", err)
		}
		written += int64(len(chunk))
	}
}

// NewReaderStream adapts an io.Reader into a ChunkStream reading at most
// chunkSize bytes at a time.
func NewReaderStream(r io.Reader, chunkSize int) ChunkStream {
	if chunkSize <= 0 {
		chunkSize = 32 * 1024
	}
	return &readerStream{r: r, buf: make([]byte, chunkSize)}
}

type readerStream struct {
	r    io.Reader
	buf  []byte
	done bool
}

func (rs *readerStream) Next(_ context.Context) ([]byte, error) {
	if rs.done {
		return nil, io.EOF
	}

	n, err := rs.r.Read(rs.buf)
	if n > 0 {
		// Copy out: the internal buffer is reused on the next call.
		chunk := make([]byte, n)
		copy(chunk, rs.buf[:n])
		if errors.Is(err, io.EOF) {
			rs.done = true
		}
		return chunk, nil
	}
	if err != nil {
		if errors.Is(err, io.EOF) {
			rs.done = true
		}
		return nil, err
	}
	return nil, nil
}
