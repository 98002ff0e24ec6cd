// Package ioctx carries the output streams of a running program on a
// context. Programs never write to the process's stdout directly; the host
// decides where their output goes.
package ioctx

import (
	"context"
	"io"
)

type stream int

const (
	stdout stream = iota
	stderr
)

type streamKey struct {
	stream stream
}

func writerFromContext(ctx context.Context, s stream) io.Writer {
	if w, ok := ctx.Value(streamKey{s}).(io.Writer); ok && w != nil {
		return w
	}
	return io.Discard
}

// StdoutFromContext returns the writer that program output goes to. Output
// is discarded if none was set.
func StdoutFromContext(ctx context.Context) io.Writer {
	return writerFromContext(ctx, stdout)
}

// StdoutToContext sets the writer returned by StdoutFromContext.
func StdoutToContext(ctx context.Context, w io.Writer) context.Context {
	return context.WithValue(ctx, streamKey{stdout}, w)
}

// StderrFromContext returns the writer for diagnostics, or io.Discard.
func StderrFromContext(ctx context.Context) io.Writer {
	return writerFromContext(ctx, stderr)
}

// StderrToContext sets the writer returned by StderrFromContext.
func StderrToContext(ctx context.Context, w io.Writer) context.Context {
	return context.WithValue(ctx, streamKey{stderr}, w)
}
