package ioctx

import (
	"bytes"
	"context"
	"io"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestStreams(t *testing.T) {
	ctx := context.Background()
	require.Equal(t, io.Discard, StdoutFromContext(ctx))
	require.Equal(t, io.Discard, StderrFromContext(ctx))

	var out, errOut bytes.Buffer
	ctx = StdoutToContext(ctx, &out)
	ctx = StderrToContext(ctx, &errOut)

	_, _ = io.WriteString(StdoutFromContext(ctx), "out")
	_, _ = io.WriteString(StderrFromContext(ctx), "err")
	require.Equal(t, "out", out.String())
	require.Equal(t, "err", errOut.String())
}
