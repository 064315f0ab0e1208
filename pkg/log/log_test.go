package log

import (
	"bytes"
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

func TestGlobalLoggerChainsDirectly(t *testing.T) {
	r := require.New(t)

	// Level methods chain straight off the accessor, no local assignment.
	r.NotPanics(func() {
		L().Debug().Str(FieldConnID, "conn-1").Msg("direct chain")
	})
}

func TestCtxFallsBackToGlobal(t *testing.T) {
	r := require.New(t)

	l := Ctx(context.Background())
	r.NotNil(l)
	r.NotPanics(func() {
		l.Info().Msg("fallback chain")
	})
}

func TestCtxReturnsStoredLogger(t *testing.T) {
	r := require.New(t)

	var buf bytes.Buffer
	stored := zerolog.New(&buf)
	ctx := WithLogger(context.Background(), stored)

	Ctx(ctx).Warn().Str(FieldUserID, "alice").Msg("stored chain")

	r.Contains(buf.String(), "stored chain")
	r.Contains(buf.String(), "alice")
}

func TestParseLevel(t *testing.T) {
	r := require.New(t)

	r.Equal(zerolog.DebugLevel, parseLevel("debug"))
	r.Equal(zerolog.WarnLevel, parseLevel(" WARNING "))
	r.Equal(zerolog.InfoLevel, parseLevel("bogus"))
}
