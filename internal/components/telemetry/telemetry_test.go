package telemetry

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestScopedAPI(t *testing.T) {
	inner := &Recorder{}
	scoped := NewScopedAPI("session", inner)

	scoped.ReportBroken("session.do", "a")
	scoped.ReportWarning("csrf.token")
	scoped.ReportDebug("hop", 1)
	scoped.ReportCount("redirects", 3)

	broken := inner.Records(RECORD_BROKEN, "")
	require.Len(t, broken, 1)
	require.Equal(t, "session: session.do", broken[0].Id)
	require.Equal(t, []any{"a"}, broken[0].Params)

	require.Len(t, inner.Records(RECORD_WARNING, "csrf.token"), 1)
	require.Len(t, inner.Records(RECORD_DEBUG, "hop"), 1)

	counts := inner.Records(RECORD_COUNT, "redirects")
	require.Len(t, counts, 1)
	require.Equal(t, []any{int64(3)}, counts[0].Params)
}

func TestSetupWithoutEndpoints(t *testing.T) {
	tel, err := Setup(context.Background(), "test:telemetry", OtlpConfig{})
	require.NoError(t, err)
	require.Nil(t, tel.TracerProvider)
	require.Nil(t, tel.MeterProvider)
	require.NoError(t, tel.Shutdown(context.Background()))
}

func TestSetupHttpTraces(t *testing.T) {
	tel, err := Setup(context.Background(), "test:telemetry", OtlpConfig{
		Traces: OtlpConnConfig{HttpEndpoint: "http://127.0.0.1:4318/v1/traces"},
	})
	require.NoError(t, err)
	require.NotNil(t, tel.TracerProvider)
	require.Nil(t, tel.MeterProvider)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	// nothing was recorded so there is nothing to flush
	_ = tel.Shutdown(ctx)
}
