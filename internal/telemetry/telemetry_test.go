package telemetry

import (
	"context"
	"testing"
	"time"

	"go.opentelemetry.io/otel"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

func TestSetupWithoutEndpointKeepsGlobalProvider(t *testing.T) {
	before := otel.GetTracerProvider()
	shutdown, err := Setup(context.Background(), "  ", "svc", "dev")
	if err != nil {
		t.Fatalf("Setup: %v", err)
	}
	if err := shutdown(context.Background()); err != nil {
		t.Fatalf("shutdown: %v", err)
	}
	if otel.GetTracerProvider() != before {
		t.Fatal("provider should not change without an endpoint")
	}
}

func TestSetupInstallsSDKProvider(t *testing.T) {
	before := otel.GetTracerProvider()
	t.Cleanup(func() { otel.SetTracerProvider(before) })

	for _, endpoint := range []string{"127.0.0.1:4318", "http://127.0.0.1:4318"} {
		shutdown, err := Setup(context.Background(), endpoint, "", "dev")
		if err != nil {
			t.Fatalf("Setup(%q): %v", endpoint, err)
		}
		if _, ok := otel.GetTracerProvider().(*sdktrace.TracerProvider); !ok {
			t.Fatalf("expected sdk tracer provider, got %T", otel.GetTracerProvider())
		}
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		_ = shutdown(ctx)
		cancel()
	}
}
