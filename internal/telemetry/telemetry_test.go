package telemetry

import (
	"context"
	"testing"
)

func TestSetup_NoopWhenEndpointEmpty(t *testing.T) {
	shutdown, err := Setup(context.Background(), "fistjump-test", "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := shutdown(context.Background()); err != nil {
		t.Fatalf("shutdown error: %v", err)
	}
}

func TestSetup_CreatesProviderWhenEndpointSet(t *testing.T) {
	// Non-routable address so no export happens.
	shutdown, err := Setup(context.Background(), "fistjump-test", "http://192.0.2.1:4318")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	_, span := Tracer().Start(context.Background(), "round")
	span.End()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	// The batch export to the unreachable collector is abandoned.
	_ = shutdown(ctx)
}
