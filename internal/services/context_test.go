package services_test

import (
	"context"
	"testing"

	"autoposter/internal/services"
)

func TestContextHelpers(t *testing.T) {
	ctx := context.Background()
	ctx = services.WithRunID(ctx, "run-1")
	ctx = services.WithComponent(ctx, "generation")
	ctx = services.WithFlow(ctx, "legacy")
	ctx = services.WithRequestID(ctx, "req-123")

	if id, ok := services.RunIDFromContext(ctx); !ok || id != "run-1" {
		t.Fatalf("unexpected run id: %v %v", id, ok)
	}
	if component, ok := services.ComponentFromContext(ctx); !ok || component != "generation" {
		t.Fatalf("unexpected component: %v %v", component, ok)
	}
	if flow, ok := services.FlowFromContext(ctx); !ok || flow != "legacy" {
		t.Fatalf("unexpected flow: %v %v", flow, ok)
	}
	if rid, ok := services.RequestIDFromContext(ctx); !ok || rid != "req-123" {
		t.Fatalf("unexpected request id: %v %v", rid, ok)
	}
}

func TestBlankValuesPreserveContext(t *testing.T) {
	ctx := context.Background()
	ctx = services.WithFlow(ctx, "")
	ctx = services.WithRunID(ctx, "")
	if _, ok := services.FlowFromContext(ctx); ok {
		t.Fatal("expected no flow value")
	}
	if _, ok := services.RunIDFromContext(ctx); ok {
		t.Fatal("expected no run id value")
	}
}
