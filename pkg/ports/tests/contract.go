package tests

import (
	"context"
	"errors"
	"testing"

	"github.com/aretw0/wayfinder/pkg/domain"
	"github.com/aretw0/wayfinder/pkg/ports"
)

// ArtifactSourceContractTest is a reusable test suite that verifies if an adapter complies with ports.ArtifactSource.
// setupData maps artifact names to a non-nil check of the resolved value.
func ArtifactSourceContractTest(t *testing.T, source ports.ArtifactSource, setupData map[string]func(any) bool) {
	t.Helper()
	ctx := context.Background()

	t.Run("Resolve_Success", func(t *testing.T) {
		for name, check := range setupData {
			value, err := source.Resolve(ctx, name)
			if err != nil {
				t.Fatalf("unexpected error resolving artifact %s: %v", name, err)
			}
			if !check(value) {
				t.Errorf("unexpected value for %s: %#v", name, value)
			}
		}
	})

	t.Run("Resolve_NotFound", func(t *testing.T) {
		_, err := source.Resolve(ctx, "non-existent-artifact")
		if !errors.Is(err, domain.ErrArtifactNotFound) {
			t.Errorf("expected ErrArtifactNotFound, got %v", err)
		}
	})
}
