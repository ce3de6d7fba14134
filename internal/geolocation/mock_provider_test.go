package geolocation

import (
	"context"
	"errors"
	"testing"
)

// TestMockProvider_LookupSelf_NoResult tests that a cleared self result fails like an unknown query
func TestMockProvider_LookupSelf_NoResult(t *testing.T) {
	provider := NewMockProvider()
	provider.SelfResult = nil

	result, err := provider.LookupSelf(context.Background())
	if !errors.Is(err, ErrBadStatus) {
		t.Errorf("expected ErrBadStatus, got %v", err)
	}
	if result != nil {
		t.Errorf("expected no result, got %+v", result)
	}
	if provider.LookupSelfCalls != 1 {
		t.Errorf("expected 1 self call, got %d", provider.LookupSelfCalls)
	}
}

// TestMockProvider_Lookup_UnknownQuery tests the error for queries without a canned result
func TestMockProvider_Lookup_UnknownQuery(t *testing.T) {
	provider := NewMockProvider()

	if _, err := provider.Lookup(context.Background(), "unknown.example"); !errors.Is(err, ErrBadStatus) {
		t.Errorf("expected ErrBadStatus, got %v", err)
	}
	if calls := provider.Calls(); len(calls) != 1 || calls[0] != "unknown.example" {
		t.Errorf("unexpected calls %v", calls)
	}
}
