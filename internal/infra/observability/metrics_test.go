package observability

import (
	"testing"
	"time"
)

func TestMetrics_Counters(t *testing.T) {
	m := NewMetrics()

	m.IncrOrder("submitted")
	m.IncrOrder("submitted")
	m.IncrOrder("rejected")
	if got := getCounterValue(m.ordersTotal, "submitted"); got != 2 {
		t.Errorf("expected 2 submitted orders, got %v", got)
	}
	if got := getCounterValue(m.ordersTotal, "rejected"); got != 1 {
		t.Errorf("expected 1 rejected order, got %v", got)
	}

	m.IncrCacheHit("gallery")
	m.IncrCacheMiss("gallery")
	m.IncrCacheMiss("gallery")
	if got := getCounterValue(m.cacheHits, "gallery"); got != 1 {
		t.Errorf("expected 1 cache hit, got %v", got)
	}
	if got := getCounterValue(m.cacheMisses, "gallery"); got != 2 {
		t.Errorf("expected 2 cache misses, got %v", got)
	}

	m.IncrUpload("cake-images", "ok")
	m.IncrUpload("cake-images", "failed")
	if got := getCounterValue(m.uploadsTotal, "cake-images", "ok"); got != 1 {
		t.Errorf("expected 1 successful upload, got %v", got)
	}

	m.IncrExternalError("supabase/cakes")
	if got := getCounterValue(m.externalErrors, "supabase/cakes"); got != 1 {
		t.Errorf("expected 1 external error, got %v", got)
	}

	m.IncrAuthEvent("SIGNED_IN")
	if got := getCounterValue(m.authEvents, "SIGNED_IN"); got != 1 {
		t.Errorf("expected 1 auth event, got %v", got)
	}
}

func TestMetrics_IndependentRegistries(t *testing.T) {
	a := NewMetrics()
	b := NewMetrics()

	a.IncrOrder("submitted")
	if got := getCounterValue(b.ordersTotal, "submitted"); got != 0 {
		t.Errorf("registries must be independent, got %v", got)
	}

	// Histograms only need to not panic here.
	a.RecordRequestDuration("submit_order", 150*time.Millisecond)
}
