package cache_test

import (
	"testing"
	"time"

	"github.com/kamau/sugarbloom-api/internal/infra/cache"
)

func TestCache_SetAndGet(t *testing.T) {
	c := cache.New[string](5 * time.Minute)

	c.Set("key1", "value1")
	val, ok := c.Get("key1")
	if !ok {
		t.Fatal("expected key to exist")
	}
	if val != "value1" {
		t.Errorf("expected 'value1', got '%s'", val)
	}
}

func TestCache_GetMiss(t *testing.T) {
	c := cache.New[string](5 * time.Minute)

	_, ok := c.Get("nonexistent")
	if ok {
		t.Fatal("expected cache miss for nonexistent key")
	}
}

func TestCache_Expiration(t *testing.T) {
	c := cache.New[string](50 * time.Millisecond)

	c.Set("key1", "value1")
	time.Sleep(100 * time.Millisecond)

	_, ok := c.Get("key1")
	if ok {
		t.Fatal("expected cache entry to be expired")
	}
}

func TestCache_Delete(t *testing.T) {
	c := cache.New[string](5 * time.Minute)

	c.Set("key1", "value1")
	c.Delete("key1")

	_, ok := c.Get("key1")
	if ok {
		t.Fatal("expected key to be deleted")
	}
}

func TestCache_StructValues(t *testing.T) {
	type snapshot struct {
		Names []string
	}
	c := cache.New[snapshot](5 * time.Minute)

	c.Set("gallery", snapshot{Names: []string{"Red Velvet", "Black Forest"}})
	val, ok := c.Get("gallery")
	if !ok {
		t.Fatal("expected snapshot to exist")
	}
	if len(val.Names) != 2 {
		t.Errorf("expected 2 names, got %d", len(val.Names))
	}
}
