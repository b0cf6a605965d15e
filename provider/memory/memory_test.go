package memory

import (
	"context"
	"testing"
	"time"
)

func TestSetGetDel(t *testing.T) {
	ctx := context.Background()
	p := New()

	buf := []byte("hello")
	if ok, err := p.Set(ctx, "k", buf, 1, 0); err != nil || !ok {
		t.Fatalf("Set: ok=%v err=%v", ok, err)
	}
	buf[0] = 'j' // caller mutation must not leak in

	got, ok, err := p.Get(ctx, "k")
	if err != nil || !ok || string(got) != "hello" {
		t.Fatalf("Get: got=%q ok=%v err=%v", got, ok, err)
	}

	if err := p.Del(ctx, "k"); err != nil {
		t.Fatalf("Del: %v", err)
	}
	if err := p.Del(ctx, "k"); err != nil {
		t.Fatalf("Del missing: %v", err)
	}
	if _, ok, _ := p.Get(ctx, "k"); ok {
		t.Fatalf("expected miss after Del")
	}
}

func TestTTLExpiry(t *testing.T) {
	ctx := context.Background()
	p := New()
	now := time.Unix(1000, 0)
	p.now = func() time.Time { return now }

	if _, err := p.Set(ctx, "k", []byte("v"), 1, time.Minute); err != nil {
		t.Fatal(err)
	}
	if _, ok, _ := p.Get(ctx, "k"); !ok {
		t.Fatalf("expected hit before expiry")
	}

	now = now.Add(2 * time.Minute)
	if _, ok, _ := p.Get(ctx, "k"); ok {
		t.Fatalf("expected miss after expiry")
	}
	if p.Len() != 0 {
		t.Fatalf("expired entry not dropped, len=%d", p.Len())
	}
}

func TestGetReturnsCopy(t *testing.T) {
	ctx := context.Background()
	p := New()
	if _, err := p.Set(ctx, "k", []byte("hello"), 1, 0); err != nil {
		t.Fatal(err)
	}
	got, _, _ := p.Get(ctx, "k")
	got[0] = 'J'
	if again, _, _ := p.Get(ctx, "k"); string(again) != "hello" {
		t.Fatalf("stored value changed through Get result: %q", again)
	}
}
