package nonce

import (
	"context"
	"sync"
	"testing"
	"time"
)

const testAddress = "0xf39fd6e51aad88f6f4ce6ab8827279cfffb92266"

func TestMemoryStore_IssueAndPeek(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore(DefaultTTL)

	issued, err := store.Issue(ctx, testAddress)
	if err != nil {
		t.Fatalf("Issue() failed: %v", err)
	}
	if len(issued.Nonce) != nonceSize*2 {
		t.Fatalf("nonce length = %d, want %d hex chars", len(issued.Nonce), nonceSize*2)
	}

	got, ok, err := store.Peek(ctx, testAddress)
	if err != nil {
		t.Fatalf("Peek() failed: %v", err)
	}
	if !ok {
		t.Fatal("expected challenge to be present")
	}
	if got.Nonce != issued.Nonce {
		t.Fatalf("Peek() nonce = %s, want %s", got.Nonce, issued.Nonce)
	}
}

func TestMemoryStore_IssueOverwritesPrior(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore(DefaultTTL)

	first, err := store.Issue(ctx, testAddress)
	if err != nil {
		t.Fatalf("Issue() failed: %v", err)
	}
	second, err := store.Issue(ctx, testAddress)
	if err != nil {
		t.Fatalf("Issue() failed: %v", err)
	}
	if first.Nonce == second.Nonce {
		t.Fatal("second Issue() must generate a fresh nonce")
	}

	got, ok, err := store.Peek(ctx, testAddress)
	if err != nil || !ok {
		t.Fatalf("Peek() = %v, %v", ok, err)
	}
	if got.Nonce != second.Nonce {
		t.Fatal("Peek() must return the latest challenge")
	}
}

func TestMemoryStore_ConsumeOnce(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore(DefaultTTL)

	if _, err := store.Issue(ctx, testAddress); err != nil {
		t.Fatalf("Issue() failed: %v", err)
	}

	ok, err := store.Consume(ctx, testAddress)
	if err != nil {
		t.Fatalf("Consume() failed: %v", err)
	}
	if !ok {
		t.Fatal("first Consume() should report presence")
	}

	ok, err = store.Consume(ctx, testAddress)
	if err != nil {
		t.Fatalf("Consume() failed: %v", err)
	}
	if ok {
		t.Fatal("second Consume() must report absence")
	}
}

func TestMemoryStore_ConcurrentConsume(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore(DefaultTTL)

	if _, err := store.Issue(ctx, testAddress); err != nil {
		t.Fatalf("Issue() failed: %v", err)
	}

	const racers = 64
	var wg sync.WaitGroup
	results := make(chan bool, racers)

	for i := 0; i < racers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ok, err := store.Consume(ctx, testAddress)
			if err != nil {
				t.Errorf("Consume() failed: %v", err)
				return
			}
			results <- ok
		}()
	}
	wg.Wait()
	close(results)

	winners := 0
	for ok := range results {
		if ok {
			winners++
		}
	}
	if winners != 1 {
		t.Fatalf("expected exactly one winning Consume(), got %d", winners)
	}
}

func TestMemoryStore_ExpirySweep(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore(DefaultTTL)

	current := time.Now()
	store.now = func() time.Time { return current }

	otherAddress := "0x70997970c51812dc3a010c7d01b50e0d17dc79c8"
	if _, err := store.Issue(ctx, testAddress); err != nil {
		t.Fatalf("Issue() failed: %v", err)
	}
	if _, err := store.Issue(ctx, otherAddress); err != nil {
		t.Fatalf("Issue() failed: %v", err)
	}

	current = current.Add(DefaultTTL + time.Second)

	// Peek on one address sweeps every expired entry, not just the queried one.
	if _, ok, _ := store.Peek(ctx, testAddress); ok {
		t.Fatal("expired challenge must be absent")
	}

	store.mu.Lock()
	remaining := len(store.entries)
	store.mu.Unlock()
	if remaining != 0 {
		t.Fatalf("sweep left %d entries behind", remaining)
	}
}

func TestMemoryStore_ConsumeExpired(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore(DefaultTTL)

	current := time.Now()
	store.now = func() time.Time { return current }

	if _, err := store.Issue(ctx, testAddress); err != nil {
		t.Fatalf("Issue() failed: %v", err)
	}

	current = current.Add(DefaultTTL + time.Second)

	ok, err := store.Consume(ctx, testAddress)
	if err != nil {
		t.Fatalf("Consume() failed: %v", err)
	}
	if ok {
		t.Fatal("Consume() of an expired challenge must report absence")
	}
}
