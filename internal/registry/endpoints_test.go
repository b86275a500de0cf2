package registry

import (
	"fmt"
	"sync"
	"testing"

	"github.com/paladin-bladesmith/bifrost/internal/types"
)

func testID(b byte) types.ValidatorID {
	var id types.ValidatorID
	id[0] = b
	return id
}

func TestEndpointBookSetAndLookup(t *testing.T) {
	book := NewEndpointBook()
	a := testID(0x01)

	if _, ok := book.Lookup(a); ok {
		t.Fatal("empty book should not resolve anything")
	}

	book.Set(a, "10.0.0.1:8001")
	ep, ok := book.Lookup(a)
	if !ok || ep != "10.0.0.1:8001" {
		t.Fatalf("Lookup = %q, %v; want the set endpoint", ep, ok)
	}

	book.Set(a, "10.0.0.2:8001")
	if ep, _ := book.Lookup(a); ep != "10.0.0.2:8001" {
		t.Fatalf("Lookup after update = %q", ep)
	}

	book.Set(a, "")
	if _, ok := book.Lookup(a); ok {
		t.Fatal("empty endpoint should remove the entry")
	}
}

func TestEndpointBookReplaceAll(t *testing.T) {
	book := NewEndpointBook()
	book.Set(testID(0x01), "old:1")

	book.ReplaceAll(map[types.ValidatorID]string{
		testID(0x02): "new:2",
		testID(0x03): "new:3",
		testID(0x04): "",
	})

	if _, ok := book.Lookup(testID(0x01)); ok {
		t.Error("ReplaceAll should drop entries absent from the new mapping")
	}
	if _, ok := book.Lookup(testID(0x04)); ok {
		t.Error("ReplaceAll should skip empty endpoints")
	}
	if book.Len() != 2 {
		t.Errorf("Len = %d, want 2", book.Len())
	}

	ids := book.IDs()
	if len(ids) != 2 || ids[0] != testID(0x02) || ids[1] != testID(0x03) {
		t.Errorf("IDs = %v, want ascending [02.., 03..]", ids)
	}
}

func TestEndpointBookSnapshotIsACopy(t *testing.T) {
	book := NewEndpointBook()
	a := testID(0x01)
	book.Set(a, "10.0.0.1:8001")

	snap := book.Snapshot()
	snap[a] = "tampered"

	if ep, _ := book.Lookup(a); ep != "10.0.0.1:8001" {
		t.Error("mutating a snapshot leaked into the book")
	}
}

func TestEndpointBookReplaceAllUnderReaders(t *testing.T) {
	book := NewEndpointBook()
	a, b := testID(0x01), testID(0x02)
	gens := []map[types.ValidatorID]string{
		{a: "gen0:1", b: "gen0:2"},
		{a: "gen1:1", b: "gen1:2"},
	}
	book.ReplaceAll(gens[0])

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for j := 1; j <= 100; j++ {
			book.ReplaceAll(gens[j%2])
		}
	}()
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				ep, ok := book.Lookup(a)
				if !ok {
					t.Error("Lookup lost a key present in every generation")
					return
				}
				if ep != "gen0:1" && ep != "gen1:1" {
					t.Errorf("Lookup = %q, want a whole generation", ep)
					return
				}
			}
		}()
	}
	wg.Wait()

	// The writer's last swap installed generation 0.
	if ep, _ := book.Lookup(a); ep != "gen0:1" {
		t.Errorf("final Lookup = %q, want gen0:1", ep)
	}
	if book.Len() != 2 {
		t.Errorf("Len = %d, want 2", book.Len())
	}
}

func TestEndpointBookConcurrentAccess(t *testing.T) {
	book := NewEndpointBook()
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(2)
		go func(i int) {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				book.Set(testID(byte(i)), fmt.Sprintf("10.0.0.%d:%d", i, j))
			}
		}(i)
		go func(i int) {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				book.Lookup(testID(byte(i)))
				book.Snapshot()
			}
		}(i)
	}
	wg.Wait()

	if book.Len() != 8 {
		t.Errorf("Len = %d, want 8", book.Len())
	}
}
