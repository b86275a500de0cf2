package storage

import (
	"errors"
	"reflect"
	"testing"

	"github.com/paladin-bladesmith/bifrost/internal/types"
)

func testEntry(b byte, stake uint64) types.StakeEntry {
	var id types.ValidatorID
	id[0] = b
	return types.StakeEntry{ID: id, Stake: stake}
}

func TestSnapshotStore(t *testing.T) {
	store, err := NewSnapshotStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewSnapshotStore failed: %v", err)
	}
	defer store.Close()

	entries := []types.StakeEntry{
		testEntry(0x02, 1000),
		testEntry(0x01, 1000),
		testEntry(0x03, 500),
	}

	t.Run("SaveAndLoad", func(t *testing.T) {
		if err := store.SaveSnapshot(7, entries); err != nil {
			t.Fatalf("SaveSnapshot failed: %v", err)
		}
		got, err := store.Snapshot(7)
		if err != nil {
			t.Fatalf("Snapshot failed: %v", err)
		}
		if !reflect.DeepEqual(got, entries) {
			t.Errorf("loaded entries = %v, want %v", got, entries)
		}
	})

	t.Run("NotFound", func(t *testing.T) {
		_, err := store.Snapshot(99)
		if !errors.Is(err, ErrNotFound) {
			t.Errorf("err = %v, want ErrNotFound", err)
		}
	})

	t.Run("RejectEmpty", func(t *testing.T) {
		if err := store.SaveSnapshot(8, nil); err == nil {
			t.Error("expected error persisting an empty stake set")
		}
	})

	t.Run("Overwrite", func(t *testing.T) {
		updated := []types.StakeEntry{testEntry(0x09, 42)}
		if err := store.SaveSnapshot(7, updated); err != nil {
			t.Fatalf("SaveSnapshot failed: %v", err)
		}
		got, err := store.Snapshot(7)
		if err != nil {
			t.Fatalf("Snapshot failed: %v", err)
		}
		if !reflect.DeepEqual(got, updated) {
			t.Errorf("loaded entries = %v, want %v", got, updated)
		}
	})

	t.Run("EpochsAscending", func(t *testing.T) {
		for _, epoch := range []uint64{100, 3, 50} {
			if err := store.SaveSnapshot(epoch, entries); err != nil {
				t.Fatalf("SaveSnapshot(%d) failed: %v", epoch, err)
			}
		}
		epochs, err := store.Epochs()
		if err != nil {
			t.Fatalf("Epochs failed: %v", err)
		}
		want := []uint64{3, 7, 50, 100}
		if !reflect.DeepEqual(epochs, want) {
			t.Errorf("epochs = %v, want %v", epochs, want)
		}
	})
}

func TestSnapshotStoreReopen(t *testing.T) {
	dir := t.TempDir()
	entries := []types.StakeEntry{testEntry(0x05, 77)}

	store, err := NewSnapshotStore(dir)
	if err != nil {
		t.Fatalf("NewSnapshotStore failed: %v", err)
	}
	if err := store.SaveSnapshot(3, entries); err != nil {
		t.Fatalf("SaveSnapshot failed: %v", err)
	}
	if err := store.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	reopened, err := NewSnapshotStore(dir)
	if err != nil {
		t.Fatalf("reopening store failed: %v", err)
	}
	defer reopened.Close()
	got, err := reopened.Snapshot(3)
	if err != nil {
		t.Fatalf("Snapshot after reopen failed: %v", err)
	}
	if !reflect.DeepEqual(got, entries) {
		t.Errorf("entries after reopen = %v, want %v", got, entries)
	}
}

func TestDecodeSnapshotRejectsCorruptRows(t *testing.T) {
	cases := []struct {
		name string
		raw  []byte
	}{
		{"empty", nil},
		{"short header", []byte{0x00, 0x00}},
		{"count mismatch", []byte{0x00, 0x00, 0x00, 0x02, 0xaa}},
	}
	for _, tc := range cases {
		if _, err := decodeSnapshot(1, tc.raw); err == nil {
			t.Errorf("%s: expected decode error", tc.name)
		}
	}
}

func TestInMemoryStore(t *testing.T) {
	store := NewInMemory()
	defer store.Close()

	entries := []types.StakeEntry{testEntry(0x01, 5), testEntry(0x02, 10)}
	if err := store.SaveSnapshot(1, entries); err != nil {
		t.Fatalf("SaveSnapshot failed: %v", err)
	}

	got, err := store.Snapshot(1)
	if err != nil {
		t.Fatalf("Snapshot failed: %v", err)
	}
	got[0].Stake = 999
	reloaded, err := store.Snapshot(1)
	if err != nil {
		t.Fatalf("Snapshot failed: %v", err)
	}
	if reloaded[0].Stake != 5 {
		t.Error("mutating a loaded snapshot leaked into the store")
	}

	if _, err := store.Snapshot(2); !errors.Is(err, ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}

	epochs, err := store.Epochs()
	if err != nil {
		t.Fatalf("Epochs failed: %v", err)
	}
	if !reflect.DeepEqual(epochs, []uint64{1}) {
		t.Errorf("epochs = %v, want [1]", epochs)
	}
}
