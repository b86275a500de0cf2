package storage

import (
	"encoding/binary"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/syndtr/goleveldb/leveldb"
	"github.com/syndtr/goleveldb/leveldb/util"

	"github.com/paladin-bladesmith/bifrost/internal/types"
)

// ErrNotFound is returned when no snapshot is persisted for an epoch.
var ErrNotFound = errors.New("not found")

// SnapshotStore persists per-epoch stake snapshots in LevelDB. Snapshots are
// tiny compared to schedules and schedules rebuild deterministically, so the
// store keeps only the stakes.
type SnapshotStore struct{ db *leveldb.DB }

func NewSnapshotStore(path string) (*SnapshotStore, error) {
	p := filepath.Clean(path)
	db, err := leveldb.OpenFile(p, nil)
	if err != nil {
		return nil, fmt.Errorf("opening snapshot store at %s: %w", p, err)
	}
	return &SnapshotStore{db: db}, nil
}

func (s *SnapshotStore) Close() error { return s.db.Close() }

func keySnapshot(epoch uint64) []byte { return []byte(fmt.Sprintf("ss:epoch:%020d", epoch)) }

const snapshotRowLen = types.IDLen + 8

// SaveSnapshot persists the stake entries for an epoch. The row format is a
// big-endian uint32 count followed by fixed-width rows of identity bytes and
// big-endian stake. Entries are written in the given order; callers that
// need canonical order sort before persisting.
func (s *SnapshotStore) SaveSnapshot(epoch uint64, entries []types.StakeEntry) error {
	if len(entries) == 0 {
		return fmt.Errorf("refusing to persist empty stake set for epoch %d", epoch)
	}
	buf := make([]byte, 4+len(entries)*snapshotRowLen)
	binary.BigEndian.PutUint32(buf[:4], uint32(len(entries)))
	off := 4
	for _, e := range entries {
		copy(buf[off:], e.ID[:])
		off += types.IDLen
		binary.BigEndian.PutUint64(buf[off:], e.Stake)
		off += 8
	}
	return s.db.Put(keySnapshot(epoch), buf, nil)
}

// Snapshot loads the persisted stake entries for an epoch.
func (s *SnapshotStore) Snapshot(epoch uint64) ([]types.StakeEntry, error) {
	raw, err := s.db.Get(keySnapshot(epoch), nil)
	if err == leveldb.ErrNotFound {
		return nil, fmt.Errorf("stake snapshot for epoch %d: %w", epoch, ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return decodeSnapshot(epoch, raw)
}

func decodeSnapshot(epoch uint64, raw []byte) ([]types.StakeEntry, error) {
	if len(raw) < 4 {
		return nil, fmt.Errorf("stake snapshot for epoch %d is truncated", epoch)
	}
	n := int(binary.BigEndian.Uint32(raw[:4]))
	if len(raw) != 4+n*snapshotRowLen {
		return nil, fmt.Errorf("stake snapshot for epoch %d has %d bytes, want %d", epoch, len(raw), 4+n*snapshotRowLen)
	}
	entries := make([]types.StakeEntry, n)
	off := 4
	for i := range entries {
		copy(entries[i].ID[:], raw[off:off+types.IDLen])
		off += types.IDLen
		entries[i].Stake = binary.BigEndian.Uint64(raw[off:])
		off += 8
	}
	return entries, nil
}

// Epochs lists the epochs with a persisted snapshot in ascending order.
// The zero-padded key suffix keeps iteration ordered by epoch.
func (s *SnapshotStore) Epochs() ([]uint64, error) {
	it := s.db.NewIterator(util.BytesPrefix([]byte("ss:epoch:")), nil)
	defer it.Release()
	var out []uint64
	for it.Next() {
		var epoch uint64
		if _, err := fmt.Sscanf(string(it.Key()), "ss:epoch:%d", &epoch); err != nil {
			continue
		}
		out = append(out, epoch)
	}
	return out, it.Error()
}
