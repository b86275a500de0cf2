package stake

import (
	"context"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/paladin-bladesmith/bifrost/internal/types"
)

type fileValidator struct {
	ID       string `yaml:"id"`
	Stake    uint64 `yaml:"stake"`
	Endpoint string `yaml:"endpoint"`
}

type stakeFile struct {
	Validators []fileValidator `yaml:"validators"`
}

// FileSource serves the stake set parsed from a YAML validator file. The
// file is read once at construction; a changed file takes effect on restart.
type FileSource struct {
	path      string
	entries   []types.StakeEntry
	endpoints map[types.ValidatorID]string
}

func NewFileSource(path string) (*FileSource, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading stake file: %w", err)
	}
	var f stakeFile
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("parsing stake file %s: %w", path, err)
	}
	if len(f.Validators) == 0 {
		return nil, fmt.Errorf("stake file %s lists no validators", path)
	}

	src := &FileSource{path: path, endpoints: make(map[types.ValidatorID]string)}
	for i, v := range f.Validators {
		id, err := types.ParseValidatorID(v.ID)
		if err != nil {
			return nil, fmt.Errorf("stake file %s entry %d: %w", path, i, err)
		}
		src.entries = append(src.entries, types.StakeEntry{ID: id, Stake: v.Stake})
		if v.Endpoint != "" {
			src.endpoints[id] = v.Endpoint
		}
	}
	return src, nil
}

func (s *FileSource) StakesFor(context.Context, uint64) ([]types.StakeEntry, error) {
	out := make([]types.StakeEntry, len(s.entries))
	copy(out, s.entries)
	return out, nil
}

// Endpoints returns the validator endpoints listed alongside the stakes,
// keyed by identity. Entries without an endpoint are absent.
func (s *FileSource) Endpoints() map[types.ValidatorID]string {
	out := make(map[types.ValidatorID]string, len(s.endpoints))
	for id, ep := range s.endpoints {
		out[id] = ep
	}
	return out
}
