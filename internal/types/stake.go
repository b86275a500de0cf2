package types

// StakeEntry pairs a validator identity with its stake weight for one epoch.
// A weight of zero means the validator holds no stake and is never scheduled.
type StakeEntry struct {
	ID    ValidatorID
	Stake uint64
}
