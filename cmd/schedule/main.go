package main

import (
	"context"
	"flag"
	"fmt"
	"log"

	"github.com/paladin-bladesmith/bifrost/internal/schedule"
	"github.com/paladin-bladesmith/bifrost/internal/stake"
)

func main() {
	var (
		stakesFile = flag.String("stakes", "", "Validator stake file (YAML, required)")
		epoch      = flag.Uint64("epoch", 0, "Epoch to compute the schedule for")
		slots      = flag.Uint64("slots", 8640, "Slots in the epoch")
		span       = flag.Uint64("span", schedule.DefaultLeaderSlotSpan, "Consecutive slots per leader draw")
		summary    = flag.Bool("summary", false, "Print per-validator slot counts instead of per-chunk leaders")
	)
	flag.Parse()

	if *stakesFile == "" {
		log.Fatal("Stake file is required (--stakes)")
	}

	source, err := stake.NewFileSource(*stakesFile)
	if err != nil {
		log.Fatalf("Failed to load stake file: %v", err)
	}
	entries, err := source.StakesFor(context.Background(), *epoch)
	if err != nil {
		log.Fatalf("Failed to read stakes: %v", err)
	}
	snap, err := schedule.NewStakeSnapshot(entries)
	if err != nil {
		log.Fatalf("Invalid stake set: %v", err)
	}

	sched, err := schedule.Build(snap, schedule.Params{
		Epoch:          *epoch,
		SlotsPerEpoch:  *slots,
		LeaderSlotSpan: *span,
	})
	if err != nil {
		log.Fatalf("Failed to build schedule: %v", err)
	}

	if *summary {
		printSummary(snap, sched)
		return
	}
	printChunks(sched, *span)
}

func printChunks(sched *schedule.LeaderSchedule, span uint64) {
	if span == 0 {
		span = schedule.DefaultLeaderSlotSpan
	}
	fmt.Printf("epoch %d: %d slots, %d slots per leader\n", sched.Epoch(), sched.Len(), span)
	for start := uint64(0); start < sched.Len(); start += span {
		end := start + span - 1
		if end >= sched.Len() {
			end = sched.Len() - 1
		}
		leader, _ := sched.LeaderAt(start)
		fmt.Printf("%10d-%-10d %s\n", start, end, leader)
	}
}

func printSummary(snap schedule.StakeSnapshot, sched *schedule.LeaderSchedule) {
	total, err := snap.TotalStake()
	if err != nil {
		log.Fatalf("Failed to total stakes: %v", err)
	}
	byID := sched.ByIdentity()

	fmt.Printf("epoch %d: %d slots, %d validators, total stake %d\n",
		sched.Epoch(), sched.Len(), len(snap), total)
	for _, entry := range snap {
		count := uint64(len(byID[entry.ID]))
		stakeShare := float64(entry.Stake) / float64(total) * 100
		slotShare := float64(count) / float64(sched.Len()) * 100
		fmt.Printf("  %s  stake %12d (%6.2f%%)  slots %8d (%6.2f%%)\n",
			entry.ID, entry.Stake, stakeShare, count, slotShare)
	}
}
