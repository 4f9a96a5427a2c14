package cmd

import (
	"encoding/binary"
	"fmt"
	"os"
	"sync"

	"github.com/spf13/cobra"

	"github.com/partmesh/dimm/dd"
	"github.com/partmesh/dimm/internal/store"
	"github.com/partmesh/dimm/internal/telemetry"
	"github.com/partmesh/dimm/meshsched"
	"github.com/partmesh/dimm/meshtypes"
	"github.com/partmesh/dimm/transport"
)

// partMeshCmd implements §6's `partMesh <store> [-p ranks]`: open a store
// and construct the distributed mesh directories a parallel run would use
// downstream — a face directory partitioned by face id, a cell
// RoundRobinMap partitioned by cell id, and a §4.E face exchange
// CommPlan. No cell directory is built. This tool drives that construction over a simulated
// transport.LocalGroup since no cluster launcher exists in this module;
// a real multi-host run would wire the same sequence against a Group
// implementation backed by an actual transport.
var partMeshCmd = &cobra.Command{
	Use:   "partmesh",
	Short: "Partition a store across a simulated rank group and build its face exchange plan",
	Run: func(cmd *cobra.Command, args []string) {
		if len(args) != 1 {
			fmt.Fprintln(os.Stderr, "dimm: partmesh requires a single <store> argument")
			os.Exit(1)
		}
		ranks, _ := cmd.Flags().GetInt("ranks")
		if ranks < 1 {
			ranks = 1
		}
		hwCounters, _ := cmd.Flags().GetBool("hwcounters")
		if err := runPartMesh(args[0], ranks, hwCounters); err != nil {
			fmt.Fprintf(os.Stderr, "dimm: partmesh: %v\n", err)
			os.Exit(2)
		}
	},
}

func init() {
	rootCmd.AddCommand(partMeshCmd)
	partMeshCmd.Flags().IntP("ranks", "p", 1, "number of simulated ranks to partition across")
	partMeshCmd.Flags().Bool("hwcounters", false, "report hardware cycle/instruction counts for the face exchange phase (Linux only; silently unavailable elsewhere)")
}

// runPartMesh opens path once per simulated rank and, on each rank's
// goroutine, builds that rank's face RoundRobinMap, cell RoundRobinMap,
// and face directory, then inverts a §4.E face-exchange
// plan and gathers the faces this rank now needs a copy of. Every rank
// opens the store read-only and independently seeks its own byte range,
// matching §4.G's "parallel-independent" transfer model — no collective
// is required for the data movement itself, only for the CommPlan
// inversion and the final max-reduced timing report.
func runPartMesh(path string, p int, hwCounters bool) error {
	groups := transport.NewLocalGroup(p)

	var mu sync.Mutex
	var firstErr error
	report := func(err error) {
		if err == nil {
			return
		}
		mu.Lock()
		if firstErr == nil {
			firstErr = err
		}
		mu.Unlock()
	}

	var wg sync.WaitGroup
	wg.Add(p)
	for r := 0; r < p; r++ {
		r := r
		go func() {
			defer wg.Done()
			if err := partMeshRank(path, groups[r], hwCounters); err != nil {
				report(err)
			}
		}()
	}
	wg.Wait()
	return firstErr
}

func partMeshRank(path string, group transport.Group, hwCounters bool) error {
	s, err := store.Open(path, store.ReadOnly, group)
	if err != nil {
		return err
	}
	defer s.Close()

	me, p := group.Rank(), group.Size()
	nFace, nCell, nInternal := s.NFace(), s.NCell(), s.NInternalFace()

	faceMap := dd.NewRoundRobinMap(nFace, p, me)
	cellMap := dd.NewRoundRobinMap(nCell, p, me)

	localStart, localCount := faceMap.LocalStart(), faceMap.LocalSize()
	faceLR := make([]meshtypes.FaceLR, localCount)
	if localCount > 0 {
		if err := store.ReadSlice(s, store.LinkFacesFaceLRCell, faceLR, localStart, 1, localCount); err != nil {
			return err
		}
	}

	faceDir := dd.NewDirectory[meshtypes.FaceLR](faceMap, group)
	faceDir.SetData(faceLR)

	timer := telemetry.NewTimer(group)
	timer.Start()

	var hw *telemetry.HWCounters
	hwOK := false
	if hwCounters {
		hw, hwOK = telemetry.NewHWCounters()
		if hwOK {
			if err := hw.Start(); err != nil {
				hwOK = false
			}
		}
	}

	plan, err := meshsched.BuildFacePlan(group, faceLR, cellMap, localStart, nInternal)
	if err != nil {
		return err
	}

	gathered := make([]meshtypes.FaceLR, plan.RecvOffsets[plan.P])
	if err := faceDir.Read(plan, gathered); err != nil {
		return err
	}

	elapsed := timer.Stop()
	bytes := int64(len(gathered)) * int64(binary.Size(meshtypes.FaceLR{}))
	timer.ReportBandwidth(fmt.Sprintf("partmesh: rank %d face exchange", me), bytes)

	if hwOK {
		if err := hw.Stop(); err == nil {
			if cycles, instructions, ok := hw.Report(); ok {
				fmt.Printf("partmesh: rank %d face exchange: %d cycles, %d instructions\n", me, cycles, instructions)
			}
		}
		hw.Close()
	}

	if me == 0 {
		fmt.Printf("dimm: partitioned %d faces / %d cells across %d ranks in %s\n", nFace, nCell, p, elapsed)
	}
	return nil
}
