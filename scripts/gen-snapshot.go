// ABOUTME: Generates a synthetic cluster snapshot JSON for offline/demo use
// ABOUTME: Output feeds the --snapshot flag and the POST /api/v1/report endpoint

package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"math/rand"
	"os"

	"github.com/rnelson0/vsphere-capacity-report/capacity"
)

func main() {
	cluster := flag.String("cluster", "demo", "cluster name")
	hosts := flag.Int("hosts", 4, "number of hosts")
	vms := flag.Int("vms", 40, "number of VMs")
	seed := flag.Int64("seed", 1, "random seed (same seed, same snapshot)")
	out := flag.String("out", "", "output file (default stdout)")
	flag.Parse()

	if *hosts < 1 || *vms < 0 {
		fmt.Fprintln(os.Stderr, "need at least 1 host and a non-negative VM count")
		os.Exit(1)
	}

	rng := rand.New(rand.NewSource(*seed))

	snap := capacity.ClusterSnapshot{Cluster: *cluster}
	for i := 0; i < *hosts; i++ {
		totalGB := float64(256 + 128*rng.Intn(3)) // 256, 384 or 512
		snap.Hosts = append(snap.Hosts, capacity.HostSample{
			Name:          fmt.Sprintf("esx-%02d.%s.local", i+1, *cluster),
			Sockets:       2,
			Cores:         16 + 8*rng.Intn(3),
			Threads:       2 * (16 + 8*rng.Intn(3)),
			MemoryTotalGB: totalGB,
			MemoryUsedGB:  totalGB * (0.3 + 0.4*rng.Float64()),
			CPUModel:      "Intel(R) Xeon(R) Gold 6330 CPU @ 2.00GHz",
		})
	}

	for i := 0; i < *vms; i++ {
		host := &snap.Hosts[rng.Intn(*hosts)]
		vm := capacity.VMSample{
			Name:     fmt.Sprintf("vm-%03d", i+1),
			VCPUs:    1 << rng.Intn(4), // 1, 2, 4 or 8
			MemoryGB: float64(int(2) << rng.Intn(4)),
			Host:     host.Name,
		}
		host.VMCount++
		host.VCPUCount += vm.VCPUs
		snap.VMs = append(snap.VMs, vm)
	}

	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		fmt.Fprintf(os.Stderr, "marshal: %v\n", err)
		os.Exit(1)
	}
	data = append(data, '\n')

	if *out == "" {
		os.Stdout.Write(data)
		return
	}
	if err := os.WriteFile(*out, data, 0o644); err != nil {
		fmt.Fprintf(os.Stderr, "write %s: %v\n", *out, err)
		os.Exit(1)
	}
}
