// Bench is a benchmarking tool for measuring uidtable build performance,
// lookup throughput, and memory usage.
//
// Usage:
//
//	go run ./cmd/bench -phrases 10000000 -workers 8
//
// Flags:
//
//	-phrases   Number of synthetic phrases (default: 10,000,000)
//	-len       Phrase length in bytes (default: 10)
//	-workers   Number of hashing workers, 0 for GOMAXPROCS (default: 0)
//	-queries   Number of hit and miss lookups each (default: 1,000,000)
package main

import (
	"context"
	"encoding/binary"
	"flag"
	"fmt"
	mrand "math/rand/v2"
	"os"
	"path/filepath"
	"runtime"
	"runtime/metrics"
	"runtime/pprof"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/spaolacci/murmur3"

	"github.com/tamirms/uidtable"
)

// getMaxRSS returns the maximum resident set size in bytes.
// Uses getrusage(RUSAGE_SELF) which tracks peak RSS since process start.
func getMaxRSS() uint64 {
	var rusage syscall.Rusage
	if err := syscall.Getrusage(syscall.RUSAGE_SELF, &rusage); err != nil {
		return 0
	}
	// On macOS, MaxRss is in bytes. On Linux, it's in kilobytes.
	maxRSS := uint64(rusage.Maxrss)
	if runtime.GOOS == "linux" {
		maxRSS *= 1024
	}
	return maxRSS
}

const alphabet = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// syntheticCorpus returns n random phrases of length size, one per line.
func syntheticCorpus(rng *mrand.Rand, n, size int) []byte {
	buf := make([]byte, 0, n*(size+1))
	for range n {
		for range size {
			buf = append(buf, alphabet[rng.IntN(len(alphabet))])
		}
		buf = append(buf, '\n')
	}
	return buf
}

// missUID derives a UID that is unlikely to be in any table from a counter.
func missUID(i uint64) uidtable.UID {
	var b [8]byte
	binary.LittleEndian.PutUint64(b[:], i)
	return uidtable.UID(murmur3.Sum64(b[:])) & uidtable.MaxUID
}

func main() {
	phrasesFlag := flag.Int("phrases", 10_000_000, "number of synthetic phrases")
	lenFlag := flag.Int("len", 10, "phrase length in bytes")
	workersFlag := flag.Int("workers", 0, "number of hashing workers (0 = GOMAXPROCS)")
	queriesFlag := flag.Int("queries", 1_000_000, "number of hit and miss lookups each")
	cpuprofile := flag.String("cpuprofile", "", "write cpu profile to file (build phase only)")
	flag.Parse()

	numPhrases := *phrasesFlag
	rng := mrand.New(mrand.NewPCG(0x1234, 0x5678))

	fmt.Println("Generating phrases...")
	words := syntheticCorpus(rng, numPhrases, *lenFlag)

	tmpDir, err := os.MkdirTemp("", "bench-")
	if err != nil {
		fmt.Printf("Failed to create temp dir: %v\n", err)
		return
	}
	defer func() { _ = os.RemoveAll(tmpDir) }()
	tablePath := filepath.Join(tmpDir, "table.bin")

	runtime.GC()
	var baseline runtime.MemStats
	runtime.ReadMemStats(&baseline)
	baselineRSS := getMaxRSS()

	// 10ms sampling for peak heap, using runtime/metrics to avoid
	// stop-the-world pauses from ReadMemStats.
	var peakAlloc atomic.Uint64
	peakAlloc.Store(baseline.Alloc)
	done := make(chan struct{})
	go func() {
		samples := []metrics.Sample{{Name: "/memory/classes/heap/objects:bytes"}}
		ticker := time.NewTicker(10 * time.Millisecond)
		defer ticker.Stop()
		for {
			select {
			case <-done:
				return
			case <-ticker.C:
				metrics.Read(samples)
				heapBytes := samples[0].Value.Uint64()
				for {
					old := peakAlloc.Load()
					if heapBytes <= old || peakAlloc.CompareAndSwap(old, heapBytes) {
						break
					}
				}
			}
		}
	}()

	if *cpuprofile != "" {
		f, err := os.Create(*cpuprofile)
		if err != nil {
			fmt.Printf("could not create CPU profile: %v\n", err)
			return
		}
		defer func() { _ = f.Close() }()
		if err := pprof.StartCPUProfile(f); err != nil {
			fmt.Printf("could not start CPU profile: %v\n", err)
			return
		}
	}

	fmt.Println("Building table...")
	built, stats, err := uidtable.BuildFile(context.Background(), words, tablePath,
		uidtable.WithWorkers(*workersFlag))
	if *cpuprofile != "" {
		pprof.StopCPUProfile()
	}
	close(done)
	if err != nil {
		fmt.Printf("Build failed: %v\n", err)
		return
	}
	peakHeapMem := peakAlloc.Load() - min(baseline.Alloc, peakAlloc.Load())
	peakRSSMem := getMaxRSS() - min(baselineRSS, getMaxRSS())

	table, err := uidtable.Open(tablePath)
	if err != nil {
		fmt.Printf("Open failed: %v\n", err)
		return
	}
	defer func() { _ = table.Close() }()

	// Collect hit uids from the built table in random order.
	hits := make([]uidtable.UID, 0, built.Len())
	for uid := range built.All() {
		hits = append(hits, uid)
	}
	rng.Shuffle(len(hits), func(i, j int) { hits[i], hits[j] = hits[j], hits[i] })

	numQueries := *queriesFlag
	if len(hits) == 0 || numQueries <= 0 {
		fmt.Println("Nothing to query")
		return
	}
	fmt.Println("Benchmarking hits...")
	hitStart := time.Now()
	for i := range numQueries {
		_, _ = table.Find(hits[i%len(hits)])
	}
	hitDuration := time.Since(hitStart)

	fmt.Println("Benchmarking misses...")
	falseHits := 0
	missStart := time.Now()
	for i := range numQueries {
		if _, ok := table.Find(missUID(uint64(i))); ok {
			falseHits++
		}
	}
	missDuration := time.Since(missStart)

	info, _ := os.Stat(tablePath)
	perQuery := func(d time.Duration) float64 {
		return float64(d.Nanoseconds()) / float64(numQueries) / 1000
	}

	fmt.Printf("\n")
	fmt.Printf("╔═════════════════════╦════════════════╗\n")
	fmt.Printf("║ Metric              ║ Value          ║\n")
	fmt.Printf("╠═════════════════════╬════════════════╣\n")
	fmt.Printf("║ Phrases             ║ %12d   ║\n", numPhrases)
	fmt.Printf("║ Entries             ║ %12d   ║\n", stats.Entries)
	fmt.Printf("║ Collisions          ║ %12d   ║\n", stats.Collisions)
	fmt.Printf("║ Workers             ║ %12d   ║\n", stats.Workers)
	fmt.Printf("║ Table size          ║ %8.1f MB    ║\n", float64(info.Size())/1_000_000)
	fmt.Printf("║ Build time          ║ %6.2f sec     ║\n", stats.Duration.Seconds())
	fmt.Printf("║ Build throughput    ║ %6.2f M/sec   ║\n", float64(numPhrases)/stats.Duration.Seconds()/1_000_000)
	fmt.Printf("║ Hit latency         ║ %6.3f μs      ║\n", perQuery(hitDuration))
	fmt.Printf("║ Miss latency        ║ %6.3f μs      ║\n", perQuery(missDuration))
	fmt.Printf("║ False hits          ║ %12d   ║\n", falseHits)
	fmt.Printf("║ Peak heap memory    ║ %6.1f MB      ║\n", float64(peakHeapMem)/1_000_000)
	fmt.Printf("║ Peak RSS memory     ║ %6.1f MB      ║\n", float64(peakRSSMem)/1_000_000)
	fmt.Printf("╚═════════════════════╩════════════════╝\n")
}
