package main

import (
	"fmt"
	"math"
	"math/rand"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"github.com/spf13/cobra"

	"github.com/kass/emergency-locator/pkg/models"
	"github.com/kass/emergency-locator/pkg/search"
)

type benchmarkResult struct {
	TotalQueries  int
	TotalDuration time.Duration
	AvgDuration   time.Duration
	QueriesPerSec float64
	MinDuration   time.Duration
	MaxDuration   time.Duration
	Successes     int64
	Fallbacks     int64
	TotalResults  int64
}

var (
	numQueries  int
	numWorkers  int
	benchSpread float64
)

var benchCmd = &cobra.Command{
	Use:   "bench",
	Short: "Run random category searches against the configured provider",
	Long: `Run random category searches at positions scattered around the map centre and
report throughput and latency. Useful to compare the local index with PostGIS.`,
	Args: cobra.NoArgs,
	RunE: runBench,
}

func init() {
	benchCmd.Flags().IntVarP(&numQueries, "queries", "n", 1000, "Number of searches to run")
	benchCmd.Flags().IntVarP(&numWorkers, "workers", "w", runtime.NumCPU(), "Number of worker goroutines")
	benchCmd.Flags().Float64Var(&benchSpread, "spread", 10, "Search centres are scattered this many km around the map centre")
}

func runBench(cmd *cobra.Command, args []string) error {
	if numQueries <= 0 || numWorkers <= 0 {
		return fmt.Errorf("queries and workers must be positive")
	}

	ctx := cmd.Context()
	service, closer, err := newPlacesService(ctx, cfg)
	if err != nil {
		return err
	}
	defer closer.Close()
	orch := newOrchestrator(service, cfg)

	categories := search.Categories()
	center := models.Position{Lat: cfg.Map.CenterLat, Lon: cfg.Map.CenterLon}

	printTitle("Search benchmark")
	printInfo(fmt.Sprintf("Running %d searches on %s with %d workers...", numQueries, cfg.Provider, numWorkers))

	var (
		minDuration = time.Hour
		maxDuration time.Duration
		mu          sync.Mutex
		result      benchmarkResult
		done        atomic.Int64
	)

	startTime := time.Now()

	// Worker pool
	queryCh := make(chan int, numQueries)
	var wg sync.WaitGroup

	wg.Add(numWorkers)
	for w := 0; w < numWorkers; w++ {
		go func() {
			defer wg.Done()
			r := rand.New(rand.NewSource(rand.Int63()))

			for range queryCh {
				c := categories[r.Intn(len(categories))]
				pos := scatter(r, center, benchSpread)

				qStart := time.Now()
				out := orch.Search(ctx, c.Key, pos)
				d := time.Since(qStart)

				mu.Lock()
				if d < minDuration {
					minDuration = d
				}
				if d > maxDuration {
					maxDuration = d
				}
				if out.Kind == search.Success {
					result.Successes++
					result.TotalResults += int64(len(out.Places))
					if out.Calls > 1 {
						result.Fallbacks++
					}
				}
				if n := done.Add(1); workerReports(n) {
					printProgress(int(n), numQueries, "Searching")
				}
				mu.Unlock()
			}
		}()
	}

	for i := 0; i < numQueries; i++ {
		queryCh <- i
	}
	close(queryCh)
	wg.Wait()

	result.TotalQueries = numQueries
	result.TotalDuration = time.Since(startTime)
	result.AvgDuration = result.TotalDuration / time.Duration(numQueries)
	result.QueriesPerSec = float64(numQueries) / result.TotalDuration.Seconds()
	result.MinDuration = minDuration
	result.MaxDuration = maxDuration

	printSubtitle("Results")
	printStat("Total searches", result.TotalQueries)
	printStat("Total duration", result.TotalDuration.Round(time.Millisecond))
	printStat("Average duration", result.AvgDuration)
	printStat("Searches/second", fmt.Sprintf("%.2f", result.QueriesPerSec))
	printStat("Min duration", result.MinDuration)
	printStat("Max duration", result.MaxDuration)
	printStat("Successful", result.Successes)
	printStat("Needed fallback", result.Fallbacks)
	if result.Successes > 0 {
		printStat("Avg results/success", fmt.Sprintf("%.2f", float64(result.TotalResults)/float64(result.Successes)))
	}
	return nil
}

// workerReports limits progress redraws to every 1% of the run
func workerReports(n int64) bool {
	step := int64(numQueries / 100)
	if step < 1 {
		step = 1
	}
	return n%step == 0 || n == int64(numQueries)
}

// scatter returns a random position within km of center
func scatter(r *rand.Rand, center models.Position, km float64) models.Position {
	dist := r.Float64() * km * 1000
	bearing := r.Float64() * 2 * math.Pi
	dLat := dist * math.Cos(bearing) / 110540
	dLon := dist * math.Sin(bearing) / (111320 * math.Cos(center.Lat*math.Pi/180))
	return models.Position{Lat: center.Lat + dLat, Lon: center.Lon + dLon}
}
