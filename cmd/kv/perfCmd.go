package kv

import (
	"encoding/csv"
	"fmt"
	"log"
	"math"
	"os"
	"strconv"
	"strings"
	"testing"
	"time"

	vmetrics "github.com/VictoriaMetrics/metrics"
	gometrics "github.com/rcrowley/go-metrics"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/ukvlib/ukv/cmd/util"
)

var (
	perfTestCmd = &cobra.Command{
		Use:     "perf",
		Short:   "Performance testing tool for uKV storage backends",
		Long:    "",
		RunE:    runPerf,
		PreRunE: processPerfConfig,
	}
	perfKeyPrefix        = "__test"
	perfLargeValueSizeKB = 100
	perfNumThreads       = 10
	perfKeySpread        = 100
	perfSkip             = make([]string, 0)
)

func init() {
	// add flags
	key := "skip"
	perfTestCmd.Flags().String(key, "", util.WrapString("Benchmarks to skip (comma separated - e.g. set,get)"))
	key = "threads"
	perfTestCmd.Flags().Int(key, 10, util.WrapString("Number of threads to use for the benchmark"))
	key = "large-value-size"
	perfTestCmd.Flags().Int(key, 1000, util.WrapString("How large the value for the set-large test should be (in KB)"))
	key = "keys"
	perfTestCmd.Flags().Int(key, 100, util.WrapString("How many different keys to use for the tests"))
	key = "csv"
	perfTestCmd.Flags().String(key, "", util.WrapString("Optional path to save benchmark results as CSV"))
	key = "dump-metrics"
	perfTestCmd.Flags().Bool(key, false, util.WrapString("Print the storage operation counters in Prometheus exposition format after the run"))
}

func processPerfConfig(cmd *cobra.Command, _ []string) error {
	if err := viper.BindPFlags(cmd.Flags()); err != nil {
		return err
	}

	// Read the configuration from the command line flags and environment variables
	perfLargeValueSizeKB = viper.GetInt("large-value-size")
	perfKeySpread = viper.GetInt("keys")
	perfNumThreads = viper.GetInt("threads")
	perfSkip = strings.Split(viper.GetString("skip"), ",")

	return nil
}

// benchCase describes one benchmark: an optional prepare step run before the
// timer starts and the measured operation itself.
type benchCase struct {
	name    string
	prepare func(iter func(func(string)))
	op      func(key string, counter int) error
}

// benchOutcome pairs the raw benchmark result with the latency timer that
// collected per-operation percentiles.
type benchOutcome struct {
	result testing.BenchmarkResult
	timer  gometrics.Timer
}

func runPerf(_ *cobra.Command, _ []string) error {

	fmt.Println("Performance testing tool for uKV storage backends")

	// Print configuration
	fmt.Println()
	fmt.Println("Configuration:")
	fmt.Printf("Backend: %s\n", util.GetBackendName())
	fmt.Printf("Threads: %d\n", perfNumThreads)
	fmt.Printf("Keys: %d\n", perfKeySpread)
	fmt.Println()

	fmt.Println("starting tests...")

	largeValue := make([]byte, perfLargeValueSizeKB*1024)

	cases := []benchCase{
		{
			name: "set",
			op: func(key string, _ int) error {
				return kvStore.StoreString(key, "test")
			},
		},
		{
			name: "set-large",
			op: func(key string, _ int) error {
				return kvStore.StoreRaw(key, largeValue)
			},
		},
		{
			name: "set-ttl",
			op: func(key string, _ int) error {
				return kvStore.StoreStringWithExpiry(key, "test", time.Hour)
			},
		},
		{
			name: "get",
			prepare: func(iter func(func(string))) {
				iter(func(k string) {
					if err := kvStore.StoreString(k, "test"); err != nil {
						log.Printf("(get) - error setting key: %v\n", err)
					}
				})
			},
			op: func(key string, _ int) error {
				_, err := kvStore.LoadString(key)
				return err
			},
		},
		{
			name: "incr",
			op: func(key string, _ int) error {
				_, err := kvStore.Increment(key, 1)
				return err
			},
		},
		{
			name: "delete",
			prepare: func(iter func(func(string))) {
				iter(func(k string) {
					if err := kvStore.StoreString(k, "test"); err != nil {
						log.Printf("(delete) - error setting key: %v\n", err)
					}
				})
			},
			op: func(key string, _ int) error {
				return kvStore.Delete(key)
			},
		},
		{
			name: "exists",
			prepare: func(iter func(func(string))) {
				iter(func(k string) {
					if err := kvStore.StoreString(k, "test"); err != nil {
						log.Printf("(exists) - error setting key: %v\n", err)
					}
				})
			},
			op: func(key string, _ int) error {
				_, err := kvStore.Exists(key)
				return err
			},
		},
		{
			name: "exists-not",
			op: func(_ string, counter int) error {
				key := fmt.Sprintf("%s/exists-not-%d", perfKeyPrefix, counter%100)
				_, err := kvStore.Exists(key)
				return err
			},
		},
		{
			name: "mixed",
			op: func(key string, counter int) error {
				switch counter % 4 {
				case 0: // set
					return kvStore.StoreString(key, "test")
				case 1: // get
					// misses after deletes are expected, ignore the error
					_, _ = kvStore.LoadString(key)
					return nil
				case 2: // delete
					return kvStore.Delete(key)
				default: // exists
					_, err := kvStore.Exists(key)
					return err
				}
			},
		},
	}

	// registry for the per-benchmark latency timers
	registry := gometrics.NewRegistry()
	results := make(map[string]benchOutcome)

	for _, c := range cases {
		outcome := runBench(c, registry)
		results[c.name] = outcome
		printResult(c.name, outcome)
	}

	// Write results to csv if specified
	if csvPath := viper.GetString("csv"); csvPath != "" {
		fmt.Printf("\nExporting results to CSV: %s\n", csvPath)
		if err := writeResultsToCSV(csvPath, results); err != nil {
			return fmt.Errorf("failed to export results to CSV: %v", err)
		}
		fmt.Println("Export complete")
	}

	// Dump the storage op counters if specified
	if viper.GetBool("dump-metrics") {
		fmt.Println()
		vmetrics.WritePrometheus(os.Stdout, false)
	}

	return nil
}

// --------------------------------------------------------------------------
// Helper
// --------------------------------------------------------------------------

// runBench executes a single benchmark case, feeding every operation's
// latency into a timer so percentiles can be reported alongside ns/op.
func runBench(c benchCase, registry gometrics.Registry) benchOutcome {
	timer := gometrics.GetOrRegisterTimer("perf."+c.name, registry)

	result := testing.Benchmark(func(b *testing.B) {
		if shouldSkip(c.name) {
			return
		}

		// prepare keys
		getKey, iter := getKeys(c.name)

		if c.prepare != nil {
			c.prepare(iter)
		}

		// cleanup
		b.Cleanup(func() {
			iter(func(k string) {
				if err := kvStore.Delete(k); err != nil {
					log.Printf("(%s) - error deleting key: %v\n", c.name, err)
				}
			})
		})

		b.SetParallelism(perfNumThreads)

		b.ResetTimer()

		b.RunParallel(func(pb *testing.PB) {
			counter := 0
			for pb.Next() {
				start := time.Now()
				if err := c.op(getKey(counter), counter); err != nil {
					log.Printf("(%s) - error performing operation: %v\n", c.name, err)
				}
				timer.UpdateSince(start)
				counter++
			}
		})
	})

	return benchOutcome{result: result, timer: timer}
}

func shouldSkip(test string) bool {
	// Check if the test is in the skip list
	for _, skip := range perfSkip {
		if test == skip {
			return true
		}
	}
	return false
}

// creates an array of test keys and functions to work with them
func getKeys(prefix string) (func(int) string, func(func(string))) {
	keys := make([]string, perfKeySpread)
	for i := 0; i < perfKeySpread; i++ {
		keys[i] = fmt.Sprintf("%s-%s-%d", perfKeyPrefix, prefix, i)
	}

	// Function to get a key by index (with wraparound)
	getKey := func(i int) string {
		return keys[i%perfKeySpread]
	}

	// Function to iterate over all keys and apply a function to each
	iterateKeys := func(fn func(string)) {
		for _, key := range keys {
			fn(key)
		}
	}

	return getKey, iterateKeys
}

// printResult prints the result of a benchmark test in a formatted way
func printResult(test string, outcome benchOutcome) {
	if outcome.result.NsPerOp() == 0 {
		fmt.Printf("%-20sskipped\n", test)
		return
	}

	nsPerOp := math.Max(float64(outcome.result.NsPerOp()), 1) // prevent division by zero
	opsPerSec := 1.0 / (nsPerOp / 1e9)

	p50 := time.Duration(outcome.timer.Percentile(0.5))
	p99 := time.Duration(outcome.timer.Percentile(0.99))

	// Print the formatted result
	fmt.Printf("%-20s%.0fns/op (%s/op)\t%.0f ops/sec\tp50=%s p99=%s\n",
		test, nsPerOp, time.Duration(nsPerOp), opsPerSec, p50, p99)
}

// writeResultsToCSV writes benchmark results to a CSV file
func writeResultsToCSV(csvPath string, results map[string]benchOutcome) error {
	file, err := os.Create(csvPath)
	if err != nil {
		return fmt.Errorf("failed to create CSV file: %v", err)
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	defer writer.Flush()

	// Write header
	header := []string{
		"Test", "NsPerOp", "DurationPerOp", "OpsPerSec", "P50", "P99", "Skipped",
		"Backend", "Threads", "LargeValueSizeKB", "Keys Count",
	}
	if err := writer.Write(header); err != nil {
		return fmt.Errorf("failed to write CSV header: %v", err)
	}

	// Write test results
	for test, outcome := range results {
		var nsPerOp float64
		var opsPerSec float64
		var skipped string

		if outcome.result.NsPerOp() == 0 {
			skipped = "true"
			nsPerOp = 0
			opsPerSec = 0
		} else {
			skipped = "false"
			nsPerOp = math.Max(float64(outcome.result.NsPerOp()), 1)
			opsPerSec = 1.0 / (nsPerOp / 1e9)
		}

		row := []string{
			test,
			fmt.Sprintf("%.0f", nsPerOp),
			time.Duration(nsPerOp).String(),
			fmt.Sprintf("%.0f", opsPerSec),
			time.Duration(outcome.timer.Percentile(0.5)).String(),
			time.Duration(outcome.timer.Percentile(0.99)).String(),
			skipped,
			util.GetBackendName(),
			strconv.Itoa(perfNumThreads),
			strconv.Itoa(perfLargeValueSizeKB),
			strconv.Itoa(perfKeySpread),
		}

		if err := writer.Write(row); err != nil {
			return fmt.Errorf("failed to write row for test %s: %v", test, err)
		}
	}

	return nil
}
