package kv

import (
	"fmt"
	"io"
	"math"
	"sync"
	"time"

	"github.com/ValentinKolb/prefKV/cmd/util"
	"github.com/ValentinKolb/prefKV/lib/store"
	"github.com/ValentinKolb/prefKV/lib/store/lstore"
	gometrics "github.com/rcrowley/go-metrics"
	"github.com/spf13/cobra"
)

const perfKeyPrefix = "__perf"

// perfTest is one workload; op is called with the worker index and the iteration
type perfTest struct {
	name string
	prep func(p store.Prefs, keys []string)
	op   func(p store.Prefs, key string, i int)
}

var perfTests = []perfTest{
	{
		name: "commit",
		op: func(p store.Prefs, key string, i int) {
			p.CommitLong(key, int64(i))
		},
	},
	{
		name: "apply",
		op: func(p store.Prefs, key string, i int) {
			p.ApplyLong(key, int64(i))
		},
	},
	{
		name: "get",
		prep: fillKeys,
		op: func(p store.Prefs, key string, _ int) {
			p.GetLong(key)
		},
	},
	{
		name: "get-double",
		prep: fillKeys,
		op: func(p store.Prefs, key string, _ int) {
			p.GetDouble(key)
		},
	},
	{
		name: "contains",
		prep: fillKeys,
		op: func(p store.Prefs, key string, _ int) {
			p.Contains(key)
		},
	},
	{
		name: "mixed",
		prep: fillKeys,
		op: func(p store.Prefs, key string, i int) {
			switch i % 4 {
			case 0: // deferred write
				p.ApplyString(key, "test")
			case 1: // read
				p.GetString(key)
			case 2: // synchronous remove
				p.CommitRemove(key)
			case 3: // presence
				p.Contains(key)
			}
		},
	},
}

func (s *session) perfCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "perf",
		Short: "Measures the latency of reads and writes on the selected store",
		Long: `Runs several workloads against the selected store and prints latency
percentiles per workload. All keys used start with "__perf" and are
removed afterwards.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ops, _ := cmd.Flags().GetInt("ops")
			threads, _ := cmd.Flags().GetInt("threads")
			keySpread, _ := cmd.Flags().GetInt("keys")
			withMetrics, _ := cmd.Flags().GetBool("metrics")

			if ops < 1 || threads < 1 || keySpread < 1 {
				return fmt.Errorf("ops, threads and keys must be positive")
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, "Performance test for prefKV")
			fmt.Fprint(out, util.GetConfig(s.v).String())
			fmt.Fprintf(out, "\n  %-22s: %s\n  %-22s: %d\n  %-22s: %d\n\n", "Store", s.prefs.Name(), "Threads", threads, "Operations", ops)

			registry := gometrics.NewRegistry()
			keys := perfKeys(keySpread)
			defer cleanupKeys(s.prefs, keys)

			for _, test := range perfTests {
				timer := gometrics.GetOrRegisterTimer(test.name, registry)
				elapsed := runPerfTest(s.prefs, test, keys, ops, threads, timer)
				printResult(out, test.name, timer, elapsed)
			}

			if withMetrics {
				fmt.Fprintln(out)
				lstore.WritePrometheus(out)
			}
			return nil
		},
	}
	cmd.Flags().Int("ops", 10000, util.WrapString("Number of operations per workload"))
	cmd.Flags().Int("threads", 4, util.WrapString("Number of goroutines issuing operations"))
	cmd.Flags().Int("keys", 100, util.WrapString("How many different keys to use for the tests"))
	cmd.Flags().Bool("metrics", false, util.WrapString("Print the store metrics in Prometheus format afterwards"))
	return cmd
}

// runPerfTest spreads ops over threads workers, times every operation and returns
// the wall time of the whole run including the flush of deferred writes
func runPerfTest(p store.Prefs, test perfTest, keys []string, ops, threads int, timer gometrics.Timer) time.Duration {
	if test.prep != nil {
		test.prep(p, keys)
	}

	var wg sync.WaitGroup
	start := time.Now()
	for w := 0; w < threads; w++ {
		n := ops / threads
		if w < ops%threads {
			n++
		}
		wg.Add(1)
		go func(worker, n int) {
			defer wg.Done()
			for i := 0; i < n; i++ {
				key := keys[(worker+i*threads)%len(keys)]
				opStart := time.Now()
				test.op(p, key, i)
				timer.UpdateSince(opStart)
			}
		}(w, n)
	}
	wg.Wait()
	p.Store().Flush()
	return time.Since(start)
}

// --------------------------------------------------------------------------
// Helper
// --------------------------------------------------------------------------

func perfKeys(n int) []string {
	keys := make([]string, n)
	for i := range keys {
		keys[i] = fmt.Sprintf("%s-%d", perfKeyPrefix, i)
	}
	return keys
}

func fillKeys(p store.Prefs, keys []string) {
	e := p.Edit()
	for i, k := range keys {
		e.PutLong(k, int64(i))
	}
	e.Commit()
}

func cleanupKeys(p store.Prefs, keys []string) {
	e := p.Edit()
	for _, k := range keys {
		e.Remove(k)
	}
	e.Commit()
}

// printResult prints the result of one workload in a formatted way
func printResult(w io.Writer, test string, timer gometrics.Timer, elapsed time.Duration) {
	snapshot := timer.Snapshot()
	if snapshot.Count() == 0 {
		fmt.Fprintf(w, "%-12sskipped\n", test)
		return
	}

	ps := snapshot.Percentiles([]float64{0.5, 0.99})
	opsPerSec := float64(snapshot.Count()) / math.Max(elapsed.Seconds(), 1e-9)

	fmt.Fprintf(w, "%-12s%8d ops  mean %-10s p50 %-10s p99 %-10s max %-10s %.0f ops/sec\n",
		test,
		snapshot.Count(),
		time.Duration(snapshot.Mean()),
		time.Duration(ps[0]),
		time.Duration(ps[1]),
		time.Duration(snapshot.Max()),
		opsPerSec,
	)
}
