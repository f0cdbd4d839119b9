package linkpred

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/cnclabs/kgrank/pkg/knowledge"
)

// Evaluator runs full-catalog link prediction over a knowledge graph and
// aggregates rank statistics. Batches are independent, so they run
// data-parallel on up to Workers goroutines; the model's embedding tables
// must not be trained while a run is in flight.
type Evaluator struct {
	Model Model

	// Workers bounds batch-level parallelism. Values below 1 mean serial.
	Workers int

	// Ks are the cutoffs reported as Hits@k. Defaults to 1, 3, 10.
	Ks []int
}

// Report aggregates rank statistics over head and tail completion passes.
type Report struct {
	Samples int

	MeanRank         float64
	FilteredMeanRank float64
	MRR              float64
	FilteredMRR      float64

	HitsAt         map[int]float64
	FilteredHitsAt map[int]float64

	TailMeanRank float64
	HeadMeanRank float64
}

// Run evaluates every triple of the graph in batches of batchSize, ranking
// both the true tail and the true head of each triple against all entities.
// Filtering uses the graph's completion indexes. Cancelling ctx stops the
// run between batches.
func (ev *Evaluator) Run(ctx context.Context, kg *knowledge.KnowledgeGraph, batchSize int) (*Report, error) {
	batches := kg.Batches(batchSize)

	workers := ev.Workers
	if workers < 1 {
		workers = 1
	}

	results := make([]BatchRanks, len(batches))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for bi, b := range batches {
		bi, b := bi, b
		g.Go(func() error {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}
			results[bi] = EvaluateCandidates(ev.Model, b.Head, b.Tail, b.Rel, kg.HeadCompletions, kg.TailCompletions)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	ks := ev.Ks
	if len(ks) == 0 {
		ks = []int{1, 3, 10}
	}
	return aggregate(results, ks), nil
}

func aggregate(results []BatchRanks, ks []int) *Report {
	r := &Report{
		HitsAt:         make(map[int]float64, len(ks)),
		FilteredHitsAt: make(map[int]float64, len(ks)),
	}

	var (
		rankSum, filtSum         float64
		rrSum, filtRRSum         float64
		tailRankSum, headRankSum float64
		hits                     = make(map[int]int, len(ks))
		filtHits                 = make(map[int]int, len(ks))
		samples                  int
	)

	count := func(rank, filtered int64, sideSum *float64) {
		samples++
		rankSum += float64(rank)
		filtSum += float64(filtered)
		rrSum += 1.0 / float64(rank)
		filtRRSum += 1.0 / float64(filtered)
		*sideSum += float64(rank)
		for _, k := range ks {
			if rank <= int64(k) {
				hits[k]++
			}
			if filtered <= int64(k) {
				filtHits[k]++
			}
		}
	}

	for _, br := range results {
		for i := range br.TailRank {
			count(br.TailRank[i], br.TailFilteredRank[i], &tailRankSum)
			count(br.HeadRank[i], br.HeadFilteredRank[i], &headRankSum)
		}
	}

	if samples == 0 {
		return r
	}

	n := float64(samples)
	r.Samples = samples
	r.MeanRank = rankSum / n
	r.FilteredMeanRank = filtSum / n
	r.MRR = rrSum / n
	r.FilteredMRR = filtRRSum / n
	r.TailMeanRank = tailRankSum / (n / 2)
	r.HeadMeanRank = headRankSum / (n / 2)
	for _, k := range ks {
		r.HitsAt[k] = float64(hits[k]) / n
		r.FilteredHitsAt[k] = float64(filtHits[k]) / n
	}
	return r
}

// String formats the report for terminal output.
func (r *Report) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Link Prediction Evaluation (%d ranked samples):\n", r.Samples)
	fmt.Fprintf(&sb, "\tMean Rank:\t\t%.2f (filtered: %.2f)\n", r.MeanRank, r.FilteredMeanRank)
	fmt.Fprintf(&sb, "\tMRR:\t\t\t%.4f (filtered: %.4f)\n", r.MRR, r.FilteredMRR)
	fmt.Fprintf(&sb, "\tTail/Head Mean Rank:\t%.2f / %.2f\n", r.TailMeanRank, r.HeadMeanRank)

	ks := make([]int, 0, len(r.HitsAt))
	for k := range r.HitsAt {
		ks = append(ks, k)
	}
	sort.Ints(ks)
	for _, k := range ks {
		fmt.Fprintf(&sb, "\tHits@%d:\t\t\t%.2f%% (filtered: %.2f%%)\n",
			k, r.HitsAt[k]*100, r.FilteredHitsAt[k]*100)
	}
	return sb.String()
}
