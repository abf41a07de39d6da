package experiment

import (
	"context"
	"math/big"
	"slices"
	"sync/atomic"
	"testing"

	"github.com/matzehuels/robdd/pkg/bitvec"
	"github.com/matzehuels/robdd/pkg/errors"
)

func sizes(h []Bucket) map[int]int {
	out := make(map[int]int, len(h))
	for _, b := range h {
		out[b.Size] = b.Occurrences
	}
	return out
}

func TestRunExhaustive(t *testing.T) {
	tests := []struct {
		vars int
		want map[int]int
	}{
		{0, map[int]int{1: 2}},
		{1, map[int]int{1: 2, 3: 2}},
		// constants, single literals, and/or-like, xor/xnor
		{2, map[int]int{1: 2, 3: 4, 4: 8, 5: 2}},
	}

	for _, tt := range tests {
		res, err := Run(context.Background(), Options{Vars: tt.vars, Workers: 3})
		if err != nil {
			t.Fatalf("Run(%d): %v", tt.vars, err)
		}
		got := sizes(res.Histogram)
		if len(got) != len(tt.want) {
			t.Errorf("vars=%d histogram = %v, want %v", tt.vars, got, tt.want)
			continue
		}
		for size, n := range tt.want {
			if got[size] != n {
				t.Errorf("vars=%d size %d: %d diagrams, want %d", tt.vars, size, got[size], n)
			}
		}
		if !res.Record.Exhaustive || res.Compensation.Cmp(big.NewInt(1)) != 0 {
			t.Errorf("vars=%d should be exhaustive without compensation", tt.vars)
		}
		if res.Record.Diagrams != 1<<(1<<tt.vars) {
			t.Errorf("vars=%d diagrams = %d", tt.vars, res.Record.Diagrams)
		}
	}
}

func TestRunExhaustiveThreeVars(t *testing.T) {
	res, err := Run(context.Background(), Options{Vars: 3})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	total := 0
	for i, b := range res.Histogram {
		total += b.Occurrences
		if i > 0 && res.Histogram[i-1].Size >= b.Size {
			t.Error("histogram should be sorted by size")
		}
	}
	if total != 256 {
		t.Errorf("occurrences sum to %d, want 256", total)
	}
	if res.Record.UniqueSizes != len(res.Histogram) {
		t.Error("UniqueSizes should match the histogram length")
	}
}

func TestRunSampled(t *testing.T) {
	opts := Options{Vars: 5, Samples: 40, Seed: 7, Workers: 4}
	res, err := Run(context.Background(), opts)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if res.Record.Exhaustive {
		t.Error("5 variables should be sampled")
	}

	want := new(big.Int).Lsh(big.NewInt(1), 32)
	want.Quo(want, big.NewInt(40))
	if res.Compensation.Cmp(want) != 0 {
		t.Errorf("compensation = %s, want %s", res.Compensation, want)
	}

	total := 0
	for _, b := range res.Histogram {
		total += b.Occurrences
		if b.Count.Cmp(new(big.Int).Mul(big.NewInt(int64(b.Occurrences)), want)) != 0 {
			t.Errorf("size %d count = %s, not compensated", b.Size, b.Count)
		}
	}
	if total != 40 {
		t.Errorf("occurrences sum to %d, want 40", total)
	}
	// the all-false table is always part of the sample
	if res.Histogram[0].Size != 1 {
		t.Errorf("smallest size = %d, want 1", res.Histogram[0].Size)
	}
}

func TestRunDeterministic(t *testing.T) {
	a, err := Run(context.Background(), Options{Vars: 5, Samples: 30, Seed: 42, Workers: 1})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	b, err := Run(context.Background(), Options{Vars: 5, Samples: 30, Seed: 42, Workers: 8})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if !slices.EqualFunc(a.Histogram, b.Histogram, func(x, y Bucket) bool {
		return x.Size == y.Size && x.Occurrences == y.Occurrences
	}) {
		t.Errorf("same seed gave different histograms: %v vs %v", sizes(a.Histogram), sizes(b.Histogram))
	}
	if a.Record.ID == b.Record.ID {
		t.Error("every run should get its own id")
	}
}

func TestRunProgress(t *testing.T) {
	var calls atomic.Int32
	last := 0
	_, err := Run(context.Background(), Options{
		Vars:    2,
		Workers: 4,
		Progress: func(done, total int) {
			calls.Add(1)
			if done != last+1 || total != 16 {
				t.Errorf("progress(%d, %d) after %d", done, total, last)
			}
			last = done
		},
	})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if calls.Load() != 16 {
		t.Errorf("progress called %d times, want 16", calls.Load())
	}
}

func TestRunCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := Run(ctx, Options{Vars: 4}); err == nil {
		t.Error("Run should fail on a canceled context")
	}
}

func TestValidateAndSetDefaults(t *testing.T) {
	o := Options{Vars: 3}
	if err := o.ValidateAndSetDefaults(); err != nil {
		t.Fatalf("ValidateAndSetDefaults: %v", err)
	}
	if o.Samples != DefaultSamples || o.Workers < 1 || o.Seed == 0 || o.Logger == nil {
		t.Errorf("defaults not applied: %+v", o)
	}

	for _, bad := range []Options{{Vars: -1}, {Vars: MaxVars + 1}, {Vars: 5, Samples: -3}} {
		if err := bad.ValidateAndSetDefaults(); !errors.Is(err, errors.ErrCodeInvalidInput) {
			t.Errorf("%+v: err = %v, want INVALID_INPUT", bad, err)
		}
	}
}

func TestSourceSampledDistinct(t *testing.T) {
	src := newSource(Options{Vars: 5, Samples: 200, Seed: 3})
	seen := map[string]bool{}
	for i := range src.total() {
		table := src.next()
		if len(table) != 32 {
			t.Fatalf("table width = %d", len(table))
		}
		key := bitvec.String(table)
		if i == 0 && bitvec.Int(table).Sign() != 0 {
			t.Error("first sampled table should be all false")
		}
		if seen[key] {
			t.Fatalf("table %s sampled twice", key)
		}
		seen[key] = true
	}
}

func TestSourceExhaustiveOrder(t *testing.T) {
	src := newSource(Options{Vars: 1})
	for x := range uint64(4) {
		if got := bitvec.Int(src.next()).Uint64(); got != x {
			t.Errorf("table %d = %d", x, got)
		}
	}
}
