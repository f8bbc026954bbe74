// Command atlas-saturate drives one saturation run of a small built-in
// combinatory-algebra signature (K, S, APP), for exercising the core
// end-to-end without the real persistence/parser/server collaborators,
// which are out of scope per spec.md §1.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/pomagma/atlas/atlascfg"
	"github.com/pomagma/atlas/atlaslog"
	"github.com/pomagma/atlas/carrier"
	"github.com/pomagma/atlas/engine"
	"github.com/pomagma/atlas/function"
	"github.com/pomagma/atlas/sampler"
	"github.com/pomagma/atlas/signature"
	"go.uber.org/zap"
)

func main() {
	itemDim := flag.Int("item-dim", 1024, "maximum number of live obs")
	workers := flag.Int("workers", 0, "worker count (0 = number of CPUs)")
	flag.Parse()

	if *itemDim <= 0 {
		fmt.Fprintln(os.Stderr, "Usage: atlas-saturate -item-dim=<n> [-workers=<n>]")
		os.Exit(1)
	}

	cfg, err := atlascfg.FromEnv()
	if err != nil {
		fmt.Fprintln(os.Stderr, "atlas-saturate:", err)
		os.Exit(1)
	}

	log := atlaslog.Must(cfg)
	defer log.Sync()

	workerCount := *workers
	if workerCount <= 0 {
		workerCount = runtime.NumCPU()
	}
	if workerCount < 1 {
		workerCount = 1
	}

	e, err := buildEngine(*itemDim, cfg, log)
	if err != nil {
		log.Error("build engine failed", zap.Error(err))
		os.Exit(1)
	}
	defer e.Close()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()
	ctx, cancelTimeout := context.WithTimeout(ctx, cfg.Deadline()+30*time.Second)
	defer cancelTimeout()

	log.Info("saturation starting",
		zap.Int("item_dim", *itemDim),
		zap.Int("workers", workerCount),
		zap.Duration("deadline", cfg.Deadline()),
	)

	start := time.Now()
	if err := e.Saturate(ctx, workerCount); err != nil {
		log.Error("saturation failed", zap.Error(err))
		os.Exit(1)
	}

	stats := e.Stats()
	log.Info("saturation complete",
		zap.Duration("took", time.Since(start)),
		zap.Int("item_count", stats.ItemCount),
		zap.Int("rep_count", stats.RepCount),
		zap.Uint64("merge_count", stats.MergeCount),
		zap.Uint64("enforce_count", stats.EnforceCount),
		zap.Uint64("sample_count", stats.Sampler.SampleCount),
		zap.Uint64("reject_count", stats.Sampler.RejectCount),
	)

	if err := e.Signature().Validate(); err != nil {
		log.Error("structure is inconsistent", zap.Error(err))
		os.Exit(2)
	}
	os.Exit(0)
}

// buildEngine wires a minimal demo signature: K and S as nullary
// combinators, APP as the sole binary function, enough to exercise the
// sampler's depth-bounded descent end to end.
func buildEngine(itemDim int, cfg atlascfg.Config, log *zap.Logger) (*engine.Engine, error) {
	c := carrier.New(itemDim, nil)
	sig := signature.New(c)

	sig.DeclareNullaryFunction("K", function.NewNullary(nil))
	sig.DeclareNullaryFunction("S", function.NewNullary(nil))
	sig.DeclareBinaryFunction("APP", function.NewBinary(itemDim, nil))

	spl := sampler.New(sig)
	if err := spl.SetProb("K", 1.0); err != nil {
		return nil, err
	}
	if err := spl.SetProb("S", 1.0); err != nil {
		return nil, err
	}
	if err := spl.SetProb("APP", 4.0); err != nil {
		return nil, err
	}
	if err := spl.Validate(); err != nil {
		return nil, err
	}

	return engine.New(sig, spl, cfg, engine.WithLogger(log))
}
