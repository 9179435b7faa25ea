package main

import (
	"context"
	"flag"
	"log"

	"marketmaker/internal/chaos"
	"marketmaker/internal/core"
	"marketmaker/internal/obs"
	"marketmaker/internal/ops"
	"marketmaker/internal/recorder"
	"marketmaker/internal/risk"
)

func main() {
	inputDir := flag.String("input-dir", "testdata/tape", "Input tape directory")
	inputPrefix := flag.String("input-prefix", "", "Input tape file prefix (default: tape)")
	outputDir := flag.String("output-dir", "testdata/tape_chaos", "Output tape directory")
	outputPrefix := flag.String("output-prefix", "chaos", "Output tape file prefix")
	configPath := flag.String("config", "", "Path to a JSON or YAML trader config")
	seed := flag.Int64("seed", 0, "RNG seed (0=now)")
	dropRate := flag.Float64("drop-rate", 0, "Tick drop probability [0-1]")
	dupRate := flag.Float64("dup-rate", 0, "Tick duplicate probability [0-1]")
	bookDropRate := flag.Float64("book-drop-rate", 0, "Probability of dropping one order book [0-1]")
	obsDropRate := flag.Float64("observation-drop-rate", 0, "Probability of dropping conversion observations [0-1]")
	reorderWindow := flag.Int("reorder-window", 1, "Reorder window (>=1)")
	maxJitter := flag.Int64("max-jitter", 0, "Max timestamp jitter")
	flag.Parse()

	loaded := ops.Default()
	if *configPath != "" {
		var err error
		if loaded, err = ops.Load(*configPath); err != nil {
			log.Fatalf("config load failed: %v", err)
		}
	}

	metrics := obs.NewMetrics()
	trader, err := core.New(core.Config{Stateless: loaded.Stateless, Metrics: metrics}, risk.NewEngine(loaded.Limits), loaded.Generators...)
	if err != nil {
		log.Fatalf("trader init failed: %v", err)
	}

	pb, err := recorder.NewPlayback(recorder.PlaybackConfig{Dir: *inputDir, FilePrefix: *inputPrefix})
	if err != nil {
		log.Fatalf("playback init failed: %v", err)
	}

	engine, err := chaos.NewEngine(chaos.Config{
		Seed:                *seed,
		DropRate:            *dropRate,
		DuplicateRate:       *dupRate,
		BookDropRate:        *bookDropRate,
		ObservationDropRate: *obsDropRate,
		ReorderWindow:       *reorderWindow,
		MaxJitter:           *maxJitter,
	})
	if err != nil {
		log.Fatalf("chaos config invalid: %v", err)
	}

	outCfg := recorder.DefaultConfig(*outputDir)
	outCfg.FilePrefix = *outputPrefix
	writer, err := recorder.NewWriter(outCfg)
	if err != nil {
		log.Fatalf("writer init failed: %v", err)
	}
	ctx := context.Background()
	if err := writer.Start(ctx); err != nil {
		log.Fatalf("writer start failed: %v", err)
	}

	st := core.NewState()
	var failed int
	trade := func(en recorder.Entry) error {
		snap, err := en.Snapshot()
		if err != nil {
			failed++
			return nil
		}
		out, err := trader.Run(snap, st)
		if err != nil {
			failed++
			return nil
		}
		return writer.Record(snap, out)
	}

	err = pb.Run(ctx, func(en recorder.Entry) error {
		for _, out := range engine.Process(en) {
			if err := trade(out); err != nil {
				return err
			}
		}
		return nil
	})
	if err == nil {
		for _, out := range engine.Flush() {
			if err = trade(out); err != nil {
				break
			}
		}
	}
	if err != nil {
		log.Fatalf("playback failed: %v", err)
	}
	if err := writer.Close(); err != nil {
		log.Fatalf("writer close failed: %v", err)
	}

	snapshot := metrics.Snapshot()
	log.Printf("chaos run: ticks=%d rejected=%d failed=%d skips=%v orders=%v guard=%v",
		snapshot.Ticks, snapshot.RejectedTicks, failed, snapshot.Skips, snapshot.Orders, snapshot.GuardReasonCounts)
}
