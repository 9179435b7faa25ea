package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"marketmaker/internal/core"
	"marketmaker/internal/feed"
	"marketmaker/internal/journal"
	"marketmaker/internal/obs"
	"marketmaker/internal/ops"
	"marketmaker/internal/recorder"
	"marketmaker/internal/risk"

	pyroscope "github.com/grafana/pyroscope-go"
	"github.com/joho/godotenv"
	"github.com/yanun0323/errors"
	"github.com/yanun0323/logs"
)

const (
	modeStdin  = "stdin"
	modeServe  = "serve"
	modeDial   = "dial"
	modeReplay = "replay"
)

type options struct {
	configPath  string
	mode        string
	addr        string
	url         string
	tapeDir     string
	replaySpeed float64
	pgDSN       string
	metricsAddr string
	pyroscope   string
	stateless   bool
}

func main() {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Fatalf("load .env failed: %v", err)
	}

	var opt options
	flag.StringVar(&opt.configPath, "config", os.Getenv("TRADER_CONFIG"), "Path to a JSON or YAML config (empty=defaults)")
	flag.StringVar(&opt.mode, "mode", modeStdin, "stdin | serve | dial | replay")
	flag.StringVar(&opt.addr, "addr", ":8080", "Listen address in serve mode")
	flag.StringVar(&opt.url, "url", os.Getenv("TRADER_FEED_URL"), "Exchange websocket URL in dial mode")
	flag.StringVar(&opt.tapeDir, "tape-dir", "", "Tape directory: recorded into when trading, read from in replay mode")
	flag.Float64Var(&opt.replaySpeed, "replay-speed", 0, "Replay pacing (1=recorded pace, 0=no pacing)")
	flag.StringVar(&opt.pgDSN, "pg-dsn", os.Getenv("TRADER_PG_DSN"), "PostgreSQL DSN for the tick journal (empty=disabled)")
	flag.StringVar(&opt.metricsAddr, "metrics-addr", "", "Prometheus listen address (empty=disabled)")
	flag.StringVar(&opt.pyroscope, "pyroscope", os.Getenv("PYROSCOPE_SERVER"), "Pyroscope server address (empty=disabled)")
	flag.BoolVar(&opt.stateless, "stateless", false, "Carry strategy state in trader data")
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if opt.pyroscope != "" {
		profiler, err := pyroscope.Start(pyroscope.Config{
			ApplicationName: "marketmaker.trader",
			ServerAddress:   opt.pyroscope,
			Tags:            map[string]string{"mode": opt.mode},
			ProfileTypes: []pyroscope.ProfileType{
				pyroscope.ProfileCPU,
				pyroscope.ProfileAllocObjects,
				pyroscope.ProfileAllocSpace,
				pyroscope.ProfileInuseObjects,
				pyroscope.ProfileInuseSpace,
			},
		})
		if err != nil {
			log.Fatalf("pyroscope start failed: %v", err)
		}
		defer func() {
			_ = profiler.Stop()
		}()
	}

	if err := run(ctx, opt); err != nil {
		log.Fatalf("%s failed: %+v", opt.mode, err)
	}
}

func run(ctx context.Context, opt options) error {
	loaded := ops.Default()
	if opt.configPath != "" {
		var err error
		if loaded, err = ops.Load(opt.configPath); err != nil {
			return err
		}
	}

	metrics := obs.NewMetrics()
	if opt.metricsAddr != "" {
		obs.Serve(ctx, opt.metricsAddr, metrics)
		logs.Infof("metrics served on %s", opt.metricsAddr)
	}

	trader, err := core.New(core.Config{
		Stateless: loaded.Stateless || opt.stateless,
		Metrics:   metrics,
	}, risk.NewEngine(loaded.Limits), loaded.Generators...)
	if err != nil {
		return err
	}
	for _, g := range trader.Generators() {
		logs.Infof("generator %s trades %v", g.Name(), g.Products())
	}

	if opt.mode == modeReplay {
		return runReplay(ctx, opt, trader)
	}

	sinks, closeSinks, err := openSinks(ctx, opt)
	if err != nil {
		return err
	}
	defer closeSinks()

	responder := feed.NewResponder(trader, core.NewState(), sinks...)
	switch opt.mode {
	case modeStdin:
		err = feed.NewStream(os.Stdin, os.Stdout, responder).Run(ctx)
	case modeServe:
		logs.Infof("feed listening on %s/ws", opt.addr)
		err = feed.NewServer(responder).ListenAndServe(ctx, opt.addr)
	case modeDial:
		if opt.url == "" {
			return errors.New("dial mode needs -url")
		}
		err = feed.NewClient(ctx, opt.url, responder).Run(ctx)
	default:
		return errors.Errorf("unknown mode %q", opt.mode)
	}

	snapshot := metrics.Snapshot()
	logs.Infof("trader stopped: ticks=%d rejected=%d conversions=%d orders=%v skips=%v tick_latency=%+v",
		snapshot.Ticks, snapshot.RejectedTicks, snapshot.Conversions, snapshot.Orders, snapshot.Skips, snapshot.TickLatency)
	if ctx.Err() != nil {
		// stopped by a signal
		return nil
	}
	return err
}

func openSinks(ctx context.Context, opt options) ([]feed.Sink, func(), error) {
	var (
		sinks   []feed.Sink
		closers []func()
	)
	closeAll := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}

	if opt.tapeDir != "" {
		w, err := recorder.NewWriter(recorder.DefaultConfig(opt.tapeDir))
		if err != nil {
			return nil, nil, err
		}
		if err := w.Start(ctx); err != nil {
			return nil, nil, err
		}
		sinks = append(sinks, w)
		closers = append(closers, func() {
			if err := w.Close(); err != nil {
				logs.Errorf("close tape writer, err: %+v", err)
			}
		})
	}

	if opt.pgDSN != "" {
		db, err := journal.Open(journal.Option{DSN: opt.pgDSN})
		if err != nil {
			closeAll()
			return nil, nil, err
		}
		j, err := journal.New(db)
		if err != nil {
			closeAll()
			return nil, nil, err
		}
		logs.Infof("journal run %s", j.RunID())
		sinks = append(sinks, j)
		closers = append(closers, func() {
			if sqlDB, err := db.DB(); err == nil {
				_ = sqlDB.Close()
			}
		})
	}

	return sinks, closeAll, nil
}

func runReplay(ctx context.Context, opt options, trader *core.Trader) error {
	if opt.tapeDir == "" {
		return errors.New("replay mode needs -tape-dir")
	}
	pb, err := recorder.NewPlayback(recorder.PlaybackConfig{Dir: opt.tapeDir, Speed: opt.replaySpeed})
	if err != nil {
		return err
	}

	start := time.Now()
	report, err := recorder.Replay(ctx, pb, trader, core.NewState())
	if err != nil {
		return err
	}
	for _, m := range report.Mismatches {
		logs.Warnf("diverged at %d on %s: recorded %v, replayed %v", m.Timestamp, m.Product, m.Recorded, m.Replayed)
	}
	logs.Infof("replay completed in %s: ticks=%d mismatches=%d conversion_mismatches=%d",
		time.Since(start), report.Ticks, len(report.Mismatches), report.ConversionMismatches)
	if len(report.Mismatches) != 0 || report.ConversionMismatches != 0 {
		return errors.Errorf("replay diverged on %d ticks", len(report.Mismatches)+report.ConversionMismatches)
	}
	return nil
}
