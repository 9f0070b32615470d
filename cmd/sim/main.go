package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"prosperity_go/backtest"
	"prosperity_go/internal/app"
	"prosperity_go/internal/engine"
	"prosperity_go/internal/obs"
	"prosperity_go/internal/storage"
)

func main() {
	var (
		configPath  = flag.String("config", "", "YAML config path (empty uses built-in defaults)")
		sessionPath = flag.String("session", "", "JSON-lines session file to replay (default: replay the tick store)")
		record      = flag.Bool("record", false, "record per-tick decisions into the tick store")
		feedAddr    = flag.String("feed", "", "serve the live decision feed over websocket on this address (e.g. :8080)")
	)
	flag.Parse()

	// 1. System Bootstrapping
	bootstrap := app.NewBootstrap()
	if err := bootstrap.Initialize(*configPath); err != nil {
		slog.Error("❌ Bootstrapping failed", slog.Any("error", err))
		os.Exit(1)
	}
	defer bootstrap.Close()

	// 2. Graceful Shutdown Context
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 3. Decision Emitters
	emitters := obs.Multi{obs.NewLogger(slog.Default())}
	if *record {
		emitters = append(emitters, storage.NewRecorder(bootstrap.Store, slog.Default()))
	}
	addr := *feedAddr
	if addr == "" {
		addr = bootstrap.Config.Feed.Addr
	}
	if addr != "" {
		feed := obs.NewBroadcaster()
		defer feed.Close()
		emitters = append(emitters, feed)

		srv := &http.Server{Addr: addr, Handler: feed}
		go func() {
			slog.Info("📡 Decision feed listening", slog.String("addr", addr))
			if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				slog.Error("Feed server failed", slog.Any("error", err))
			}
		}()
		go func() {
			<-ctx.Done()
			srv.Shutdown(context.Background())
		}()
	}

	// 4. Trader & Session Source
	trader := engine.New(bootstrap.Config, engine.WithEmitter(emitters))

	var source backtest.Source
	if *sessionPath != "" {
		source = backtest.NewFileSource(*sessionPath)
	} else {
		source = backtest.NewStoreSource(bootstrap.Store)
	}

	// 5. Optionally persist the session so later runs can replay the store.
	if *record && *sessionPath != "" {
		ticks, err := source.Ticks(ctx)
		if err != nil {
			slog.Error("❌ Failed to read session", slog.Any("error", err))
			os.Exit(1)
		}
		for _, st := range ticks {
			if err := bootstrap.Store.SaveSnapshot(ctx, st); err != nil {
				slog.Error("❌ Failed to record snapshot", slog.Any("error", err))
				os.Exit(1)
			}
		}
		slog.Info("💾 Session recorded", slog.Int("ticks", len(ticks)))
	}

	// 6. Replay
	replayer := backtest.NewReplayer(bootstrap.Config, trader, slog.Default())
	report, err := replayer.Run(ctx, source)
	if err != nil {
		slog.Error("❌ Replay failed", slog.Any("error", err))
		os.Exit(1)
	}

	slog.Info("✨ Replay finished")
	fmt.Println(report)
}
