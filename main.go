package main

import (
	"context"
	"flag"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/alphabeta2023/cubegame/auth"
	"github.com/alphabeta2023/cubegame/config"
	"github.com/alphabeta2023/cubegame/game"
	"github.com/alphabeta2023/cubegame/logging"
	"github.com/alphabeta2023/cubegame/srv"
	"github.com/alphabeta2023/cubegame/store"
)

func main() {
	var cfgPath string
	flag.StringVar(&cfgPath, "config", "", "path to config yaml (optional)")
	flag.Parse()

	cfg, err := config.Load(cfgPath)
	if err != nil {
		panic(err)
	}

	log := logging.New(cfg.LogFile)
	defer log.Sync()

	st, err := store.Open(cfg.DBPath)
	if err != nil {
		log.Fatalf("open store: %v", err)
	}
	defer st.Close()

	authSvc, err := auth.NewService(cfg.DataDir, st, time.Duration(cfg.TokenTTLHours)*time.Hour)
	if err != nil {
		log.Fatalf("init auth: %v", err)
	}

	metrics := srv.NewMetrics()
	hub := srv.NewHub(nil, metrics, log) // prop deleter wired below

	spawner := game.NewSpawner(st,
		time.Duration(cfg.SpawnIntervalMinSec)*time.Second,
		time.Duration(cfg.SpawnIntervalMaxSec)*time.Second,
		log,
		func(p *game.Prop) {
			metrics.IncPropSpawned()
			hub.BroadcastPropCreated(p)
		})
	hub.SetPropDeleter(spawner)

	clock := game.NewClock(st, log)
	consolidator := game.NewConsolidator(st)

	server := srv.NewServer(authSvc, st, clock, spawner, consolidator, hub, metrics, log)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go clock.Run(ctx)

	httpSrv := &http.Server{
		Addr:         cfg.Addr,
		Handler:      server.Routes(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Infof("cubegame listening on %s", cfg.Addr)
		if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %v", err)
		}
	}()

	<-ctx.Done()
	log.Info("shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = httpSrv.Shutdown(shutdownCtx)
}
