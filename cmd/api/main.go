package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"mortgage-triage-go/internal/api"
	"mortgage-triage-go/internal/config"
	"mortgage-triage-go/internal/logger"
	"mortgage-triage-go/internal/metrics"
	"mortgage-triage-go/internal/pipeline"
	"mortgage-triage-go/internal/rules"
)

func main() {
	config.LoadEnv() // loads .env

	log := logger.New()
	log.WithField("service", "mortgage-triage").Info("starting service")

	var cfg config.Config
	fs := flag.NewFlagSet("api", flag.ExitOnError)
	cfg.RegisterFlags(fs)
	_ = fs.Parse(os.Args[1:])
	if err := cfg.Validate(); err != nil {
		log.WithError(err).Fatal("invalid configuration")
	}

	rs := rules.Default()
	if cfg.RulesPath != "" {
		var err error
		if rs, err = rules.Load(cfg.RulesPath); err != nil {
			log.WithError(err).Fatal("failed to load rules")
		}
		log.WithField("rules_path", cfg.RulesPath).Info("custom rules loaded")
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(reg)

	p := pipeline.New(nil,
		pipeline.WithLogger(log),
		pipeline.WithRules(rs),
		pipeline.WithHooks(m.Hooks()),
	)

	addr := fmt.Sprintf(":%d", cfg.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      api.New(log, p, reg).Router(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.WithError(err).Warn("shutdown did not complete cleanly")
		}
	}()

	log.WithField("addr", addr).Info("listening")
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.WithError(err).Fatal("server terminated")
	}
	log.Info("server stopped")
}
