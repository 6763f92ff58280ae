package main

import (
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/attorneyonline/tsugo/pkg/auditlog"
	"github.com/attorneyonline/tsugo/pkg/banlist"
	"github.com/attorneyonline/tsugo/pkg/commands"
	"github.com/attorneyonline/tsugo/pkg/config"
	"github.com/attorneyonline/tsugo/pkg/game"
	"github.com/attorneyonline/tsugo/pkg/protocol"
	"github.com/attorneyonline/tsugo/pkg/server"
)

// envDefault returns the environment variable value if set, otherwise the fallback.
func envDefault(envVar, fallback string) string {
	if v := os.Getenv(envVar); v != "" {
		return v
	}
	return fallback
}

func main() {
	confPath := flag.String("conf", envDefault("TSUGO_CONF", "config/config.yaml"), "Path to config file (env: TSUGO_CONF)")
	flag.Parse()

	log.Printf("Welcome to %s", game.Version)

	cfg, err := config.Load(*confPath)
	if err != nil {
		log.Fatalf("loading config: %v", err)
	}

	g := game.NewServer(cfg)
	if err := g.LoadContent(); err != nil {
		log.Fatalf("loading content: %v", err)
	}

	if cfg.BanDB != "" {
		bans, err := banlist.Open(cfg.BanDB)
		if err != nil {
			log.Fatalf("opening ban database: %v", err)
		}
		defer bans.Close()
		g.Bans = bans
	}
	if cfg.AuditDB != "" {
		audit, err := auditlog.Open(cfg.AuditDB)
		if err != nil {
			log.Fatalf("opening audit log: %v", err)
		}
		defer audit.Close()
		g.Audit = audit
	}

	engine := protocol.NewEngine(g, commands.NewRegistry())
	srv := server.New(g, engine)

	if cfg.MetricsAddr != "" {
		m := server.NewMetrics(g)
		srv.Metrics = m
		engine.OnCommand = m.CommandProcessed
		go func() {
			if err := m.Serve(cfg.MetricsAddr); err != nil {
				log.Printf("metrics server: %v", err)
			}
		}()
	}

	if cfg.MOTDFile != "" {
		stop := cfg.WatchMOTD(func(motd string) {
			g.SetMOTD(motd)
			log.Printf("reloaded motd from %s", cfg.MOTDFile)
		})
		defer stop()
	}

	var web *server.WebServer
	if cfg.WSPort != 0 {
		web = server.NewWebServer(srv)
		go func() {
			if err := web.ListenAndServe(); err != nil {
				log.Printf("websocket server: %v", err)
			}
		}()
	}

	go func() {
		sig := make(chan os.Signal, 1)
		signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
		<-sig
		log.Printf("shutting down")
		if web != nil {
			web.Shutdown()
		}
		srv.Shutdown()
		os.Exit(0)
	}()

	if err := srv.ListenAndServe(); err != nil {
		log.Fatalf("server: %v", err)
	}
}
