package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"LiveDraws/internal/config"
	"LiveDraws/internal/logger"
	lnet "LiveDraws/internal/net"
	"LiveDraws/internal/prompt"
	"LiveDraws/internal/state"
	"LiveDraws/internal/tracer"
	"LiveDraws/internal/ui"
)

func main() {
	configPath := flag.String("config", "livedraws.yaml", "path to the YAML config file")
	discover := flag.Bool("discover", false, "list walls shared on the local network and exit")
	open := flag.String("open", "", `wall route to open at startup, e.g. "#/wall/<id>"`)
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	lg, closeLog, err := logger.New(cfg.Logger)
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer closeLog()
	slog.SetDefault(lg)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracer, err := tracer.Setup(ctx, cfg.Tracer)
	if err != nil {
		lg.Error("tracer setup failed", "error", err)
		os.Exit(1)
	}
	defer shutdownTracer(context.Background())

	if *discover {
		if err := runDiscover(ctx, lg); err != nil {
			lg.Error("discover failed", "error", err)
			os.Exit(1)
		}
		return
	}

	if err := run(ctx, cfg, lg, *open); err != nil {
		lg.Error("livedraws exited", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, lg *slog.Logger, route string) error {
	store, err := openStore(cfg.Store)
	if err != nil {
		return err
	}
	defer store.Close()

	session := &state.Session{}
	if cfg.User.Name != "" {
		if _, err := session.Login(cfg.User.Name); err != nil {
			lg.Warn("configured user name ignored", "error", err)
		}
	}

	walls, err := state.NewWalls(ctx, store, session, lg)
	if err != nil {
		return err
	}

	opts := ui.Options{
		Config:    cfg,
		Walls:     walls,
		Session:   session,
		Suggester: prompt.New(cfg.Prompt, lg),
		Logger:    lg,
	}

	if cfg.Share.Enabled {
		share := lnet.NewShareServer(fmt.Sprintf(":%d", cfg.Share.Port), cfg.Share.MaxFPS, lg)
		go func() {
			if err := share.Start(ctx); err != nil {
				lg.Error("share server stopped", "error", err)
			}
		}()
		defer share.Stop(context.Background())

		ip, err := lnet.OutgoingIP(lg)
		if err != nil {
			lg.Warn("could not determine local IP", "error", err)
		}
		opts.Share = share
		opts.ShareHost = ip
		opts.SharePort = cfg.Share.Port

		if cfg.Share.MDNS {
			server, err := lnet.Advertise(cfg.Share.ServiceName, cfg.Share.Port)
			if err != nil {
				lg.Warn("mDNS advertise failed", "error", err)
			} else {
				defer server.Shutdown()
			}
		}
	}

	ui.New(opts).Run(route)
	return nil
}

func openStore(cfg config.StoreConfig) (state.Store, error) {
	switch strings.ToLower(cfg.Driver) {
	case "memory":
		return state.NewMemoryStore(), nil
	case "", "sqlite":
		return state.NewSQLiteStore(cfg.Path)
	}
	return nil, fmt.Errorf("unknown store driver %q", cfg.Driver)
}

// runDiscover browses for share servers and lists the walls each one is
// serving at the moment it is asked.
func runDiscover(ctx context.Context, lg *slog.Logger) error {
	var peers []lnet.Peer
	err := lnet.Browse(ctx, 3*time.Second, func(p lnet.Peer) {
		peers = append(peers, p)
	})
	if err != nil {
		return err
	}

	client := &http.Client{Timeout: 5 * time.Second}
	found := 0
	for _, p := range peers {
		walls, err := lnet.FetchWalls(ctx, client, p.Addr)
		if err != nil {
			lg.Warn("peer did not answer", "peer", p.Instance, "addr", p.Addr, "error", err)
			continue
		}
		if len(walls) == 0 {
			continue
		}
		fmt.Printf("%s\t%s\n", p.Instance, p.Addr)
		for _, w := range walls {
			found++
			fmt.Printf("\t%s\thttp://%s/walls/%s\n", w.Name, p.Addr, w.ID)
		}
	}
	if found == 0 {
		fmt.Println("no shared walls found")
	}
	return nil
}
