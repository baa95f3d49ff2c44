package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	cli "github.com/spf13/pflag"

	"github.com/lmittmann/tint"
	log "log/slog"

	"voxroute/internal/config"
	"voxroute/internal/history"
	"voxroute/internal/ipc"
	"voxroute/internal/llm"
	"voxroute/internal/nlu"
	"voxroute/internal/proxy"
	"voxroute/internal/session"
	"voxroute/internal/tts"
	"voxroute/pkg/protocol"
)

var logLevelMap = map[string]log.Level{
	"debug": log.LevelDebug,
	"info":  log.LevelInfo,
	"warn":  log.LevelWarn,
	"error": log.LevelError,
}

func main() {
	envFile := cli.StringP("env", "e", ".env", "Env file path")
	proxyAddr := cli.StringP("proxy", "p", "", "Socks Proxy Address (overrides SOCKS_PROXY)")
	socket := cli.StringP("socket", "s", "", "Control socket path (overrides CONTROL_SOCKET)")
	logLevel := cli.StringP("log", "l", "info", "Log level")
	cli.Parse()

	log.SetDefault(log.New(tint.NewHandler(os.Stdout, &tint.Options{
		Level: logLevelMap[*logLevel],
	})))

	log.Info("Booting up")

	cfg := config.Load(*envFile)
	if *proxyAddr != "" {
		cfg.Backend.SocksProxy = *proxyAddr
	}
	if *socket != "" {
		cfg.Control.Socket = *socket
	}
	if err := cfg.Validate(); err != nil {
		log.Error("Bad configuration", "err", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg); err != nil {
		log.Error("Daemon failed", "err", err)
		os.Exit(1)
	}

	log.Info("Shut down")
}

func run(ctx context.Context, cfg *config.Config) error {
	httpClient, err := proxy.NewHTTPClient(cfg.Backend.SocksProxy, cfg.Backend.Timeout)
	if err != nil {
		return fmt.Errorf("http client: %w", err)
	}

	log.Debug("Loaded http client", "proxy", cfg.Backend.SocksProxy)

	backend := llm.NewClient(llm.Config{
		APIKey:        cfg.Backend.APIKey,
		BaseURL:       cfg.Backend.BaseURL,
		Model:         cfg.Backend.Model,
		VectorStoreID: cfg.Backend.VectorStoreID,
	}, httpClient)

	heur, err := nlu.LoadHeuristics(cfg.Org.HeuristicsFile)
	if err != nil {
		return err
	}

	opts := nlu.DefaultOptions()
	opts.Org = nlu.Org{Name: cfg.Org.Name, ShortName: cfg.Org.ShortName}
	opts.Heuristics = heur
	opts.Retrieval.Results = cfg.Backend.RetrievalResults

	router := nlu.NewRouter(backend, backend, opts)

	store, err := openStore(ctx, cfg.Store)
	if err != nil {
		return err
	}
	rec := history.NewRecorder(store)
	defer rec.Close()

	log.Debug("Loaded store", "backend", cfg.Store.Backend)

	var bus *protocol.Protocol
	var speaker tts.Speaker = localSpeaker()
	if cfg.Bus.URL != "" {
		bus, err = protocol.NewProtocol(ctx, protocol.PtclConfig{
			Shard:   cfg.Bus.Shard,
			Url:     cfg.Bus.URL,
			Reconn:  uint(cfg.Bus.Reconnect),
			Timeout: cfg.Backend.Timeout,
		})
		if err != nil {
			return fmt.Errorf("bus: %w", err)
		}
		speaker = tts.NewBusSpeaker(bus)

		log.Debug("Connected to bus", "url", cfg.Bus.URL, "shard", cfg.Bus.Shard)
	}

	mgr := session.NewManager(router, rec, speaker, session.Config{
		Window:         cfg.Session.Window,
		IdleTimeout:    cfg.Session.IdleTimeout,
		BackendTimeout: cfg.Backend.Timeout,
	})
	defer mgr.Close()

	ctl, err := ipc.Listen(cfg.Control.Socket, mgr.Control)
	if err != nil {
		return fmt.Errorf("control socket: %w", err)
	}
	go func() {
		if err := ctl.Serve(ctx); err != nil {
			log.Error("Control socket stopped", "err", err)
		}
	}()

	log.Info("Boot up - successful", "socket", ctl.Path(), "store", cfg.Store.Backend, "bus", cfg.Bus.URL != "")

	if bus == nil {
		<-ctx.Done()
		return nil
	}

	bus.EmitOut(mgr.FromBus)
	if err := bus.Run(ctx); err != nil && ctx.Err() == nil {
		return fmt.Errorf("bus: %w", err)
	}
	return nil
}

func openStore(ctx context.Context, cfg config.StoreConfig) (history.Store, error) {
	switch cfg.Backend {
	case "redis":
		s, err := history.NewRedisStore(cfg.RedisURL, cfg.TTL)
		if err != nil {
			return nil, fmt.Errorf("redis store: %w", err)
		}
		return s, nil
	case "postgres":
		s, err := history.NewPostgresStore(ctx, cfg.PostgresDSN, 4)
		if err != nil {
			return nil, fmt.Errorf("postgres store: %w", err)
		}
		return s, nil
	default:
		return history.NewMemoryStore(cfg.TTL), nil
	}
}
