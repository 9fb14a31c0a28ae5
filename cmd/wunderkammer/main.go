package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"wunderkammer/internal/codec"
	"wunderkammer/internal/collection"
	"wunderkammer/internal/config"
	"wunderkammer/internal/handler"
	"wunderkammer/internal/logger"
)

func usage() {
	fmt.Fprintf(os.Stderr, "usage: wunderkammer [-config path] [-addr addr] <random|get URL|list|serve>\n")
	flag.PrintDefaults()
}

func main() {
	// Command line flags
	configPath := flag.String("config", "", "config file path (default: search standard locations)")
	addr := flag.String("addr", "", "HTTP listen address for serve (overrides config)")
	envFile := flag.String("env", ".env", "dotenv file loaded before configuration")
	flag.Usage = usage
	flag.Parse()

	_ = godotenv.Load(*envFile)
	log := logger.Setup()

	if flag.NArg() < 1 {
		usage()
		os.Exit(2)
	}

	var (
		cfg  *config.Config
		path string
		err  error
	)
	if *configPath != "" {
		cfg, path, err = config.LoadFromPath(*configPath)
	} else {
		cfg, path, err = config.Load()
	}
	if err != nil {
		log.Error("config_load_failed", "path", path, "err", err)
		os.Exit(1)
	}
	if path != "" {
		log.Info("config_loaded", "path", path)
	}

	opts, err := cfg.CollectionOptions()
	if err != nil {
		log.Error("config_invalid", "err", err)
		os.Exit(1)
	}
	opts.Logger = log

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	c, err := collection.New(ctx, opts)
	if err != nil {
		log.Error("collection_open_failed", "err", err)
		os.Exit(1)
	}
	defer c.Close()
	log.Info("collection_opened", "name", c.Name(), "units", len(c.Units()))

	if *addr != "" {
		cfg.Server.Addr = *addr
	}

	if err := run(ctx, c, cfg, flag.Args()); err != nil {
		log.Error("command_failed", "command", flag.Arg(0), "err", err)
		c.Close()
		os.Exit(1)
	}
}

func run(ctx context.Context, c *collection.Collection, cfg *config.Config, args []string) error {
	exporter := codec.NewJSONCodec()

	switch args[0] {
	case "random":
		u, err := c.RandomURL(ctx)
		if err != nil {
			return err
		}
		fmt.Println(u.String())
		return nil

	case "get":
		if len(args) < 2 {
			return errors.New("get requires a URL")
		}
		u, err := url.Parse(args[1])
		if err != nil {
			return fmt.Errorf("parse %q: %w", args[1], err)
		}
		obj, err := c.GetOEmbed(ctx, u)
		if err != nil {
			return err
		}
		return exporter.Export(obj.View(), os.Stdout)

	case "list":
		it := c.Iterate(ctx)
		defer it.Close()
		for s := range it.All() {
			if err := exporter.Export(s, os.Stdout); err != nil {
				return err
			}
		}
		return nil

	case "serve":
		return serve(ctx, c, cfg.Server.Addr)

	default:
		return fmt.Errorf("unknown command %q", args[0])
	}
}

func serve(ctx context.Context, c *collection.Collection, addr string) error {
	log := logger.L()

	routes := handler.NewCollectionHandler(c, log).Routes()
	finalHandler := handler.Chain(routes,
		handler.Recover,
		handler.CORS,
		handler.Logger,
	)

	server := &http.Server{
		Addr:         addr,
		Handler:      finalHandler,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("server_listening", "addr", addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info("server_shutting_down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}

	log.Info("server_stopped")
	return nil
}
