package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strconv"

	"go.uber.org/zap"

	bdnet "github.com/peterkuimelis/bladedeck/internal/net"

	"github.com/peterkuimelis/bladedeck/internal/config"
	"github.com/peterkuimelis/bladedeck/internal/session"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	cfg, err := config.Load()
	if err != nil {
		config.Exitf("Error: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	cmd := os.Args[1]
	switch cmd {
	case "host":
		err = runHost(ctx, cfg, os.Args[2:])
	case "join":
		err = runJoin(ctx, cfg, os.Args[2:])
	case "solo":
		err = runSolo(ctx, cfg, os.Args[2:])
	default:
		printUsage()
		os.Exit(1)
	}
	if err != nil {
		config.Exitf("Error: %v", err)
	}
}

func printUsage() {
	fmt.Println("Usage:")
	fmt.Println("  bladedeck host [--port P] [--content FILE] [--db FILE]")
	fmt.Println("  bladedeck join [--loadout N] [--session ID] [--addr ADDR]")
	fmt.Println("  bladedeck solo [--loadout N] [--session ID] [--content FILE] [--db FILE]")
	fmt.Println()
	fmt.Println("Commands:")
	fmt.Println("  host    Start a battle server for one remote player")
	fmt.Println("  join    Connect to a battle server and play")
	fmt.Println("  solo    Play in this terminal")
	fmt.Println()
	fmt.Println("Flags default to the BLADEDECK_* environment variables.")
}

// newHost loads the content and opens the session store.
func newHost(cfg config.Config) (*bdnet.Host, func(), error) {
	logger, err := cfg.Logger()
	if err != nil {
		return nil, nil, err
	}
	base, err := cfg.Battle(logger)
	if err != nil {
		return nil, nil, err
	}
	m, st, err := session.Open(cfg.DBPath, base, logger)
	if err != nil {
		return nil, nil, err
	}
	closeFn := func() {
		if err := st.Close(); err != nil {
			logger.Warn("close session store", zap.Error(err))
		}
		_ = logger.Sync()
	}
	return &bdnet.Host{Manager: m, Logger: logger}, closeFn, nil
}

func runHost(ctx context.Context, cfg config.Config, args []string) error {
	fs := flag.NewFlagSet("host", flag.ExitOnError)
	port := fs.String("port", strconv.Itoa(cfg.Port), "TCP port to listen on")
	fs.StringVar(&cfg.ContentFile, "content", cfg.ContentFile, "path to content file")
	fs.StringVar(&cfg.DBPath, "db", cfg.DBPath, "path to session database")
	fs.Parse(args)

	host, closeFn, err := newHost(cfg)
	if err != nil {
		return err
	}
	defer closeFn()

	srv := &bdnet.Server{Host: host, Port: *port}
	return srv.Run(ctx)
}

func runJoin(ctx context.Context, cfg config.Config, args []string) error {
	fs := flag.NewFlagSet("join", flag.ExitOnError)
	loadout := fs.Int("loadout", 1, "loadout number to use (from the content file)")
	sessionID := fs.String("session", "", "session ID to resume")
	addr := fs.String("addr", fmt.Sprintf("localhost:%d", cfg.Port), "server address to connect to")
	fs.Parse(args)

	return bdnet.Connect(ctx, *addr, *loadout, *sessionID)
}

func runSolo(ctx context.Context, cfg config.Config, args []string) error {
	fs := flag.NewFlagSet("solo", flag.ExitOnError)
	loadout := fs.Int("loadout", 1, "loadout number to use (from the content file)")
	sessionID := fs.String("session", "", "session ID to resume")
	fs.StringVar(&cfg.ContentFile, "content", cfg.ContentFile, "path to content file")
	fs.StringVar(&cfg.DBPath, "db", cfg.DBPath, "path to session database")
	fs.Parse(args)

	host, closeFn, err := newHost(cfg)
	if err != nil {
		return err
	}
	defer closeFn()

	return bdnet.Solo(ctx, host, *loadout, *sessionID)
}
