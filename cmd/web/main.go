package main

import (
	"flag"
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/peterkuimelis/bladedeck/internal/config"
	"github.com/peterkuimelis/bladedeck/internal/session"
	"github.com/peterkuimelis/bladedeck/internal/web"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		config.Exitf("Error: %v", err)
	}
	port := flag.Int("port", cfg.WebPort, "HTTP port to listen on")
	flag.StringVar(&cfg.ContentFile, "content", cfg.ContentFile, "path to content YAML file")
	flag.StringVar(&cfg.DBPath, "db", cfg.DBPath, "path to session database")
	flag.Parse()

	logger, err := cfg.Logger()
	if err != nil {
		config.Exitf("Error: %v", err)
	}
	defer logger.Sync()

	base, err := cfg.Battle(logger)
	if err != nil {
		config.Exitf("Error: %v", err)
	}
	m, st, err := session.Open(cfg.DBPath, base, logger)
	if err != nil {
		config.Exitf("Error: %v", err)
	}
	defer st.Close()

	srv := web.NewServer(base.Content, m, logger)

	addr := fmt.Sprintf(":%d", *port)
	logger.Info("bladedeck web UI listening", zap.String("url", fmt.Sprintf("http://localhost:%d", *port)))
	if err := srv.ListenAndServe(addr); err != nil {
		logger.Error("web server stopped", zap.Error(err))
		st.Close()
		os.Exit(1)
	}
}
