package main

import (
	"flag"
	"os"

	"github.com/mark3labs/mcp-go/server"
	"go.uber.org/zap"

	bdmcp "github.com/peterkuimelis/bladedeck/internal/mcp"

	"github.com/peterkuimelis/bladedeck/internal/config"
	"github.com/peterkuimelis/bladedeck/internal/session"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		config.Exitf("Error: %v", err)
	}
	flag.StringVar(&cfg.ContentFile, "content", cfg.ContentFile, "path to content YAML file")
	flag.StringVar(&cfg.DBPath, "db", cfg.DBPath, "path to session database")
	flag.Parse()

	// stdout carries the MCP protocol; logs go to stderr.
	logger, err := cfg.Logger()
	if err != nil {
		config.Exitf("Error: %v", err)
	}
	defer logger.Sync()

	// Agents read whole resolutions at once.
	cfg.HitInterval = 0
	base, err := cfg.Battle(logger)
	if err != nil {
		config.Exitf("Error: %v", err)
	}
	m, st, err := session.Open(cfg.DBPath, base, logger)
	if err != nil {
		config.Exitf("Error: %v", err)
	}
	defer st.Close()

	bdmcp.SetManager(m)
	bdmcp.SetLogger(logger)

	s := server.NewMCPServer("bladedeck", "1.0.0")
	bdmcp.RegisterTools(s)

	if err := server.ServeStdio(s); err != nil {
		logger.Error("mcp server stopped", zap.Error(err))
		st.Close()
		os.Exit(1)
	}
}
