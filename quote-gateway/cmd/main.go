package main

import (
	"flag"
	"log"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/ZhouDavid/stock-folio/internal/config"
	"github.com/ZhouDavid/stock-folio/internal/logging"
	"github.com/ZhouDavid/stock-folio/quote-gateway/internal/gateway"
)

func main() {
	configPath := flag.String("config", "", "Path to the YAML config file (default "+config.DefaultPath+")")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger := logging.New(logging.Options{Level: cfg.Log.Level, Format: cfg.Log.Format}).
		With().Str("service", "quote-gateway").Logger()

	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery(), logging.GinLogger(logger))

	corsCfg := cors.DefaultConfig()
	if len(cfg.Gateway.CORSOrigins) == 0 || cfg.Gateway.CORSOrigins[0] == "*" {
		corsCfg.AllowAllOrigins = true
	} else {
		corsCfg.AllowOrigins = cfg.Gateway.CORSOrigins
	}
	r.Use(cors.New(corsCfg))

	service := gateway.NewService(cfg.Gateway.UpstreamURL, cfg.Gateway.UserAgent, cfg.Gateway.Timeout)
	handler := gateway.NewHandler(service, logger)
	handler.Register(r, cfg.Gateway.StaticDir)

	logger.Info().Str("addr", cfg.Gateway.Addr).Str("upstream", cfg.Gateway.UpstreamURL).Msg("Server is running")
	if err := r.Run(cfg.Gateway.Addr); err != nil {
		logger.Fatal().Err(err).Msg("Failed to start server")
	}
}
