package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"wallart-proxy/common"
	"wallart-proxy/internal/compose"
	"wallart-proxy/internal/genai/gemini"
	"wallart-proxy/internal/httpserver"
	"wallart-proxy/internal/lister"
	"wallart-proxy/internal/metrics"
	"wallart-proxy/internal/tools"
	"wallart-proxy/internal/utils"

	"github.com/mark3labs/mcp-go/server"
)

func main() {
	// 加载配置
	config, err := common.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// 打印配置信息（隐藏敏感信息），stdio 模式下 stdout 留给 MCP 协议
	fmt.Fprintf(os.Stderr, "Server starting...\n")
	fmt.Fprintf(os.Stderr, "Transport: %s\n", config.Transport)
	fmt.Fprintf(os.Stderr, "Gemini Base URL: %s\n", config.GeminiBaseURL)
	fmt.Fprintf(os.Stderr, "Compose Model: %s\n", config.GeminiComposeModel)
	fmt.Fprintf(os.Stderr, "API Key: %s\n", utils.MaskAPIKey(config.GeminiAPIKey))

	var recorder *metrics.Recorder
	if config.MetricsEnabled {
		recorder = metrics.New()
	}

	client := gemini.NewClientFromConfig(config)
	modelLister := lister.NewService(client, recorder)
	composer := compose.NewService(client, compose.Config{
		Model:            config.GeminiComposeModel,
		InteriorFallback: config.InteriorFallback,
	}, recorder)

	if config.Transport == common.TransportStdio {
		serveStdio(modelLister, composer)
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	srv, err := httpserver.New(httpserver.Options{
		Addr:          config.GetServerAddr(),
		BodyLimitMB:   config.BodyLimitMB,
		TrustedDomain: config.CORSTrustedDomain,
	}, httpserver.Deps{
		Lister:   modelLister,
		Composer: composer,
		Metrics:  recorder,
	})
	if err != nil {
		common.Fatalf("Failed to create HTTP server: %v", err)
	}

	common.WithField("addr", config.GetServerAddr()).Info("HTTP server listening")
	if err := srv.Listen(ctx); err != nil {
		common.Fatalf("Server error: %v", err)
	}
	common.Info("Server stopped")
}

// serveStdio 以 MCP stdio 方式提供同样的两个能力
func serveStdio(modelLister *lister.Service, composer *compose.Service) {
	s := server.NewMCPServer(
		"Wall Art MCP Server",
		"1.0.0",
		server.WithToolCapabilities(true),
	)

	if err := tools.RegisterGeminiTools(s, modelLister, composer); err != nil {
		common.Fatalf("Failed to register Gemini tools: %v", err)
	}

	if err := server.ServeStdio(s); err != nil {
		common.Fatalf("Server error: %v", err)
	}
}
