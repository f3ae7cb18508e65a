package main

import (
	"context"
	"flag"
	"log"
	"os/signal"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/rovshanmuradov/token-launchpad/internal/app"
	"github.com/rovshanmuradov/token-launchpad/internal/config"
	"github.com/rovshanmuradov/token-launchpad/internal/logger"
	"github.com/rovshanmuradov/token-launchpad/internal/ui"
	"github.com/rovshanmuradov/token-launchpad/internal/ui/component"
	"github.com/rovshanmuradov/token-launchpad/internal/ui/screen"
)

func main() {
	configPath := flag.String("config", "configs/config.json", "Path to config file")
	flag.Parse()

	rootCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// TUI занимает терминал: логи идут только в файл и в буфер панели
	logBuffer := logger.NewLogBuffer(200)
	logCfg := logger.DefaultConfig()
	logCfg.LogFile = cfg.LogFile
	logCfg.Debug = cfg.DebugLogging
	appLogger := logger.NewTUILogger(logCfg, logBuffer)

	appLogger.Info("🚀 Starting Token Launchpad TUI")

	bridge := ui.NewBridge(64, appLogger)
	defer bridge.Close()

	runner, err := app.NewRunner(cfg, appLogger, app.Options{
		Approver: bridge,
		Observer: bridge.Observe,
	})
	if err != nil {
		appLogger.Error("Failed to initialize launchpad", zap.Error(err))
		log.Fatalf("Failed to initialize launchpad: %v", err)
	}
	defer runner.Shutdown()

	rpcStatus := component.RPCStatus{}
	pingCtx, cancel := context.WithTimeout(rootCtx, 10*time.Second)
	if status, err := runner.CheckNode(pingCtx); err != nil {
		appLogger.Warn("RPC node check failed", zap.Error(err))
	} else {
		rpcStatus = component.RPCStatus{Connected: true, Version: status.Version, Latency: status.Latency}
	}
	cancel()

	deps := screen.Deps{
		Context:  rootCtx,
		Launcher: runner.Launcher(),
		Wallet:   runner.Wallet(),
		Ledger:   runner.Ledger(),
		Bridge:   bridge,
		Logs:     logBuffer,
		Logger:   appLogger,
		RPC:      rpcStatus,
	}
	if j := runner.Journal(); j != nil {
		deps.Journal = j
	}

	program := tea.NewProgram(
		ui.NewSafeUIWrapper(screen.NewLaunchScreen(deps), appLogger),
		tea.WithAltScreen(),
		tea.WithContext(rootCtx),
	)

	if _, err := program.Run(); err != nil && rootCtx.Err() == nil {
		appLogger.Error("💥 TUI application failed", zap.Error(err))
	}
	appLogger.Info("🛑 Shutting down TUI application")
}
