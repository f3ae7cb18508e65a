package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/rovshanmuradov/token-launchpad/internal/app"
	"github.com/rovshanmuradov/token-launchpad/internal/config"
	"github.com/rovshanmuradov/token-launchpad/internal/journal"
	"github.com/rovshanmuradov/token-launchpad/internal/launchpad"
	"github.com/rovshanmuradov/token-launchpad/internal/logger"
	"github.com/rovshanmuradov/token-launchpad/internal/wallet"
)

func main() {
	configPath := flag.String("config", "configs/config.json", "Path to config file")
	name := flag.String("name", "", "Token name")
	symbol := flag.String("symbol", "", "Token symbol")
	image := flag.String("image", "", "Token image URL")
	supply := flag.String("supply", "", "Initial supply in whole tokens")
	yes := flag.Bool("yes", false, "Sign without asking for approval")
	history := flag.Bool("history", false, "Print the launch journal summary and exit")
	exportPath := flag.String("export", "", "Export the launch journal to a JSON file and exit")
	flag.Parse()

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	if *history || *exportPath != "" {
		if err := showHistory(cfg.JournalFile, *exportPath); err != nil {
			log.Fatalf("Launch journal: %v", err)
		}
		return
	}

	logCfg := logger.DefaultConfig()
	logCfg.LogFile = cfg.LogFile
	logCfg.Debug = cfg.DebugLogging
	appLogger := logger.NewConsoleLogger(logCfg)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var approver wallet.Approver = wallet.NewPromptApprover(os.Stdin, os.Stdout)
	if *yes {
		approver = wallet.AutoApprove
	}

	runner, err := app.NewRunner(cfg, appLogger, app.Options{Approver: approver})
	if err != nil {
		appLogger.Fatal("Failed to initialize launchpad", zap.Error(err))
	}

	code := run(ctx, runner, launchpad.MintRequest{
		Name:          *name,
		Symbol:        *symbol,
		ImageURL:      *image,
		InitialSupply: *supply,
	}, appLogger)

	runner.Shutdown()
	os.Exit(code)
}

func run(ctx context.Context, runner *app.Runner, req launchpad.MintRequest, logger *zap.Logger) int {
	if _, err := runner.CheckNode(ctx); err != nil {
		logger.Error("RPC node check failed", zap.Error(err))
		return 1
	}

	res, err := runner.Launch(ctx, req)
	if err != nil {
		logger.Error("Launch failed", zap.Error(err))
		if res != nil {
			fmt.Printf("mint=%s signature=%s status=%s\n", res.Mint, res.Signature, res.Status)
		}
		return 1
	}

	fmt.Printf("mint=%s signature=%s status=%s\n", res.Mint, res.Signature, res.Status)
	return 0
}

func showHistory(path, exportPath string) error {
	if path == "" {
		return fmt.Errorf("journal_file is not configured")
	}
	records, err := journal.ReadAll(path)
	if err != nil {
		return err
	}

	if exportPath != "" {
		if err := journal.ExportJSON(records, exportPath); err != nil {
			return err
		}
		fmt.Printf("Exported %d launches to %s\n", len(records), exportPath)
		return nil
	}

	s := journal.Summarize(records)
	fmt.Printf("Launches: %d, confirmed: %d\n", s.Total, s.Confirmed)
	for status, n := range s.ByStatus {
		fmt.Printf("  %-14s %d\n", status, n)
	}
	for _, r := range records {
		fmt.Printf("%s  %-8s %-10s %s\n", r.Timestamp.Local().Format("2006-01-02 15:04"), r.Symbol, r.Status, r.Mint)
	}
	return nil
}
