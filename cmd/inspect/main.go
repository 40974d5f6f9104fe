package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/jedib0t/go-pretty/v6/table"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/bimakw/identity-prism/internal/application/services"
	"github.com/bimakw/identity-prism/internal/config"
	"github.com/bimakw/identity-prism/internal/domain/classification"
	"github.com/bimakw/identity-prism/internal/domain/entities"
	"github.com/bimakw/identity-prism/internal/infrastructure/solana"
)

type addressList []string

func (a *addressList) String() string { return strings.Join(*a, ",") }

func (a *addressList) Set(v string) error {
	*a = append(*a, v)
	return nil
}

func main() {
	var addresses addressList
	flag.Var(&addresses, "address", "wallet address to inspect (repeatable)")
	flag.Parse()

	if len(addresses) == 0 {
		fmt.Fprintln(os.Stderr, "usage: inspect -address <wallet> [-address <wallet> ...]")
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Logs go to stderr so the table stays readable on stdout
	logger := setupLogger(cfg.Log.Level)
	defer logger.Sync()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	reputation := services.NewReputationService(
		solana.NewProvider(cfg.Solana, logger),
		services.NewHistoryFetcher(cfg.Solana, logger),
		classification.NewClassifier(classification.DefaultCatalog()),
		logger,
	)

	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.AppendHeader(table.Row{"Address", "Score", "Tier", "Badges", "Tx Count", "Age (days)", "SOL"})

	failed := 0
	for _, address := range addresses {
		snapshot, err := reputation.BuildSnapshot(ctx, address)
		if err != nil {
			failed++
			logger.Error("Failed to build snapshot", zap.String("address", address), zap.Error(err))
			t.AppendRow(table.Row{address, "-", "-", err.Error(), "-", "-", "-"})
			continue
		}
		t.AppendRow(snapshotRow(snapshot))
	}

	t.Render()

	if failed == len(addresses) {
		os.Exit(1)
	}
}

func snapshotRow(s *entities.Snapshot) table.Row {
	badges := make([]string, 0, len(s.Result.Badges))
	for _, b := range s.Result.Badges {
		badges = append(badges, string(b))
	}

	txCount := fmt.Sprintf("%d", s.Stats.TxCount)
	if s.Stats.HistoryTruncated {
		txCount += "+"
	}

	return table.Row{
		s.Address,
		s.Result.Score,
		s.Result.Tier,
		strings.Join(badges, ", "),
		txCount,
		s.Stats.WalletAgeDays,
		fmt.Sprintf("%.4f", s.Stats.SOLBalance),
	}
}

func setupLogger(level string) *zap.Logger {
	var zapLevel zapcore.Level
	switch level {
	case "debug":
		zapLevel = zapcore.DebugLevel
	case "error":
		zapLevel = zapcore.ErrorLevel
	default:
		zapLevel = zapcore.WarnLevel
	}

	config := zap.Config{
		Level:            zap.NewAtomicLevelAt(zapLevel),
		Development:      false,
		Encoding:         "console",
		EncoderConfig:    zap.NewDevelopmentEncoderConfig(),
		OutputPaths:      []string{"stderr"},
		ErrorOutputPaths: []string{"stderr"},
	}

	logger, _ := config.Build()
	return logger
}
