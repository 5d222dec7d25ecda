package main

import (
	"context"
	"errors"
	"os"
	"time"

	"pankti/internal/amqp"
	"pankti/internal/cli"
	"pankti/internal/config"
	applog "pankti/internal/log"
	gsheet "pankti/internal/sheets/google"
	"pankti/internal/worker"
)

func main() {
	cli.LoadEnvFile()
	cfg, logger := cli.LoadAndValidateConfig(applog.ComponentWorker, (*config.Config).ValidateWorker)
	logger.Info("Starting ledger-worker")

	repo := cli.InitSQLite(logger.Logger, cfg.SQLiteDBPath)
	defer repo.Close()

	initCtx, initCancel := context.WithTimeout(context.Background(), 30*time.Second)
	sheetsClient, err := gsheet.New(initCtx, gsheet.Options{
		SpreadsheetID:   cfg.GoogleSpreadsheetID,
		CredentialsJSON: cfg.GoogleServiceAccountJSON,
		CredentialsFile: cfg.GoogleServiceAccountFile,
		PaymentsSheet:   cfg.LedgerSheetPayments,
		AdvancesSheet:   cfg.LedgerSheetAdvances,
	})
	initCancel()
	if err != nil {
		logger.Error("Failed to initialize Google Sheets client", "error", err)
		os.Exit(1)
	}
	logger.Info("Google Sheets client initialized", "spreadsheet_id", cfg.GoogleSpreadsheetID)

	amqpClient, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
	if err != nil {
		logger.Error("Failed to initialize AMQP client", "error", err)
		os.Exit(1)
	}
	defer amqpClient.Close()

	ledgerWorker := worker.NewLedgerWorker(repo, sheetsClient)

	ctx, done := cli.GracefulShutdown(logger.Logger, 30*time.Second, nil)

	consumeErr := make(chan error, 1)
	go func() {
		consumeErr <- amqpClient.ConsumeLedgerEvents(ctx, ledgerWorker.HandleLedgerEvent)
	}()

	select {
	case err := <-consumeErr:
		if err != nil && !errors.Is(err, context.Canceled) {
			logger.Error("Ledger event consumption failed", "error", err)
			os.Exit(1)
		}
	case <-ctx.Done():
		<-consumeErr
	}

	cli.WaitForShutdown(ctx, done)
	logger.Info("Ledger worker stopped")
}
