package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ethereum/go-ethereum/common"

	"quorumkit/internal/api"
	"quorumkit/internal/app"
	"quorumkit/internal/artifacts"
	"quorumkit/internal/config"
	"quorumkit/internal/contract"
	"quorumkit/internal/services"
)

func main() {
	fmt.Println("🏦 Starting Loan Backend...")

	// 1. Load configuration
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("❌ Invalid configuration: %v", err)
	}
	if cfg.LoanContractAddress == "" {
		log.Fatal("❌ LOAN_CONTRACT_ADDRESS is required")
	}

	// 2. Configure logger
	app.SetupLogger(cfg.LogLevel, os.Stdout)

	slog.Info("Configuration loaded",
		"rpc_url", cfg.RPCURL,
		"contract", cfg.LoanContractAddress,
		"port", cfg.APIPort,
		"log_level", cfg.LogLevel,
	)

	// 3. Connect to the node and open the journal
	ctx := context.Background()
	a, err := app.New(ctx, cfg)
	if err != nil {
		log.Fatalf("❌ Failed to connect to node: %v", err)
	}
	defer a.Close()

	// 4. Bind the FiatLoanMatcher contract
	art := artifacts.MustLoad(artifacts.FiatLoanMatcher)
	address := common.HexToAddress(cfg.LoanContractAddress)
	if _, err := a.Poller.VerifyAddress(ctx, cfg.LoanContractAddress); err != nil {
		slog.Warn("Loan contract not verified, requests may fail", "address", address.Hex(), "error", err)
	}
	loans := services.NewFiatLoan(a.Client(), contract.NewDeployedContract(art.Name, address, art.ABI))

	// 5. Start API server
	server := api.NewServer(cfg.APIPort, loans, a.Repository, api.NodeInfo{
		Endpoint: a.Session.Endpoint().URL(),
		Account:  a.Session.Sender().Hex(),
		Contract: address.Hex(),
	})
	if err := server.Start(); err != nil {
		log.Fatalf("❌ Failed to start API server: %v", err)
	}
	slog.Info("Using FiatLoanMatcher contract", "address", address.Hex())

	// 6. Setup graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan
	slog.Warn("Interrupt received, shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.Error("Error stopping API server", "error", err)
	}

	slog.Info("Loan backend stopped")
}
