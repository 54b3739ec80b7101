package debug

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/ethereum/go-ethereum/core/types"

	"quorumkit/internal/models"
)

// PrintDeployment prints the deployment record in JSON format
func PrintDeployment(deployment *models.Deployment) {
	printJSON("Deployment details", deployment)
}

// PrintReceipt prints a transaction receipt in JSON format
func PrintReceipt(receipt *types.Receipt) {
	printJSON("Receipt details", receipt)
}

func printJSON(msg string, v any) {
	if !slog.Default().Enabled(context.Background(), slog.LevelDebug) {
		return
	}
	jsonData, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		slog.Error("Failed to marshal to JSON", "error", err)
		return
	}

	slog.Debug(msg, "json", string(jsonData))
}
