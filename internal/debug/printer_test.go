package debug

import (
	"bytes"
	"log/slog"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/core/types"
	"github.com/stretchr/testify/assert"

	"quorumkit/internal/models"
)

func captureLogs(t *testing.T, level slog.Level) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	prev := slog.Default()
	slog.SetDefault(slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: level})))
	t.Cleanup(func() { slog.SetDefault(prev) })
	return &buf
}

func TestPrintDeploymentAtDebug(t *testing.T) {
	buf := captureLogs(t, slog.LevelDebug)
	PrintDeployment(&models.Deployment{Name: "SimpleStorage", Address: "0x01"})
	assert.Contains(t, buf.String(), "Deployment details")
	assert.Contains(t, buf.String(), "SimpleStorage")
}

func TestPrintReceiptSkippedAboveDebug(t *testing.T) {
	buf := captureLogs(t, slog.LevelInfo)
	PrintReceipt(&types.Receipt{Status: 1, BlockNumber: big.NewInt(3)})
	assert.Empty(t, buf.String())
}
