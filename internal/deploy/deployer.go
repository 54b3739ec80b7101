// Package deploy submits contract creations and waits until the contract is verified on chain.
package deploy

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"

	"quorumkit/internal/artifacts"
	"quorumkit/internal/contract"
	"quorumkit/internal/debug"
	"quorumkit/internal/ledger"
	"quorumkit/internal/metrics"
	"quorumkit/internal/models"
)

// Recorder is notified of every verified deployment
type Recorder interface {
	RecordDeployment(ctx context.Context, d *models.Deployment) error
}

// Result describes a verified deployment
type Result struct {
	Contract *contract.DeployedContract
	TxHash   common.Hash
	Receipt  *types.Receipt
}

// Deployer deploys artifacts through the dispatcher and the poller
type Deployer struct {
	dispatcher *contract.Dispatcher
	poller     *ledger.Poller
	recorder   Recorder
}

// NewDeployer creates a deployer. recorder may be nil.
func NewDeployer(dispatcher *contract.Dispatcher, poller *ledger.Poller, recorder Recorder) *Deployer {
	return &Deployer{
		dispatcher: dispatcher,
		poller:     poller,
		recorder:   recorder,
	}
}

// Deploy submits the artifact's creation code with constructor args from the
// given account, waits for inclusion and verifies that code was deployed.
func (d *Deployer) Deploy(ctx context.Context, artifact *artifacts.Artifact, from common.Address, args ...any) (*Result, error) {
	data, err := artifact.DeployData(args...)
	if err != nil {
		metrics.DeploymentsTotal.WithLabelValues("failed").Inc()
		return nil, err
	}

	slog.Info("Deploying contract", "name", artifact.Name, "from", from.Hex(), "code_size", len(artifact.Bytecode))

	tx, err := d.dispatcher.Transact(ctx, nil, "deploy "+artifact.Name, data, contract.CallOpts{From: from})
	if err != nil {
		metrics.DeploymentsTotal.WithLabelValues("failed").Inc()
		return nil, fmt.Errorf("failed to submit %s deployment: %w", artifact.Name, err)
	}

	address, receipt, err := d.poller.WaitForDeployment(ctx, tx.Hash)
	if err != nil {
		metrics.DeploymentsTotal.WithLabelValues("failed").Inc()
		return nil, fmt.Errorf("%s deployment %s: %w", artifact.Name, tx.Hash.Hex(), err)
	}
	metrics.DeploymentsTotal.WithLabelValues("success").Inc()
	debug.PrintReceipt(receipt)

	slog.Info("Contract deployed",
		"name", artifact.Name,
		"address", address.Hex(),
		"tx_hash", tx.Hash.Hex(),
		"block", receipt.BlockNumber,
		"gas_used", receipt.GasUsed,
	)

	if d.recorder != nil {
		record := &models.Deployment{
			Name:       artifact.Name,
			Address:    address.Hex(),
			TxHash:     tx.Hash.Hex(),
			Deployer:   from.Hex(),
			GasUsed:    receipt.GasUsed,
			DeployedAt: time.Now().UTC(),
		}
		if receipt.BlockNumber != nil {
			record.BlockNumber = receipt.BlockNumber.Uint64()
		}
		if err := d.recorder.RecordDeployment(ctx, record); err != nil {
			slog.Warn("Failed to journal deployment", "address", address.Hex(), "error", err)
		}
		debug.PrintDeployment(record)
	}

	return &Result{
		Contract: contract.NewDeployedContract(artifact.Name, address, artifact.ABI),
		TxHash:   tx.Hash,
		Receipt:  receipt,
	}, nil
}
