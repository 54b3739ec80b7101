// Package scenario holds the deploy-and-exercise flows run by quorumctl.
package scenario

import (
	"context"
	"errors"
	"fmt"
	"math/big"

	"quorumkit/internal/artifacts"
	"quorumkit/internal/contract"
	"quorumkit/internal/deploy"
	"quorumkit/internal/ledger"
	"quorumkit/internal/models"
	"quorumkit/internal/node"
	"quorumkit/internal/orchestrator"
	"quorumkit/internal/services"
)

// DefaultLoan is 100000 USD at 5000 interest over 30 days
var DefaultLoan = models.LoanRequest{Currency: "USD", Amount: 100000, Interest: 5000, Duration: 30 * 24 * 60 * 60}

// ErrValueMismatch is returned when a read-back does not match what was written
var ErrValueMismatch = errors.New("retrieved value does not match stored value")

// Printer is the progress output of a scenario
type Printer interface {
	orchestrator.Progress
	Field(label string, value any)
	Success(format string, args ...any)
}

// Compiler builds a named contract from Solidity source
type Compiler interface {
	CompileContract(ctx context.Context, source, name string) (*artifacts.Artifact, error)
}

// Env is what the scenarios run against
type Env struct {
	Session  *node.Session
	Client   services.Client
	Deployer *deploy.Deployer
	Compiler Compiler
	Printer  Printer
}

func (e *Env) deploy(ctx context.Context, artifact *artifacts.Artifact) (*deploy.Result, error) {
	result, err := e.Deployer.Deploy(ctx, artifact, e.Client.Sender)
	if err != nil {
		return nil, err
	}
	e.Printer.Success("%s deployed at %s", artifact.Name, result.Contract.Address.Hex())
	e.Printer.Field("Transaction", result.TxHash.Hex())
	e.Printer.Field("Block", result.Receipt.BlockNumber)
	e.Printer.Field("Gas used", result.Receipt.GasUsed)
	return result, nil
}

// orchestration builds a run that reports progress to the env's printer
func (e *Env) orchestration(name string, steps ...orchestrator.Step) *orchestrator.Orchestrator {
	o := orchestrator.New(name, steps...)
	if e.Printer != nil {
		o.WithProgress(e.Printer)
	}
	return o
}

// SimpleStorage deploys SimpleStorage, stores 42 and reads it back
func SimpleStorage(env *Env) *orchestrator.Orchestrator {
	const want = 42
	var ss *services.SimpleStorage

	return env.orchestration("simple-storage",
		orchestrator.Step{Name: "Deploy SimpleStorage", Critical: true, Run: func(ctx context.Context) error {
			result, err := env.deploy(ctx, artifacts.MustLoad(artifacts.SimpleStorage))
			if err != nil {
				return err
			}
			ss = services.NewSimpleStorage(env.Client, result.Contract)
			return nil
		}},
		orchestrator.Step{Name: "Read initial value", Run: func(ctx context.Context) error {
			v, err := ss.Retrieve(ctx)
			if err != nil {
				return err
			}
			env.Printer.Field("Initial value", v)
			return nil
		}},
		orchestrator.Step{Name: fmt.Sprintf("Store %d", want), Critical: true, Run: func(ctx context.Context) error {
			tx, err := ss.Store(ctx, big.NewInt(want))
			if err != nil {
				return err
			}
			env.Printer.Field("Transaction", tx.Hash.Hex())
			env.Printer.Field("Path", tx.Path)
			_, err = ss.Confirm(ctx, tx)
			return err
		}},
		orchestrator.Step{Name: "Read stored value", Critical: true, Run: func(ctx context.Context) error {
			v, err := ss.Retrieve(ctx)
			if err != nil {
				return err
			}
			env.Printer.Field("Retrieved value", v)
			if v.Cmp(big.NewInt(want)) != 0 {
				return fmt.Errorf("%w: got %s, want %d", ErrValueMismatch, v, want)
			}
			env.Printer.Success("Contract test successful")
			env.Printer.Field("Contract address", ss.Contract().Address.Hex())
			return nil
		}},
	)
}

// HelloWorld compiles and deploys HelloWorld, then changes the greeting
func HelloWorld(env *Env, greeting string) *orchestrator.Orchestrator {
	var (
		artifact *artifacts.Artifact
		hello    *services.HelloWorld
	)

	return env.orchestration("hello-world",
		orchestrator.Step{Name: "Compile HelloWorld", Critical: true, Run: func(ctx context.Context) error {
			var err error
			artifact, err = env.Compiler.CompileContract(ctx, artifacts.HelloWorldSource(), artifacts.HelloWorld)
			if err != nil {
				return err
			}
			env.Printer.Field("Bytecode size", len(artifact.Bytecode))
			return nil
		}},
		orchestrator.Step{Name: "Deploy HelloWorld", Critical: true, Run: func(ctx context.Context) error {
			result, err := env.deploy(ctx, artifact)
			if err != nil {
				return err
			}
			hello = services.NewHelloWorld(env.Client, result.Contract)
			return nil
		}},
		orchestrator.Step{Name: "Read greeting", Critical: true, Run: func(ctx context.Context) error {
			greet, err := hello.Greet(ctx)
			if err != nil {
				return err
			}
			env.Printer.Field("Initial greeting", greet)
			return nil
		}},
		orchestrator.Step{Name: "Set greeting", Critical: true, Run: func(ctx context.Context) error {
			tx, err := hello.SetGreeting(ctx, greeting)
			if err != nil {
				return err
			}
			_, err = hello.Confirm(ctx, tx)
			return err
		}},
		orchestrator.Step{Name: "Read new greeting", Critical: true, Run: func(ctx context.Context) error {
			greet, err := hello.GetGreeting(ctx)
			if err != nil {
				return err
			}
			env.Printer.Field("New greeting", greet)
			if greet != greeting {
				return fmt.Errorf("%w: got %q, want %q", ErrValueMismatch, greet, greeting)
			}
			return nil
		}},
	)
}

// FiatLoan deploys FiatLoanMatcher and walks one loan through its lifecycle.
// Funding uses the second node account when there is one; with a single
// account the borrower funds its own loan, which the contract rejects, so
// funding and repayment are optional steps.
func FiatLoan(env *Env, request models.LoanRequest) *orchestrator.Orchestrator {
	var (
		loans  *services.FiatLoan
		loanID *big.Int
	)

	showLoan := func(ctx context.Context) error {
		loan, err := loans.GetLoan(ctx, loanID)
		if err != nil {
			return err
		}
		env.Printer.Field("Loan", loan.ID)
		env.Printer.Field("Borrower", loan.Borrower)
		env.Printer.Field("Lender", loan.Lender)
		env.Printer.Field("Amount", loan.Amount+" "+loan.Currency)
		env.Printer.Field("Interest", loan.Interest)
		env.Printer.Field("Duration", loan.Duration)
		env.Printer.Field("Status", loan.Status)
		return nil
	}

	return env.orchestration("fiatloan",
		orchestrator.Step{Name: "Deploy FiatLoanMatcher", Critical: true, Run: func(ctx context.Context) error {
			result, err := env.deploy(ctx, artifacts.MustLoad(artifacts.FiatLoanMatcher))
			if err != nil {
				return err
			}
			loans = services.NewFiatLoan(env.Client, result.Contract)
			return nil
		}},
		orchestrator.Step{Name: "Request loan", Critical: true, Run: func(ctx context.Context) error {
			sub, err := loans.RequestLoan(ctx, request)
			if err != nil {
				return err
			}
			loanID = sub.LoanID
			env.Printer.Field("Loan ID", loanID)
			env.Printer.Field("Transaction", sub.Tx.Hash.Hex())
			return nil
		}},
		orchestrator.Step{Name: "Loan details", Critical: true, Run: showLoan},
		orchestrator.Step{Name: "Fund loan", Run: func(ctx context.Context) error {
			lender := env.Client.Sender
			if ids := env.Session.Identities(); len(ids) > 1 {
				lender = ids[1]
			}
			env.Printer.Field("Lender", lender.Hex())
			tx, err := loans.FundLoan(ctx, loanID, lender)
			if err != nil {
				return err
			}
			_, err = loans.Confirm(ctx, tx)
			return err
		}},
		orchestrator.Step{Name: "Mark repaid", Run: func(ctx context.Context) error {
			tx, err := loans.MarkRepaid(ctx, loanID)
			if err != nil {
				return err
			}
			_, err = loans.Confirm(ctx, tx)
			return err
		}},
		orchestrator.Step{Name: "Final loan details", Critical: true, Run: showLoan},
	)
}

// VersionProbe deploys the placeholder contract and reads getVersion()
func VersionProbe(env *Env) *orchestrator.Orchestrator {
	var probe *services.VersionProbe

	return env.orchestration("version-probe",
		orchestrator.Step{Name: "Deploy version probe", Critical: true, Run: func(ctx context.Context) error {
			result, err := env.deploy(ctx, artifacts.MustLoad(artifacts.VersionProbe))
			if err != nil {
				return err
			}
			probe = services.NewVersionProbe(env.Client, result.Contract)
			return nil
		}},
		orchestrator.Step{Name: "Read version", Run: func(ctx context.Context) error {
			v, err := probe.Version(ctx)
			if err != nil {
				return err
			}
			env.Printer.Field("Version", v)
			return nil
		}},
	)
}

// Check verifies that address holds code and reads retrieve() from it
func Check(ctx context.Context, env *Env, poller *ledger.Poller, address string) (*big.Int, error) {
	addr, err := poller.VerifyAddress(ctx, address)
	if err != nil {
		return nil, err
	}
	art := artifacts.MustLoad(artifacts.SimpleStorage)
	ss := services.NewSimpleStorage(env.Client, contract.NewDeployedContract(art.Name, addr, art.ABI))
	v, err := ss.Retrieve(ctx)
	if err != nil {
		return nil, err
	}
	env.Printer.Field("Retrieved value", v)
	return v, nil
}
