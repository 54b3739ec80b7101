package scenario

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/ethereum/go-ethereum/crypto"
	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"quorumkit/internal/artifacts"
	"quorumkit/internal/contract"
	"quorumkit/internal/deploy"
	"quorumkit/internal/ledger"
	"quorumkit/internal/ledger/retry"
	"quorumkit/internal/node"
	"quorumkit/internal/node/nodetest"
	"quorumkit/internal/output"
	"quorumkit/internal/services"
	"quorumkit/internal/storage"
)

const helloWorldABI = `[
	{"inputs":[],"name":"greet","outputs":[{"internalType":"string","name":"","type":"string"}],"stateMutability":"view","type":"function"},
	{"inputs":[],"name":"getGreeting","outputs":[{"internalType":"string","name":"","type":"string"}],"stateMutability":"view","type":"function"},
	{"inputs":[{"internalType":"string","name":"_greet","type":"string"}],"name":"setGreeting","outputs":[],"stateMutability":"nonpayable","type":"function"}
]`

type fakeCompiler struct {
	err error
}

func (f fakeCompiler) CompileContract(ctx context.Context, source, name string) (*artifacts.Artifact, error) {
	if f.err != nil {
		return nil, f.err
	}
	return artifacts.New(name, helloWorldABI, "0x60806040aa")
}

// contracts picks the emulated contract from the creation code
func contracts(code []byte) nodetest.Contract {
	for name, build := range map[string]func(*artifacts.Artifact) nodetest.Contract{
		artifacts.SimpleStorage: func(*artifacts.Artifact) nodetest.Contract { return nodetest.NewSimpleStorage() },
		artifacts.FiatLoanMatcher: func(a *artifacts.Artifact) nodetest.Contract {
			return nodetest.NewFiatLoanMatcher(a.ABI)
		},
		artifacts.VersionProbe: func(a *artifacts.Artifact) nodetest.Contract { return nodetest.NewStringStore(a.ABI, "1.0.0") },
	} {
		a := artifacts.MustLoad(name)
		if bytes.HasPrefix(code, a.Bytecode) {
			return build(a)
		}
	}
	binding, _ := contract.ParseABI(helloWorldABI)
	return nodetest.NewStringStore(binding, "Hello, Quorum!")
}

func newEnv(t *testing.T, fake *nodetest.Node, compiler Compiler) (*Env, *ledger.Poller, *bytes.Buffer) {
	t.Helper()
	fake.OnDeploy(contracts)
	session, err := node.NewSession(context.Background(), fake, node.Endpoint{Scheme: "http", Host: "localhost", Port: 22000}, node.Options{})
	require.NoError(t, err)

	journal := storage.NewJournal(storage.NewMemoryRepository())
	dispatcher := contract.NewDispatcher(fake, contract.WithRecorder(journal))
	poller := ledger.NewPoller(fake, retry.NewFixedDelayStrategy(5, 0), ledger.WithRecorder(journal))

	var buf bytes.Buffer
	printer := output.NewPrinterTo(&buf, &buf)
	prev := color.NoColor
	printer.SetNoColor(true)
	t.Cleanup(func() { color.NoColor = prev })

	return &Env{
		Session:  session,
		Client:   services.Client{Dispatcher: dispatcher, Poller: poller, Sender: session.Sender()},
		Deployer: deploy.NewDeployer(dispatcher, poller, journal),
		Compiler: compiler,
		Printer:  printer,
	}, poller, &buf
}

func TestSimpleStorageScenario(t *testing.T) {
	fake := nodetest.New(nodetest.Account(0))
	fake.SetReceiptDelay(1)
	env, _, buf := newEnv(t, fake, nil)

	results, err := SimpleStorage(env).Run(context.Background())
	require.NoError(t, err)
	require.Len(t, results, 4)
	for _, r := range results {
		assert.NoError(t, r.Err, r.Name)
	}
	assert.Contains(t, buf.String(), "Retrieved value: 42")
	assert.Contains(t, buf.String(), "[1/4] Deploy SimpleStorage")
	assert.Contains(t, buf.String(), "[4/4] Read stored value")
}

func TestSimpleStorageScenarioDeployTimeout(t *testing.T) {
	fake := nodetest.New(nodetest.Account(0))
	fake.SetReceiptDelay(100)
	env, _, _ := newEnv(t, fake, nil)

	results, err := SimpleStorage(env).Run(context.Background())
	assert.ErrorIs(t, err, ledger.ErrConfirmationTimeout)
	assert.Len(t, results, 1)
}

func TestHelloWorldScenario(t *testing.T) {
	env, _, buf := newEnv(t, nodetest.New(nodetest.Account(0)), fakeCompiler{})

	_, err := HelloWorld(env, "Hello, GoQuorum QBFT Network!").Run(context.Background())
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "Initial greeting: Hello, Quorum!")
	assert.Contains(t, buf.String(), "New greeting: Hello, GoQuorum QBFT Network!")
}

func TestHelloWorldScenarioCompileFailure(t *testing.T) {
	boom := errors.New("solc: executable file not found")
	env, _, _ := newEnv(t, nodetest.New(nodetest.Account(0)), fakeCompiler{err: boom})

	results, err := HelloWorld(env, "hi").Run(context.Background())
	assert.ErrorIs(t, err, boom)
	assert.Len(t, results, 1)
}

func TestFiatLoanScenarioTwoAccounts(t *testing.T) {
	env, _, buf := newEnv(t, nodetest.New(nodetest.Account(0), nodetest.Account(1)), nil)

	results, err := FiatLoan(env, DefaultLoan).Run(context.Background())
	require.NoError(t, err)
	require.Len(t, results, 6)
	for _, r := range results {
		assert.NoError(t, r.Err, r.Name)
	}
	assert.Contains(t, buf.String(), "Status: Repaid")
}

func TestFiatLoanScenarioSingleAccount(t *testing.T) {
	env, _, buf := newEnv(t, nodetest.New(nodetest.Account(0)), nil)

	results, err := FiatLoan(env, DefaultLoan).Run(context.Background())
	require.NoError(t, err)
	require.Len(t, results, 6)
	assert.ErrorIs(t, results[3].Err, services.ErrTransactionReverted)
	assert.Error(t, results[4].Err)
	assert.Contains(t, buf.String(), "Status: Requested")
	assert.Contains(t, buf.String(), "Warning: Fund loan failed")
}

func TestVersionProbeScenario(t *testing.T) {
	env, _, buf := newEnv(t, nodetest.New(nodetest.Account(0)), nil)

	_, err := VersionProbe(env).Run(context.Background())
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "Version: 1.0.0")
}

func TestCheck(t *testing.T) {
	fake := nodetest.New(nodetest.Account(0))
	env, poller, _ := newEnv(t, fake, nil)
	ctx := context.Background()

	_, err := SimpleStorage(env).Run(ctx)
	require.NoError(t, err)
	require.Nil(t, fake.Sent()[0].To)

	addr := crypto.CreateAddress(nodetest.Account(0), 0).Hex()
	v, err := Check(ctx, env, poller, addr)
	require.NoError(t, err)
	assert.Equal(t, int64(42), v.Int64())

	lookups := fake.CodeLookups()
	_, err = Check(ctx, env, poller, "0x1234")
	assert.ErrorIs(t, err, ledger.ErrDeploymentVerificationFailed)
	assert.Equal(t, lookups, fake.CodeLookups())

	_, err = Check(ctx, env, poller, "0x9999999999999999999999999999999999999999")
	assert.ErrorIs(t, err, ledger.ErrDeploymentVerificationFailed)
}
