// Package artifacts holds the compiled contracts shipped with the toolkit.
package artifacts

import (
	"embed"
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common/hexutil"

	"quorumkit/internal/contract"
)

//go:embed data/*
var files embed.FS

// Contract names
const (
	SimpleStorage   = "SimpleStorage"
	FiatLoanMatcher = "FiatLoanMatcher"
	VersionProbe    = "VersionProbe"
	HelloWorld      = "HelloWorld"
)

var fileStems = map[string]string{
	SimpleStorage:   "simple_storage",
	FiatLoanMatcher: "fiat_loan_matcher",
	VersionProbe:    "version_probe",
}

// Artifact is a compiled contract: ABI plus creation bytecode
type Artifact struct {
	Name     string
	RawABI   string
	ABI      *abi.ABI
	Bytecode []byte
}

// New builds an artifact from a JSON ABI and hex creation code
func New(name, rawABI, bytecode string) (*Artifact, error) {
	parsed, err := contract.ParseABI(rawABI)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}

	bytecode = strings.TrimSpace(bytecode)
	if !strings.HasPrefix(bytecode, "0x") {
		bytecode = "0x" + bytecode
	}
	code, err := hexutil.Decode(bytecode)
	if err != nil {
		return nil, fmt.Errorf("%s: invalid bytecode: %w", name, err)
	}
	if len(code) == 0 {
		return nil, fmt.Errorf("%s: empty bytecode", name)
	}

	return &Artifact{Name: name, RawABI: rawABI, ABI: parsed, Bytecode: code}, nil
}

// Load returns one of the embedded precompiled contracts
func Load(name string) (*Artifact, error) {
	stem, ok := fileStems[name]
	if !ok {
		return nil, fmt.Errorf("unknown artifact %q", name)
	}
	rawABI, err := files.ReadFile("data/" + stem + ".abi.json")
	if err != nil {
		return nil, err
	}
	bin, err := files.ReadFile("data/" + stem + ".bin")
	if err != nil {
		return nil, err
	}
	return New(name, string(rawABI), string(bin))
}

// MustLoad is Load for the embedded contracts, which are known to be valid
func MustLoad(name string) *Artifact {
	a, err := Load(name)
	if err != nil {
		panic(err)
	}
	return a
}

// HelloWorldSource returns the Solidity source of the HelloWorld contract
func HelloWorldSource() string {
	src, err := files.ReadFile("data/hello_world.sol")
	if err != nil {
		panic(err)
	}
	return string(src)
}

// DeployData returns the creation bytecode followed by the packed constructor arguments
func (a *Artifact) DeployData(args ...any) ([]byte, error) {
	packed, err := a.ABI.Pack("", args...)
	if err != nil {
		return nil, fmt.Errorf("pack %s constructor: %w", a.Name, err)
	}
	data := make([]byte, 0, len(a.Bytecode)+len(packed))
	data = append(data, a.Bytecode...)
	return append(data, packed...), nil
}

// Methods returns the descriptors of the artifact's ABI
func (a *Artifact) Methods() []contract.MethodDescriptor {
	return contract.DescriptorsFromABI(a.ABI)
}
