// Package contract invokes methods of deployed contracts. Each invocation
// first goes through the go-ethereum ABI binding and, if that fails, once
// more through a hand-encoded raw call.
package contract

import (
	"fmt"
	"sort"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
)

// Mutability classifies a method as read-only or state-changing
type Mutability string

const (
	ReadOnly      Mutability = "read-only"
	StateChanging Mutability = "state-changing"
)

// MutabilityOf maps a Solidity stateMutability tag to a Mutability
func MutabilityOf(stateMutability string) Mutability {
	switch stateMutability {
	case "view", "pure":
		return ReadOnly
	default:
		return StateChanging
	}
}

// Param is a named, typed method parameter
type Param struct {
	Name string `json:"name"`
	Type string `json:"type"`
}

// MethodDescriptor describes one callable entry point of a contract
type MethodDescriptor struct {
	Name       string     `json:"name"`
	Inputs     []Param    `json:"inputs"`
	Outputs    []Param    `json:"outputs"`
	Mutability Mutability `json:"mutability"`
}

// Signature returns the canonical signature, e.g. "store(uint256)"
func (m MethodDescriptor) Signature() string {
	types := make([]string, len(m.Inputs))
	for i, p := range m.Inputs {
		types[i] = canonicalType(p.Type)
	}
	return m.Name + "(" + strings.Join(types, ",") + ")"
}

// ReadOnly reports whether the method can be resolved with eth_call
func (m MethodDescriptor) ReadOnly() bool {
	return m.Mutability == ReadOnly
}

// ParseABI parses a Solidity JSON ABI
func ParseABI(raw string) (*abi.ABI, error) {
	parsed, err := abi.JSON(strings.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("failed to parse ABI: %w", err)
	}
	return &parsed, nil
}

// DescriptorsFromABI lists the methods of a parsed ABI sorted by name
func DescriptorsFromABI(binding *abi.ABI) []MethodDescriptor {
	if binding == nil {
		return nil
	}
	out := make([]MethodDescriptor, 0, len(binding.Methods))
	for _, m := range binding.Methods {
		out = append(out, descriptorFromMethod(m))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

func descriptorFromMethod(m abi.Method) MethodDescriptor {
	mutability := MutabilityOf(m.StateMutability)
	if m.Constant {
		mutability = ReadOnly
	}
	return MethodDescriptor{
		Name:       m.RawName,
		Inputs:     paramsFromArguments(m.Inputs),
		Outputs:    paramsFromArguments(m.Outputs),
		Mutability: mutability,
	}
}

func paramsFromArguments(args abi.Arguments) []Param {
	out := make([]Param, len(args))
	for i, a := range args {
		out[i] = Param{Name: a.Name, Type: a.Type.String()}
	}
	return out
}

// DeployedContract pairs a contract address with its callable methods.
// Binding is optional; without it every invocation takes the raw path.
type DeployedContract struct {
	Name    string
	Address common.Address
	Binding *abi.ABI
	Methods []MethodDescriptor
}

// NewDeployedContract builds a contract handle whose descriptors come from the binding
func NewDeployedContract(name string, address common.Address, binding *abi.ABI) *DeployedContract {
	return &DeployedContract{
		Name:    name,
		Address: address,
		Binding: binding,
		Methods: DescriptorsFromABI(binding),
	}
}

// Method looks a descriptor up by name
func (c *DeployedContract) Method(name string) (MethodDescriptor, bool) {
	for _, m := range c.Methods {
		if m.Name == name {
			return m, true
		}
	}
	return MethodDescriptor{}, false
}

// WithMethods returns a copy that also knows the extra descriptors.
// Descriptors with an existing name replace the old one.
func (c *DeployedContract) WithMethods(extra ...MethodDescriptor) *DeployedContract {
	cp := *c
	cp.Methods = make([]MethodDescriptor, 0, len(c.Methods)+len(extra))
	replaced := make(map[string]bool, len(extra))
	for _, m := range extra {
		replaced[m.Name] = true
	}
	for _, m := range c.Methods {
		if !replaced[m.Name] {
			cp.Methods = append(cp.Methods, m)
		}
	}
	cp.Methods = append(cp.Methods, extra...)
	return &cp
}

func canonicalType(t string) string {
	switch {
	case t == "uint":
		return "uint256"
	case t == "int":
		return "int256"
	case strings.HasPrefix(t, "uint["), strings.HasPrefix(t, "int["):
		i := strings.Index(t, "[")
		return canonicalType(t[:i]) + t[i:]
	default:
		return t
	}
}
