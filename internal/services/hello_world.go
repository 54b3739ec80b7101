package services

import (
	"context"

	"quorumkit/internal/contract"
)

// HelloWorld wraps the HelloWorld greeting contract
type HelloWorld struct {
	base
}

// NewHelloWorld wraps a deployed HelloWorld contract
func NewHelloWorld(client Client, c *contract.DeployedContract) *HelloWorld {
	return &HelloWorld{base{client: client, contract: c}}
}

// Greet reads the public greet variable
func (h *HelloWorld) Greet(ctx context.Context) (string, error) {
	return h.readString(ctx, "greet")
}

// GetGreeting calls getGreeting()
func (h *HelloWorld) GetGreeting(ctx context.Context) (string, error) {
	return h.readString(ctx, "getGreeting")
}

// SetGreeting submits setGreeting(greeting)
func (h *HelloWorld) SetGreeting(ctx context.Context, greeting string) (*contract.PendingTransaction, error) {
	return h.send(ctx, h.client.Sender, "setGreeting", greeting)
}

func (h *HelloWorld) readString(ctx context.Context, method string) (string, error) {
	values, err := h.call(ctx, method)
	if err != nil {
		return "", err
	}
	v, err := single(values, method)
	if err != nil {
		return "", err
	}
	return asString(v)
}

// VersionProbe wraps the placeholder contract exposing getVersion()
type VersionProbe struct {
	base
}

// NewVersionProbe wraps a deployed version probe contract
func NewVersionProbe(client Client, c *contract.DeployedContract) *VersionProbe {
	return &VersionProbe{base{client: client, contract: c}}
}

// Version calls getVersion()
func (v *VersionProbe) Version(ctx context.Context) (string, error) {
	values, err := v.call(ctx, "getVersion")
	if err != nil {
		return "", err
	}
	out, err := single(values, "getVersion")
	if err != nil {
		return "", err
	}
	return asString(out)
}
