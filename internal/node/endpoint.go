package node

import (
	"fmt"
	"net"
	"net/url"
	"strconv"
)

// Endpoint is the network address of a node's HTTP JSON-RPC service
type Endpoint struct {
	Scheme string
	Host   string
	Port   int
}

// ParseEndpoint parses an RPC URL such as http://localhost:22000
func ParseEndpoint(raw string) (Endpoint, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return Endpoint{}, fmt.Errorf("invalid RPC URL %q: %w", raw, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return Endpoint{}, fmt.Errorf("invalid RPC URL %q: scheme must be http or https", raw)
	}
	host := u.Hostname()
	if host == "" {
		return Endpoint{}, fmt.Errorf("invalid RPC URL %q: missing host", raw)
	}

	port := 80
	if u.Scheme == "https" {
		port = 443
	}
	if p := u.Port(); p != "" {
		port, err = strconv.Atoi(p)
		if err != nil || port <= 0 || port > 65535 {
			return Endpoint{}, fmt.Errorf("invalid RPC URL %q: bad port", raw)
		}
	}

	return Endpoint{Scheme: u.Scheme, Host: host, Port: port}, nil
}

// URL returns the endpoint as a dialable URL
func (e Endpoint) URL() string {
	return fmt.Sprintf("%s://%s", e.Scheme, net.JoinHostPort(e.Host, strconv.Itoa(e.Port)))
}

func (e Endpoint) String() string {
	return e.URL()
}
