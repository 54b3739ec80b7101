package node

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type rpcRequest struct {
	ID     json.RawMessage   `json:"id"`
	Method string            `json:"method"`
	Params []json.RawMessage `json:"params"`
}

// rpcServer answers JSON-RPC requests from a method table and remembers the params it saw
type rpcServer struct {
	mu      sync.Mutex
	results map[string]any
	errors  map[string]string
	params  map[string][]json.RawMessage
}

func newRPCServer(t *testing.T, results map[string]any) (*rpcServer, Endpoint) {
	t.Helper()
	s := &rpcServer{results: results, errors: map[string]string{}, params: map[string][]json.RawMessage{}}
	server := httptest.NewServer(http.HandlerFunc(s.serve))
	t.Cleanup(server.Close)

	endpoint, err := ParseEndpoint(server.URL)
	require.NoError(t, err)
	return s, endpoint
}

func (s *rpcServer) serve(w http.ResponseWriter, r *http.Request) {
	var req rpcRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	s.mu.Lock()
	s.params[req.Method] = req.Params
	result, ok := s.results[req.Method]
	msg, failed := s.errors[req.Method]
	s.mu.Unlock()

	resp := map[string]any{"jsonrpc": "2.0", "id": req.ID}
	switch {
	case failed:
		resp["error"] = map[string]any{"code": -32000, "message": msg}
	case !ok:
		resp["error"] = map[string]any{"code": -32601, "message": "method not found"}
	default:
		resp["result"] = result
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}

func (s *rpcServer) fail(method, message string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.errors[method] = message
}

func (s *rpcServer) paramsOf(method string) []json.RawMessage {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.params[method]
}

var (
	acct0 = common.HexToAddress("0xed9d02e382b34818e88b88a309c7fe71e65f419d")
	acct1 = common.HexToAddress("0xca843569e3427144cead5e4d5999a3d0ccf92b8e")
)

func baseResults() map[string]any {
	return map[string]any{
		"net_listening":   true,
		"net_version":     "1337",
		"eth_chainId":     "0x539",
		"eth_blockNumber": "0x10",
		"eth_accounts":    []string{acct0.Hex(), acct1.Hex()},
		"eth_getBalance":  "0xde0b6b3a7640000",
	}
}

func TestOpenSession(t *testing.T) {
	_, endpoint := newRPCServer(t, baseResults())

	session, err := Open(context.Background(), endpoint, Options{})
	require.NoError(t, err)
	defer session.Close()

	assert.Equal(t, acct0, session.Sender())
	assert.Equal(t, []common.Address{acct0, acct1}, session.Identities())
	assert.Equal(t, "1337", session.Info().NetworkID.String())
	assert.Equal(t, int64(1337), session.Info().ChainID.Int64())
	assert.Equal(t, uint64(16), session.Info().BlockHeight)

	balance, err := session.Balance(context.Background(), session.Sender())
	require.NoError(t, err)
	assert.Equal(t, "1", FormatEther(balance))
}

func TestOpenUnreachable(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	endpoint, err := ParseEndpoint(server.URL)
	require.NoError(t, err)
	server.Close()

	_, err = Open(context.Background(), endpoint, Options{})
	require.ErrorIs(t, err, ErrConnectionFailure)

	var connErr *ConnectionError
	require.ErrorAs(t, err, &connErr)
	assert.Equal(t, endpoint.URL(), connErr.Endpoint)
}

func TestListeningRPCError(t *testing.T) {
	srv, endpoint := newRPCServer(t, baseResults())
	srv.fail("net_listening", "boom")

	_, err := Open(context.Background(), endpoint, Options{})
	require.ErrorIs(t, err, ErrConnectionFailure)
	assert.Contains(t, err.Error(), "boom")
}

func TestUnlockAccountSendsSeconds(t *testing.T) {
	results := baseResults()
	results["personal_unlockAccount"] = true
	srv, endpoint := newRPCServer(t, results)

	backend, err := Dial(context.Background(), endpoint)
	require.NoError(t, err)
	defer backend.Close()

	ok, err := backend.UnlockAccount(context.Background(), acct0, "", 600*time.Second)
	require.NoError(t, err)
	assert.True(t, ok)

	params := srv.paramsOf("personal_unlockAccount")
	require.Len(t, params, 3)
	var account common.Address
	require.NoError(t, json.Unmarshal(params[0], &account))
	assert.Equal(t, acct0, account)
	assert.JSONEq(t, `""`, string(params[1]))
	assert.JSONEq(t, `600`, string(params[2]))
}

func TestSendTransactionParams(t *testing.T) {
	hash := common.HexToHash("0x0abc")
	results := baseResults()
	results["eth_sendTransaction"] = hash.Hex()
	srv, endpoint := newRPCServer(t, results)

	backend, err := Dial(context.Background(), endpoint)
	require.NoError(t, err)
	defer backend.Close()

	got, err := backend.SendTransaction(context.Background(), TxArgs{
		From: acct0,
		Gas:  55000,
		Data: []byte{0x60, 0x57, 0x36, 0x1d},
	})
	require.NoError(t, err)
	assert.Equal(t, hash, got)

	params := srv.paramsOf("eth_sendTransaction")
	require.Len(t, params, 1)
	var sent map[string]any
	require.NoError(t, json.Unmarshal(params[0], &sent))
	assert.Equal(t, "0xd6d8", sent["gas"])
	assert.Equal(t, "0x6057361d", sent["data"])
	assert.Equal(t, acct0, common.HexToAddress(sent["from"].(string)))
	assert.NotContains(t, sent, "to")
	assert.NotContains(t, sent, "value")
}

func TestTransactionReceiptPendingIsNotFound(t *testing.T) {
	results := baseResults()
	results["eth_getTransactionReceipt"] = nil
	_, endpoint := newRPCServer(t, results)

	backend, err := Dial(context.Background(), endpoint)
	require.NoError(t, err)
	defer backend.Close()

	_, err = backend.TransactionReceipt(context.Background(), common.HexToHash("0x01"))
	assert.ErrorIs(t, err, ethereum.NotFound)
}

func TestTransactionReceiptDecoded(t *testing.T) {
	receipt := &types.Receipt{
		Type:              types.LegacyTxType,
		Status:            types.ReceiptStatusSuccessful,
		CumulativeGasUsed: 21000,
		GasUsed:           21000,
		TxHash:            common.HexToHash("0x02"),
		ContractAddress:   acct1,
		Logs:              []*types.Log{},
	}
	raw, err := receipt.MarshalJSON()
	require.NoError(t, err)

	results := baseResults()
	results["eth_getTransactionReceipt"] = json.RawMessage(raw)
	_, endpoint := newRPCServer(t, results)

	backend, err := Dial(context.Background(), endpoint)
	require.NoError(t, err)
	defer backend.Close()

	got, err := backend.TransactionReceipt(context.Background(), receipt.TxHash)
	require.NoError(t, err)
	assert.Equal(t, receipt.TxHash, got.TxHash)
	assert.Equal(t, acct1, got.ContractAddress)
	assert.Equal(t, types.ReceiptStatusSuccessful, got.Status)
}
