package builder

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/programs/system"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vitwit/payflow/types"
)

func testOrder() *types.OrderDescriptor {
	return &types.OrderDescriptor{
		Buyer:          solana.NewWallet().PublicKey().String(),
		OrderReference: solana.NewWallet().PublicKey().String(),
		ItemID:         "item-1",
	}
}

// encodedTransferTx builds an unsigned SOL transfer tagged with ref, the
// way the builder service does, and returns it base64-encoded.
func encodedTransferTx(t *testing.T, buyer, merchant, ref solana.PublicKey) string {
	t.Helper()

	transfer := system.NewTransferInstruction(1_000, buyer, merchant).Build()
	data, err := transfer.Data()
	require.NoError(t, err)

	accounts := append(transfer.Accounts(), solana.Meta(ref))
	ix := solana.NewInstruction(solana.SystemProgramID, accounts, data)

	tx, err := solana.NewTransaction(
		[]solana.Instruction{ix},
		solana.Hash{},
		solana.TransactionPayer(buyer),
	)
	require.NoError(t, err)

	raw, err := tx.MarshalBinary()
	require.NoError(t, err)

	return base64.StdEncoding.EncodeToString(raw)
}

func TestClient_BuildTransaction(t *testing.T) {
	order := testOrder()
	buyer := solana.MustPublicKeyFromBase58(order.Buyer)
	ref := solana.MustPublicKeyFromBase58(order.OrderReference)
	merchant := solana.NewWallet().PublicKey()

	var gotReq types.BuildRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotReq))
		json.NewEncoder(w).Encode(types.BuildResponse{
			Transaction: encodedTransferTx(t, buyer, merchant, ref),
		})
	}))
	defer srv.Close()

	c := New(srv.URL, 5*time.Second)
	tx, err := c.BuildTransaction(context.Background(), order)

	require.NoError(t, err)
	assert.Equal(t, order.OrderReference, gotReq.OrderReference)
	assert.Equal(t, order.Buyer, gotReq.Buyer)
	assert.Equal(t, order.ItemID, gotReq.ItemID)

	// The decoded transaction must carry the reference as an account key.
	found := false
	for _, key := range tx.Message.AccountKeys {
		if key.Equals(ref) {
			found = true
		}
	}
	assert.True(t, found, "order reference missing from transaction account keys")
}

func TestClient_BuildTransaction_NonSuccessStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "item not found", http.StatusNotFound)
	}))
	defer srv.Close()

	c := New(srv.URL, 5*time.Second)
	tx, err := c.BuildTransaction(context.Background(), testOrder())

	require.Error(t, err)
	assert.Nil(t, tx)

	var perr *types.PayflowError
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, types.ErrBuildFailed, perr.Code)
}

func TestClient_BuildTransaction_RejectsIncompleteOrder(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
	}))
	defer srv.Close()

	c := New(srv.URL, 5*time.Second)

	order := testOrder()
	order.Buyer = ""
	_, err := c.BuildTransaction(context.Background(), order)

	require.Error(t, err)
	assert.Equal(t, 0, calls, "no request should leave the client for an invalid order")
}

func TestClient_BuildTransaction_MalformedPayload(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(types.BuildResponse{Transaction: "not-base64!!"})
	}))
	defer srv.Close()

	c := New(srv.URL, 5*time.Second)
	_, err := c.BuildTransaction(context.Background(), testOrder())

	require.Error(t, err)
}

func TestClient_BuildTransaction_EmptyTransaction(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(types.BuildResponse{})
	}))
	defer srv.Close()

	c := New(srv.URL, 5*time.Second)
	_, err := c.BuildTransaction(context.Background(), testOrder())

	var perr *types.PayflowError
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, types.ErrBuildFailed, perr.Code)
}
