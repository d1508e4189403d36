package router

import (
	"bytes"
	"context"
	"crypto/ecdsa"
	"encoding/json"
	"fmt"
	"math/big"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	com "github.com/citizenwallet/tokengov/internal/common"
	"github.com/citizenwallet/tokengov/pkg/gov"
	"github.com/ethereum/go-ethereum/accounts"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/stretchr/testify/require"
)

func signV2(t *testing.T, k *ecdsa.PrivateKey, body signedBody) string {
	t.Helper()

	b, err := json.Marshal(body)
	require.NoError(t, err)

	sig, err := crypto.Sign(crypto.Keccak256(b), k)
	require.NoError(t, err)

	return compactSignature(sig)
}

func TestSignatureVerification(t *testing.T) {
	// generate a key pair
	k, err := crypto.GenerateKey()
	require.NoError(t, err)

	addr := crypto.PubkeyToAddress(k.PublicKey)

	data := []byte(`{"hello":"world"}`)

	t.Run("v2", func(t *testing.T) {
		body := signedBody{
			Data:     data,
			Encoding: BodyEncodingBase64,
			Expiry:   time.Now().Add(time.Minute).Unix(),
			Version:  2,
		}

		sig := signV2(t, k, body)

		require.True(t, verifyV2Signature(body, addr, sig))

		// someone else
		require.False(t, verifyV2Signature(body, common.HexToAddress("0x1000000000000000000000000000000000000001"), sig))

		// tampered body
		tampered := body
		tampered.Data = []byte(`{"hello":"there"}`)
		require.False(t, verifyV2Signature(tampered, addr, sig))
	})

	t.Run("v2 expired", func(t *testing.T) {
		body := signedBody{
			Data:    data,
			Expiry:  time.Now().Add(-time.Minute).Unix(),
			Version: 2,
		}

		require.False(t, verifyV2Signature(body, addr, signV2(t, k, body)))
	})

	t.Run("v3 eoa", func(t *testing.T) {
		body := signedBody{
			Data:    data,
			Expiry:  time.Now().Add(time.Minute).Unix(),
			Version: 3,
		}

		b, err := json.Marshal(body)
		require.NoError(t, err)

		sig, err := crypto.Sign(accounts.TextHash(crypto.Keccak256(b)), k)
		require.NoError(t, err)

		sig[crypto.RecoveryIDOffset] += 27

		require.True(t, verify1271Signature(context.Background(), nil, body, addr, "0x"+common.Bytes2Hex(sig)))
		require.False(t, verify1271Signature(context.Background(), nil, body, common.HexToAddress("0x1000000000000000000000000000000000000001"), "0x"+common.Bytes2Hex(sig)))
	})
}

type staticOracle map[common.Address]int64

func (o staticOracle) BalanceOf(ctx context.Context, token, account common.Address, id *big.Int) (*big.Int, error) {
	return big.NewInt(o[account]), nil
}

func TestRouter(t *testing.T) {
	k, err := crypto.GenerateKey()
	require.NoError(t, err)

	signer := crypto.PubkeyToAddress(k.PublicKey)
	token := common.HexToAddress("0x5815E61eF72c9E6107b5c5A05FD121F334f7a7f1")

	g := gov.New(gov.NewMemoryStore(), staticOracle{signer: 10}, nil)
	h := NewServer(big.NewInt(137), "secret", nil, g).Handler()

	path := fmt.Sprintf("/gov/%s/1/proposals", token.Hex())

	signed := func(data string, encoding ...BodyEncoding) (*bytes.Reader, string) {
		body := signedBody{
			Data:    []byte(data),
			Expiry:  time.Now().Add(time.Minute).Unix(),
			Version: 2,
		}
		if len(encoding) > 0 {
			body.Encoding = encoding[0]
		}

		b, err := json.Marshal(body)
		require.NoError(t, err)

		return bytes.NewReader(b), signV2(t, k, body)
	}

	t.Run("health", func(t *testing.T) {
		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/health", nil))
		require.Equal(t, http.StatusOK, rr.Code)
	})

	t.Run("version", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/version", nil)
		req.Header.Set("Authorization", "Bearer secret")

		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, req)
		require.Equal(t, http.StatusOK, rr.Code)
		require.Contains(t, rr.Body.String(), `"chain_id":"137"`)
	})

	t.Run("api key", func(t *testing.T) {
		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, path, nil))
		require.Equal(t, http.StatusUnauthorized, rr.Code)
	})

	t.Run("options", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodOptions, path, nil)
		req.Header.Set("Authorization", "Bearer secret")

		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, req)
		require.Equal(t, http.StatusOK, rr.Code)
		require.Contains(t, rr.Header().Get("Allow"), http.MethodPost)
	})

	t.Run("unsigned", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader([]byte(`{}`)))
		req.Header.Set("Authorization", "Bearer secret")
		req.Header.Set(com.AddressHeader, signer.Hex())

		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, req)
		require.Equal(t, http.StatusUnauthorized, rr.Code)
	})

	t.Run("wrong address", func(t *testing.T) {
		body, sig := signed(`{"title":"hello"}`)

		req := httptest.NewRequest(http.MethodPost, path, body)
		req.Header.Set("Authorization", "Bearer secret")
		req.Header.Set(com.AddressHeader, token.Hex())
		req.Header.Set(com.SignatureHeader, sig)

		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, req)
		require.Equal(t, http.StatusUnauthorized, rr.Code)
	})

	t.Run("unsupported encoding", func(t *testing.T) {
		body, sig := signed(`{"title":"hello"}`, BodyEncoding("hex"))

		req := httptest.NewRequest(http.MethodPost, path, body)
		req.Header.Set("Authorization", "Bearer secret")
		req.Header.Set(com.AddressHeader, signer.Hex())
		req.Header.Set(com.SignatureHeader, sig)

		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, req)
		require.Equal(t, http.StatusBadRequest, rr.Code)

		ps, err := g.Proposals(context.Background(), token, big.NewInt(1))
		require.NoError(t, err)
		require.Empty(t, ps)
	})

	t.Run("signed proposal", func(t *testing.T) {
		body, sig := signed(`{"title":"hello","threshold":"3"}`, BodyEncodingBase64)

		req := httptest.NewRequest(http.MethodPost, path, body)
		req.Header.Set("Authorization", "Bearer secret")
		req.Header.Set(com.AddressHeader, signer.Hex())
		req.Header.Set(com.SignatureHeader, sig)

		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, req)
		require.Equal(t, http.StatusOK, rr.Code)

		p, err := g.Proposal(context.Background(), token, big.NewInt(1), 1)
		require.NoError(t, err)
		require.Equal(t, signer, p.Proposer)
		require.Equal(t, "hello", p.Title)
		require.Equal(t, int64(3), p.Threshold.Int64())
	})
}
