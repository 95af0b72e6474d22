package tinkoff

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClientCall(t *testing.T) {
	ctx := context.Background()

	t.Run("posts JSON with bearer token and decodes the response", func(t *testing.T) {
		var gotAuth, gotPath, gotBody string
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotAuth = r.Header.Get("Authorization")
			gotPath = r.URL.Path
			body, _ := io.ReadAll(r.Body)
			gotBody = string(body)
			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(`{"accounts":[{"id":"acc-1"}]}`))
		}))
		defer srv.Close()

		client := NewClient(srv.URL)
		var resp GetAccountsResponse
		err := client.Call(ctx, "t.token", MethodGetAccounts, nil, &resp)
		require.NoError(t, err)

		assert.Equal(t, "Bearer t.token", gotAuth)
		assert.Equal(t, "/"+MethodGetAccounts, gotPath)
		assert.JSONEq(t, `{}`, gotBody)
		require.NotNil(t, resp.Accounts)
		require.Len(t, *resp.Accounts, 1)
		assert.Equal(t, "acc-1", (*resp.Accounts)[0].ID)
	})

	t.Run("nil payload is sent as an empty object, never an array", func(t *testing.T) {
		var gotBody []byte
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotBody, _ = io.ReadAll(r.Body)
			w.Write([]byte(`{}`))
		}))
		defer srv.Close()

		err := NewClient(srv.URL).Call(ctx, "t", MethodGetAccounts, nil, nil)
		require.NoError(t, err)
		assert.Equal(t, "{}", string(gotBody))
	})

	t.Run("structured payload is serialized with API field names", func(t *testing.T) {
		var decoded map[string]any
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			require.NoError(t, json.NewDecoder(r.Body).Decode(&decoded))
			w.Write([]byte(`{}`))
		}))
		defer srv.Close()

		req := GetPortfolioRequest{AccountID: "acc-1", Currency: "RUB"}
		err := NewClient(srv.URL).Call(ctx, "t", MethodGetPortfolio, req, nil)
		require.NoError(t, err)
		assert.Equal(t, "acc-1", decoded["accountId"])
		assert.Equal(t, "RUB", decoded["currency"])
	})

	t.Run("non-2xx response is a remote api error with the status", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, `{"message":"invalid token"}`, http.StatusUnauthorized)
		}))
		defer srv.Close()

		err := NewClient(srv.URL).Call(ctx, "bad", MethodGetAccounts, nil, nil)
		var remoteErr *RemoteAPIError
		require.ErrorAs(t, err, &remoteErr)
		assert.Contains(t, err.Error(), "401")
		assert.Contains(t, err.Error(), "invalid token")
	})

	t.Run("undecodable body is a remote api error", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`not json`))
		}))
		defer srv.Close()

		var resp GetAccountsResponse
		err := NewClient(srv.URL).Call(ctx, "t", MethodGetAccounts, nil, &resp)
		var remoteErr *RemoteAPIError
		require.ErrorAs(t, err, &remoteErr)
		assert.Contains(t, err.Error(), "decode response")
	})

	t.Run("transport failure is a remote api error", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
		srv.Close() // refuse connections

		err := NewClient(srv.URL).Call(ctx, "t", MethodGetAccounts, nil, nil)
		var remoteErr *RemoteAPIError
		require.ErrorAs(t, err, &remoteErr)
	})

	t.Run("respects context cancellation", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			<-r.Context().Done()
		}))
		defer srv.Close()

		cancelled, cancel := context.WithCancel(ctx)
		cancel()
		err := NewClient(srv.URL).Call(cancelled, "t", MethodGetAccounts, nil, nil)
		require.Error(t, err)
	})

	t.Run("money values decode from string units", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{
				"totalAmountPortfolio": {"units": "1500", "nano": 250000000, "currency": "RUB"},
				"positions": [{"figi": "BBG004730N88", "quantity": {"units": "10", "nano": 0}}]
			}`))
		}))
		defer srv.Close()

		var resp GetPortfolioResponse
		err := NewClient(srv.URL).Call(ctx, "t", MethodGetPortfolio, GetPortfolioRequest{AccountID: "a"}, &resp)
		require.NoError(t, err)
		require.NotNil(t, resp.TotalAmountPortfolio)
		assert.EqualValues(t, 1500, resp.TotalAmountPortfolio.Units)
		require.Len(t, resp.Positions, 1)
		require.NotNil(t, resp.Positions[0].Quantity)
		assert.EqualValues(t, 10, resp.Positions[0].Quantity.Units)
	})
}
