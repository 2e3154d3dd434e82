package payments

import (
	"crypto/hmac"
	"crypto/sha512"
	"encoding/hex"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(baseURL string) *PaystackClient {
	return &PaystackClient{
		SecretKey: "sk_test_secret",
		BaseURL:   baseURL,
		Client:    &http.Client{Timeout: 5 * time.Second},
	}
}

func signBody(secret string, body []byte) string {
	mac := hmac.New(sha512.New, []byte(secret))
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}

func TestVerifySignature(t *testing.T) {
	client := newTestClient("")
	body := []byte(`{"event":"charge.success","data":{"reference":"ref_123"}}`)

	t.Run("valid signature", func(t *testing.T) {
		sig := signBody(client.SecretKey, body)
		assert.True(t, client.VerifySignature(sig, body))
	})

	t.Run("tampered body", func(t *testing.T) {
		sig := signBody(client.SecretKey, body)
		tampered := []byte(`{"event":"charge.success","data":{"reference":"ref_999"}}`)
		assert.False(t, client.VerifySignature(sig, tampered))
	})

	t.Run("wrong secret", func(t *testing.T) {
		sig := signBody("some_other_secret", body)
		assert.False(t, client.VerifySignature(sig, body))
	})

	t.Run("empty signature", func(t *testing.T) {
		assert.False(t, client.VerifySignature("", body))
	})

	t.Run("malformed hex", func(t *testing.T) {
		assert.False(t, client.VerifySignature("not-hex-at-all", body))
	})
}

func TestInitializeTransaction(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/transaction/initialize", r.URL.Path)
			assert.Equal(t, "Bearer sk_test_secret", r.Header.Get("Authorization"))

			var req InitializeRequest
			require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
			assert.Equal(t, "student@example.com", req.Email)
			assert.Equal(t, int64(500000), req.Amount)

			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(`{
				"status": true,
				"message": "Authorization URL created",
				"data": {
					"authorization_url": "https://checkout.paystack.com/abc123",
					"access_code": "abc123",
					"reference": "ref_abc123"
				}
			}`))
		}))
		defer server.Close()

		client := newTestClient(server.URL)
		resp, err := client.InitializeTransaction(InitializeRequest{
			Email:  "student@example.com",
			Amount: 500000,
		})
		require.NoError(t, err)
		assert.Equal(t, "ref_abc123", resp.Data.Reference)
		assert.Equal(t, "https://checkout.paystack.com/abc123", resp.Data.AuthorizationURL)
	})

	t.Run("non-200 response", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusUnauthorized)
			w.Write([]byte(`{"status": false, "message": "Invalid key"}`))
		}))
		defer server.Close()

		client := newTestClient(server.URL)
		_, err := client.InitializeTransaction(InitializeRequest{Email: "a@b.com", Amount: 1000})
		assert.Error(t, err)
	})

	t.Run("business-level rejection", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"status": false, "message": "Invalid amount"}`))
		}))
		defer server.Close()

		client := newTestClient(server.URL)
		_, err := client.InitializeTransaction(InitializeRequest{Email: "a@b.com", Amount: 0})
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "Invalid amount")
	})
}

func TestVerifyTransaction(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/transaction/verify/ref_abc123", r.URL.Path)
			w.Write([]byte(`{
				"status": true,
				"message": "Verification successful",
				"data": {
					"id": 4099260516,
					"status": "success",
					"reference": "ref_abc123",
					"amount": 500000,
					"currency": "NGN",
					"channel": "card",
					"customer": {"email": "student@example.com"}
				}
			}`))
		}))
		defer server.Close()

		client := newTestClient(server.URL)
		resp, err := client.VerifyTransaction("ref_abc123")
		require.NoError(t, err)
		assert.True(t, resp.Status)
		assert.Equal(t, "success", resp.Data.Status)
		assert.Equal(t, int64(500000), resp.Data.Amount)
		assert.Equal(t, int64(4099260516), resp.Data.ID)
	})

	t.Run("abandoned transaction", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{
				"status": true,
				"message": "Verification successful",
				"data": {"status": "abandoned", "reference": "ref_gone", "amount": 500000}
			}`))
		}))
		defer server.Close()

		client := newTestClient(server.URL)
		resp, err := client.VerifyTransaction("ref_gone")
		require.NoError(t, err)
		assert.Equal(t, "abandoned", resp.Data.Status)
	})

	t.Run("server error", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		}))
		defer server.Close()

		client := newTestClient(server.URL)
		_, err := client.VerifyTransaction("ref_abc123")
		assert.Error(t, err)
	})
}
