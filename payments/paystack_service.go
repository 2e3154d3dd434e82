package payments

import (
	"bytes"
	"crypto/hmac"
	"crypto/sha512"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"

	config "github.com/obinna925/course_management/configs"
)

const paystackDefaultBaseURL = "https://api.paystack.co"

type PaystackClient struct {
	SecretKey string
	BaseURL   string
	Client    *http.Client
}

func NewPaystackClient() *PaystackClient {
	baseURL := config.Config("PAYSTACK_BASE_URL")
	if baseURL == "" {
		baseURL = paystackDefaultBaseURL
	}
	return &PaystackClient{
		SecretKey: config.Config("PAYSTACK_SECRET_KEY"),
		BaseURL:   baseURL,
		Client:    &http.Client{Timeout: 10 * time.Second},
	}
}

type InitializeRequest struct {
	Email       string                 `json:"email"`
	Amount      int64                  `json:"amount"`
	CallbackURL string                 `json:"callback_url,omitempty"`
	Subaccount  string                 `json:"subaccount,omitempty"`
	Bearer      string                 `json:"bearer,omitempty"`
	Metadata    map[string]interface{} `json:"metadata,omitempty"`
}

type InitializeResponse struct {
	Status  bool   `json:"status"`
	Message string `json:"message"`
	Data    struct {
		AuthorizationURL string `json:"authorization_url"`
		AccessCode       string `json:"access_code"`
		Reference        string `json:"reference"`
	} `json:"data"`
}

type VerifyResponse struct {
	Status  bool   `json:"status"`
	Message string `json:"message"`
	Data    struct {
		ID        int64                  `json:"id"`
		Status    string                 `json:"status"`
		Reference string                 `json:"reference"`
		Amount    int64                  `json:"amount"`
		Currency  string                 `json:"currency"`
		PaidAt    string                 `json:"paid_at"`
		Channel   string                 `json:"channel"`
		Metadata  map[string]interface{} `json:"metadata"`
		Customer  struct {
			Email string `json:"email"`
		} `json:"customer"`
	} `json:"data"`
}

func (p *PaystackClient) InitializeTransaction(req InitializeRequest) (*InitializeResponse, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal initialize payload: %v", err)
	}

	httpReq, err := http.NewRequest("POST", p.BaseURL+"/transaction/initialize", bytes.NewBuffer(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create initialize request: %v", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+p.SecretKey)

	resp, err := p.Client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("failed to reach Paystack: %v", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read initialize response body: %v", err)
	}

	if resp.StatusCode != http.StatusOK {
		log.Printf("Paystack API error: %s", string(respBody))
		return nil, fmt.Errorf("paystack initialize returned non-200 status: %d", resp.StatusCode)
	}

	var initResponse InitializeResponse
	if err := json.Unmarshal(respBody, &initResponse); err != nil {
		return nil, fmt.Errorf("failed to unmarshal initialize response: %v", err)
	}

	if !initResponse.Status {
		log.Printf("Paystack initialize rejected: %s", initResponse.Message)
		return nil, fmt.Errorf("paystack initialize failed: %s", initResponse.Message)
	}

	return &initResponse, nil
}

func (p *PaystackClient) VerifyTransaction(reference string) (*VerifyResponse, error) {
	httpReq, err := http.NewRequest("GET", p.BaseURL+"/transaction/verify/"+reference, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create verify request: %v", err)
	}
	httpReq.Header.Set("Authorization", "Bearer "+p.SecretKey)

	resp, err := p.Client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("failed to reach Paystack: %v", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read verify response body: %v", err)
	}

	if resp.StatusCode != http.StatusOK {
		log.Printf("Paystack verify error for %s: %s", reference, string(respBody))
		return nil, fmt.Errorf("paystack verify returned non-200 status: %d", resp.StatusCode)
	}

	var verifyResponse VerifyResponse
	if err := json.Unmarshal(respBody, &verifyResponse); err != nil {
		return nil, fmt.Errorf("failed to unmarshal verify response: %v", err)
	}

	return &verifyResponse, nil
}

// VerifySignature checks the x-paystack-signature header against an HMAC-SHA512
// of the exact raw request bytes. Malformed signatures return false rather than
// an error so a bad header can never skip the check.
func (p *PaystackClient) VerifySignature(signature string, body []byte) bool {
	if signature == "" {
		return false
	}

	provided, err := hex.DecodeString(signature)
	if err != nil {
		return false
	}

	mac := hmac.New(sha512.New, []byte(p.SecretKey))
	mac.Write(body)

	return hmac.Equal(mac.Sum(nil), provided)
}
