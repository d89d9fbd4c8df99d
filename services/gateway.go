package services

import (
	"bytes"
	"crypto/hmac"
	"crypto/sha512"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/Moosaa95/seqproject-backend/config"
)

// PaymentGateway is the opaque external collaborator that moves money. The
// state-transition contract lives in PaymentService; gateway verification is
// just a call that comes back with a status.
type PaymentGateway interface {
	InitializeTransaction(req GatewayInitRequest) (*GatewayInitResponse, error)
	VerifyTransaction(reference string) (*GatewayVerifyResponse, error)
	VerifyWebhookSignature(payload []byte, signature string) bool
	PublicKey() string
	CallbackURL() string
}

type GatewayInitRequest struct {
	Email       string                 `json:"email"`
	AmountMinor int64                  `json:"amount"` // smallest currency unit
	Currency    string                 `json:"currency"`
	CallbackURL string                 `json:"callback_url"`
	Metadata    map[string]interface{} `json:"metadata,omitempty"`
}

type GatewayInitResponse struct {
	AuthorizationURL string          `json:"authorization_url"`
	AccessCode       string          `json:"access_code"`
	Reference        string          `json:"reference"`
	Raw              json.RawMessage `json:"-"`
}

type GatewayVerifyResponse struct {
	Status string          `json:"status"` // success, failed, pending, abandoned
	PaidAt *time.Time      `json:"paid_at"`
	Raw    json.RawMessage `json:"-"`
}

// PaystackGateway talks to the Paystack REST API.
type PaystackGateway struct {
	secretKey   string
	publicKey   string
	baseURL     string
	callbackURL string
	client      *http.Client
}

func NewPaystackGateway(cfg *config.Config) *PaystackGateway {
	return &PaystackGateway{
		secretKey:   cfg.PaystackSecretKey,
		publicKey:   cfg.PaystackPublicKey,
		baseURL:     cfg.PaystackBaseURL,
		callbackURL: cfg.PaystackCallback,
		client:      &http.Client{Timeout: 30 * time.Second},
	}
}

type paystackEnvelope struct {
	Status  bool            `json:"status"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func (g *PaystackGateway) call(method, path string, body interface{}) (json.RawMessage, error) {
	var reqBody *bytes.Buffer
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return nil, err
		}
		reqBody = bytes.NewBuffer(encoded)
	} else {
		reqBody = bytes.NewBuffer(nil)
	}

	req, err := http.NewRequest(method, g.baseURL+path, reqBody)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+g.secretKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := g.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var envelope paystackEnvelope
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return nil, fmt.Errorf("decoding gateway response: %w", err)
	}
	if !envelope.Status {
		return nil, fmt.Errorf("gateway error: %s", envelope.Message)
	}
	return envelope.Data, nil
}

func (g *PaystackGateway) InitializeTransaction(req GatewayInitRequest) (*GatewayInitResponse, error) {
	if req.CallbackURL == "" {
		req.CallbackURL = g.callbackURL
	}

	data, err := g.call(http.MethodPost, "/transaction/initialize", req)
	if err != nil {
		return nil, err
	}

	var out GatewayInitResponse
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, err
	}
	out.Raw = data
	return &out, nil
}

func (g *PaystackGateway) VerifyTransaction(reference string) (*GatewayVerifyResponse, error) {
	data, err := g.call(http.MethodGet, "/transaction/verify/"+reference, nil)
	if err != nil {
		return nil, err
	}

	var payload struct {
		Status string `json:"status"`
		PaidAt string `json:"paid_at"`
	}
	if err := json.Unmarshal(data, &payload); err != nil {
		return nil, err
	}

	out := &GatewayVerifyResponse{Status: payload.Status, Raw: data}
	if payload.PaidAt != "" {
		if t, err := time.Parse(time.RFC3339, payload.PaidAt); err == nil {
			out.PaidAt = &t
		}
	}
	return out, nil
}

// VerifyWebhookSignature checks the X-Paystack-Signature header: an
// HMAC-SHA512 of the raw body keyed with the secret key.
func (g *PaystackGateway) VerifyWebhookSignature(payload []byte, signature string) bool {
	mac := hmac.New(sha512.New, []byte(g.secretKey))
	mac.Write(payload)
	expected := hex.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(expected), []byte(signature))
}

func (g *PaystackGateway) PublicKey() string {
	return g.publicKey
}

func (g *PaystackGateway) CallbackURL() string {
	return g.callbackURL
}
