package lnbits

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/teamzaps/zaps/internal/identity"
	"github.com/teamzaps/zaps/internal/ledger"
)

// DefaultTimeout bounds every LNbits round trip when none is configured.
const DefaultTimeout = 30 * time.Second

// Client talks to the LNbits REST API. It serves both as the ledger and as
// the user directory (via the usermanager extension).
type Client struct {
	baseURL     string
	adminKey    string
	adminUserID string
	httpClient  *http.Client
}

var (
	_ ledger.Ledger      = (*Client)(nil)
	_ identity.Directory = (*Client)(nil)
)

// NewClient builds a client for the instance at baseURL. adminKey is the
// usermanager admin key; adminUserID owns the users it creates.
func NewClient(baseURL, adminKey, adminUserID string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{
		baseURL:     strings.TrimRight(baseURL, "/"),
		adminKey:    adminKey,
		adminUserID: adminUserID,
		httpClient:  &http.Client{Timeout: timeout},
	}
}

func (c *Client) ListUsers(ctx context.Context, query identity.UserQuery) ([]identity.User, error) {
	var users []userResponse
	if err := c.do(ctx, http.MethodGet, "/usermanager/api/v1/users", c.adminKey, nil, &users); err != nil {
		return nil, err
	}

	out := make([]identity.User, 0, len(users))
	for _, u := range users {
		user := identity.User{ID: u.ID, DisplayName: u.Name}
		if u.Extra != nil {
			user.ExternalID = u.Extra.AADObjectID
		}
		if query.Matches(user) {
			out = append(out, user)
		}
	}
	return out, nil
}

// CreateUser registers a usermanager user. LNbits insists on an initial
// wallet, so the user starts with a Private wallet.
func (c *Client) CreateUser(ctx context.Context, input identity.NewUser) (identity.User, error) {
	name := input.DisplayName
	if name == "" {
		name = input.ExternalID
	}
	req := createUserRequest{
		UserName:   name,
		WalletName: string(ledger.KindPrivate),
		AdminID:    c.adminUserID,
		Extra:      userExtra{AADObjectID: input.ExternalID},
	}
	var u userResponse
	if err := c.do(ctx, http.MethodPost, "/usermanager/api/v1/users", c.adminKey, req, &u); err != nil {
		return identity.User{}, err
	}
	return identity.User{ID: u.ID, ExternalID: input.ExternalID, DisplayName: u.Name}, nil
}

func (c *Client) ListWallets(ctx context.Context, filter ledger.WalletFilter) ([]ledger.Wallet, error) {
	var wallets []walletResponse
	if err := c.do(ctx, http.MethodGet, "/usermanager/api/v1/wallets", c.adminKey, nil, &wallets); err != nil {
		return nil, err
	}

	out := make([]ledger.Wallet, 0, len(wallets))
	for _, w := range wallets {
		wallet := w.toWallet()
		if filter.Matches(wallet) {
			out = append(out, wallet)
		}
	}
	return out, nil
}

func (c *Client) CreateWallet(ctx context.Context, input ledger.NewWallet) (ledger.Wallet, error) {
	req := createWalletRequest{
		UserID:     input.OwnerID,
		WalletName: string(input.Kind),
		AdminID:    c.adminUserID,
	}
	var w walletResponse
	if err := c.do(ctx, http.MethodPost, "/usermanager/api/v1/wallets", c.adminKey, req, &w); err != nil {
		return ledger.Wallet{}, err
	}
	return w.toWallet(), nil
}

func (c *Client) CreateInvoice(ctx context.Context, inKey string, req ledger.InvoiceRequest) (ledger.Invoice, error) {
	body := createInvoiceRequest{
		Out:    false,
		Amount: req.AmountSat,
		Memo:   req.Memo,
		Extra:  toExtra(req.Metadata),
	}
	var resp invoiceResponse
	if err := c.do(ctx, http.MethodPost, "/api/v1/payments", inKey, body, &resp); err != nil {
		return ledger.Invoice{}, err
	}
	if resp.PaymentRequest == "" {
		return ledger.Invoice{}, errors.New("LNbits returned an invoice without payment request")
	}
	return ledger.Invoice{
		PaymentHash:    resp.PaymentHash,
		PaymentRequest: resp.PaymentRequest,
		CheckingID:     resp.CheckingID,
	}, nil
}

func (c *Client) PayInvoice(ctx context.Context, adminKey, bolt11 string) (ledger.Payment, error) {
	var resp paymentResponse
	if err := c.do(ctx, http.MethodPost, "/api/v1/payments", adminKey, payInvoiceRequest{Out: true, Bolt11: bolt11}, &resp); err != nil {
		return ledger.Payment{}, err
	}
	return ledger.Payment{PaymentHash: resp.PaymentHash, CheckingID: resp.CheckingID}, nil
}

// ListPayments returns the wallet's entries newer than or equal to since,
// newest first. LNbits has no server-side time filter on this endpoint.
func (c *Client) ListPayments(ctx context.Context, inKey string, since int64, filter ledger.PaymentFilter) ([]ledger.Entry, error) {
	var payments []paymentEntry
	if err := c.do(ctx, http.MethodGet, "/api/v1/payments", inKey, nil, &payments); err != nil {
		return nil, err
	}

	out := make([]ledger.Entry, 0, len(payments))
	for _, p := range payments {
		e := p.toEntry()
		if e.Time < since || !filter.Matches(e) {
			continue
		}
		out = append(out, e)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Time > out[j].Time })
	return out, nil
}

func (c *Client) WalletBalance(ctx context.Context, inKey string) (int64, error) {
	var w walletDetails
	if err := c.do(ctx, http.MethodGet, "/api/v1/wallet", inKey, nil, &w); err != nil {
		return 0, err
	}
	return w.Balance, nil
}

func (c *Client) do(ctx context.Context, method, path, key string, body, out any) error {
	respBytes, statusCode, err := c.makeAPIRequest(ctx, method, path, key, body)
	if err != nil {
		return err
	}

	if statusCode >= 200 && statusCode < 300 {
		if out == nil {
			return nil
		}
		if err := json.Unmarshal(respBytes, out); err != nil {
			return fmt.Errorf("failed to parse %s %s response: %w", method, path, err)
		}
		return nil
	}

	apiErr := APIError{StatusCode: statusCode}
	if err := json.Unmarshal(respBytes, &apiErr); err == nil && apiErr.Detail != "" {
		return apiErr
	}

	// fallback for unexpected error format
	apiErr.Detail = fmt.Sprintf("unexpected API response: %s", string(respBytes))
	return apiErr
}

func (c *Client) makeAPIRequest(ctx context.Context, method, path, key string, body any) ([]byte, int, error) {
	var reqBodyBytes []byte
	if body != nil {
		var err error
		reqBodyBytes, err = json.Marshal(body)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to marshal request body: %w", err)
		}
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bytes.NewReader(reqBodyBytes))
	if err != nil {
		return nil, 0, fmt.Errorf("failed to create HTTP request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Api-Key", key)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to execute HTTP request: %w", err)
	}
	defer resp.Body.Close()

	respBodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to read response body: %w", err)
	}
	return respBodyBytes, resp.StatusCode, nil
}
