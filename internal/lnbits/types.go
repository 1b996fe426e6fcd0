package lnbits

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/teamzaps/zaps/internal/ledger"
)

// APIError is a non-2xx response from LNbits.
type APIError struct {
	StatusCode int    `json:"-"`
	Detail     string `json:"detail"`
}

func (e APIError) Error() string {
	return fmt.Sprintf("LNbits API error (status %d): %s", e.StatusCode, e.Detail)
}

// Unwrap maps well-known failures onto ledger sentinels so callers can use
// errors.Is without knowing the wire format.
func (e APIError) Unwrap() error {
	detail := strings.ToLower(e.Detail)
	switch {
	case strings.Contains(detail, "insufficient"):
		return ledger.ErrInsufficientFunds
	case strings.Contains(detail, "already paid"):
		return ledger.ErrInvoiceAlreadyPaid
	case e.StatusCode == http.StatusUnauthorized || e.StatusCode == http.StatusForbidden:
		return ledger.ErrInvalidKey
	case e.StatusCode == http.StatusNotFound && strings.Contains(detail, "wallet"):
		return ledger.ErrWalletNotFound
	}
	return nil
}

type userExtra struct {
	AADObjectID string `json:"aadObjectId,omitempty"`
}

type userResponse struct {
	ID    string     `json:"id"`
	Name  string     `json:"name"`
	Admin string     `json:"admin"`
	Extra *userExtra `json:"extra"`
}

type createUserRequest struct {
	UserName   string    `json:"user_name"`
	WalletName string    `json:"wallet_name"`
	AdminID    string    `json:"admin_id"`
	Extra      userExtra `json:"extra"`
}

type walletResponse struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	User     string `json:"user"`
	Admin    string `json:"admin"`
	AdminKey string `json:"adminkey"`
	InKey    string `json:"inkey"`
}

func (w walletResponse) toWallet() ledger.Wallet {
	return ledger.Wallet{
		ID:       w.ID,
		OwnerID:  w.User,
		Kind:     ledger.Kind(w.Name),
		InKey:    w.InKey,
		AdminKey: w.AdminKey,
	}
}

type createWalletRequest struct {
	UserID     string `json:"user_id"`
	WalletName string `json:"wallet_name"`
	AdminID    string `json:"admin_id"`
}

type walletDetails struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Balance int64  `json:"balance"`
}

type createInvoiceRequest struct {
	Out    bool      `json:"out"`
	Amount int64     `json:"amount"`
	Memo   string    `json:"memo"`
	Extra  extraJSON `json:"extra"`
}

type invoiceResponse struct {
	PaymentHash    string `json:"payment_hash"`
	PaymentRequest string `json:"payment_request"`
	CheckingID     string `json:"checking_id"`
}

type payInvoiceRequest struct {
	Out    bool   `json:"out"`
	Bolt11 string `json:"bolt11"`
}

type paymentResponse struct {
	PaymentHash string `json:"payment_hash"`
	CheckingID  string `json:"checking_id"`
}

type paymentEntry struct {
	CheckingID  string     `json:"checking_id"`
	PaymentHash string     `json:"payment_hash"`
	Bolt11      string     `json:"bolt11"`
	WalletID    string     `json:"wallet_id"`
	Amount      int64      `json:"amount"`
	Fee         int64      `json:"fee"`
	Memo        string     `json:"memo"`
	Time        unixTime   `json:"time"`
	Pending     bool       `json:"pending"`
	Status      string     `json:"status"`
	Extra       *extraJSON `json:"extra"`
}

func (p paymentEntry) toEntry() ledger.Entry {
	e := ledger.Entry{
		CheckingID:  p.CheckingID,
		PaymentHash: p.PaymentHash,
		Bolt11:      p.Bolt11,
		WalletID:    p.WalletID,
		AmountMsat:  p.Amount,
		FeeMsat:     p.Fee,
		Memo:        p.Memo,
		Time:        int64(p.Time),
		Pending:     p.Pending || p.Status == "pending",
	}
	if p.Extra != nil && !p.Extra.empty() {
		e.Metadata = &ledger.Metadata{
			Tag:  p.Extra.Tag,
			From: ledger.Party(p.Extra.From),
			To:   ledger.Party(p.Extra.To),
		}
	}
	return e
}

// extraJSON is the correlation blob LNbits stores verbatim on a payment.
type extraJSON struct {
	Tag  string    `json:"tag,omitempty"`
	From partyJSON `json:"from"`
	To   partyJSON `json:"to"`
}

func (x extraJSON) empty() bool {
	return x.Tag == "" && x.From == (partyJSON{}) && x.To == (partyJSON{})
}

func toExtra(m ledger.Metadata) extraJSON {
	return extraJSON{Tag: m.Tag, From: partyJSON(m.From), To: partyJSON(m.To)}
}

type partyJSON struct {
	UserID   string `json:"user"`
	WalletID string `json:"wallet"`
}

// UnmarshalJSON accepts {"user","wallet"} objects and bare user id strings.
func (p *partyJSON) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*p = partyJSON{}
		return nil
	}
	if data[0] == '"' {
		var id string
		if err := json.Unmarshal(data, &id); err != nil {
			return err
		}
		*p = partyJSON{UserID: id}
		return nil
	}
	type plain partyJSON
	var v plain
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*p = partyJSON(v)
	return nil
}

// unixTime decodes either epoch seconds or an RFC3339 timestamp.
type unixTime int64

func (u *unixTime) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*u = 0
		return nil
	}
	if data[0] != '"' {
		f, err := strconv.ParseFloat(string(data), 64)
		if err != nil {
			return fmt.Errorf("parse time %s: %w", data, err)
		}
		*u = unixTime(f)
		return nil
	}

	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		*u = unixTime(n)
		return nil
	}
	for _, layout := range []string{time.RFC3339Nano, "2006-01-02T15:04:05.999999", "2006-01-02 15:04:05"} {
		if t, err := time.Parse(layout, s); err == nil {
			*u = unixTime(t.Unix())
			return nil
		}
	}
	return errors.New("unrecognised time format " + s)
}
