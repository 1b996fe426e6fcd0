package bot

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ActionSubmitZaps is the card action that carries a zap submission.
const ActionSubmitZaps = "submitZaps"

// Account is a participant of a chat conversation.
type Account struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	AADObjectID string `json:"aadObjectId"`
}

// Identity is the stable directory identity, falling back to the channel id.
func (a Account) Identity() string {
	if a.AADObjectID != "" {
		return a.AADObjectID
	}
	return a.ID
}

// Activity is the subset of an inbound chat activity the bot reads.
type Activity struct {
	Type      string       `json:"type"`
	Text      string       `json:"text"`
	From      Account      `json:"from"`
	Recipient Account      `json:"recipient"`
	Value     *SubmitValue `json:"value,omitempty"`
}

// SubmitValue is the payload of a submitted zap card.
type SubmitValue struct {
	Action              string `json:"action"`
	ZapAmount           Amount `json:"zapAmount"`
	ZapMessage          string `json:"zapMessage"`
	ZapReceiverWalletID string `json:"zapReceiverWalletId"`
}

// Amount is the zapAmount field as submitted. Cards send it either as a JSON
// number or as a numeric string, so the raw text is kept and checked by Sats.
type Amount string

func (a *Amount) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*a = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*a = Amount(strings.TrimSpace(s))
		return nil
	}
	*a = Amount(data)
	return nil
}

// Sats parses the amount as a whole number of sats.
func (a Amount) Sats() (int64, error) {
	if a == "" {
		return 0, errors.New("zap amount is missing")
	}
	n, err := strconv.ParseInt(string(a), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("zap amount %q is not a whole number", string(a))
	}
	return n, nil
}
