package history

import (
	"sort"

	"github.com/teamzaps/zaps/internal/identity"
	"github.com/teamzaps/zaps/internal/ledger"
)

// UnknownName is shown for a counterpart the directory cannot resolve.
const UnknownName = "Unknown"

// Counterpart is one side of a transfer. It is either resolved to a
// directory user or explicitly unresolved; the zero value is unresolved.
type Counterpart struct {
	user     identity.User
	resolved bool
	// ref is the id carried in metadata, kept even when unresolved.
	ref ledger.Party
}

// Resolved builds a counterpart for a known user.
func Resolved(u identity.User, ref ledger.Party) Counterpart {
	return Counterpart{user: u, resolved: true, ref: ref}
}

// Unresolved builds a counterpart for an id the directory does not know.
func Unresolved(ref ledger.Party) Counterpart {
	return Counterpart{ref: ref}
}

// User returns the directory user and whether the counterpart was resolved.
func (c Counterpart) User() (identity.User, bool) {
	return c.user, c.resolved
}

// IsResolved reports whether the counterpart maps to a directory user.
func (c Counterpart) IsResolved() bool { return c.resolved }

// Ref returns the party ids recorded on the entry.
func (c Counterpart) Ref() ledger.Party { return c.ref }

// DisplayName never returns an empty string.
func (c Counterpart) DisplayName() string {
	if !c.resolved || c.user.DisplayName == "" {
		return UnknownName
	}
	return c.user.DisplayName
}

// Direction of an entry relative to its own wallet.
type Direction string

const (
	DirectionIn  Direction = "received"
	DirectionOut Direction = "sent"
)

// Transaction is a ledger entry with both parties resolved for display.
type Transaction struct {
	ledger.Entry
	From Counterpart
	To   Counterpart
}

// Direction is decided by the amount sign alone.
func (t Transaction) Direction() Direction {
	if t.Entry.Outgoing() {
		return DirectionOut
	}
	return DirectionIn
}

// Counterpart is the other side: the receiver for a debit, the sender for a credit.
func (t Transaction) Counterpart() Counterpart {
	if t.Entry.Outgoing() {
		return t.To
	}
	return t.From
}

// AmountSat is the signed amount in display units.
func (t Transaction) AmountSat() int64 {
	return ledger.MsatToSat(t.AmountMsat)
}

// Tag returns the metadata tag, or "" when there is none.
func (t Transaction) Tag() string {
	if t.Metadata == nil {
		return ""
	}
	return t.Metadata.Tag
}

// Label is the short description shown next to the amount.
func (t Transaction) Label() string {
	switch tag := t.Tag(); tag {
	case ledger.TagZap:
		return "Zap!"
	case ledger.TagTopUp:
		return "Top-up"
	case "":
		return "Regular transaction"
	default:
		return tag
	}
}

// Enrich joins entries against users by exact directory id. Unknown or
// missing ids become unresolved counterparts. Input order is preserved and
// neither argument is modified.
func Enrich(entries []ledger.Entry, users []identity.User) []Transaction {
	byID := make(map[string]identity.User, len(users))
	for _, u := range users {
		byID[u.ID] = u
	}
	resolve := func(p ledger.Party) Counterpart {
		if p.UserID == "" {
			return Unresolved(p)
		}
		if u, ok := byID[p.UserID]; ok {
			return Resolved(u, p)
		}
		return Unresolved(p)
	}

	out := make([]Transaction, 0, len(entries))
	for _, e := range entries {
		tx := Transaction{Entry: e}
		if e.Metadata != nil {
			md := *e.Metadata
			tx.Entry.Metadata = &md
			tx.From = resolve(md.From)
			tx.To = resolve(md.To)
		}
		out = append(out, tx)
	}
	return out
}

// SortByTimeDesc orders transactions most recent first, in place.
func SortByTimeDesc(txs []Transaction) {
	sort.SliceStable(txs, func(i, j int) bool { return txs[i].Time > txs[j].Time })
}

// View selects transactions by direction.
type View string

const (
	ViewAll      View = "all"
	ViewSent     View = "sent"
	ViewReceived View = "received"
)

// ParseView defaults to ViewAll for anything unrecognised.
func ParseView(s string) View {
	switch View(s) {
	case ViewSent, ViewReceived:
		return View(s)
	}
	return ViewAll
}

// FilterByView returns the transactions matching v in their original order.
func FilterByView(txs []Transaction, v View) []Transaction {
	out := make([]Transaction, 0, len(txs))
	for _, t := range txs {
		switch {
		case v == ViewSent && t.AmountMsat >= 0:
			continue
		case v == ViewReceived && t.AmountMsat <= 0:
			continue
		}
		out = append(out, t)
	}
	return out
}
