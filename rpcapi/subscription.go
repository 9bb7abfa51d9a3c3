package rpcapi

import (
	"bytes"

	jsoniter "github.com/json-iterator/go"
	"github.com/pkg/errors"
)

// EventCategory names a stream of chain events clients may subscribe to.
type EventCategory string

// Supported event categories.
const (
	NewHeads               EventCategory = "newHeads"
	Logs                   EventCategory = "logs"
	NewPendingTransactions EventCategory = "newPendingTransactions"
	Syncing                EventCategory = "syncing"
)

// ErrInvalidCategory is returned for a missing or unknown event category.
var ErrInvalidCategory = errors.New("invalid subscription category")

// Valid reports whether c is a supported category.
func (c EventCategory) Valid() bool {
	switch c {
	case NewHeads, Logs, NewPendingTransactions, Syncing:
		return true
	}
	return false
}

// SubscriptionParams are the parameters of a subscribe call: the event
// category and an optional category specific filter, e.g. a log filter.
type SubscriptionParams struct {
	category EventCategory
	filter   jsoniter.RawMessage
}

// NewSubscriptionParams validates the category and builds the parameters.
func NewSubscriptionParams(category EventCategory, filter jsoniter.RawMessage) (SubscriptionParams, error) {
	if category == "" {
		return SubscriptionParams{}, errors.Wrap(ErrInvalidCategory, "missing category")
	}
	if !category.Valid() {
		return SubscriptionParams{}, errors.Wrapf(ErrInvalidCategory, "%q", category)
	}
	if len(filter) > 0 && category != Logs {
		return SubscriptionParams{}, errors.Wrapf(ErrInvalidCategory, "%q takes no filter", category)
	}
	return SubscriptionParams{category: category, filter: append(jsoniter.RawMessage(nil), filter...)}, nil
}

// Category returns the subscribed event category.
func (p SubscriptionParams) Category() EventCategory { return p.category }

// Filter returns the raw filter, nil when absent.
func (p SubscriptionParams) Filter() jsoniter.RawMessage { return p.filter }

// MarshalJSON encodes the params as the positional array of a subscribe call.
func (p SubscriptionParams) MarshalJSON() ([]byte, error) {
	if len(p.filter) == 0 {
		return jsoniter.Marshal([]interface{}{p.category})
	}
	return jsoniter.Marshal([]interface{}{p.category, p.filter})
}

// ParseSubscriptionParams decodes ["category"] or ["category", filter].
// Every rejection wraps ErrInvalidCategory.
func ParseSubscriptionParams(data []byte) (SubscriptionParams, error) {
	var raw []jsoniter.RawMessage
	if err := jsoniter.Unmarshal(data, &raw); err != nil {
		return SubscriptionParams{}, errors.Wrap(ErrInvalidCategory, err.Error())
	}
	if len(raw) == 0 || len(raw) > 2 {
		return SubscriptionParams{}, errors.Wrapf(ErrInvalidCategory, "expected 1 or 2 params, got %d", len(raw))
	}
	if isNull(raw[0]) {
		return SubscriptionParams{}, errors.Wrap(ErrInvalidCategory, "null category")
	}
	var category string
	if err := jsoniter.Unmarshal(raw[0], &category); err != nil {
		return SubscriptionParams{}, errors.Wrap(ErrInvalidCategory, err.Error())
	}
	var filter jsoniter.RawMessage
	if len(raw) == 2 && !isNull(raw[1]) {
		filter = raw[1]
	}
	return NewSubscriptionParams(EventCategory(category), filter)
}

// isNull reports whether a positional param is JSON null. The decoder may
// leave a null array element as an empty message.
func isNull(m jsoniter.RawMessage) bool {
	t := bytes.TrimSpace(m)
	return len(t) == 0 || string(t) == "null"
}

// UnmarshalJSON decodes the params through ParseSubscriptionParams. The
// json-iterator decoder flattens errors returned here into strings, so
// callers that match ErrInvalidCategory should call ParseSubscriptionParams.
func (p *SubscriptionParams) UnmarshalJSON(data []byte) error {
	parsed, err := ParseSubscriptionParams(data)
	if err != nil {
		return err
	}
	*p = parsed
	return nil
}
