package api

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stripe/stripe-go/v84"
)

func TestParseEventDataCheckoutSession(t *testing.T) {
	raw := `{
		"id": "cs_123",
		"customer": "cus_456",
		"subscription": "sub_789",
		"metadata": {"type": "credit_purchase", "user_id": "user_1", "credits": "40"}
	}`
	event := &stripe.Event{Data: &stripe.EventData{Raw: json.RawMessage(raw)}}

	session, err := parseEventData[checkoutSession](event)
	require.NoError(t, err)

	assert.Equal(t, "cs_123", session.ID)
	assert.Equal(t, "cus_456", session.Customer)
	assert.Equal(t, "sub_789", session.Subscription)
	assert.Equal(t, "credit_purchase", session.Metadata["type"])
	assert.Equal(t, "40", session.Metadata["credits"])
}

func TestParseEventDataInvalidJSON(t *testing.T) {
	event := &stripe.Event{Data: &stripe.EventData{Raw: json.RawMessage(`not json`)}}

	_, err := parseEventData[invoiceEvent](event)
	assert.Error(t, err)
}

func TestSubscriptionPeriod(t *testing.T) {
	start := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 1, 0)

	sub := &stripe.Subscription{
		Items: &stripe.SubscriptionItemList{
			Data: []*stripe.SubscriptionItem{
				{CurrentPeriodStart: start.Unix(), CurrentPeriodEnd: end.Unix()},
			},
		},
	}

	gotStart, gotEnd, err := subscriptionPeriod(sub)
	require.NoError(t, err)
	assert.True(t, gotStart.Equal(start))
	assert.True(t, gotEnd.Equal(end))
}

func TestSubscriptionPeriodNoItems(t *testing.T) {
	_, _, err := subscriptionPeriod(&stripe.Subscription{})
	assert.Error(t, err)
}
