package status

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseOrderStatusAliases(t *testing.T) {
	cases := map[string]OrderStatus{
		"pending":    OrderPending,
		" Accepted ": OrderConfirmed,
		"canceled":   OrderCancelled,
		"In-Transit": OrderShipped,
		"teleported": OrderUnknown,
		"":           OrderUnknown,
	}
	for raw, want := range cases {
		assert.Equal(t, want, ParseOrderStatus(raw), raw)
	}
}

func TestEveryKnownStatusHasItsOwnTone(t *testing.T) {
	for _, s := range OrderStatuses() {
		assert.NotEqual(t, ToneUnknown, s.Tone(), s.String())
	}
	for _, s := range PayoutStatuses() {
		assert.NotEqual(t, ToneUnknown, s.Tone(), s.String())
	}
	for _, s := range ReturnStatuses() {
		assert.NotEqual(t, ToneUnknown, s.Tone(), s.String())
	}
	for _, s := range ReviewStatuses() {
		assert.NotEqual(t, ToneUnknown, s.Tone(), s.String())
	}
	for _, s := range DriverStatuses() {
		assert.NotEqual(t, ToneUnknown, s.Tone(), s.String())
	}
	for _, s := range LoanStatuses() {
		assert.NotEqual(t, ToneUnknown, s.Tone(), s.String())
	}
	for _, s := range CouponTypes() {
		assert.NotEqual(t, ToneUnknown, s.Tone(), s.String())
	}
	assert.Equal(t, ToneUnknown, OrderUnknown.Tone())
	assert.Equal(t, ToneUnknown, PayoutUnknown.Tone())
}

func TestLabels(t *testing.T) {
	assert.Equal(t, "Under Review", ReturnUnderReview.Label())
	assert.Equal(t, "On Hold", PayoutOnHold.Label())
	assert.Equal(t, "Unknown", LoanUnknown.Label())
	assert.Equal(t, "Unassigned", FaultUnassigned.Label())
	assert.Equal(t, "badge badge-success", OrderDelivered.Badge().Class())
}

func TestJSONRoundTripKeepsUnknownWireValue(t *testing.T) {
	var payload struct {
		Status OrderStatus  `json:"status"`
		Payout PayoutStatus `json:"payout"`
		Fault  ReturnFault  `json:"fault"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"status":"shipped","payout":"mystery","fault":""}`), &payload))
	assert.Equal(t, OrderShipped, payload.Status)
	assert.False(t, payload.Status.IsUnknown())

	assert.True(t, payload.Payout.IsUnknown())
	assert.Equal(t, "mystery", payload.Payout.String())
	assert.Equal(t, "Unknown (mystery)", payload.Payout.Label())
	assert.Equal(t, Badge{Value: "mystery", Label: "Unknown (mystery)", Tone: ToneUnknown}, payload.Payout.Badge())

	assert.Equal(t, FaultUnassigned, payload.Fault)
	assert.False(t, payload.Fault.IsUnknown())

	out, err := json.Marshal(payload)
	require.NoError(t, err)
	assert.JSONEq(t, `{"status":"shipped","payout":"mystery","fault":""}`, string(out))
}

func TestDecodedUnknownValuesAreStable(t *testing.T) {
	var first, second OrderStatus
	require.NoError(t, first.UnmarshalText([]byte("teleported")))
	require.NoError(t, second.UnmarshalText([]byte(" teleported ")))
	assert.Equal(t, first, second)
	assert.True(t, first.IsUnknown())
	assert.Equal(t, ToneUnknown, first.Tone())
	assert.False(t, first.Final())

	var blank OrderStatus
	require.NoError(t, blank.UnmarshalText(nil))
	assert.Equal(t, OrderUnknown, blank)
	assert.Equal(t, "Unknown", blank.Label())

	assert.Equal(t, OrderUnknown, ParseOrderStatus("teleported"))
}

func TestRoleNeverKeepsUnrecognisedValues(t *testing.T) {
	var role Role
	require.NoError(t, role.UnmarshalText([]byte("superuser")))
	assert.Equal(t, RoleUnknown, role)
	assert.Equal(t, "", role.String())
}

func TestTransitionsHelpers(t *testing.T) {
	assert.True(t, OrderPending.AwaitingSeller())
	assert.False(t, OrderShipped.AwaitingSeller())
	assert.True(t, OrderRejected.Final())
	assert.True(t, PayoutFailed.Processable())
	assert.False(t, PayoutPaid.Processable())
	assert.True(t, ReturnUnderReview.Classifiable())
	assert.False(t, ReturnRefunded.Classifiable())
	assert.Equal(t, FaultCourier, ParseReturnFault("driver"))
	assert.Equal(t, RoleSeller, ParseRole("Supplier"))
}
