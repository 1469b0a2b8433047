package order_test

import (
	"testing"

	"ordermgmt/internal/core/domain/model/order"
	"ordermgmt/internal/pkg/errs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseStatus(t *testing.T) {
	testCases := []struct {
		input    string
		expected order.Status
		wantErr  bool
	}{
		{input: "pending", expected: order.Pending},
		{input: "Processing", expected: order.Processing},
		{input: " shipped ", expected: order.Shipped},
		{input: "delivered", expected: order.Delivered},
		{input: "cancelled", expected: order.Cancelled},
		{input: "returned", expected: order.Returned},
		{input: "new", wantErr: true},
		{input: "canceled", wantErr: true},
		{input: "", wantErr: true},
	}

	for _, tc := range testCases {
		t.Run(tc.input, func(t *testing.T) {
			status, err := order.ParseStatus(tc.input)
			if tc.wantErr {
				require.ErrorIs(t, err, errs.ErrValueIsInvalid)
				assert.Equal(t, order.Unknown, status)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.expected, status)
		})
	}
}

func TestParseStatus_LegacyNewExplainsReplacement(t *testing.T) {
	_, err := order.ParseStatus("new")
	assert.Contains(t, err.Error(), `use "pending"`)
}

func TestStatus_StringAndDescription(t *testing.T) {
	for _, s := range order.AllStatuses() {
		require.NoError(t, s.Validate())
		assert.NotEqual(t, "unknown", s.String())
		assert.NotEmpty(t, s.Description())
	}

	assert.Equal(t, "unknown", order.Unknown.String())
	assert.Empty(t, order.Unknown.Description())
	require.ErrorIs(t, order.Unknown.Validate(), errs.ErrValueIsInvalid)
}

func TestPaymentStatus(t *testing.T) {
	p, err := order.ParsePaymentStatus("PAID")
	require.NoError(t, err)
	assert.Equal(t, order.PaymentPaid, p)
	assert.Equal(t, "paid", p.String())

	_, err = order.ParsePaymentStatus("chargeback")
	require.ErrorIs(t, err, errs.ErrValueIsInvalid)
	require.Error(t, order.PaymentUnknown.Validate())
}
