package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestTransactionStatus_CanTransitionTo(t *testing.T) {
	tests := []struct {
		from    TransactionStatus
		to      TransactionStatus
		allowed bool
	}{
		{StatusWaitingPayment, StatusWaitingConfirmation, true},
		{StatusWaitingPayment, StatusExpired, true},
		{StatusWaitingPayment, StatusConfirmed, false},
		{StatusWaitingPayment, StatusCancelled, false},
		{StatusWaitingConfirmation, StatusConfirmed, true},
		{StatusWaitingConfirmation, StatusRejected, true},
		{StatusWaitingConfirmation, StatusCancelled, true},
		{StatusWaitingConfirmation, StatusExpired, false},
		{StatusConfirmed, StatusRejected, false},
		{StatusExpired, StatusWaitingPayment, false},
		{StatusRejected, StatusWaitingConfirmation, false},
		{StatusCancelled, StatusConfirmed, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.from)+"->"+string(tt.to), func(t *testing.T) {
			assert.Equal(t, tt.allowed, tt.from.CanTransitionTo(tt.to))
		})
	}
}

func TestTransactionStatus_IsTerminal(t *testing.T) {
	assert.False(t, StatusWaitingPayment.IsTerminal())
	assert.False(t, StatusWaitingConfirmation.IsTerminal())
	assert.True(t, StatusConfirmed.IsTerminal())
	assert.True(t, StatusRejected.IsTerminal())
	assert.True(t, StatusExpired.IsTerminal())
	assert.True(t, StatusCancelled.IsTerminal())
}

func TestTransactionStatus_Refunds(t *testing.T) {
	assert.True(t, StatusExpired.Refunds())
	assert.True(t, StatusRejected.Refunds())
	assert.True(t, StatusCancelled.Refunds())
	assert.False(t, StatusConfirmed.Refunds())
	assert.False(t, StatusWaitingPayment.Refunds())
}

func TestTransaction_PaymentOverdue(t *testing.T) {
	deadline := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	transaction := Transaction{Status: StatusWaitingPayment, PaymentDeadline: deadline}

	assert.False(t, transaction.PaymentOverdue(deadline.Add(-time.Second)))
	assert.True(t, transaction.PaymentOverdue(deadline.Add(time.Second)))
}
