package fund

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fundflow-lending-core/internal/domain/shared"
)

func TestNewContribution(t *testing.T) {
	t.Run("SuccessfulCreation", func(t *testing.T) {
		providerID := uuid.New()
		amount := decimal.NewFromInt(20000)

		beforeCreation := time.Now()
		c, err := NewContribution(providerID, amount)
		afterCreation := time.Now()

		require.NoError(t, err)
		require.NotNil(t, c)

		assert.NotEqual(t, uuid.Nil, c.ID)
		assert.Equal(t, providerID, c.ProviderID)
		assert.True(t, amount.Equal(c.Amount))
		assert.Equal(t, shared.StatusPending, c.Status)
		assert.WithinDuration(t, beforeCreation, c.CreatedAt, afterCreation.Sub(beforeCreation)+time.Millisecond)
	})

	t.Run("MinimumAmountIsAccepted", func(t *testing.T) {
		_, err := NewContribution(uuid.New(), MinContribution)
		assert.NoError(t, err)
	})

	t.Run("RejectsAmountBelowMinimum", func(t *testing.T) {
		_, err := NewContribution(uuid.New(), decimal.NewFromInt(999))

		var belowMin ErrAmountBelowMinimum
		require.ErrorAs(t, err, &belowMin)
		assert.True(t, decimal.NewFromInt(999).Equal(belowMin.Amount))
	})
}

func TestContribution_Decisions(t *testing.T) {
	newPending := func(t *testing.T) *Contribution {
		t.Helper()
		c, err := NewContribution(uuid.New(), decimal.NewFromInt(8000))
		require.NoError(t, err)
		return c
	}

	t.Run("ApprovalIsUnconditional", func(t *testing.T) {
		c := newPending(t)
		require.NoError(t, c.Approve())
		assert.Equal(t, shared.StatusApproved, c.Status)
	})

	t.Run("RejectPending", func(t *testing.T) {
		c := newPending(t)
		require.NoError(t, c.Reject())
		assert.Equal(t, shared.StatusRejected, c.Status)
	})

	t.Run("DecisionsAreNotReversible", func(t *testing.T) {
		c := newPending(t)
		require.NoError(t, c.Reject())

		err := c.Approve()
		var alreadyDecided ErrAlreadyDecided
		require.ErrorAs(t, err, &alreadyDecided)
		assert.Equal(t, shared.StatusRejected, c.Status)
	})
}
