package repository

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/daengle/petcare-backend/internal/models"
)

func TestAcceptCascade_LiveRootAndQuote(t *testing.T) {
	outcome, err := acceptCascade(models.EstimateStatusWaiting, models.EstimateStatusWaiting)

	require.NoError(t, err)
	assert.Equal(t, models.EstimateStatusAccepted, outcome.Root)
	assert.Equal(t, models.EstimateStatusAccepted, outcome.Accepted)
	assert.Equal(t, models.EstimateStatusRejected, outcome.Sibling)
}

func TestAcceptCascade_TerminalRootFails(t *testing.T) {
	for _, status := range []string{
		models.EstimateStatusAccepted,
		models.EstimateStatusRejected,
		models.EstimateStatusCancelled,
	} {
		_, err := acceptCascade(status, models.EstimateStatusWaiting)
		assert.ErrorIs(t, err, ErrEstimateStale, "root status %s", status)
	}
}

func TestAcceptCascade_TerminalQuoteFails(t *testing.T) {
	_, err := acceptCascade(models.EstimateStatusWaiting, models.EstimateStatusRejected)
	assert.ErrorIs(t, err, ErrEstimateStale)
}

// Два исполнителя подали предложения; владелец принимает первое. Второе
// предложение отклоняется каскадом, и повторное принятие уже невозможно —
// ни по отклонённому предложению, ни по терминальному корню.
func TestAcceptCascade_SecondAcceptLoses(t *testing.T) {
	rootStatus := models.EstimateStatusNew

	promoted, changed := rootStatusOnQuoteCreated(rootStatus)
	require.True(t, changed)
	rootStatus = promoted
	assert.Equal(t, models.EstimateStatusWaiting, rootStatus)

	quoteA := models.EstimateStatusWaiting
	quoteB := models.EstimateStatusWaiting

	outcome, err := acceptCascade(rootStatus, quoteA)
	require.NoError(t, err)

	rootStatus = outcome.Root
	quoteA = outcome.Accepted
	quoteB = outcome.Sibling

	assert.Equal(t, models.EstimateStatusAccepted, rootStatus)
	assert.Equal(t, models.EstimateStatusAccepted, quoteA)
	assert.Equal(t, models.EstimateStatusRejected, quoteB)

	_, err = acceptCascade(rootStatus, quoteB)
	assert.ErrorIs(t, err, ErrEstimateStale)
}

func TestRootStatusOnQuoteCreated(t *testing.T) {
	next, changed := rootStatusOnQuoteCreated(models.EstimateStatusNew)
	assert.True(t, changed)
	assert.Equal(t, models.EstimateStatusWaiting, next)

	_, changed = rootStatusOnQuoteCreated(models.EstimateStatusWaiting)
	assert.False(t, changed)

	_, changed = rootStatusOnQuoteCreated(models.EstimateStatusCancelled)
	assert.False(t, changed)
}

func TestRootStatusAfterQuoteCancelled_LastQuoteCancelsRoot(t *testing.T) {
	next, changed := rootStatusAfterQuoteCancelled(models.EstimateStatusWaiting, 0)

	assert.True(t, changed)
	assert.Equal(t, models.EstimateStatusCancelled, next)
}

func TestRootStatusAfterQuoteCancelled_AliveQuotesKeepRoot(t *testing.T) {
	next, changed := rootStatusAfterQuoteCancelled(models.EstimateStatusWaiting, 2)

	assert.False(t, changed)
	assert.Equal(t, models.EstimateStatusWaiting, next)
}

func TestRootStatusAfterQuoteCancelled_TerminalRootUntouched(t *testing.T) {
	next, changed := rootStatusAfterQuoteCancelled(models.EstimateStatusCancelled, 0)

	assert.False(t, changed)
	assert.Equal(t, models.EstimateStatusCancelled, next)
}
