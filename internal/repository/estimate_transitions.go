package repository

import "github.com/daengle/petcare-backend/internal/models"

// Чистые решения каскадных переходов заявок. SQL в estimate_repository.go
// только применяет их к строкам, сами правила живут здесь.

// acceptCascadeOutcome — целевые статусы каскада принятия предложения.
type acceptCascadeOutcome struct {
	Root     string
	Accepted string
	Sibling  string
}

// acceptCascade решает каскад принятия: корень и выбранное предложение
// переходят в accepted, живые соседние предложения — в rejected. Если корень
// или предложение уже терминальны, принятие невозможно.
func acceptCascade(rootStatus, quoteStatus string) (acceptCascadeOutcome, error) {
	if models.IsTerminalEstimateStatus(rootStatus) || models.IsTerminalEstimateStatus(quoteStatus) {
		return acceptCascadeOutcome{}, ErrEstimateStale
	}
	return acceptCascadeOutcome{
		Root:     models.EstimateStatusAccepted,
		Accepted: models.EstimateStatusAccepted,
		Sibling:  models.EstimateStatusRejected,
	}, nil
}

// rootStatusOnQuoteCreated решает судьбу корня при появлении предложения:
// первое предложение переводит корень из new в waiting, дальше корень не
// трогается.
func rootStatusOnQuoteCreated(rootStatus string) (string, bool) {
	if rootStatus != models.EstimateStatusNew {
		return rootStatus, false
	}
	return models.EstimateStatusWaiting, true
}

// rootStatusAfterQuoteCancelled решает судьбу корня после отзыва предложения:
// если живых предложений не осталось, корень отменяется вместе с последним.
func rootStatusAfterQuoteCancelled(rootStatus string, aliveQuotes int) (string, bool) {
	if aliveQuotes > 0 || models.IsTerminalEstimateStatus(rootStatus) {
		return rootStatus, false
	}
	return models.EstimateStatusCancelled, true
}
