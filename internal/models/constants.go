package models

// EstimateStatus константы статусов заявок и предложений
const (
	EstimateStatusNew       = "new"
	EstimateStatusWaiting   = "waiting"
	EstimateStatusAccepted  = "accepted"
	EstimateStatusRejected  = "rejected"
	EstimateStatusCancelled = "cancelled"
)

// Proposal константы типов заявки
const (
	ProposalGeneral     = "general"
	ProposalDesignation = "designation"
)

// ServiceType константы видов услуг
const (
	ServiceTypeCare     = "care"
	ServiceTypeGrooming = "grooming"
)

// Role константы ролей аккаунтов
const (
	RoleUser    = "user"
	RoleVet     = "vet"
	RoleGroomer = "groomer"
)

// ReservationStatus константы статусов бронирований
const (
	ReservationStatusPending   = "pending"
	ReservationStatusPaid      = "paid"
	ReservationStatusCompleted = "completed"
	ReservationStatusCancelled = "cancelled"
)

// KeywordBadgeThreshold — число упоминаний ключевого слова в отзывах,
// после которого исполнителю выдаётся значок.
const KeywordBadgeThreshold = 10

// ValidEstimateStatuses список валидных статусов заявок
var ValidEstimateStatuses = map[string]struct{}{
	EstimateStatusNew:       {},
	EstimateStatusWaiting:   {},
	EstimateStatusAccepted:  {},
	EstimateStatusRejected:  {},
	EstimateStatusCancelled: {},
}

// ValidProposals список валидных типов заявки
var ValidProposals = map[string]struct{}{
	ProposalGeneral:     {},
	ProposalDesignation: {},
}

// ValidServiceTypes список валидных видов услуг
var ValidServiceTypes = map[string]struct{}{
	ServiceTypeCare:     {},
	ServiceTypeGrooming: {},
}

// ValidRoles список валидных ролей
var ValidRoles = map[string]struct{}{
	RoleUser:    {},
	RoleVet:     {},
	RoleGroomer: {},
}

// TerminalEstimateStatuses — статусы, из которых переходы запрещены.
var TerminalEstimateStatuses = map[string]struct{}{
	EstimateStatusAccepted:  {},
	EstimateStatusRejected:  {},
	EstimateStatusCancelled: {},
}

// IsTerminalEstimateStatus сообщает, является ли статус терминальным.
func IsTerminalEstimateStatus(status string) bool {
	_, ok := TerminalEstimateStatuses[status]
	return ok
}

// RoleForServiceType возвращает роль исполнителя для вида услуги.
func RoleForServiceType(serviceType string) string {
	if serviceType == ServiceTypeCare {
		return RoleVet
	}
	return RoleGroomer
}
