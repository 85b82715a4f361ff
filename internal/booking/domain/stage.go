package domain

import "strings"

type Stage string

const (
	StageApplicationSubmitted  Stage = "APPLICATION_SUBMITTED"
	StageAcceptedInitiated     Stage = "ACCEPTED_INITIATED"
	StageEstimateInvoiceIssued Stage = "ESTIMATE_INVOICE_ISSUED"
	StageAgreementGenerated    Stage = "AGREEMENT_GENERATED"
	StageScheduleReleased      Stage = "SCHEDULE_RELEASED"
	StageReportActionTaken     Stage = "REPORT_ACTION_TAKEN"
	StageFollowUp              Stage = "FOLLOW_UP"
	StageCompleted             Stage = "COMPLETED"
)

var stages = []Stage{
	StageApplicationSubmitted,
	StageAcceptedInitiated,
	StageEstimateInvoiceIssued,
	StageAgreementGenerated,
	StageScheduleReleased,
	StageReportActionTaken,
	StageFollowUp,
	StageCompleted,
}

// Stages returns the workflow stages in their nominal order.
func Stages() []Stage {
	out := make([]Stage, len(stages))
	copy(out, stages)
	return out
}

// ParseStage accepts only whitelisted stage names. Any stage may follow any other.
func ParseStage(raw string) (Stage, error) {
	value := strings.TrimSpace(raw)
	if value == "" {
		return "", ErrStageRequired
	}
	for _, s := range stages {
		if string(s) == value {
			return s, nil
		}
	}
	return "", ErrInvalidStage
}

type LockAction string

const (
	ActionLock   LockAction = "lock"
	ActionUnlock LockAction = "unlock"
)

func ParseLockAction(raw string) (LockAction, error) {
	switch LockAction(strings.TrimSpace(raw)) {
	case ActionLock:
		return ActionLock, nil
	case ActionUnlock:
		return ActionUnlock, nil
	default:
		return "", ErrInvalidAction
	}
}
