package batch

type CompletedEvent struct {
	Batch *BatchAction
}

func NewCompletedEvent(ba *BatchAction) *CompletedEvent {
	return &CompletedEvent{Batch: ba}
}

type FailedEvent struct {
	Batch  *BatchAction
	Reason string
}

func NewFailedEvent(ba *BatchAction, reason string) *FailedEvent {
	return &FailedEvent{Batch: ba, Reason: reason}
}
