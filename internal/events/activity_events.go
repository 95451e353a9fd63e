package events

import "isp-system/internal/entities"

const ActivityRecorded = "activity.recorded"

// ActivityRecordedEvent публикуется после коммита транзакции, в которой записан журнал.
type ActivityRecordedEvent struct {
	Log        entities.ActivityLog
	Recipients []uint64
}

func (e ActivityRecordedEvent) Name() string {
	return ActivityRecorded
}
