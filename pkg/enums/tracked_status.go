package enums

import "fmt"

// TrackedStatus is the lifecycle state of a tracked item. IN_USE is the only
// state that owns an open usage period.
type TrackedStatus string

const (
	TrackedStatusStorage     TrackedStatus = "STORAGE"
	TrackedStatusInUse       TrackedStatus = "IN_USE"
	TrackedStatusMaintenance TrackedStatus = "MAINTENANCE"
	TrackedStatusLost        TrackedStatus = "LOST"
)

var validTrackedStatuses = []TrackedStatus{
	TrackedStatusStorage,
	TrackedStatusInUse,
	TrackedStatusMaintenance,
	TrackedStatusLost,
}

// String implements fmt.Stringer.
func (s TrackedStatus) String() string {
	return string(s)
}

// IsValid reports whether the value is a known TrackedStatus.
func (s TrackedStatus) IsValid() bool {
	for _, candidate := range validTrackedStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// ParseTrackedStatus converts raw input into a TrackedStatus.
func ParseTrackedStatus(value string) (TrackedStatus, error) {
	for _, candidate := range validTrackedStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid tracked status %q", value)
}

// TrackedStatuses returns the closed set of tracked statuses.
func TrackedStatuses() []TrackedStatus {
	out := make([]TrackedStatus, len(validTrackedStatuses))
	copy(out, validTrackedStatuses)
	return out
}
