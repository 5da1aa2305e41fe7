package instance

import "github.com/angelmondragon/stashkeeper-backend/pkg/env"

// GetID returns the process instance identifier used in logs, preferring the
// platform dyno name over the host name.
func GetID() string {
	if id := env.First("DYNO", "HOSTNAME"); id != "" {
		return id
	}
	return "local"
}
