package memory

import "time"

func activity(last, created time.Time) time.Time {
	if last.IsZero() {
		return created
	}
	return last
}
