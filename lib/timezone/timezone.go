package timezone

import "time"

// Location is the fixed +03:00 offset every date on the remote site is
// written in. It is a fixed zone so that parsing does not depend on the
// tzdata of the host.
var Location = time.FixedZone("MSK", 3*60*60)

func Now() time.Time {
	return time.Now().In(Location)
}

// Parse parses `value` with `layout` in Location.
func Parse(layout, value string) (time.Time, error) {
	return time.ParseInLocation(layout, value, Location)
}
