package basehiring

import "time"

// The platform reports timestamps in UTC seconds; users read schedules in
// Ho Chi Minh City time.
var hcmLocation = func() *time.Location {
	loc, err := time.LoadLocation("Asia/Ho_Chi_Minh")
	if err != nil {
		return time.FixedZone("ICT", 7*3600)
	}
	return loc
}()

// FormatLocal renders a unix timestamp as RFC3339 in the company timezone.
func FormatLocal(ts int64) string {
	if ts == 0 {
		return ""
	}
	return time.Unix(ts, 0).In(hcmLocation).Format(time.RFC3339)
}

// LocalDate truncates a unix timestamp to its local calendar day.
func LocalDate(ts int64) time.Time {
	t := time.Unix(ts, 0).In(hcmLocation)
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
