package reminder

import "time"

const day = 24 * time.Hour

// StartOfDayUTC 将时间归一化到 UTC 零点
func StartOfDayUTC(t time.Time) time.Time {
	u := t.UTC()
	return time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
}

// DaysRemaining 返回 end 距 now 的整天数，两者都先归一化到 UTC 零点。
// 已过期时为负数，与宿主机时区无关。
func DaysRemaining(end, now time.Time) int {
	diff := StartOfDayUTC(end).Sub(StartOfDayUTC(now))
	days := diff / day
	if diff%day < 0 {
		days--
	}
	return int(days)
}
