package cache

import (
	"time"
)

// DailyRefreshHour は日次インジェストが完了している想定の時刻（UTC）です。
const DailyRefreshHour = 6

// TimeUntilNextDailyRefresh は次の日次更新（UTC 06:00）までの期間を返します。
func TimeUntilNextDailyRefresh() time.Duration {
	return untilNext(time.Now().UTC(), DailyRefreshHour)
}

// untilNext は now から次の hour 時00分までの期間を返します。ちょうどその時刻なら24時間後です。
func untilNext(now time.Time, hour int) time.Duration {
	next := time.Date(now.Year(), now.Month(), now.Day(), hour, 0, 0, 0, now.Location())
	if !now.Before(next) {
		next = next.AddDate(0, 0, 1)
	}
	return next.Sub(now)
}
