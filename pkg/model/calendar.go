// Package model 定义药房排班引擎的核心数据模型
package model

import (
	"fmt"
	"time"
)

const dateLayout = "2006-01-02"

// ParseDate 解析 YYYY-MM-DD 日期（本地时区）
// 使用本地日历字段而非 UTC 换算，避免时区边界上的日期偏移
func ParseDate(date string) (time.Time, error) {
	return time.ParseInLocation(dateLayout, date, time.Local)
}

// WeekdayIndex 返回以周一为 0、周日为 6 的星期索引
func WeekdayIndex(t time.Time) int {
	return (int(t.Weekday()) + 6) % 7
}

// ExpandDateRange 将日期区间按开放日掩码展开为有序日期列表
// 区间两端含；起止无效或掩码全关返回空列表
func ExpandDateRange(startDate, endDate string, activeDays [7]bool) []string {
	start, err1 := ParseDate(startDate)
	end, err2 := ParseDate(endDate)
	if err1 != nil || err2 != nil || end.Before(start) {
		return nil
	}

	var dates []string
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		if activeDays[WeekdayIndex(d)] {
			dates = append(dates, d.Format(dateLayout))
		}
	}
	return dates
}

// ISOWeekKey 返回日期所在的 ISO-8601 周标识，格式 "YYYY-Www"
// 仅用作周工时桶的键，不承载其他日历语义
func ISOWeekKey(date string) string {
	t, err := ParseDate(date)
	if err != nil {
		return ""
	}
	year, week := t.ISOWeek()
	return fmt.Sprintf("%d-W%02d", year, week)
}
