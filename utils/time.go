package utils

import (
	"errors"
	"time"
)

var errUnparseableTimestamp = errors.New("unparseable timestamp")

// 在线格式统一为 UTC ISO-8601；无时区后缀的值按 UTC 解释
var timestampLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
}

// ParseTimestamp 解析打卡时间字符串，统一归一化到 UTC
func ParseTimestamp(value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, errUnparseableTimestamp
	}

	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t.UTC(), nil
		}
	}

	return time.Time{}, errUnparseableTimestamp
}
