package model

import (
	"strings"
	"time"
)

// DisplayTimeFormat 是管理端展示时间使用的格式。
const DisplayTimeFormat = "2006-01-02 15:04:05"

// LocalTime 以 "YYYY-MM-DD HH:MM:SS"（本地时区）序列化，零值输出 null。
type LocalTime time.Time

// Time 返回底层的 time.Time。
func (t LocalTime) Time() time.Time {
	return time.Time(t)
}

func (t LocalTime) MarshalJSON() ([]byte, error) {
	if t.Time().IsZero() {
		return []byte("null"), nil
	}
	return []byte(`"` + t.Time().Local().Format(DisplayTimeFormat) + `"`), nil
}

func (t *LocalTime) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(data), `"`)
	if s == "" || s == "null" {
		*t = LocalTime{}
		return nil
	}
	parsed, err := time.ParseInLocation(DisplayTimeFormat, s, time.Local)
	if err != nil {
		return err
	}
	*t = LocalTime(parsed)
	return nil
}
