package dto

import (
	"encoding/json"
	"testing"
	"time"
)

func TestScheduleTimeUnmarshal(t *testing.T) {
	cases := []struct {
		name    string
		raw     string
		want    *time.Time
		wantErr bool
	}{
		{
			name: "date only",
			raw:  `"2026-02-19"`,
			want: timePtr(time.Date(2026, 2, 19, 0, 0, 0, 0, time.UTC)),
		},
		{
			name: "rfc3339",
			raw:  `"2026-02-19T18:30:00Z"`,
			want: timePtr(time.Date(2026, 2, 19, 18, 30, 0, 0, time.UTC)),
		},
		{
			name: "rfc3339 with offset normalizes to UTC",
			raw:  `"2026-02-19T18:30:00+02:00"`,
			want: timePtr(time.Date(2026, 2, 19, 16, 30, 0, 0, time.UTC)),
		},
		{
			name: "datetime-local",
			raw:  `"2026-02-19T18:30"`,
			want: timePtr(time.Date(2026, 2, 19, 18, 30, 0, 0, time.UTC)),
		},
		{name: "null", raw: `null`, want: nil},
		{name: "empty string", raw: `""`, want: nil},
		{name: "garbage", raw: `"next tuesday"`, wantErr: true},
	}

	for _, tc := range cases {
		var st ScheduleTime
		err := json.Unmarshal([]byte(tc.raw), &st)
		if tc.wantErr {
			if err == nil {
				t.Errorf("%s: expected error", tc.name)
			}
			continue
		}
		if err != nil {
			t.Errorf("%s: %v", tc.name, err)
			continue
		}
		got := st.Ptr()
		switch {
		case tc.want == nil && got != nil:
			t.Errorf("%s: got %v, want nil", tc.name, got)
		case tc.want != nil && (got == nil || !got.Equal(*tc.want)):
			t.Errorf("%s: got %v, want %v", tc.name, got, tc.want)
		}
	}
}

func timePtr(t time.Time) *time.Time { return &t }
