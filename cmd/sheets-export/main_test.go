package main

import (
	"testing"
	"time"
)

func TestPreviousMonth(t *testing.T) {
	tests := []struct {
		name      string
		now       time.Time
		wantYear  int
		wantMonth time.Month
	}{
		{"mid month", time.Date(2025, time.September, 15, 10, 0, 0, 0, time.UTC), 2025, time.August},
		{"end of long month", time.Date(2025, time.March, 31, 23, 0, 0, 0, time.UTC), 2025, time.February},
		{"january wraps year", time.Date(2025, time.January, 5, 0, 0, 0, 0, time.UTC), 2024, time.December},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			year, month := previousMonth(tt.now)
			if year != tt.wantYear || month != tt.wantMonth {
				t.Errorf("previousMonth(%v) = %d-%v, want %d-%v",
					tt.now, year, month, tt.wantYear, tt.wantMonth)
			}
		})
	}
}
