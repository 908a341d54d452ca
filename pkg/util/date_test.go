package util

import (
	"strconv"
	"testing"
	"time"
)

func TestParseTimeRFC3339(t *testing.T) {
	s := "2024-10-10T10:10:10Z"
	got, ok := ParseTime(s)
	if !ok {
		t.Fatalf("expected ok")
	}
	if got.UTC().Format(time.RFC3339) != s {
		t.Fatalf("unexpected time %v", got)
	}
}

func TestParseTimeRFC1123Z(t *testing.T) {
	got, ok := ParseTime("Thu, 10 Oct 2024 10:10:10 +0000")
	if !ok {
		t.Fatalf("expected ok")
	}
	if got.UTC().Hour() != 10 {
		t.Fatalf("unexpected time %v", got)
	}
}

func TestParseTimeUnix(t *testing.T) {
	ts := time.Date(2024, 10, 10, 10, 10, 10, 0, time.UTC).Unix()
	got, ok := ParseTime(strconv.FormatInt(ts, 10))
	if !ok {
		t.Fatalf("expected ok")
	}
	if got.Unix() != ts {
		t.Fatalf("unexpected unix %v", got.Unix())
	}
}

func TestParseTimePtrInvalid(t *testing.T) {
	if p := ParseTimePtr("yesterday"); p != nil {
		t.Fatalf("expected nil, got %v", p)
	}
}

func TestParseTimeDefault(t *testing.T) {
	def := time.Date(2024, 10, 10, 10, 10, 10, 0, time.UTC)
	got := ParseTimeDefault("", def)
	if !got.Equal(def) {
		t.Fatalf("expected default")
	}
}

func TestWindow(t *testing.T) {
	now := time.Date(2024, 10, 10, 10, 10, 10, 0, time.UTC)
	from, to := Window(now, 30*24*time.Hour)
	if to.Second() != 0 {
		t.Fatalf("expected minute aligned end, got %v", to)
	}
	if DateOnly(from) != "2024-09-10" {
		t.Fatalf("unexpected start %v", from)
	}
}

func TestSplitCSV(t *testing.T) {
	got := SplitCSV(" a, ,b ")
	if len(got) != 2 || got[0] != "a" || got[1] != "b" {
		t.Fatalf("unexpected %v", got)
	}
}
