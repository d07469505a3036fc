package notify

import (
	"testing"
	"time"
)

func dateOf(t *testing.T, iso string) time.Time {
	t.Helper()
	d, err := time.Parse("2006-01-02", iso)
	if err != nil {
		t.Fatalf("bad date %q: %v", iso, err)
	}
	return d
}
