package mongo

import (
	"testing"
	"time"

	"github.com/roots/admin-console/internal/core/domain"
)

func TestActivityDoc_RoundTrip(t *testing.T) {
	at := time.Date(2026, 10, 17, 9, 30, 0, 0, time.FixedZone("IST", 5*3600+1800))
	in := domain.Activity{
		ID:         "a1",
		ActorID:    "u_1",
		ActorEmail: "admin@roots.test",
		Action:     domain.ActionUpgradeRejected,
		TargetKind: "upgrade_request",
		TargetID:   "ur_1",
		Detail:     "blurry screenshot",
		At:         at,
	}

	doc := toActivityDoc(&in)
	if doc.At.Location() != time.UTC {
		t.Errorf("expected timestamps stored in UTC")
	}
	out := doc.toDomain()
	if !out.At.Equal(at) || out.Action != in.Action || out.TargetID != in.TargetID || out.Detail != in.Detail {
		t.Errorf("unexpected round trip %+v", out)
	}
}

func TestSkipFor(t *testing.T) {
	cases := []struct {
		page, limit int
		want        int64
	}{
		{1, 20, 0},
		{3, 20, 40},
		{0, 20, 0},
		{2, 0, 0},
	}
	for _, tc := range cases {
		if got := skipFor(tc.page, tc.limit); got != tc.want {
			t.Errorf("skipFor(%d, %d) = %d, want %d", tc.page, tc.limit, got, tc.want)
		}
	}
}
