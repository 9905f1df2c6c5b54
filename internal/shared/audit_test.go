package shared

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestAuditLogOccurredAtDefaultsToNow(t *testing.T) {
	before := time.Now().UTC()
	got := AuditLog{Action: "salary.update", Entity: "profile", EntityID: "p-lena"}.occurredAt()
	require.False(t, got.IsZero())
	require.False(t, got.Before(before))
	require.False(t, got.After(time.Now().UTC()))
}

func TestAuditLogOccurredAtKeepsExplicitTimestamp(t *testing.T) {
	at := time.Date(2026, 2, 14, 9, 30, 0, 0, time.UTC)
	got := AuditLog{Action: "employee.delete", Entity: "profile", EntityID: "p-ivo", At: at}.occurredAt()
	require.Equal(t, at, got)
}
