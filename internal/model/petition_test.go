package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCanTransitionStatus(t *testing.T) {
	cases := []struct {
		from, to string
		want     bool
	}{
		{StatusWaiting, StatusApproved, true},
		{StatusWaiting, StatusNotApproved, true},
		{StatusWaiting, StatusDone, false},
		{StatusApproved, StatusDone, true},
		{StatusNotApproved, StatusDone, true},
		{StatusApproved, StatusWaiting, false},
		{StatusNotApproved, StatusWaiting, false},
		{StatusDone, StatusWaiting, false},
		{StatusDone, StatusApproved, false},
		{StatusDone, StatusNotApproved, false},
		// same-state writes are allowed
		{StatusWaiting, StatusWaiting, true},
		{StatusDone, StatusDone, true},
	}

	for _, tc := range cases {
		assert.Equal(t, tc.want, CanTransitionStatus(tc.from, tc.to), "%s -> %s", tc.from, tc.to)
	}
}

func TestValidPriority(t *testing.T) {
	for _, p := range []string{PriorityLow, PriorityMedium, PriorityHigh, PriorityUrgent, PrioritySuperUrgent, PriorityStandard} {
		assert.True(t, ValidPriority(p), p)
	}
	assert.False(t, ValidPriority("CRITICAL"))
	assert.False(t, ValidPriority(""))
	assert.False(t, ValidPriority("low"))
}

func TestValidRole(t *testing.T) {
	for _, r := range []string{RoleAdmin, RoleManager, RoleEmployee, RoleClient} {
		assert.True(t, ValidRole(r), r)
	}
	assert.False(t, ValidRole("admin"))
	assert.False(t, ValidRole("Superuser"))
}

func TestLifecycleRoundTrip(t *testing.T) {
	var l Lifecycle
	assert.False(t, l.IsDeleted())

	now := time.Now()
	l.MarkDeleted(now)
	assert.True(t, l.IsDeleted())
	assert.False(t, l.Active)
	assert.Equal(t, now, *l.DeletedAt)

	l.MarkRestored()
	assert.False(t, l.IsDeleted())
	assert.True(t, l.Active)
	assert.Nil(t, l.DeletedAt)
}
