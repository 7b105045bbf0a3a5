package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"google.golang.org/grpc/codes"
)

func validTemplate() ClassTemplate {
	return ClassTemplate{
		ID:              "tpl",
		Title:           "HYROX",
		DayOfWeek:       2,
		StartTime:       "06:00",
		DurationMinutes: 60,
		Timezone:        "Europe/London",
		Capacity:        18,
		Location:        "Main Floor",
		IsActive:        true,
	}
}

func TestClassTemplate_Validate(t *testing.T) {
	testCases := []struct {
		name   string
		mutate func(*ClassTemplate)
		field  string
	}{
		{name: "valid", mutate: func(*ClassTemplate) {}},
		{name: "empty title", mutate: func(t *ClassTemplate) { t.Title = "" }, field: "title"},
		{name: "day out of range", mutate: func(t *ClassTemplate) { t.DayOfWeek = 7 }, field: "day_of_week"},
		{name: "bad clock", mutate: func(t *ClassTemplate) { t.StartTime = "6pm" }, field: "start_time"},
		{name: "zero duration", mutate: func(t *ClassTemplate) { t.DurationMinutes = 0 }, field: "duration_minutes"},
		{name: "zero capacity", mutate: func(t *ClassTemplate) { t.Capacity = 0 }, field: "capacity"},
		{name: "unknown timezone", mutate: func(t *ClassTemplate) { t.Timezone = "Mars/Olympus" }, field: "timezone"},
		{name: "empty timezone allowed", mutate: func(t *ClassTemplate) { t.Timezone = "" }},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			tpl := validTemplate()
			tc.mutate(&tpl)
			err := tpl.Validate()
			if tc.field == "" {
				assert.NoError(t, err)
				return
			}
			assert.Error(t, err)
			assert.Equal(t, codes.InvalidArgument, AsError(err).Code)
			assert.Contains(t, err.Error(), tc.field)
		})
	}
}

func TestClassInstance_Validate(t *testing.T) {
	start := time.Date(2026, 10, 19, 18, 0, 0, 0, time.UTC)
	c := ClassInstance{
		ID:         "tpl_2026-10-19_1800",
		TemplateID: "tpl",
		Timezone:   "Europe/London",
		StartTime:  start,
		EndTime:    start.Add(time.Hour),
		Capacity:   2,
		Status:     ClassStatusScheduled,
	}
	assert.NoError(t, c.Validate())

	c.BookedCount = -1
	assert.Error(t, c.Validate())

	c.BookedCount = 0
	c.Status = "archived"
	assert.Error(t, c.Validate())
}

func TestRole_Privileged(t *testing.T) {
	assert.True(t, RoleAdmin.Privileged())
	assert.True(t, RoleStaff.Privileged())
	assert.False(t, RoleUser.Privileged())
	assert.False(t, Role("").Privileged())
}
