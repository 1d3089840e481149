package sync

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/NikolayVerchenko/wb-analytics-sub001/internal/period"
)

func TestNewTask(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		periodID  string
		wantKind  period.Kind
		wantWeek  string
		wantStart string
		wantEnd   string
	}{
		{
			name:      "day",
			periodID:  "2024-03-06",
			wantKind:  period.KindDaily,
			wantWeek:  "2024-W10",
			wantStart: "2024-03-06",
			wantEnd:   "2024-03-06T23:59:59+03:00",
		},
		{
			name:      "week",
			periodID:  "2024-W10",
			wantKind:  period.KindWeekly,
			wantWeek:  "2024-W10",
			wantStart: "2024-03-04",
			wantEnd:   "2024-03-10T23:59:59+03:00",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			task, err := NewTask(testCalendar, tt.periodID)
			require.NoError(t, err)
			assert.Equal(t, tt.periodID, task.PeriodID)
			assert.Equal(t, tt.wantKind, task.Kind)
			assert.Equal(t, tt.wantWeek, task.WeekID)
			assert.Equal(t, tt.wantStart, task.Range.StartParam())
			assert.Equal(t, tt.wantEnd, task.Range.EndParam())
		})
	}
}

func TestNewTaskInvalid(t *testing.T) {
	t.Parallel()
	_, err := NewTask(testCalendar, "2024-W99")
	assert.Error(t, err)
	_, err = NewTask(testCalendar, "yesterday")
	assert.Error(t, err)
}

func TestExclusions(t *testing.T) {
	t.Parallel()
	var none Exclusions
	assert.False(t, none.Has("2024-03-06"))

	ex := Exclusions{}
	ex.Add("2024-03-06")
	assert.True(t, ex.Has("2024-03-06"))
	assert.False(t, ex.Has("2024-03-05"))
}
