package tui

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/vvka-141/roomstat/pkg/roomstat"
)

func sampleSummary() Summary {
	return Summary{
		Database:      "db_students",
		Load:          roomstat.LoadSummary{RoomsInserted: 10, StudentsInserted: 8, StudentsSkipped: 2},
		Outputs:       []string{"output_1_room-occupancy.json"},
		ReferenceDate: roomstat.NewDate(2024, time.January, 1),
		Duration:      1500 * time.Millisecond,
	}
}

func TestRenderSummary_Plain(t *testing.T) {
	out := RenderSummary(sampleSummary(), false)

	assert.True(t, strings.HasPrefix(out, "Run complete\n"))
	assert.Contains(t, out, "Rooms:       10 inserted\n")
	assert.Contains(t, out, "Students:    8 inserted, 2 already present\n")
	assert.Contains(t, out, "Ages as of:  2024-01-01\n")
	assert.Contains(t, out, "Duration:    1.5s\n")
	assert.Contains(t, out, "• output_1_room-occupancy.json\n")
}

func TestRenderSummary_Styled(t *testing.T) {
	out := RenderSummary(sampleSummary(), true)

	assert.Contains(t, out, "Run complete")
	assert.Contains(t, out, "db_students")
	assert.Contains(t, out, "output_1_room-occupancy.json")
	assert.Contains(t, out, "╭")
}

func TestRenderSummary_OmitsUnsetReferenceDate(t *testing.T) {
	s := sampleSummary()
	s.ReferenceDate = roomstat.Date{}
	assert.NotContains(t, RenderSummary(s, false), "Ages as of")
}
