package query

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vvka-141/roomstat/internal/loader"
	"github.com/vvka-141/roomstat/internal/logging"
	"github.com/vvka-141/roomstat/internal/schema"
	testhelpers "github.com/vvka-141/roomstat/internal/testing"
	"github.com/vvka-141/roomstat/pkg/roomstat"
)

var asOf = roomstat.NewDate(2024, time.January, 1)

func loadFixture(t *testing.T, rooms, students string) *Executor {
	t.Helper()
	testDB := testhelpers.NewTestDatabase(t)
	ctx := context.Background()
	require.NoError(t, schema.EnsureTables(ctx, testDB.Conn))
	_, err := loader.New(testDB.Conn, logging.NewNullLogger()).
		Load(ctx, strings.NewReader(rooms), strings.NewReader(students))
	require.NoError(t, err)
	return NewExecutor(testDB.Conn, WithReferenceDate(asOf))
}

func ids(t *testing.T, res *Result) []int64 {
	t.Helper()
	out := make([]int64, 0, len(res.Rows))
	for _, row := range res.Rows {
		v, ok := row.Get("room_id")
		require.True(t, ok)
		out = append(out, v.(int64))
	}
	return out
}

func TestIntegration_EndToEndExample(t *testing.T) {
	e := loadFixture(t,
		`[{"id": 1, "name": "101"}]`,
		`[
			{"id": 10, "name": "A", "birthday": "2000-05-01", "sex": "M", "room": 1},
			{"id": 11, "name": "B", "birthday": "2001-06-01", "sex": "F", "room": 1}
		]`)
	ctx := context.Background()

	occupancy, err := e.Run(ctx, roomstat.QueryRoomOccupancy)
	require.NoError(t, err)
	assert.Equal(t, []Row{{
		{Name: "room_id", Value: int64(1)},
		{Name: "room_name", Value: "101"},
		{Name: "student_count", Value: int64(2)},
	}}, occupancy.Rows)

	mixed, err := e.Run(ctx, roomstat.QueryMixedSex)
	require.NoError(t, err)
	assert.Equal(t, []Row{{
		{Name: "room_id", Value: int64(1)},
		{Name: "room_name", Value: "101"},
	}}, mixed.Rows)
}

func TestIntegration_EmptyRoomCountsZero(t *testing.T) {
	e := loadFixture(t,
		`[{"id": 1, "name": "full"}, {"id": 2, "name": "empty"}]`,
		`[{"id": 1, "name": "A", "birthday": "2000-01-01", "sex": "M", "room": 1}]`)

	res, err := e.Run(context.Background(), roomstat.QueryRoomOccupancy)
	require.NoError(t, err)
	require.Len(t, res.Rows, 2)
	count, _ := res.Rows[1].Get("student_count")
	assert.Equal(t, int64(0), count)

	youngest, err := e.Run(context.Background(), roomstat.QueryYoungestRooms)
	require.NoError(t, err)
	assert.Equal(t, []int64{1}, ids(t, youngest), "rooms without students have no average")
}

func TestIntegration_AgeSpread(t *testing.T) {
	e := loadFixture(t,
		`[{"id": 3, "name": "spread"}, {"id": 4, "name": "single"}]`,
		`[
			{"id": 1, "name": "Old", "birthday": "2000-01-01", "sex": "M", "room": 3},
			{"id": 2, "name": "Young", "birthday": "2010-06-15", "sex": "M", "room": 3},
			{"id": 3, "name": "Alone", "birthday": "1995-03-03", "sex": "F", "room": 4}
		]`)

	res, err := e.Run(context.Background(), roomstat.QueryAgeSpread)
	require.NoError(t, err)
	require.Len(t, res.Rows, 2)

	assert.Equal(t, []int64{3, 4}, ids(t, res))
	spread, _ := res.Rows[0].Get("age_difference")
	assert.Equal(t, "10.45", spread.(roomstat.Decimal).String())
	single, _ := res.Rows[1].Get("age_difference")
	assert.Equal(t, "0.00", single.(roomstat.Decimal).String())
}

func TestIntegration_RankedQueriesReturnAtMostFive(t *testing.T) {
	var rooms, students []string
	for i := 0; i < 8; i++ {
		rooms = append(rooms, fmt.Sprintf(`{"id": %d, "name": "Room #%d"}`, i, i))
		students = append(students,
			fmt.Sprintf(`{"id": %d, "name": "s", "birthday": "%d-01-01", "sex": "M", "room": %d}`, 2*i, 1990+i, i),
			fmt.Sprintf(`{"id": %d, "name": "s", "birthday": "2005-01-01", "sex": "F", "room": %d}`, 2*i+1, i))
	}
	e := loadFixture(t, "["+strings.Join(rooms, ",")+"]", "["+strings.Join(students, ",")+"]")
	ctx := context.Background()

	youngest, err := e.Run(ctx, roomstat.QueryYoungestRooms)
	require.NoError(t, err)
	assert.Equal(t, []int64{7, 6, 5, 4, 3}, ids(t, youngest))

	spread, err := e.Run(ctx, roomstat.QueryAgeSpread)
	require.NoError(t, err)
	assert.Equal(t, []int64{0, 1, 2, 3, 4}, ids(t, spread))

	mixed, err := e.Run(ctx, roomstat.QueryMixedSex)
	require.NoError(t, err)
	assert.Len(t, mixed.Rows, 8)
}

func TestIntegration_MixedSexNeedsBoth(t *testing.T) {
	e := loadFixture(t,
		`[{"id": 1, "name": "boys"}, {"id": 2, "name": "mixed"}, {"id": 3, "name": "girls"}]`,
		`[
			{"id": 1, "name": "a", "birthday": "2000-01-01", "sex": "M", "room": 1},
			{"id": 2, "name": "b", "birthday": "2000-01-01", "sex": "M", "room": 1},
			{"id": 3, "name": "c", "birthday": "2000-01-01", "sex": "M", "room": 2},
			{"id": 4, "name": "d", "birthday": "2000-01-01", "sex": "F", "room": 2},
			{"id": 5, "name": "e", "birthday": "2000-01-01", "sex": "F", "room": 3}
		]`)

	res, err := e.Run(context.Background(), roomstat.QueryMixedSex)
	require.NoError(t, err)
	assert.Equal(t, []int64{2}, ids(t, res))
}

func TestIntegration_CancelledContext(t *testing.T) {
	e := loadFixture(t, `[]`, `[]`)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	res, err := e.Run(ctx, roomstat.QueryRoomOccupancy)
	assert.Nil(t, res)
	assert.ErrorIs(t, err, roomstat.ErrQuery)
}
