package query

import "github.com/vvka-141/roomstat/pkg/roomstat"

type columnKind int

const (
	kindInt columnKind = iota
	kindText
	kindDecimal
)

type column struct {
	name string
	kind columnKind
}

// definition is one fixed aggregation query. Dated queries take the
// reference date as $1.
type definition struct {
	sql     string
	columns []column
	dated   bool
}

var (
	roomIDColumn   = column{name: "room_id", kind: kindInt}
	roomNameColumn = column{name: "room_name", kind: kindText}
)

// Ages are (reference date - birthday) in days over 365.25, computed as
// numeric and rounded by PostgreSQL. Decimal columns are returned as text so
// no float conversion happens on the way out. Ranked queries order by the
// qualified numeric column, never the text alias. Ties break on room id.
var definitions = map[roomstat.QueryID]definition{
	roomstat.QueryRoomOccupancy: {
		sql: `SELECT r.id, r.name, COUNT(DISTINCT s.id) AS student_count
FROM room r
LEFT JOIN student s ON s.room = r.id
GROUP BY r.id, r.name
ORDER BY r.id`,
		columns: []column{roomIDColumn, roomNameColumn, {name: "student_count", kind: kindInt}},
	},

	roomstat.QueryYoungestRooms: {
		sql: `WITH averages AS (
    SELECT r.id, r.name, ROUND(AVG(($1::date - s.birthday) / 365.25), 2) AS average_age
    FROM room r
    JOIN student s ON s.room = r.id
    GROUP BY r.id, r.name
    HAVING COUNT(s.id) > 0
)
SELECT id, name, average_age::text AS average_age_text
FROM averages
ORDER BY averages.average_age ASC, averages.id ASC
LIMIT 5`,
		columns: []column{roomIDColumn, roomNameColumn, {name: "average_age", kind: kindDecimal}},
		dated:   true,
	},

	roomstat.QueryAgeSpread: {
		sql: `WITH spreads AS (
    SELECT r.id, r.name,
           ROUND((MAX($1::date - s.birthday) - MIN($1::date - s.birthday)) / 365.25, 2) AS age_difference
    FROM room r
    JOIN student s ON s.room = r.id
    GROUP BY r.id, r.name
    HAVING COUNT(s.id) > 0
)
SELECT id, name, age_difference::text AS age_difference_text
FROM spreads
ORDER BY spreads.age_difference DESC, spreads.id ASC
LIMIT 5`,
		columns: []column{roomIDColumn, roomNameColumn, {name: "age_difference", kind: kindDecimal}},
		dated:   true,
	},

	roomstat.QueryMixedSex: {
		sql: `SELECT r.id, r.name
FROM room r
JOIN student s ON s.room = r.id
GROUP BY r.id, r.name
HAVING COUNT(DISTINCT s.sex) > 1
ORDER BY r.id`,
		columns: []column{roomIDColumn, roomNameColumn},
	},
}

// SQL returns the statement behind a query, for --verbose output and docs.
func SQL(id roomstat.QueryID) (string, bool) {
	def, ok := definitions[id]
	return def.sql, ok
}

// Columns returns the output column names of a query in order.
func Columns(id roomstat.QueryID) []string {
	def, ok := definitions[id]
	if !ok {
		return nil
	}
	names := make([]string, len(def.columns))
	for i, c := range def.columns {
		names[i] = c.name
	}
	return names
}
