package roomstat_test

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vvka-141/roomstat/pkg/roomstat"
)

func TestParseDate(t *testing.T) {
	tests := []struct {
		in   string
		want string
		ok   bool
	}{
		{"2000-01-01", "2000-01-01", true},
		{"1996-05-13T00:00:00.000000", "1996-05-13", true},
		{"2004-01-07T13:45:00Z", "2004-01-07", true},
		{"13/05/1996", "", false},
		{"", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			d, err := roomstat.ParseDate(tt.in)
			if !tt.ok {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, d.String())
		})
	}
}

func TestStudent_UnmarshalJSON(t *testing.T) {
	var s roomstat.Student
	data := `{"id": 5, "name": "Ann", "birthday": "2001-01-01T00:00:00.000000", "sex": "F", "room": 3}`
	require.NoError(t, json.Unmarshal([]byte(data), &s))

	assert.Equal(t, int64(5), s.ID)
	assert.Equal(t, "Ann", s.Name)
	assert.Equal(t, "2001-01-01", s.Birthday.String())
	assert.Equal(t, roomstat.SexFemale, s.Sex)
	assert.Equal(t, int64(3), s.Room)
}

func TestDecimal_String(t *testing.T) {
	tests := []struct {
		d    roomstat.Decimal
		want string
	}{
		{roomstat.NewDecimal(1046), "10.46"},
		{roomstat.NewDecimal(0), "0.00"},
		{roomstat.NewDecimal(5), "0.05"},
		{roomstat.NewDecimal(-150), "-1.50"},
		{roomstat.NewDecimal(123456789), "1234567.89"},
		{roomstat.DecimalFromFloat(10.46), "10.46"},
		{roomstat.DecimalFromFloat(20.5), "20.50"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.d.String())
	}
}

func TestDecimal_JSONIsBareNumber(t *testing.T) {
	out, err := json.Marshal(map[string]any{"age": roomstat.NewDecimal(2150)})
	require.NoError(t, err)
	assert.JSONEq(t, `{"age": 21.50}`, string(out))
	assert.Contains(t, string(out), `21.50`)

	var back roomstat.Decimal
	require.NoError(t, json.Unmarshal([]byte("21.5"), &back))
	assert.Equal(t, int64(2150), back.Hundredths())
}

func TestParseFormat(t *testing.T) {
	f, err := roomstat.ParseFormat("JSON")
	require.NoError(t, err)
	assert.Equal(t, roomstat.FormatJSON, f)

	f, err = roomstat.ParseFormat(" xml ")
	require.NoError(t, err)
	assert.Equal(t, roomstat.FormatXML, f)

	_, err = roomstat.ParseFormat("csv")
	var ufe *roomstat.UnsupportedFormatError
	require.True(t, errors.As(err, &ufe))
	assert.Equal(t, "csv", ufe.Format)
	assert.True(t, errors.Is(err, roomstat.ErrUnsupportedFormat))
}

func TestParseQueryID(t *testing.T) {
	q, err := roomstat.ParseQueryID("3")
	require.NoError(t, err)
	assert.Equal(t, roomstat.QueryAgeSpread, q)

	q, err = roomstat.ParseQueryID("mixed-sex")
	require.NoError(t, err)
	assert.Equal(t, 4, q.Ordinal())

	_, err = roomstat.ParseQueryID("5")
	assert.True(t, errors.Is(err, roomstat.ErrInvalidConfig))
}

func TestRunConfig_Validate(t *testing.T) {
	valid := roomstat.RunConfig{
		StudentsPath: "students.json",
		RoomsPath:    "rooms.json",
		Format:       roomstat.FormatJSON,
		OutputDir:    ".",
		Connection:   &roomstat.ConnectionConfig{Host: "localhost", Port: 5432, Database: "db"},
	}
	require.NoError(t, valid.Validate())
	assert.Equal(t, roomstat.AllQueries(), valid.SelectedQueries())

	invalid := valid
	invalid.StudentsPath = ""
	invalid.Format = "yaml"
	invalid.Timeout = -time.Second
	err := invalid.Validate()
	require.Error(t, err)
	assert.True(t, errors.Is(err, roomstat.ErrInvalidConfig))
	assert.True(t, errors.Is(err, roomstat.ErrUnsupportedFormat))

	stdin := valid
	stdin.StudentsPath, stdin.RoomsPath = "-", "-"
	assert.Error(t, stdin.Validate())
}

func TestConnectionConfig_WithDatabase(t *testing.T) {
	orig := &roomstat.ConnectionConfig{Database: "a", AdditionalParams: map[string]string{"k": "v"}}
	clone := orig.WithDatabase("b")
	clone.AdditionalParams["k"] = "changed"

	assert.Equal(t, "a", orig.Database)
	assert.Equal(t, "b", clone.Database)
	assert.Equal(t, "v", orig.AdditionalParams["k"])
}

func TestParseAuthMethod(t *testing.T) {
	m, err := roomstat.ParseAuthMethod("aws")
	require.NoError(t, err)
	assert.Equal(t, roomstat.AuthMethodAWSIAM, m)

	_, err = roomstat.ParseAuthMethod("kerberos")
	assert.True(t, errors.Is(err, roomstat.ErrUnsupportedAuthMethod))
}
