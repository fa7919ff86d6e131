package services

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	testhelpers "github.com/vvka-141/roomstat/internal/testing"
	"github.com/vvka-141/roomstat/pkg/roomstat"
)

// fakeOpener hands out one FakeConn per database name.
type fakeOpener struct {
	conns    map[string]*testhelpers.FakeConn
	opened   []string
	released int
	err      error
}

func newFakeOpener() *fakeOpener {
	return &fakeOpener{conns: map[string]*testhelpers.FakeConn{}}
}

func (o *fakeOpener) conn(database string) *testhelpers.FakeConn {
	c, ok := o.conns[database]
	if !ok {
		c = &testhelpers.FakeConn{}
		o.conns[database] = c
	}
	return c
}

func (o *fakeOpener) open(_ context.Context, config *roomstat.ConnectionConfig) (roomstat.DBConnection, func(), error) {
	o.opened = append(o.opened, config.Database)
	if o.err != nil {
		return nil, nil, o.err
	}
	return o.conn(config.Database), func() { o.released++ }, nil
}

type mockDatabaseManager struct {
	created []string
	exists  bool
	err     error
}

func (m *mockDatabaseManager) Exists(context.Context, roomstat.DBConnection, string) (bool, error) {
	return m.exists, m.err
}

func (m *mockDatabaseManager) Create(_ context.Context, _ roomstat.DBConnection, name string) error {
	m.created = append(m.created, name)
	return m.err
}

func (m *mockDatabaseManager) EnsureExists(ctx context.Context, conn roomstat.DBConnection, name string) (bool, error) {
	if m.err != nil {
		return false, m.err
	}
	if m.exists {
		return false, nil
	}
	return true, m.Create(ctx, conn, name)
}

type mockLogger struct {
	messages []string
}

func (l *mockLogger) Verbose(format string, _ ...interface{}) {
	l.messages = append(l.messages, format)
}
func (l *mockLogger) Info(format string, _ ...interface{})  { l.messages = append(l.messages, format) }
func (l *mockLogger) Error(format string, _ ...interface{}) { l.messages = append(l.messages, format) }

const (
	testRooms    = `[{"id": 0, "name": "Room #0"}, {"id": 1, "name": "Room #1"}]`
	testStudents = `[
		{"id": 0, "name": "Peggy", "birthday": "2011-08-22T00:00:00.000000", "sex": "F", "room": 1},
		{"id": 1, "name": "Tim", "birthday": "2004-01-07", "sex": "M", "room": 1},
		{"id": 2, "name": "Sam", "birthday": "2000-05-13", "sex": "M", "room": 0}
	]`
)

func writeInputs(t *testing.T, rooms, students string) (string, string) {
	t.Helper()
	dir := t.TempDir()
	roomsPath := filepath.Join(dir, "rooms.json")
	studentsPath := filepath.Join(dir, "students.json")
	require.NoError(t, os.WriteFile(roomsPath, []byte(rooms), 0o644))
	require.NoError(t, os.WriteFile(studentsPath, []byte(students), 0o644))
	return roomsPath, studentsPath
}
