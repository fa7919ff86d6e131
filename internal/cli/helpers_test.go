package cli

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/require"

	"github.com/vvka-141/roomstat/internal/db/manager"
	"github.com/vvka-141/roomstat/internal/logging"
	"github.com/vvka-141/roomstat/internal/services"
	testhelpers "github.com/vvka-141/roomstat/internal/testing"
	"github.com/vvka-141/roomstat/pkg/roomstat"
)

var connectionEnvVars = []string{
	"PGHOST", "PGPORT", "PGUSER", "PGPASSWORD", "PGDATABASE", "PGSSLMODE",
	"ROOMSTAT_CONNECTION_STRING", "DATABASE_URL",
	"DB_HOST", "DB_PORT", "DB_USER", "DB_PASSWORD", "DB_NAME",
	"AWS_REGION", "AZURE_TENANT_ID", "AZURE_CLIENT_ID", "AZURE_CLIENT_SECRET",
}

func clearConnectionEnv(t *testing.T) {
	t.Helper()
	for _, name := range connectionEnvVars {
		t.Setenv(name, "")
	}
	t.Setenv("ROOMSTAT_NON_INTERACTIVE", "1")
}

// resetFlags restores every flag of cmd and its children to its default.
func resetFlags(cmd *cobra.Command) {
	reset := func(f *pflag.Flag) {
		if sv, ok := f.Value.(pflag.SliceValue); ok {
			_ = sv.Replace(nil)
		} else {
			_ = f.Value.Set(f.DefValue)
		}
		f.Changed = false
	}
	cmd.Flags().VisitAll(reset)
	cmd.PersistentFlags().VisitAll(reset)
	for _, child := range cmd.Commands() {
		resetFlags(child)
	}
}

type commandResult struct {
	stdout string
	stderr string
	err    error
}

// execute runs the root command with args and captured output.
func execute(t *testing.T, args ...string) commandResult {
	t.Helper()
	resetFlags(rootCmd)

	var stdout, stderr bytes.Buffer
	rootCmd.SetArgs(args)
	rootCmd.SetOut(&stdout)
	rootCmd.SetErr(&stderr)
	t.Cleanup(func() {
		rootCmd.SetArgs(nil)
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
	})

	_, err := rootCmd.ExecuteC()
	return commandResult{stdout: stdout.String(), stderr: stderr.String(), err: err}
}

// fakeDatabase replaces the pipeline factory with one backed by FakeConns.
type fakeDatabase struct {
	configs []*roomstat.ConnectionConfig
	conns   map[string]*testhelpers.FakeConn
	stdout  bytes.Buffer
}

func useFakeDatabase(t *testing.T) *fakeDatabase {
	t.Helper()
	fake := &fakeDatabase{conns: map[string]*testhelpers.FakeConn{}}

	original := newPipeline
	newPipeline = func(roomstat.Logger) *services.Pipeline {
		open := func(_ context.Context, cfg *roomstat.ConnectionConfig) (roomstat.DBConnection, func(), error) {
			fake.configs = append(fake.configs, cfg)
			conn, ok := fake.conns[cfg.Database]
			if !ok {
				conn = &testhelpers.FakeConn{}
				fake.conns[cfg.Database] = conn
			}
			return conn, func() {}, nil
		}
		return services.NewPipeline(open, manager.New(), logging.NewNullLogger(), strings.NewReader(""), &fake.stdout)
	}
	t.Cleanup(func() { newPipeline = original })
	return fake
}

const (
	cliRooms    = `[{"id": 1, "name": "101"}]`
	cliStudents = `[
		{"id": 10, "name": "A", "birthday": "2000-05-01", "sex": "M", "room": 1},
		{"id": 11, "name": "B", "birthday": "2001-06-01", "sex": "F", "room": 1}
	]`
)

func writeCLIInputs(t *testing.T, students, rooms string) (string, string) {
	t.Helper()
	dir := t.TempDir()
	studentsPath := filepath.Join(dir, "students.json")
	roomsPath := filepath.Join(dir, "rooms.json")
	require.NoError(t, os.WriteFile(studentsPath, []byte(students), 0o644))
	require.NoError(t, os.WriteFile(roomsPath, []byte(rooms), 0o644))
	return studentsPath, roomsPath
}
