package system

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	gokeyring "github.com/zalando/go-keyring"

	"github.com/julianstephens/salonlux/internal/advisor"
	"github.com/julianstephens/salonlux/internal/cli"
	"github.com/julianstephens/salonlux/internal/config"
	"github.com/julianstephens/salonlux/internal/keyring"
	"github.com/julianstephens/salonlux/internal/models"
	"github.com/julianstephens/salonlux/internal/storage"
	"github.com/julianstephens/salonlux/internal/storage/file"
)

func newTestContext(t *testing.T) (*cli.Context, *bytes.Buffer) {
	t.Helper()
	dir := t.TempDir()
	cfg := config.Default()
	cfg.DataPath = filepath.Join(dir, "data")

	store := storage.NewStore(file.New(cfg.DataPath))
	store.Load(context.Background())

	ctx := cli.NewContext(cfg, filepath.Join(dir, "config", "config.yaml"), store)
	var out bytes.Buffer
	ctx.Out = &out
	ctx.Now = func() time.Time { return time.Date(2024, 6, 10, 10, 30, 0, 0, time.Local) }
	return ctx, &out
}

func appointment(id, date, slot string) models.Appointment {
	return models.Appointment{
		ID:        id,
		Date:      date,
		Time:      slot,
		Client:    models.Client{Name: "Ana", Phone: "11999990000", Address: "Rua X, 10"},
		Service:   "Corte de Cabelo",
		CreatedAt: time.Date(2024, 6, 10, 9, 0, 0, 0, time.UTC).UnixMilli(),
	}
}

func TestInitCmd(t *testing.T) {
	ctx, out := newTestContext(t)
	bg := context.Background()

	if err := (&InitCmd{}).Run(ctx); err != nil {
		t.Fatalf("InitCmd.Run() failed: %v", err)
	}
	if _, err := os.Stat(ctx.ConfigPath); err != nil {
		t.Errorf("config file not written: %v", err)
	}
	data, err := ctx.Store.Backend().Get(bg, ctx.Store.Key())
	if err != nil || string(data) != "[]" {
		t.Errorf("stored snapshot = %q, %v; want []", data, err)
	}
	if !strings.Contains(out.String(), "Initialized salonlux storage") {
		t.Errorf("unexpected output: %q", out.String())
	}

	if err := ctx.Store.Append(bg, appointment("a1", "2024-06-10", "14:00")); err != nil {
		t.Fatalf("Append failed: %v", err)
	}

	out.Reset()
	if err := (&InitCmd{}).Run(ctx); err != nil {
		t.Fatalf("second InitCmd.Run() failed: %v", err)
	}
	if ctx.Store.Len() != 1 || !strings.Contains(out.String(), "already initialized") {
		t.Errorf("init without --force must keep data, output %q", out.String())
	}

	if err := (&InitCmd{Force: true}).Run(ctx); err != nil {
		t.Fatalf("forced InitCmd.Run() failed: %v", err)
	}
	if ctx.Store.Len() != 0 {
		t.Errorf("store has %d appointments after forced init", ctx.Store.Len())
	}
	backups, err := ctx.BackupManager().ListBackups()
	if err != nil || len(backups) != 1 {
		t.Errorf("forced init should back up existing data, got %d backups (%v)", len(backups), err)
	}
}

func TestDoctorHealthy(t *testing.T) {
	ctx, out := newTestContext(t)
	bg := context.Background()
	if err := ctx.Store.Append(bg, appointment("a1", "2024-06-10", "14:00")); err != nil {
		t.Fatalf("Append failed: %v", err)
	}
	if _, err := ctx.BackupManager().CreateBackup(bg); err != nil {
		t.Fatalf("CreateBackup failed: %v", err)
	}

	if err := (&DoctorCmd{}).Run(ctx); err != nil {
		t.Fatalf("doctor failed on healthy data: %v\n%s", err, out.String())
	}
	if !strings.Contains(out.String(), "All diagnostics passed!") {
		t.Errorf("unexpected output:\n%s", out.String())
	}
}

func TestDoctorOrphanTimeIsWarning(t *testing.T) {
	ctx, out := newTestContext(t)
	if err := ctx.Store.Append(context.Background(), appointment("a1", "2024-06-10", "08:30")); err != nil {
		t.Fatalf("Append failed: %v", err)
	}

	if err := (&DoctorCmd{}).Run(ctx); err != nil {
		t.Fatalf("orphan times should only warn: %v", err)
	}
	if !strings.Contains(out.String(), "Appointment integrity: WARNING") ||
		!strings.Contains(out.String(), `times outside opening hours: a1 ("08:30")`) {
		t.Errorf("unexpected output:\n%s", out.String())
	}
}

func TestDoctorFailures(t *testing.T) {
	tests := []struct {
		name     string
		snapshot string
		want     string
	}{
		{
			name:     "malformed snapshot",
			snapshot: "{not json",
			want:     "Snapshot readable: FAIL",
		},
		{
			name: "double-booked slot",
			snapshot: `[{"id":"a1","date":"2024-06-10","time":"14:00","client":{"name":"Ana","phone":"1","address":"x"},"createdAt":1},
				{"id":"a2","date":"2024-06-10","time":"14:00","client":{"name":"Bia","phone":"2","address":"y"},"createdAt":2}]`,
			want: "double-booked slots: 2024-06-10 14:00",
		},
		{
			name: "duplicate id",
			snapshot: `[{"id":"a1","date":"2024-06-10","time":"14:00","client":{"name":"Ana","phone":"1","address":"x"},"createdAt":1},
				{"id":"a1","date":"2024-06-11","time":"15:00","client":{"name":"Bia","phone":"2","address":"y"},"createdAt":2}]`,
			want: "duplicate ids: a1",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx, out := newTestContext(t)
			if err := ctx.Store.Backend().Put(context.Background(), ctx.Store.Key(), []byte(tt.snapshot)); err != nil {
				t.Fatalf("Put failed: %v", err)
			}

			if err := (&DoctorCmd{}).Run(ctx); err == nil {
				t.Errorf("doctor should fail:\n%s", out.String())
			}
			if !strings.Contains(out.String(), tt.want) {
				t.Errorf("output missing %q:\n%s", tt.want, out.String())
			}
		})
	}
}

func TestDoctorInvalidConfig(t *testing.T) {
	ctx, out := newTestContext(t)
	ctx.Config.OpeningHour = 20

	if err := (&DoctorCmd{}).Run(ctx); err == nil {
		t.Error("doctor should fail on invalid config")
	}
	if !strings.Contains(out.String(), "Configuration: FAIL") {
		t.Errorf("unexpected output:\n%s", out.String())
	}
}

func TestKeyringCommands(t *testing.T) {
	gokeyring.MockInit()
	ctx, out := newTestContext(t)

	if err := (&KeyringSetCmd{Name: "advisor-key", Value: "secret-key"}).Run(ctx); err != nil {
		t.Fatalf("set advisor-key failed: %v", err)
	}
	if got, err := keyring.Get(keyring.AdvisorAPIKey); err != nil || got != "secret-key" {
		t.Errorf("stored key = %q, %v", got, err)
	}

	if err := (&KeyringSetCmd{Name: "db-connection", Value: "not-a-valid-connection-string"}).Run(ctx); err == nil {
		t.Error("invalid connection string should be rejected")
	}

	out.Reset()
	if err := (&KeyringSetCmd{Name: "db-connection", Value: "postgres://user:pw@localhost:5432/salonlux"}).Run(ctx); err != nil {
		t.Fatalf("connection string with password should be accepted: %v", err)
	}
	if !strings.Contains(out.String(), "embedded credentials") {
		t.Errorf("expected credentials warning, got %q", out.String())
	}

	if err := (&KeyringSetCmd{Name: "nope", Value: "x"}).Run(ctx); err == nil {
		t.Error("unknown secret name should be rejected")
	}

	if err := (&KeyringDeleteCmd{Name: "advisor-key"}).Run(ctx); err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	if err := (&KeyringDeleteCmd{Name: "advisor-key"}).Run(ctx); err == nil {
		t.Error("deleting a missing secret should fail")
	}

	out.Reset()
	if err := (&KeyringStatusCmd{}).Run(ctx); err != nil {
		t.Fatalf("status failed: %v", err)
	}
	if !strings.Contains(out.String(), "db-connection is stored") || !strings.Contains(out.String(), "advisor-key is not stored") {
		t.Errorf("unexpected status output:\n%s", out.String())
	}
}

type scriptedGenerator struct {
	calls []string
}

func (g *scriptedGenerator) Generate(_ context.Context, _ string, history []advisor.Turn, query string) (string, error) {
	g.calls = append(g.calls, query)
	return "resposta " + query, nil
}

func stubAdvisor(t *testing.T, gen advisor.Generator) {
	t.Helper()
	orig := newAdvisor
	newAdvisor = func(context.Context, string, string) (*advisor.Advisor, error) {
		return advisor.NewWithGenerator(gen), nil
	}
	t.Cleanup(func() { newAdvisor = orig })
}

func TestAskSingleQuery(t *testing.T) {
	gokeyring.MockInit()
	gen := &scriptedGenerator{}
	stubAdvisor(t, gen)
	ctx, out := newTestContext(t)

	if err := (&AskCmd{Query: []string{"qual", "corte?"}}).Run(ctx); err != nil {
		t.Fatalf("AskCmd.Run() failed: %v", err)
	}
	if strings.TrimSpace(out.String()) != "resposta qual corte?" {
		t.Errorf("output = %q", out.String())
	}
}

func TestAskInteractive(t *testing.T) {
	gokeyring.MockInit()
	gen := &scriptedGenerator{}
	stubAdvisor(t, gen)
	ctx, out := newTestContext(t)
	ctx.In = strings.NewReader("oi\n\ncoloração?\nsair\nignorado\n")

	if err := (&AskCmd{}).Run(ctx); err != nil {
		t.Fatalf("AskCmd.Run() failed: %v", err)
	}
	if len(gen.calls) != 2 {
		t.Errorf("advisor called %d times, want 2: %v", len(gen.calls), gen.calls)
	}
	if !strings.Contains(out.String(), "resposta coloração?") {
		t.Errorf("unexpected output:\n%s", out.String())
	}
}

func TestAskWithoutKey(t *testing.T) {
	gokeyring.MockInit()
	t.Setenv("API_KEY", "")
	ctx, out := newTestContext(t)

	if err := (&AskCmd{Query: []string{"oi"}}).Run(ctx); err != nil {
		t.Fatalf("AskCmd.Run() failed: %v", err)
	}
	if strings.TrimSpace(out.String()) != advisor.MsgMissingKey {
		t.Errorf("output = %q, want missing-key reply", out.String())
	}
}
