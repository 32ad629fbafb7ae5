package cli

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andrescamacho/solarion-go/internal/application/completion"
	"github.com/andrescamacho/solarion-go/internal/domain/timer"
	"github.com/andrescamacho/solarion-go/internal/infrastructure/config"
)

func TestParseKinds(t *testing.T) {
	kinds, err := parseKinds([]string{"construction, upgrade", "movement"})
	require.NoError(t, err)
	assert.Equal(t, []timer.Kind{timer.KindConstruction, timer.KindUpgrade, timer.KindMovement}, kinds)

	kinds, err = parseKinds(nil)
	require.NoError(t, err)
	assert.Empty(t, kinds)

	_, err = parseKinds([]string{"warp"})
	assert.Error(t, err)
}

func TestMaskPassword(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"with password", "postgres://solarion:secret@db:5432/solarion", "postgres://solarion:****@db:5432/solarion"},
		{"user only", "postgres://solarion@db/solarion", "postgres://solarion@db/solarion"},
		{"no credentials", "postgres://db/solarion", "postgres://db/solarion"},
		{"empty", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, maskPassword(tt.in))
		})
	}
}

func TestMaskConfig(t *testing.T) {
	cfg := config.Config{}
	cfg.Database.Password = "secret"
	cfg.Database.URL = "postgres://u:secret@h/db"
	cfg.HTTP.CronToken = "token"

	masked := maskConfig(cfg)
	assert.Equal(t, "****", masked.Database.Password)
	assert.Equal(t, "postgres://u:****@h/db", masked.Database.URL)
	assert.Equal(t, "****", masked.HTTP.CronToken)
	assert.Equal(t, "secret", cfg.Database.Password, "input left untouched")
}

func TestTreeFormatter_FormatReport(t *testing.T) {
	f := NewTreeFormatter(false, false)
	report := &completion.SweepReport{
		LockAcquired: true,
		StartedAt:    time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
		Duration:     1500 * time.Millisecond,
		Kinds: []completion.KindReport{
			{Kind: timer.KindConstruction, Processed: 2},
			{Kind: timer.KindMovement, Processed: 1, Errored: 1},
		},
		Processed: 3,
		Errored:   1,
	}

	out := f.FormatReport(report)
	assert.Contains(t, out, "[!] Sweep 2026-03-01 12:00:00 (1.5s)")
	assert.Contains(t, out, "├── [✓] construction")
	assert.Contains(t, out, "└── [x] movement")
	assert.Contains(t, out, "processed=1 errored=1 skipped=0")
	assert.Equal(t, "Sweep: 3 processed, 1 errored, 0 skipped across 2 kinds", f.FormatSummary(report))
}

func TestTreeFormatter_LockHeld(t *testing.T) {
	f := NewTreeFormatter(false, false)
	report := &completion.SweepReport{LockAcquired: false}

	assert.Contains(t, f.FormatReport(report), "lock held by another run")
	assert.Equal(t, "Sweep skipped: lock held", f.FormatSummary(report))
	assert.Equal(t, "(no sweep)", f.FormatReport(nil))
}
