package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/nstehr/colony/colony-core/model"
	"github.com/nstehr/colony/colony-core/rules"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "colony.yaml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestDefaultIsValid(t *testing.T) {
	if err := Default().Validate(); err != nil {
		t.Errorf("default config invalid: %v", err)
	}
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if diff := cmp.Diff(Default(), cfg); diff != "" {
		t.Errorf("config mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadOverridesDefaults(t *testing.T) {
	path := writeConfig(t, `
log:
  level: debug
  format: json
store:
  driver: memory
behavior:
  rally: {x: 12, y: 30}
population:
  foundational: mover
  roles:
    - role: hauler
      count: 2
      priority: 500
    - role: upgrader
      count: 99
      priority: 10
      maxRepeats: 4
      when: ControllerLevel() < 8
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	want := rules.Population{
		Foundational: model.RoleHauler,
		Roles: []rules.Quota{
			{Role: model.RoleHauler, Count: 2, Priority: 500},
			{Role: model.RoleUpgrader, Count: 20, Priority: 10, MaxRepeats: 4, When: "ControllerLevel() < 8"},
		},
	}
	if diff := cmp.Diff(want, cfg.Population); diff != "" {
		t.Errorf("population mismatch (-want +got):\n%s", diff)
	}
	if cfg.Log.Format != "json" || cfg.Store.Driver != "memory" {
		t.Errorf("log/store = %+v %+v", cfg.Log, cfg.Store)
	}
	if cfg.Listen.Socket != "/tmp/colony.sock" {
		t.Errorf("socket = %q, want the default kept", cfg.Listen.Socket)
	}
	opts := cfg.Behavior.Options()
	if opts.Rally == nil || opts.Rally.X != 12 || opts.Rally.Y != 30 {
		t.Errorf("rally = %+v, want (12,30)", opts.Rally)
	}
	if _, err := rules.NewScheduler(cfg.Population.Compile(), cfg.Population.Foundational); err != nil {
		t.Errorf("loaded population does not compile: %v", err)
	}
}

func TestLoadRejectsInvalid(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{"bad yaml", "log: [", "parse config"},
		{"bad level", "log: {level: loud}", "invalid log level"},
		{"bad format", "log: {format: xml}", "invalid log format"},
		{"bad driver", "store: {driver: postgres}", "invalid store driver"},
		{"sqlite without path", "store: {driver: sqlite, path: ''}", "needs a path"},
		{"journal without dir", "journal: {enabled: true, dir: ''}", "without a directory"},
		{"no listeners", "listen: {socket: ''}", "nothing to listen on"},
		{"unknown role", "population: {roles: [{role: soldier, count: 1}]}", "parse config"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tc.body))
			if err == nil || !strings.Contains(err.Error(), tc.want) {
				t.Errorf("err = %v, want %q", err, tc.want)
			}
		})
	}
}
