package profile

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/matheus3301/campchat/internal/config"
)

func TestValidateName(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"valid simple", "main", false},
		{"valid with numbers", "staging2", false},
		{"valid with hyphen", "shop-a", false},
		{"valid with underscore", "shop_a", false},
		{"valid max length", strings.Repeat("a", 64), false},
		{"empty", "", true},
		{"uppercase", "Main", true},
		{"space", "my profile", true},
		{"dot", "../etc", true},
		{"too long", strings.Repeat("a", 65), true},
		{"slash", "a/b", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateName(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateName(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
		})
	}
}

func TestPaths(t *testing.T) {
	home := t.TempDir()
	t.Setenv(HomeEnv, home)

	if got, want := Dir("main"), filepath.Join(home, "profiles", "main"); got != want {
		t.Errorf("Dir(main) = %q, want %q", got, want)
	}
	if got := LogPath("main", "campchat"); !strings.HasSuffix(got, filepath.Join("profiles", "main", "logs", "campchat.log")) {
		t.Errorf("LogPath = %q", got)
	}
	if got := OriginDBPath("dev"); !strings.HasSuffix(got, filepath.Join("profiles", "dev", "origin", "origin.db")) {
		t.Errorf("OriginDBPath = %q", got)
	}
	if got := ConfigPath(); got != filepath.Join(home, "config.toml") {
		t.Errorf("ConfigPath = %q", got)
	}
}

func TestEnsureDir(t *testing.T) {
	t.Setenv(HomeEnv, t.TempDir())
	if err := EnsureDir("test"); err != nil {
		t.Fatal(err)
	}
	info, err := os.Stat(LogDir("test"))
	if err != nil {
		t.Fatalf("log dir not created: %v", err)
	}
	if !info.IsDir() || info.Mode().Perm() != 0700 {
		t.Errorf("log dir mode = %v", info.Mode())
	}
}

func TestResolve(t *testing.T) {
	cfg := &config.Config{DefaultProfile: "work"}
	tests := []struct {
		name string
		flag string
		cfg  *config.Config
		want string
	}{
		{"flag wins", "cli", cfg, "cli"},
		{"config default", "", cfg, "work"},
		{"fallback", "", &config.Config{}, DefaultName},
		{"no config", "", nil, DefaultName},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Resolve(tt.flag, tt.cfg); got != tt.want {
				t.Errorf("Resolve() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestLoad(t *testing.T) {
	t.Setenv(HomeEnv, t.TempDir())
	t.Setenv("CAMPCHAT_TOKEN", "from-env")
	err := config.Save(ConfigPath(), &config.Config{
		DefaultProfile: "shop",
		Profiles: map[string]config.Profile{
			"shop": {OriginURL: "http://127.0.0.1:8080", AdminID: "a1", CampaignID: "c1"},
		},
	})
	if err != nil {
		t.Fatal(err)
	}

	active, err := Load("")
	if err != nil {
		t.Fatal(err)
	}
	if active.Name != "shop" || active.Settings.AdminID != "a1" || active.Settings.Token != "from-env" {
		t.Errorf("Load() = %+v", active)
	}

	if _, err := Load("Bad Name"); err == nil {
		t.Error("Load() should reject an invalid profile name")
	}
}
