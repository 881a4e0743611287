package config

import (
	"encoding/json"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.PointCount == nil || *cfg.PointCount != 6000 {
		t.Errorf("Expected PointCount 6000, got %v", cfg.PointCount)
	}
	if cfg.Threshold == nil || *cfg.Threshold != 35 {
		t.Errorf("Expected Threshold 35, got %v", cfg.Threshold)
	}
	if cfg.DiskRadius == nil || *cfg.DiskRadius != 550 {
		t.Errorf("Expected DiskRadius 550, got %v", cfg.DiskRadius)
	}
	if cfg.AnchorPolicy == nil || *cfg.AnchorPolicy != "first" {
		t.Errorf("Expected AnchorPolicy 'first', got %v", cfg.AnchorPolicy)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("DefaultConfig should validate, got %v", err)
	}
}

func TestEmptyConfigGetters(t *testing.T) {
	cfg := EmptyConfig()

	if cfg.GetPointCount() != DefaultPointCount {
		t.Errorf("GetPointCount() = %d, want %d", cfg.GetPointCount(), DefaultPointCount)
	}
	if cfg.GetThreshold() != DefaultThreshold {
		t.Errorf("GetThreshold() = %f, want %f", cfg.GetThreshold(), DefaultThreshold)
	}
	if cfg.GetDiskRadius() != DefaultDiskRadius {
		t.Errorf("GetDiskRadius() = %f, want %f", cfg.GetDiskRadius(), DefaultDiskRadius)
	}
	if cfg.GetSeed() != DefaultSeed {
		t.Errorf("GetSeed() = %d, want %d", cfg.GetSeed(), DefaultSeed)
	}
	if cfg.GetAnchorPolicy() != DefaultAnchorPolicy {
		t.Errorf("GetAnchorPolicy() = %q, want %q", cfg.GetAnchorPolicy(), DefaultAnchorPolicy)
	}
	if cfg.GetVerbose() {
		t.Error("GetVerbose() = true, want false")
	}
}

func TestLoadConfig(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "test_config.json")

	testJSON := `{
  "point_count": 100,
  "threshold": 2.5,
  "anchor_policy": "random",
  "seed": 99
}`
	if err := os.WriteFile(configPath, []byte(testJSON), 0644); err != nil {
		t.Fatalf("Failed to write test config: %v", err)
	}

	cfg, err := LoadConfig(configPath)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}

	if cfg.GetPointCount() != 100 {
		t.Errorf("GetPointCount() = %d, want 100", cfg.GetPointCount())
	}
	if cfg.GetThreshold() != 2.5 {
		t.Errorf("GetThreshold() = %f, want 2.5", cfg.GetThreshold())
	}
	if cfg.GetAnchorPolicy() != "random" {
		t.Errorf("GetAnchorPolicy() = %q, want random", cfg.GetAnchorPolicy())
	}
	if cfg.GetSeed() != 99 {
		t.Errorf("GetSeed() = %d, want 99", cfg.GetSeed())
	}
	// Omitted field keeps its default.
	if cfg.GetDiskRadius() != DefaultDiskRadius {
		t.Errorf("GetDiskRadius() = %f, want default %f", cfg.GetDiskRadius(), DefaultDiskRadius)
	}
}

func TestLoadConfig_Errors(t *testing.T) {
	tmpDir := t.TempDir()

	write := func(name, content string) string {
		path := filepath.Join(tmpDir, name)
		if err := os.WriteFile(path, []byte(content), 0644); err != nil {
			t.Fatalf("Failed to write %s: %v", name, err)
		}
		return path
	}

	tests := []struct {
		name    string
		path    string
		wantErr string
	}{
		{name: "wrong extension", path: write("cfg.yaml", "{}"), wantErr: ".json extension"},
		{name: "missing file", path: filepath.Join(tmpDir, "nope.json"), wantErr: "failed to stat"},
		{name: "bad json", path: write("bad.json", "{"), wantErr: "failed to parse"},
		{name: "zero threshold", path: write("zero.json", `{"threshold": 0}`), wantErr: "threshold must be positive"},
		{name: "negative count", path: write("count.json", `{"point_count": -1}`), wantErr: "point_count"},
		{name: "zero radius", path: write("radius.json", `{"disk_radius": 0}`), wantErr: "disk_radius"},
		{name: "unknown policy", path: write("policy.json", `{"anchor_policy": "nearest"}`), wantErr: "unknown anchor policy"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadConfig(tt.path)
			if err == nil {
				t.Fatal("expected error, got nil")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error %q does not contain %q", err, tt.wantErr)
			}
		})
	}
}

func TestLoadConfig_TooLarge(t *testing.T) {
	path := filepath.Join(t.TempDir(), "big.json")
	data := make([]byte, 1024*1024+1)
	for i := range data {
		data[i] = ' '
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatalf("Failed to write big config: %v", err)
	}
	if _, err := LoadConfig(path); err == nil || !strings.Contains(err.Error(), "too large") {
		t.Errorf("expected too large error, got %v", err)
	}
}

func TestMustLoadDefaultConfig(t *testing.T) {
	cfg := MustLoadDefaultConfig()
	if cfg.GetThreshold() != 35 {
		t.Errorf("defaults file threshold = %f, want 35", cfg.GetThreshold())
	}
	if cfg.GetPointCount() != 6000 {
		t.Errorf("defaults file point_count = %d, want 6000", cfg.GetPointCount())
	}
}

func TestMerge(t *testing.T) {
	base := DefaultConfig()
	override := EmptyConfig()
	override.Threshold = ptrFloat64(math.Inf(1))
	override.Verbose = ptrBool(true)

	base.Merge(override)
	base.Merge(nil)

	if !math.IsInf(base.GetThreshold(), 1) {
		t.Errorf("threshold not overridden: %f", base.GetThreshold())
	}
	if !base.GetVerbose() {
		t.Error("verbose not overridden")
	}
	if base.GetPointCount() != DefaultPointCount {
		t.Errorf("point count should be untouched, got %d", base.GetPointCount())
	}
	if err := base.Validate(); err != nil {
		t.Errorf("infinite threshold should validate, got %v", err)
	}
}

func TestConfigReducer(t *testing.T) {
	cfg := EmptyConfig()
	cfg.AnchorPolicy = ptrString("farthest")
	cfg.Threshold = ptrFloat64(4)

	r, err := cfg.Reducer()
	if err != nil {
		t.Fatalf("Reducer() failed: %v", err)
	}
	if r.Selector().Name() != "farthest" {
		t.Errorf("policy = %q, want farthest", r.Selector().Name())
	}
	if r.GetParams().Threshold != 4 {
		t.Errorf("threshold = %f, want 4", r.GetParams().Threshold)
	}

	cfg.AnchorPolicy = ptrString("bogus")
	if _, err := cfg.Reducer(); err == nil {
		t.Error("expected error for bogus policy")
	}
}

func TestConfigJSON_InfiniteThreshold(t *testing.T) {
	cfg := DefaultConfig()
	inf := math.Inf(1)
	cfg.Threshold = &inf

	data, err := json.Marshal(cfg)
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}
	if !strings.Contains(string(data), `"threshold":"Inf"`) {
		t.Errorf("expected threshold encoded as \"Inf\", got %s", data)
	}

	back := EmptyConfig()
	if err := json.Unmarshal(data, back); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}
	if !math.IsInf(back.GetThreshold(), 1) {
		t.Errorf("GetThreshold() = %v, want +Inf", back.GetThreshold())
	}
	if back.GetPointCount() != DefaultPointCount || back.GetAnchorPolicy() != DefaultAnchorPolicy {
		t.Errorf("other fields lost in round trip: %s", data)
	}
}

func TestConfigJSON_FiniteThresholdStaysNumeric(t *testing.T) {
	data, err := json.Marshal(DefaultConfig())
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}
	if !strings.Contains(string(data), `"threshold":35`) {
		t.Errorf("expected numeric threshold, got %s", data)
	}

	data, err = json.Marshal(EmptyConfig())
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}
	if string(data) != "{}" {
		t.Errorf("EmptyConfig encoded as %s, want {}", data)
	}
}

func TestLoadConfig_InfiniteThresholdString(t *testing.T) {
	path := filepath.Join(t.TempDir(), "inf.json")
	if err := os.WriteFile(path, []byte(`{"threshold": "Inf", "seed": 9}`), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if !math.IsInf(cfg.GetThreshold(), 1) {
		t.Errorf("GetThreshold() = %v, want +Inf", cfg.GetThreshold())
	}
	if cfg.GetSeed() != 9 {
		t.Errorf("GetSeed() = %d, want 9", cfg.GetSeed())
	}
}
