package config

import (
	"testing"
	"time"

	"hht-term/pkg/serial"
)

func testConfig() serial.Config {
	return serial.Config{
		Port:     "/dev/ttyUSB0",
		BaudRate: 115200,
		DataBits: 8,
		StopBits: 1,
		Parity:   "N",
		Timeout:  20 * time.Millisecond,
	}
}

func TestFileManager_SaveAndLoad(t *testing.T) {
	fm := NewFileManager(t.TempDir())

	if err := fm.SaveProfile("hht", testConfig()); err != nil {
		t.Fatalf("SaveProfile() error = %v", err)
	}

	got, err := fm.LoadProfile("hht")
	if err != nil {
		t.Fatalf("LoadProfile() error = %v", err)
	}
	if got != testConfig() {
		t.Errorf("LoadProfile() = %+v, want %+v", got, testConfig())
	}
}

func TestFileManager_SaveValidates(t *testing.T) {
	fm := NewFileManager(t.TempDir())

	tests := []struct {
		name    string
		profile string
		config  serial.Config
	}{
		{"empty name", "", testConfig()},
		{"invalid config", "bad", serial.Config{Port: "", BaudRate: 115200}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := fm.SaveProfile(tt.profile, tt.config); err == nil {
				t.Error("SaveProfile() did not fail")
			}
		})
	}
}

func TestFileManager_LoadMissing(t *testing.T) {
	fm := NewFileManager(t.TempDir())

	if _, err := fm.LoadProfile("nope"); err == nil {
		t.Error("LoadProfile() on missing profile did not fail")
	}
}

func TestFileManager_ListProfiles(t *testing.T) {
	fm := NewFileManager(t.TempDir())

	profiles, err := fm.ListProfiles()
	if err != nil {
		t.Fatalf("ListProfiles() on empty store error = %v", err)
	}
	if len(profiles) != 0 {
		t.Errorf("ListProfiles() on empty store returned %d profiles", len(profiles))
	}

	fm.SaveProfile("a", testConfig())
	fm.SaveProfile("b", testConfig())

	profiles, err = fm.ListProfiles()
	if err != nil {
		t.Fatalf("ListProfiles() error = %v", err)
	}
	if len(profiles) != 2 {
		t.Errorf("ListProfiles() returned %d profiles, want 2", len(profiles))
	}
	for _, p := range profiles {
		if p.CreatedAt.IsZero() {
			t.Errorf("profile %q has zero CreatedAt", p.Name)
		}
	}
}

func TestFileManager_DeleteProfile(t *testing.T) {
	fm := NewFileManager(t.TempDir())
	fm.SaveProfile("hht", testConfig())

	if err := fm.DeleteProfile("hht"); err != nil {
		t.Fatalf("DeleteProfile() error = %v", err)
	}
	if fm.ProfileExists("hht") {
		t.Error("ProfileExists() = true after deletion")
	}
	if err := fm.DeleteProfile("hht"); err == nil {
		t.Error("deleting a missing profile did not fail")
	}
}

func TestFileManager_OverwritePreservesCreatedAt(t *testing.T) {
	fm := NewFileManager(t.TempDir())
	fm.SaveProfile("hht", testConfig())

	before, _ := fm.ListProfiles()

	updated := testConfig()
	updated.BaudRate = 9600
	if err := fm.SaveProfile("hht", updated); err != nil {
		t.Fatalf("SaveProfile() overwrite error = %v", err)
	}

	after, _ := fm.ListProfiles()
	if !after[0].CreatedAt.Equal(before[0].CreatedAt) {
		t.Error("overwrite changed CreatedAt")
	}
	if after[0].Config.BaudRate != 9600 {
		t.Errorf("overwrite kept old baud rate: %d", after[0].Config.BaudRate)
	}
}

func TestProfileInfo_Validate(t *testing.T) {
	info := ProfileInfo{Name: "hht", Config: testConfig(), CreatedAt: time.Now()}
	if err := info.Validate(); err != nil {
		t.Errorf("Validate() on valid profile = %v", err)
	}

	info.Name = ""
	if err := info.Validate(); err == nil {
		t.Error("Validate() with empty name did not fail")
	}
}
