package platform

import (
	"context"
	"errors"
	"runtime"
	"testing"
)

func TestRealDetector_Detect(t *testing.T) {
	info, err := NewDetector().Detect(context.Background())
	if err != nil {
		t.Fatalf("Detect() error = %v", err)
	}

	if info.GOOS != runtime.GOOS {
		t.Errorf("GOOS = %v, want %v", info.GOOS, runtime.GOOS)
	}
	if info.GOARCH != runtime.GOARCH {
		t.Errorf("GOARCH = %v, want %v", info.GOARCH, runtime.GOARCH)
	}
	if info.OS != hostOS(runtime.GOOS) {
		t.Errorf("OS = %v, want %v", info.OS, hostOS(runtime.GOOS))
	}
	if info.Arch != hostArch(runtime.GOARCH) {
		t.Errorf("Arch = %v, want %v", info.Arch, hostArch(runtime.GOARCH))
	}

	if info.DistroID != "" && info.Family == "" {
		t.Error("Family should be set when DistroID is set")
	}
	if runtime.GOOS != "linux" && info.GetDistro() != nil {
		t.Errorf("GetDistro() = %+v, want nil on %s", info.GetDistro(), runtime.GOOS)
	}
}

func TestRealDetector_Windows(t *testing.T) {
	d := &RealDetector{goos: "windows", goarch: "amd64"}

	info, err := d.Detect(context.Background())
	if err != nil {
		t.Fatalf("Detect() error = %v", err)
	}

	if info.OS != "win32" || info.Arch != "x64" {
		t.Errorf("Detect() = %s, want win32/x64", info)
	}
	if !info.IsWindows() {
		t.Error("IsWindows() = false, want true")
	}
	if info.GetDistro() != nil {
		t.Error("GetDistro() should be nil on windows")
	}
}

func TestInfo_GetDistro(t *testing.T) {
	info := &Info{OS: "linux", Arch: "x64", DistroID: "ubuntu", Family: "debian", DistroVersion: "22.04"}

	got := info.GetDistro()
	if got == nil {
		t.Fatal("GetDistro() = nil")
	}
	if got.ID != "ubuntu" || got.Family != "debian" || got.Version != "22.04" {
		t.Errorf("GetDistro() = %+v", got)
	}

	if (&Info{OS: "linux", Arch: "x64"}).GetDistro() != nil {
		t.Error("GetDistro() should be nil without distro info")
	}
}

func TestStaticDetector(t *testing.T) {
	want := &Info{OS: "darwin", Arch: "arm64"}
	got, err := StaticDetector{Info: want}.Detect(context.Background())
	if err != nil || got != want {
		t.Errorf("Detect() = %v, %v", got, err)
	}

	sentinel := errors.New("boom")
	if _, err := (StaticDetector{Err: sentinel}).Detect(context.Background()); !errors.Is(err, sentinel) {
		t.Errorf("Detect() error = %v, want %v", err, sentinel)
	}
}
