package release

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

// fakeCatalog is an in-memory Catalog that counts calls.
type fakeCatalog struct {
	latest    string
	tags      []string
	err       error
	latestHit int
	allHit    int
}

func (f *fakeCatalog) FetchLatest(context.Context) (string, error) {
	f.latestHit++
	if f.err != nil {
		return "", f.err
	}
	return f.latest, nil
}

func (f *fakeCatalog) FetchAll(context.Context) ([]string, error) {
	f.allHit++
	if f.err != nil {
		return nil, f.err
	}
	return f.tags, nil
}

func newTestResolver(t *testing.T, catalog Catalog, policy Policy) *Resolver {
	t.Helper()

	r, err := NewResolver(catalog, policy, nil)
	if err != nil {
		t.Fatalf("NewResolver() error = %v", err)
	}
	return r
}

func TestResolver_Range(t *testing.T) {
	tags := []string{"v0.8.0", "v0.8.1", "v0.9.0", "v1.0.0", "v1.2.0", "v1.3.0-rc.1", "nightly", "v1.1.5"}

	tests := []struct {
		name      string
		specifier string
		want      string
		wantErr   error
	}{
		{"caret excludes next minor below 1.0", "^0.8.0", "0.8.1", nil},
		{"caret major", "^1.0.0", "1.2.0", nil},
		{"tilde", "~1.1", "1.1.5", nil},
		{"exact", "1.0.0", "1.0.0", nil},
		{"wildcard", "*", "1.2.0", nil},
		{"explicit prerelease range", ">=1.3.0-rc.0", "1.3.0-rc.1", nil},
		{"or ranges", "0.9.x || 1.0.x", "1.0.0", nil},
		{"whitespace trimmed", "  >=1.1.0 <1.2.0 ", "1.1.5", nil},
		{"no match", ">=2.0.0", "", ErrNoMatch},
		{"below floor", "0.8.0", "", ErrUnsupportedVersion},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			catalog := &fakeCatalog{tags: tags}
			r := newTestResolver(t, catalog, DefaultPolicy())

			got, err := r.Resolve(context.Background(), tt.specifier)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("Resolve(%q) error = %v, want %v", tt.specifier, err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("Resolve(%q) error = %v", tt.specifier, err)
			}
			if got != tt.want {
				t.Errorf("Resolve(%q) = %q, want %q", tt.specifier, got, tt.want)
			}
			if catalog.latestHit != 0 {
				t.Errorf("range path called FetchLatest %d times", catalog.latestHit)
			}
		})
	}
}

func TestResolver_FloorRejectsOnlyCandidate(t *testing.T) {
	r := newTestResolver(t, &fakeCatalog{tags: []string{"v0.7.0"}}, DefaultPolicy())

	_, err := r.Resolve(context.Background(), ">=0.1.0")
	if !errors.Is(err, ErrUnsupportedVersion) {
		t.Fatalf("Resolve() error = %v, want ErrUnsupportedVersion", err)
	}
}

func TestResolver_InvalidRangeMakesNoNetworkCall(t *testing.T) {
	for _, specifier := range []string{"not-a-range", ">=>1.0", "", "   "} {
		t.Run(specifier, func(t *testing.T) {
			catalog := &fakeCatalog{tags: []string{"v1.0.0"}}
			r := newTestResolver(t, catalog, DefaultPolicy())

			_, err := r.Resolve(context.Background(), specifier)
			if !errors.Is(err, ErrInvalidRange) {
				t.Fatalf("Resolve(%q) error = %v, want ErrInvalidRange", specifier, err)
			}
			if catalog.allHit != 0 || catalog.latestHit != 0 {
				t.Errorf("catalog called (all=%d latest=%d), want no calls", catalog.allHit, catalog.latestHit)
			}
		})
	}
}

func TestResolver_Latest(t *testing.T) {
	for _, specifier := range []string{"latest", "LATEST", "Latest", " latest "} {
		t.Run(specifier, func(t *testing.T) {
			catalog := &fakeCatalog{latest: "v1.4.0"}
			r := newTestResolver(t, catalog, DefaultPolicy())

			got, err := r.Resolve(context.Background(), specifier)
			if err != nil {
				t.Fatalf("Resolve(%q) error = %v", specifier, err)
			}
			if got != "1.4.0" {
				t.Errorf("Resolve(%q) = %q, want 1.4.0", specifier, got)
			}
			if catalog.allHit != 0 {
				t.Errorf("latest path called FetchAll %d times", catalog.allHit)
			}
		})
	}
}

func TestResolver_LatestWarnsAboutPinning(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	r, err := NewResolver(&fakeCatalog{latest: "v1.4.0"}, DefaultPolicy(), zap.New(core).Sugar())
	if err != nil {
		t.Fatal(err)
	}

	if _, err := r.Resolve(context.Background(), "latest"); err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}

	if n := logs.FilterLevelExact(zapcore.WarnLevel).Len(); n != 1 {
		t.Errorf("warnings = %d, want 1", n)
	}
}

func TestResolver_LatestFloorPolicy(t *testing.T) {
	catalog := &fakeCatalog{latest: "v0.7.0", tags: []string{"v0.7.0"}}

	t.Run("floor applied", func(t *testing.T) {
		r := newTestResolver(t, catalog, DefaultPolicy())
		_, err := r.Resolve(context.Background(), "latest")
		if !errors.Is(err, ErrUnsupportedVersion) {
			t.Fatalf("Resolve() error = %v, want ErrUnsupportedVersion", err)
		}
	})

	t.Run("floor skipped for latest", func(t *testing.T) {
		r := newTestResolver(t, catalog, Policy{MinimumVersion: MinimumVersion, CheckLatest: false})
		got, err := r.Resolve(context.Background(), "latest")
		if err != nil {
			t.Fatalf("Resolve() error = %v", err)
		}
		if got != "0.7.0" {
			t.Errorf("Resolve() = %q, want 0.7.0", got)
		}

		// ranges are always floor-checked
		_, err = r.Resolve(context.Background(), "*")
		if !errors.Is(err, ErrUnsupportedVersion) {
			t.Errorf("range Resolve() error = %v, want ErrUnsupportedVersion", err)
		}
	})
}

func TestResolver_LatestNonSemverTag(t *testing.T) {
	catalog := &fakeCatalog{latest: "nightly"}

	_, err := newTestResolver(t, catalog, DefaultPolicy()).Resolve(context.Background(), "latest")
	if !errors.Is(err, ErrUnsupportedVersion) {
		t.Errorf("Resolve() error = %v, want ErrUnsupportedVersion", err)
	}
}

func TestResolver_PropagatesCatalogErrors(t *testing.T) {
	for _, specifier := range []string{"latest", "^1.0.0"} {
		catalog := &fakeCatalog{err: ErrNotFound}
		_, err := newTestResolver(t, catalog, DefaultPolicy()).Resolve(context.Background(), specifier)
		if !errors.Is(err, ErrNotFound) {
			t.Errorf("Resolve(%q) error = %v, want ErrNotFound", specifier, err)
		}
	}
}

func TestResolver_EmptyCatalogIsNoMatch(t *testing.T) {
	_, err := newTestResolver(t, &fakeCatalog{}, DefaultPolicy()).Resolve(context.Background(), "*")
	if !errors.Is(err, ErrNoMatch) {
		t.Errorf("Resolve() error = %v, want ErrNoMatch", err)
	}
}

func TestNewResolver_InvalidFloor(t *testing.T) {
	if _, err := NewResolver(&fakeCatalog{}, Policy{MinimumVersion: "bogus"}, nil); err == nil {
		t.Error("expected error for invalid minimum version")
	}
}
