package release

import (
	"context"
	"fmt"
	"strings"

	"github.com/Masterminds/semver/v3"
	"go.uber.org/zap"
)

// MinimumVersion is the oldest release whose command-line flags match the
// arguments this tool passes.
const MinimumVersion = "v0.8.1"

// Latest is the specifier selecting the newest published release.
const Latest = "latest"

// Policy controls which resolved versions are acceptable.
type Policy struct {
	// MinimumVersion is the floor. Resolved versions below it are rejected.
	MinimumVersion string
	// CheckLatest applies the floor to "latest" as well as to ranges.
	CheckLatest bool
}

// DefaultPolicy enforces MinimumVersion on every specifier.
func DefaultPolicy() Policy {
	return Policy{MinimumVersion: MinimumVersion, CheckLatest: true}
}

// Resolver maps a version specifier to one concrete release version.
type Resolver struct {
	catalog Catalog
	floor   *semver.Version
	policy  Policy
	log     *zap.SugaredLogger
}

// NewResolver creates a resolver over catalog. A nil logger discards output.
func NewResolver(catalog Catalog, policy Policy, log *zap.SugaredLogger) (*Resolver, error) {
	floor, err := semver.NewVersion(policy.MinimumVersion)
	if err != nil {
		return nil, fmt.Errorf("invalid minimum version %q: %w", policy.MinimumVersion, err)
	}
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &Resolver{catalog: catalog, floor: floor, policy: policy, log: log}, nil
}

// IsLatest reports whether specifier selects the newest release.
func IsLatest(specifier string) bool {
	return strings.EqualFold(strings.TrimSpace(specifier), Latest)
}

// Resolve returns the version selected by specifier, without a leading "v".
func (r *Resolver) Resolve(ctx context.Context, specifier string) (string, error) {
	if IsLatest(specifier) {
		return r.resolveLatest(ctx)
	}
	return r.resolveRange(ctx, specifier)
}

func (r *Resolver) resolveLatest(ctx context.Context) (string, error) {
	r.log.Warnw("version \"latest\" resolves differently over time; pin a version range for reproducible SBOMs")

	tag, err := r.catalog.FetchLatest(ctx)
	if err != nil {
		return "", fmt.Errorf("fetch latest release: %w", err)
	}

	if r.policy.CheckLatest {
		v, err := semver.NewVersion(tag)
		if err != nil {
			return "", fmt.Errorf("%w: latest release tag %q is not a semantic version", ErrUnsupportedVersion, tag)
		}
		if err := r.checkFloor(tag, v); err != nil {
			return "", err
		}
	}

	r.log.Infow("resolved version", "specifier", Latest, "tag", tag)
	return strings.TrimPrefix(tag, "v"), nil
}

func (r *Resolver) resolveRange(ctx context.Context, specifier string) (string, error) {
	specifier = strings.TrimSpace(specifier)
	if specifier == "" {
		return "", fmt.Errorf("%w: empty specifier", ErrInvalidRange)
	}
	constraint, err := semver.NewConstraint(specifier)
	if err != nil {
		return "", fmt.Errorf("%w %q: %w", ErrInvalidRange, specifier, err)
	}

	tags, err := r.catalog.FetchAll(ctx)
	if err != nil {
		return "", fmt.Errorf("fetch releases: %w", err)
	}

	tag, v := selectMax(constraint, tags)
	if v == nil {
		return "", fmt.Errorf("%w %q among %d releases", ErrNoMatch, specifier, len(tags))
	}
	if err := r.checkFloor(tag, v); err != nil {
		return "", err
	}

	r.log.Infow("resolved version", "specifier", specifier, "tag", tag)
	return strings.TrimPrefix(tag, "v"), nil
}

func (r *Resolver) checkFloor(tag string, v *semver.Version) error {
	if v.LessThan(r.floor) {
		return fmt.Errorf("%w: %s is older than minimum %s", ErrUnsupportedVersion, tag, r.policy.MinimumVersion)
	}
	return nil
}

// selectMax returns the highest tag satisfying constraint. Tags that are
// not semantic versions are ignored.
func selectMax(constraint *semver.Constraints, tags []string) (string, *semver.Version) {
	var bestTag string
	var best *semver.Version

	for _, tag := range tags {
		v, err := semver.NewVersion(tag)
		if err != nil {
			continue
		}
		if !constraint.Check(v) {
			continue
		}
		if best == nil || v.GreaterThan(best) {
			best = v
			bestTag = tag
		}
	}

	return bestTag, best
}
