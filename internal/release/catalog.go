// Package release resolves a version specifier against the published
// releases of cyclonedx-gomod.
//
// A Catalog lists release tags. A Resolver turns "latest" or a semantic
// version range into one concrete version, enforcing a minimum version floor.
package release

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
)

const (
	// DefaultAPIURL is the public GitHub REST API root.
	DefaultAPIURL = "https://api.github.com"
	// DefaultRepository is the owner/name of the released tool.
	DefaultRepository = "CycloneDX/cyclonedx-gomod"

	pageSize         = 100
	defaultUserAgent = "gomod-sbom/1.0"
)

// Catalog lists the tags of published releases.
type Catalog interface {
	// FetchLatest returns the tag of the most recent release.
	FetchLatest(ctx context.Context) (string, error)
	// FetchAll returns every release tag in the order the index gives them.
	FetchAll(ctx context.Context) ([]string, error)
}

// CatalogConfig configures a GitHubCatalog.
type CatalogConfig struct {
	APIURL     string // defaults to DefaultAPIURL
	Repository string // defaults to DefaultRepository
	Token      string // optional bearer token
	Client     *http.Client
}

// GitHubCatalog reads releases from the GitHub REST API.
type GitHubCatalog struct {
	client     *http.Client
	apiURL     string
	repository string
	token      string
}

// NewGitHubCatalog creates a catalog client. Zero config values take defaults.
func NewGitHubCatalog(cfg CatalogConfig) *GitHubCatalog {
	c := &GitHubCatalog{
		client:     cfg.Client,
		apiURL:     strings.TrimRight(cfg.APIURL, "/"),
		repository: cfg.Repository,
		token:      cfg.Token,
	}
	if c.client == nil {
		c.client = http.DefaultClient
	}
	if c.apiURL == "" {
		c.apiURL = DefaultAPIURL
	}
	if c.repository == "" {
		c.repository = DefaultRepository
	}
	return c
}

type githubRelease struct {
	TagName    string `json:"tag_name"`
	Draft      bool   `json:"draft"`
	Prerelease bool   `json:"prerelease"`
}

// FetchLatest implements Catalog.
func (c *GitHubCatalog) FetchLatest(ctx context.Context) (string, error) {
	url := fmt.Sprintf("%s/repos/%s/releases/latest", c.apiURL, c.repository)

	var rel githubRelease
	if _, err := c.get(ctx, url, &rel); err != nil {
		return "", err
	}
	if rel.TagName == "" {
		return "", fmt.Errorf("%w: latest release has no tag", ErrNotFound)
	}
	return rel.TagName, nil
}

// FetchAll implements Catalog. It follows Link rel="next" pagination and
// skips draft releases.
func (c *GitHubCatalog) FetchAll(ctx context.Context) ([]string, error) {
	url := fmt.Sprintf("%s/repos/%s/releases?per_page=%d", c.apiURL, c.repository, pageSize)
	seen := make(map[string]bool)

	var tags []string
	for url != "" {
		if seen[url] {
			return nil, fmt.Errorf("pagination loop at %s", url)
		}
		seen[url] = true

		var page []githubRelease
		header, err := c.get(ctx, url, &page)
		if err != nil {
			return nil, err
		}
		for _, rel := range page {
			if rel.Draft || rel.TagName == "" {
				continue
			}
			tags = append(tags, rel.TagName)
		}
		url = nextPageURL(header.Get("Link"))
	}

	return tags, nil
}

// get performs one GET and decodes a JSON body into out.
func (c *GitHubCatalog) get(ctx context.Context, url string, out any) (http.Header, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/vnd.github+json")
	req.Header.Set("X-GitHub-Api-Version", "2022-11-28")
	req.Header.Set("User-Agent", defaultUserAgent)
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("query release index: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, fmt.Errorf("%w for %s", ErrNotFound, c.repository)
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		return nil, &UnexpectedStatusError{
			URL:        url,
			StatusCode: resp.StatusCode,
			Message:    apiErrorMessage(resp.Body),
		}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return nil, fmt.Errorf("decode release index response: %w", err)
	}
	return resp.Header, nil
}

func apiErrorMessage(body io.Reader) string {
	var payload struct {
		Message string `json:"message"`
	}
	if err := json.NewDecoder(io.LimitReader(body, 64<<10)).Decode(&payload); err != nil {
		return ""
	}
	return payload.Message
}

// nextPageURL extracts the rel="next" target from an RFC 8288 Link header.
func nextPageURL(link string) string {
	for _, part := range strings.Split(link, ",") {
		segments := strings.Split(part, ";")
		if len(segments) < 2 {
			continue
		}
		target := strings.TrimSpace(segments[0])
		if !strings.HasPrefix(target, "<") || !strings.HasSuffix(target, ">") {
			continue
		}
		for _, param := range segments[1:] {
			param = strings.TrimSpace(param)
			if param == `rel="next"` || param == "rel=next" {
				return target[1 : len(target)-1]
			}
		}
	}
	return ""
}
