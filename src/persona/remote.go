package persona

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/go-github/v45/github"
	"github.com/xanzy/go-gitlab"
	"golang.org/x/oauth2"
)

// RemoteSource names where a persona pack directory should be pulled from.
// GitHubURL and GitLabURL name the repository to pull from, and Token
// authenticates the request; exactly one of the two URLs is expected to be
// populated.
type RemoteSource struct {
	GitHubURL string
	GitLabURL string
	Token     string
}

// SyncFromGitHub downloads every *.yml file under path in owner/repo's
// default branch into destDir, overwriting local copies of the same name.
// This repurposes the teacher's template-update source concept onto
// persona-pack distribution.
func SyncFromGitHub(ctx context.Context, owner, repo, path, token, destDir string) (int, error) {
	var httpClient *http.Client
	if token != "" {
		httpClient = oauth2.NewClient(ctx, oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token}))
	} else {
		httpClient = http.DefaultClient
	}
	client := github.NewClient(httpClient)

	_, contents, _, err := client.Repositories.GetContents(ctx, owner, repo, path, nil)
	if err != nil {
		return 0, fmt.Errorf("list persona pack contents: %w", err)
	}

	if err := os.MkdirAll(destDir, 0o755); err != nil {
		return 0, fmt.Errorf("create persona dir: %w", err)
	}

	count := 0
	for _, entry := range contents {
		if entry.GetType() != "file" || !strings.HasSuffix(entry.GetName(), ".yml") {
			continue
		}
		fileContent, _, _, err := client.Repositories.GetContents(ctx, owner, repo, entry.GetPath(), nil)
		if err != nil {
			return count, fmt.Errorf("fetch %s: %w", entry.GetPath(), err)
		}
		decoded, err := fileContent.GetContent()
		if err != nil {
			return count, fmt.Errorf("decode %s: %w", entry.GetPath(), err)
		}
		dest := filepath.Join(destDir, entry.GetName())
		if err := os.WriteFile(dest, []byte(decoded), 0o644); err != nil {
			return count, fmt.Errorf("write %s: %w", dest, err)
		}
		count++
	}
	return count, nil
}

// SyncFromGitLab mirrors SyncFromGitHub against a GitLab project.
func SyncFromGitLab(projectID, path, token, destDir string) (int, error) {
	client, err := gitlab.NewClient(token)
	if err != nil {
		return 0, fmt.Errorf("create gitlab client: %w", err)
	}

	tree, _, err := client.Repositories.ListTree(projectID, &gitlab.ListTreeOptions{Path: &path})
	if err != nil {
		return 0, fmt.Errorf("list persona pack tree: %w", err)
	}

	if err := os.MkdirAll(destDir, 0o755); err != nil {
		return 0, fmt.Errorf("create persona dir: %w", err)
	}

	count := 0
	for _, entry := range tree {
		if entry.Type != "blob" || !strings.HasSuffix(entry.Name, ".yml") {
			continue
		}
		raw, _, err := client.RepositoryFiles.GetRawFile(projectID, entry.Path, &gitlab.GetRawFileOptions{})
		if err != nil {
			return count, fmt.Errorf("fetch %s: %w", entry.Path, err)
		}
		dest := filepath.Join(destDir, entry.Name)
		if err := os.WriteFile(dest, raw, 0o644); err != nil {
			return count, fmt.Errorf("write %s: %w", dest, err)
		}
		count++
	}
	return count, nil
}
