package github

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strings"

	"github.com/gh-nvat/gitops-deployctl/src/pkg/models"
	"github.com/gh-nvat/gitops-deployctl/src/pkg/retry"
	"github.com/google/go-github/v66/github"
	log "github.com/sirupsen/logrus"
	"golang.org/x/oauth2"
)

var logger = log.WithField("package", "github")

// MetadataClient defines the GitHub API operations the deploy decision
// depends on.
type MetadataClient interface {
	// RepoVariable retrieves a repository Actions variable by name.
	// found is false when the variable does not exist.
	RepoVariable(ctx context.Context, owner, repo, name string) (value string, found bool, err error)
	// CollaboratorRole retrieves the collaborator role of a user on a repository.
	CollaboratorRole(ctx context.Context, owner, repo, username string) (models.Role, error)
}

// Client handles GitHub API interactions using go-github
type Client struct {
	client *github.Client
}

// Ensure Client implements MetadataClient
var _ MetadataClient = (*Client)(nil)

// NewClient creates a new GitHub client
func NewClient() (*Client, error) {
	token := os.Getenv("GH_TOKEN")
	if token == "" {
		token = os.Getenv("GITHUB_TOKEN")
	}
	if token == "" {
		return nil, fmt.Errorf("GitHub token not found. Set GH_TOKEN or GITHUB_TOKEN environment variable")
	}

	ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token})
	tc := oauth2.NewClient(context.Background(), ts)
	client := github.NewClient(tc)

	return &Client{
		client: client,
	}, nil
}

// ParseOwnerRepo splits an "owner/repo" string.
func ParseOwnerRepo(repo string) (string, string, error) {
	parts := strings.SplitN(repo, "/", 2)
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", fmt.Errorf("invalid repository format %q, expected owner/repo", repo)
	}
	return parts[0], parts[1], nil
}

// RepoVariable retrieves a repository Actions variable. A 404 is reported
// as not-found rather than an error: an absent variable is how a repo opts
// out of branch protection lists entirely.
func (c *Client) RepoVariable(ctx context.Context, owner, repo, name string) (string, bool, error) {
	var variable *github.ActionsVariable
	err := retry.Do(ctx, retry.DEFAULT_MAX_ATTEMPTS, retry.DEFAULT_INITIAL_DELAY, func() error {
		v, resp, err := c.client.Actions.GetRepoVariable(ctx, owner, repo, name)
		if err != nil {
			if resp != nil && resp.StatusCode == http.StatusNotFound {
				variable = nil
				return nil
			}
			return err
		}
		variable = v
		return nil
	})
	if err != nil {
		return "", false, fmt.Errorf("failed to get repository variable %q: %w", name, err)
	}
	if variable == nil {
		logger.WithField("owner", owner).WithField("repo", repo).WithField("name", name).
			Debug("Repository variable not found")
		return "", false, nil
	}
	return variable.Value, true, nil
}

// CollaboratorRole retrieves the collaborator role of a user. GitHub's
// legacy permission endpoint collapses "maintain" into "write"; the
// granular role_name field is preferred when present.
func (c *Client) CollaboratorRole(ctx context.Context, owner, repo, username string) (models.Role, error) {
	var perm *github.RepositoryPermissionLevel
	err := retry.Do(ctx, retry.DEFAULT_MAX_ATTEMPTS, retry.DEFAULT_INITIAL_DELAY, func() error {
		p, _, err := c.client.Repositories.GetPermissionLevel(ctx, owner, repo, username)
		if err != nil {
			var ghErr *github.ErrorResponse
			if errors.As(err, &ghErr) && ghErr.Response != nil &&
				ghErr.Response.StatusCode == http.StatusNotFound {
				// Not a collaborator at all; no point retrying.
				perm = nil
				return nil
			}
			return err
		}
		perm = p
		return nil
	})
	if err != nil {
		return models.ROLE_UNKNOWN, fmt.Errorf("failed to get permission level for %q: %w", username, err)
	}
	if perm == nil {
		return models.ROLE_NONE, nil
	}

	roleName := perm.GetUser().GetRoleName()
	if roleName == "" {
		roleName = perm.GetPermission()
	}
	return MapRole(roleName), nil
}

// MapRole normalizes a GitHub permission or role_name string into a Role.
func MapRole(s string) models.Role {
	switch strings.ToLower(s) {
	case "admin":
		return models.ROLE_ADMIN
	case "maintain":
		return models.ROLE_MAINTAIN
	case "write", "push":
		return models.ROLE_WRITE
	case "read", "pull", "triage":
		return models.ROLE_READ
	case "none", "":
		return models.ROLE_NONE
	default:
		logger.WithField("role", s).Warn("Unrecognized collaborator role, treating as none")
		return models.ROLE_NONE
	}
}
