package gogit

import (
	"fmt"
	"os"
	"strings"

	"github.com/go-git/go-git/v5/plumbing/transport"
	"github.com/go-git/go-git/v5/plumbing/transport/http"
)

const (
	// EnvironmentGitUsername overrides the HTTPS basic-auth username.
	EnvironmentGitUsername = "GITFLEET_GIT_USERNAME"
	// EnvironmentGitToken is the preferred token variable.
	EnvironmentGitToken = "GITFLEET_GIT_TOKEN"
	// EnvironmentGitHubToken is consulted when EnvironmentGitToken is empty.
	EnvironmentGitHubToken = "GITHUB_TOKEN"
	// EnvironmentGitHubCLIToken is consulted last.
	EnvironmentGitHubCLIToken = "GH_TOKEN"

	defaultTokenUsernameConstant        = "x-access-token"
	httpProtocolConstant                = "http"
	httpsProtocolConstant               = "https"
	remoteEndpointParseTemplateConstant = "parse remote URL %s: %w"
)

// EnvironmentLookup resolves an environment variable.
type EnvironmentLookup func(variableName string) string

// CredentialSource builds transport authentication for a remote URL.
type CredentialSource struct {
	lookup EnvironmentLookup
}

// NewCredentialSource reads credentials through lookup, falling back to os.Getenv.
func NewCredentialSource(lookup EnvironmentLookup) CredentialSource {
	if lookup == nil {
		lookup = os.Getenv
	}
	return CredentialSource{lookup: lookup}
}

// AuthForURL returns basic auth for HTTP(S) remotes when a token is available, and nil otherwise.
// SSH and local remotes are left to go-git's defaults.
func (source CredentialSource) AuthForURL(remoteURL string) (transport.AuthMethod, error) {
	trimmedURL := strings.TrimSpace(remoteURL)
	if len(trimmedURL) == 0 {
		return nil, nil
	}

	endpoint, endpointError := transport.NewEndpoint(trimmedURL)
	if endpointError != nil {
		return nil, fmt.Errorf(remoteEndpointParseTemplateConstant, trimmedURL, endpointError)
	}
	if endpoint.Protocol != httpProtocolConstant && endpoint.Protocol != httpsProtocolConstant {
		return nil, nil
	}

	token := source.firstNonEmpty(EnvironmentGitToken, EnvironmentGitHubToken, EnvironmentGitHubCLIToken)
	if len(token) == 0 {
		return nil, nil
	}
	username := source.firstNonEmpty(EnvironmentGitUsername)
	if len(username) == 0 {
		username = defaultTokenUsernameConstant
	}
	return &http.BasicAuth{Username: username, Password: token}, nil
}

func (source CredentialSource) firstNonEmpty(variableNames ...string) string {
	lookup := source.lookup
	if lookup == nil {
		lookup = os.Getenv
	}
	for _, variableName := range variableNames {
		if value := strings.TrimSpace(lookup(variableName)); len(value) > 0 {
			return value
		}
	}
	return ""
}
