package domain

import (
	"strings"

	"github.com/pkg/errors"
)

// RepoURLPrefix is the only repository page prefix ParseRepoURL accepts.
const RepoURLPrefix = "https://github.com/"

// ErrInvalidFormat is returned when a repository URL cannot be parsed.
var ErrInvalidFormat = errors.New("invalid GitHub URL format, expected 'https://github.com/owner/repo'")

// RepoID identifies a repository as owner/name.
type RepoID struct {
	Owner string
	Name  string
}

func (r RepoID) String() string {
	return r.Owner + "/" + r.Name
}

// ParseRepoURL extracts the owner/name identifier from a repository page URL.
// The identifier is taken from the last two path segments, so deeper links
// such as .../owner/repo are accepted as long as they end with the repository.
// Whether the repository exists is not checked here.
func ParseRepoURL(rawURL string) (RepoID, error) {
	if !strings.HasPrefix(rawURL, RepoURLPrefix) {
		return RepoID{}, errors.Wrapf(ErrInvalidFormat, "%q", rawURL)
	}
	path := strings.TrimSuffix(strings.TrimPrefix(rawURL, RepoURLPrefix), "/")
	segments := strings.Split(path, "/")
	if len(segments) < 2 {
		return RepoID{}, errors.Wrapf(ErrInvalidFormat, "%q", rawURL)
	}
	owner, name := segments[len(segments)-2], segments[len(segments)-1]
	if owner == "" || name == "" {
		return RepoID{}, errors.Wrapf(ErrInvalidFormat, "%q", rawURL)
	}
	return RepoID{Owner: owner, Name: name}, nil
}
