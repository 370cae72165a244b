package kernel

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// DeliveryID identifies one webhook delivery (X-GitHub-Delivery) or one
// synthetic event produced by a CLI sweep.
type DeliveryID string

// NewDeliveryID returns a random id for events that did not arrive over a webhook.
func NewDeliveryID() DeliveryID { return DeliveryID(uuid.NewString()) }

func (d DeliveryID) String() string { return string(d) }
func (d DeliveryID) IsEmpty() bool  { return string(d) == "" }

// RepoRef names a repository as owner/name.
type RepoRef struct {
	Owner string `json:"owner"`
	Name  string `json:"name"`
}

// ParseRepoRef parses "owner/name".
func ParseRepoRef(s string) (RepoRef, error) {
	owner, name, ok := strings.Cut(strings.TrimSpace(s), "/")
	if !ok || owner == "" || name == "" || strings.Contains(name, "/") {
		return RepoRef{}, fmt.Errorf("invalid repository %q, expected owner/name", s)
	}
	return RepoRef{Owner: owner, Name: name}, nil
}

func (r RepoRef) String() string { return r.Owner + "/" + r.Name }
func (r RepoRef) IsEmpty() bool  { return r.Owner == "" || r.Name == "" }
