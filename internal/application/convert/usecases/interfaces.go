package usecases

import (
	"context"

	"singmerge/internal/domain/link"
)

// LinkParser decodes one share link
type LinkParser interface {
	Parse(raw string) (*link.Descriptor, error)
}

// TagNamer derives display tags for converted links
type TagNamer interface {
	Derive(label, server string, index int) string
}

// PublishTarget is a file in a remote repository
type PublishTarget struct {
	Owner  string
	Repo   string
	Branch string
	Path   string
}

func (t PublishTarget) String() string {
	return t.Owner + "/" + t.Repo + "@" + t.Branch + ":" + t.Path
}

// PublishReceipt describes a completed publish
type PublishReceipt struct {
	CommitSHA string `json:"commit_sha"`
	HTMLURL   string `json:"html_url,omitempty"`
	Created   bool   `json:"created"`
}

// Publisher writes a merged config to a remote repository
type Publisher interface {
	Publish(ctx context.Context, target PublishTarget, content []byte, message string) (*PublishReceipt, error)
}
