package git

import (
	"fmt"
	"time"
)

// Tag is a named pointer to a commit.
type Tag struct {
	Name string `json:"name"`
	// Target is the commit the tag resolves to.
	Target string `json:"target"`
	// Object is the tag object id for annotated tags, empty otherwise.
	Object      string    `json:"object,omitempty"`
	Message     string    `json:"message,omitempty"`
	Tagger      string    `json:"tagger,omitempty"`
	TaggerEmail string    `json:"tagger_email,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	Annotated   bool      `json:"annotated"`
}

// Stash is one entry of the stash stack.
//
// Index is positional (0 is the newest) and shifts whenever an entry above it
// is dropped or a new one is pushed. It is only meaningful until the next
// stash mutation.
type Stash struct {
	Index  int    `json:"index"`
	Ref    string `json:"ref"`
	Commit string `json:"commit"`
	// Message is the user supplied message, empty for auto-generated "WIP on" entries.
	Message           string    `json:"message,omitempty"`
	Branch            string    `json:"branch,omitempty"`
	Subject           string    `json:"subject"`
	IncludesUntracked bool      `json:"includes_untracked"`
	CreatedAt         time.Time `json:"created_at"`
}

// StashRef returns git's reference syntax for the stash at index.
func StashRef(index int) string {
	return fmt.Sprintf("stash@{%d}", index)
}

// TagOptions configures tag creation.
type TagOptions struct {
	Name string
	// Message makes the tag annotated when non-empty.
	Message string
	// Target is any revision; empty means HEAD.
	Target string
	Force  bool
}

// StashOptions configures stash push.
type StashOptions struct {
	Message          string
	IncludeUntracked bool
	KeepIndex        bool
}

// MergeOptions configures merge.
type MergeOptions struct {
	Branch        string
	NoFastForward bool
	Squash        bool
	Message       string
}

// RebaseOptions configures rebase.
type RebaseOptions struct {
	Onto      string
	Autostash bool
}

// ApplyOptions configures patch application.
type ApplyOptions struct {
	Check    bool
	ThreeWay bool
	Index    bool
	Reverse  bool
}

// Operation is the integration operation git currently has in progress.
type Operation string

const (
	Clean                Operation = "clean"
	MergeInProgress      Operation = "merge"
	RebaseInProgress     Operation = "rebase"
	CherryPickInProgress Operation = "cherry-pick"
	RevertInProgress     Operation = "revert"
)

// RepoState is git's live on-disk integration state. It is never cached.
type RepoState struct {
	Operation Operation `json:"operation"`
	Conflicts []string  `json:"conflicts,omitempty"`
}

// InProgress reports whether an operation awaits continue or abort.
func (s RepoState) InProgress() bool {
	return s.Operation != Clean
}
