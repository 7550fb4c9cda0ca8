package core

import (
	"fmt"
	"time"
)

// ChangeKind classifies a change-log entry.
type ChangeKind string

const (
	ChangeCreated  ChangeKind = "created"
	ChangeUpdated  ChangeKind = "updated"
	ChangeDeleted  ChangeKind = "deleted"
	ChangeSecurity ChangeKind = "security"
)

// ChangeEvent is one append-only change-log entry. Tokens order
// monotonically, so a token doubles as a resumable cursor.
type ChangeEvent struct {
	Token      string     `yaml:"token"`
	ObjectID   string     `yaml:"objectId"`
	Kind       ChangeKind `yaml:"kind"`
	Time       time.Time  `yaml:"time"`
	Properties Properties `yaml:"properties,omitempty"`
}

// String implements fmt.Stringer for event bridging and logs.
func (e ChangeEvent) String() string {
	return fmt.Sprintf("%s %s %s", e.Token, e.Kind, e.ObjectID)
}

// ChangeList is one page of the change log plus the cursor to resume from.
type ChangeList struct {
	Events    []ChangeEvent
	HasMore   bool
	NextToken string
}
