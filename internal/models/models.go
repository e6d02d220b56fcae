package models

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

type RequestStatus string

const (
	StatusPending  RequestStatus = "pending"
	StatusDone     RequestStatus = "done"
	StatusRejected RequestStatus = "rejected"
)

// Action is the decision carried by an admin button.
type Action string

const (
	ActionDone   Action = "done"
	ActionReject Action = "reject"
)

// Status returns the terminal status an action moves a request into.
func (a Action) Status() RequestStatus {
	if a == ActionReject {
		return StatusRejected
	}
	return StatusDone
}

func (a Action) Valid() bool {
	return a == ActionDone || a == ActionReject
}

var ErrInvalidPayload = errors.New("invalid action payload")

// ActionPayload is the callback data attached to each admin button.
type ActionPayload struct {
	Action       Action
	TargetUserID int64
}

// Encode returns the wire form "<action>:<userId>".
func (p ActionPayload) Encode() string {
	return fmt.Sprintf("%s:%d", p.Action, p.TargetUserID)
}

// ParseActionPayload decodes callback data produced by Encode.
func ParseActionPayload(data string) (ActionPayload, error) {
	action, id, ok := strings.Cut(data, ":")
	if !ok {
		return ActionPayload{}, ErrInvalidPayload
	}
	userID, err := strconv.ParseInt(id, 10, 64)
	if err != nil {
		return ActionPayload{}, fmt.Errorf("%w: %v", ErrInvalidPayload, err)
	}
	p := ActionPayload{Action: Action(action), TargetUserID: userID}
	if !p.Action.Valid() {
		return ActionPayload{}, fmt.Errorf("%w: unknown action %q", ErrInvalidPayload, action)
	}
	return p, nil
}

// User is a chat participant as seen by the bot.
type User struct {
	ID     int64
	Handle string // Telegram username without "@", may be empty
}

// Mention renders the user as "@handle", or "@<id>" when there is no handle.
func (u User) Mention() string {
	if u.Handle != "" {
		return "@" + u.Handle
	}
	return "@" + strconv.FormatInt(u.ID, 10)
}

// Fields holds the values extracted from a request message. Empty means absent.
type Fields struct {
	Name     string
	Year     string
	Quality  string
	Language string
}

// Complete reports whether every field was found.
func (f Fields) Complete() bool {
	return f.Name != "" && f.Year != "" && f.Quality != "" && f.Language != ""
}

// Request is one user request as tracked by the decision ledger
type Request struct {
	ID             string
	Requester      User
	Fields         Fields
	RawText        string
	ReceivedAt     time.Time
	Deadline       time.Time
	AdminChatID    int64
	AdminMessageID int
	Status         RequestStatus
	DecidedBy      int64
	DecidedAt      *time.Time
}
