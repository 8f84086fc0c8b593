package session

import (
	"encoding/json"
	"errors"
	"fmt"
)

const snapshotVersionCurrent = 1

// ErrCorruptSnapshot is returned when a stored snapshot cannot be decoded or breaks
// the session invariant.
var ErrCorruptSnapshot = errors.New("corrupt session snapshot")

type snapshot struct {
	Version int     `json:"v"`
	User    *User   `json:"user"`
	Token   *string `json:"token"`
}

// EncodeSnapshot serializes s. Invalid sessions are rejected so they never reach storage.
func EncodeSnapshot(s Session) ([]byte, error) {
	if !s.Valid() {
		return nil, errors.New("session user and token must be set together")
	}
	snap := snapshot{Version: snapshotVersionCurrent, User: s.User}
	if s.Token != "" {
		token := s.Token
		snap.Token = &token
	}
	return json.Marshal(snap)
}

// DecodeSnapshot parses a stored snapshot.
func DecodeSnapshot(data []byte) (Session, error) {
	var snap snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return Session{}, fmt.Errorf("%w: %v", ErrCorruptSnapshot, err)
	}
	if snap.Version != snapshotVersionCurrent {
		return Session{}, fmt.Errorf("%w: unsupported version %d", ErrCorruptSnapshot, snap.Version)
	}

	s := Session{User: snap.User}
	if snap.Token != nil {
		s.Token = *snap.Token
	}
	if !s.Valid() {
		return Session{}, fmt.Errorf("%w: user and token disagree", ErrCorruptSnapshot)
	}
	return s, nil
}
