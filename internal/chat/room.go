// Package chat implements landlord/tenant rooms: who may use a room, how
// messages are relayed and persisted, and the retention rule that keeps
// only the newest messages of each room.
package chat

import (
	"errors"
	"sort"
	"strings"
)

var (
	ErrInvalidRoom    = errors.New("invalid chat id")
	ErrNotParticipant = errors.New("not a chat participant")
	ErrNotLinked      = errors.New("participants are not linked")
)

const roomSeparator = "_"

// RoomID builds the room key for two participants. The key does not
// depend on argument order.
func RoomID(a, b string) string {
	ids := []string{a, b}
	sort.Strings(ids)
	return ids[0] + roomSeparator + ids[1]
}

// Participants splits a room key into its two uids.
func Participants(chatID string) (string, string, error) {
	a, b, ok := strings.Cut(chatID, roomSeparator)
	if !ok || a == "" || b == "" || a == b || RoomID(a, b) != chatID {
		return "", "", ErrInvalidRoom
	}
	return a, b, nil
}

// Peer returns the other participant of the room, or ErrNotParticipant.
func Peer(chatID, uid string) (string, error) {
	a, b, err := Participants(chatID)
	if err != nil {
		return "", err
	}
	switch uid {
	case a:
		return b, nil
	case b:
		return a, nil
	}
	return "", ErrNotParticipant
}
