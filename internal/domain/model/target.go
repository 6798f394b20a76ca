package model

import (
	"strconv"
	"strings"
)

const HandleSigil = "@"

// PeerRef is an entity reference already resolved by the reporting gateway or
// taken from a replied-to message.
type PeerRef struct {
	ID         int64
	AccessHash int64
	Username   string
	Kind       string
}

type Target struct {
	Handle string
	Peer   *PeerRef
}

func HandleTarget(handle string) Target {
	return Target{Handle: handle}
}

func PeerTarget(peer PeerRef) Target {
	handle := ""
	if username := strings.TrimSpace(peer.Username); username != "" {
		handle = HandleSigil + username
	}
	return Target{Handle: handle, Peer: &peer}
}

func (t Target) IsResolved() bool {
	return t.Peer != nil
}

// Label is the operator-facing name of the target.
func (t Target) Label() string {
	if t.Handle != "" {
		return t.Handle
	}
	if t.Peer != nil {
		return "id:" + strconv.FormatInt(t.Peer.ID, 10)
	}
	return "unknown"
}
