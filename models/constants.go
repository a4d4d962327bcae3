package models

// Invite status. Accepted and declined invites are deleted rather than kept,
// so "pending" is the only value ever stored; the constant set mirrors the
// lifecycle for callers that log or validate transitions.
const (
	InviteStatusPending = "pending"
)

// Pairing states derived from an account's couple link.
const (
	PairingStateUnpaired = "UNPAIRED" // No coupleId on the account
	PairingStateSolo     = "SOLO"     // Linked couple has only user1 filled
	PairingStatePaired   = "PAIRED"   // Linked couple has both slots filled
)

// PairingSnapshot is what the presentation layer renders from. It is
// recomputed from fresh store reads on every request, never patched.
type PairingSnapshot struct {
	State          string          `json:"state"`
	Couple         *Couple         `json:"couple,omitempty"`
	Partner        *PartnerSummary `json:"partner,omitempty"`
	InboundInvites []Invite        `json:"inboundInvites"`
	SentInvites    []Invite        `json:"sentInvites"`
}
