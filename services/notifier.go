package services

// Socket event names pushed to clients.
const (
	EventPairingChanged = "pairingChanged"
	EventSnackChanged   = "snackChanged"
	EventNewSpin        = "newSpin"
)

// ChangeEvent is the payload broadcast with every push. Origin carries the
// acting account so a client can tell its own echo apart from a change made on
// the partner's device.
type ChangeEvent struct {
	Origin   string      `json:"origin"`
	CoupleID string      `json:"coupleId,omitempty"`
	Data     interface{} `json:"data,omitempty"`
}

// Notifier pushes change events to subscribed clients. The socket server
// implements it. Services tolerate a nil Notifier so tests and offline tools
// can run without a socket layer.
type Notifier interface {
	ToAccount(accountID string, event string, payload interface{})
	ToCouple(coupleID string, event string, payload interface{})
}

func notifyAccount(n Notifier, accountID, event string, payload interface{}) {
	if n != nil && accountID != "" {
		n.ToAccount(accountID, event, payload)
	}
}

func notifyCouple(n Notifier, coupleID, event string, payload interface{}) {
	if n != nil && coupleID != "" {
		n.ToCouple(coupleID, event, payload)
	}
}
