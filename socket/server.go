package socket

import (
	"log"

	socketio "github.com/googollee/go-socket.io"
)

// Room prefixes. Each client joins its own account room on connect and the
// couple room once paired, so pairing changes reach both partners' devices.
const (
	accountRoomPrefix = "account:"
	coupleRoomPrefix  = "couple:"
)

// Server wraps the Socket.IO server and implements services.Notifier.
type Server struct {
	IO *socketio.Server
}

// NewServer initializes the Socket.IO server and its event handlers.
func NewServer() *Server {
	io := socketio.NewServer(nil)

	io.OnConnect("/", func(c socketio.Conn) error {
		log.Println("✅ Socket connected:", c.ID())
		return nil
	})

	// Clients emit "join" with their accountId (and coupleId once linked) when
	// the pairing view mounts.
	io.OnEvent("/", "join", func(c socketio.Conn, data map[string]string) {
		accountID := data["accountId"]
		if accountID == "" {
			log.Println("❌ Invalid accountId in join request")
			return
		}
		c.Join(accountRoomPrefix + accountID)
		if coupleID := data["coupleId"]; coupleID != "" {
			c.Join(coupleRoomPrefix + coupleID)
		}
		log.Printf("👥 Socket %s joined rooms for account %s\n", c.ID(), accountID)
	})

	// "leave" tears the subscriptions down when the client navigates away.
	io.OnEvent("/", "leave", func(c socketio.Conn, data map[string]string) {
		if accountID := data["accountId"]; accountID != "" {
			c.Leave(accountRoomPrefix + accountID)
		}
		if coupleID := data["coupleId"]; coupleID != "" {
			c.Leave(coupleRoomPrefix + coupleID)
		}
	})

	io.OnError("/", func(c socketio.Conn, err error) {
		log.Println("❌ Socket error:", err)
	})

	io.OnDisconnect("/", func(c socketio.Conn, reason string) {
		log.Println("❌ Socket disconnected:", c.ID(), reason)
	})

	return &Server{IO: io}
}

// ToAccount pushes an event to every connection of one account.
func (s *Server) ToAccount(accountID string, event string, payload interface{}) {
	s.IO.BroadcastToRoom("/", accountRoomPrefix+accountID, event, payload)
}

// ToCouple pushes an event to both partners' connections.
func (s *Server) ToCouple(coupleID string, event string, payload interface{}) {
	s.IO.BroadcastToRoom("/", coupleRoomPrefix+coupleID, event, payload)
}
