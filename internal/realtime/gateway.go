package realtime

import (
	"net/http"
	"strings"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"github.com/nayonf/inkline/backend/internal/auth"
)

// Gateway upgrades authenticated HTTP requests to websocket connections and
// hands them to the Hub. The bearer token travels out-of-band of the socket
// protocol (query parameter, or Authorization header for non-browser clients)
// and is verified exactly once, before the upgrade; a bad token refuses the
// connection with no partial registration.
type Gateway struct {
	hub      *Hub
	verifier *auth.Verifier
	upgrader websocket.Upgrader
}

// NewGateway creates a Gateway bound to the given hub and verifier
func NewGateway(hub *Hub, verifier *auth.Verifier) *Gateway {
	return &Gateway{
		hub:      hub,
		verifier: verifier,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// Browser origins are already filtered by the CORS middleware.
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
}

// HandleConnection is the GET /ws handshake handler.
func (g *Gateway) HandleConnection(c echo.Context) error {
	token := c.QueryParam("token")
	if token == "" {
		if h := c.Request().Header.Get("Authorization"); h != "" {
			parts := strings.SplitN(h, " ", 2)
			if len(parts) == 2 && strings.EqualFold(parts[0], "bearer") {
				token = parts[1]
			}
		}
	}

	claims, err := g.verifier.Verify(token)
	if err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "Invalid credentials")
	}

	conn, err := g.upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		// Upgrade already wrote the failure response.
		return nil
	}

	client := newClient(claims.UserID, conn)
	g.hub.Register(client)

	go client.writePump()
	go client.readPump(g.hub)
	return nil
}
