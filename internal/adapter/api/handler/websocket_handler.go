package handler

import (
	"net/http"

	gorillaws "github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"

	"printmarket/internal/domain/entity"
	"printmarket/internal/domain/repository"
	"printmarket/internal/infrastructure/firebase"
	ws "printmarket/internal/infrastructure/websocket"
	"printmarket/pkg/errors"
)

type WebSocketHandler struct {
	wsManager  *ws.Manager
	authClient *firebase.FirebaseAuthClient
	userRepo   repository.UserRepository
}

var upgrader = gorillaws.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // restrict in production
	},
}

func NewWebSocketHandler(wsManager *ws.Manager, authClient *firebase.FirebaseAuthClient, userRepo repository.UserRepository) *WebSocketHandler {
	return &WebSocketHandler{
		wsManager:  wsManager,
		authClient: authClient,
		userRepo:   userRepo,
	}
}

// HandleWebSocket authenticates via a token query parameter (browsers can't
// set headers on websocket upgrades) and registers the connection on the
// caller's notification channel.
func (h *WebSocketHandler) HandleWebSocket(c echo.Context) error {
	token := c.QueryParam("token")
	if token == "" {
		return errors.Unauthorized("Authentication token is required", nil)
	}

	uid, err := h.authClient.VerifyToken(c.Request().Context(), token)
	if err != nil {
		return errors.Unauthorized("Invalid or expired token", err)
	}

	user, err := h.userRepo.GetByID(c.Request().Context(), uid)
	if err != nil {
		return errors.Unauthorized("Unknown user", err)
	}

	channel := uid
	if user.Role == entity.RoleDealer {
		channel = entity.DealerTarget(uid)
	}

	conn, err := upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		return errors.Internal("Failed to upgrade connection", err)
	}

	client := &ws.Client{
		Channel: channel,
		Conn:    conn,
		Send:    make(chan []byte, 256),
	}

	h.wsManager.Register <- client

	go client.ReadPump(h.wsManager)
	go client.WritePump()

	return nil
}
