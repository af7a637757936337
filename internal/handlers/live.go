package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/yungbote/formai-backend/internal/logger"
)

// LiveHandler is the streaming live-feedback stub: every inbound frame gets
// one canned coaching frame back. Real-time pose inference will replace the
// canned payload once the mobile capture pipeline lands.
type LiveHandler struct {
	log      *logger.Logger
	upgrader websocket.Upgrader
}

func NewLiveHandler(log *logger.Logger) *LiveHandler {
	return &LiveHandler{
		log: log.With("handler", "LiveHandler"),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

type liveFeedbackFrame struct {
	Type    string `json:"type"`
	Content string `json:"content"`
	Action  string `json:"action"`
}

func (lh *LiveHandler) Stream(c *gin.Context) {
	userID := c.Param("user_id")
	sportID := c.Param("sport_id")

	conn, err := lh.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		lh.log.Warn("Websocket upgrade failed", "user_id", userID, "error", err)
		return
	}
	defer conn.Close()

	lh.log.Info("Live feedback stream opened", "user_id", userID, "sport_id", sportID)

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				lh.log.Warn("Live feedback stream error", "user_id", userID, "error", err)
			}
			return
		}
		frame := liveFeedbackFrame{
			Type:    "feedback",
			Content: "Excellent rhythm! Keep your elbow tucked.",
			Action:  "CORRECTION",
		}
		if err := conn.WriteJSON(frame); err != nil {
			lh.log.Warn("Failed to write live feedback frame", "user_id", userID, "error", err)
			return
		}
	}
}
