package v1

import (
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/eventgate/backend/internal/api/handler/v1/response"
	"github.com/eventgate/backend/internal/service"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // Adjust this for production!
	},
}

// scanFrame is one message from the scanner device. Data carries the raw
// string decoded from the QR code.
type scanFrame struct {
	Data string `json:"data"`
}

type scanAlert struct {
	Type    string          `json:"type"`
	Title   string          `json:"title"`
	Message string          `json:"message"`
	Haptic  bool            `json:"haptic,omitempty"`
	Ticket  json.RawMessage `json:"ticket,omitempty"`
}

type ScanHandler struct {
	svc  service.CheckInService
	uSvc UserService
}

func NewScanHandler(svc service.CheckInService, uSvc UserService) *ScanHandler {
	return &ScanHandler{
		svc:  svc,
		uSvc: uSvc,
	}
}

// HandleScanSocket godoc
// @Summary Establish WebSocket connection for QR scanning
// @Description Each frame carries one decoded QR payload. The reply, when any, is an alert describing the check-in outcome.
// @Tags tickets,scan
// @Produce json
// @Success 101 {string} string "Switching Protocols to WebSocket"
// @Failure 401 {object} response.Err
// @Failure 500 {object} response.Err
// @Router /scan [get]
// @Security BearerAuth
func (h *ScanHandler) HandleScanSocket(c *gin.Context) {
	user, respErr := getUserFromContext(c, h.uSvc)
	if respErr != nil {
		response.RenderErr(c, respErr)
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		zap.L().Error("v1.HandleScanSocket -> upgrader.Upgrade", zap.Error(err))
		return
	}
	defer conn.Close()

	session := service.NewScanSession(h.svc, user.ID)

	for {
		_, message, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				zap.L().Warn("v1.HandleScanSocket -> conn.ReadMessage", zap.Error(err))
			}
			break
		}

		var frame scanFrame
		if err := json.Unmarshal(message, &frame); err != nil {
			zap.L().Warn("v1.HandleScanSocket -> json.Unmarshal", zap.Error(err))
			continue
		}

		result := session.HandleScan(c.Request.Context(), frame.Data)
		if result.Kind == service.ScanIgnored {
			continue
		}

		alert := scanAlert{
			Type:    string(result.Kind),
			Title:   result.Title,
			Message: result.Message,
			Haptic:  result.Haptic,
		}
		if result.Ticket != nil {
			if raw, err := json.Marshal(result.Ticket); err == nil {
				alert.Ticket = raw
			}
		}

		if err := conn.WriteJSON(alert); err != nil {
			zap.L().Warn("v1.HandleScanSocket -> conn.WriteJSON", zap.Error(err))
			break
		}
	}
}
