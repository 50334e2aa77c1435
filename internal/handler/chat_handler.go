package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"telehealth/internal/service"
)

// ChatHandler handles the patient assistant chat.
type ChatHandler struct {
	chatService service.ChatService
}

// NewChatHandler creates a new ChatHandler.
func NewChatHandler(chatService service.ChatService) *ChatHandler {
	return &ChatHandler{chatService: chatService}
}

// Send handles POST /api/v1/chat/messages
// @Summary Ask the assistant
// @Description Stores the message and the assistant's reply. When the assistant is unavailable the message is still stored and returned as data next to the error.
// @Tags chat
// @Accept json
// @Produce json
// @Param request body service.SendMessageInput true "Message"
// @Success 201 {object} Response{data=service.ChatExchange}
// @Failure 400 {object} ErrorResponseBody "Empty message"
// @Failure 429 {object} ErrorResponseBody "Assistant rate limited"
// @Failure 502 {object} ErrorResponseBody "Assistant unavailable"
// @Security BearerAuth
// @Router /chat/messages [post]
func (h *ChatHandler) Send(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}

	var input service.SendMessageInput
	if err := c.ShouldBindJSON(&input); err != nil {
		RespondError(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}

	exchange, err := h.chatService.Send(c.Request.Context(), actor.UserID, input)
	if err != nil {
		if exchange != nil && exchange.Message != nil {
			HandleErrorWithData(c, err, exchange)
			return
		}
		HandleError(c, err)
		return
	}

	RespondCreated(c, exchange)
}

// History handles GET /api/v1/chat/messages
func (h *ChatHandler) History(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}
	offset, limit := pagination(c)

	msgs, total, err := h.chatService.History(c.Request.Context(), actor.UserID, offset, limit)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondPaginated(c, msgs, PagMeta{Total: total, Offset: offset, Limit: limit})
}

// Clear handles DELETE /api/v1/chat/messages
func (h *ChatHandler) Clear(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}

	if err := h.chatService.Clear(c.Request.Context(), actor.UserID); err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, gin.H{"message": "chat history cleared"})
}
