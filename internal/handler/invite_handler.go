package handler

import (
	"errors"
	"net/http"
	"net/url"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"roomies/invitehub/internal/model"
	"roomies/invitehub/internal/service"
	"roomies/invitehub/pkg/response"
)

type InviteHandler struct {
	validator service.InviteValidator
	consumer  service.InviteConsumer
	pending   *PendingCookie
	signupURL string
	logger    *zap.Logger
}

func NewInviteHandler(
	validator service.InviteValidator,
	consumer service.InviteConsumer,
	pending *PendingCookie,
	signupURL string,
	logger *zap.Logger,
) *InviteHandler {
	if signupURL == "" {
		signupURL = "/signup"
	}
	return &InviteHandler{
		validator: validator,
		consumer:  consumer,
		pending:   pending,
		signupURL: signupURL,
		logger:    logger,
	}
}

type ResolveInviteResponse struct {
	Valid              bool               `json:"valid"`
	InviterDisplayName string             `json:"inviter_display_name,omitempty"`
	Reason             string             `json:"reason,omitempty"`
	ReasonCode         model.InviteReason `json:"reason_code,omitempty"`
}

type ConsumeInviteRequest struct {
	Code string `json:"code" binding:"required"`
}

type ConsumeInviteResponse struct {
	OK              bool               `json:"ok"`
	AlreadyConsumed bool               `json:"already_consumed,omitempty"`
	Reason          string             `json:"reason,omitempty"`
	ReasonCode      model.InviteReason `json:"reason_code,omitempty"`
}

func consumeResponse(result service.ConsumeResult) ConsumeInviteResponse {
	if result.OK {
		return ConsumeInviteResponse{OK: true, AlreadyConsumed: result.AlreadyConsumed}
	}
	return ConsumeInviteResponse{Reason: result.Reason.Message(), ReasonCode: result.Reason}
}

// Resolve answers GET /invites/resolve?code=. Declines are business answers
// and use 200.
func (h *InviteHandler) Resolve(c *gin.Context) {
	code := c.Query("code")
	if strings.TrimSpace(code) == "" {
		c.JSON(http.StatusBadRequest, ResolveInviteResponse{
			Reason:     model.InviteReasonNoCode.Message(),
			ReasonCode: model.InviteReasonNoCode,
		})
		return
	}

	result, err := h.validator.Validate(c.Request.Context(), code)
	if err != nil {
		c.JSON(http.StatusInternalServerError, ResolveInviteResponse{Reason: model.RetryInviteMessage})
		return
	}
	if !result.Valid {
		c.JSON(http.StatusOK, ResolveInviteResponse{
			Reason:     result.Reason.Message(),
			ReasonCode: result.Reason,
		})
		return
	}
	c.JSON(http.StatusOK, ResolveInviteResponse{
		Valid:              true,
		InviterDisplayName: result.InviterDisplayName,
	})
}

// Consume answers POST /invites/consume for the signed-in caller.
func (h *InviteHandler) Consume(c *gin.Context) {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, ConsumeInviteResponse{Reason: model.UnauthorizedInviteMessage})
		return
	}

	var req ConsumeInviteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ConsumeInviteResponse{Reason: "invalid request: " + err.Error()})
		return
	}
	if strings.TrimSpace(req.Code) == "" {
		c.JSON(http.StatusBadRequest, ConsumeInviteResponse{
			Reason:     model.InviteReasonNoCode.Message(),
			ReasonCode: model.InviteReasonNoCode,
		})
		return
	}

	result, err := h.consumer.Consume(c.Request.Context(), req.Code, userID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrUnauthenticated):
			c.JSON(http.StatusUnauthorized, ConsumeInviteResponse{Reason: model.UnauthorizedInviteMessage})
		default:
			c.JSON(http.StatusInternalServerError, ConsumeInviteResponse{Reason: model.RetryInviteMessage})
		}
		return
	}

	if result.OK {
		if err := h.pending.Clear(c); err != nil {
			h.logger.Warn("pending invite not cleared", zap.Error(err))
		}
	}
	c.JSON(http.StatusOK, consumeResponse(result))
}

// Landing serves the shareable link GET /invite/:code. A valid code is
// remembered and the visitor is sent to signup; anything else ends on a
// static page.
func (h *InviteHandler) Landing(c *gin.Context) {
	code := strings.TrimSpace(c.Param("code"))

	result, err := h.validator.Validate(c.Request.Context(), code)
	if err != nil {
		c.HTML(http.StatusInternalServerError, inviteUnavailableTemplate, gin.H{
			"Title":   "Something went wrong",
			"Message": model.RetryInviteMessage,
			"Retry":   true,
		})
		return
	}
	if !result.Valid {
		c.HTML(http.StatusOK, inviteUnavailableTemplate, gin.H{
			"Title":   "Invite unavailable",
			"Message": result.Reason.Message(),
			"Retry":   false,
		})
		return
	}

	h.pending.Remember(c, code)
	c.Redirect(http.StatusFound, h.signupLocation(code))
}

func (h *InviteHandler) signupLocation(code string) string {
	u, err := url.Parse(h.signupURL)
	if err != nil {
		u = &url.URL{Path: "/signup"}
	}
	q := u.Query()
	q.Set("invite", code)
	u.RawQuery = q.Encode()
	return u.String()
}

// Pending returns the code remembered for this browser.
func (h *InviteHandler) Pending(c *gin.Context) {
	code, ok, err := h.pending.Code(c)
	if err != nil {
		h.logger.Warn("pending invite lookup failed", zap.Error(err))
		response.InternalError(c, "failed to load pending invite")
		return
	}
	if !ok {
		response.NotFound(c, "no pending invite")
		return
	}
	response.Success(c, gin.H{"code": code})
}

// ClearPending forgets the remembered code.
func (h *InviteHandler) ClearPending(c *gin.Context) {
	if err := h.pending.Clear(c); err != nil {
		h.logger.Warn("pending invite not cleared", zap.Error(err))
		response.InternalError(c, "failed to clear pending invite")
		return
	}
	response.Success(c, nil)
}
