package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"roomies/invitehub/internal/model"
	"roomies/invitehub/internal/service"
	"roomies/invitehub/pkg/response"
)

type AuthHandler struct {
	authService service.AuthService
	pending     *PendingCookie
	logger      *zap.Logger
}

func NewAuthHandler(authService service.AuthService, pending *PendingCookie, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{authService: authService, pending: pending, logger: logger}
}

type RegisterRequest struct {
	DisplayName string `json:"display_name" binding:"required"`
	Identifier  string `json:"identifier" binding:"required"`
	Password    string `json:"password" binding:"required,min=8"`
	InviteCode  string `json:"invite_code"`
}

type RegisterResponse struct {
	UserID string                 `json:"user_id"`
	Tokens *service.TokenSet      `json:"tokens"`
	Invite *ConsumeInviteResponse `json:"invite,omitempty"`
}

type LoginRequest struct {
	Identifier string `json:"identifier" binding:"required"`
	Password   string `json:"password" binding:"required"`
}

type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

type LogoutRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

func (h *AuthHandler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}

	// Fall back to the code remembered from the invite link.
	if req.InviteCode == "" && h.pending != nil {
		code, ok, err := h.pending.Code(c)
		if err != nil {
			h.logger.Warn("pending invite lookup failed", zap.Error(err))
		} else if ok {
			req.InviteCode = code
		}
	}

	result, err := h.authService.Register(c.Request.Context(), service.RegisterInput{
		DisplayName: req.DisplayName,
		Identifier:  req.Identifier,
		Password:    req.Password,
		InviteCode:  req.InviteCode,
	})
	if err != nil {
		var declined *service.InviteDeclinedError
		switch {
		case errors.Is(err, service.ErrIdentityAlreadyExists):
			response.Conflict(c, err.Error())
		case errors.Is(err, service.ErrInviteCodeRequired):
			response.BadRequest(c, model.InviteReasonNoCode.Message())
		case errors.As(err, &declined):
			response.BadRequest(c, declined.Reason.Message())
		case errors.Is(err, service.ErrInviteValidation):
			response.InternalError(c, model.RetryInviteMessage)
		default:
			response.InternalError(c, "registration failed")
		}
		return
	}

	resp := RegisterResponse{UserID: result.User.ID.String(), Tokens: result.Tokens}
	if result.Invite != nil {
		invite := consumeResponse(*result.Invite)
		resp.Invite = &invite
		if result.Invite.OK && h.pending != nil {
			if err := h.pending.Clear(c); err != nil {
				h.logger.Warn("pending invite not cleared", zap.Error(err))
			}
		}
	}
	response.Success(c, resp)
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}

	tokenSet, err := h.authService.Login(c.Request.Context(), req.Identifier, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidCredentials):
			response.Unauthorized(c, "invalid credentials")
		case errors.Is(err, service.ErrUserDisabled):
			response.Forbidden(c, "user is disabled")
		default:
			response.InternalError(c, "login failed")
		}
		return
	}

	response.Success(c, tokenSet)
}

func (h *AuthHandler) Refresh(c *gin.Context) {
	var req RefreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}

	tokenSet, err := h.authService.RefreshToken(c.Request.Context(), req.RefreshToken)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrRefreshTokenInvalid):
			response.Unauthorized(c, "invalid refresh token")
		case errors.Is(err, service.ErrUserDisabled):
			response.Forbidden(c, "user is disabled")
		default:
			response.InternalError(c, "token refresh failed")
		}
		return
	}

	response.Success(c, tokenSet)
}

func (h *AuthHandler) Logout(c *gin.Context) {
	var req LogoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}

	if err := h.authService.Logout(c.Request.Context(), req.RefreshToken); err != nil {
		if errors.Is(err, service.ErrRefreshTokenInvalid) {
			response.Error(c, http.StatusUnauthorized, 401, "invalid refresh token")
			return
		}
		response.InternalError(c, "logout failed")
		return
	}

	response.Success(c, nil)
}
