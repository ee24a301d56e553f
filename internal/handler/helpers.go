package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"roomies/invitehub/internal/handler/middleware"
	"roomies/invitehub/internal/service"
	jwtpkg "roomies/invitehub/pkg/jwt"
)

var ErrNoClaims = errors.New("claims not found in context")

func getUserIDFromContext(c *gin.Context) (uuid.UUID, error) {
	claimsVal, exists := c.Get(middleware.ContextKeyUserClaims)
	if !exists {
		return uuid.Nil, ErrNoClaims
	}
	claims, ok := claimsVal.(*jwtpkg.Claims)
	if !ok {
		return uuid.Nil, ErrNoClaims
	}
	return uuid.Parse(claims.Subject)
}

// PendingCookie moves the pending invite handle in and out of the
// browser cookie that carries it between the invite link and signup.
type PendingCookie struct {
	carrier service.PendingInviteCarrier
	name    string
	secure  bool
	logger  *zap.Logger
}

func NewPendingCookie(carrier service.PendingInviteCarrier, name string, secure bool, logger *zap.Logger) *PendingCookie {
	if name == "" {
		name = "invite_pending"
	}
	return &PendingCookie{carrier: carrier, name: name, secure: secure, logger: logger}
}

// Remember stores code and hands the client the handle. Failures are
// logged and swallowed: the carrier is a convenience.
func (p *PendingCookie) Remember(c *gin.Context, code string) {
	handle, err := p.carrier.Remember(c.Request.Context(), code)
	if err != nil {
		p.logger.Warn("pending invite not stored", zap.Error(err))
		return
	}
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(p.name, handle, int(p.carrier.TTL().Seconds()), "/", "", p.secure, true)
}

// Code returns the pending code for the request's cookie, if any.
func (p *PendingCookie) Code(c *gin.Context) (string, bool, error) {
	handle, err := c.Cookie(p.name)
	if err != nil || handle == "" {
		return "", false, nil
	}
	return p.carrier.Pending(c.Request.Context(), handle)
}

// Clear drops the pending code and expires the cookie. Requests without
// the cookie are left alone.
func (p *PendingCookie) Clear(c *gin.Context) error {
	handle, err := c.Cookie(p.name)
	if err != nil {
		return nil
	}
	if err := p.carrier.Clear(c.Request.Context(), handle); err != nil {
		return err
	}
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(p.name, "", -1, "/", "", p.secure, true)
	return nil
}
