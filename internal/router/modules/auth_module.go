package modules

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/evrs-lk/evrs-api/internal/container"
	handlers "github.com/evrs-lk/evrs-api/internal/interface/http"
	"github.com/evrs-lk/evrs-api/internal/interface/middleware"
)

// AuthModule exposes login/logout per role under /api/auth. Each role has its
// own handler bound to that role's credential store.
type AuthModule struct {
	Handlers map[string]*handlers.AuthHandler
}

func NewAuthModule(byRole map[string]*handlers.AuthHandler) *AuthModule {
	return &AuthModule{Handlers: byRole}
}

func (m *AuthModule) Register(rg *gin.RouterGroup) {
	loginLimiter := middleware.RateLimit(container.GetRedis(), 10, time.Minute, middleware.KeyByIPAndPath(), nil)

	for role, h := range m.Handlers {
		rg.POST("/auth/login/"+role, loginLimiter, h.Login)
		rg.POST("/auth/logout/"+role, h.Logout)
	}
}
