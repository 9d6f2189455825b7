package modules

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/evrs-lk/evrs-api/internal/container"
	"github.com/evrs-lk/evrs-api/internal/domain/entity"
	handlers "github.com/evrs-lk/evrs-api/internal/interface/http"
	"github.com/evrs-lk/evrs-api/internal/interface/middleware"
	"github.com/evrs-lk/evrs-api/pkg/helpers"
)

// CitizenModule wires the citizen-facing routes under /api/citizen. Citizens
// can change both email and phone through the verification flow.
type CitizenModule struct {
	Contact     *handlers.ContactHandler
	Auth        *handlers.AuthHandler
	Profile     *handlers.ProfileHandler
	Vaccination *handlers.VaccinationHandler
	JWT         *helpers.JWTManager
}

func (m *CitizenModule) Register(rg *gin.RouterGroup) {
	g := rg.Group("/citizen")
	g.Use(middleware.RequireRole(m.JWT, string(entity.KindCitizen)))

	requestLimiter := middleware.RateLimit(container.GetRedis(), 5, time.Minute, middleware.KeyByAccount(), nil)
	verifyLimiter := middleware.RateLimit(container.GetRedis(), 30, time.Minute, middleware.KeyByAccount(), nil)

	g.GET("/get/profile", m.Profile.CitizenProfile)
	g.PUT("/profile", m.Profile.UpdateAddress)
	g.PUT("/profile/medical", m.Profile.UpdateMedical)
	g.PUT("/profile/password", m.Auth.ChangePassword)

	g.POST("/profile/email/request", requestLimiter, m.Contact.RequestEmailChange)
	g.POST("/profile/email/verify", verifyLimiter, m.Contact.VerifyEmailChange)
	g.POST("/profile/phone/request", requestLimiter, m.Contact.RequestPhoneChange)
	g.POST("/profile/phone/verify", verifyLimiter, m.Contact.VerifyPhoneChange)

	g.GET("/vaccinations", m.Vaccination.CitizenHistory)
	g.GET("/vaccines", m.Vaccination.ListVaccines)
	g.GET("/vaccine/:vaccineId", m.Vaccination.GetVaccine)
}
