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

// HCPModule wires the healthcare-provider routes under /api/hcp. HCPs record
// doses and, like citizens, can change both email and phone.
type HCPModule struct {
	Contact     *handlers.ContactHandler
	Auth        *handlers.AuthHandler
	Profile     *handlers.ProfileHandler
	Vaccination *handlers.VaccinationHandler
	JWT         *helpers.JWTManager
}

func (m *HCPModule) Register(rg *gin.RouterGroup) {
	g := rg.Group("/hcp")
	g.Use(middleware.RequireRole(m.JWT, string(entity.KindHCP)))

	requestLimiter := middleware.RateLimit(container.GetRedis(), 5, time.Minute, middleware.KeyByAccount(), nil)
	verifyLimiter := middleware.RateLimit(container.GetRedis(), 30, time.Minute, middleware.KeyByAccount(), nil)

	g.GET("/get/profile", m.Profile.HCPProfile)
	g.PUT("/profile/password", m.Auth.ChangePassword)

	g.POST("/profile/email/request", requestLimiter, m.Contact.RequestEmailChange)
	g.POST("/profile/email/verify", verifyLimiter, m.Contact.VerifyEmailChange)
	g.POST("/profile/phone/request", requestLimiter, m.Contact.RequestPhoneChange)
	g.POST("/profile/phone/verify", verifyLimiter, m.Contact.VerifyPhoneChange)

	g.POST("/add-vaccination", m.Vaccination.AddVaccination)
	g.GET("/vaccinations/:citizenId", m.Vaccination.CitizenHistoryByID)
	g.GET("/vaccines", m.Vaccination.ListVaccines)
	g.GET("/vaccine/:vaccineId", m.Vaccination.GetVaccine)
}
