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

// AdminModule wires the back-office routes under /api/admin.
type AdminModule struct {
	Handler     *handlers.AdminHandler
	Vaccination *handlers.VaccinationHandler
	JWT         *helpers.JWTManager
}

func (m *AdminModule) Register(rg *gin.RouterGroup) {
	g := rg.Group("/admin")
	g.Use(middleware.RequireRole(m.JWT, string(entity.KindAdmin)))
	g.Use(middleware.RateLimit(container.GetRedis(), 120, time.Minute, middleware.KeyByAccount(), nil))

	g.GET("/citizens", m.Handler.ListCitizens)
	g.GET("/citizens/search", m.Handler.SearchCitizens)
	g.GET("/hcps", m.Handler.ListHCPs)
	g.GET("/hospitals", m.Handler.ListHospitals)
	g.GET("/mohs", m.Handler.ListMOHs)

	g.POST("/register-vaccine", m.Handler.RegisterVaccine)
	g.GET("/vaccines", m.Vaccination.ListVaccines)
	g.GET("/vaccine/:vaccineId", m.Vaccination.GetVaccine)
	g.GET("/vaccinations", m.Handler.ListVaccinations)
	g.POST("/add-vaccination", m.Vaccination.AddVaccination)
	g.GET("/vaccinations/:citizenId", m.Vaccination.CitizenHistoryByID)

	g.GET("/risks", m.Handler.Risks)
	g.GET("/risks/:citizenId", m.Handler.CitizenRisk)
}
