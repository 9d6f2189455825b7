package router

import (
	"context"

	"github.com/evrs-lk/evrs-api/internal/application"
	"github.com/evrs-lk/evrs-api/internal/container"
	"github.com/evrs-lk/evrs-api/internal/domain/entity"
	"github.com/evrs-lk/evrs-api/internal/infrastructure/mongodb"
	handlers "github.com/evrs-lk/evrs-api/internal/interface/http"
	"github.com/evrs-lk/evrs-api/internal/router/modules"
	"github.com/evrs-lk/evrs-api/pkg/notify"
)

// InitModules constructs repositories, services and handlers from the
// container singletons and registers every route module. Called once during
// startup, after the container is populated.
func InitModules(r *Registry) {
	cfg := container.GetConfig()
	logger := container.GetLogger()
	db := container.GetMongo()
	jwt := container.GetJWT()
	cookies := container.GetCookies()

	citizens := mongodb.NewCitizenRepository(db)
	hcps := mongodb.NewHCPRepository(db)
	hospitals := mongodb.NewHospitalRepository(db)
	mohs := mongodb.NewMOHRepository(db)
	vaccines := mongodb.NewVaccineRepository(db)
	vaccinations := mongodb.NewVaccinationRepository(db)
	phones := mongodb.NewPhoneDirectory(db)

	dispatcher := notify.NewSender(container.GetMailgun(), container.GetTwilio())
	verification := application.NewVerificationService(phones, dispatcher, logger,
		cfg.EmailCodeTTL, cfg.PhoneCodeTTL, cfg.VerifyMaxAttempts)

	search := application.NewSearchService(container.GetES(), cfg.ESCitizensIndex, logger)
	authSvc := application.NewAuthService(jwt, logger)

	profiles := &application.ProfileService{
		Citizens:  citizens,
		HCPs:      hcps,
		Hospitals: hospitals,
		MOHs:      mohs,
		Search:    search,
	}

	records := &application.RecordsService{
		Citizens:     citizens,
		Vaccines:     vaccines,
		Vaccinations: vaccinations,
		HCPs:         hcps,
		Hospitals:    hospitals,
		MOHs:         mohs,
		Publisher:    container.GetRabbitPub(),
		SendNotices:  cfg.NotifySendEnabled,
		Logger:       logger,
	}

	risk := application.NewRiskService(citizens, vaccinations,
		cfg.RiskScorerURL, cfg.RiskScorerTimeout, logger)

	profileHandler := handlers.NewProfileHandler(profiles, logger)
	vaccinationHandler := handlers.NewVaccinationHandler(records, logger)

	authByRole := map[string]*handlers.AuthHandler{}
	authHandlers := map[entity.AccountKind]*handlers.AuthHandler{}
	for _, kind := range []entity.AccountKind{
		entity.KindCitizen, entity.KindHCP, entity.KindHospital, entity.KindMOH, entity.KindAdmin,
	} {
		h := handlers.NewAuthHandler(authSvc, mongodb.NewCredentialDirectory(db, kind), cookies, logger)
		authByRole[string(kind)] = h
		authHandlers[kind] = h
	}

	contactHandler := func(kind entity.AccountKind) *handlers.ContactHandler {
		return handlers.NewContactHandler(verification, mongodb.NewContactDirectory(db, kind), logger)
	}

	citizenContact := contactHandler(entity.KindCitizen)
	// keep the admin search index in step with committed citizen contacts
	citizenContact.OnCommit = func(ctx context.Context, accountID string, _ entity.Channel) {
		profiles.ReindexCitizen(ctx, accountID)
	}

	adminHandler := &handlers.AdminHandler{
		Citizens:  citizens,
		HCPs:      hcps,
		Hospitals: hospitals,
		MOHs:      mohs,
		Records:   records,
		Risk:      risk,
		Search:    search,
		Logger:    logger,
	}

	r.Add(modules.NewAuthModule(authByRole))
	r.Add(&modules.CitizenModule{
		Contact:     citizenContact,
		Auth:        authHandlers[entity.KindCitizen],
		Profile:     profileHandler,
		Vaccination: vaccinationHandler,
		JWT:         jwt,
	})
	r.Add(&modules.HCPModule{
		Contact:     contactHandler(entity.KindHCP),
		Auth:        authHandlers[entity.KindHCP],
		Profile:     profileHandler,
		Vaccination: vaccinationHandler,
		JWT:         jwt,
	})
	r.Add(&modules.HospitalModule{
		Contact:     contactHandler(entity.KindHospital),
		Auth:        authHandlers[entity.KindHospital],
		Profile:     profileHandler,
		Vaccination: vaccinationHandler,
		JWT:         jwt,
	})
	r.Add(&modules.MOHModule{
		Contact:     contactHandler(entity.KindMOH),
		Auth:        authHandlers[entity.KindMOH],
		Profile:     profileHandler,
		Vaccination: vaccinationHandler,
		JWT:         jwt,
	})
	r.Add(&modules.AdminModule{
		Handler:     adminHandler,
		Vaccination: vaccinationHandler,
		JWT:         jwt,
	})
	r.Add(modules.NewDebugModule())
}
