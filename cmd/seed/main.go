package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/joho/godotenv"

	"github.com/evrs-lk/evrs-api/config"
	"github.com/evrs-lk/evrs-api/internal/application"
	"github.com/evrs-lk/evrs-api/internal/domain/entity"
	"github.com/evrs-lk/evrs-api/internal/domain/repository"
	"github.com/evrs-lk/evrs-api/internal/infrastructure/mongodb"
	"github.com/evrs-lk/evrs-api/pkg/helpers"
)

// Seeds one account of every kind plus a small vaccine catalog, and indexes
// the sample citizen for admin search. Safe to re-run; duplicates are skipped.
func main() {
	_ = godotenv.Load()
	cfg := config.Load()
	logger := helpers.NewLogger(cfg.AppName, cfg.Env)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	db, client, err := mongodb.Connect(ctx, cfg.MongoURI, cfg.MongoDB, cfg.MongoMaxPool, cfg.MongoTimeout, logger)
	if err != nil {
		log.Fatalf("failed to connect to mongodb: %v", err)
	}
	defer func() { _ = client.Disconnect(context.Background()) }()

	if err := mongodb.EnsureIndexes(ctx, db); err != nil {
		log.Fatalf("failed to ensure indexes: %v", err)
	}

	const password = "password123"
	hash, err := helpers.HashPassword(password)
	if err != nil {
		log.Fatalf("failed to hash password: %v", err)
	}

	citizen := &entity.Citizen{
		CitizenID:    "CIT-0001",
		SerialNumber: "SN-0001",
		FirstName:    "Nimal",
		LastName:     "Perera",
		BirthDate:    time.Date(1988, 4, 12, 0, 0, 0, 0, time.UTC),
		District:     "Colombo",
		Division:     "Colombo North",
		GuardianNIC:  "881031234V",
		Password:     hash,
		Email:        "nimal.perera@example.com",
		PhoneNumber:  "+94771234567",
		Address:      "12 Galle Road, Colombo 03",
		RecordedBy:   entity.RecordedBy{ID: "ADM-0001", Role: entity.KindAdmin},
	}
	seeded(mongodb.NewCitizenRepository(db).Create(ctx, citizen), "citizen", citizen.CitizenID)

	hcp := &entity.HealthcareProvider{
		HCPID:       "HCP-0001",
		FullName:    "Dr. Kumari Silva",
		NIC:         "905672345V",
		Designation: "Medical Officer",
		HospitalID:  "HOS-0001",
		Password:    hash,
		Email:       "kumari.silva@example.com",
		PhoneNumber: "+94712345678",
	}
	seeded(mongodb.NewHCPRepository(db).Create(ctx, hcp), "hcp", hcp.HCPID)

	hospital := &entity.Hospital{
		HospitalID:  "HOS-0001",
		Name:        "Colombo National Hospital",
		District:    "Colombo",
		Division:    "Colombo Central",
		Password:    hash,
		PhoneNumber: "+94112691111",
	}
	seeded(mongodb.NewHospitalRepository(db).Create(ctx, hospital), "hospital", hospital.HospitalID)

	moh := &entity.MOHOfficial{
		MOHID:       "MOH-0001",
		Name:        "MOH Office Dehiwala",
		District:    "Colombo",
		Division:    "Dehiwala",
		Password:    hash,
		PhoneNumber: "+94113456789",
	}
	seeded(mongodb.NewMOHRepository(db).Create(ctx, moh), "moh", moh.MOHID)

	admin := &entity.Admin{
		AdminID:  "ADM-0001",
		FullName: "System Administrator",
		Email:    "admin@evrs.gov.lk",
		Password: hash,
	}
	seeded(mongodb.NewAdminRepository(db).Create(ctx, admin), "admin", admin.AdminID)

	vaccines := mongodb.NewVaccineRepository(db)
	for i, v := range []entity.Vaccine{
		{Name: "Sinopharm BBIBP-CorV", SideEffects: "Soreness at injection site, mild fever"},
		{Name: "Pfizer-BioNTech", SideEffects: "Fatigue, headache, chills"},
		{Name: "AstraZeneca Covishield", SideEffects: "Fever, muscle pain"},
	} {
		v.VaccineID = fmt.Sprintf("VAC-%04d", i+1)
		v.RecordedBy = entity.RecordedBy{ID: admin.AdminID, Role: entity.KindAdmin}
		seeded(vaccines.Create(ctx, &v), "vaccine", v.VaccineID)
	}

	// Index the sample citizen so admin search works out of the box.
	if esClient, err := helpers.NewESClient(cfg.ESAddrs(), cfg.ElasticsearchUser, cfg.ElasticsearchPass); err == nil {
		search := application.NewSearchService(esClient, cfg.ESCitizensIndex, logger)
		if err := search.IndexCitizen(ctx, citizen); err != nil {
			logger.WithError(err).Warn("citizen not indexed")
		}
	} else {
		logger.WithError(err).Warn("elasticsearch unavailable, skipping indexing")
	}

	fmt.Printf("seeded accounts (password %q) and %d vaccines\n", password, 3)
}

func seeded(err error, kind, id string) {
	switch {
	case err == nil:
		fmt.Printf("seeded %s %s\n", kind, id)
	case errors.Is(err, repository.ErrDuplicate):
		fmt.Printf("%s %s already present\n", kind, id)
	default:
		log.Fatalf("failed to seed %s %s: %v", kind, id, err)
	}
}
