package application

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"
	"github.com/sirupsen/logrus"

	"github.com/evrs-lk/evrs-api/internal/domain/entity"
)

// SearchService mirrors the citizen directory into Elasticsearch so admins
// can search by name, serial number or district. Indexing is best-effort and
// never blocks the write path.
type SearchService struct {
	ES            *elasticsearch.Client
	CitizensIndex string
	Logger        *logrus.Logger
}

func NewSearchService(es *elasticsearch.Client, citizensIndex string, logger *logrus.Logger) *SearchService {
	return &SearchService{ES: es, CitizensIndex: citizensIndex, Logger: logger}
}

// IndexCitizen upserts one citizen document. Contact details are indexed from
// committed values only.
func (s *SearchService) IndexCitizen(ctx context.Context, c *entity.Citizen) error {
	if s.ES == nil || s.CitizensIndex == "" {
		return nil
	}
	doc := map[string]any{
		"citizen_id":    c.CitizenID,
		"serial_number": c.SerialNumber,
		"full_name":     c.FullName(),
		"district":      c.District,
		"division":      c.Division,
		"email":         c.Email,
		"phone_number":  c.PhoneNumber,
		"updated_at":    c.UpdatedAt.Format(time.RFC3339Nano),
	}
	b, _ := json.Marshal(doc)
	req := esapi.IndexRequest{Index: s.CitizensIndex, DocumentID: c.CitizenID, Body: strings.NewReader(string(b)), Refresh: "false"}
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	res, err := req.Do(ctx, s.ES)
	if err != nil {
		s.Logger.WithError(err).WithField("citizenId", c.CitizenID).Warn("es index failed")
		return err
	}
	defer func() { _ = res.Body.Close() }()
	if res.IsError() {
		s.Logger.WithField("status", res.Status()).WithField("citizenId", c.CitizenID).Warn("es index response error")
	}
	return nil
}

// SearchCitizens runs a multi_match over name, serial number and districts.
func (s *SearchService) SearchCitizens(ctx context.Context, q string, size int) ([]map[string]any, error) {
	if s.ES == nil || s.CitizensIndex == "" {
		return []map[string]any{}, nil
	}
	if size <= 0 || size > 50 {
		size = 10
	}
	query := map[string]any{
		"query": map[string]any{
			"multi_match": map[string]any{
				"query":  q,
				"fields": []string{"full_name^2", "serial_number^2", "district", "division", "email", "phone_number"},
			},
		},
		"size": size,
	}
	b, _ := json.Marshal(query)

	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	res, err := s.ES.Search(
		s.ES.Search.WithContext(ctx),
		s.ES.Search.WithIndex(s.CitizensIndex),
		s.ES.Search.WithBody(strings.NewReader(string(b))),
	)
	if err != nil {
		return nil, err
	}
	defer func() { _ = res.Body.Close() }()

	var parsed struct {
		Hits struct {
			Hits []struct {
				ID     string         `json:"_id"`
				Source map[string]any `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return nil, err
	}
	out := make([]map[string]any, 0, len(parsed.Hits.Hits))
	for _, h := range parsed.Hits.Hits {
		out = append(out, h.Source)
	}
	return out, nil
}
