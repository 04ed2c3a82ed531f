package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rubkoff/assistant/config"
	"rubkoff/assistant/internal/catalog"
	"rubkoff/assistant/internal/database"
	"rubkoff/assistant/internal/gpt"
	"rubkoff/assistant/internal/matching"
	"rubkoff/assistant/internal/models"
	"rubkoff/assistant/internal/telegram"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func testLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)
	return logger
}

func newTestRouter(t *testing.T) (*gin.Engine, *database.Database) {
	t.Helper()

	db, err := database.NewDatabase(":memory:")
	require.NoError(t, err)
	require.NoError(t, db.RunMigrations())
	t.Cleanup(func() { db.Close() })

	logger := testLogger()

	cfg := &config.Config{}
	cfg.Recommendation.TopK = 5
	cfg.Recommendation.SaveLimit = 3
	cfg.Catalog.SeedPath = "does-not-exist.json"

	engine, err := matching.NewEngine(matching.DefaultWeights())
	require.NoError(t, err)

	handler := NewHandler(
		db,
		engine,
		gpt.NewMockGenerator(1),
		telegram.NewService(&config.TelegramConfig{Enabled: false}, logger),
		catalog.NewHouseQueue(1, logger),
		cfg,
		logger,
	)

	router := gin.New()
	SetupRoutes(router, handler)
	return router, db
}

func seedHouses(t *testing.T, db *database.Database, houses ...models.House) {
	t.Helper()
	for _, h := range houses {
		_, err := db.GetDB().Exec(`
			INSERT INTO houses (name, price, area, bedrooms, bathrooms, floors, url, material, style, garage)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			h.Name, h.Price, h.Area, h.Bedrooms, h.Bathrooms, h.Floors, h.URL, h.Material, h.Style, h.Garage)
		require.NoError(t, err)
	}
}

func intPtr(v int) *int           { return &v }
func floatPtr(v float64) *float64 { return &v }

func defaultCatalog(t *testing.T, db *database.Database) {
	seedHouses(t, db,
		models.House{
			Name: "Аврора", Price: 11.9, Area: 170,
			Bedrooms: intPtr(3), Bathrooms: intPtr(2), Floors: floatPtr(2),
			URL: "https://rubkoff.ru/houses/avrora",
			Material: "кирпич", Style: "современный", Garage: "да",
		},
		models.House{
			Name: "Валдай", Price: 14.5, Area: 205,
			Bedrooms: intPtr(4), Bathrooms: intPtr(2), Floors: floatPtr(2),
			URL: "https://rubkoff.ru/houses/valday",
			Material: "газобетон", Style: "классический", Garage: "да",
		},
		models.House{
			Name: "Гранат", Price: 9.8, Area: 128,
			Bedrooms: intPtr(3), Bathrooms: intPtr(1), Floors: floatPtr(1),
			URL: "https://rubkoff.ru/houses/granat",
			Material: "каркасный", Style: "скандинавский", Garage: "нет",
		},
	)
}

func doRequest(router *gin.Engine, method, path string, body interface{}) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestGetAllHouses(t *testing.T) {
	router, db := newTestRouter(t)
	defaultCatalog(t, db)

	w := doRequest(router, http.MethodGet, "/api/houses", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var houses []models.House
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &houses))
	assert.Len(t, houses, 3)
	assert.Equal(t, "Аврора", houses[0].Name)
}

func TestGetHouse(t *testing.T) {
	router, db := newTestRouter(t)
	defaultCatalog(t, db)

	w := doRequest(router, http.MethodGet, "/api/houses/1", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var house models.House
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &house))
	assert.Equal(t, "Аврора", house.Name)
}

func TestGetHouseNotFound(t *testing.T) {
	router, _ := newTestRouter(t)

	w := doRequest(router, http.MethodGet, "/api/houses/999", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = doRequest(router, http.MethodGet, "/api/houses/abc", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGetSurvey(t *testing.T) {
	router, _ := newTestRouter(t)

	w := doRequest(router, http.MethodGet, "/api/survey", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Questions []struct {
			Key     string `json:"key"`
			Prompt  string `json:"prompt"`
			Options []struct {
				Value string `json:"value"`
				Label string `json:"label"`
			} `json:"options"`
		} `json:"questions"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Questions, 8)
	assert.Equal(t, "budget", resp.Questions[0].Key)
	assert.NotEmpty(t, resp.Questions[0].Options)
}

func TestCreateRecommendations(t *testing.T) {
	router, db := newTestRouter(t)
	defaultCatalog(t, db)

	w := doRequest(router, http.MethodPost, "/api/recommendations", RecommendationRequest{
		UserID:   42,
		Username: "ivan",
		Preferences: map[string]string{
			"budget":   "10-13",
			"area":     "150-200",
			"floors":   "2",
			"rooms":    "3",
			"material": "brick",
			"garage":   "yes",
			"style":    "modern",
		},
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp RecommendationResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Recommendations, 3)
	assert.Equal(t, "Аврора", resp.Recommendations[0].House.Name)
	assert.Greater(t, resp.Recommendations[0].Score, resp.Recommendations[2].Score)
	assert.NotEmpty(t, resp.Narrative)

	// Recommendations are persisted for later retrieval.
	w = doRequest(router, http.MethodGet, "/api/recommendations/42", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var stored []models.RecommendedHouse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &stored))
	require.Len(t, stored, 3)
	assert.Equal(t, "Аврора", stored[0].Name)
}

func TestCreateRecommendationsValidation(t *testing.T) {
	router, db := newTestRouter(t)
	defaultCatalog(t, db)

	// Missing user_id.
	w := doRequest(router, http.MethodPost, "/api/recommendations", map[string]interface{}{
		"preferences": map[string]string{"budget": "10-13"},
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// Unknown criterion key.
	w = doRequest(router, http.MethodPost, "/api/recommendations", RecommendationRequest{
		UserID:      42,
		Preferences: map[string]string{"pool": "yes"},
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCreateRecommendationsEmptyCatalog(t *testing.T) {
	router, _ := newTestRouter(t)

	w := doRequest(router, http.MethodPost, "/api/recommendations", RecommendationRequest{
		UserID:      42,
		Preferences: map[string]string{"budget": "10-13"},
	})
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestCreateRecommendationsReplacesPrevious(t *testing.T) {
	router, db := newTestRouter(t)
	defaultCatalog(t, db)

	prefs := map[string]string{"budget": "10-13"}
	for i := 0; i < 2; i++ {
		w := doRequest(router, http.MethodPost, "/api/recommendations", RecommendationRequest{
			UserID:      42,
			Preferences: prefs,
		})
		require.Equal(t, http.StatusOK, w.Code)
	}

	w := doRequest(router, http.MethodGet, "/api/recommendations/42", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var stored []models.RecommendedHouse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &stored))
	assert.Len(t, stored, 3)
}

func TestGetUserRecommendationsNotFound(t *testing.T) {
	router, _ := newTestRouter(t)

	w := doRequest(router, http.MethodGet, "/api/recommendations/7", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = doRequest(router, http.MethodGet, "/api/recommendations/abc", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGetStats(t *testing.T) {
	router, db := newTestRouter(t)
	defaultCatalog(t, db)

	w := doRequest(router, http.MethodPost, "/api/recommendations", RecommendationRequest{
		UserID:      42,
		Preferences: map[string]string{"budget": "10-13"},
	})
	require.Equal(t, http.StatusOK, w.Code)

	w = doRequest(router, http.MethodGet, "/api/stats", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var stats models.UsageStats
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &stats))
	assert.Equal(t, 1, stats.TotalUsers)
	assert.Equal(t, 3, stats.TotalHouses)
	assert.Equal(t, 1, stats.TotalRecommendations)
}

func TestRefreshCatalogMissingSeed(t *testing.T) {
	router, _ := newTestRouter(t)

	w := doRequest(router, http.MethodPost, "/api/catalog/refresh", nil)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestRefreshCatalogEnqueues(t *testing.T) {
	// The shared helper wires a missing seed path, so build a dedicated
	// router here pointing at a real seed file.
	dbx, err := database.NewDatabase(":memory:")
	require.NoError(t, err)
	require.NoError(t, dbx.RunMigrations())
	t.Cleanup(func() { dbx.Close() })

	logger := testLogger()
	cfg := &config.Config{}
	cfg.Recommendation.TopK = 5
	cfg.Recommendation.SaveLimit = 3
	cfg.Catalog.SeedPath = writeSeedFile(t)

	engine, err := matching.NewEngine(matching.DefaultWeights())
	require.NoError(t, err)

	queue := catalog.NewHouseQueue(1, logger)
	handler := NewHandler(
		dbx,
		engine,
		gpt.NewMockGenerator(1),
		telegram.NewService(&config.TelegramConfig{Enabled: false}, logger),
		queue,
		cfg,
		logger,
	)
	r := gin.New()
	SetupRoutes(r, handler)

	w := doRequest(r, http.MethodPost, "/api/catalog/refresh", nil)
	require.Equal(t, http.StatusAccepted, w.Code, w.Body.String())
	assert.Equal(t, 1, queue.Len())

	// A full queue rejects further batches.
	w = doRequest(r, http.MethodPost, "/api/catalog/refresh", nil)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestRefreshCatalogAcceptsPostedBatch(t *testing.T) {
	router, _ := newTestRouter(t)

	batch := []map[string]interface{}{
		{"name": "Мираж", "price": "13.9 млн", "area": "175 м²", "url": "https://rubkoff.ru/houses/mirazh"},
	}
	w := doRequest(router, http.MethodPost, "/api/catalog/refresh", batch)
	assert.Equal(t, http.StatusAccepted, w.Code, w.Body.String())

	// Records failing validation reject the whole batch.
	bad := []map[string]interface{}{{"price": "10 млн"}}
	w = doRequest(router, http.MethodPost, "/api/catalog/refresh", bad)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func writeSeedFile(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "seed.json")
	seed := `[{"name": "Аврора", "price": "11.9 млн", "area": "170 м²", "url": "https://rubkoff.ru/houses/avrora"}]`
	require.NoError(t, os.WriteFile(path, []byte(seed), 0644))
	return path
}
