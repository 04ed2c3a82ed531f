package api

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"rubkoff/assistant/config"
	"rubkoff/assistant/internal/catalog"
	"rubkoff/assistant/internal/database"
	"rubkoff/assistant/internal/gpt"
	"rubkoff/assistant/internal/matching"
	"rubkoff/assistant/internal/models"
	"rubkoff/assistant/internal/survey"
	"rubkoff/assistant/internal/telegram"
)

type Handler struct {
	db        *database.Database
	logger    *logrus.Logger
	engine    *matching.Engine
	generator gpt.Generator
	notifier  *telegram.Service
	queue     *catalog.HouseQueue
	config    *config.Config
}

// RecommendationRequest is the payload of a completed survey.
type RecommendationRequest struct {
	UserID      int64             `json:"user_id" binding:"required"`
	Username    string            `json:"username"`
	FirstName   string            `json:"first_name"`
	LastName    string            `json:"last_name"`
	Preferences map[string]string `json:"preferences" binding:"required"`
}

// RecommendationResponse carries the ranked houses plus the narrative
// shown to the client.
type RecommendationResponse struct {
	Recommendations []matching.Candidate `json:"recommendations"`
	Narrative       string               `json:"narrative"`
	GeneratedAt     time.Time            `json:"generated_at"`
}

func NewHandler(
	db *database.Database,
	engine *matching.Engine,
	generator gpt.Generator,
	notifier *telegram.Service,
	queue *catalog.HouseQueue,
	cfg *config.Config,
	logger *logrus.Logger,
) *Handler {
	return &Handler{
		db:        db,
		logger:    logger,
		engine:    engine,
		generator: generator,
		notifier:  notifier,
		queue:     queue,
		config:    cfg,
	}
}

// GetAllHouses returns the full catalog.
func (h *Handler) GetAllHouses(c *gin.Context) {
	houses, err := h.db.GetAllHouses()
	if err != nil {
		h.logger.WithError(err).Error("Failed to get houses")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get houses"})
		return
	}

	c.JSON(http.StatusOK, houses)
}

// GetHouse returns one catalog entry by ID.
func (h *Handler) GetHouse(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid house ID"})
		return
	}

	house, err := h.db.GetHouse(id)
	if err != nil {
		h.logger.WithError(err).WithField("house_id", id).Error("Failed to get house")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get house"})
		return
	}
	if house == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "House not found"})
		return
	}

	c.JSON(http.StatusOK, house)
}

// GetSurvey returns the survey questions in order.
func (h *Handler) GetSurvey(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"questions": survey.Questions})
}

// CreateRecommendations runs the scoring engine over the catalog for
// a submitted survey, persists the top matches and returns them with
// a generated narrative.
func (h *Handler) CreateRecommendations(c *gin.Context) {
	var req RecommendationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.WithError(err).Error("Failed to parse recommendation request")
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request parameters"})
		return
	}

	prefs := matching.Preferences(req.Preferences)
	if err := survey.ValidateAnswers(prefs); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	houses, err := h.db.GetAllHouses()
	if err != nil {
		h.logger.WithError(err).Error("Failed to load catalog")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load catalog"})
		return
	}
	if len(houses) == 0 {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Catalog is empty"})
		return
	}

	candidates := h.engine.Rank(houses, prefs, h.config.Recommendation.TopK)

	narrative, err := h.generator.Narrative(c.Request.Context(), prefs, candidates)
	if err != nil {
		h.logger.WithError(err).Error("Failed to generate narrative")
		narrative = gpt.FallbackMessage
	}

	if err := h.db.RegisterOrUpdateUser(req.UserID, req.Username, req.FirstName, req.LastName); err != nil {
		h.logger.WithError(err).Error("Failed to register user")
	}

	now := time.Now().UTC()
	saveLimit := h.config.Recommendation.SaveLimit
	if saveLimit <= 0 || saveLimit > len(candidates) {
		saveLimit = len(candidates)
	}

	recs := make([]models.UserRecommendation, 0, saveLimit)
	for i := 0; i < saveLimit; i++ {
		recs = append(recs, models.UserRecommendation{
			UserID:       req.UserID,
			HouseID:      candidates[i].House.ID,
			Score:        candidates[i].Score,
			MatchReasons: candidates[i].Reasons,
			IsPrimary:    i == 0,
			GeneratedAt:  now,
		})
	}

	if err := h.db.SaveRecommendations(req.UserID, recs); err != nil {
		h.logger.WithError(err).Error("Failed to save recommendations")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save recommendations"})
		return
	}

	if err := h.db.LogAction(req.UserID, "survey_finished", nil); err != nil {
		h.logger.WithError(err).Error("Failed to log survey completion")
	}

	top := candidates[0].House
	user := &models.User{
		UserID:    req.UserID,
		Username:  req.Username,
		FirstName: req.FirstName,
		LastName:  req.LastName,
	}
	if err := h.notifier.NotifyHouseSelection(user, &top); err != nil {
		h.logger.WithError(err).Warn("Failed to send selection notification")
	}

	c.JSON(http.StatusOK, RecommendationResponse{
		Recommendations: candidates,
		Narrative:       narrative,
		GeneratedAt:     now,
	})
}

// GetUserRecommendations returns the stored recommendations for a
// user, best match first.
func (h *Handler) GetUserRecommendations(c *gin.Context) {
	userID, err := strconv.ParseInt(c.Param("user_id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid user ID"})
		return
	}

	limitStr := c.DefaultQuery("limit", "0")
	limit, err := strconv.Atoi(limitStr)
	if err != nil || limit < 0 {
		limit = 0
	}

	recs, err := h.db.GetUserRecommendations(userID, limit)
	if err != nil {
		h.logger.WithError(err).WithField("user_id", userID).Error("Failed to get recommendations")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get recommendations"})
		return
	}
	if len(recs) == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "No recommendations for this user"})
		return
	}

	c.JSON(http.StatusOK, recs)
}

// GetStats returns aggregate usage statistics.
func (h *Handler) GetStats(c *gin.Context) {
	stats, err := h.db.GetUsageStats()
	if err != nil {
		h.logger.WithError(err).Error("Failed to get usage stats")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get usage stats"})
		return
	}

	c.JSON(http.StatusOK, stats)
}

// RefreshCatalog pushes a batch of scraped houses through the
// ingestion queue. A batch posted in the request body takes priority;
// with an empty body the bundled seed file is re-read. The upsert
// happens asynchronously.
func (h *Handler) RefreshCatalog(c *gin.Context) {
	var houses []*models.House

	if c.Request.ContentLength > 0 {
		var seeds []catalog.SeedHouse
		if err := c.ShouldBindJSON(&seeds); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid house batch"})
			return
		}
		for i, s := range seeds {
			house, err := s.House()
			if err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("record %d: %v", i, err)})
				return
			}
			houses = append(houses, house)
		}
	} else {
		var err error
		houses, err = catalog.LoadHousesFromFile(h.config.Catalog.SeedPath)
		if err != nil {
			h.logger.WithError(err).Error("Failed to load seed file")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load catalog seed"})
			return
		}
	}

	if err := h.queue.Push(houses); err != nil {
		h.logger.WithError(err).Error("Failed to enqueue catalog batch")
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Catalog ingestion is not accepting batches"})
		return
	}

	c.JSON(http.StatusAccepted, gin.H{
		"status": "Catalog refresh started",
		"houses": len(houses),
	})
}
