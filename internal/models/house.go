package models

import "time"

// House is one catalog entry from the Rubkoff website.
// Optional fields are pointers so that "unknown" stays distinguishable
// from a real zero.
type House struct {
	ID          int64     `json:"id" gorm:"primaryKey"`
	Name        string    `json:"name"`
	Price       float64   `json:"price"`
	Area        float64   `json:"area"`
	Bedrooms    *int      `json:"bedrooms"`
	Bathrooms   *int      `json:"bathrooms"`
	Floors      *float64  `json:"floors"`
	Description string    `json:"description"`
	URL         string    `json:"url" gorm:"uniqueIndex"`
	ImageURL    string    `json:"image_url"`
	Material    string    `json:"material"`
	Style       string    `json:"style"`
	Garage      string    `json:"garage"`
	HouseSize   string    `json:"house_size"`
	Badges      string    `json:"badges"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func (House) TableName() string {
	return "houses"
}

// UserRecommendation is one persisted (user, house, score) row. The set
// of rows for a user is replaced wholesale on every recommendation run.
type UserRecommendation struct {
	ID           int64     `json:"id"`
	UserID       int64     `json:"user_id"`
	HouseID      int64     `json:"house_id"`
	Score        float64   `json:"score"`
	MatchReasons []string  `json:"match_reasons"`
	Criteria     string    `json:"criteria,omitempty"`
	IsPrimary    bool      `json:"is_primary"`
	GeneratedAt  time.Time `json:"generated_at"`
}

// RecommendedHouse is a house joined with its stored recommendation,
// as returned to the presentation layer.
type RecommendedHouse struct {
	House
	Score        float64   `json:"recommendation_score"`
	MatchReasons []string  `json:"match_reasons"`
	GeneratedAt  time.Time `json:"generated_at"`
}

type User struct {
	ID           int64     `json:"id"`
	UserID       int64     `json:"user_id"`
	Username     string    `json:"username"`
	FirstName    string    `json:"first_name"`
	LastName     string    `json:"last_name"`
	RegisteredAt time.Time `json:"registered_at"`
	LastActivity time.Time `json:"last_activity"`
}

type UsageStats struct {
	TotalUsers           int `json:"total_users"`
	TotalSurveys         int `json:"total_surveys"`
	TotalRecommendations int `json:"total_recommendations"`
	TotalHouses          int `json:"total_houses"`
}
