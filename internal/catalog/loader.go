package catalog

import (
	"encoding/json"
	"fmt"
	"os"

	"rubkoff/assistant/internal/matching"
	"rubkoff/assistant/internal/models"
)

// SeedHouse is one catalog entry as scraped from the Rubkoff site:
// numeric fields still carry their display form ("11.9 млн", "170 м²",
// "2 этажа").
type SeedHouse struct {
	Name        string `json:"name"`
	Price       string `json:"price"`
	Area        string `json:"area"`
	Bedrooms    *int   `json:"bedrooms"`
	Bathrooms   *int   `json:"bathrooms"`
	Floors      string `json:"floors"`
	Description string `json:"description"`
	URL         string `json:"url"`
	ImageURL    string `json:"image_url"`
	Material    string `json:"material"`
	Style       string `json:"style"`
	Garage      string `json:"garage"`
	HouseSize   string `json:"house_size"`
	Badges      string `json:"badges"`
}

// House converts the raw record into a typed catalog entry. Price and
// area degrade to 0 ("unavailable") when the display string carries no
// leading number; an absent floor count stays nil rather than zero.
func (s SeedHouse) House() (*models.House, error) {
	if s.Name == "" {
		return nil, fmt.Errorf("house record without a name")
	}
	if s.URL == "" {
		return nil, fmt.Errorf("house %q has no URL", s.Name)
	}

	price := matching.ListingNumber(s.Price)
	area := matching.ListingNumber(s.Area)
	if price < 0 || area < 0 {
		return nil, fmt.Errorf("house %q has a negative price or area", s.Name)
	}

	h := &models.House{
		Name:        s.Name,
		Price:       price,
		Area:        area,
		Bedrooms:    s.Bedrooms,
		Bathrooms:   s.Bathrooms,
		Description: s.Description,
		URL:         s.URL,
		ImageURL:    s.ImageURL,
		Material:    s.Material,
		Style:       s.Style,
		Garage:      s.Garage,
		HouseSize:   s.HouseSize,
		Badges:      s.Badges,
	}
	if f := matching.ListingNumber(s.Floors); f > 0 {
		h.Floors = &f
	}
	return h, nil
}

// LoadHousesFromFile reads seed houses from a JSON file.
func LoadHousesFromFile(path string) ([]*models.House, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read seed file: %w", err)
	}

	var seeds []SeedHouse
	if err := json.Unmarshal(b, &seeds); err != nil {
		return nil, fmt.Errorf("parse seed file: %w", err)
	}

	houses := make([]*models.House, 0, len(seeds))
	for i, s := range seeds {
		h, err := s.House()
		if err != nil {
			return nil, fmt.Errorf("seed record %d: %w", i, err)
		}
		houses = append(houses, h)
	}
	return houses, nil
}
