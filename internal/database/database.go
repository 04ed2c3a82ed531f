package database

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"rubkoff/assistant/internal/models"
)

type Database struct {
	db *sql.DB
}

func NewDatabase(dbPath string) (*Database, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, err
	}

	// Enable foreign keys
	_, err = db.Exec("PRAGMA foreign_keys = ON")
	if err != nil {
		return nil, err
	}

	return &Database{db: db}, nil
}

func (d *Database) GetDB() *sql.DB {
	return d.db
}

func (d *Database) Close() error {
	return d.db.Close()
}

// GetAllHouses returns a fresh snapshot of the catalog in insertion
// order. The returned slice is owned by the caller; a concurrent
// catalog refresh never mutates it.
func (d *Database) GetAllHouses() ([]models.House, error) {
	rows, err := d.db.Query(`
        SELECT
            id,
            name,
            price,
            area,
            bedrooms,
            bathrooms,
            floors,
            COALESCE(description, '') as description,
            url,
            COALESCE(image_url, '') as image_url,
            COALESCE(material, '') as material,
            COALESCE(style, '') as style,
            COALESCE(garage, '') as garage,
            COALESCE(house_size, '') as house_size,
            COALESCE(badges, '') as badges,
            COALESCE(created_at, CURRENT_TIMESTAMP) as created_at,
            COALESCE(updated_at, CURRENT_TIMESTAMP) as updated_at
        FROM houses
        ORDER BY id
    `)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var houses []models.House
	for rows.Next() {
		h, err := scanHouse(rows)
		if err != nil {
			return nil, err
		}
		houses = append(houses, h)
	}
	return houses, rows.Err()
}

func (d *Database) GetHouse(id int64) (*models.House, error) {
	rows, err := d.db.Query(`
        SELECT
            id, name, price, area, bedrooms, bathrooms, floors,
            COALESCE(description, ''), url, COALESCE(image_url, ''),
            COALESCE(material, ''), COALESCE(style, ''), COALESCE(garage, ''),
            COALESCE(house_size, ''), COALESCE(badges, ''),
            COALESCE(created_at, CURRENT_TIMESTAMP),
            COALESCE(updated_at, CURRENT_TIMESTAMP)
        FROM houses
        WHERE id = ?
    `, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	if !rows.Next() {
		return nil, rows.Err()
	}
	h, err := scanHouse(rows)
	if err != nil {
		return nil, err
	}
	return &h, nil
}

func (d *Database) CountHouses() (int, error) {
	var count int
	err := d.db.QueryRow("SELECT COUNT(*) FROM houses").Scan(&count)
	return count, err
}

func scanHouse(rows *sql.Rows) (models.House, error) {
	var h models.House
	var bedrooms, bathrooms sql.NullInt64
	var floors sql.NullFloat64
	var createdAt, updatedAt sql.NullString

	err := rows.Scan(
		&h.ID,
		&h.Name,
		&h.Price,
		&h.Area,
		&bedrooms,
		&bathrooms,
		&floors,
		&h.Description,
		&h.URL,
		&h.ImageURL,
		&h.Material,
		&h.Style,
		&h.Garage,
		&h.HouseSize,
		&h.Badges,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return h, err
	}

	if bedrooms.Valid {
		v := int(bedrooms.Int64)
		h.Bedrooms = &v
	}
	if bathrooms.Valid {
		v := int(bathrooms.Int64)
		h.Bathrooms = &v
	}
	if floors.Valid {
		v := floors.Float64
		h.Floors = &v
	}
	if createdAt.Valid {
		h.CreatedAt = parseTimestamp(createdAt.String)
	}
	if updatedAt.Valid {
		h.UpdatedAt = parseTimestamp(updatedAt.String)
	}
	return h, nil
}

// SQLite emits "2006-01-02 15:04:05" for CURRENT_TIMESTAMP; rows
// written by gorm carry RFC3339. Unparseable values degrade to the
// zero time.
func parseTimestamp(s string) time.Time {
	for _, layout := range []string{"2006-01-02 15:04:05", time.RFC3339} {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}

// SaveRecommendations replaces the stored recommendation set for a
// user. The write is transactional: either the whole new set lands or
// the old one stays. The first row of the new set is marked primary.
func (d *Database) SaveRecommendations(userID int64, recs []models.UserRecommendation) error {
	tx, err := d.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM recommendations WHERE user_id = ?", userID); err != nil {
		return fmt.Errorf("failed to clear previous recommendations: %w", err)
	}

	stmt, err := tx.Prepare(`
        INSERT INTO recommendations (user_id, house_id, score, match_reasons, criteria, is_primary, generated_at)
        VALUES (?, ?, ?, ?, ?, ?, CURRENT_TIMESTAMP)
    `)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for i, rec := range recs {
		reasons, err := json.Marshal(rec.MatchReasons)
		if err != nil {
			return fmt.Errorf("failed to marshal match reasons: %w", err)
		}
		if _, err := stmt.Exec(userID, rec.HouseID, rec.Score, string(reasons), rec.Criteria, i == 0); err != nil {
			return fmt.Errorf("failed to insert recommendation: %w", err)
		}
	}

	return tx.Commit()
}

// GetUserRecommendations returns the stored recommendations for a user
// joined with house details, best score first.
func (d *Database) GetUserRecommendations(userID int64, limit int) ([]models.RecommendedHouse, error) {
	if limit <= 0 {
		limit = 3
	}

	rows, err := d.db.Query(`
        SELECT
            h.id, h.name, h.price, h.area, h.bedrooms, h.bathrooms, h.floors,
            COALESCE(h.description, ''), h.url, COALESCE(h.image_url, ''),
            COALESCE(h.material, ''), COALESCE(h.style, ''), COALESCE(h.garage, ''),
            COALESCE(h.house_size, ''), COALESCE(h.badges, ''),
            COALESCE(h.created_at, CURRENT_TIMESTAMP),
            COALESCE(h.updated_at, CURRENT_TIMESTAMP),
            r.score,
            COALESCE(r.match_reasons, '[]'),
            COALESCE(r.generated_at, CURRENT_TIMESTAMP)
        FROM recommendations r
        JOIN houses h ON r.house_id = h.id
        WHERE r.user_id = ?
        ORDER BY r.score DESC
        LIMIT ?
    `, userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.RecommendedHouse
	for rows.Next() {
		var rec models.RecommendedHouse
		var bedrooms, bathrooms sql.NullInt64
		var floors sql.NullFloat64
		var createdAt, updatedAt, generatedAt sql.NullString
		var reasonsJSON string

		err := rows.Scan(
			&rec.ID, &rec.Name, &rec.Price, &rec.Area,
			&bedrooms, &bathrooms, &floors,
			&rec.Description, &rec.URL, &rec.ImageURL,
			&rec.Material, &rec.Style, &rec.Garage,
			&rec.HouseSize, &rec.Badges,
			&createdAt, &updatedAt,
			&rec.Score, &reasonsJSON, &generatedAt,
		)
		if err != nil {
			return nil, err
		}

		if bedrooms.Valid {
			v := int(bedrooms.Int64)
			rec.Bedrooms = &v
		}
		if bathrooms.Valid {
			v := int(bathrooms.Int64)
			rec.Bathrooms = &v
		}
		if floors.Valid {
			v := floors.Float64
			rec.Floors = &v
		}
		if generatedAt.Valid {
			rec.GeneratedAt = parseTimestamp(generatedAt.String)
		}

		// Stored reasons are JSON text; a corrupt row degrades to no
		// reasons rather than failing the whole read.
		if err := json.Unmarshal([]byte(reasonsJSON), &rec.MatchReasons); err != nil {
			rec.MatchReasons = nil
		}

		out = append(out, rec)
	}
	return out, rows.Err()
}

func (d *Database) HasRecommendations(userID int64) (bool, error) {
	var count int
	err := d.db.QueryRow("SELECT COUNT(*) FROM recommendations WHERE user_id = ?", userID).Scan(&count)
	return count > 0, err
}

// CleanupOldRecommendations removes recommendation rows older than the
// given number of days and reports how many were deleted.
func (d *Database) CleanupOldRecommendations(daysOld int) (int64, error) {
	if daysOld <= 0 {
		daysOld = 30
	}
	res, err := d.db.Exec(
		"DELETE FROM recommendations WHERE generated_at < datetime('now', ?)",
		fmt.Sprintf("-%d days", daysOld),
	)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// RegisterOrUpdateUser creates the user row on first contact and
// refreshes profile fields plus last activity afterwards.
func (d *Database) RegisterOrUpdateUser(userID int64, username, firstName, lastName string) error {
	_, err := d.db.Exec(`
        INSERT INTO users (user_id, username, first_name, last_name, registered_at, last_activity)
        VALUES (?, ?, ?, ?, CURRENT_TIMESTAMP, CURRENT_TIMESTAMP)
        ON CONFLICT(user_id) DO UPDATE SET
            username = excluded.username,
            first_name = excluded.first_name,
            last_name = excluded.last_name,
            last_activity = CURRENT_TIMESTAMP
    `, userID, username, firstName, lastName)
	return err
}

func (d *Database) LogAction(userID int64, action string, houseID *int64) error {
	_, err := d.db.Exec(
		"INSERT INTO statistics (user_id, action, house_id) VALUES (?, ?, ?)",
		userID, action, houseID,
	)
	return err
}

func (d *Database) GetUsageStats() (models.UsageStats, error) {
	var stats models.UsageStats

	if err := d.db.QueryRow("SELECT COUNT(*) FROM users").Scan(&stats.TotalUsers); err != nil {
		return stats, err
	}
	if err := d.db.QueryRow("SELECT COUNT(*) FROM statistics WHERE action = 'survey_finished'").Scan(&stats.TotalSurveys); err != nil {
		return stats, err
	}
	if err := d.db.QueryRow("SELECT COUNT(DISTINCT user_id) FROM recommendations").Scan(&stats.TotalRecommendations); err != nil {
		return stats, err
	}
	if err := d.db.QueryRow("SELECT COUNT(*) FROM houses").Scan(&stats.TotalHouses); err != nil {
		return stats, err
	}
	return stats, nil
}
