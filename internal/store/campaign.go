package store

import (
	"database/sql"
	"errors"
	"time"
)

// UpsertCampaign inserts or updates a campaign.
func (db *DB) UpsertCampaign(c *Campaign) error {
	if c.CreatedAt == 0 {
		c.CreatedAt = time.Now().UnixMilli()
	}
	_, err := db.Exec(`
		INSERT INTO campaigns (id, title, creator, key_vision, created_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			title = excluded.title,
			creator = excluded.creator,
			key_vision = excluded.key_vision`,
		c.ID, c.Title, c.Creator, c.KeyVision, c.CreatedAt)
	return err
}

// GetCampaign returns a campaign by id, or nil if it does not exist.
func (db *DB) GetCampaign(id string) (*Campaign, error) {
	var c Campaign
	err := db.QueryRow(`
		SELECT id, title, creator, key_vision, created_at
		FROM campaigns WHERE id = ?`, id).
		Scan(&c.ID, &c.Title, &c.Creator, &c.KeyVision, &c.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// UpsertUser inserts or updates a user.
func (db *DB) UpsertUser(u *User) error {
	_, err := db.Exec(`
		INSERT INTO users (id, name, photo) VALUES (?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			photo = excluded.photo`,
		u.ID, u.Name, u.Photo)
	return err
}

// GetUsers returns the users with the given ids, keyed by id. Unknown ids
// are absent from the map.
func (db *DB) GetUsers(ids ...string) (map[string]User, error) {
	users := make(map[string]User, len(ids))
	for _, id := range ids {
		if _, ok := users[id]; ok {
			continue
		}
		var u User
		err := db.QueryRow(`SELECT id, name, photo FROM users WHERE id = ?`, id).
			Scan(&u.ID, &u.Name, &u.Photo)
		if errors.Is(err, sql.ErrNoRows) {
			continue
		}
		if err != nil {
			return nil, err
		}
		users[id] = u
	}
	return users, nil
}
