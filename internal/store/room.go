package store

import (
	"database/sql"
	"errors"
	"time"
)

// UpsertRoom inserts a room or refreshes its participants.
func (db *DB) UpsertRoom(r *Room) error {
	now := time.Now().UnixMilli()
	if r.CreatedAt == 0 {
		r.CreatedAt = now
	}
	r.UpdatedAt = now
	_, err := db.Exec(`
		INSERT INTO rooms (id, campaign_id, customer_id, admin_id, last_message_at, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			customer_id = excluded.customer_id,
			admin_id = excluded.admin_id,
			updated_at = excluded.updated_at`,
		r.ID, r.CampaignID, r.CustomerID, r.AdminID, r.LastMessageAt, r.CreatedAt, r.UpdatedAt)
	return err
}

// GetRoom returns a room by id, or nil if it does not exist.
func (db *DB) GetRoom(id string) (*Room, error) {
	var r Room
	err := db.QueryRow(`
		SELECT id, campaign_id, customer_id, admin_id, last_message_at, created_at, updated_at
		FROM rooms WHERE id = ?`, id).
		Scan(&r.ID, &r.CampaignID, &r.CustomerID, &r.AdminID, &r.LastMessageAt, &r.CreatedAt, &r.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &r, nil
}

// ListRooms returns the rooms of a campaign, most recently active first.
func (db *DB) ListRooms(campaignID string) ([]Room, error) {
	rows, err := db.Query(`
		SELECT id, campaign_id, customer_id, admin_id, last_message_at, created_at, updated_at
		FROM rooms
		WHERE campaign_id = ?
		ORDER BY last_message_at DESC, created_at ASC`, campaignID)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var rooms []Room
	for rows.Next() {
		var r Room
		if err := rows.Scan(&r.ID, &r.CampaignID, &r.CustomerID, &r.AdminID, &r.LastMessageAt, &r.CreatedAt, &r.UpdatedAt); err != nil {
			return nil, err
		}
		rooms = append(rooms, r)
	}
	return rooms, rows.Err()
}
