package store

import (
	"fmt"
	"time"
)

// IngestMessage stores a message and bumps its room's activity in one
// transaction. Inserting an id twice is a no-op. Reports whether the message
// was new.
func (db *DB) IngestMessage(m *Message) (bool, error) {
	if m.CreatedAt == 0 {
		m.CreatedAt = time.Now().UnixMilli()
	}
	if m.UpdatedAt == 0 {
		m.UpdatedAt = m.CreatedAt
	}

	tx, err := db.Begin()
	if err != nil {
		return false, fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	res, err := tx.Exec(`
		INSERT INTO messages (id, room_id, sender_id, receiver_id, content, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO NOTHING`,
		m.ID, m.RoomID, m.SenderID, m.ReceiverID, m.Content, m.CreatedAt, m.UpdatedAt)
	if err != nil {
		return false, fmt.Errorf("insert message: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	if n == 0 {
		return false, nil
	}

	if _, err := tx.Exec(`
		UPDATE rooms SET
			last_message_at = MAX(last_message_at, ?),
			updated_at = ?
		WHERE id = ?`, m.CreatedAt, time.Now().UnixMilli(), m.RoomID); err != nil {
		return false, fmt.Errorf("touch room: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("commit: %w", err)
	}
	return true, nil
}

// ListMessages returns one page of a room's messages, newest first.
// pageIndex is 1-based.
func (db *DB) ListMessages(roomID string, pageIndex, pageSize int) ([]Message, error) {
	if pageSize <= 0 {
		pageSize = 10
	}
	if pageIndex <= 0 {
		pageIndex = 1
	}
	rows, err := db.Query(`
		SELECT id, room_id, sender_id, receiver_id, content, created_at, updated_at
		FROM messages
		WHERE room_id = ?
		ORDER BY created_at DESC, rowid DESC
		LIMIT ? OFFSET ?`, roomID, pageSize, (pageIndex-1)*pageSize)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var msgs []Message
	for rows.Next() {
		var m Message
		if err := rows.Scan(&m.ID, &m.RoomID, &m.SenderID, &m.ReceiverID, &m.Content, &m.CreatedAt, &m.UpdatedAt); err != nil {
			return nil, err
		}
		msgs = append(msgs, m)
	}
	return msgs, rows.Err()
}
