package store

// Timestamps are unix milliseconds.

// Campaign is a project whose customers chat with its admins.
type Campaign struct {
	ID        string
	Title     string
	Creator   string
	KeyVision string
	CreatedAt int64
}

// User is an admin or a customer.
type User struct {
	ID    string
	Name  string
	Photo string
}

// Room is the conversation between one customer and one admin of a campaign.
type Room struct {
	ID            string
	CampaignID    string
	CustomerID    string
	AdminID       string
	LastMessageAt int64
	CreatedAt     int64
	UpdatedAt     int64
}

// Message is a stored chat message.
type Message struct {
	ID         string
	RoomID     string
	SenderID   string
	ReceiverID string
	Content    string
	CreatedAt  int64
	UpdatedAt  int64
}
