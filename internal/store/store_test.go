package store

import (
	"fmt"
	"path/filepath"
	"testing"
)

func testDB(t *testing.T) *DB {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	db, err := Open(path)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := db.Migrate(); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db
}

// seedRoom creates a campaign with one admin, one customer and their room.
func seedRoom(t *testing.T, db *DB) *Room {
	t.Helper()
	if err := db.UpsertCampaign(&Campaign{ID: "camp1", Title: "Spring launch", Creator: "admin1"}); err != nil {
		t.Fatal(err)
	}
	for _, u := range []User{{ID: "admin1", Name: "Admin"}, {ID: "cust1", Name: "Alice", Photo: "a.png"}} {
		if err := db.UpsertUser(&u); err != nil {
			t.Fatal(err)
		}
	}
	r := &Room{ID: "room1", CampaignID: "camp1", CustomerID: "cust1", AdminID: "admin1"}
	if err := db.UpsertRoom(r); err != nil {
		t.Fatal(err)
	}
	return r
}

func TestMigrateIsIdempotent(t *testing.T) {
	db := testDB(t)

	result, err := db.Migrate()
	if err != nil {
		t.Fatal(err)
	}
	if result.Changed {
		t.Error("second Migrate() should report Changed=false")
	}
	if result.Version != 1 || result.Dirty {
		t.Errorf("version = %d dirty = %v, want 1 clean", result.Version, result.Dirty)
	}
}

func TestReset(t *testing.T) {
	db := testDB(t)
	seedRoom(t, db)
	if err := db.Reset(); err != nil {
		t.Fatal(err)
	}
	c, err := db.GetCampaign("camp1")
	if err != nil {
		t.Fatal(err)
	}
	if c != nil {
		t.Error("campaign survived Reset()")
	}
}

func TestCampaignAndUsers(t *testing.T) {
	db := testDB(t)
	seedRoom(t, db)

	c, err := db.GetCampaign("camp1")
	if err != nil || c == nil {
		t.Fatalf("GetCampaign() = %v, %v", c, err)
	}
	if c.Title != "Spring launch" || c.CreatedAt == 0 {
		t.Errorf("campaign = %+v", c)
	}
	if missing, err := db.GetCampaign("nope"); err != nil || missing != nil {
		t.Errorf("GetCampaign(nope) = %v, %v", missing, err)
	}

	users, err := db.GetUsers("cust1", "admin1", "cust1", "ghost")
	if err != nil {
		t.Fatal(err)
	}
	if len(users) != 2 || users["cust1"].Photo != "a.png" {
		t.Errorf("users = %+v", users)
	}
}

func TestIngestAndPaginate(t *testing.T) {
	db := testDB(t)
	seedRoom(t, db)

	for i := range 14 {
		m := &Message{
			ID:         fmt.Sprintf("m%02d", i),
			RoomID:     "room1",
			SenderID:   "cust1",
			ReceiverID: "admin1",
			Content:    fmt.Sprintf("message %d", i),
			CreatedAt:  int64(1000 + i),
		}
		isNew, err := db.IngestMessage(m)
		if err != nil {
			t.Fatal(err)
		}
		if !isNew {
			t.Errorf("message %s reported as duplicate", m.ID)
		}
	}

	dup, err := db.IngestMessage(&Message{ID: "m00", RoomID: "room1", Content: "again", CreatedAt: 5000})
	if err != nil {
		t.Fatal(err)
	}
	if dup {
		t.Error("re-ingesting m00 should be a no-op")
	}

	r, err := db.GetRoom("room1")
	if err != nil {
		t.Fatal(err)
	}
	if r.LastMessageAt != 1013 {
		t.Errorf("LastMessageAt = %d, want 1013", r.LastMessageAt)
	}

	tests := []struct {
		page, size int
		wantLen    int
		wantFirst  string
	}{
		{1, 10, 10, "m13"},
		{2, 10, 4, "m03"},
		{3, 10, 0, ""},
		{2, 5, 5, "m08"},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprintf("page%d_size%d", tt.page, tt.size), func(t *testing.T) {
			msgs, err := db.ListMessages("room1", tt.page, tt.size)
			if err != nil {
				t.Fatal(err)
			}
			if len(msgs) != tt.wantLen {
				t.Fatalf("len = %d, want %d", len(msgs), tt.wantLen)
			}
			if tt.wantLen > 0 && msgs[0].ID != tt.wantFirst {
				t.Errorf("first = %s, want %s", msgs[0].ID, tt.wantFirst)
			}
		})
	}
}

func TestListRoomsByActivity(t *testing.T) {
	db := testDB(t)
	seedRoom(t, db)
	if err := db.UpsertUser(&User{ID: "cust2", Name: "Bob"}); err != nil {
		t.Fatal(err)
	}
	if err := db.UpsertRoom(&Room{ID: "room2", CampaignID: "camp1", CustomerID: "cust2", AdminID: "admin1"}); err != nil {
		t.Fatal(err)
	}
	if _, err := db.IngestMessage(&Message{ID: "x", RoomID: "room2", SenderID: "cust2", ReceiverID: "admin1", Content: "hi", CreatedAt: 2000}); err != nil {
		t.Fatal(err)
	}

	rooms, err := db.ListRooms("camp1")
	if err != nil {
		t.Fatal(err)
	}
	if len(rooms) != 2 || rooms[0].ID != "room2" {
		t.Errorf("rooms = %+v, want room2 first", rooms)
	}
}

func TestRoomRequiresCampaign(t *testing.T) {
	db := testDB(t)
	err := db.UpsertRoom(&Room{ID: "orphan", CampaignID: "none", CustomerID: "x", AdminID: "y"})
	if err == nil {
		t.Error("foreign keys should reject a room of an unknown campaign")
	}
}
