package devorigin

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/matheus3301/campchat/internal/store"
)

// Demo ids written by Seed. Point a profile's campaign_id and admin_id at
// them to browse the demo data.
const (
	DemoCampaignID = "demo"
	DemoAdminID    = "admin-1"
)

// SeedResult summarizes what Seed wrote.
type SeedResult struct {
	CampaignID string
	AdminID    string
	Rooms      int
	Messages   int
	Skipped    bool
}

type demoCustomer struct {
	id, name, photo string
	lines           []string
	days            int
}

var demoCustomers = []demoCustomer{
	{"cust-alice", "Alice Chen", "https://i.pravatar.cc/96?u=alice", []string{
		"Hi! Is the spring bundle still available?",
		"Yes, it runs until the end of the month.",
		"Great, does it ship abroad?",
		"We ship to most of Asia and Europe.",
		"How long does delivery take?",
		"Usually 5 to 7 business days.",
		"Can I change the colour after ordering?",
		"Sure, reply here before it ships.",
	}, 3},
	{"cust-bob", "Bob Lin", "", []string{
		"My order arrived damaged.",
		"Sorry about that! Could you send a photo?",
		"Sent it by email just now.",
		"Thanks, a replacement is on its way.",
	}, 1},
	{"cust-chiara", "Chiara Rossi", "", nil, 0},
}

// Seed writes a demo campaign with a few customer rooms. Messages of the
// first room span several days so pagination and day headers show up.
// Seeding an already seeded database does nothing.
func Seed(db *store.DB, now time.Time) (*SeedResult, error) {
	res := &SeedResult{CampaignID: DemoCampaignID, AdminID: DemoAdminID}

	existing, err := db.GetCampaign(DemoCampaignID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		res.Skipped = true
		return res, nil
	}

	if err := db.UpsertCampaign(&store.Campaign{
		ID:        DemoCampaignID,
		Title:     "Spring Launch",
		Creator:   DemoAdminID,
		KeyVision: "https://picsum.photos/seed/campchat/640/360",
	}); err != nil {
		return nil, fmt.Errorf("seed campaign: %w", err)
	}
	if err := db.UpsertUser(&store.User{ID: DemoAdminID, Name: "Campaign Admin"}); err != nil {
		return nil, fmt.Errorf("seed admin: %w", err)
	}

	for i, c := range demoCustomers {
		if err := db.UpsertUser(&store.User{ID: c.id, Name: c.name, Photo: c.photo}); err != nil {
			return nil, fmt.Errorf("seed customer %s: %w", c.id, err)
		}
		room := &store.Room{
			ID:         uuid.NewSHA1(uuid.NameSpaceOID, []byte(DemoCampaignID+"/"+c.id)).String(),
			CampaignID: DemoCampaignID,
			CustomerID: c.id,
			AdminID:    DemoAdminID,
		}
		if err := db.UpsertRoom(room); err != nil {
			return nil, fmt.Errorf("seed room %s: %w", c.id, err)
		}
		res.Rooms++

		n, err := seedConversation(db, room, c, now.Add(-time.Duration(i)*time.Hour))
		if err != nil {
			return nil, err
		}
		res.Messages += n
	}
	return res, nil
}

// seedConversation repeats the customer's lines once per day, the last one
// sent at end.
func seedConversation(db *store.DB, room *store.Room, c demoCustomer, end time.Time) (int, error) {
	count := 0
	for day := c.days - 1; day >= 0; day-- {
		at := end.AddDate(0, 0, -day).Add(-time.Duration(len(c.lines)) * 7 * time.Minute)
		for i, line := range c.lines {
			from, to := c.id, DemoAdminID
			if i%2 == 1 {
				from, to = DemoAdminID, c.id
			}
			at = at.Add(7 * time.Minute)
			if _, err := db.IngestMessage(&store.Message{
				ID:         uuid.NewString(),
				RoomID:     room.ID,
				SenderID:   from,
				ReceiverID: to,
				Content:    line,
				CreatedAt:  at.UnixMilli(),
			}); err != nil {
				return count, fmt.Errorf("seed message: %w", err)
			}
			count++
		}
	}
	return count, nil
}
