package models

import "time"

// EventType names an entry of the activity journal.
type EventType string

const (
	EventEggPurchased  EventType = "egg_purchased"
	EventAnimalHatched EventType = "animal_hatched"
	EventHybridBred    EventType = "hybrid_bred"
	EventHatchFailed   EventType = "hatch_failed"
	EventBreedFailed   EventType = "breed_failed"
)

// JournalEvent is one append-only audit record. It is never read back to
// rebuild a session.
type JournalEvent struct {
	Type      EventType `bson:"type" json:"type"`
	SubjectID string    `bson:"subject_id" json:"subject_id"`
	Detail    string    `bson:"detail" json:"detail"`
	Amount    int64     `bson:"amount" json:"amount"`
	Balance   int64     `bson:"balance" json:"balance"`
	CreatedAt time.Time `bson:"created_at" json:"created_at"`
}
