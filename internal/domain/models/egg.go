package models

import "time"

// Egg is an unhatched purchase.
type Egg struct {
	ID            string    `json:"id" bson:"id"`
	Tier          EggTier   `json:"tier" bson:"tier"`
	PurchasePrice int64     `json:"purchase_price" bson:"purchase_price"`
	PurchasedAt   time.Time `json:"purchased_at" bson:"purchased_at"`
}
