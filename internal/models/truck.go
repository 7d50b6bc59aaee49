package models

import "time"

// Truck represents a vehicle the user logs fuel for.
type Truck struct {
	ID        string    `bson:"_id,omitempty" json:"id"`
	UserID    string    `bson:"user_id" json:"userId"`
	Number    string    `bson:"number" json:"number"`
	MakeModel string    `bson:"make_model" json:"makeModel"`
	CreatedAt time.Time `bson:"created_at" json:"createdAt"`
}

// TruckInput is the client payload for adding a truck.
type TruckInput struct {
	Number    string `json:"number" validate:"required,max=32"`
	MakeModel string `json:"makeModel" validate:"max=100"`
}
