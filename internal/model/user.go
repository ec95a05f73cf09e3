package model

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// User roles
const (
	RoleStudent = "Student"
	RoleTutor   = "Tutor"
	RoleAdmin   = "Admin"
)

// User represents a user document in MongoDB. The account subsystem owns
// these documents; the messaging core only reads them.
type User struct {
	ID        primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	UserID    string             `json:"userId" bson:"user_id"`
	Username  string             `json:"username" bson:"username"`
	FullName  string             `json:"fullName" bson:"full_name"`
	Email     string             `json:"email" bson:"email"`
	Role      string             `json:"role" bson:"role"`
	IsActive  bool               `json:"isActive" bson:"is_active"`
	CreatedAt time.Time          `json:"createdAt" bson:"created_at"`
	UpdatedAt *time.Time         `json:"updatedAt" bson:"updated_at"`
}

// UserSummary is the directory-search projection of a User, merged with
// live presence state at query time.
type UserSummary struct {
	UserID   string `json:"id"`
	FullName string `json:"fullName"`
	Email    string `json:"email"`
	Username string `json:"username"`
	Role     string `json:"role"`
	IsOnline bool   `json:"isOnline"`
}
