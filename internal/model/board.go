package model

import "time"

type Board struct {
	ID          string    `bson:"_id" json:"id"`
	Name        string    `bson:"name" json:"name"`
	Description string    `bson:"description" json:"description"`
	CreatorID   string    `bson:"creator_id" json:"creator_id"`
	MemberIDs   []string  `bson:"member_ids" json:"member_ids"` // Owner included
	CreatedAt   time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt   time.Time `bson:"updated_at" json:"updated_at"`
}

func (b *Board) IsOwner(userID string) bool {
	return userID != "" && b.CreatorID == userID
}

func (b *Board) IsMember(userID string) bool {
	return b.IsOwner(userID) || (userID != "" && b.hasMember(userID))
}

func (b *Board) MemberCount() int {
	n := len(b.MemberIDs)
	if !b.hasMember(b.CreatorID) {
		n++
	}
	return n
}

func (b *Board) hasMember(userID string) bool {
	for _, id := range b.MemberIDs {
		if id == userID {
			return true
		}
	}
	return false
}

// Member is the profile of a board user, keyed by identity subject.
type Member struct {
	ID          string    `bson:"_id" json:"id"`
	Email       string    `bson:"email" json:"email"`
	DisplayName string    `bson:"display_name" json:"display_name"`
	LastLogin   time.Time `bson:"last_login" json:"last_login"`
}
