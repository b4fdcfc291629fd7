package domain

import "time"

// User represents a messenger account
type User struct {
	ID        uint64    `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	Username  string    `gorm:"column:username;size:64;uniqueIndex" json:"username"`
	Nickname  string    `gorm:"column:nickname;size:64" json:"nickname"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
}

func (User) TableName() string { return "users" }

// CreateUserRequest signup payload
type CreateUserRequest struct {
	Username string `json:"username" binding:"required,min=2,max=64"`
	Nickname string `json:"nickname" binding:"required,min=1,max=64"`
}

// UserResponse public user representation
type UserResponse struct {
	ID       uint64 `json:"id"`
	Username string `json:"username"`
	Nickname string `json:"nickname"`
}

// ToResponse converts a User to its public representation
func (u *User) ToResponse() *UserResponse {
	return &UserResponse{
		ID:       u.ID,
		Username: u.Username,
		Nickname: u.Nickname,
	}
}
