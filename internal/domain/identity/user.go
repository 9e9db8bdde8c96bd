package identity

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Role string

const (
	RoleAdmin      Role = "admin"
	RoleSubAdmin   Role = "sub-admin"
	RoleInstructor Role = "instructor"
	RoleStudent    Role = "student"
)

func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleSubAdmin, RoleInstructor, RoleStudent:
		return true
	}
	return false
}

type User struct {
	ID             uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	FirstName      string     `gorm:"column:first_name;not null" json:"firstName"`
	LastName       string     `gorm:"column:last_name;not null" json:"lastName"`
	NickName       string     `gorm:"column:nick_name" json:"nickName,omitempty"`
	Email          string     `gorm:"column:email;uniqueIndex;not null" json:"email"`
	Phone          *string    `gorm:"column:phone;uniqueIndex" json:"phone,omitempty"`
	Password       string     `gorm:"column:password;not null" json:"-"`
	Role           Role       `gorm:"column:role;not null;index" json:"role"`
	IsActive       bool       `gorm:"column:is_active;not null;default:false" json:"isActive"`
	IsSuspended    bool       `gorm:"column:is_suspended;not null;default:false" json:"isSuspended"`
	VerifiedAsHost bool       `gorm:"column:verified_as_host;not null;default:false" json:"verifiedAsHost"`
	Picture        string     `gorm:"column:picture" json:"picture,omitempty"`
	Address        string     `gorm:"column:address" json:"address,omitempty"`
	State          string     `gorm:"column:state" json:"state,omitempty"`
	Country        string     `gorm:"column:country" json:"country,omitempty"`
	Bio            string     `gorm:"column:bio" json:"bio,omitempty"`
	DateOfBirth    *time.Time `gorm:"column:date_of_birth" json:"dateOfBirth,omitempty"`
	FacebookURL    string     `gorm:"column:facebook_url" json:"facebookUrl,omitempty"`
	TwitterURL     string     `gorm:"column:twitter_url" json:"twitterUrl,omitempty"`
	LinkedInURL    string     `gorm:"column:linkedin_url" json:"linkedinUrl,omitempty"`
	InstagramURL   string     `gorm:"column:instagram_url" json:"instagramUrl,omitempty"`
	WebsiteURL     string     `gorm:"column:website_url" json:"websiteUrl,omitempty"`
	AccessToken    string     `gorm:"column:access_token" json:"-"`

	CreatedAt time.Time      `gorm:"not null;index" json:"createdAt"`
	UpdatedAt time.Time      `gorm:"not null" json:"updatedAt"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

func (User) TableName() string { return "users" }

func (u *User) BeforeCreate(*gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	u.Email = NormalizeEmail(u.Email)
	return nil
}

func (u *User) FullName() string {
	return strings.TrimSpace(u.FirstName + " " + u.LastName)
}

func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
