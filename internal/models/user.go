package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// UserType distinguishes sellers (may upload price lists) from buyers.
type UserType string

const (
	UserTypeSeller UserType = "seller"
	UserTypeBuyer  UserType = "buyer"
)

// TokenKind represents the purpose of an account token
type TokenKind string

const (
	TokenKindConfirmEmail  TokenKind = "confirm_email"
	TokenKindPasswordReset TokenKind = "password_reset"
)

// User represents an account. Accounts are created inactive and must confirm
// their email before they can log in.
type User struct {
	ID           uuid.UUID `json:"id" gorm:"type:uuid;primary_key"`
	Email        string    `json:"email" gorm:"not null;uniqueIndex"`
	PasswordHash string    `json:"-" gorm:"not null"`
	FirstName    string    `json:"firstName"`
	LastName     string    `json:"lastName"`
	Company      string    `json:"company"`
	Position     string    `json:"position"`
	Type         UserType  `json:"type" gorm:"type:varchar(16);not null;default:'buyer'"`
	IsActive     bool      `json:"isActive" gorm:"not null;default:false"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`

	Contacts []Contact `json:"contacts,omitempty" gorm:"foreignKey:UserID"`
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}

// Contact is an address/phone row owned by a user.
type Contact struct {
	ID        uuid.UUID `json:"id" gorm:"type:uuid;primary_key"`
	UserID    uuid.UUID `json:"-" gorm:"type:uuid;not null;index"`
	Country   string    `json:"country"`
	Region    string    `json:"region"`
	Zip       string    `json:"zip"`
	City      string    `json:"city"`
	Street    string    `json:"street"`
	House     string    `json:"house"`
	Building  string    `json:"building"`
	Apartment string    `json:"apartment"`
	Phone     string    `json:"phone"`
}

func (c *Contact) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}

// AccountToken is a one-time key mailed to the user for email confirmation or
// password reset. Consumed (deleted) on successful use.
type AccountToken struct {
	ID        uuid.UUID `json:"id" gorm:"type:uuid;primary_key"`
	UserID    uuid.UUID `json:"userId" gorm:"type:uuid;not null;index"`
	Kind      TokenKind `json:"kind" gorm:"type:varchar(32);not null"`
	Key       string    `json:"key" gorm:"not null;uniqueIndex"`
	CreatedAt time.Time `json:"createdAt"`

	User *User `json:"-" gorm:"foreignKey:UserID"`
}

func (t *AccountToken) BeforeCreate(tx *gorm.DB) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	return nil
}

// TableName returns the table name for the User model
func (User) TableName() string {
	return "users"
}

// TableName returns the table name for the Contact model
func (Contact) TableName() string {
	return "contacts"
}

// TableName returns the table name for the AccountToken model
func (AccountToken) TableName() string {
	return "account_tokens"
}

// RegisterRequest represents a request to create a new account
type RegisterRequest struct {
	FirstName string `json:"first_name" binding:"required"`
	LastName  string `json:"last_name" binding:"required"`
	Email     string `json:"email" binding:"required,email"`
	Password  string `json:"password" binding:"required"`
	Company   string `json:"company" binding:"required"`
	Position  string `json:"position" binding:"required"`
	Type      string `json:"type"`
}

// ConfirmRequest represents an email confirmation request
type ConfirmRequest struct {
	Email string `json:"email" binding:"required,email"`
	Token string `json:"token" binding:"required"`
}

// LoginRequest represents a login request
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// UpdateAccountRequest represents a partial profile update
type UpdateAccountRequest struct {
	FirstName *string `json:"first_name,omitempty"`
	LastName  *string `json:"last_name,omitempty"`
	Company   *string `json:"company,omitempty"`
	Position  *string `json:"position,omitempty"`
	Password  *string `json:"password,omitempty"`
}

// PasswordResetRequest represents a password reset initiation
type PasswordResetRequest struct {
	Email string `json:"email" binding:"required,email"`
}

// PasswordResetConfirmRequest represents a password reset completion
type PasswordResetConfirmRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Token    string `json:"token" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// CreateContactRequest represents a request to add a contact
type CreateContactRequest struct {
	Country   string `json:"country" binding:"required"`
	Region    string `json:"region" binding:"required"`
	Zip       string `json:"zip" binding:"required"`
	City      string `json:"city" binding:"required"`
	Street    string `json:"street" binding:"required"`
	House     string `json:"house" binding:"required"`
	Building  string `json:"building"`
	Apartment string `json:"apartment"`
	Phone     string `json:"phone" binding:"required"`
}

// UpdateContactRequest represents a partial contact update
type UpdateContactRequest struct {
	ID        string  `json:"id" binding:"required"`
	Country   *string `json:"country,omitempty"`
	Region    *string `json:"region,omitempty"`
	Zip       *string `json:"zip,omitempty"`
	City      *string `json:"city,omitempty"`
	Street    *string `json:"street,omitempty"`
	House     *string `json:"house,omitempty"`
	Building  *string `json:"building,omitempty"`
	Apartment *string `json:"apartment,omitempty"`
	Phone     *string `json:"phone,omitempty"`
}

// DeleteContactsRequest carries a comma-separated list of contact ids
type DeleteContactsRequest struct {
	Items string `json:"items" binding:"required"`
}
