package repository

import (
	"context"
	"crypto/rand"
	"encoding/hex"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"procurement-service/internal/models"
)

// UserRepository handles accounts, confirmation/reset tokens and contacts.
type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

// CreateUser stores a new inactive account with a bcrypt password hash.
func (r *UserRepository) CreateUser(ctx context.Context, req *models.RegisterRequest) (*models.User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	userType := models.UserTypeBuyer
	if req.Type == string(models.UserTypeSeller) {
		userType = models.UserTypeSeller
	}

	user := models.User{
		Email:        req.Email,
		PasswordHash: string(hash),
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		Company:      req.Company,
		Position:     req.Position,
		Type:         userType,
		IsActive:     false,
	}
	if err := r.db.WithContext(ctx).Create(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *UserRepository) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *UserRepository) GetUserByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).Preload("Contacts").Where("id = ?", id).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// UpdateUser applies a partial profile update.
func (r *UserRepository) UpdateUser(ctx context.Context, user *models.User, req *models.UpdateAccountRequest) error {
	if req.FirstName != nil {
		user.FirstName = *req.FirstName
	}
	if req.LastName != nil {
		user.LastName = *req.LastName
	}
	if req.Company != nil {
		user.Company = *req.Company
	}
	if req.Position != nil {
		user.Position = *req.Position
	}
	if req.Password != nil {
		hash, err := bcrypt.GenerateFromPassword([]byte(*req.Password), bcrypt.DefaultCost)
		if err != nil {
			return err
		}
		user.PasswordHash = string(hash)
	}
	return r.db.WithContext(ctx).Save(user).Error
}

// ActivateUser marks the account as confirmed.
func (r *UserRepository) ActivateUser(ctx context.Context, user *models.User) error {
	user.IsActive = true
	return r.db.WithContext(ctx).Save(user).Error
}

// SetPassword replaces the user's password hash.
func (r *UserRepository) SetPassword(ctx context.Context, user *models.User, password string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	user.PasswordHash = string(hash)
	return r.db.WithContext(ctx).Save(user).Error
}

// VerifyPassword checks a candidate password against the stored hash.
func (r *UserRepository) VerifyPassword(user *models.User, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) == nil
}

// CreateToken issues a random one-time key for the user. Prior tokens of the
// same kind are removed first so only the latest key is valid.
func (r *UserRepository) CreateToken(ctx context.Context, userID uuid.UUID, kind models.TokenKind) (*models.AccountToken, error) {
	if err := r.db.WithContext(ctx).
		Where("user_id = ? AND kind = ?", userID, kind).
		Delete(&models.AccountToken{}).Error; err != nil {
		return nil, err
	}

	buf := make([]byte, 20)
	if _, err := rand.Read(buf); err != nil {
		return nil, err
	}

	token := models.AccountToken{
		UserID: userID,
		Kind:   kind,
		Key:    hex.EncodeToString(buf),
	}
	if err := r.db.WithContext(ctx).Create(&token).Error; err != nil {
		return nil, err
	}
	return &token, nil
}

// GetToken resolves a token by owner email, key and kind.
func (r *UserRepository) GetToken(ctx context.Context, email, key string, kind models.TokenKind) (*models.AccountToken, error) {
	var token models.AccountToken
	err := r.db.WithContext(ctx).
		Joins("JOIN users ON users.id = account_tokens.user_id").
		Where("users.email = ? AND account_tokens.key = ? AND account_tokens.kind = ?", email, key, kind).
		Preload("User").
		First(&token).Error
	if err != nil {
		return nil, err
	}
	return &token, nil
}

// DeleteToken consumes a token after successful use.
func (r *UserRepository) DeleteToken(ctx context.Context, token *models.AccountToken) error {
	return r.db.WithContext(ctx).Delete(token).Error
}

// Contact management

func (r *UserRepository) CreateContact(ctx context.Context, userID uuid.UUID, req *models.CreateContactRequest) (*models.Contact, error) {
	contact := models.Contact{
		UserID:    userID,
		Country:   req.Country,
		Region:    req.Region,
		Zip:       req.Zip,
		City:      req.City,
		Street:    req.Street,
		House:     req.House,
		Building:  req.Building,
		Apartment: req.Apartment,
		Phone:     req.Phone,
	}
	if err := r.db.WithContext(ctx).Create(&contact).Error; err != nil {
		return nil, err
	}
	return &contact, nil
}

func (r *UserRepository) GetContacts(ctx context.Context, userID uuid.UUID) ([]models.Contact, error) {
	var contacts []models.Contact
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).Find(&contacts).Error; err != nil {
		return nil, err
	}
	return contacts, nil
}

// GetContact returns the contact only if it belongs to the given user.
func (r *UserRepository) GetContact(ctx context.Context, userID, contactID uuid.UUID) (*models.Contact, error) {
	var contact models.Contact
	err := r.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", contactID, userID).
		First(&contact).Error
	if err != nil {
		return nil, err
	}
	return &contact, nil
}

// UpdateContact applies a partial update to a user-owned contact.
func (r *UserRepository) UpdateContact(ctx context.Context, contact *models.Contact, req *models.UpdateContactRequest) error {
	if req.Country != nil {
		contact.Country = *req.Country
	}
	if req.Region != nil {
		contact.Region = *req.Region
	}
	if req.Zip != nil {
		contact.Zip = *req.Zip
	}
	if req.City != nil {
		contact.City = *req.City
	}
	if req.Street != nil {
		contact.Street = *req.Street
	}
	if req.House != nil {
		contact.House = *req.House
	}
	if req.Building != nil {
		contact.Building = *req.Building
	}
	if req.Apartment != nil {
		contact.Apartment = *req.Apartment
	}
	if req.Phone != nil {
		contact.Phone = *req.Phone
	}
	return r.db.WithContext(ctx).Save(contact).Error
}

// DeleteContacts removes the user's contacts with the given ids. Ids not owned
// by the user are ignored. Returns the number of rows removed.
func (r *UserRepository) DeleteContacts(ctx context.Context, userID uuid.UUID, ids []uuid.UUID) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	res := r.db.WithContext(ctx).
		Where("user_id = ? AND id IN ?", userID, ids).
		Delete(&models.Contact{})
	return res.RowsAffected, res.Error
}
