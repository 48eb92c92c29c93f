package repository

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"procurement-service/internal/models"
)

func registerTestUser(t *testing.T, repo *UserRepository, email string) *models.User {
	t.Helper()

	user, err := repo.CreateUser(context.Background(), &models.RegisterRequest{
		FirstName: "Jamie",
		LastName:  "Rivera",
		Email:     email,
		Password:  "s3cretpass",
		Company:   "Acme",
		Position:  "buyer",
	})
	require.NoError(t, err)
	return user
}

func TestCreateUser(t *testing.T) {
	repo := NewUserRepository(newTestDB(t))

	user := registerTestUser(t, repo, "jamie@example.com")
	assert.False(t, user.IsActive)
	assert.Equal(t, models.UserTypeBuyer, user.Type)
	assert.NotEqual(t, "s3cretpass", user.PasswordHash)

	assert.True(t, repo.VerifyPassword(user, "s3cretpass"))
	assert.False(t, repo.VerifyPassword(user, "wrong"))
}

func TestCreateUser_SellerType(t *testing.T) {
	repo := NewUserRepository(newTestDB(t))

	user, err := repo.CreateUser(context.Background(), &models.RegisterRequest{
		FirstName: "Sam",
		LastName:  "Lee",
		Email:     "sam@supplier.example",
		Password:  "s3cretpass",
		Company:   "Bolt Depot",
		Position:  "manager",
		Type:      "seller",
	})
	require.NoError(t, err)
	assert.Equal(t, models.UserTypeSeller, user.Type)
}

func TestTokenLifecycle(t *testing.T) {
	repo := NewUserRepository(newTestDB(t))
	ctx := context.Background()
	user := registerTestUser(t, repo, "jamie@example.com")

	token, err := repo.CreateToken(ctx, user.ID, models.TokenKindConfirmEmail)
	require.NoError(t, err)
	assert.Len(t, token.Key, 40)

	found, err := repo.GetToken(ctx, user.Email, token.Key, models.TokenKindConfirmEmail)
	require.NoError(t, err)
	assert.Equal(t, token.ID, found.ID)
	require.NotNil(t, found.User)
	assert.Equal(t, user.ID, found.User.ID)

	// wrong kind does not match
	_, err = repo.GetToken(ctx, user.Email, token.Key, models.TokenKindPasswordReset)
	assert.Error(t, err)

	require.NoError(t, repo.DeleteToken(ctx, found))
	_, err = repo.GetToken(ctx, user.Email, token.Key, models.TokenKindConfirmEmail)
	assert.Error(t, err)
}

func TestCreateToken_ReplacesPrior(t *testing.T) {
	repo := NewUserRepository(newTestDB(t))
	ctx := context.Background()
	user := registerTestUser(t, repo, "jamie@example.com")

	first, err := repo.CreateToken(ctx, user.ID, models.TokenKindPasswordReset)
	require.NoError(t, err)
	second, err := repo.CreateToken(ctx, user.ID, models.TokenKindPasswordReset)
	require.NoError(t, err)
	assert.NotEqual(t, first.Key, second.Key)

	_, err = repo.GetToken(ctx, user.Email, first.Key, models.TokenKindPasswordReset)
	assert.Error(t, err)
	_, err = repo.GetToken(ctx, user.Email, second.Key, models.TokenKindPasswordReset)
	assert.NoError(t, err)
}

func TestUpdateUser_PartialFields(t *testing.T) {
	repo := NewUserRepository(newTestDB(t))
	ctx := context.Background()
	user := registerTestUser(t, repo, "jamie@example.com")

	company := "Globex"
	require.NoError(t, repo.UpdateUser(ctx, user, &models.UpdateAccountRequest{Company: &company}))

	reloaded, err := repo.GetUserByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, "Globex", reloaded.Company)
	assert.Equal(t, "Jamie", reloaded.FirstName)
}

func TestContactCRUD(t *testing.T) {
	repo := NewUserRepository(newTestDB(t))
	ctx := context.Background()
	user := registerTestUser(t, repo, "jamie@example.com")

	contact, err := repo.CreateContact(ctx, user.ID, &models.CreateContactRequest{
		Country: "US",
		Region:  "CA",
		Zip:     "94107",
		City:    "San Francisco",
		Street:  "Main St",
		House:   "12",
		Phone:   "+1-555-0100",
	})
	require.NoError(t, err)

	contacts, err := repo.GetContacts(ctx, user.ID)
	require.NoError(t, err)
	require.Len(t, contacts, 1)

	city := "Oakland"
	require.NoError(t, repo.UpdateContact(ctx, contact, &models.UpdateContactRequest{City: &city}))
	reloaded, err := repo.GetContact(ctx, user.ID, contact.ID)
	require.NoError(t, err)
	assert.Equal(t, "Oakland", reloaded.City)
	assert.Equal(t, "Main St", reloaded.Street)

	removed, err := repo.DeleteContacts(ctx, user.ID, []uuid.UUID{contact.ID})
	require.NoError(t, err)
	assert.Equal(t, int64(1), removed)

	contacts, err = repo.GetContacts(ctx, user.ID)
	require.NoError(t, err)
	assert.Empty(t, contacts)
}

func TestDeleteContacts_IgnoresOtherUsers(t *testing.T) {
	repo := NewUserRepository(newTestDB(t))
	ctx := context.Background()
	owner := registerTestUser(t, repo, "owner@example.com")
	intruder := registerTestUser(t, repo, "intruder@example.com")

	contact, err := repo.CreateContact(ctx, owner.ID, &models.CreateContactRequest{
		Country: "US", Region: "CA", Zip: "94107", City: "SF", Street: "Main", House: "1", Phone: "x",
	})
	require.NoError(t, err)

	removed, err := repo.DeleteContacts(ctx, intruder.ID, []uuid.UUID{contact.ID})
	require.NoError(t, err)
	assert.Equal(t, int64(0), removed)

	_, err = repo.GetContact(ctx, owner.ID, contact.ID)
	assert.NoError(t, err)
}
