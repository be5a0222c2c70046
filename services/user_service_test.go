package services

import (
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"taskdesk/taskdesk/models"
	"taskdesk/taskdesk/testutils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func newTestUserService() *UserService {
	return NewUserService(NewAuthService("secret", 1).WithCost(bcrypt.MinCost), nil)
}

func validCreateRequest() models.UserCreateRequest {
	age := 25
	return models.UserCreateRequest{
		Username:  "testuser",
		Email:     "test@example.com",
		FirstName: "Test",
		LastName:  "User",
		Password:  "testpass123",
		Age:       &age,
		Bio:       "Test bio",
	}
}

func TestCreateUser_Success(t *testing.T) {
	db := testutils.SetupTestDB(t)
	userService := newTestUserService()

	user, err := userService.CreateUser(db, validCreateRequest())
	require.NoError(t, err)

	assert.NotZero(t, user.ID)
	assert.Equal(t, "testuser", user.Username)
	assert.Equal(t, "test@example.com", user.Email)
	assert.Equal(t, 25, *user.Age)
	assert.True(t, user.IsActive)
	assert.False(t, user.IsStaff)
	assert.False(t, user.IsSuperuser)
	assert.False(t, user.CreatedAt.IsZero())
	assert.NotEqual(t, "testpass123", user.PasswordHash)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte("testpass123")))

	var events []models.Event
	require.NoError(t, db.DB.Find(&events).Error)
	require.Len(t, events, 1)
	assert.Equal(t, "user.created", events[0].Event)
	assert.Equal(t, user.ID, events[0].ActorID)
}

func TestCreateUser_NormalizesEmailDomain(t *testing.T) {
	db := testutils.SetupTestDB(t)
	req := validCreateRequest()
	req.Email = "Test@EXAMPLE.com"

	user, err := newTestUserService().CreateUser(db, req)
	require.NoError(t, err)
	assert.Equal(t, "Test@example.com", user.Email)
}

func TestCreateUser_DuplicateEmail(t *testing.T) {
	db := testutils.SetupTestDB(t)
	userService := newTestUserService()

	_, err := userService.CreateUser(db, validCreateRequest())
	require.NoError(t, err)

	req := validCreateRequest()
	req.Username = "testuser2"
	_, err = userService.CreateUser(db, req)

	var verr *ValidationError
	require.True(t, errors.As(err, &verr))
	assert.ErrorIs(t, err, ErrValidation)
	assert.Contains(t, verr.Fields, "email")
	assert.NotContains(t, verr.Fields, "username")

	count, err := userService.CountUsers(db)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}

func TestCreateUser_DuplicateUsername(t *testing.T) {
	db := testutils.SetupTestDB(t)
	userService := newTestUserService()

	_, err := userService.CreateUser(db, validCreateRequest())
	require.NoError(t, err)

	req := validCreateRequest()
	req.Email = "other@example.com"
	_, err = userService.CreateUser(db, req)

	var verr *ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, []string{"A user with that username already exists."}, verr.Fields["username"])
}

func TestCreateUser_ShortPassword(t *testing.T) {
	db := testutils.SetupTestDB(t)
	userService := newTestUserService()

	req := validCreateRequest()
	req.Password = "short"
	_, err := userService.CreateUser(db, req)

	var verr *ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Contains(t, verr.Fields, "password")

	count, err := userService.CountUsers(db)
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestCreateUser_PasswordTooLong(t *testing.T) {
	db := testutils.SetupTestDB(t)
	userService := newTestUserService()

	req := validCreateRequest()
	req.Password = strings.Repeat("a", 80)
	_, err := userService.CreateUser(db, req)

	var verr *ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, []string{"Ensure this field has no more than 72 bytes."}, verr.Fields["password"])

	count, err := userService.CountUsers(db)
	require.NoError(t, err)
	assert.Zero(t, count)

	req.Password = strings.Repeat("a", 72)
	_, err = userService.CreateUser(db, req)
	assert.NoError(t, err)
}

func TestCreateUser_TrimsWhitespace(t *testing.T) {
	db := testutils.SetupTestDB(t)

	req := validCreateRequest()
	req.Username = "  testuser  "
	req.Email = " test@Example.com "
	req.FirstName = " Test "
	req.LastName = "User\t"
	req.Bio = "\nTest bio "
	req.Password = " testpass123 "
	user, err := newTestUserService().CreateUser(db, req)
	require.NoError(t, err)

	assert.Equal(t, "testuser", user.Username)
	assert.Equal(t, "test@example.com", user.Email)
	assert.Equal(t, "Test", user.FirstName)
	assert.Equal(t, "User", user.LastName)
	assert.Equal(t, "Test bio", user.Bio)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(" testpass123 ")))
}

func TestUpdateUser_TrimsWhitespace(t *testing.T) {
	db := testutils.SetupTestDB(t)
	user := testutils.CreateUser(t, db, "testuser", "test@example.com", "testpass123")

	updated, err := newTestUserService().UpdateUser(db, user.ID, models.UserUpdateRequest{
		FirstName: strPtr("  Jane "),
		Bio:       strPtr(" "),
	}, true)
	require.NoError(t, err)

	assert.Equal(t, "Jane", updated.FirstName)
	assert.Equal(t, "", updated.Bio)
	assert.Equal(t, "testuser", updated.Username)
}

func TestCreateUser_MissingFields(t *testing.T) {
	db := testutils.SetupTestDB(t)

	_, err := newTestUserService().CreateUser(db, models.UserCreateRequest{})

	var verr *ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Contains(t, verr.Fields, "username")
	assert.Contains(t, verr.Fields, "email")
	assert.Contains(t, verr.Fields, "password")
}

func TestCreateUser_ConcurrentSameEmail(t *testing.T) {
	db := testutils.SetupTestDB(t)
	userService := newTestUserService()

	var wg sync.WaitGroup
	results := make([]error, 2)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			req := validCreateRequest()
			req.Username = []string{"racer1", "racer2"}[i]
			_, results[i] = userService.CreateUser(db, req)
		}(i)
	}
	wg.Wait()

	succeeded := 0
	for _, err := range results {
		if err == nil {
			succeeded++
		} else {
			assert.ErrorIs(t, err, ErrValidation)
		}
	}
	assert.Equal(t, 1, succeeded)
}

func TestGetUserById_NotFound(t *testing.T) {
	db := testutils.SetupTestDB(t)

	_, err := newTestUserService().GetUserById(db, 999)
	assert.ErrorIs(t, err, ErrUserNotFound)
	assert.Equal(t, "user not found", err.Error())
}

func TestUpdateUser_Partial(t *testing.T) {
	db := testutils.SetupTestDB(t)
	userService := newTestUserService()
	created, err := userService.CreateUser(db, validCreateRequest())
	require.NoError(t, err)

	bio := "Updated bio"
	updated, err := userService.UpdateUser(db, created.ID, models.UserUpdateRequest{Bio: &bio}, true)
	require.NoError(t, err)

	assert.Equal(t, "Updated bio", updated.Bio)
	assert.Equal(t, created.Username, updated.Username)
	assert.Equal(t, created.Email, updated.Email)
	assert.Equal(t, created.PasswordHash, updated.PasswordHash)
	assert.False(t, updated.UpdatedAt.Before(created.UpdatedAt))
}

func TestUpdateUser_ReplaceRequiresUsernameAndEmail(t *testing.T) {
	db := testutils.SetupTestDB(t)
	userService := newTestUserService()
	created, err := userService.CreateUser(db, validCreateRequest())
	require.NoError(t, err)

	bio := "Updated bio"
	_, err = userService.UpdateUser(db, created.ID, models.UserUpdateRequest{Bio: &bio}, false)

	var verr *ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Contains(t, verr.Fields, "username")
	assert.Contains(t, verr.Fields, "email")
}

func TestUpdateUser_EmailTakenByOther(t *testing.T) {
	db := testutils.SetupTestDB(t)
	userService := newTestUserService()
	first, err := userService.CreateUser(db, validCreateRequest())
	require.NoError(t, err)
	testutils.CreateUser(t, db, "other", "other@example.com", "otherpass123")

	email := "other@example.com"
	_, err = userService.UpdateUser(db, first.ID, models.UserUpdateRequest{Email: &email}, true)
	assert.ErrorIs(t, err, ErrValidation)

	// Keeping one's own email is not a conflict.
	own := "test@example.com"
	_, err = userService.UpdateUser(db, first.ID, models.UserUpdateRequest{Email: &own}, true)
	assert.NoError(t, err)
}

func TestUpdateUser_NotFound(t *testing.T) {
	db := testutils.SetupTestDB(t)

	bio := "x"
	_, err := newTestUserService().UpdateUser(db, 42, models.UserUpdateRequest{Bio: &bio}, true)
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestDeleteUser_CascadesTasks(t *testing.T) {
	db := testutils.SetupTestDB(t)
	userService := newTestUserService()

	owner := testutils.CreateUser(t, db, "owner", "owner@example.com", "ownerpass123")
	other := testutils.CreateUser(t, db, "other", "other@example.com", "otherpass123")
	testutils.CreateTask(t, db, owner, "Task 1", false)
	testutils.CreateTask(t, db, owner, "Task 2", true)
	testutils.CreateTask(t, db, other, "Task 3", false)

	require.NoError(t, userService.DeleteUser(db, owner.ID))

	_, err := userService.GetUserById(db, owner.ID)
	assert.ErrorIs(t, err, ErrUserNotFound)

	var remaining []models.Task
	require.NoError(t, db.DB.Find(&remaining).Error)
	require.Len(t, remaining, 1)
	assert.Equal(t, "Task 3", remaining[0].Title)
}

func TestDeleteUser_NotFound(t *testing.T) {
	db := testutils.SetupTestDB(t)
	assert.ErrorIs(t, newTestUserService().DeleteUser(db, 7), ErrUserNotFound)
}

func TestGetUsers_PaginationAndFilters(t *testing.T) {
	db := testutils.SetupTestDB(t)
	userService := newTestUserService()

	alice := testutils.CreateUser(t, db, "alice", "alice@example.com", "alicepass123")
	testutils.CreateUser(t, db, "bob", "bob@example.com", "bobpass1234")
	testutils.CreateUser(t, db, "carol", "carol@sample.org", "carolpass123")
	require.NoError(t, db.DB.Model(&alice).Update("is_staff", true).Error)

	users, total, err := userService.GetUsers(db, models.UserFilter{}, models.PageRequest{Page: 1, PageSize: 2})
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	require.Len(t, users, 2)
	assert.Equal(t, "alice", users[0].Username)
	assert.Equal(t, "bob", users[1].Username)

	users, _, err = userService.GetUsers(db, models.UserFilter{}, models.PageRequest{Page: 2, PageSize: 2})
	require.NoError(t, err)
	require.Len(t, users, 1)
	assert.Equal(t, "carol", users[0].Username)

	users, total, err = userService.GetUsers(db, models.UserFilter{Search: "EXAMPLE"}, models.PageRequest{Page: 1, PageSize: 10})
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	assert.Len(t, users, 2)

	staff := true
	users, total, err = userService.GetUsers(db, models.UserFilter{IsStaff: &staff}, models.PageRequest{Page: 1, PageSize: 10})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	assert.Equal(t, "alice", users[0].Username)
}

func TestGetUsers_SuperuserAndCreatedRange(t *testing.T) {
	db := testutils.SetupTestDB(t)
	userService := newTestUserService()
	page := models.PageRequest{Page: 1, PageSize: 10}

	root := testutils.CreateUser(t, db, "root", "root@example.com", "rootpass123")
	old := testutils.CreateUser(t, db, "old", "old@example.com", "oldpass1234")
	testutils.CreateUser(t, db, "recent", "recent@example.com", "recentpass1")
	require.NoError(t, db.DB.Model(&root).Update("is_superuser", true).Error)

	jan := time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)
	require.NoError(t, db.DB.Model(&old).Update("created_at", jan).Error)

	superuser := true
	users, total, err := userService.GetUsers(db, models.UserFilter{IsSuperuser: &superuser}, page)
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	assert.Equal(t, "root", users[0].Username)

	feb := time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)
	users, total, err = userService.GetUsers(db, models.UserFilter{Created: models.CreatedRange{Before: &feb}}, page)
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	assert.Equal(t, "old", users[0].Username)

	_, total, err = userService.GetUsers(db, models.UserFilter{Created: models.CreatedRange{After: &feb}}, page)
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
}
