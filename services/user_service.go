package services

import (
	"errors"
	"strings"
	"time"
	"unicode/utf8"

	"taskdesk/taskdesk/broker"
	"taskdesk/taskdesk/database"
	"taskdesk/taskdesk/models"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const (
	minPasswordLength = 8

	// bcrypt only hashes the first 72 bytes and rejects longer input.
	maxPasswordBytes = 72
)

type UserServiceInterface interface {
	CreateUser(db *database.Database, req models.UserCreateRequest) (models.User, error)
	GetUserById(db *database.Database, id uint) (models.User, error)
	UpdateUser(db *database.Database, id uint, req models.UserUpdateRequest, partial bool) (models.User, error)
	DeleteUser(db *database.Database, id uint) error
	GetUsers(db *database.Database, filter models.UserFilter, page models.PageRequest) ([]models.User, int64, error)
	CountUsers(db *database.Database) (int64, error)
}

type UserService struct {
	hasher PasswordHasher
	events EventServiceInterface
}

func NewUserService(hasher PasswordHasher, events EventServiceInterface) *UserService {
	if events == nil {
		events = NewEventService(nil)
	}
	return &UserService{hasher: hasher, events: events}
}

func (s *UserService) CreateUser(db *database.Database, req models.UserCreateRequest) (models.User, error) {
	req.Normalize()
	req.Email = normalizeEmail(req.Email)
	if err := validateUserCreate(req); err != nil {
		return models.User{}, err
	}

	passwordHash, err := s.hasher.HashPassword(req.Password)
	if errors.Is(err, bcrypt.ErrPasswordTooLong) {
		return models.User{}, passwordTooLongError()
	}
	if err != nil {
		return models.User{}, err
	}

	tx := db.DB.Begin()
	if tx.Error != nil {
		return models.User{}, tx.Error
	}

	if err := checkUserUniqueness(tx, 0, &req.Username, &req.Email); err != nil {
		tx.Rollback()
		return models.User{}, err
	}

	user := models.User{
		Username:     req.Username,
		Email:        req.Email,
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		Age:          req.Age,
		Bio:          req.Bio,
		PasswordHash: passwordHash,
		IsActive:     true,
	}

	if err := tx.Create(&user).Error; err != nil {
		tx.Rollback()
		return models.User{}, translateUserWriteError(db, err, 0, &req.Username, &req.Email)
	}

	event, err := s.events.Record(tx, broker.UserCreated, "user", "create", user.ID, map[string]interface{}{
		"user_id":  user.ID,
		"username": user.Username,
		"email":    user.Email,
	})
	if err != nil {
		tx.Rollback()
		return models.User{}, err
	}

	if err := tx.Commit().Error; err != nil {
		tx.Rollback()
		return models.User{}, err
	}

	s.events.Dispatch(db, event)
	return user, nil
}

func (s *UserService) GetUserById(db *database.Database, id uint) (models.User, error) {
	var user models.User
	if err := db.DB.First(&user, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.User{}, ErrUserNotFound
		}
		return models.User{}, err
	}
	return user, nil
}

func (s *UserService) UpdateUser(db *database.Database, id uint, req models.UserUpdateRequest, partial bool) (models.User, error) {
	req.Normalize()
	if req.Email != nil {
		email := normalizeEmail(*req.Email)
		req.Email = &email
	}
	if err := validateUserUpdate(req); err != nil {
		return models.User{}, err
	}

	tx := db.DB.Begin()
	if tx.Error != nil {
		return models.User{}, tx.Error
	}

	var user models.User
	if err := tx.First(&user, "id = ?", id).Error; err != nil {
		tx.Rollback()
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.User{}, ErrUserNotFound
		}
		return models.User{}, err
	}

	if !partial {
		if err := requiredFieldsError(req.MissingForReplace()); err != nil {
			tx.Rollback()
			return models.User{}, err
		}
	}

	if err := checkUserUniqueness(tx, user.ID, req.Username, req.Email); err != nil {
		tx.Rollback()
		return models.User{}, err
	}

	changes := map[string]interface{}{"updated_at": time.Now()}
	if req.Username != nil {
		changes["username"] = *req.Username
	}
	if req.Email != nil {
		changes["email"] = *req.Email
	}
	if req.FirstName != nil {
		changes["first_name"] = *req.FirstName
	}
	if req.LastName != nil {
		changes["last_name"] = *req.LastName
	}
	if req.Age != nil {
		changes["age"] = *req.Age
	}
	if req.Bio != nil {
		changes["bio"] = *req.Bio
	}

	if err := tx.Model(&user).Updates(changes).Error; err != nil {
		tx.Rollback()
		return models.User{}, translateUserWriteError(db, err, user.ID, req.Username, req.Email)
	}

	if err := tx.First(&user, "id = ?", id).Error; err != nil {
		tx.Rollback()
		return models.User{}, err
	}

	event, err := s.events.Record(tx, broker.UserUpdated, "user", "update", user.ID, map[string]interface{}{
		"user_id":  user.ID,
		"username": user.Username,
		"email":    user.Email,
	})
	if err != nil {
		tx.Rollback()
		return models.User{}, err
	}

	if err := tx.Commit().Error; err != nil {
		tx.Rollback()
		return models.User{}, err
	}

	s.events.Dispatch(db, event)
	return user, nil
}

func (s *UserService) DeleteUser(db *database.Database, id uint) error {
	tx := db.DB.Begin()
	if tx.Error != nil {
		return tx.Error
	}

	var user models.User
	if err := tx.First(&user, "id = ?", id).Error; err != nil {
		tx.Rollback()
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrUserNotFound
		}
		return err
	}

	// The FK cascades on postgres; sqlite only enforces it when foreign_keys
	// is on, so the tasks go explicitly.
	deleted := tx.Where("created_by_id = ?", user.ID).Delete(&models.Task{})
	if deleted.Error != nil {
		tx.Rollback()
		return deleted.Error
	}

	if err := tx.Delete(&user).Error; err != nil {
		tx.Rollback()
		return err
	}

	event, err := s.events.Record(tx, broker.UserDeleted, "user", "delete", user.ID, map[string]interface{}{
		"user_id":       user.ID,
		"username":      user.Username,
		"tasks_deleted": deleted.RowsAffected,
	})
	if err != nil {
		tx.Rollback()
		return err
	}

	if err := tx.Commit().Error; err != nil {
		tx.Rollback()
		return err
	}

	s.events.Dispatch(db, event)
	return nil
}

func (s *UserService) GetUsers(db *database.Database, filter models.UserFilter, page models.PageRequest) ([]models.User, int64, error) {
	query := db.DB.Model(&models.User{})

	if search := strings.TrimSpace(filter.Search); search != "" {
		pattern := "%" + strings.ToLower(search) + "%"
		query = query.Where(
			"LOWER(username) LIKE ? OR LOWER(email) LIKE ? OR LOWER(first_name) LIKE ? OR LOWER(last_name) LIKE ?",
			pattern, pattern, pattern, pattern,
		)
	}
	if filter.IsStaff != nil {
		query = query.Where("is_staff = ?", *filter.IsStaff)
	}
	if filter.IsSuperuser != nil {
		query = query.Where("is_superuser = ?", *filter.IsSuperuser)
	}
	if filter.IsActive != nil {
		query = query.Where("is_active = ?", *filter.IsActive)
	}
	query = applyCreatedRange(query, filter.Created)

	query = query.Session(&gorm.Session{})

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var users []models.User
	err := query.Order("id ASC").
		Offset(page.Offset()).
		Limit(page.PageSize).
		Find(&users).Error
	if err != nil {
		return nil, 0, err
	}
	return users, total, nil
}

func applyCreatedRange(query *gorm.DB, r models.CreatedRange) *gorm.DB {
	if r.After != nil {
		query = query.Where("created_at >= ?", *r.After)
	}
	if r.Before != nil {
		query = query.Where("created_at < ?", *r.Before)
	}
	return query
}

func (s *UserService) CountUsers(db *database.Database) (int64, error) {
	var count int64
	if err := db.DB.Model(&models.User{}).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// normalizeEmail lowercases the domain part of an address.
func normalizeEmail(email string) string {
	email = strings.TrimSpace(email)
	at := strings.LastIndex(email, "@")
	if at < 0 {
		return email
	}
	return email[:at+1] + strings.ToLower(email[at+1:])
}

const passwordTooLongMessage = "Ensure this field has no more than 72 bytes."

func passwordTooLongError() error {
	verr := NewValidationError()
	verr.Add("password", passwordTooLongMessage)
	return verr
}

func validateUserCreate(req models.UserCreateRequest) error {
	verr := NewValidationError()
	if strings.TrimSpace(req.Username) == "" {
		verr.Add("username", "This field is required.")
	} else if utf8.RuneCountInString(req.Username) > 150 {
		verr.Add("username", "Ensure this field has no more than 150 characters.")
	}
	if strings.TrimSpace(req.Email) == "" {
		verr.Add("email", "This field is required.")
	}
	if req.Password == "" {
		verr.Add("password", "This field is required.")
	} else if utf8.RuneCountInString(req.Password) < minPasswordLength {
		verr.Add("password", "Ensure this field has at least 8 characters.")
	} else if len(req.Password) > maxPasswordBytes {
		verr.Add("password", passwordTooLongMessage)
	}
	if req.Age != nil && *req.Age < 0 {
		verr.Add("age", "Ensure this value is greater than or equal to 0.")
	}
	if utf8.RuneCountInString(req.Bio) > 500 {
		verr.Add("bio", "Ensure this field has no more than 500 characters.")
	}
	if verr.HasErrors() {
		return verr
	}
	return nil
}

func validateUserUpdate(req models.UserUpdateRequest) error {
	verr := NewValidationError()
	if req.Username != nil && strings.TrimSpace(*req.Username) == "" {
		verr.Add("username", "This field may not be blank.")
	}
	if req.Email != nil && strings.TrimSpace(*req.Email) == "" {
		verr.Add("email", "This field may not be blank.")
	}
	if req.Age != nil && *req.Age < 0 {
		verr.Add("age", "Ensure this value is greater than or equal to 0.")
	}
	if req.Bio != nil && utf8.RuneCountInString(*req.Bio) > 500 {
		verr.Add("bio", "Ensure this field has no more than 500 characters.")
	}
	if verr.HasErrors() {
		return verr
	}
	return nil
}

// checkUserUniqueness reports username/email values already held by a user
// other than excludeID. The unique indexes remain the final arbiter.
func checkUserUniqueness(tx *gorm.DB, excludeID uint, username, email *string) error {
	verr := NewValidationError()

	if username != nil {
		taken, err := valueTaken(tx, "username", *username, excludeID)
		if err != nil {
			return err
		}
		if taken {
			verr.Add("username", "A user with that username already exists.")
		}
	}

	if email != nil {
		taken, err := valueTaken(tx, "email", *email, excludeID)
		if err != nil {
			return err
		}
		if taken {
			verr.Add("email", "user with this email already exists.")
		}
	}

	if verr.HasErrors() {
		return verr
	}
	return nil
}

func valueTaken(tx *gorm.DB, column, value string, excludeID uint) (bool, error) {
	var count int64
	query := tx.Model(&models.User{}).Where(column+" = ?", value)
	if excludeID != 0 {
		query = query.Where("id <> ?", excludeID)
	}
	if err := query.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// translateUserWriteError turns a unique-index violation lost to a concurrent
// writer into the same validation error the pre-check would have produced.
func translateUserWriteError(db *database.Database, err error, excludeID uint, username, email *string) error {
	if !isUniqueViolation(err) {
		return err
	}
	if verr := checkUserUniqueness(db.DB, excludeID, username, email); verr != nil {
		return verr
	}
	conflict := NewValidationError()
	conflict.Add("non_field_errors", "A user with these details already exists.")
	return conflict
}

func isUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique constraint") || strings.Contains(msg, "duplicate key")
}
