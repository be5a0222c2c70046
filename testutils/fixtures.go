package testutils

import (
	"testing"

	"taskdesk/taskdesk/database"
	"taskdesk/taskdesk/models"

	"golang.org/x/crypto/bcrypt"
)

// CreateUser inserts an active user with a bcrypt hash of password.
func CreateUser(t *testing.T, db *database.Database, username, email, password string) models.User {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("failed to hash password: %v", err)
	}

	user := models.User{
		Username:     username,
		Email:        email,
		PasswordHash: string(hash),
		IsActive:     true,
	}
	if err := db.DB.Create(&user).Error; err != nil {
		t.Fatalf("failed to create user %s: %v", username, err)
	}
	return user
}

// CreateTask inserts a task owned by creator.
func CreateTask(t *testing.T, db *database.Database, creator models.User, title string, completed bool) models.Task {
	t.Helper()

	task := models.Task{
		Title:       title,
		Description: title + " description",
		Completed:   completed,
		CreatedByID: creator.ID,
	}
	if err := db.DB.Omit("CreatedBy").Create(&task).Error; err != nil {
		t.Fatalf("failed to create task %s: %v", title, err)
	}
	task.CreatedBy = creator
	return task
}
