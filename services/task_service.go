package services

import (
	"errors"
	"strings"
	"time"
	"unicode/utf8"

	"taskdesk/taskdesk/broker"
	"taskdesk/taskdesk/database"
	"taskdesk/taskdesk/models"

	"gorm.io/gorm"
)

const maxTitleLength = 200

type TaskServiceInterface interface {
	CreateTask(db *database.Database, creatorID uint, req models.TaskWriteRequest) (models.Task, error)
	GetTaskById(db *database.Database, id uint) (models.Task, error)
	UpdateTask(db *database.Database, id uint, req models.TaskWriteRequest, partial bool) (models.Task, error)
	DeleteTask(db *database.Database, id uint) error
	GetAllTasks(db *database.Database) ([]models.Task, error)
	GetTasks(db *database.Database, filter models.TaskFilter, page models.PageRequest) ([]models.Task, int64, error)
	CountTasks(db *database.Database, filter models.TaskFilter) (int64, error)
}

type TaskService struct {
	events EventServiceInterface
}

func NewTaskService(events EventServiceInterface) *TaskService {
	if events == nil {
		events = NewEventService(nil)
	}
	return &TaskService{events: events}
}

func (s *TaskService) CreateTask(db *database.Database, creatorID uint, req models.TaskWriteRequest) (models.Task, error) {
	req.Normalize()
	if err := requiredFieldsError(req.MissingForCreate()); err != nil {
		return models.Task{}, err
	}
	if err := validateTaskWrite(req); err != nil {
		return models.Task{}, err
	}

	tx := db.DB.Begin()
	if tx.Error != nil {
		return models.Task{}, tx.Error
	}

	// Validate that the user exists
	var userCount int64
	if err := tx.Model(&models.User{}).Where("id = ?", creatorID).Count(&userCount).Error; err != nil {
		tx.Rollback()
		return models.Task{}, err
	}
	if userCount == 0 {
		tx.Rollback()
		return models.Task{}, ErrUserNotFound
	}

	task := models.Task{
		Title:       *req.Title,
		CreatedByID: creatorID,
	}
	if req.Description != nil {
		task.Description = *req.Description
	}
	if req.Completed != nil {
		task.Completed = *req.Completed
	}

	// Omit the association so gorm does not try to upsert an empty creator.
	if err := tx.Omit("CreatedBy").Create(&task).Error; err != nil {
		tx.Rollback()
		return models.Task{}, err
	}

	event, err := s.events.Record(tx, broker.TaskCreated, "task", "create", creatorID, map[string]interface{}{
		"task_id":    task.ID,
		"created_by": creatorID,
		"title":      task.Title,
		"completed":  task.Completed,
	})
	if err != nil {
		tx.Rollback()
		return models.Task{}, err
	}

	if err := tx.Preload("CreatedBy").First(&task, "id = ?", task.ID).Error; err != nil {
		tx.Rollback()
		return models.Task{}, err
	}

	if err := tx.Commit().Error; err != nil {
		tx.Rollback()
		return models.Task{}, err
	}

	s.events.Dispatch(db, event)
	return task, nil
}

func (s *TaskService) GetTaskById(db *database.Database, id uint) (models.Task, error) {
	var task models.Task
	if err := db.DB.Preload("CreatedBy").First(&task, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Task{}, ErrTaskNotFound
		}
		return models.Task{}, err
	}
	return task, nil
}

func (s *TaskService) UpdateTask(db *database.Database, id uint, req models.TaskWriteRequest, partial bool) (models.Task, error) {
	req.Normalize()
	if err := validateTaskWrite(req); err != nil {
		return models.Task{}, err
	}

	tx := db.DB.Begin()
	if tx.Error != nil {
		return models.Task{}, tx.Error
	}

	var task models.Task
	if err := tx.First(&task, "id = ?", id).Error; err != nil {
		tx.Rollback()
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Task{}, ErrTaskNotFound
		}
		return models.Task{}, err
	}

	if !partial {
		if err := requiredFieldsError(req.MissingForCreate()); err != nil {
			tx.Rollback()
			return models.Task{}, err
		}
	}

	// Only title, description and completed are writable; created_by never changes.
	changes := req.Changes()
	changes["updated_at"] = time.Now()

	if err := tx.Model(&task).Omit("CreatedBy").Updates(changes).Error; err != nil {
		tx.Rollback()
		return models.Task{}, err
	}

	if err := tx.Preload("CreatedBy").First(&task, "id = ?", id).Error; err != nil {
		tx.Rollback()
		return models.Task{}, err
	}

	event, err := s.events.Record(tx, broker.TaskUpdated, "task", "update", task.CreatedByID, map[string]interface{}{
		"task_id":    task.ID,
		"created_by": task.CreatedByID,
		"title":      task.Title,
		"completed":  task.Completed,
	})
	if err != nil {
		tx.Rollback()
		return models.Task{}, err
	}

	if err := tx.Commit().Error; err != nil {
		tx.Rollback()
		return models.Task{}, err
	}

	s.events.Dispatch(db, event)
	return task, nil
}

func (s *TaskService) DeleteTask(db *database.Database, id uint) error {
	tx := db.DB.Begin()
	if tx.Error != nil {
		return tx.Error
	}

	var task models.Task
	if err := tx.First(&task, "id = ?", id).Error; err != nil {
		tx.Rollback()
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrTaskNotFound
		}
		return err
	}

	if err := tx.Delete(&task).Error; err != nil {
		tx.Rollback()
		return err
	}

	event, err := s.events.Record(tx, broker.TaskDeleted, "task", "delete", task.CreatedByID, map[string]interface{}{
		"task_id":    task.ID,
		"created_by": task.CreatedByID,
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

func (s *TaskService) GetAllTasks(db *database.Database) ([]models.Task, error) {
	var tasks []models.Task
	result := db.DB.Preload("CreatedBy").Order(models.TaskDefaultOrder).Find(&tasks)
	if result.Error != nil {
		return nil, result.Error
	}
	return tasks, nil
}

func (s *TaskService) GetTasks(db *database.Database, filter models.TaskFilter, page models.PageRequest) ([]models.Task, int64, error) {
	query := applyTaskFilter(db.DB.Model(&models.Task{}), filter).Session(&gorm.Session{})

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var tasks []models.Task
	err := query.Preload("CreatedBy").
		Order(models.TaskDefaultOrder).
		Offset(page.Offset()).
		Limit(page.PageSize).
		Find(&tasks).Error
	if err != nil {
		return nil, 0, err
	}
	return tasks, total, nil
}

func (s *TaskService) CountTasks(db *database.Database, filter models.TaskFilter) (int64, error) {
	var count int64
	if err := applyTaskFilter(db.DB.Model(&models.Task{}), filter).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func applyTaskFilter(query *gorm.DB, filter models.TaskFilter) *gorm.DB {
	if search := strings.TrimSpace(filter.Search); search != "" {
		pattern := "%" + strings.ToLower(search) + "%"
		query = query.Where("LOWER(title) LIKE ? OR LOWER(description) LIKE ?", pattern, pattern)
	}
	if filter.Completed != nil {
		query = query.Where("completed = ?", *filter.Completed)
	}
	if filter.CreatedByID != nil {
		query = query.Where("created_by_id = ?", *filter.CreatedByID)
	}
	return applyCreatedRange(query, filter.Created)
}

func validateTaskWrite(req models.TaskWriteRequest) error {
	if req.Title == nil {
		return nil
	}
	verr := NewValidationError()
	if strings.TrimSpace(*req.Title) == "" {
		verr.Add("title", "This field may not be blank.")
	} else if utf8.RuneCountInString(*req.Title) > maxTitleLength {
		verr.Add("title", "Ensure this field has no more than 200 characters.")
	}
	if verr.HasErrors() {
		return verr
	}
	return nil
}
