package services

import (
	"taskdesk/taskdesk/database"
	"taskdesk/taskdesk/models"
)

type Stats struct {
	TotalUsers     int64  `json:"total_users"`
	TotalTasks     int64  `json:"total_tasks"`
	CompletedTasks int64  `json:"completed_tasks"`
	CurrentUser    string `json:"current_user"`
}

type StatsServiceInterface interface {
	GetStats(db *database.Database, currentUser string) (Stats, error)
}

// StatsService counts rows on every call; nothing is cached.
type StatsService struct {
	users UserServiceInterface
	tasks TaskServiceInterface
}

func NewStatsService(users UserServiceInterface, tasks TaskServiceInterface) *StatsService {
	return &StatsService{users: users, tasks: tasks}
}

func (s *StatsService) GetStats(db *database.Database, currentUser string) (Stats, error) {
	totalUsers, err := s.users.CountUsers(db)
	if err != nil {
		return Stats{}, err
	}

	totalTasks, err := s.tasks.CountTasks(db, models.TaskFilter{})
	if err != nil {
		return Stats{}, err
	}

	completed := true
	completedTasks, err := s.tasks.CountTasks(db, models.TaskFilter{Completed: &completed})
	if err != nil {
		return Stats{}, err
	}

	return Stats{
		TotalUsers:     totalUsers,
		TotalTasks:     totalTasks,
		CompletedTasks: completedTasks,
		CurrentUser:    currentUser,
	}, nil
}
