package models

import "time"

type TaskResponse struct {
	ID          uint         `json:"id"`
	Title       string       `json:"title"`
	Description string       `json:"description"`
	Completed   bool         `json:"completed"`
	CreatedBy   UserResponse `json:"created_by"`
	CreatedAt   time.Time    `json:"created_at"`
	UpdatedAt   time.Time    `json:"updated_at"`
}

func NewTaskResponse(t Task) TaskResponse {
	return TaskResponse{
		ID:          t.ID,
		Title:       t.Title,
		Description: t.Description,
		Completed:   t.Completed,
		CreatedBy:   NewUserResponse(t.CreatedBy),
		CreatedAt:   t.CreatedAt,
		UpdatedAt:   t.UpdatedAt,
	}
}

func NewTaskResponses(tasks []Task) []TaskResponse {
	out := make([]TaskResponse, 0, len(tasks))
	for _, t := range tasks {
		out = append(out, NewTaskResponse(t))
	}
	return out
}

// TaskWriteRequest is the only shape accepted on task create and update.
// It has no creator field, so a client-supplied created_by is dropped
// during binding.
type TaskWriteRequest struct {
	Title       *string `json:"title" binding:"omitnil,min=1,max=200"`
	Description *string `json:"description"`
	Completed   *bool   `json:"completed"`
}

func (r *TaskWriteRequest) Normalize() {
	trimPtr(r.Title)
	trimPtr(r.Description)
}

// MissingForCreate lists the fields required on create and on PUT.
func (r TaskWriteRequest) MissingForCreate() []string {
	if r.Title == nil {
		return []string{"title"}
	}
	return nil
}

// Changes returns the column updates carried by the request.
func (r TaskWriteRequest) Changes() map[string]interface{} {
	changes := make(map[string]interface{})
	if r.Title != nil {
		changes["title"] = *r.Title
	}
	if r.Description != nil {
		changes["description"] = *r.Description
	}
	if r.Completed != nil {
		changes["completed"] = *r.Completed
	}
	return changes
}
