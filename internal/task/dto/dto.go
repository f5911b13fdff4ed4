package dto

import "time"

type CreateTaskInput struct {
	BoardID     string
	Title       string
	Description string
	DueDate     *time.Time
	AssignedTo  []string
}

type UpdateTaskInput struct {
	ID          string
	Title       string
	Description string
	DueDate     *time.Time
}
