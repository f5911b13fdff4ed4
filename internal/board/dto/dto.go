package dto

import "github.com/fekuna/omnipos-warehouse/internal/model"

type BoardInput struct {
	Name        string
	Description string
}

type BoardDetail struct {
	Board   *model.Board   `json:"board"`
	Tasks   []model.Task   `json:"tasks"`
	Members []model.Member `json:"members"`
	IsOwner bool           `json:"is_owner"`
}
