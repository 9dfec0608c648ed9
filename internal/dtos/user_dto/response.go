package user_dto

import (
	"github.com/xenn00/personnel-directory/internal/entity"
	"github.com/xenn00/personnel-directory/internal/filter"
)

type ListUsersResponse struct {
	Users   []*entity.User `json:"users"`
	Query   filter.Echo    `json:"query"`
	Skills  []string       `json:"skills"`
	Page    int64          `json:"page"`
	PerPage int64          `json:"per_page"`
}
