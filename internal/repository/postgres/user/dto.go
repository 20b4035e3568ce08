package user

import (
	"time"

	"presencia/backend/internal/entity"

	"github.com/uptrace/bun"
)

type Filter struct {
	Limit  *int
	Offset *int
	Page   *int
	Search *string
	Role   *string
}

type SignInRequest struct {
	Credential string `json:"credential" form:"credential"`
	Password   string `json:"password" form:"password"`
}

type RefreshTokenRequest struct {
	AccessToken  string `json:"access_token" form:"access_token"`
	RefreshToken string `json:"refresh_token" form:"refresh_token"`
}

type GetListResponse struct {
	ID        int     `json:"id"`
	Legajo    *string `json:"legajo"`
	Dni       *string `json:"dni"`
	FullName  *string `json:"full_name"`
	Role      *string `json:"role"`
	DressCode *string `json:"dress_code"`
}

type GetDetailByIdResponse struct {
	ID                int                   `json:"id"`
	Legajo            *string               `json:"legajo"`
	Dni               *string               `json:"dni"`
	FullName          *string               `json:"full_name"`
	Role              *string               `json:"role"`
	DressCode         *string               `json:"dress_code"`
	ReferenceImage    *string               `json:"reference_image"`
	Schedule          []entity.WorkSchedule `json:"schedule"`
	AssignedLocations []int                 `json:"assigned_locations"`
}

type CreateRequest struct {
	Legajo            *string               `json:"legajo"     form:"legajo"`
	Dni               *string               `json:"dni"        form:"dni"`
	Password          *string               `json:"password"   form:"password"`
	Role              *string               `json:"role"       form:"role"`
	FullName          *string               `json:"full_name"  form:"full_name"`
	DressCode         *string               `json:"dress_code" form:"dress_code"`
	ReferenceImage    *string               `json:"reference_image" form:"reference_image"`
	Schedule          []entity.WorkSchedule `json:"schedule"   form:"schedule"`
	AssignedLocations []int                 `json:"assigned_locations" form:"assigned_locations"`
}

type CreateResponse struct {
	bun.BaseModel `bun:"table:users"`

	ID                int                   `json:"id" bun:"-"`
	Legajo            *string               `json:"legajo"     bun:"legajo"`
	Dni               *string               `json:"dni"        bun:"dni"`
	Password          *string               `json:"-"          bun:"password"`
	Role              *string               `json:"role"       bun:"role"`
	FullName          *string               `json:"full_name"  bun:"full_name"`
	DressCode         *string               `json:"dress_code" bun:"dress_code"`
	ReferenceImage    *string               `json:"reference_image" bun:"reference_image"`
	Schedule          []entity.WorkSchedule `json:"schedule"   bun:"schedule,type:jsonb"`
	AssignedLocations []int                 `json:"assigned_locations" bun:"assigned_locations,type:jsonb"`
	CreatedAt         time.Time             `json:"-"          bun:"created_at"`
	CreatedBy         int                   `json:"-"          bun:"created_by"`
}

type UpdateRequest struct {
	ID                int                   `json:"id" form:"id"`
	Legajo            *string               `json:"legajo"     form:"legajo"`
	Dni               *string               `json:"dni"        form:"dni"`
	Password          *string               `json:"password"   form:"password"`
	Role              *string               `json:"role"       form:"role"`
	FullName          *string               `json:"full_name"  form:"full_name"`
	DressCode         *string               `json:"dress_code" form:"dress_code"`
	ReferenceImage    *string               `json:"reference_image" form:"reference_image"`
	Schedule          []entity.WorkSchedule `json:"schedule"   form:"schedule"`
	AssignedLocations []int                 `json:"assigned_locations" form:"assigned_locations"`
}
