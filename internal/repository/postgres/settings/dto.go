package settings

import (
	"mime/multipart"

	"github.com/uptrace/bun"
)

type UpdateRequest struct {
	ID          int                   `json:"id" form:"id"`
	CompanyName string                `json:"company_name" form:"company_name"`
	Logo        *multipart.FileHeader `json:"logo" form:"logo"`
}

type GetInfoResponse struct {
	bun.BaseModel `bun:"table:settings"`

	ID          int    `json:"id"`
	CompanyName string `json:"company_name"`
	LogoURL     string `json:"logo_url" bun:"logo_url"`
}
