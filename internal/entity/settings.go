package entity

import (
	"github.com/uptrace/bun"
)

// Settings is the single-row company configuration (name + logo).
type Settings struct {
	bun.BaseModel `bun:"table:settings"`

	BasicEntity
	CompanyName string `json:"company_name" bun:"company_name"`
	LogoURL     string `json:"logo_url"     bun:"logo_url"`
}
