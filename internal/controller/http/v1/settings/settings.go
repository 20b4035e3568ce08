package settings

import (
	"net/http"
	"reflect"

	"presencia/backend/foundation/web"
	"presencia/backend/internal/repository/postgres/settings"
	"presencia/backend/internal/service/upload"
)

const logoDir = "settings"

type Controller struct {
	settings Settings
	upload   *upload.Service
}

func NewController(settings Settings, upload *upload.Service) *Controller {
	return &Controller{settings, upload}
}

func (uc Controller) GetInfo(c *web.Context) error {
	if err := c.ValidQuery(); err != nil {
		return c.RespondError(err)
	}

	response, err := uc.settings.GetInfo(c.Ctx)
	if err != nil {
		return c.RespondError(err)
	}

	return c.Respond(map[string]interface{}{
		"data": map[string]interface{}{
			"results": response,
		},
		"status": true,
	}, http.StatusOK)
}

func (uc Controller) UpdateAll(c *web.Context) error {
	id := c.GetParam(reflect.Int, "id").(int)

	if err := c.ValidParam(); err != nil {
		return c.RespondError(err)
	}

	var request settings.UpdateRequest
	if err := c.BindFunc(&request, "CompanyName"); err != nil {
		return c.RespondError(err)
	}
	request.ID = id

	var logoURL *string
	if request.Logo != nil {
		path, err := uc.upload.UploadMultipart(request.Logo, logoDir)
		if err != nil {
			return c.RespondError(err)
		}
		logoURL = &path
	}

	err := uc.settings.UpdateAll(c.Ctx, request, logoURL)
	if err != nil {
		return c.RespondError(err)
	}

	return c.Respond(map[string]interface{}{
		"data":   "ok!",
		"status": true,
	}, http.StatusOK)
}
