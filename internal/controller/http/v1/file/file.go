package file

import (
	"net/http"

	"presencia/backend/foundation/web"

	"github.com/gin-gonic/gin"
)

// Controller serves uploaded media (evidence photos, thumbnails, reference
// images, logos) from the statics directory.
type Controller struct {
	*web.App
	baseDir string
}

func NewController(app *web.App, baseDir string) *Controller {
	return &Controller{app, baseDir}
}

func (cf Controller) File(c *gin.Context) {
	fs := gin.Dir(cf.baseDir, false)

	file := c.Param("filepath")
	f, err := fs.Open(file)
	if err != nil {
		c.JSON(http.StatusNotFound, map[string]any{
			"error":  "file not found",
			"status": false,
		})
		return
	}
	f.Close()

	http.ServeFile(c.Writer, c.Request, cf.baseDir+file)
}
