package router

import (
	"context"

	"presencia/backend/foundation/web"
	"presencia/backend/internal/attendance/presence"
	"presencia/backend/internal/attendance/workflow"
	"presencia/backend/internal/auth"
	"presencia/backend/internal/controller/http/v1/file"
	"presencia/backend/internal/middleware"
	"presencia/backend/internal/pkg/config"
	"presencia/backend/internal/pkg/repository/postgresql"
	"presencia/backend/internal/repository/postgres/location"
	"presencia/backend/internal/repository/postgres/logentry"
	"presencia/backend/internal/repository/postgres/settings"
	"presencia/backend/internal/repository/postgres/user"
	"presencia/backend/internal/service/upload"
	"presencia/backend/internal/service/vision"

	"github.com/redis/go-redis/v9"

	attempt_controller "presencia/backend/internal/controller/http/v1/attempt"
	auth_controller "presencia/backend/internal/controller/http/v1/auth"
	dashboard_controller "presencia/backend/internal/controller/http/v1/dashboard"
	location_controller "presencia/backend/internal/controller/http/v1/location"
	logentry_controller "presencia/backend/internal/controller/http/v1/logentry"
	settings_controller "presencia/backend/internal/controller/http/v1/settings"
	user_controller "presencia/backend/internal/controller/http/v1/user"
)

type Router struct {
	*web.App
	postgresDB *postgresql.Database
	redisDB    *redis.Client
	auth       *auth.Auth
	cfg        *config.Config
}

func NewRouter(
	app *web.App,
	postgresDB *postgresql.Database,
	redisDB *redis.Client,
	auth *auth.Auth,
	cfg *config.Config,
) *Router {
	return &Router{
		app,
		postgresDB,
		redisDB,
		auth,
		cfg,
	}
}

func (r Router) Init() error {

	r.HandleMethodNotAllowed = true
	r.Use(middleware.Cors(r.cfg.AllowedOrigins))

	// - postgresql
	userPostgres := user.NewRepository(r.postgresDB)
	locationPostgres := location.NewRepository(r.postgresDB)
	logEntryPostgres := logentry.NewRepository(r.postgresDB)
	settingsPostgres := settings.NewRepository(r.postgresDB)

	// - services
	uploadService := upload.NewService(r.cfg.MediaDir)
	visionClient := vision.NewClient(r.cfg.VisionEndpoint, r.cfg.VisionAPIKey)

	sessions := workflow.NewRedisSessions(r.redisDB)
	engine := workflow.NewEngine(sessions, locationPostgres, logEntryPostgres, visionClient, uploadService, uploadService)

	refresher := presence.NewRefresher(locationPostgres, userPostgres, logEntryPostgres, r.redisDB)
	go refresher.Run(context.Background())

	// controller
	authController := auth_controller.NewController(userPostgres, r.auth)
	userController := user_controller.NewController(userPostgres, uploadService)
	locationController := location_controller.NewController(locationPostgres)
	logEntryController := logentry_controller.NewController(logEntryPostgres, settingsPostgres)
	settingsController := settings_controller.NewController(settingsPostgres, uploadService)
	attemptController := attempt_controller.NewController(engine, userPostgres)
	dashboardController := dashboard_controller.NewController(userPostgres, logEntryPostgres, refresher)

	fileC := file.NewController(r.App, r.cfg.MediaDir)

	// #auth
	r.Post("/api/v1/sign-in", authController.SignIn)
	r.Post("/api/v1/refresh-token", authController.RefreshToken)

	r.GET("/media/*filepath", fileC.File)
	r.HEAD("/media/*filepath", fileC.File)

	// #user
	r.Get("/api/v1/user/list", userController.GetUserList, middleware.Authenticate(r.auth, auth.RoleAdmin))
	r.Get("/api/v1/user/:id", userController.GetUserDetailById, middleware.Authenticate(r.auth, auth.RoleAdmin))
	r.Post("/api/v1/user/create", userController.CreateUser, middleware.Authenticate(r.auth, auth.RoleAdmin))
	r.Patch("/api/v1/user/:id", userController.UpdateUserColumns, middleware.Authenticate(r.auth, auth.RoleAdmin))
	r.Delete("/api/v1/user/:id", userController.DeleteUser, middleware.Authenticate(r.auth, auth.RoleAdmin))

	// #location
	r.Get("/api/v1/location/list", locationController.GetList, middleware.Authenticate(r.auth, auth.RoleAdmin, auth.RoleDashboard))
	r.Get("/api/v1/location/:id", locationController.GetDetailById, middleware.Authenticate(r.auth, auth.RoleAdmin))
	r.Get("/api/v1/location/:id/qrcode", locationController.GetQrCode, middleware.Authenticate(r.auth, auth.RoleAdmin))
	r.Post("/api/v1/location/create", locationController.Create, middleware.Authenticate(r.auth, auth.RoleAdmin))
	r.Patch("/api/v1/location/:id", locationController.UpdateColumns, middleware.Authenticate(r.auth, auth.RoleAdmin))
	r.Delete("/api/v1/location/:id", locationController.Delete, middleware.Authenticate(r.auth, auth.RoleAdmin))

	// #attempt: the clock-in/clock-out flow, any signed-in worker
	r.Post("/api/v1/attempt/start", attemptController.Start, middleware.Authenticate(r.auth))
	r.Post("/api/v1/attempt/confirm", attemptController.ConfirmOffSchedule, middleware.Authenticate(r.auth))
	r.Post("/api/v1/attempt/cancel", attemptController.Cancel, middleware.Authenticate(r.auth))
	r.Post("/api/v1/attempt/position", attemptController.ReportPosition, middleware.Authenticate(r.auth))
	r.Post("/api/v1/attempt/position_failure", attemptController.ReportPositionFailure, middleware.Authenticate(r.auth))
	r.Post("/api/v1/attempt/position_retry", attemptController.RetryPosition, middleware.Authenticate(r.auth))
	r.Post("/api/v1/attempt/photo", attemptController.SubmitPhoto, middleware.Authenticate(r.auth))
	r.Post("/api/v1/attempt/photo_retry", attemptController.RetryPhoto, middleware.Authenticate(r.auth))
	r.Post("/api/v1/attempt/finalize", attemptController.Finalize, middleware.Authenticate(r.auth))
	r.Post("/api/v1/attempt/save_incident", attemptController.SaveWithIncident, middleware.Authenticate(r.auth))

	// #dashboard
	r.Get("/api/v1/dashboard/status", dashboardController.Status, middleware.Authenticate(r.auth))
	r.Get("/api/v1/dashboard/snapshot", dashboardController.Snapshot, middleware.Authenticate(r.auth, auth.RoleAdmin, auth.RoleDashboard))
	// EventSource cannot set headers, the stream reads the token from the query string.
	r.Get("/api/v1/dashboard/stream", dashboardController.Stream, middleware.StreamAuthenticate(r.auth, auth.RoleAdmin, auth.RoleDashboard))

	// #log_entry
	r.Get("/api/v1/log_entry/list", logEntryController.GetList, middleware.Authenticate(r.auth, auth.RoleAdmin, auth.RoleDashboard))
	r.Get("/api/v1/log_entry/:id", logEntryController.GetDetailById, middleware.Authenticate(r.auth, auth.RoleAdmin))
	r.Get("/api/v1/log_entry/export/xlsx", logEntryController.ExportXlsx, middleware.Authenticate(r.auth, auth.RoleAdmin))
	r.Get("/api/v1/log_entry/export/csv", logEntryController.ExportCSV, middleware.Authenticate(r.auth, auth.RoleAdmin))
	r.Get("/api/v1/log_entry/export/pdf", logEntryController.ExportPDF, middleware.Authenticate(r.auth, auth.RoleAdmin))
	r.Delete("/api/v1/log_entry/:id", logEntryController.Delete, middleware.Authenticate(r.auth, auth.RoleAdmin))

	// #settings
	r.Get("/api/v1/settings/info", settingsController.GetInfo, middleware.Authenticate(r.auth, auth.RoleAdmin))
	r.Put("/api/v1/settings/:id", settingsController.UpdateAll, middleware.Authenticate(r.auth, auth.RoleAdmin))

	return r.Run(r.cfg.Port)
}
