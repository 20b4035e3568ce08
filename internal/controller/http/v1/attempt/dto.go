package attempt

type StartRequest struct {
	Action string `json:"action" form:"action"`
}

type RunRequest struct {
	RunID string `json:"run_id" form:"run_id"`
}

type PositionRequest struct {
	RunID     string   `json:"run_id"    form:"run_id"`
	Latitude  *float64 `json:"latitude"  form:"latitude"`
	Longitude *float64 `json:"longitude" form:"longitude"`
}

type PositionFailureRequest struct {
	RunID            string `json:"run_id" form:"run_id"`
	PermissionDenied bool   `json:"permission_denied" form:"permission_denied"`
}
