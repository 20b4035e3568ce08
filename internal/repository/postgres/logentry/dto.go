package logentry

type Filter struct {
	Limit      *int
	Offset     *int
	Page       *int
	UserID     *int
	LocationID *int
	Type       *string
	FromDate   *string
	ToDate     *string
}

type GetListResponse struct {
	ID              int    `json:"id"`
	UserID          int    `json:"user_id"`
	UserName        string `json:"user_name"`
	Legajo          string `json:"legajo"`
	Timestamp       string `json:"timestamp"`
	Type            string `json:"type"`
	LocationID      *int   `json:"location_id"`
	LocationName    string `json:"location_name"`
	LocationStatus  string `json:"location_status"`
	ScheduleStatus  string `json:"schedule_status"`
	DressCodeStatus string `json:"dress_code_status"`
	IdentityStatus  string `json:"identity_status"`
	PhotoEvidence   string `json:"photo_evidence"`
	AIFeedback      string `json:"ai_feedback"`
}
