package api

// Job describes a queue entry in a transport-friendly format.
type Job struct {
	ID            string `json:"id"`
	IdentityID    string `json:"identity_id"`
	IdentityImage string `json:"identity_image"`
	UserVideo     string `json:"user_video"`
	Status        string `json:"status"`
	Progress      int    `json:"progress"`
	OutputVideo   string `json:"output_video,omitempty"`
	Error         string `json:"error,omitempty"`
	CreatedAt     string `json:"created_at,omitempty"`
	UpdatedAt     string `json:"updated_at,omitempty"`
}

// JobProgress is the lightweight polling payload.
type JobProgress struct {
	Status   string `json:"status"`
	Progress int    `json:"progress"`
}

// JobCreateRequest is the POST /api/jobs body: the caller has picked an
// identity, one of its images, and uploaded a video.
type JobCreateRequest struct {
	IdentityID    string `json:"identity_id"`
	IdentityImage string `json:"identity_image"`
	UserVideo     string `json:"user_video"`
}

// Identity describes one catalog entry and its selectable assets.
type Identity struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Images      []string `json:"images"`
	VoiceSample string   `json:"voice_sample,omitempty"`
}

// UploadResponse returns the server-assigned filename for an uploaded video.
type UploadResponse struct {
	Filename string `json:"filename"`
}

// DependencyStatus captures availability of an external binary.
type DependencyStatus struct {
	Name        string `json:"name"`
	Command     string `json:"command"`
	Description string `json:"description"`
	Optional    bool   `json:"optional"`
	Available   bool   `json:"available"`
	Detail      string `json:"detail,omitempty"`
}

// DaemonStatus aggregates daemon runtime information for API consumers.
type DaemonStatus struct {
	Running      bool               `json:"running"`
	PID          int                `json:"pid"`
	QueueDBPath  string             `json:"queue_db_path"`
	LockFilePath string             `json:"lock_file_path"`
	QueueStats   map[string]int     `json:"queue_stats"`
	LastError    string             `json:"last_error,omitempty"`
	Dependencies []DependencyStatus `json:"dependencies,omitempty"`
}

// JobListResponse wraps a collection of jobs.
type JobListResponse struct {
	Jobs []Job `json:"jobs"`
}

// JobEvent is the websocket broadcast payload for job state changes.
type JobEvent struct {
	Type     string `json:"type"`
	JobID    string `json:"job_id"`
	Status   string `json:"status"`
	Progress int    `json:"progress"`
	Output   string `json:"output,omitempty"`
	Error    string `json:"error,omitempty"`
}
