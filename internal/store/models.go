package store

import "time"

// Status represents the monitoring lifecycle of a media item.
type Status string

const (
	StatusMissing     Status = "missing"
	StatusDownloading Status = "downloading"
	StatusDownloaded  Status = "downloaded"
	StatusFailed      Status = "failed"
	StatusIgnored     Status = "ignored"
)

var allStatuses = []Status{
	StatusMissing,
	StatusDownloading,
	StatusDownloaded,
	StatusFailed,
	StatusIgnored,
}

var statusSet = func() map[Status]struct{} {
	set := make(map[Status]struct{}, len(allStatuses))
	for _, status := range allStatuses {
		set[status] = struct{}{}
	}
	return set
}()

// ValidStatus reports whether the value is a known monitor status.
func ValidStatus(status Status) bool {
	_, ok := statusSet[status]
	return ok
}

// MediaItem is one library entry being watched for a trailer.
type MediaItem struct {
	ID            int64
	Title         string
	Year          int
	IsMovie       bool
	ExternalID    string
	SourceID      string
	ContentURL    string
	ProfileName   string
	Status        Status
	TrailerPath   string
	FailureReason string
	ExcludedIDs   []string
	DownloadedAt  *time.Time
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// AttemptStatus records the outcome of one download attempt.
type AttemptStatus string

const (
	AttemptStarted   AttemptStatus = "started"
	AttemptSucceeded AttemptStatus = "succeeded"
	AttemptFailed    AttemptStatus = "failed"
)

// Attempt is one row of download history for a media item.
type Attempt struct {
	ID           int64
	MediaID      int64
	AttemptID    string
	SourceID     string
	Status       AttemptStatus
	ErrorMessage string
	OutputPath   string
	StartedAt    time.Time
	FinishedAt   *time.Time
}

// Profile is a named set of download preferences a media item can reference.
type Profile struct {
	ID             int64
	Name           string
	MaxResolution  int
	AudioLanguage  string
	VideoCodec     string
	AudioCodec     string
	Container      string
	StopMonitoring bool
	MinSizeBytes   int64
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// ServerStatus caches the last connectivity check for a configured media server.
type ServerStatus struct {
	Name        string
	Type        string
	URL         string
	Enabled     bool
	Reachable   bool
	LastError   string
	LastChecked *time.Time
}
