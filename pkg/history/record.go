package history

// MaxTimestamp is the largest expiry accepted for a stored record,
// 9999-12-31T23:59:59Z in epoch seconds. Records saved without a schedule
// default to it so they survive every purge.
const MaxTimestamp int64 = 253402300799

// Schedule carries the expiry of a stored record in epoch seconds.
type Schedule struct {
	Expire int64 `bson:"expire" json:"expire"`
}

// Record is a persisted notification. The bson/json field names are the wire
// contract shared with display clients and must not change.
type Record struct {
	SourceID      string    `bson:"sourceId" json:"sourceId"`
	Title         string    `bson:"title,omitempty" json:"title,omitempty"`
	Message       string    `bson:"message" json:"message"`
	Timestamp     string    `bson:"timestamp" json:"timestamp"`
	ToastID       string    `bson:"toastId,omitempty" json:"toastId,omitempty"`
	NotiID        string    `bson:"notiId,omitempty" json:"notiId,omitempty"`
	Schedule      *Schedule `bson:"schedule,omitempty" json:"schedule,omitempty"`
	IsUnDeletable bool      `bson:"isUnDeletable,omitempty" json:"isUnDeletable,omitempty"`
	DisplayID     int       `bson:"displayId" json:"displayId"`
	ReadStatus    bool      `bson:"readStatus,omitempty" json:"readStatus,omitempty"`
}

// ID returns the record identifier: the toast id for toasts, the notification
// id otherwise.
func (r Record) ID() string {
	if r.ToastID != "" {
		return r.ToastID
	}
	return r.NotiID
}

// Expire returns the effective expiry in epoch seconds.
func (r Record) Expire() int64 {
	if r.Schedule == nil {
		return MaxTimestamp
	}
	return r.Schedule.Expire
}

// normalize fills defaults before persisting.
func (r *Record) normalize() {
	if r.Schedule == nil {
		r.Schedule = &Schedule{Expire: MaxTimestamp}
	}
}

// Filter selects records for Find and Delete. Zero-valued fields are ignored.
type Filter struct {
	// IDs matches either the toast id or the notification id.
	IDs []string

	// SourceID restricts to records saved by the given source.
	SourceID string

	// DisplayID restricts to records for the given display.
	DisplayID *int

	// DeletableOnly excludes records marked undeletable.
	DeletableOnly bool
}

func (f Filter) matches(r Record) bool {
	if len(f.IDs) > 0 {
		found := false
		for _, id := range f.IDs {
			if r.ToastID == id || r.NotiID == id {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	if f.SourceID != "" && r.SourceID != f.SourceID {
		return false
	}
	if f.DisplayID != nil && r.DisplayID != *f.DisplayID {
		return false
	}
	if f.DeletableOnly && r.IsUnDeletable {
		return false
	}
	return true
}
