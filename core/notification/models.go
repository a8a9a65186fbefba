package notification

import (
	"time"

	"github.com/htpham/tutorhub/core"
)

// Notice formats
const (
	FormatFormal = "formal" // full announcement with headers, slot sections and a summary
	FormatSimple = "simple" // short parent-friendly message
)

// GenerateNotice asks for a shareable announcement of one day's schedule.
// A non-empty TeacherID restricts the announcement to that teacher's
// sessions.
type GenerateNotice struct {
	Date      core.Date `json:"date" validate:"required"`
	Format    string    `json:"format" validate:"required,oneof=formal simple"`
	TeacherID string    `json:"teacher_id"`
}

func (gn *GenerateNotice) Validate() error {
	return core.Validate.Struct(gn)
}

// Notice is a ready-to-share day-schedule announcement. Text is plain text
// meant to be copied into a messaging app as-is.
type Notice struct {
	Date        core.Date `json:"date"`
	Format      string    `json:"format"`
	Text        string    `json:"text"`
	Sessions    int       `json:"sessions"`
	GeneratedAt time.Time `json:"generated_at"` // UTC
}
