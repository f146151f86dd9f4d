package model

import (
	"time"

	"github.com/google/uuid"
)

// Enrollment links a student to a course. At most one per (course, user).
type Enrollment struct {
	ID         uuid.UUID `json:"id"`
	CourseID   uuid.UUID `json:"course_id"`
	UserID     uuid.UUID `json:"user_id"`
	EnrolledAt time.Time `json:"enrolled_at"`
}
