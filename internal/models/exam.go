// ABOUTME: Exam models shared by the API client, exam store and views
// ABOUTME: Mirrors the exam list and detail payloads of the platform API

package models

// ExamStatus is the lifecycle state of an exam for the current user
type ExamStatus string

const (
	ExamPending    ExamStatus = "pending"
	ExamInProgress ExamStatus = "in_progress"
	ExamCompleted  ExamStatus = "completed"
)

// Exam represents a single exam
type Exam struct {
	ID             int64      `json:"id"`
	Title          string     `json:"title"`
	Description    string     `json:"description"`
	Duration       int        `json:"duration"`
	TotalQuestions int        `json:"totalQuestions"`
	Status         ExamStatus `json:"status"`
}

// ExamList is the paginated response of GET /exams
type ExamList struct {
	Exams []Exam `json:"exams"`
	Total int    `json:"total"`
}

// Label returns a human-readable status label
func (s ExamStatus) Label() string {
	switch s {
	case ExamPending:
		return "Pending"
	case ExamInProgress:
		return "In progress"
	case ExamCompleted:
		return "Completed"
	default:
		return "Unknown"
	}
}

// ErrorResponse represents an API error body
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
	Code    int    `json:"code"`
}
