// Package fms contains thin clients for the Feedback Management System REST
// resources. Each client owns the calls for one resource; all business
// computation (sentiment analysis, aggregation, scoring) happens server-side
// and is only displayed here.
package fms

import "time"

// Department groups users and projects.
type Department struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Active      bool      `json:"active"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// User is a system account, admin or employee.
type User struct {
	ID          string       `json:"id"`
	Username    string       `json:"username"`
	FirstName   string       `json:"firstName"`
	LastName    string       `json:"lastName"`
	Email       string       `json:"email"`
	Roles       []string     `json:"roles"`
	Active      bool         `json:"active"`
	Departments []Department `json:"departments"`
	CreatedAt   time.Time    `json:"createdAt"`
	UpdatedAt   time.Time    `json:"updatedAt"`
}

// Project is the unit feedback forms are collected for.
type Project struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Description  string    `json:"description"`
	DepartmentID string    `json:"departmentId"`
	MemberIDs    []string  `json:"memberIds"`
	Active       bool      `json:"active"`
	StartDate    time.Time `json:"startDate"`
	EndDate      time.Time `json:"endDate"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// Question is a reusable form question.
type Question struct {
	ID          string    `json:"id"`
	Text        string    `json:"text"`
	Description string    `json:"description"`
	Category    string    `json:"category"`
	Type        string    `json:"type"`
	Options     []string  `json:"options"`
	Required    bool      `json:"required"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// Question types accepted by the API.
const (
	QuestionText           = "text"
	QuestionRating         = "rating"
	QuestionSingleChoice   = "single_choice"
	QuestionMultipleChoice = "multiple_choice"
)

// Feedback is a feedback form: a set of questions attached to a project with
// a collection window.
type Feedback struct {
	ID             string    `json:"id"`
	Title          string    `json:"title"`
	Description    string    `json:"description"`
	ProjectID      string    `json:"projectId"`
	QuestionIDs    []string  `json:"questionIds"`
	Status         string    `json:"status"`
	AllowAnonymous bool      `json:"allowAnonymous"`
	StartDate      time.Time `json:"startDate"`
	EndDate        time.Time `json:"endDate"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

// Answer is one response within a submission.
type Answer struct {
	QuestionID string `json:"questionId"`
	Value      string `json:"value"`
}

// Submission is a filled-in feedback form. Sentiment, score, and status are
// computed by external analysis services and rendered verbatim.
type Submission struct {
	ID               string     `json:"id"`
	FeedbackID       string     `json:"feedbackId"`
	SubmittedBy      string     `json:"submittedBy"`
	Answers          []Answer   `json:"answers"`
	Privacy          string     `json:"privacy"`
	Status           string     `json:"status"`
	OverallSentiment string     `json:"overallSentiment"`
	Score            float64    `json:"score"`
	SubmittedAt      time.Time  `json:"submittedAt"`
	AnalyzedAt       *time.Time `json:"analyzedAt,omitempty"`
}
