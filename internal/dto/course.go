package dto

// CourseUpdateRequest patches locally persisted course preferences. Nil
// fields stay untouched; an empty nickname clears it.
type CourseUpdateRequest struct {
	Nickname *string `json:"nickname"`
	Hidden   *bool   `json:"hidden"`
}

// CourseColorResponse carries the user's Canvas color for one course.
type CourseColorResponse struct {
	CourseID int64  `json:"courseId"`
	Hexcode  string `json:"hexcode"`
}
