package models

// Course is a Canvas course enriched with locally persisted preferences.
// Nickname and Hidden never come from Canvas; they are merged in from the
// store after each fetch.
type Course struct {
	ID         int64  `json:"id"`
	Name       string `json:"name"`
	CourseCode string `json:"course_code,omitempty"`
	Nickname   string `json:"nickname,omitempty"`
	Hidden     bool   `json:"hidden"`
}

// DisplayName prefers the user nickname over the Canvas name.
func (c Course) DisplayName() string {
	if c.Nickname != "" {
		return c.Nickname
	}
	return c.Name
}

// ContextCode returns the Canvas calendar context code for the course.
func (c Course) ContextCode() string {
	return CourseContextCode(c.ID)
}
