package store

import "fmt"

// All store keys are minted here so drivers and tests share one naming
// scheme. Keys use ':' as the segment separator and never contain '_',
// which lets the file driver map them to filenames reversibly.
const (
	KeyToken             = "auth:token"
	KeyHiddenCourses     = "courses:hidden"
	KeyRefreshSettings   = "settings:refresh"
	KeyFeedSettings      = "settings:feed"
	KeyCalendarSelection = "calendar:selection"
	KeyLedger            = "ledger:state"
	KeySemesterUploads   = "uploads:semester"
)

// CoursePrefix is the shared prefix of every per-course key.
func CoursePrefix(courseID int64) string {
	return fmt.Sprintf("course:%d:", courseID)
}

func KeyNickname(courseID int64) string {
	return CoursePrefix(courseID) + "nickname"
}

func KeyColor(courseID int64) string {
	return CoursePrefix(courseID) + "color"
}

func KeyFileCache(courseID int64) string {
	return CoursePrefix(courseID) + "files"
}

func KeyDocuments(courseID int64) string {
	return CoursePrefix(courseID) + "documents"
}

func KeyAssignments(courseID int64) string {
	return CoursePrefix(courseID) + "assignments"
}

func KeyRestrictedFolders(courseID int64) string {
	return CoursePrefix(courseID) + "restricted"
}

func KeyChat(courseID int64) string {
	return CoursePrefix(courseID) + "chat"
}

// KeyUploads routes to the per-course bucket, or the semester-wide bucket
// when courseID is nil.
func KeyUploads(courseID *int64) string {
	if courseID == nil {
		return KeySemesterUploads
	}
	return CoursePrefix(*courseID) + "uploads"
}
