package attendance

type AttendanceEntry struct {
	TeacherID string `json:"teacher_id" binding:"required,uuid"`
	Forenoon  bool   `json:"forenoon"`
	Afternoon bool   `json:"afternoon"`
}

type BulkAttendanceRequest struct {
	Date    string            `json:"date" binding:"required"`
	Entries []AttendanceEntry `json:"entries" binding:"required,min=1,max=500,dive"`
}

type BulkAttendanceResponse struct {
	Date     string `json:"date"`
	Count    int    `json:"count"`
	Attempts int    `json:"attempts"`
}

type AttendanceResponse struct {
	TeacherID   string `json:"teacher_id"`
	TeacherName string `json:"teacher_name"`
	Date        string `json:"date"`
	Forenoon    bool   `json:"forenoon"`
	Afternoon   bool   `json:"afternoon"`
	MarkedBy    string `json:"marked_by"`
	UpdatedAt   string `json:"updated_at"`
}
