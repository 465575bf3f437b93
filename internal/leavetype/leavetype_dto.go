package leavetype

type CreateLeaveTypeRequest struct {
	Name        string `json:"name" binding:"required,max=100"`
	Limit       *int   `json:"limit" binding:"required,gte=0,lte=366"`
	Description string `json:"description"`
}

type UpdateLeaveTypeRequest struct {
	Name        string `json:"name" binding:"required,max=100"`
	Limit       *int   `json:"limit" binding:"required,gte=0,lte=366"`
	Description string `json:"description"`
}

type LeaveTypeResponse struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Limit       int    `json:"limit"`
	Description string `json:"description"`
	CreatedAt   string `json:"created_at"`
}
