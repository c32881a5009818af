package dto

import "github.com/yigit/alumnidesk/internal/app/models"

// CreateEventRequest creates an event summary by hand
type CreateEventRequest struct {
	EventTitle      string `json:"eventTitle" binding:"required" example:"Career Fair"`
	Location        string `json:"location" binding:"required" example:"Istanbul"`
	Year            int    `json:"year" binding:"required,gradyear" example:"2025"`
	EventDate       string `json:"eventDate" example:"2025-03-14"`
	TotalAttendees  int    `json:"totalAttendees" binding:"min=0" example:"80"`
	TotalVolunteers int    `json:"totalVolunteers" binding:"min=0" example:"8"`
	TotalSpeakers   int    `json:"totalSpeakers" binding:"min=0" example:"4"`
}

// UploadLogResponse is an upload log joined with its uploader's name
type UploadLogResponse struct {
	models.UploadLog
	AdminName string `json:"adminName" example:"Mehmet Kaya"`
}
