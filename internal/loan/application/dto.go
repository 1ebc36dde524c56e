package application

import (
	"github.com/wyfcoding/creditsea/internal/loan/domain"
)

// ApplicationDTO 申请数据传输对象
type ApplicationDTO struct {
	ID              string `json:"id"`
	ApplicantID     string `json:"applicantId,omitempty"`
	ApplicantName   string `json:"applicantName"`
	ApplicantAvatar string `json:"applicantAvatar,omitempty"`
	Type            string `json:"type"`
	Amount          string `json:"amount"`
	Date            string `json:"date"`
	Status          string `json:"status"`
}

// StatsDTO 申请统计
type StatsDTO struct {
	Total          int    `json:"total"`
	Pending        int    `json:"pending"`
	Verified       int    `json:"verified"`
	Approved       int    `json:"approved"`
	Rejected       int    `json:"rejected"`
	TotalAmount    string `json:"totalAmount"`
	ApprovedAmount string `json:"approvedAmount"`
}

func toApplicationDTO(app *domain.CreditApplication) *ApplicationDTO {
	return &ApplicationDTO{
		ID:              app.ID,
		ApplicantID:     app.ApplicantID,
		ApplicantName:   app.ApplicantName,
		ApplicantAvatar: app.ApplicantAvatar,
		Type:            app.Type,
		Amount:          app.Amount.String(),
		Date:            app.Date.Format("2006-01-02T15:04:05Z07:00"),
		Status:          string(app.Status),
	}
}

func toApplicationDTOs(apps []*domain.CreditApplication) []*ApplicationDTO {
	dtos := make([]*ApplicationDTO, 0, len(apps))
	for _, app := range apps {
		dtos = append(dtos, toApplicationDTO(app))
	}
	return dtos
}
