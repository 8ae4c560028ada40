package dto

import (
	"time"

	"jobify-backend/internal/tracker/domain"
)

const dateLayout = "2006-01-02"

type ApplicationResponse struct {
	ApplicationID   uint   `json:"application_id"`
	CompanyName     string `json:"company_name"`
	RoleTitle       string `json:"role_title"`
	ApplicationDate string `json:"application_date"`
	Location        string `json:"location,omitempty"`
	ExternalJobID   string `json:"external_job_id,omitempty"`
}

type ApplicationsResponse struct {
	Applications []ApplicationResponse `json:"applications"`
}

type InterviewResponse struct {
	ApplicationID  uint   `json:"application_id"`
	RoundLabel     string `json:"round_label"`
	InvitationDate string `json:"invitation_date"`
	InterviewLink  string `json:"interview_link,omitempty"`
	DeadlineDate   string `json:"deadline_date,omitempty"`
	Completed      bool   `json:"completed"`
}

type InterviewsResponse struct {
	Interviews []InterviewResponse `json:"interviews"`
}

type RejectionResponse struct {
	ApplicationID uint   `json:"application_id"`
	CompanyName   string `json:"company_name"`
	RoleTitle     string `json:"role_title"`
	RejectionDate string `json:"rejection_date"`
}

type RejectionsResponse struct {
	Rejections []RejectionResponse `json:"rejections"`
}

type OfferResponse struct {
	ApplicationID    uint   `json:"application_id"`
	CompanyName      string `json:"company_name"`
	RoleTitle        string `json:"role_title"`
	OfferDate        string `json:"offer_date"`
	SalaryComp       string `json:"salary_comp,omitempty"`
	Location         string `json:"location,omitempty"`
	DeadlineToAccept string `json:"deadline_to_accept,omitempty"`
	Accepted         *bool  `json:"accepted,omitempty"`
}

type OffersResponse struct {
	Offers []OfferResponse `json:"offers"`
}

func FromApplications(apps []*domain.Application) ApplicationsResponse {
	out := make([]ApplicationResponse, 0, len(apps))
	for _, app := range apps {
		out = append(out, ApplicationResponse{
			ApplicationID:   app.ID,
			CompanyName:     app.CompanyName,
			RoleTitle:       app.RoleTitle,
			ApplicationDate: app.ApplicationDate.Format(dateLayout),
			Location:        app.Location,
			ExternalJobID:   app.ExternalJobID,
		})
	}
	return ApplicationsResponse{Applications: out}
}

func FromInterviews(rounds []*domain.InterviewRound) InterviewsResponse {
	out := make([]InterviewResponse, 0, len(rounds))
	for _, round := range rounds {
		out = append(out, InterviewResponse{
			ApplicationID:  round.ApplicationID,
			RoundLabel:     round.RoundLabel,
			InvitationDate: round.InvitationDate.Format(dateLayout),
			InterviewLink:  round.InterviewLink,
			DeadlineDate:   formatOptionalDate(round.DeadlineDate),
			Completed:      round.Completed,
		})
	}
	return InterviewsResponse{Interviews: out}
}

func FromRejections(rejections []*domain.Rejection) RejectionsResponse {
	out := make([]RejectionResponse, 0, len(rejections))
	for _, rejection := range rejections {
		out = append(out, RejectionResponse{
			ApplicationID: rejection.ApplicationID,
			CompanyName:   rejection.CompanyName,
			RoleTitle:     rejection.RoleTitle,
			RejectionDate: rejection.RejectionDate.Format(dateLayout),
		})
	}
	return RejectionsResponse{Rejections: out}
}

func FromOffers(offers []*domain.Offer) OffersResponse {
	out := make([]OfferResponse, 0, len(offers))
	for _, offer := range offers {
		out = append(out, OfferResponse{
			ApplicationID:    offer.ApplicationID,
			CompanyName:      offer.CompanyName,
			RoleTitle:        offer.RoleTitle,
			OfferDate:        offer.OfferDate.Format(dateLayout),
			SalaryComp:       offer.SalaryComp,
			Location:         offer.Location,
			DeadlineToAccept: formatOptionalDate(offer.DeadlineToAccept),
			Accepted:         offer.Accepted,
		})
	}
	return OffersResponse{Offers: out}
}

func formatOptionalDate(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format(dateLayout)
}
