package repository

import (
	"errors"
	"strings"
	"time"

	"jobify-backend/internal/tracker/domain"

	"gorm.io/gorm"
)

// applicationRepository implements ApplicationRepository using GORM
type applicationRepository struct {
	db *gorm.DB
}

func NewApplicationRepository(db *gorm.DB) ApplicationRepository {
	return &applicationRepository{db: db}
}

func (r *applicationRepository) Create(app *domain.Application) error {
	now := time.Now()
	app.CreatedAt = now
	app.UpdatedAt = now
	return r.db.Create(app).Error
}

func (r *applicationRepository) FindByID(id uint) (*domain.Application, error) {
	var app domain.Application
	err := r.db.Where("id = ?", id).First(&app).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &app, nil
}

func (r *applicationRepository) FindByUser(userEmail string) ([]*domain.Application, error) {
	var apps []*domain.Application
	err := r.db.Where("user_email = ?", userEmail).
		Order("application_date ASC, id ASC").Find(&apps).Error
	return apps, err
}

func (r *applicationRepository) UpsertInterviewRound(round *domain.InterviewRound) (bool, error) {
	var existing domain.InterviewRound
	err := r.db.Where("application_id = ? AND LOWER(round_label) = ?",
		round.ApplicationID, strings.ToLower(round.RoundLabel)).First(&existing).Error

	now := time.Now()
	if errors.Is(err, gorm.ErrRecordNotFound) {
		round.CreatedAt = now
		round.UpdatedAt = now
		if err := r.db.Create(round).Error; err != nil {
			return false, err
		}
		return true, nil
	} else if err != nil {
		return false, err
	}

	// Same round seen again: overwrite the invitation date, keep the row
	existing.InvitationDate = round.InvitationDate
	if round.InterviewLink != "" {
		existing.InterviewLink = round.InterviewLink
	}
	if round.DeadlineDate != nil {
		existing.DeadlineDate = round.DeadlineDate
	}
	existing.UpdatedAt = now
	if err := r.db.Save(&existing).Error; err != nil {
		return false, err
	}
	*round = existing
	return false, nil
}

func (r *applicationRepository) FindInterviewsByUser(userEmail string) ([]*domain.InterviewRound, error) {
	var rounds []*domain.InterviewRound
	err := r.db.Joins("JOIN applications ON applications.id = interview_rounds.application_id").
		Where("applications.user_email = ?", userEmail).
		Order("interview_rounds.application_id ASC, interview_rounds.invitation_date ASC").
		Find(&rounds).Error
	return rounds, err
}

func (r *applicationRepository) UpsertRejection(rejection *domain.Rejection) error {
	var existing domain.Rejection
	err := r.db.Where("application_id = ?", rejection.ApplicationID).First(&existing).Error

	now := time.Now()
	if errors.Is(err, gorm.ErrRecordNotFound) {
		rejection.CreatedAt = now
		rejection.UpdatedAt = now
		return r.db.Create(rejection).Error
	} else if err != nil {
		return err
	}

	// Last write wins
	existing.CompanyName = rejection.CompanyName
	existing.RoleTitle = rejection.RoleTitle
	existing.RejectionDate = rejection.RejectionDate
	existing.UpdatedAt = now
	if err := r.db.Save(&existing).Error; err != nil {
		return err
	}
	*rejection = existing
	return nil
}

func (r *applicationRepository) FindRejectionsByUser(userEmail string) ([]*domain.Rejection, error) {
	var rejections []*domain.Rejection
	err := r.db.Joins("JOIN applications ON applications.id = rejections.application_id").
		Where("applications.user_email = ?", userEmail).
		Order("rejections.rejection_date ASC").
		Find(&rejections).Error
	return rejections, err
}

func (r *applicationRepository) UpsertOffer(offer *domain.Offer) error {
	var existing domain.Offer
	err := r.db.Where("application_id = ?", offer.ApplicationID).First(&existing).Error

	now := time.Now()
	if errors.Is(err, gorm.ErrRecordNotFound) {
		offer.CreatedAt = now
		offer.UpdatedAt = now
		return r.db.Create(offer).Error
	} else if err != nil {
		return err
	}

	// Overwrite, but never lose a recorded accept/decline when the new
	// event carries no signal
	if offer.Accepted == nil {
		offer.Accepted = existing.Accepted
	}
	existing.CompanyName = offer.CompanyName
	existing.RoleTitle = offer.RoleTitle
	existing.OfferDate = offer.OfferDate
	if offer.SalaryComp != "" {
		existing.SalaryComp = offer.SalaryComp
	}
	if offer.Location != "" {
		existing.Location = offer.Location
	}
	if offer.DeadlineToAccept != nil {
		existing.DeadlineToAccept = offer.DeadlineToAccept
	}
	existing.Accepted = offer.Accepted
	existing.UpdatedAt = now
	if err := r.db.Save(&existing).Error; err != nil {
		return err
	}
	*offer = existing
	return nil
}

func (r *applicationRepository) FindOffersByUser(userEmail string) ([]*domain.Offer, error) {
	var offers []*domain.Offer
	err := r.db.Joins("JOIN applications ON applications.id = offers.application_id").
		Where("applications.user_email = ?", userEmail).
		Order("offers.offer_date ASC").
		Find(&offers).Error
	return offers, err
}
