package usecase

import "jobify-backend/internal/tracker/domain"

func (u *trackerUsecase) GetApplications(userEmail string) ([]*domain.Application, error) {
	return u.appRepo.FindByUser(userEmail)
}

func (u *trackerUsecase) GetInterviews(userEmail string) ([]*domain.InterviewRound, error) {
	return u.appRepo.FindInterviewsByUser(userEmail)
}

func (u *trackerUsecase) GetRejections(userEmail string) ([]*domain.Rejection, error) {
	return u.appRepo.FindRejectionsByUser(userEmail)
}

func (u *trackerUsecase) GetOffers(userEmail string) ([]*domain.Offer, error) {
	return u.appRepo.FindOffersByUser(userEmail)
}
