package service

import (
	"context"
	"errors"
	"strings"

	"github.com/Shem717/IFTA-WAY-Rev26/internal/apperr"
	"github.com/Shem717/IFTA-WAY-Rev26/internal/db"
	"github.com/Shem717/IFTA-WAY-Rev26/internal/models"
	"github.com/go-playground/validator/v10"
	"github.com/sirupsen/logrus"
)

// TruckService manages the trucks a user logs fuel for.
type TruckService struct {
	trucks   db.TruckCollection
	validate *validator.Validate
	log      logrus.FieldLogger
}

func NewTruckService(trucks db.TruckCollection, log logrus.FieldLogger) *TruckService {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &TruckService{trucks: trucks, validate: newValidator(), log: log}
}

func (s *TruckService) List(ctx context.Context, userID string) ([]models.Truck, error) {
	if userID == "" {
		return nil, apperr.Unauthenticated("Must be authenticated")
	}
	trucks, err := s.trucks.FindTrucks(ctx, userID)
	if err != nil {
		s.log.WithField("user_id", userID).WithError(err).Error("Failed to list trucks")
		return nil, apperr.Internal("Failed to load trucks.", err)
	}
	return trucks, nil
}

func (s *TruckService) Add(ctx context.Context, userID string, in models.TruckInput) (*models.Truck, error) {
	if userID == "" {
		return nil, apperr.Unauthenticated("Must be authenticated")
	}
	in.Number = strings.TrimSpace(in.Number)
	in.MakeModel = strings.TrimSpace(in.MakeModel)
	if err := s.validate.Struct(in); err != nil {
		return nil, validationError(err)
	}

	truck := models.Truck{UserID: userID, Number: in.Number, MakeModel: in.MakeModel}
	id, err := s.trucks.InsertTruck(ctx, truck)
	if err != nil {
		s.log.WithField("user_id", userID).WithError(err).Error("Failed to add truck")
		return nil, apperr.Internal("Failed to save truck.", err)
	}
	truck.ID = id
	return &truck, nil
}

func (s *TruckService) Delete(ctx context.Context, userID, id string) error {
	if userID == "" {
		return apperr.Unauthenticated("Must be authenticated")
	}
	if err := s.trucks.DeleteTruck(ctx, userID, id); err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return apperr.NotFound("Truck not found.")
		}
		s.log.WithFields(logrus.Fields{"user_id": userID, "truck_id": id}).WithError(err).Error("Failed to delete truck")
		return apperr.Internal("Failed to delete truck.", err)
	}
	return nil
}
