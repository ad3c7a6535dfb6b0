package services

import (
	"strings"

	"storefront/internal/apperr"
	"storefront/internal/models"
	"storefront/internal/repositories"
	"storefront/internal/validation"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

// AddressPatch carries the fields of an address edit; nil fields are kept.
type AddressPatch struct {
	Address *string `json:"address"`
	City    *string `json:"city"`
	PinCode *string `json:"pinCode"`
	Phone   *string `json:"phone"`
	Notes   *string `json:"notes"`
}

// AddressService handles business logic for the address book.
type AddressService struct {
	repo     repositories.AddressRepository
	validate *validator.Validate
	logger   *zap.Logger
}

// NewAddressService creates a new AddressService.
func NewAddressService(repo repositories.AddressRepository, logger *zap.Logger) *AddressService {
	return &AddressService{
		repo:     repo,
		validate: validation.New(),
		logger:   logger,
	}
}

// ListAddresses returns the user's addresses, newest first.
func (s *AddressService) ListAddresses(userID string) ([]models.Address, error) {
	return s.repo.ListByUser(userID)
}

// GetAddress returns one of the user's addresses.
func (s *AddressService) GetAddress(userID, id string) (*models.Address, error) {
	return s.repo.GetByID(userID, id)
}

// AddAddress stores a new address. A full address book is rejected before
// the input is validated.
func (s *AddressService) AddAddress(userID string, input models.Address) (*models.Address, error) {
	count, err := s.repo.CountByUser(userID)
	if err != nil {
		return nil, err
	}
	if count >= models.MaxAddresses {
		return nil, apperr.ErrAddressLimitReached
	}

	address := &models.Address{
		UserID:  userID,
		Address: input.Address,
		City:    input.City,
		PinCode: input.PinCode,
		Phone:   input.Phone,
		Notes:   input.Notes,
	}
	if err := s.check(address); err != nil {
		return nil, err
	}
	if err := s.repo.CreateCapped(address, models.MaxAddresses); err != nil {
		return nil, err
	}
	s.logger.Info("address added", zap.String("user_id", userID), zap.String("address_id", address.ID))
	return address, nil
}

// EditAddress applies patch to one of the user's addresses and re-validates it.
func (s *AddressService) EditAddress(userID, id string, patch AddressPatch) (*models.Address, error) {
	address, err := s.repo.GetByID(userID, id)
	if err != nil {
		return nil, err
	}
	apply := func(dst *string, src *string) {
		if src != nil {
			*dst = *src
		}
	}
	apply(&address.Address, patch.Address)
	apply(&address.City, patch.City)
	apply(&address.PinCode, patch.PinCode)
	apply(&address.Phone, patch.Phone)
	apply(&address.Notes, patch.Notes)

	if err := s.check(address); err != nil {
		return nil, err
	}
	if err := s.repo.Update(address); err != nil {
		return nil, err
	}
	return address, nil
}

// DeleteAddress removes one of the user's addresses.
func (s *AddressService) DeleteAddress(userID, id string) error {
	return s.repo.Delete(userID, id)
}

func (s *AddressService) check(a *models.Address) error {
	a.Address = strings.TrimSpace(a.Address)
	a.City = strings.TrimSpace(a.City)
	a.PinCode = strings.TrimSpace(a.PinCode)
	a.Phone = strings.TrimSpace(a.Phone)
	a.Notes = strings.TrimSpace(a.Notes)
	if err := s.validate.Struct(a); err != nil {
		return apperr.InvalidAddress(validation.Messages(err))
	}
	return nil
}
