package service

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/swiftdrop/dispatch/internal/core/domain"
	"github.com/swiftdrop/dispatch/internal/core/ports"
)

type driverService struct {
	drivers ports.DriverRepository
	groups  ports.TaskGroupRepository
	log     zerolog.Logger
}

// NewDriverService returns the DriverService managing courier profiles.
func NewDriverService(drivers ports.DriverRepository, groups ports.TaskGroupRepository, log zerolog.Logger) ports.DriverService {
	return &driverService{drivers: drivers, groups: groups, log: log}
}

// Register creates a driver profile in pending verification.
func (s *driverService) Register(ctx context.Context, in ports.RegisterDriverInput) (*ports.DriverDetail, error) {
	now := time.Now().UTC()

	vehicles := make([]domain.DriverVehicle, 0, len(in.Vehicles))
	for _, v := range in.Vehicles {
		vehicles = append(vehicles, domain.DriverVehicle{
			Class:       domain.VehicleClass(v.Class),
			PlateNumber: v.PlateNumber,
			Model:       v.Model,
		})
	}
	documents := make([]domain.DocumentRef, 0, len(in.Documents))
	for _, d := range in.Documents {
		documents = append(documents, domain.DocumentRef{
			Kind:       d.Kind,
			Reference:  d.Reference,
			UploadedAt: now,
		})
	}

	driver := &domain.Driver{
		UserID:       in.UserID,
		Name:         in.Name,
		Verification: domain.VerificationPending,
		Documents:    documents,
		Vehicles:     vehicles,
		CreatedAt:    now,
	}

	created, err := s.drivers.Create(ctx, driver)
	if err != nil {
		return nil, err
	}

	s.log.Info().Str("driver_id", created.ID).Str("user_id", in.UserID).Msg("driver registered")
	return toDriverDetail(created), nil
}

func (s *driverService) Get(ctx context.Context, driverID string) (*ports.DriverDetail, error) {
	driver, err := s.drivers.FindByID(ctx, driverID)
	if err != nil {
		return nil, err
	}
	return toDriverDetail(driver), nil
}

// UpdateLocation records a driver-initiated position report.
func (s *driverService) UpdateLocation(ctx context.Context, driverID string, pos ports.CoordinatesInput) error {
	return s.drivers.UpdateLocation(ctx, driverID, domain.Coordinates{Lat: pos.Lat, Lng: pos.Lng}, time.Now().UTC())
}

// SetVerification applies an admin decision on the driver's documents.
func (s *driverService) SetVerification(ctx context.Context, driverID string, status string) error {
	parsed, err := domain.ParseVerificationStatus(status)
	if err != nil {
		return err
	}
	if err := s.drivers.SetVerification(ctx, driverID, parsed); err != nil {
		return err
	}
	s.log.Info().Str("driver_id", driverID).Str("verification", status).Msg("driver verification updated")
	return nil
}

// ListGroups returns the driver's assigned task groups.
func (s *driverService) ListGroups(ctx context.Context, driverID string) ([]ports.GroupSummary, error) {
	groups, err := s.groups.FindByDriverID(ctx, driverID)
	if err != nil {
		return nil, err
	}

	out := make([]ports.GroupSummary, 0, len(groups))
	for _, g := range groups {
		out = append(out, ports.GroupSummary{
			GroupID:       g.ID,
			Status:        string(g.Status),
			DriverStatus:  string(g.Task.DriverStatus),
			PickupCenter:  ports.CoordinatesInput{Lat: g.PickupCenter.Lat, Lng: g.PickupCenter.Lng},
			DropoffCenter: ports.CoordinatesInput{Lat: g.DropoffCenter.Lat, Lng: g.DropoffCenter.Lng},
			Orders:        g.OrderIDs(),
		})
	}
	return out, nil
}

func toDriverDetail(d *domain.Driver) *ports.DriverDetail {
	vehicles := make([]ports.VehicleInput, 0, len(d.Vehicles))
	for _, v := range d.Vehicles {
		vehicles = append(vehicles, ports.VehicleInput{
			Class:       string(v.Class),
			PlateNumber: v.PlateNumber,
			Model:       v.Model,
		})
	}

	detail := &ports.DriverDetail{
		ID:           d.ID,
		Name:         d.Name,
		Verification: string(d.Verification),
		Vehicles:     vehicles,
		Earnings:     d.Earnings,
		LocatedAt:    d.LocatedAt,
	}
	if d.LastLocation != nil {
		detail.LastLocation = &ports.CoordinatesInput{Lat: d.LastLocation.Lat, Lng: d.LastLocation.Lng}
	}
	return detail
}
