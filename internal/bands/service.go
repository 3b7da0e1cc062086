package bands

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/roadcasehq/merchtable-backend/pkg/db/models"
	pkgerrors "github.com/roadcasehq/merchtable-backend/pkg/errors"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type merchReader interface {
	GetByIDs(ctx context.Context, ids []string) (map[string]*models.Merchandise, error)
}

// CreateBandInput captures the payload for a new band. An empty Slug is
// derived from the name.
type CreateBandInput struct {
	Name        string
	Slug        string
	Description string
	Website     string
}

// UpdateBandInput captures a partial band edit. Nil fields are untouched.
type UpdateBandInput struct {
	Name        *string
	Description *string
	Website     *string
}

// CreateTourInput captures the payload for a new tour.
type CreateTourInput struct {
	BandID    string
	Name      string
	StartDate *time.Time
	EndDate   *time.Time
}

// CreateShowInput captures the payload for a new show.
type CreateShowInput struct {
	BandID   string
	TourID   *string
	Venue    string
	City     string
	Country  string
	ShowDate *time.Time
}

// CreateSalesPageInput captures the payload for a new sales page.
type CreateSalesPageInput struct {
	BandID string
	ShowID *string
	Title  string
	Slug   string
}

// PageItemInput pins one item to a sales page at a position.
type PageItemInput struct {
	MerchandiseID string
	Position      int
}

// Service exposes band, tour, show, and sales page management.
type Service interface {
	CreateBand(ctx context.Context, input CreateBandInput) (*models.Band, error)
	UpdateBand(ctx context.Context, id string, input UpdateBandInput) (*models.Band, error)
	GetBand(ctx context.Context, id string) (*models.Band, error)
	ListBands(ctx context.Context) ([]models.Band, error)

	CreateTour(ctx context.Context, input CreateTourInput) (*models.Tour, error)
	ListTours(ctx context.Context, bandID string) ([]models.Tour, error)

	CreateShow(ctx context.Context, input CreateShowInput) (*models.Show, error)
	GetShow(ctx context.Context, id string) (*models.Show, error)
	ListShows(ctx context.Context, bandID, tourID string) ([]models.Show, error)

	CreateSalesPage(ctx context.Context, input CreateSalesPageInput) (*models.SalesPage, error)
	GetSalesPage(ctx context.Context, id string) (*models.SalesPage, error)
	GetSalesPageBySlug(ctx context.Context, slug string) (*models.SalesPage, error)
	ListSalesPages(ctx context.Context, bandID string, activeOnly bool) ([]models.SalesPage, error)
	SetSalesPageItems(ctx context.Context, pageID string, items []PageItemInput) (*models.SalesPage, error)
}

type service struct {
	repo  *Repository
	merch merchReader
	tx    txRunner
}

// NewService builds the band management service.
func NewService(repo *Repository, merch merchReader, tx txRunner) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("bands repository required")
	}
	if merch == nil {
		return nil, fmt.Errorf("merchandise reader required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	return &service{repo: repo, merch: merch, tx: tx}, nil
}

func (s *service) CreateBand(ctx context.Context, input CreateBandInput) (*models.Band, error) {
	if strings.TrimSpace(input.Name) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "band name is required")
	}
	slug := strings.TrimSpace(input.Slug)
	if slug == "" {
		slug = Slugify(input.Name)
	}
	if slug == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "band name yields an empty slug")
	}

	if _, err := s.repo.GetBandBySlug(ctx, slug); err == nil {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "band slug already taken").
			WithDetails(map[string]any{"slug": slug})
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check band slug")
	}

	band := &models.Band{
		ID:          uuid.NewString(),
		Name:        strings.TrimSpace(input.Name),
		Slug:        slug,
		Description: strings.TrimSpace(input.Description),
		Website:     strings.TrimSpace(input.Website),
	}
	created, err := s.repo.CreateBand(ctx, band)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create band")
	}
	return created, nil
}

func (s *service) UpdateBand(ctx context.Context, id string, input UpdateBandInput) (*models.Band, error) {
	band, err := s.GetBand(ctx, id)
	if err != nil {
		return nil, err
	}
	if input.Name != nil {
		if strings.TrimSpace(*input.Name) == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "band name cannot be empty")
		}
		band.Name = strings.TrimSpace(*input.Name)
	}
	if input.Description != nil {
		band.Description = strings.TrimSpace(*input.Description)
	}
	if input.Website != nil {
		band.Website = strings.TrimSpace(*input.Website)
	}
	updated, err := s.repo.UpdateBand(ctx, band)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update band")
	}
	return updated, nil
}

func (s *service) GetBand(ctx context.Context, id string) (*models.Band, error) {
	if strings.TrimSpace(id) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "band id is required")
	}
	band, err := s.repo.GetBand(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "band not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load band")
	}
	return band, nil
}

func (s *service) ListBands(ctx context.Context) ([]models.Band, error) {
	rows, err := s.repo.ListBands(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list bands")
	}
	return rows, nil
}

func (s *service) CreateTour(ctx context.Context, input CreateTourInput) (*models.Tour, error) {
	if _, err := s.GetBand(ctx, input.BandID); err != nil {
		return nil, err
	}
	if strings.TrimSpace(input.Name) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "tour name is required")
	}
	if input.StartDate != nil && input.EndDate != nil && input.EndDate.Before(*input.StartDate) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "tour end precedes start")
	}

	tour := &models.Tour{
		ID:        uuid.NewString(),
		BandID:    input.BandID,
		Name:      strings.TrimSpace(input.Name),
		StartDate: input.StartDate,
		EndDate:   input.EndDate,
	}
	created, err := s.repo.CreateTour(ctx, tour)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create tour")
	}
	return created, nil
}

func (s *service) ListTours(ctx context.Context, bandID string) ([]models.Tour, error) {
	if strings.TrimSpace(bandID) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "band id is required")
	}
	rows, err := s.repo.ListTours(ctx, bandID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list tours")
	}
	return rows, nil
}

func (s *service) CreateShow(ctx context.Context, input CreateShowInput) (*models.Show, error) {
	if _, err := s.GetBand(ctx, input.BandID); err != nil {
		return nil, err
	}
	if strings.TrimSpace(input.Venue) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "venue is required")
	}
	if input.TourID != nil {
		tour, err := s.repo.GetTour(ctx, *input.TourID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, pkgerrors.New(pkgerrors.CodeNotFound, "tour not found")
			}
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load tour")
		}
		if tour.BandID != input.BandID {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "tour belongs to another band")
		}
	}

	show := &models.Show{
		ID:       uuid.NewString(),
		BandID:   input.BandID,
		TourID:   input.TourID,
		Venue:    strings.TrimSpace(input.Venue),
		City:     strings.TrimSpace(input.City),
		Country:  strings.TrimSpace(input.Country),
		ShowDate: input.ShowDate,
	}
	created, err := s.repo.CreateShow(ctx, show)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create show")
	}
	return created, nil
}

func (s *service) GetShow(ctx context.Context, id string) (*models.Show, error) {
	if strings.TrimSpace(id) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "show id is required")
	}
	show, err := s.repo.GetShow(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "show not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load show")
	}
	return show, nil
}

func (s *service) ListShows(ctx context.Context, bandID, tourID string) ([]models.Show, error) {
	if strings.TrimSpace(bandID) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "band id is required")
	}
	rows, err := s.repo.ListShows(ctx, bandID, tourID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list shows")
	}
	return rows, nil
}

func (s *service) CreateSalesPage(ctx context.Context, input CreateSalesPageInput) (*models.SalesPage, error) {
	if _, err := s.GetBand(ctx, input.BandID); err != nil {
		return nil, err
	}
	if strings.TrimSpace(input.Title) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "title is required")
	}
	slug := strings.TrimSpace(input.Slug)
	if slug == "" {
		slug = Slugify(input.Title)
	}
	if slug == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "title yields an empty slug")
	}
	if _, err := s.repo.GetSalesPageBySlug(ctx, slug); err == nil {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "sales page slug already taken").
			WithDetails(map[string]any{"slug": slug})
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check sales page slug")
	}

	page := &models.SalesPage{
		ID:     uuid.NewString(),
		BandID: input.BandID,
		ShowID: input.ShowID,
		Title:  strings.TrimSpace(input.Title),
		Slug:   slug,
		Active: true,
	}
	created, err := s.repo.CreateSalesPage(ctx, page)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create sales page")
	}
	return created, nil
}

func (s *service) GetSalesPage(ctx context.Context, id string) (*models.SalesPage, error) {
	if strings.TrimSpace(id) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "sales page id is required")
	}
	page, err := s.repo.GetSalesPage(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "sales page not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load sales page")
	}
	return page, nil
}

func (s *service) GetSalesPageBySlug(ctx context.Context, slug string) (*models.SalesPage, error) {
	if strings.TrimSpace(slug) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "slug is required")
	}
	page, err := s.repo.GetSalesPageBySlug(ctx, slug)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "sales page not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load sales page")
	}
	return page, nil
}

func (s *service) ListSalesPages(ctx context.Context, bandID string, activeOnly bool) ([]models.SalesPage, error) {
	if strings.TrimSpace(bandID) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "band id is required")
	}
	rows, err := s.repo.ListSalesPages(ctx, bandID, activeOnly)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list sales pages")
	}
	return rows, nil
}

// SetSalesPageItems replaces the page lineup. Every item must belong to
// the page's band.
func (s *service) SetSalesPageItems(ctx context.Context, pageID string, items []PageItemInput) (*models.SalesPage, error) {
	page, err := s.GetSalesPage(ctx, pageID)
	if err != nil {
		return nil, err
	}

	ids := make([]string, 0, len(items))
	for _, item := range items {
		ids = append(ids, item.MerchandiseID)
	}
	merchByID, err := s.merch.GetByIDs(ctx, ids)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load merchandise")
	}
	for _, item := range items {
		merch, ok := merchByID[item.MerchandiseID]
		if !ok {
			return nil, pkgerrors.New(pkgerrors.CodeMerchNotFound, "merchandise not found").
				WithDetails(map[string]any{"merchandise_id": item.MerchandiseID})
		}
		if merch.BandID != page.BandID {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "merchandise belongs to another band").
				WithDetails(map[string]any{"merchandise_id": item.MerchandiseID})
		}
	}

	rows := make([]models.SalesPageItem, 0, len(items))
	for _, item := range items {
		rows = append(rows, models.SalesPageItem{
			ID:            uuid.NewString(),
			SalesPageID:   pageID,
			MerchandiseID: item.MerchandiseID,
			Position:      item.Position,
		})
	}
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		return s.repo.ReplaceSalesPageItems(tx, pageID, rows)
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "replace sales page items")
	}
	return s.GetSalesPage(ctx, pageID)
}
