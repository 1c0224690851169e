package service

import (
	"context"

	"bookshelf-backend/internal/domains/entry/model"

	"github.com/xuri/excelize/v2"
)

// ServiceInterface - business operations of the entry domain
type ServiceInterface interface {
	CreateEntry(ctx context.Context, req model.CreateEntryRequest) (*model.EntryResponse, error)
	ListEntries(ctx context.Context) ([]model.EntryResponse, error)
	GetEntry(ctx context.Context, query string) (*model.EntryResponse, error)
	UpdateEntry(ctx context.Context, req model.UpdateEntryRequest) (*model.EntryResponse, error)
	DeleteEntry(ctx context.Context, query string) (string, error)
	ExportEntries(ctx context.Context) (*excelize.File, error)
	Health(ctx context.Context) error
}
