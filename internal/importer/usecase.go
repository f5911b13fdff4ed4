package importer

import (
	"context"
	"io"

	"github.com/fekuna/omnipos-warehouse/internal/importer/dto"
)

type UseCase interface {
	// BulkImport applies each row in its own transaction and keeps going on failure.
	BulkImport(ctx context.Context, rows []dto.Row, userID string) (*dto.Result, error)
	ImportCSV(ctx context.Context, r io.Reader, userID string) (*dto.Result, error)
	// ImportXLSX reads the first worksheet of an .xlsx workbook.
	ImportXLSX(ctx context.Context, r io.Reader, userID string) (*dto.Result, error)
	ExportCSV(ctx context.Context, w io.Writer) error
}
