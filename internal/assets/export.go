package assets

import (
	"context"
	"fmt"
	"io"

	"github.com/google/uuid"
	"github.com/xuri/excelize/v2"

	"github.com/angelmondragon/assetdesk-backend/internal/store"
	pkgerrors "github.com/angelmondragon/assetdesk-backend/pkg/errors"
)

// ExportSheet is the worksheet holding the inventory export.
const ExportSheet = "Inventory"

var exportHeader = []any{
	"Asset Name", "Type", "Serial Number", "Purchase Date", "Purchase Price", "Status", "Assigned To",
}

// Export writes the whole inventory as an XLSX workbook, one row per asset,
// resolving assignee ids to employee names.
func (s *service) Export(ctx context.Context, w io.Writer) error {
	ctx, cancel := store.Bound(ctx, s.timeout)
	defer cancel()

	rows, err := s.store.Assets().List(ctx)
	if err != nil {
		return store.MapError(err, entity, "")
	}
	employees, err := s.store.Employees().List(ctx)
	if err != nil {
		return store.MapError(err, "employee", "")
	}
	names := make(map[uuid.UUID]string, len(employees))
	for _, e := range employees {
		names[e.ID] = e.Name
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), ExportSheet); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "prepare export sheet")
	}
	if err := f.SetSheetRow(ExportSheet, "A1", &exportHeader); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "write export header")
	}
	if style, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}}); err == nil {
		_ = f.SetRowStyle(ExportSheet, 1, 1, style)
	}

	for i, a := range rows {
		var price any = ""
		if a.PurchasePrice != nil {
			price = a.PurchasePrice.Round(2).InexactFloat64()
		}
		assignee := ""
		if a.AssignedTo != nil {
			assignee = names[*a.AssignedTo]
		}
		record := []any{
			a.AssetName, a.AssetType, a.SerialNumber, a.PurchaseDate.String(), price, a.Status.String(), assignee,
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "resolve export cell")
		}
		if err := f.SetSheetRow(ExportSheet, cell, &record); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, fmt.Sprintf("write export row %d", i+2))
		}
	}
	_ = f.SetColWidth(ExportSheet, "A", "G", 20)

	if err := f.Write(w); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "write export")
	}
	return nil
}
