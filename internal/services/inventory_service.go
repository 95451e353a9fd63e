package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"slices"
	"strconv"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"isp-system/internal/authz"
	"isp-system/internal/dto"
	"isp-system/internal/entities"
	"isp-system/internal/repositories"
	"isp-system/pkg/constants"
	apperrors "isp-system/pkg/errors"
	"isp-system/pkg/export"
	"isp-system/pkg/types"
	"isp-system/pkg/utils"
)

var inventoryCategories = []string{"router", "modem", "ont", "cable", "switch", "other"}

// Колонки файла импорта.
const (
	colSKU      = "SKU"
	colName     = "Name"
	colCategory = "Category"
	colQuantity = "Quantity"
	colMin      = "Min"
	colPrice    = "Price"
	colLocation = "Location"
)

type InventoryService struct {
	*BaseService
	repo       repositories.InventoryRepositoryInterface
	vendorRepo repositories.VendorRepositoryInterface
}

func NewInventoryService(base *BaseService, repo repositories.InventoryRepositoryInterface, vendorRepo repositories.VendorRepositoryInterface) *InventoryService {
	return &InventoryService{BaseService: base, repo: repo, vendorRepo: vendorRepo}
}

func (s *InventoryService) GetItems(ctx context.Context, filter types.Filter) ([]entities.InventoryItem, uint64, error) {
	_, scope, err := s.scope(ctx, authz.InventoryView, repositories.InventoryScopeColumns)
	if err != nil {
		return nil, 0, err
	}
	return s.repo.GetItems(ctx, filter, scope)
}

func (s *InventoryService) GetStats(ctx context.Context, filter types.Filter) (types.StatusStats, error) {
	_, scope, err := s.scope(ctx, authz.InventoryView, repositories.InventoryScopeColumns)
	if err != nil {
		return types.StatusStats{}, err
	}
	return s.repo.GetStats(ctx, filter, scope)
}

func (s *InventoryService) FindByID(ctx context.Context, id uint64) (*entities.InventoryItem, error) {
	item, err := s.repo.FindByID(ctx, nil, id)
	if err != nil {
		return nil, err
	}
	if _, _, err := s.authorize(ctx, authz.InventoryView, item); err != nil {
		return nil, err
	}
	return item, nil
}

func (s *InventoryService) checkVendor(ctx context.Context, vendorID, operatorID uint64) error {
	vendor, err := s.vendorRepo.FindByID(ctx, nil, vendorID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return apperrors.NewInvalidInputError("поставщик %d не найден", vendorID)
		}
		return err
	}
	if vendor.OperatorID != operatorID {
		return apperrors.NewInvalidInputError("поставщик принадлежит другому оператору")
	}
	return nil
}

func (s *InventoryService) Create(ctx context.Context, payload dto.CreateInventoryItemDTO) (*entities.InventoryItem, error) {
	actor, perms, err := s.authorize(ctx, authz.InventoryCreate, nil)
	if err != nil {
		return nil, err
	}
	operatorID, err := resolveOperator(actor, perms, payload.OperatorID)
	if err != nil {
		return nil, err
	}
	if payload.VendorID != nil {
		if err := s.checkVendor(ctx, *payload.VendorID, operatorID); err != nil {
			return nil, err
		}
	}

	item := &entities.InventoryItem{
		OperatorID:  operatorID,
		VendorID:    payload.VendorID,
		SKU:         strings.ToUpper(payload.SKU),
		Name:        payload.Name,
		Category:    payload.Category,
		Quantity:    payload.Quantity,
		MinQuantity: payload.MinQuantity,
		UnitPrice:   payload.UnitPrice,
		Location:    payload.Location,
	}

	err = s.inTx(ctx, actor, func(tx pgx.Tx, j *Journal) error {
		if err := s.repo.Create(ctx, tx, item); err != nil {
			return err
		}
		return j.Record(ctx, Change{EntityType: constants.EntityInventory, EntityID: item.ID, OperatorID: &item.OperatorID, Action: constants.ActionCreated, New: item})
	})
	if err != nil {
		return nil, err
	}
	return item, nil
}

func (s *InventoryService) Update(ctx context.Context, id uint64, payload dto.UpdateInventoryItemDTO, fields utils.Fields) (*entities.InventoryItem, error) {
	item, err := s.repo.FindByID(ctx, nil, id)
	if err != nil {
		return nil, err
	}
	actor, _, err := s.authorize(ctx, authz.InventoryUpdate, item)
	if err != nil {
		return nil, err
	}
	old := *item

	if fields.Has("vendor_id") {
		item.VendorID = payload.VendorID.Ptr()
		if item.VendorID != nil {
			if err := s.checkVendor(ctx, *item.VendorID, item.OperatorID); err != nil {
				return nil, err
			}
		}
	}
	if payload.SKU != nil {
		item.SKU = strings.ToUpper(*payload.SKU)
	}
	if payload.Name != nil {
		item.Name = *payload.Name
	}
	if payload.Category != nil {
		item.Category = *payload.Category
	}
	if payload.Quantity != nil {
		item.Quantity = *payload.Quantity
	}
	if payload.MinQuantity != nil {
		item.MinQuantity = *payload.MinQuantity
	}
	if payload.UnitPrice.Valid {
		item.UnitPrice = payload.UnitPrice.Decimal
	}
	if fields.Has("location") {
		item.Location = payload.Location.Ptr()
	}

	err = s.inTx(ctx, actor, func(tx pgx.Tx, j *Journal) error {
		if err := s.repo.Update(ctx, tx, item); err != nil {
			return err
		}
		return j.Record(ctx, Change{EntityType: constants.EntityInventory, EntityID: item.ID, OperatorID: &item.OperatorID, Action: constants.ActionUpdated, Old: old, New: item})
	})
	if err != nil {
		return nil, err
	}
	return item, nil
}

// Adjust - приход или списание; остаток не может уйти ниже нуля.
func (s *InventoryService) Adjust(ctx context.Context, id uint64, payload dto.AdjustInventoryDTO) (*entities.InventoryItem, error) {
	item, err := s.repo.FindByID(ctx, nil, id)
	if err != nil {
		return nil, err
	}
	actor, _, err := s.authorize(ctx, authz.InventoryUpdate, item)
	if err != nil {
		return nil, err
	}
	if item.Quantity+payload.Delta < 0 {
		return nil, apperrors.NewHttpError(http.StatusUnprocessableEntity,
			fmt.Sprintf("Недостаточно остатка: на складе %d, списание %d", item.Quantity, -payload.Delta),
			nil, map[string]int{"quantity": item.Quantity, "delta": payload.Delta})
	}
	old := *item

	err = s.inTx(ctx, actor, func(tx pgx.Tx, j *Journal) error {
		if err := s.repo.Adjust(ctx, tx, item, payload.Delta); err != nil {
			return err
		}
		return j.Record(ctx, Change{
			EntityType: constants.EntityInventory, EntityID: item.ID, OperatorID: &item.OperatorID,
			Action: constants.ActionAdjusted, Old: old,
			New: map[string]interface{}{"quantity": item.Quantity, "status": item.Status, "delta": payload.Delta, "reason": payload.Reason},
		})
	})
	if err != nil {
		return nil, err
	}
	return item, nil
}

func (s *InventoryService) Delete(ctx context.Context, id uint64) error {
	item, err := s.repo.FindByID(ctx, nil, id)
	if err != nil {
		return err
	}
	actor, _, err := s.authorize(ctx, authz.InventoryDelete, item)
	if err != nil {
		return err
	}
	return s.inTx(ctx, actor, func(tx pgx.Tx, j *Journal) error {
		if err := s.repo.Delete(ctx, tx, id); err != nil {
			return err
		}
		return j.Record(ctx, Change{EntityType: constants.EntityInventory, EntityID: id, OperatorID: &item.OperatorID, Action: constants.ActionDeleted, Old: item})
	})
}

// Import - upsert по SKU из xlsx. Ошибочные строки попадают в отчёт и не прерывают импорт.
func (s *InventoryService) Import(ctx context.Context, r io.Reader, requestedOperator *uint64) (*dto.ImportResultDTO, error) {
	actor, perms, err := s.authorize(ctx, authz.InventoryImport, nil)
	if err != nil {
		return nil, err
	}
	operatorID, err := resolveOperator(actor, perms, requestedOperator)
	if err != nil {
		return nil, err
	}

	rows, err := export.ReadRows(r)
	if err != nil {
		return nil, apperrors.NewInvalidInputError("не удалось прочитать файл: %v", err)
	}
	if len(rows) == 0 {
		return nil, apperrors.NewInvalidInputError("файл пуст")
	}
	idx := export.HeaderIndex(rows[0], colSKU, colName, colCategory, colQuantity, colMin, colPrice, colLocation)
	if idx[colSKU] < 0 || idx[colName] < 0 {
		return nil, apperrors.NewInvalidInputError("в файле нет обязательных колонок %s и %s", colSKU, colName)
	}

	result := &dto.ImportResultDTO{Errors: []dto.ImportRowErrorDTO{}}
	err = s.inTx(ctx, actor, func(tx pgx.Tx, j *Journal) error {
		for i, row := range rows[1:] {
			line := i + 2
			parsed, err := parseImportRow(row, idx)
			if err != nil {
				result.Errors = append(result.Errors, dto.ImportRowErrorDTO{Row: line, Message: err.Error()})
				continue
			}
			if parsed == nil {
				continue
			}
			parsed.OperatorID = operatorID

			existing, err := s.repo.FindBySKU(ctx, tx, operatorID, parsed.SKU)
			switch {
			case errors.Is(err, apperrors.ErrNotFound):
				if err := s.repo.Create(ctx, tx, parsed); err != nil {
					return fmt.Errorf("строка %d: %w", line, err)
				}
				result.Created++
				if err := j.Record(ctx, Change{EntityType: constants.EntityInventory, EntityID: parsed.ID, OperatorID: &operatorID, Action: constants.ActionImported, New: parsed}); err != nil {
					return err
				}
			case err != nil:
				return err
			default:
				old := *existing
				if !mergeImported(existing, parsed, idx) {
					result.Skipped++
					continue
				}
				if err := s.repo.Update(ctx, tx, existing); err != nil {
					return fmt.Errorf("строка %d: %w", line, err)
				}
				result.Updated++
				if err := j.Record(ctx, Change{EntityType: constants.EntityInventory, EntityID: existing.ID, OperatorID: &operatorID, Action: constants.ActionImported, Old: old, New: existing}); err != nil {
					return err
				}
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Импорт склада завершён",
		zap.Uint64("operatorID", operatorID),
		zap.Int("created", result.Created),
		zap.Int("updated", result.Updated),
		zap.Int("skipped", result.Skipped),
		zap.Int("errors", len(result.Errors)))
	return result, nil
}

// parseImportRow возвращает nil без ошибки для пустой строки.
func parseImportRow(row []string, idx map[string]int) (*entities.InventoryItem, error) {
	sku := strings.ToUpper(export.Cell(row, idx[colSKU]))
	name := export.Cell(row, idx[colName])
	if sku == "" && name == "" {
		return nil, nil
	}
	if sku == "" {
		return nil, fmt.Errorf("не указан SKU")
	}
	if name == "" {
		return nil, fmt.Errorf("не указано название")
	}

	item := &entities.InventoryItem{SKU: sku, Name: name, Category: "other"}
	if c := strings.ToLower(export.Cell(row, idx[colCategory])); c != "" {
		if !slices.Contains(inventoryCategories, c) {
			return nil, fmt.Errorf("неизвестная категория %q", c)
		}
		item.Category = c
	}

	var err error
	if item.Quantity, err = parseCount(export.Cell(row, idx[colQuantity]), colQuantity); err != nil {
		return nil, err
	}
	if item.MinQuantity, err = parseCount(export.Cell(row, idx[colMin]), colMin); err != nil {
		return nil, err
	}
	if p := export.Cell(row, idx[colPrice]); p != "" {
		price, err := decimal.NewFromString(strings.ReplaceAll(p, ",", "."))
		if err != nil || price.IsNegative() {
			return nil, fmt.Errorf("неверная цена %q", p)
		}
		item.UnitPrice = price
	}
	if l := export.Cell(row, idx[colLocation]); l != "" {
		item.Location = &l
	}
	return item, nil
}

func parseCount(value, column string) (int, error) {
	if value == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("колонка %s: неверное значение %q", column, value)
	}
	return n, nil
}

// mergeImported переносит колонки, присутствующие в файле; false - изменений нет.
func mergeImported(dst, src *entities.InventoryItem, idx map[string]int) bool {
	changed := false
	if dst.Name != src.Name {
		dst.Name, changed = src.Name, true
	}
	if idx[colCategory] >= 0 && dst.Category != src.Category {
		dst.Category, changed = src.Category, true
	}
	if idx[colQuantity] >= 0 && dst.Quantity != src.Quantity {
		dst.Quantity, changed = src.Quantity, true
	}
	if idx[colMin] >= 0 && dst.MinQuantity != src.MinQuantity {
		dst.MinQuantity, changed = src.MinQuantity, true
	}
	if idx[colPrice] >= 0 && !dst.UnitPrice.Equal(src.UnitPrice) {
		dst.UnitPrice, changed = src.UnitPrice, true
	}
	if idx[colLocation] >= 0 && utils.SafeDeref(dst.Location) != utils.SafeDeref(src.Location) {
		dst.Location, changed = src.Location, true
	}
	return changed
}

func (s *InventoryService) Export(ctx context.Context, filter types.Filter, w io.Writer) error {
	_, scope, err := s.scope(ctx, authz.InventoryExport, repositories.InventoryScopeColumns)
	if err != nil {
		return err
	}
	filter.WithPagination = false
	items, _, err := s.repo.GetItems(ctx, filter, scope)
	if err != nil {
		return err
	}

	// шапка совпадает с колонками импорта, выгрузку можно загрузить обратно
	table := export.Table{
		Sheet:   "Склад",
		Headers: []string{colSKU, colName, colCategory, colQuantity, colMin, colPrice, colLocation, "Status"},
		Rows:    make([][]interface{}, 0, len(items)),
	}
	for _, it := range items {
		price, _ := it.UnitPrice.Float64()
		table.Rows = append(table.Rows, []interface{}{
			it.SKU, it.Name, it.Category, it.Quantity, it.MinQuantity, price, utils.SafeDeref(it.Location), it.Status,
		})
	}
	return export.WriteXLSX(w, table)
}
