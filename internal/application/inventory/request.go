package inventory

import (
	"context"
	"time"

	"github.com/jhoicas/almoxtrack-api/internal/application/dto"
	"github.com/jhoicas/almoxtrack-api/internal/domain/entity"
)

// EntryFromRequest adapta el body HTTP al caso de uso FinalizeEntry. responsible es el email del usuario autenticado.
func (uc *LedgerUseCase) EntryFromRequest(ctx context.Context, responsible string, in dto.EntryRequest) (*dto.BatchResponse, error) {
	batch, err := uc.FinalizeEntry(ctx, EntryInput{
		Items:       toLineItems(in.Items),
		Date:        dateOrZero(in.Date),
		Supplier:    in.Supplier,
		Invoice:     in.Invoice,
		Responsible: responsible,
	})
	if err != nil {
		return nil, err
	}
	return ToBatchResponse(batch), nil
}

// ExitFromRequest adapta el body HTTP al caso de uso FinalizeExit.
func (uc *LedgerUseCase) ExitFromRequest(ctx context.Context, responsible string, in dto.ExitRequest) (*dto.BatchResponse, error) {
	batch, err := uc.FinalizeExit(ctx, ExitInput{
		Items:       toLineItems(in.Items),
		Date:        dateOrZero(in.Date),
		Requester:   in.Requester,
		Department:  in.Department,
		Purpose:     in.Purpose,
		Responsible: responsible,
	})
	if err != nil {
		return nil, err
	}
	return ToBatchResponse(batch), nil
}

// ReturnFromRequest adapta el body HTTP al caso de uso FinalizeReturn.
func (uc *LedgerUseCase) ReturnFromRequest(ctx context.Context, responsible string, in dto.ReturnRequest) (*dto.BatchResponse, error) {
	batch, err := uc.FinalizeReturn(ctx, ReturnInput{
		Items:       toLineItems(in.Items),
		Date:        dateOrZero(in.Date),
		Department:  in.Department,
		Reason:      in.Reason,
		Responsible: responsible,
	})
	if err != nil {
		return nil, err
	}
	return ToBatchResponse(batch), nil
}

func toLineItems(in []dto.LineItemRequest) []LineItem {
	out := make([]LineItem, 0, len(in))
	for _, it := range in {
		out = append(out, LineItem{ProductID: it.ProductID, Quantity: it.Quantity, UnitCost: it.UnitCost})
	}
	return out
}

func dateOrZero(t *time.Time) time.Time {
	if t == nil {
		return time.Time{}
	}
	return *t
}

// ToBatchResponse convierte un lote confirmado a su DTO.
func ToBatchResponse(b *Batch) *dto.BatchResponse {
	if b == nil {
		return nil
	}
	return &dto.BatchResponse{
		TransactionID: b.TransactionID,
		Type:          b.Type,
		Movements:     ToMovementResponses(b.Movements),
	}
}

// ToMovementResponses convierte movimientos del ledger a DTOs.
func ToMovementResponses(list []*entity.Movement) []dto.MovementResponse {
	out := make([]dto.MovementResponse, 0, len(list))
	for _, m := range list {
		out = append(out, dto.MovementResponse{
			ID:            m.ID,
			TransactionID: m.TransactionID,
			ProductID:     m.ProductID,
			Date:          m.Date,
			Type:          m.Type,
			Quantity:      m.Quantity,
			UnitCost:      m.UnitCost,
			Responsible:   m.Responsible,
			Supplier:      m.Supplier,
			Invoice:       m.Invoice,
			Department:    m.Department,
			Requester:     m.Requester,
			Purpose:       m.Purpose,
			Reason:        m.Reason,
		})
	}
	return out
}
