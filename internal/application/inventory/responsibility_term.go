package inventory

import (
	"context"
	"time"

	"github.com/jhoicas/almoxtrack-api/internal/domain"
	"github.com/jhoicas/almoxtrack-api/internal/domain/entity"
	"github.com/jhoicas/almoxtrack-api/internal/domain/repository"
)

// ResponsibilityTerm datos del termo de responsabilidad de una salida.
type ResponsibilityTerm struct {
	TransactionID string
	Date          time.Time
	Requester     string
	Department    string
	Purpose       string
	Responsible   string
	Lines         []TermLine
}

// TermLine una línea del termo.
type TermLine struct {
	Name      string
	Code      string
	Patrimony string
	Quantity  int
	Unit      string
}

// deletedProductName se muestra cuando el producto de la línea ya no existe.
const deletedProductName = "(produto excluído)"

// ResponsibilityTermUseCase genera el PDF del termo de responsabilidad de una salida.
type ResponsibilityTermUseCase struct {
	productRepo repository.ProductRepository
	movRepo     repository.MovementRepository
	generator   TermPDFGenerator
}

// NewResponsibilityTermUseCase construye el caso de uso.
func NewResponsibilityTermUseCase(
	productRepo repository.ProductRepository,
	movRepo repository.MovementRepository,
	generator TermPDFGenerator,
) *ResponsibilityTermUseCase {
	return &ResponsibilityTermUseCase{productRepo: productRepo, movRepo: movRepo, generator: generator}
}

// BuildTerm reúne las líneas de salida de la transacción. ErrNotFound si no hay ninguna.
func (uc *ResponsibilityTermUseCase) BuildTerm(ctx context.Context, transactionID string) (*ResponsibilityTerm, error) {
	movs, err := uc.movRepo.ListByTransaction(ctx, transactionID)
	if err != nil {
		return nil, domain.AsStorage("list transaction", err)
	}
	var term *ResponsibilityTerm
	for _, m := range movs {
		if m.Type != entity.MovementTypeExit {
			continue
		}
		if term == nil {
			term = &ResponsibilityTerm{
				TransactionID: transactionID,
				Date:          m.Date,
				Requester:     m.Requester,
				Department:    m.Department,
				Purpose:       m.Purpose,
				Responsible:   m.Responsible,
			}
		}
		line := TermLine{Name: deletedProductName, Quantity: m.Quantity}
		p, err := uc.productRepo.GetByID(ctx, m.ProductID)
		if err != nil {
			return nil, domain.AsStorage("get product", err)
		}
		if p != nil {
			line.Name, line.Code, line.Patrimony, line.Unit = p.Name, p.Code, p.Patrimony, p.Unit
		}
		term.Lines = append(term.Lines, line)
	}
	if term == nil {
		return nil, domain.NotFoundf("salida %s", transactionID)
	}
	return term, nil
}

// GeneratePDF construye el termo y lo renderiza.
func (uc *ResponsibilityTermUseCase) GeneratePDF(ctx context.Context, transactionID string) ([]byte, error) {
	term, err := uc.BuildTerm(ctx, transactionID)
	if err != nil {
		return nil, err
	}
	return uc.generator.GenerateTerm(ctx, term)
}
