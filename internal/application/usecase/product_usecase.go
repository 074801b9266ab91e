package usecase

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jhoicas/almoxtrack-api/internal/application/dto"
	"github.com/jhoicas/almoxtrack-api/internal/application/inventory"
	"github.com/jhoicas/almoxtrack-api/internal/application/ports"
	"github.com/jhoicas/almoxtrack-api/internal/domain"
	"github.com/jhoicas/almoxtrack-api/internal/domain/entity"
	domaininv "github.com/jhoicas/almoxtrack-api/internal/domain/inventory"
	"github.com/jhoicas/almoxtrack-api/internal/domain/repository"
	"github.com/jhoicas/almoxtrack-api/pkg/config"
	"github.com/jhoicas/almoxtrack-api/pkg/textnorm"
)

// ProductOptions reglas configurables del catálogo.
type ProductOptions struct {
	ListLimit    int    // tope del listado sin término de búsqueda
	DeletePolicy string // config.DeletePolicyRetain | config.DeletePolicyCascade
	UniqueCode   bool
}

// ProductOptionsFrom toma las opciones de la configuración de la app.
func ProductOptionsFrom(c config.InventoryConfig) ProductOptions {
	return ProductOptions{ListLimit: c.ProductListLimit, DeletePolicy: c.DeletePolicy, UniqueCode: c.UniqueProductCode}
}

// ProductUseCase casos de uso del catálogo. Quantity y AverageCost solo cambian vía ledger.
type ProductUseCase struct {
	repo     repository.ProductRepository
	ledger   *inventory.LedgerUseCase
	txRunner inventory.TxRunner
	uploader ports.ImageUploader
	opts     ProductOptions
}

// NewProductUseCase construye el caso de uso. uploader puede ser nil si no hay carga de imágenes.
func NewProductUseCase(
	repo repository.ProductRepository,
	ledger *inventory.LedgerUseCase,
	txRunner inventory.TxRunner,
	uploader ports.ImageUploader,
	opts ProductOptions,
) *ProductUseCase {
	if opts.ListLimit <= 0 {
		opts.ListLimit = 50
	}
	if opts.DeletePolicy == "" {
		opts.DeletePolicy = config.DeletePolicyRetain
	}
	return &ProductUseCase{repo: repo, ledger: ledger, txRunner: txRunner, uploader: uploader, opts: opts}
}

// Create crea un producto. Con InitialQuantity > 0 registra la entrada sintética en la misma transacción.
func (uc *ProductUseCase) Create(ctx context.Context, responsible string, in dto.CreateProductRequest) (*dto.ProductResponse, error) {
	name := strings.TrimSpace(in.Name)
	code := strings.TrimSpace(in.Code)
	if name == "" || code == "" || strings.TrimSpace(in.Unit) == "" {
		return nil, domain.InvalidInputf("nombre, código y unidad son obligatorios")
	}
	if !entity.IsValidMaterialType(in.Type) {
		return nil, domain.InvalidInputf("tipo de material desconocido %q", in.Type)
	}
	patrimony, err := patrimonyFor(in.Type, in.Patrimony)
	if err != nil {
		return nil, err
	}
	if in.InitialQuantity < 0 {
		return nil, domain.InvalidInputf("cantidad inicial negativa")
	}
	if in.InitialQuantity > domaininv.MaxQuantity {
		return nil, domain.InvalidInputf("cantidad inicial supera el máximo de %d", domaininv.MaxQuantity)
	}

	now := time.Now()
	product := &entity.Product{
		ID:            uuid.New().String(),
		Name:          name,
		NameLowercase: textnorm.Lower(name),
		Code:          code,
		Patrimony:     patrimony,
		Type:          in.Type,
		Unit:          strings.TrimSpace(in.Unit),
		Category:      strings.TrimSpace(in.Category),
		Image:         in.Image,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	// el código se verifica dentro de la transacción de alta
	guard := func(ctx context.Context, productRepo repository.ProductRepository) error {
		return uc.checkCodeIn(ctx, productRepo, code, "")
	}
	if _, err := uc.ledger.OpenProduct(ctx, product, in.InitialQuantity, in.UnitCost, responsible, guard); err != nil {
		return nil, err
	}
	return ToProductResponse(product), nil
}

// GetByID obtiene un producto por ID. ErrNotFound si no existe.
func (uc *ProductUseCase) GetByID(ctx context.Context, id string) (*dto.ProductResponse, error) {
	product, err := uc.get(ctx, id)
	if err != nil {
		return nil, err
	}
	return ToProductResponse(product), nil
}

// Update aplica un merge-patch de metadatos. No permite modificar Quantity ni Type.
func (uc *ProductUseCase) Update(ctx context.Context, id string, in dto.UpdateProductRequest) (*dto.ProductResponse, error) {
	product, err := uc.get(ctx, id)
	if err != nil {
		return nil, err
	}
	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		if name == "" {
			return nil, domain.InvalidInputf("nombre vacío")
		}
		product.Name = name
		product.NameLowercase = textnorm.Lower(name)
	}
	if in.Code != nil {
		code := strings.TrimSpace(*in.Code)
		if code == "" {
			return nil, domain.InvalidInputf("código vacío")
		}
		if code != product.Code {
			if err := uc.checkCode(ctx, code, product.ID); err != nil {
				return nil, err
			}
		}
		product.Code = code
	}
	if in.Patrimony != nil {
		patrimony, err := patrimonyFor(product.Type, *in.Patrimony)
		if err != nil {
			return nil, err
		}
		product.Patrimony = patrimony
	}
	if in.Unit != nil {
		unit := strings.TrimSpace(*in.Unit)
		if unit == "" {
			return nil, domain.InvalidInputf("unidad vacía")
		}
		product.Unit = unit
	}
	if in.Category != nil {
		product.Category = strings.TrimSpace(*in.Category)
	}
	if in.Image != nil {
		product.Image = *in.Image
	}
	product.UpdatedAt = time.Now()
	if err := uc.repo.Update(ctx, product); err != nil {
		return nil, domain.AsStorage("update product", err)
	}
	return ToProductResponse(product), nil
}

// Delete elimina el producto. Con la política cascade borra también su historial en la misma transacción.
func (uc *ProductUseCase) Delete(ctx context.Context, id string) error {
	if uc.opts.DeletePolicy != config.DeletePolicyCascade {
		if _, err := uc.get(ctx, id); err != nil {
			return err
		}
		return domain.AsStorage("delete product", uc.repo.Delete(ctx, id))
	}
	err := uc.txRunner.Run(ctx, func(productRepo repository.ProductRepository, movRepo repository.MovementRepository) error {
		p, err := productRepo.GetForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if p == nil {
			return domain.NotFoundf("producto %s", id)
		}
		if _, err := movRepo.DeleteByProduct(ctx, id); err != nil {
			return err
		}
		return productRepo.Delete(ctx, id)
	})
	return domain.AsStorage("delete product", err)
}

// List busca por prefijo del nombre (sin distinguir mayúsculas) y, si no hay coincidencias,
// por código exacto. Sin término se aplica el tope ListLimit; con término no hay tope.
func (uc *ProductUseCase) List(ctx context.Context, q dto.ProductQuery) (*dto.ProductListResponse, error) {
	if q.Type != "" && !entity.IsValidMaterialType(q.Type) {
		return nil, domain.InvalidInputf("tipo de material desconocido %q", q.Type)
	}
	term := textnorm.Lower(q.Search)
	var (
		list []*entity.Product
		err  error
	)
	if term == "" {
		list, err = uc.repo.List(ctx, repository.ProductFilter{Type: q.Type, Limit: uc.opts.ListLimit})
	} else {
		list, err = uc.repo.List(ctx, repository.ProductFilter{NamePrefix: term, Type: q.Type})
		if err == nil && len(list) == 0 {
			list, err = uc.repo.List(ctx, repository.ProductFilter{Code: strings.TrimSpace(q.Search), Type: q.Type})
		}
	}
	if err != nil {
		return nil, domain.AsStorage("list products", err)
	}
	items := make([]dto.ProductResponse, 0, len(list))
	for _, p := range list {
		items = append(items, *ToProductResponse(p))
	}
	return &dto.ProductListResponse{Items: items, Total: len(items)}, nil
}

// UploadImage sube la imagen y guarda la URL devuelta en el producto.
func (uc *ProductUseCase) UploadImage(ctx context.Context, id string, data []byte, filename, contentType string) (*dto.ProductResponse, error) {
	if uc.uploader == nil {
		return nil, domain.InvalidInputf("carga de imágenes no configurada")
	}
	product, err := uc.get(ctx, id)
	if err != nil {
		return nil, err
	}
	url, err := uc.uploader.Upload(ctx, data, filename, contentType)
	if err != nil {
		return nil, domain.AsStorage("upload image", err)
	}
	product.Image = url
	product.UpdatedAt = time.Now()
	if err := uc.repo.Update(ctx, product); err != nil {
		return nil, domain.AsStorage("update product", err)
	}
	return ToProductResponse(product), nil
}

func (uc *ProductUseCase) get(ctx context.Context, id string) (*entity.Product, error) {
	product, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, domain.AsStorage("get product", err)
	}
	if product == nil {
		return nil, domain.NotFoundf("producto %s", id)
	}
	return product, nil
}

// checkCode rechaza con ErrDuplicate un código usado por otro producto (si la regla está activa).
func (uc *ProductUseCase) checkCode(ctx context.Context, code, selfID string) error {
	return uc.checkCodeIn(ctx, uc.repo, code, selfID)
}

func (uc *ProductUseCase) checkCodeIn(ctx context.Context, repo repository.ProductRepository, code, selfID string) error {
	if !uc.opts.UniqueCode {
		return nil
	}
	list, err := repo.List(ctx, repository.ProductFilter{Code: code, Limit: 2})
	if err != nil {
		return domain.AsStorage("check product code", err)
	}
	for _, p := range list {
		if p.ID != selfID {
			return domain.ErrDuplicate
		}
	}
	return nil
}

// patrimonyFor: consumo siempre "N/A"; permanente exige etiqueta.
func patrimonyFor(materialType, patrimony string) (string, error) {
	if materialType == entity.MaterialConsumable {
		return entity.PatrimonyNotApplicable, nil
	}
	patrimony = strings.TrimSpace(patrimony)
	if patrimony == "" || patrimony == entity.PatrimonyNotApplicable {
		return "", domain.InvalidInputf("material permanente requiere número de patrimonio")
	}
	return patrimony, nil
}

// ToProductResponse convierte la entidad a DTO.
func ToProductResponse(p *entity.Product) *dto.ProductResponse {
	if p == nil {
		return nil
	}
	return &dto.ProductResponse{
		ID:          p.ID,
		Name:        p.Name,
		Code:        p.Code,
		Patrimony:   p.Patrimony,
		Type:        p.Type,
		Quantity:    p.Quantity,
		Unit:        p.Unit,
		Category:    p.Category,
		Image:       p.Image,
		AverageCost: p.AverageCost,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
}
