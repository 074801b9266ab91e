// seed carga el usuario administrador y el catálogo inicial de productos.
//
// Uso: go run ./cmd/seed [ruta/catalogo.csv]
// Sin archivo se cargan productos de ejemplo. El CSV usa ';' como separador,
// acepta UTF-8 o ISO-8859-1 (exportación de planillas) y tiene las columnas:
// nome;codigo;tipo;unidade;categoria;quantidade;patrimonio
package main

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/jhoicas/almoxtrack-api/internal/application/auth"
	"github.com/jhoicas/almoxtrack-api/internal/application/dto"
	"github.com/jhoicas/almoxtrack-api/internal/application/inventory"
	"github.com/jhoicas/almoxtrack-api/internal/application/usecase"
	"github.com/jhoicas/almoxtrack-api/internal/domain"
	"github.com/jhoicas/almoxtrack-api/internal/infrastructure/postgres"
	"github.com/jhoicas/almoxtrack-api/pkg/config"
	"github.com/jhoicas/almoxtrack-api/pkg/logger"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"
)

var sampleProducts = []dto.CreateProductRequest{
	{Name: "Caneta Azul", Code: "CAN-001", Type: "consumable", Unit: "und", Category: "Escritório", InitialQuantity: 100},
	{Name: "Caneta Preta", Code: "CAN-002", Type: "consumable", Unit: "und", Category: "Escritório", InitialQuantity: 80},
	{Name: "Caneta Vermelha", Code: "CAN-003", Type: "consumable", Unit: "und", Category: "Escritório", InitialQuantity: 40},
	{Name: "Papel A4", Code: "PAP-A4", Type: "consumable", Unit: "Resma", Category: "Papelaria", InitialQuantity: 25},
	{Name: "Quadro Branco", Code: "QDR-001", Type: "permanent", Patrimony: "PAT-0001", Unit: "und", Category: "Mobiliário", InitialQuantity: 1},
}

func main() {
	ctx := context.Background()
	cfg, err := config.LoadWithSecrets(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Cargar configuración: %v\n", err)
		os.Exit(1)
	}
	log := logger.New(logger.Config{Env: cfg.App.Env, Level: cfg.App.LogLevel})

	products := sampleProducts
	if len(os.Args) > 1 {
		products, err = readCatalog(os.Args[1])
		if err != nil {
			fmt.Fprintf(os.Stderr, "Leer catálogo: %v\n", err)
			os.Exit(1)
		}
	}

	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a PostgreSQL")
	}
	defer pool.Close()
	if err := postgres.EnsureSchema(ctx, pool); err != nil {
		log.Fatal().Err(err).Msg("migraciones")
	}

	adminEmail := cfg.Seed.AdminEmail
	authUC := auth.NewAuthUseCase(postgres.NewUserRepository(pool), auth.JWTConfig{Secret: cfg.JWT.Secret})
	adminCreated, err := authUC.EnsureAdmin(ctx, adminEmail, cfg.Seed.AdminPassword)
	switch {
	case err != nil:
		log.Fatal().Err(err).Msg("crear administrador")
	case adminCreated:
		log.Info().Str("email", adminEmail).Msg("administrador creado")
	default:
		log.Info().Str("email", adminEmail).Msg("administrador ya existe")
	}

	txRunner := postgres.NewTxRunner(pool)
	ledger := inventory.NewLedgerUseCase(txRunner, nil, log.Component("ledger"))
	productUC := usecase.NewProductUseCase(postgres.NewProductRepository(pool), ledger, txRunner, nil,
		usecase.ProductOptions{UniqueCode: true})

	created, skipped := 0, 0
	for _, p := range products {
		_, err := productUC.Create(ctx, adminEmail, p)
		switch {
		case errors.Is(err, domain.ErrDuplicate):
			skipped++
		case err != nil:
			log.Fatal().Err(err).Str("code", p.Code).Msg("crear producto")
		default:
			created++
		}
	}
	log.Info().Int("created", created).Int("skipped", skipped).Msg("catálogo cargado")
}

// readCatalog lee el CSV del catálogo. Si el contenido no es UTF-8 válido se decodifica como ISO-8859-1.
func readCatalog(path string) ([]dto.CreateProductRequest, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var rd io.Reader = bytes.NewReader(raw)
	if !utf8.Valid(raw) {
		rd = transform.NewReader(rd, charmap.ISO8859_1.NewDecoder())
	}
	r := csv.NewReader(rd)
	r.Comma = ';'
	r.FieldsPerRecord = -1
	records, err := r.ReadAll()
	if err != nil {
		return nil, err
	}

	var out []dto.CreateProductRequest
	for i, rec := range records {
		if i == 0 && strings.EqualFold(strings.TrimSpace(rec[0]), "nome") {
			continue // encabezado
		}
		if len(rec) < 4 {
			return nil, fmt.Errorf("línea %d: se esperaban al menos 4 columnas", i+1)
		}
		p := dto.CreateProductRequest{
			Name: strings.TrimSpace(rec[0]),
			Code: strings.TrimSpace(rec[1]),
			Type: strings.TrimSpace(rec[2]),
			Unit: strings.TrimSpace(rec[3]),
		}
		if len(rec) > 4 {
			p.Category = strings.TrimSpace(rec[4])
		}
		if len(rec) > 5 && strings.TrimSpace(rec[5]) != "" {
			qty, err := strconv.Atoi(strings.TrimSpace(rec[5]))
			if err != nil {
				return nil, fmt.Errorf("línea %d: quantidade inválida %q", i+1, rec[5])
			}
			p.InitialQuantity = qty
		}
		if len(rec) > 6 {
			p.Patrimony = strings.TrimSpace(rec[6])
		}
		out = append(out, p)
	}
	return out, nil
}
