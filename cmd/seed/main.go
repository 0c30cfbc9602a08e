// seed crea los datos mínimos para operar en local: un usuario admin y un
// puñado de activos de demostración (equipos, mobiliario y consumibles).
//
// Uso: go run ./cmd/seed
// Idempotente: si el admin o un serial ya existen, los salta.
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"

	"github.com/jhoicas/Activos-api/internal/domain/entity"
	"github.com/jhoicas/Activos-api/internal/infrastructure/postgres"
	"github.com/jhoicas/Activos-api/pkg/config"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fail("cargar configuración: %v", err)
	}

	ctx := context.Background()
	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		fail("conexión a PostgreSQL: %v", err)
	}
	defer pool.Close()

	now := time.Now()

	// Admin por defecto (password: admin1234, cambiarla en el primer login)
	userRepo := postgres.NewUserRepository(pool)
	if existing, _ := userRepo.GetByEmail("admin@local"); existing == nil {
		hash, err := bcrypt.GenerateFromPassword([]byte("admin1234"), bcrypt.DefaultCost)
		if err != nil {
			fail("hash de password: %v", err)
		}
		admin := &entity.User{
			ID:           uuid.New().String(),
			Email:        "admin@local",
			PasswordHash: string(hash),
			Name:         "Administrador",
			Role:         entity.RoleAdmin,
			Status:       "active",
			CreatedAt:    now,
			UpdatedAt:    now,
		}
		if err := userRepo.Create(admin); err != nil {
			fail("crear admin: %v", err)
		}
		fmt.Println("admin@local creado")
	} else {
		fmt.Println("admin@local ya existe, se salta")
	}

	itemRepo := postgres.NewItemRepository(pool)
	movRepo := postgres.NewMovementRepository(pool)

	type demo struct {
		kind, name, serial string
		qty                int64
	}
	demos := []demo{
		{kind: entity.ItemKindDevice, name: "Portátil Lenovo ThinkPad T14", serial: "LT-T14-0001"},
		{kind: entity.ItemKindDevice, name: "Monitor Dell 24\"", serial: "MN-DELL-0001"},
		{kind: entity.ItemKindFurniture, name: "Silla ergonómica", serial: "SI-ERG-0001"},
		{kind: entity.ItemKindConsumable, name: "Cable HDMI 2m", qty: 40},
		{kind: entity.ItemKindConsumable, name: "Tóner HP 85A", qty: 12},
	}

	for _, d := range demos {
		if d.serial != "" {
			if existing, _ := itemRepo.GetBySerial(d.serial); existing != nil {
				fmt.Printf("%s ya existe, se salta\n", d.serial)
				continue
			}
		}
		item := &entity.Item{
			ID:        uuid.New().String(),
			Kind:      d.kind,
			Name:      d.name,
			Serial:    d.serial,
			Active:    true,
			CreatedAt: now,
			UpdatedAt: now,
		}
		if d.serial != "" {
			item.Status = entity.ItemStatusAvailable
		} else {
			item.QuantityOnHand = decimal.NewFromInt(d.qty)
		}
		if err := itemRepo.Create(item); err != nil {
			fail("crear activo %q: %v", d.name, err)
		}
		mov := &entity.Movement{
			ID:            uuid.New().String(),
			ItemID:        item.ID,
			Kind:          entity.MovementKindIntake,
			StatusAfter:   item.Status,
			QuantityAfter: item.QuantityOnHand,
			Quantity:      item.QuantityOnHand,
			Reason:        "alta inicial (seed)",
			CreatedAt:     now,
		}
		if item.Serialized() {
			mov.Quantity = decimal.NewFromInt(1)
		}
		if err := movRepo.Create(mov); err != nil {
			fail("registrar intake de %q: %v", d.name, err)
		}
		fmt.Printf("%s creado\n", d.name)
	}

	fmt.Println("seed completado")
}

func fail(format string, args ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}
