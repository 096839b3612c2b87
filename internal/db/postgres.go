package db

import (
  "fmt"
  "gorm.io/driver/postgres"
  "gorm.io/gorm"
  "github.com/steuertel/collector/internal/logger"
  "github.com/steuertel/collector/internal/types"
  "github.com/steuertel/collector/internal/utils"
)

type PostgresService struct {
  db  *gorm.DB
  log *logger.Logger
}

func NewPostgresService(log *logger.Logger) (*PostgresService, error) {
  serviceLog := log.With("service", "PostgresService")

  log.Info("Loading environment variables...")
  postgresHost := utils.GetEnv("POSTGRES_HOST", "localhost", log)
  postgresPort := utils.GetEnv("POSTGRES_PORT", "5432", log)
  postgresUser := utils.GetEnv("POSTGRES_USER", "postgres", log)
  postgresPassword := utils.GetEnv("POSTGRES_PASSWORD", "", log)
  postgresName := utils.GetEnv("POSTGRES_NAME", "collector", log)

  dsn := fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable", postgresUser, postgresPassword, postgresHost, postgresPort, postgresName)

  log.Info("Connecting to Postgres...")
  db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
    DisableForeignKeyConstraintWhenMigrating: true,
  })
  if err != nil {
    log.Error("Failed to connect to Postgres", "error", err)
    return nil, fmt.Errorf("failed to connect to Postgres: %w", err)
  }

  return &PostgresService{db: db, log: serviceLog}, nil
}

func (s *PostgresService) DB() *gorm.DB {
  return s.db
}

func (s *PostgresService) AutoMigrateAll() error {
  s.log.Info("Auto migrating postgres tables...")
  err := s.db.AutoMigrate(
    &types.Chamber{},
    &types.LegalForm{},
    &types.Firm{},
    &types.Practitioner{},
    &types.AIConfig{},
    &types.AICallLog{},
    &types.JobRun{},
  )
  if err != nil {
    s.log.Error("Auto migration failed for postgres tables", "error", err)
    return err
  }

  s.log.Info("Configuring foreign key relationships for postgres tables...")
  constraints := []struct {
    name string
    ddl  string
  }{
    {
      name: "fk_practitioner_firm_id",
      ddl: `
        ALTER TABLE "practitioner"
        ADD CONSTRAINT "fk_practitioner_firm_id"
        FOREIGN KEY ("firm_id")
        REFERENCES "firm"("id")
        ON DELETE CASCADE
      `,
    },
    {
      name: "fk_firm_legal_form_id",
      ddl: `
        ALTER TABLE "firm"
        ADD CONSTRAINT "fk_firm_legal_form_id"
        FOREIGN KEY ("legal_form_id")
        REFERENCES "legal_form"("id")
        ON DELETE SET NULL
      `,
    },
    {
      name: "fk_firm_chamber_id",
      ddl: `
        ALTER TABLE "firm"
        ADD CONSTRAINT "fk_firm_chamber_id"
        FOREIGN KEY ("chamber_id")
        REFERENCES "chamber"("id")
        ON DELETE SET NULL
      `,
    },
  }
  for _, c := range constraints {
    var exists bool
    if err := s.db.Raw(
      `SELECT EXISTS (SELECT 1 FROM pg_constraint WHERE conname = ?)`, c.name,
    ).Scan(&exists).Error; err != nil {
      s.log.Error("Failed to check constraint", "constraint", c.name, "error", err)
      return err
    }
    if exists {
      continue
    }
    if err := s.db.Exec(c.ddl).Error; err != nil {
      s.log.Error("Failed to add constraint", "constraint", c.name, "error", err)
      return err
    }
  }

  s.log.Info("Postgres migration complete")
  return nil
}
