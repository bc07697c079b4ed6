package migrations

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/pressly/goose/v3"
	"gorm.io/datatypes"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
	"gorm.io/gorm/schema"
)

func init() {
	goose.AddMigrationContext(upInit, downInit)
}

// Snapshot of the schema at migration time; deliberately decoupled from the
// live model structs so later model changes require new migrations.

type User struct {
	ID                  uuid.UUID      `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	Email               string         `gorm:"type:text;uniqueIndex;not null"`
	PasswordHash        string         `gorm:"type:text;not null"`
	FirstName           string         `gorm:"type:text"`
	LastName            string         `gorm:"type:text"`
	IsActive            bool           `gorm:"not null;default:true"`
	Preferences         datatypes.JSON `gorm:"type:jsonb"`
	RefreshTokenHash    *string        `gorm:"type:text"`
	ResetToken          *string        `gorm:"type:text;index"`
	ResetTokenExpiresAt *time.Time     `gorm:"type:timestamptz"`
	CreatedAt           time.Time      `gorm:"type:timestamptz;not null;default:now();autoCreateTime"`
	UpdatedAt           time.Time      `gorm:"type:timestamptz;not null;default:now();autoUpdateTime"`
}

type Todo struct {
	ID          uuid.UUID      `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	UserID      uuid.UUID      `gorm:"type:uuid;not null;index"`
	Title       string         `gorm:"type:text;not null"`
	Description string         `gorm:"type:text"`
	DueDate     *time.Time     `gorm:"type:timestamptz"`
	Priority    string         `gorm:"type:text;not null;default:'MEDIUM'"`
	Tags        datatypes.JSON `gorm:"type:jsonb"`
	IsCompleted bool           `gorm:"not null;default:false"`
	CreatedAt   time.Time      `gorm:"type:timestamptz;not null;default:now();autoCreateTime"`
	UpdatedAt   time.Time      `gorm:"type:timestamptz;not null;default:now();autoUpdateTime"`
	User        User           `gorm:"foreignKey:UserID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
}

func upInit(ctx context.Context, tx *sql.Tx) error {
	gormDB, err := gorm.Open(postgres.New(postgres.Config{Conn: tx, PreferSimpleProtocol: true}), &gorm.Config{
		NamingStrategy: schema.NamingStrategy{SingularTable: false},
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return err
	}

	// AutoMigrate emits the todos→users FK inside CREATE TABLE from the
	// constraint tag on Todo.User; adding it again would fail the migration.
	return gormDB.WithContext(ctx).AutoMigrate(
		&User{},
		&Todo{},
	)
}

func downInit(ctx context.Context, tx *sql.Tx) error {
	gormDB, err := gorm.Open(postgres.New(postgres.Config{Conn: tx, PreferSimpleProtocol: true}), &gorm.Config{
		NamingStrategy: schema.NamingStrategy{SingularTable: false},
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return err
	}

	return gormDB.WithContext(ctx).Migrator().DropTable(
		&Todo{},
		&User{},
	)
}
