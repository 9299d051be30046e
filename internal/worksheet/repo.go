package worksheet

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/makosai/backend/internal/models"
	"github.com/uptrace/bun"
)

var ErrWorksheetNotFound = errors.New("worksheet not found")

type Repository interface {
	InitializeDatabase(ctx context.Context) error
	Create(ctx context.Context, ws *models.Worksheet) error
	GetByID(ctx context.Context, userID, worksheetID string) (*models.Worksheet, error)
	ListByUser(ctx context.Context, userID string) ([]*models.Worksheet, error)
	Update(ctx context.Context, ws *models.Worksheet) error
	Delete(ctx context.Context, userID, worksheetID string) error
	IncrementDownloads(ctx context.Context, userID, worksheetID string) error
}

type WorksheetRepository struct {
	db *bun.DB
}

func NewWorksheetRepository(db *bun.DB) *WorksheetRepository {
	return &WorksheetRepository{db: db}
}

func (r *WorksheetRepository) InitializeDatabase(ctx context.Context) error {
	_, err := r.db.NewCreateTable().
		Model((*models.WorksheetDB)(nil)).
		IfNotExists().
		Exec(ctx)
	if err != nil {
		return err
	}

	_, err = r.db.NewCreateIndex().
		Model((*models.WorksheetDB)(nil)).
		Index("idx_worksheets_user_created").
		Column("user_id", "created_at").
		IfNotExists().
		Exec(ctx)
	return err
}

func (r *WorksheetRepository) Create(ctx context.Context, ws *models.Worksheet) error {
	row := models.WorksheetFromDomain(ws)
	row.CreatedAt = time.Now()
	row.UpdatedAt = time.Now()
	_, err := r.db.NewInsert().Model(row).Exec(ctx)
	return err
}

func (r *WorksheetRepository) GetByID(ctx context.Context, userID, worksheetID string) (*models.Worksheet, error) {
	row := new(models.WorksheetDB)
	err := r.db.NewSelect().
		Model(row).
		Where("id = ? AND user_id = ?", worksheetID, userID).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrWorksheetNotFound
		}
		return nil, err
	}
	return row.ToWorksheet(), nil
}

func (r *WorksheetRepository) ListByUser(ctx context.Context, userID string) ([]*models.Worksheet, error) {
	var rows []*models.WorksheetDB
	err := r.db.NewSelect().
		Model(&rows).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Scan(ctx)
	if err != nil {
		return nil, err
	}

	worksheets := make([]*models.Worksheet, 0, len(rows))
	for _, row := range rows {
		worksheets = append(worksheets, row.ToWorksheet())
	}
	return worksheets, nil
}

func (r *WorksheetRepository) Update(ctx context.Context, ws *models.Worksheet) error {
	row := models.WorksheetFromDomain(ws)
	row.UpdatedAt = time.Now()
	res, err := r.db.NewUpdate().
		Model(row).
		WherePK().
		Where("user_id = ?", ws.UserID).
		Exec(ctx)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrWorksheetNotFound
	}
	return nil
}

func (r *WorksheetRepository) Delete(ctx context.Context, userID, worksheetID string) error {
	res, err := r.db.NewDelete().
		Model((*models.WorksheetDB)(nil)).
		Where("id = ? AND user_id = ?", worksheetID, userID).
		Exec(ctx)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrWorksheetNotFound
	}
	return nil
}

func (r *WorksheetRepository) IncrementDownloads(ctx context.Context, userID, worksheetID string) error {
	res, err := r.db.NewUpdate().
		Model((*models.WorksheetDB)(nil)).
		Set("downloads = downloads + 1").
		Set("updated_at = ?", time.Now()).
		Where("id = ? AND user_id = ?", worksheetID, userID).
		Exec(ctx)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrWorksheetNotFound
	}
	return nil
}
