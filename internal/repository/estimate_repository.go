package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/daengle/petcare-backend/internal/models"
	"github.com/daengle/petcare-backend/internal/repository/common"
)

// EstimateRepository отвечает за работу с заявками и предложениями исполнителей.
type EstimateRepository struct {
	db *sqlx.DB
}

// Ошибки уровня репозитория.
var (
	ErrEstimateNotFound = errors.New("estimate not found")
	ErrQuoteNotFound    = errors.New("quote not found")
	ErrEstimateStale    = errors.New("estimate already in terminal status")
)

// NewEstimateRepository создаёт новый экземпляр.
func NewEstimateRepository(db *sqlx.DB) *EstimateRepository {
	return &EstimateRepository{db: db}
}

const estimateColumns = `
	id, parent_id, user_id, provider_id, pet_id, service_type, proposal, status,
	address, reserved_date, symptoms, requirements, diagnosis, cause, treatment,
	created_at, updated_at
`

// GetByID возвращает заявку или предложение по идентификатору.
func (r *EstimateRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Estimate, error) {
	var est models.Estimate
	query := `SELECT ` + estimateColumns + ` FROM estimates WHERE id = $1`
	if err := r.db.GetContext(ctx, &est, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrEstimateNotFound
		}
		return nil, fmt.Errorf("estimate repository: get by id %w", err)
	}
	return &est, nil
}

// Create сохраняет корневую заявку владельца питомца.
func (r *EstimateRepository) Create(ctx context.Context, est *models.Estimate) error {
	query := `
		INSERT INTO estimates (user_id, provider_id, pet_id, service_type, proposal, status, address, reserved_date, symptoms, requirements)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id, created_at, updated_at
	`

	if err := r.db.QueryRowxContext(
		ctx,
		query,
		est.UserID,
		est.ProviderID,
		est.PetID,
		est.ServiceType,
		est.Proposal,
		est.Status,
		est.Address,
		est.ReservedDate,
		est.Symptoms,
		est.Requirements,
	).Scan(&est.ID, &est.CreatedAt, &est.UpdatedAt); err != nil {
		return fmt.Errorf("estimate repository: insert estimate %w", err)
	}

	return nil
}

// CreateQuote сохраняет предложение исполнителя; первое предложение переводит
// корневую заявку из new в waiting в той же транзакции.
func (r *EstimateRepository) CreateQuote(ctx context.Context, quote *models.Estimate) error {
	return common.WithTransaction(ctx, r.db, func(tx *sqlx.Tx) error {
		var rootStatus string
		if err := tx.QueryRowxContext(
			ctx,
			`SELECT status FROM estimates WHERE id = $1 AND parent_id IS NULL FOR UPDATE`,
			quote.ParentID,
		).Scan(&rootStatus); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return ErrEstimateNotFound
			}
			return fmt.Errorf("estimate repository: lock root %w", err)
		}

		if models.IsTerminalEstimateStatus(rootStatus) {
			return ErrEstimateStale
		}

		query := `
			INSERT INTO estimates (parent_id, user_id, provider_id, pet_id, service_type, proposal, status, address, reserved_date, diagnosis, cause, treatment)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
			RETURNING id, created_at, updated_at
		`

		if err := tx.QueryRowxContext(
			ctx,
			query,
			quote.ParentID,
			quote.UserID,
			quote.ProviderID,
			quote.PetID,
			quote.ServiceType,
			quote.Proposal,
			quote.Status,
			quote.Address,
			quote.ReservedDate,
			quote.Diagnosis,
			quote.Cause,
			quote.Treatment,
		).Scan(&quote.ID, &quote.CreatedAt, &quote.UpdatedAt); err != nil {
			return fmt.Errorf("estimate repository: insert quote %w", err)
		}

		if next, ok := rootStatusOnQuoteCreated(rootStatus); ok {
			if _, err := tx.ExecContext(
				ctx,
				`UPDATE estimates SET status = $1, updated_at = NOW() WHERE id = $2`,
				next,
				quote.ParentID,
			); err != nil {
				return fmt.Errorf("estimate repository: promote root to waiting %w", err)
			}
		}

		return nil
	})
}

// AcceptQuoteCascade атомарно принимает предложение: корневая заявка и
// выбранное предложение получают статус accepted, все остальные живые
// предложения — rejected. Первый успешный вызов выигрывает: условный UPDATE
// корня не тронет уже терминальную запись, и транзакция откатится.
func (r *EstimateRepository) AcceptQuoteCascade(ctx context.Context, quoteID uuid.UUID) (*models.Estimate, error) {
	var accepted models.Estimate

	err := common.WithTransaction(ctx, r.db, func(tx *sqlx.Tx) error {
		var parentID uuid.UUID
		if err := tx.QueryRowxContext(
			ctx,
			`SELECT parent_id FROM estimates WHERE id = $1 AND parent_id IS NOT NULL`,
			quoteID,
		).Scan(&parentID); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return ErrQuoteNotFound
			}
			return fmt.Errorf("estimate repository: resolve quote parent %w", err)
		}

		// Блокировки берутся сверху вниз: сначала корень, потом предложение.
		var rootStatus string
		if err := tx.QueryRowxContext(
			ctx,
			`SELECT status FROM estimates WHERE id = $1 FOR UPDATE`,
			parentID,
		).Scan(&rootStatus); err != nil {
			return fmt.Errorf("estimate repository: lock root %w", err)
		}

		var quote models.Estimate
		query := `SELECT ` + estimateColumns + ` FROM estimates WHERE id = $1 FOR UPDATE`
		if err := tx.QueryRowxContext(ctx, query, quoteID).StructScan(&quote); err != nil {
			return fmt.Errorf("estimate repository: lock quote %w", err)
		}

		outcome, err := acceptCascade(rootStatus, quote.Status)
		if err != nil {
			return err
		}

		// Корень принимает только один победивший вызов.
		if err := common.ExecExpectingOne(
			ctx,
			tx,
			`UPDATE estimates SET status = $1, updated_at = NOW() WHERE id = $2 AND status IN ($3, $4)`,
			outcome.Root,
			quote.ParentID,
			models.EstimateStatusNew,
			models.EstimateStatusWaiting,
		); err != nil {
			if errors.Is(err, common.ErrStaleState) {
				return ErrEstimateStale
			}
			return fmt.Errorf("estimate repository: accept root %w", err)
		}

		if _, err := tx.ExecContext(
			ctx,
			`UPDATE estimates
			 SET status = $1, updated_at = NOW()
			 WHERE parent_id = $2 AND id <> $3 AND status NOT IN ($4, $5, $6)`,
			outcome.Sibling,
			quote.ParentID,
			quote.ID,
			models.EstimateStatusAccepted,
			models.EstimateStatusRejected,
			models.EstimateStatusCancelled,
		); err != nil {
			return fmt.Errorf("estimate repository: reject siblings %w", err)
		}

		acceptQuery := `
			UPDATE estimates SET status = $1, updated_at = NOW()
			WHERE id = $2
			RETURNING ` + estimateColumns
		if err := tx.QueryRowxContext(ctx, acceptQuery, outcome.Accepted, quote.ID).StructScan(&accepted); err != nil {
			return fmt.Errorf("estimate repository: accept quote %w", err)
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	return &accepted, nil
}

// RejectQuote переводит предложение в rejected, если оно ещё живо.
func (r *EstimateRepository) RejectQuote(ctx context.Context, quoteID uuid.UUID) (*models.Estimate, error) {
	return r.finishQuote(ctx, quoteID, models.EstimateStatusRejected)
}

// CancelQuote отзывает предложение исполнителя. Вместе с последним живым
// предложением отменяется и корневая заявка.
func (r *EstimateRepository) CancelQuote(ctx context.Context, quoteID uuid.UUID) (*models.Estimate, error) {
	var cancelled models.Estimate

	err := common.WithTransaction(ctx, r.db, func(tx *sqlx.Tx) error {
		var parentID uuid.UUID
		if err := tx.QueryRowxContext(
			ctx,
			`SELECT parent_id FROM estimates WHERE id = $1 AND parent_id IS NOT NULL`,
			quoteID,
		).Scan(&parentID); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return ErrQuoteNotFound
			}
			return fmt.Errorf("estimate repository: resolve quote parent %w", err)
		}

		// Блокировки берутся сверху вниз: сначала корень, потом предложение.
		var rootStatus string
		if err := tx.QueryRowxContext(
			ctx,
			`SELECT status FROM estimates WHERE id = $1 FOR UPDATE`,
			parentID,
		).Scan(&rootStatus); err != nil {
			return fmt.Errorf("estimate repository: lock root %w", err)
		}

		var quote models.Estimate
		query := `SELECT ` + estimateColumns + ` FROM estimates WHERE id = $1 FOR UPDATE`
		if err := tx.QueryRowxContext(ctx, query, quoteID).StructScan(&quote); err != nil {
			return fmt.Errorf("estimate repository: lock quote %w", err)
		}

		if quote.IsTerminal() {
			return ErrEstimateStale
		}

		cancelQuery := `
			UPDATE estimates SET status = $1, updated_at = NOW()
			WHERE id = $2
			RETURNING ` + estimateColumns
		if err := tx.QueryRowxContext(ctx, cancelQuery, models.EstimateStatusCancelled, quote.ID).StructScan(&cancelled); err != nil {
			return fmt.Errorf("estimate repository: cancel quote %w", err)
		}

		var alive int
		if err := tx.QueryRowxContext(
			ctx,
			`SELECT COUNT(*) FROM estimates WHERE parent_id = $1 AND status NOT IN ($2, $3, $4)`,
			quote.ParentID,
			models.EstimateStatusAccepted,
			models.EstimateStatusRejected,
			models.EstimateStatusCancelled,
		).Scan(&alive); err != nil {
			return fmt.Errorf("estimate repository: count alive quotes %w", err)
		}

		if next, ok := rootStatusAfterQuoteCancelled(rootStatus, alive); ok {
			if _, err := tx.ExecContext(
				ctx,
				`UPDATE estimates SET status = $1, updated_at = NOW() WHERE id = $2`,
				next,
				quote.ParentID,
			); err != nil {
				return fmt.Errorf("estimate repository: cancel root %w", err)
			}
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	return &cancelled, nil
}

// finishQuote переводит живое предложение в терминальный статус.
func (r *EstimateRepository) finishQuote(ctx context.Context, quoteID uuid.UUID, status string) (*models.Estimate, error) {
	var updated models.Estimate

	query := `
		UPDATE estimates SET status = $1, updated_at = NOW()
		WHERE id = $2 AND parent_id IS NOT NULL AND status NOT IN ($3, $4, $5)
		RETURNING ` + estimateColumns

	err := r.db.QueryRowxContext(
		ctx,
		query,
		status,
		quoteID,
		models.EstimateStatusAccepted,
		models.EstimateStatusRejected,
		models.EstimateStatusCancelled,
	).StructScan(&updated)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			// Либо предложения нет, либо оно уже терминально.
			if _, getErr := r.GetByID(ctx, quoteID); getErr == nil {
				return nil, ErrEstimateStale
			}
			return nil, ErrQuoteNotFound
		}
		return nil, fmt.Errorf("estimate repository: finish quote %w", err)
	}

	return &updated, nil
}

// CancelRootCascade атомарно отменяет корневую заявку и все её живые
// предложения.
func (r *EstimateRepository) CancelRootCascade(ctx context.Context, rootID uuid.UUID) (*models.Estimate, error) {
	var root models.Estimate

	err := common.WithTransaction(ctx, r.db, func(tx *sqlx.Tx) error {
		cancelQuery := `
			UPDATE estimates SET status = $1, updated_at = NOW()
			WHERE id = $2 AND parent_id IS NULL AND status IN ($3, $4)
			RETURNING ` + estimateColumns
		err := tx.QueryRowxContext(
			ctx,
			cancelQuery,
			models.EstimateStatusCancelled,
			rootID,
			models.EstimateStatusNew,
			models.EstimateStatusWaiting,
		).StructScan(&root)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				var exists bool
				if checkErr := tx.QueryRowxContext(
					ctx,
					`SELECT EXISTS (SELECT 1 FROM estimates WHERE id = $1 AND parent_id IS NULL)`,
					rootID,
				).Scan(&exists); checkErr != nil {
					return fmt.Errorf("estimate repository: check root %w", checkErr)
				}
				if exists {
					return ErrEstimateStale
				}
				return ErrEstimateNotFound
			}
			return fmt.Errorf("estimate repository: cancel root %w", err)
		}

		if _, err := tx.ExecContext(
			ctx,
			`UPDATE estimates
			 SET status = $1, updated_at = NOW()
			 WHERE parent_id = $2 AND status NOT IN ($3, $4, $5)`,
			models.EstimateStatusCancelled,
			rootID,
			models.EstimateStatusAccepted,
			models.EstimateStatusRejected,
			models.EstimateStatusCancelled,
		); err != nil {
			return fmt.Errorf("estimate repository: cancel quotes %w", err)
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	return &root, nil
}

// ListQuotes возвращает все предложения по корневой заявке.
func (r *EstimateRepository) ListQuotes(ctx context.Context, rootID uuid.UUID) ([]models.Estimate, error) {
	query := `SELECT ` + estimateColumns + ` FROM estimates WHERE parent_id = $1 ORDER BY created_at DESC`

	var quotes []models.Estimate
	if err := r.db.SelectContext(ctx, &quotes, query, rootID); err != nil {
		return nil, fmt.Errorf("estimate repository: list quotes %w", err)
	}
	return quotes, nil
}

// GetQuoteByProvider возвращает предложение конкретного исполнителя по заявке.
func (r *EstimateRepository) GetQuoteByProvider(ctx context.Context, rootID, providerID uuid.UUID) (*models.Estimate, error) {
	var quote models.Estimate
	query := `
		SELECT ` + estimateColumns + `
		FROM estimates
		WHERE parent_id = $1 AND provider_id = $2
		ORDER BY created_at DESC
		LIMIT 1
	`
	if err := r.db.GetContext(ctx, &quote, query, rootID, providerID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrQuoteNotFound
		}
		return nil, fmt.Errorf("estimate repository: get quote by provider %w", err)
	}
	return &quote, nil
}

// HasAliveQuoteByProvider сообщает, есть ли у исполнителя живое предложение
// по заявке.
func (r *EstimateRepository) HasAliveQuoteByProvider(ctx context.Context, rootID, providerID uuid.UUID) (bool, error) {
	var exists bool
	query := `
		SELECT EXISTS (
			SELECT 1 FROM estimates
			WHERE parent_id = $1 AND provider_id = $2 AND status NOT IN ($3, $4, $5)
		)
	`
	err := r.db.QueryRowxContext(
		ctx,
		query,
		rootID,
		providerID,
		models.EstimateStatusAccepted,
		models.EstimateStatusRejected,
		models.EstimateStatusCancelled,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("estimate repository: has alive quote %w", err)
	}
	return exists, nil
}

// ListMyEstimates возвращает корневые заявки владельца питомца.
func (r *EstimateRepository) ListMyEstimates(ctx context.Context, userID uuid.UUID, limit, offset int) ([]models.Estimate, error) {
	query := `
		SELECT ` + estimateColumns + `
		FROM estimates
		WHERE user_id = $1 AND parent_id IS NULL
		ORDER BY created_at DESC
	`
	args := []interface{}{userID}
	argIndex := 2

	if limit > 0 {
		query += fmt.Sprintf(" LIMIT $%d", argIndex)
		args = append(args, limit)
		argIndex++
	}
	if offset > 0 {
		query += fmt.Sprintf(" OFFSET $%d", argIndex)
		args = append(args, offset)
	}

	var estimates []models.Estimate
	if err := r.db.SelectContext(ctx, &estimates, query, args...); err != nil {
		return nil, fmt.Errorf("estimate repository: list my estimates %w", err)
	}
	return estimates, nil
}

// ListOpenForProvider возвращает заявки, видимые исполнителю: общие заявки
// его вида услуги плюс адресные заявки, назначенные именно ему. Терминальные
// заявки и заявки с уже поданным живым предложением исполнителя скрываются.
func (r *EstimateRepository) ListOpenForProvider(ctx context.Context, providerID uuid.UUID, serviceType string, limit, offset int) ([]models.Estimate, error) {
	query := `
		SELECT ` + estimateColumns + `
		FROM estimates e
		WHERE e.parent_id IS NULL
		  AND e.service_type = $1
		  AND e.status IN ($2, $3)
		  AND (
		      (e.proposal = $4 AND e.provider_id IS NULL)
		      OR (e.proposal = $5 AND e.provider_id = $6)
		  )
		  AND NOT EXISTS (
		      SELECT 1 FROM estimates q
		      WHERE q.parent_id = e.id AND q.provider_id = $6 AND q.status NOT IN ($7, $8, $9)
		  )
		ORDER BY e.created_at DESC
	`
	args := []interface{}{
		serviceType,
		models.EstimateStatusNew,
		models.EstimateStatusWaiting,
		models.ProposalGeneral,
		models.ProposalDesignation,
		providerID,
		models.EstimateStatusAccepted,
		models.EstimateStatusRejected,
		models.EstimateStatusCancelled,
	}
	argIndex := 10

	if limit > 0 {
		query += fmt.Sprintf(" LIMIT $%d", argIndex)
		args = append(args, limit)
		argIndex++
	}
	if offset > 0 {
		query += fmt.Sprintf(" OFFSET $%d", argIndex)
		args = append(args, offset)
	}

	var estimates []models.Estimate
	if err := r.db.SelectContext(ctx, &estimates, query, args...); err != nil {
		return nil, fmt.Errorf("estimate repository: list open for provider %w", err)
	}
	return estimates, nil
}

// ListQuotesByProvider возвращает предложения, поданные исполнителем.
func (r *EstimateRepository) ListQuotesByProvider(ctx context.Context, providerID uuid.UUID, limit, offset int) ([]models.Estimate, error) {
	query := `
		SELECT ` + estimateColumns + `
		FROM estimates
		WHERE provider_id = $1 AND parent_id IS NOT NULL
		ORDER BY created_at DESC
	`
	args := []interface{}{providerID}
	argIndex := 2

	if limit > 0 {
		query += fmt.Sprintf(" LIMIT $%d", argIndex)
		args = append(args, limit)
		argIndex++
	}
	if offset > 0 {
		query += fmt.Sprintf(" OFFSET $%d", argIndex)
		args = append(args, offset)
	}

	var quotes []models.Estimate
	if err := r.db.SelectContext(ctx, &quotes, query, args...); err != nil {
		return nil, fmt.Errorf("estimate repository: list quotes by provider %w", err)
	}
	return quotes, nil
}
