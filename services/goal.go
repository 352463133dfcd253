package services

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/fintrackhq/fintrack-api/models"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type GoalService struct {
	db *sql.DB
}

func NewGoalService(db *sql.DB) *GoalService {
	return &GoalService{db: db}
}

const goalColumns = `id, title, target_amount, saved_amount, deadline,
	owner_id, owner_type, status, icon, color, created_at, updated_at`

func scanGoal(scanner interface{ Scan(...any) error }) (*models.Goal, error) {
	var goal models.Goal
	err := scanner.Scan(
		&goal.ID, &goal.Title, &goal.TargetAmount, &goal.SavedAmount, &goal.Deadline,
		&goal.OwnerID, &goal.OwnerType, &goal.Status, &goal.Icon, &goal.Color,
		&goal.CreatedAt, &goal.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &goal, nil
}

func (s *GoalService) List(ctx context.Context) ([]models.Goal, error) {
	query := `SELECT ` + goalColumns + ` FROM goals ORDER BY created_at DESC`
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	goals := []models.Goal{}
	for rows.Next() {
		goal, err := scanGoal(rows)
		if err != nil {
			return nil, err
		}
		goals = append(goals, *goal)
	}
	return goals, rows.Err()
}

func (s *GoalService) GetByID(ctx context.Context, id string) (*models.Goal, error) {
	query := `SELECT ` + goalColumns + ` FROM goals WHERE id = $1`
	return scanGoal(s.db.QueryRowContext(ctx, query, id))
}

func (s *GoalService) Create(ctx context.Context, req *models.GoalUpsertRequest) (*models.Goal, error) {
	goal := &models.Goal{
		ID:           uuid.New().String(),
		Title:        strings.TrimSpace(req.Title),
		TargetAmount: req.TargetAmount,
		SavedAmount:  decimal.Zero,
		Deadline:     req.Deadline,
		OwnerID:      req.OwnerID,
		OwnerType:    req.OwnerType,
		Status:       models.GoalStatusActive,
		Icon:         req.Icon,
		Color:        req.Color,
		CreatedAt:    time.Now(),
		UpdatedAt:    time.Now(),
	}

	query := `
		INSERT INTO goals
			(id, title, target_amount, saved_amount, deadline, owner_id, owner_type,
			 status, icon, color, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`
	_, err := s.db.ExecContext(ctx, query,
		goal.ID, goal.Title, goal.TargetAmount, goal.SavedAmount, goal.Deadline,
		goal.OwnerID, goal.OwnerType, goal.Status, goal.Icon, goal.Color,
		goal.CreatedAt, goal.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return goal, nil
}

func (s *GoalService) Update(ctx context.Context, id string, req *models.GoalUpsertRequest) (*models.Goal, error) {
	query := `
		UPDATE goals
		SET title = $1, target_amount = $2, deadline = $3, owner_id = $4,
		    owner_type = $5, icon = $6, color = $7, updated_at = NOW()
		WHERE id = $8
	`
	result, err := s.db.ExecContext(ctx, query,
		strings.TrimSpace(req.Title), req.TargetAmount, req.Deadline,
		req.OwnerID, req.OwnerType, req.Icon, req.Color, id,
	)
	if err != nil {
		return nil, err
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return nil, sql.ErrNoRows
	}
	return s.recomputeStatus(ctx, id)
}

func (s *GoalService) Delete(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx, "DELETE FROM goals WHERE id = $1", id)
	return err
}

// AddFunds moves money into a goal and completes it once the target is met.
func (s *GoalService) AddFunds(ctx context.Context, id string, amount decimal.Decimal) (*models.Goal, error) {
	if amount.IsNegative() {
		amount = decimal.Zero
	}
	_, err := s.db.ExecContext(ctx,
		"UPDATE goals SET saved_amount = saved_amount + $1, updated_at = NOW() WHERE id = $2",
		amount, id,
	)
	if err != nil {
		return nil, err
	}
	return s.recomputeStatus(ctx, id)
}

func (s *GoalService) recomputeStatus(ctx context.Context, id string) (*models.Goal, error) {
	goal, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	status := models.GoalStatusActive
	if goal.SavedAmount.GreaterThanOrEqual(goal.TargetAmount) && goal.TargetAmount.IsPositive() {
		status = models.GoalStatusCompleted
	}
	if status != goal.Status {
		if _, err := s.db.ExecContext(ctx,
			"UPDATE goals SET status = $1, updated_at = NOW() WHERE id = $2", status, id); err != nil {
			return nil, err
		}
		goal.Status = status
	}
	return goal, nil
}
