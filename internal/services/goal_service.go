package services

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	apperrors "finhub/internal/errors"
	"finhub/internal/models"
)

// requiredExtraFields are the ExtraData keys that must be present and non-null
// for each goal type.
var requiredExtraFields = map[models.GoalType][]string{
	models.GoalTypeSaving:          {"target_amount"},
	models.GoalTypeDebtReduction:   {"debt_name", "initial_debt", "remaining_debt"},
	models.GoalTypeSpendingControl: {"category", "spending_limit", "period"},
}

const goalDetailsColumns = `g.id, g.user_id, g.type, g.title, g.description, g.created_at,
	sg.target_amount, sg.current_amount, sg.deadline,
	dg.debt_name, dg.initial_debt, dg.remaining_debt, dg.monthly_payment_target,
	sc.category, sc.spending_limit, sc.period`

// goalDetailsFrom joins goals to every extension table. The table of the goal
// type given in inner is INNER JOINed, the others LEFT JOINed.
func goalDetailsFrom(inner models.GoalType) string {
	join := func(t models.GoalType) string {
		if t == inner {
			return "INNER JOIN"
		}
		return "LEFT JOIN"
	}
	return fmt.Sprintf(`FROM goals g
	%s saving_goals sg ON sg.goal_id = g.id
	%s debt_reduction_goals dg ON dg.goal_id = g.id
	%s spending_control_goals sc ON sc.goal_id = g.id`,
		join(models.GoalTypeSaving), join(models.GoalTypeDebtReduction), join(models.GoalTypeSpendingControl))
}

// goalDetailsUnion returns one row per goal matching where. Each branch only
// reads goals of its own type, so a goal never appears twice.
func goalDetailsUnion(where string) string {
	return `SELECT g.id, g.user_id, g.type, g.title, g.description, g.created_at,
	sg.target_amount, sg.current_amount, sg.deadline,
	CAST(NULL AS TEXT) AS debt_name, CAST(NULL AS NUMERIC) AS initial_debt,
	CAST(NULL AS NUMERIC) AS remaining_debt, CAST(NULL AS NUMERIC) AS monthly_payment_target,
	CAST(NULL AS TEXT) AS category, CAST(NULL AS NUMERIC) AS spending_limit, CAST(NULL AS TEXT) AS period
FROM goals g LEFT JOIN saving_goals sg ON sg.goal_id = g.id
WHERE g.type = 'saving_goals'` + where + `
UNION ALL
SELECT g.id, g.user_id, g.type, g.title, g.description, g.created_at,
	CAST(NULL AS NUMERIC), CAST(NULL AS NUMERIC), CAST(NULL AS DATE),
	dg.debt_name, dg.initial_debt, dg.remaining_debt, dg.monthly_payment_target,
	CAST(NULL AS TEXT), CAST(NULL AS NUMERIC), CAST(NULL AS TEXT)
FROM goals g LEFT JOIN debt_reduction_goals dg ON dg.goal_id = g.id
WHERE g.type = 'debt_reduction_goals'` + where + `
UNION ALL
SELECT g.id, g.user_id, g.type, g.title, g.description, g.created_at,
	CAST(NULL AS NUMERIC), CAST(NULL AS NUMERIC), CAST(NULL AS DATE),
	CAST(NULL AS TEXT), CAST(NULL AS NUMERIC), CAST(NULL AS NUMERIC), CAST(NULL AS NUMERIC),
	sc.category, sc.spending_limit, sc.period
FROM goals g LEFT JOIN spending_control_goals sc ON sc.goal_id = g.id
WHERE g.type = 'spending_control_goals'` + where
}

// goalService handles goal-related business logic.
type goalService struct {
	db *gorm.DB
}

// NewGoalService creates a new GoalServicer.
func NewGoalService(db *gorm.DB) GoalServicer {
	return &goalService{db: db}
}

// CreateGoal inserts the base goal row and its extension row in one database
// transaction and returns the new goal id.
func (s *goalService) CreateGoal(userID uint, input CreateGoalInput) (uint, error) {
	if !input.Type.Valid() {
		return 0, apperrors.ErrInvalidGoalType
	}
	title := strings.TrimSpace(input.Title)
	if title == "" {
		return 0, apperrors.WithMessage(apperrors.ErrInvalidInput, "title is required")
	}

	ext, err := decodeGoalExtension(input.Type, input.ExtraData)
	if err != nil {
		return 0, err
	}

	goal := &models.Goal{
		UserID:      userID,
		Type:        ext.GoalType(),
		Title:       title,
		Description: input.Description,
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(goal).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrPersistence, err)
		}
		models.AttachExtension(ext, goal.ID)
		if err := tx.Create(ext).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrPersistence, err)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return goal.ID, nil
}

// decodeGoalExtension checks the required keys of raw for goalType and decodes
// it into the matching extension struct.
func decodeGoalExtension(goalType models.GoalType, raw json.RawMessage) (models.GoalExtension, error) {
	if len(bytes.TrimSpace(raw)) == 0 {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "extra_data is required")
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "extra_data must be a JSON object")
	}
	var missing []string
	for _, key := range requiredExtraFields[goalType] {
		v, ok := fields[key]
		if !ok || string(v) == "null" {
			missing = append(missing, key)
		}
	}
	if len(missing) > 0 {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput,
			fmt.Sprintf("extra_data for %s requires: %s", goalType, strings.Join(missing, ", ")))
	}

	ext := models.NewGoalExtension(goalType)
	if err := json.Unmarshal(raw, ext); err != nil {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "invalid extra_data: "+err.Error())
	}
	if err := ext.Validate(); err != nil {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error())
	}
	return ext, nil
}

// GetGoal returns the goal with every extension column; columns that do not
// belong to the goal's type are nil.
func (s *goalService) GetGoal(userID, goalID uint) (*models.GoalDetails, error) {
	var rows []models.GoalDetails
	err := s.db.Raw("SELECT "+goalDetailsColumns+" "+goalDetailsFrom("")+
		" WHERE g.id = ? AND g.user_id = ?", goalID, userID).
		Scan(&rows).Error
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrPersistence, err)
	}
	if len(rows) == 0 {
		return nil, apperrors.ErrGoalNotFound
	}
	return &rows[0], nil
}

// GetGoalsByUser returns the base rows of the user's goals.
func (s *goalService) GetGoalsByUser(userID uint) ([]models.Goal, error) {
	goals := []models.Goal{}
	if err := s.db.Where("user_id = ?", userID).Order("id").Find(&goals).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrPersistence, err)
	}
	return goals, nil
}

// GetGoalsByUserAndType returns the user's goals of one type that have an
// extension row.
func (s *goalService) GetGoalsByUserAndType(userID uint, goalType models.GoalType) ([]models.GoalDetails, error) {
	if !goalType.Valid() {
		return nil, apperrors.ErrInvalidGoalType
	}

	rows := []models.GoalDetails{}
	err := s.db.Raw("SELECT "+goalDetailsColumns+" "+goalDetailsFrom(goalType)+
		" WHERE g.user_id = ? AND g.type = ? ORDER BY g.id", userID, goalType).
		Scan(&rows).Error
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrPersistence, err)
	}
	return rows, nil
}

// GetGoalsFullDetails returns every goal of the user exactly once, with the
// columns of its own extension filled in.
func (s *goalService) GetGoalsFullDetails(userID uint) ([]models.GoalDetails, error) {
	rows := []models.GoalDetails{}
	err := s.db.Raw(goalDetailsUnion(" AND g.user_id = ?")+" ORDER BY id", userID, userID, userID).
		Scan(&rows).Error
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrPersistence, err)
	}
	return rows, nil
}

// UpdateGoal updates the base columns of a goal. Extension columns are not
// touched and the type cannot change.
func (s *goalService) UpdateGoal(userID, goalID uint, input UpdateGoalInput) (*models.Goal, error) {
	var goal models.Goal
	if err := s.db.Where("id = ? AND user_id = ?", goalID, userID).First(&goal).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrGoalNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrPersistence, err)
	}

	if input.Type != nil && *input.Type != goal.Type {
		if !input.Type.Valid() {
			return nil, apperrors.ErrInvalidGoalType
		}
		return nil, apperrors.ErrGoalTypeChange
	}

	updates := make(map[string]interface{})
	if input.Title != nil {
		title := strings.TrimSpace(*input.Title)
		if title == "" {
			return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "title cannot be empty")
		}
		updates["title"] = title
	}
	if input.Description != nil {
		updates["description"] = *input.Description
	}

	if len(updates) > 0 {
		if err := s.db.Model(&goal).Updates(updates).Error; err != nil {
			return nil, apperrors.Wrap(apperrors.ErrPersistence, err)
		}
		if err := s.db.First(&goal, goal.ID).Error; err != nil {
			return nil, apperrors.Wrap(apperrors.ErrPersistence, err)
		}
	}

	return &goal, nil
}

// DeleteGoal removes the goal and its extension rows in one database
// transaction, detaches its transactions and returns what was deleted.
func (s *goalService) DeleteGoal(userID, goalID uint) (*models.GoalDetails, error) {
	details, err := s.GetGoal(userID, goalID)
	if err != nil {
		return nil, err
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		for _, ext := range []interface{}{&models.SavingGoal{}, &models.DebtReductionGoal{}, &models.SpendingControlGoal{}} {
			if err := tx.Where("goal_id = ?", goalID).Delete(ext).Error; err != nil {
				return apperrors.Wrap(apperrors.ErrPersistence, err)
			}
		}
		if err := tx.Model(&models.Transaction{}).
			Where("goal_id = ? AND user_id = ?", goalID, userID).
			Update("goal_id", nil).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrPersistence, err)
		}
		if err := tx.Where("id = ? AND user_id = ?", goalID, userID).Delete(&models.Goal{}).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrPersistence, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return details, nil
}
