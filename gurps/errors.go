package gurps

import (
	"errors"
	"fmt"
)

var (
	// ErrValidation marks a field that violates a non-negativity, quarter or
	// choice constraint.
	ErrValidation = errors.New("gurps: invalid field")
	// ErrInvalidCategory marks a skill whose category is outside the known set.
	ErrInvalidCategory = errors.New("gurps: invalid skill category")
	// ErrBudgetExceeded marks a character that spent more than its budget.
	ErrBudgetExceeded = errors.New("gurps: point budget exceeded")
	// ErrMissingBudget marks a spend check on a character without a budget.
	ErrMissingBudget = errors.New("gurps: total points not set")
)

// ValidationError names the offending field.
type ValidationError struct {
	Field string
	Msg   string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Msg)
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

// InvalidCategoryError reports a catalog entry with an unknown category.
type InvalidCategoryError struct {
	Skill    string
	Category SkillCategory
}

func (e *InvalidCategoryError) Error() string {
	return fmt.Sprintf("skill %q: category %d is outside the known set", e.Skill, int(e.Category))
}

func (e *InvalidCategoryError) Unwrap() error { return ErrInvalidCategory }

// BudgetExceededError carries both sides of the failed comparison.
type BudgetExceededError struct {
	Budget float64
	Spent  float64
}

func (e *BudgetExceededError) Error() string {
	return fmt.Sprintf("too many character points spent: only %g are available; you spent %g", e.Budget, e.Spent)
}

func (e *BudgetExceededError) Unwrap() error { return ErrBudgetExceeded }
