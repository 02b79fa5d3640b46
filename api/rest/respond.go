package rest

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/gurpsmanager/server/gurps"
	"github.com/gurpsmanager/server/sheet"
	"go.uber.org/multierr"
	"gorm.io/gorm"
)

var (
	errForbidden = errors.New("forbidden")
	errNotFound  = errors.New("not found")
)

// parseID reads a positive integer path parameter. It writes a 400 and
// returns false when the value is malformed.
func parseID(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid " + name})
		return 0, false
	}
	return id, true
}

// bind binds a JSON or form body and writes a 400 listing the failing
// fields.
func bind(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBind(req); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			fields := make(map[string]string, len(verrs))
			for _, fe := range verrs {
				fields[fe.Field()] = fe.Tag()
			}
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request", "fields": fields})
			return false
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return false
	}
	return true
}

// respondError maps domain errors to HTTP responses.
func respondError(c *gin.Context, err error) {
	var budget *gurps.BudgetExceededError
	switch {
	case errors.Is(err, errNotFound),
		errors.Is(err, sheet.ErrNotFound),
		errors.Is(err, gorm.ErrRecordNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	case errors.Is(err, errForbidden):
		c.JSON(http.StatusForbidden, gin.H{"error": "forbidden"})
	case errors.As(err, &budget):
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"error":     budget.Error(),
			"field":     "total_points",
			"budget":    budget.Budget,
			"spent":     budget.Spent,
			"remaining": budget.Budget - budget.Spent,
		})
	case errors.Is(err, gurps.ErrMissingBudget):
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"error": "set total_points before spending character points",
			"field": "total_points",
		})
	case errors.Is(err, gurps.ErrValidation), errors.Is(err, gurps.ErrInvalidCategory):
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid character", "fields": fieldErrors(err)})
	default:
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}

func fieldErrors(err error) map[string]string {
	fields := make(map[string]string)
	for _, e := range multierr.Errors(err) {
		var ve *gurps.ValidationError
		var ce *gurps.InvalidCategoryError
		switch {
		case errors.As(e, &ve):
			fields[ve.Field] = ve.Msg
		case errors.As(e, &ce):
			fields["category"] = ce.Error()
		}
	}
	return fields
}
