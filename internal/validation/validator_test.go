package validation_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/foodgramapp/foodgram-server/internal/domain"
	domainerrors "github.com/foodgramapp/foodgram-server/internal/errors"
	"github.com/foodgramapp/foodgram-server/internal/validation"
)

type registerRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8,max=128"`
	Username string `json:"username" validate:"required"`
}

func validDraft() domain.RecipeDraft {
	return domain.RecipeDraft{
		Name:        "Pancakes",
		Text:        "Whisk and fry.",
		CookingTime: 15,
		Ingredients: []domain.IngredientAmount{{ID: 1, Amount: 200}, {ID: 2, Amount: 2}},
		Tags:        []int64{1, 2},
	}
}

func details(t *testing.T, err error) map[string]string {
	t.Helper()
	require.Error(t, err)

	var domErr *domainerrors.Error
	require.True(t, errors.As(err, &domErr), "expected domain error, got %T", err)
	assert.Equal(t, domainerrors.CodeValidation, domErr.Code)

	fields, ok := domErr.Details.(map[string]string)
	require.True(t, ok, "details should be a field map, got %T", domErr.Details)
	return fields
}

func TestValidator_ValidateSuccess(t *testing.T) {
	v := validation.New()

	err := v.Validate(registerRequest{
		Email:    "test@example.com",
		Password: "password123",
		Username: "cook",
	})
	assert.NoError(t, err)

	draft := validDraft()
	assert.NoError(t, v.Validate(draft))
}

func TestValidator_ValidateErrors(t *testing.T) {
	v := validation.New()

	tests := []struct {
		name      string
		req       registerRequest
		wantField string
	}{
		{
			name:      "missing required field",
			req:       registerRequest{Email: "test@example.com", Password: "password123"},
			wantField: "username",
		},
		{
			name:      "invalid email",
			req:       registerRequest{Email: "not-an-email", Password: "password123", Username: "x"},
			wantField: "email",
		},
		{
			name:      "password too short",
			req:       registerRequest{Email: "test@example.com", Password: "short", Username: "x"},
			wantField: "password",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fields := details(t, v.Validate(tt.req))
			assert.Contains(t, fields, tt.wantField)
		})
	}
}

func TestValidator_RecipeDraft(t *testing.T) {
	v := validation.New()

	tests := []struct {
		name      string
		mutate    func(d *domain.RecipeDraft)
		wantField string
		wantMsg   string
	}{
		{
			name:      "empty ingredients",
			mutate:    func(d *domain.RecipeDraft) { d.Ingredients = []domain.IngredientAmount{} },
			wantField: "ingredients",
			wantMsg:   "must contain at least 1 items",
		},
		{
			name:      "nil ingredients",
			mutate:    func(d *domain.RecipeDraft) { d.Ingredients = nil },
			wantField: "ingredients",
			wantMsg:   "must not be empty",
		},
		{
			name: "repeated ingredient still checks amounts",
			mutate: func(d *domain.RecipeDraft) {
				d.Ingredients = []domain.IngredientAmount{{ID: 3, Amount: 1}, {ID: 3, Amount: 0}}
			},
			wantField: "ingredients[1].amount",
			wantMsg:   "must be greater than or equal to 1",
		},
		{
			name:      "zero amount",
			mutate:    func(d *domain.RecipeDraft) { d.Ingredients[1].Amount = 0 },
			wantField: "ingredients[1].amount",
			wantMsg:   "must be greater than or equal to 1",
		},
		{
			name:      "zero tag id",
			mutate:    func(d *domain.RecipeDraft) { d.Tags = []int64{4, 0} },
			wantField: "tags[1]",
			wantMsg:   "must be greater than 0",
		},
		{
			name:      "zero cooking time",
			mutate:    func(d *domain.RecipeDraft) { d.CookingTime = 0 },
			wantField: "cooking_time",
			wantMsg:   "must be greater than or equal to 1",
		},
		{
			name:      "missing name",
			mutate:    func(d *domain.RecipeDraft) { d.Name = "" },
			wantField: "name",
			wantMsg:   "is required",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			draft := validDraft()
			tt.mutate(&draft)

			fields := details(t, v.Validate(draft))
			assert.Equal(t, tt.wantMsg, fields[tt.wantField], "fields: %v", fields)
		})
	}
}

func TestValidator_Var(t *testing.T) {
	v := validation.New()

	assert.NoError(t, v.Var("color", "#E26C2D", "hexcolor"))

	fields := details(t, v.Var("color", "orange", "hexcolor"))
	assert.Equal(t, "must be a hex color such as #E26C2D", fields["color"])
}

func TestValidator_CustomTags(t *testing.T) {
	v := validation.New()

	assert.NoError(t, v.Var("username", "chef.anna+1@home", "username"))
	fields := details(t, v.Var("username", "anna smith", "username"))
	assert.Equal(t, "may contain only letters, digits and @/./+/-/_", fields["username"])

	assert.NoError(t, v.Var("slug", "main-course", "slug"))
	fields = details(t, v.Var("slug", "Main Course", "slug"))
	assert.Equal(t, "must contain only lowercase letters, digits and hyphens", fields["slug"])
}
