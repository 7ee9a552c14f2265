package api

import (
	"bytes"
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/foodgramapp/foodgram-server/internal/domain"
	"github.com/foodgramapp/foodgram-server/internal/service"
)

// Admin operations mutate the catalogs or read reports. Each checks the
// actor's admin flag in the service layer.
func (s *Server) registerAdminRoutes() {
	admin := []map[string][]string{{"bearer": {}}}

	huma.Register(s.api, huma.Operation{
		OperationID:   "adminCreateTag",
		Method:        http.MethodPost,
		Path:          "/api/v1/admin/tags",
		Summary:       "Create tag",
		Description:   "Creates a tag. The slug is derived from the name when omitted.",
		Tags:          []string{"Admin"},
		Security:      admin,
		DefaultStatus: http.StatusCreated,
	}, s.handleAdminCreateTag)

	huma.Register(s.api, huma.Operation{
		OperationID:   "adminDeleteTag",
		Method:        http.MethodDelete,
		Path:          "/api/v1/admin/tags/{id}",
		Summary:       "Delete tag",
		Description:   "Deletes a tag and detaches it from every recipe",
		Tags:          []string{"Admin"},
		Security:      admin,
		DefaultStatus: http.StatusNoContent,
	}, s.handleAdminDeleteTag)

	huma.Register(s.api, huma.Operation{
		OperationID:   "adminCreateIngredient",
		Method:        http.MethodPost,
		Path:          "/api/v1/admin/ingredients",
		Summary:       "Create ingredient",
		Description:   "Creates an ingredient; the name and unit pair must be unique",
		Tags:          []string{"Admin"},
		Security:      admin,
		DefaultStatus: http.StatusCreated,
	}, s.handleAdminCreateIngredient)

	huma.Register(s.api, huma.Operation{
		OperationID: "adminImportIngredients",
		Method:      http.MethodPost,
		Path:        "/api/v1/admin/ingredients/import",
		Summary:     "Import ingredients",
		Description: "Bulk-creates ingredients from CSV with a 'name,measurement_unit' header. Failing rows are reported and skipped.",
		Tags:        []string{"Admin"},
		Security:    admin,
	}, s.handleAdminImportIngredients)

	huma.Register(s.api, huma.Operation{
		OperationID: "adminImportTags",
		Method:      http.MethodPost,
		Path:        "/api/v1/admin/tags/import",
		Summary:     "Import tags",
		Description: "Bulk-creates tags from CSV with a 'name,color[,slug]' header. Failing rows are reported and skipped.",
		Tags:        []string{"Admin"},
		Security:    admin,
	}, s.handleAdminImportTags)

	huma.Register(s.api, huma.Operation{
		OperationID: "adminRecipeReport",
		Method:      http.MethodGet,
		Path:        "/api/v1/admin/reports/recipes",
		Summary:     "Recipe report",
		Description: "Returns favorite and cart counts per recipe, most favorited first",
		Tags:        []string{"Admin"},
		Security:    admin,
	}, s.handleAdminRecipeReport)

	huma.Register(s.api, huma.Operation{
		OperationID: "adminSetUserRole",
		Method:      http.MethodPut,
		Path:        "/api/v1/admin/users/{id}/role",
		Summary:     "Set user role",
		Description: "Grants or revokes the admin role",
		Tags:        []string{"Admin"},
		Security:    admin,
	}, s.handleAdminSetUserRole)

	huma.Register(s.api, huma.Operation{
		OperationID: "adminReindexSearch",
		Method:      http.MethodPost,
		Path:        "/api/v1/admin/search/reindex",
		Summary:     "Rebuild search index",
		Description: "Re-indexes every recipe from the database",
		Tags:        []string{"Admin"},
		Security:    admin,
	}, s.handleAdminReindex)
}

// === DTOs ===

// CreateTagRequest is the request body for creating a tag.
type CreateTagRequest struct {
	Name  string `json:"name,omitempty" doc:"Tag name"`
	Color string `json:"color,omitempty" doc:"Hex color, e.g. #E26C2D"`
	Slug  string `json:"slug,omitempty" doc:"URL-safe slug; derived from the name when omitted"`
}

// CreateTagInput wraps the create tag request for Huma.
type CreateTagInput struct {
	Body CreateTagRequest
}

// DeleteTagInput contains parameters for deleting a tag.
type DeleteTagInput struct {
	ID int64 `path:"id" doc:"Tag ID"`
}

// CreateIngredientRequest is the request body for creating an ingredient.
type CreateIngredientRequest struct {
	Name            string `json:"name,omitempty" doc:"Ingredient name"`
	MeasurementUnit string `json:"measurement_unit,omitempty" doc:"Unit amounts are measured in"`
}

// CreateIngredientInput wraps the create ingredient request for Huma.
type CreateIngredientInput struct {
	Body CreateIngredientRequest
}

// ImportCSVInput carries a raw CSV upload.
type ImportCSVInput struct {
	RawBody []byte `contentType:"text/csv"`
}

// ImportOutput wraps an import report for Huma.
type ImportOutput struct {
	Body *service.ImportReport
}

// RecipeReportInput contains parameters for the recipe report.
type RecipeReportInput struct {
	PaginationInput
}

// RecipeReportOutput wraps a page of recipe stats for Huma.
type RecipeReportOutput struct {
	Body PageResponse[domain.RecipeStats]
}

// SetUserRoleRequest is the request body for changing a role.
type SetUserRoleRequest struct {
	Role string `json:"role" enum:"user,admin" doc:"New role"`
}

// SetUserRoleInput wraps the role change for Huma.
type SetUserRoleInput struct {
	ID   int64 `path:"id" doc:"User ID"`
	Body SetUserRoleRequest
}

// ReindexResponse reports a finished rebuild.
type ReindexResponse struct {
	Indexed int `json:"indexed" doc:"Recipes indexed"`
}

// ReindexOutput wraps the reindex response for Huma.
type ReindexOutput struct {
	Body ReindexResponse
}

// === Handlers ===

func (s *Server) handleAdminCreateTag(ctx context.Context, input *CreateTagInput) (*TagOutput, error) {
	tag, err := s.services.Catalog.CreateTag(ctx, ActorFrom(ctx), service.CreateTagRequest{
		Name:  input.Body.Name,
		Color: input.Body.Color,
		Slug:  input.Body.Slug,
	})
	if err != nil {
		return nil, err
	}
	return &TagOutput{Body: tag}, nil
}

func (s *Server) handleAdminDeleteTag(ctx context.Context, input *DeleteTagInput) (*struct{}, error) {
	return nil, s.services.Catalog.DeleteTag(ctx, ActorFrom(ctx), input.ID)
}

func (s *Server) handleAdminCreateIngredient(ctx context.Context, input *CreateIngredientInput) (*IngredientOutput, error) {
	ingredient, err := s.services.Catalog.CreateIngredient(ctx, ActorFrom(ctx), service.CreateIngredientRequest{
		Name:            input.Body.Name,
		MeasurementUnit: input.Body.MeasurementUnit,
	})
	if err != nil {
		return nil, err
	}
	return &IngredientOutput{Body: ingredient}, nil
}

func (s *Server) handleAdminImportIngredients(ctx context.Context, input *ImportCSVInput) (*ImportOutput, error) {
	report, err := s.services.Catalog.ImportIngredientsCSV(ctx, ActorFrom(ctx), bytes.NewReader(input.RawBody))
	if err != nil {
		return nil, err
	}
	return &ImportOutput{Body: report}, nil
}

func (s *Server) handleAdminImportTags(ctx context.Context, input *ImportCSVInput) (*ImportOutput, error) {
	report, err := s.services.Catalog.ImportTagsCSV(ctx, ActorFrom(ctx), bytes.NewReader(input.RawBody))
	if err != nil {
		return nil, err
	}
	return &ImportOutput{Body: report}, nil
}

func (s *Server) handleAdminRecipeReport(ctx context.Context, input *RecipeReportInput) (*RecipeReportOutput, error) {
	page, err := s.services.Admin.RecipeStats(ctx, ActorFrom(ctx), input.Params())
	if err != nil {
		return nil, err
	}
	return &RecipeReportOutput{Body: mapPage(page, func(st domain.RecipeStats) domain.RecipeStats { return st })}, nil
}

func (s *Server) handleAdminSetUserRole(ctx context.Context, input *SetUserRoleInput) (*UserOutput, error) {
	user, err := s.services.User.SetRole(ctx, ActorFrom(ctx), input.ID, domain.Role(input.Body.Role))
	if err != nil {
		return nil, err
	}
	return &UserOutput{Body: mapUser(user)}, nil
}

func (s *Server) handleAdminReindex(ctx context.Context, _ *struct{}) (*ReindexOutput, error) {
	n, err := s.services.Admin.ReindexSearch(ctx, ActorFrom(ctx))
	if err != nil {
		return nil, err
	}
	return &ReindexOutput{Body: ReindexResponse{Indexed: n}}, nil
}
