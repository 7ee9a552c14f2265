package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/foodgramapp/foodgram-server/internal/domain"
	domainerrors "github.com/foodgramapp/foodgram-server/internal/errors"
	"github.com/foodgramapp/foodgram-server/internal/media/images"
	"github.com/foodgramapp/foodgram-server/internal/metrics"
	"github.com/foodgramapp/foodgram-server/internal/store"
)

// RecipeView is a recipe as seen by a particular actor.
type RecipeView struct {
	ID               int64                     `json:"id"`
	Tags             []domain.Tag              `json:"tags"`
	Author           *domain.Author            `json:"author"`
	Ingredients      []domain.RecipeIngredient `json:"ingredients"`
	IsFavorited      bool                      `json:"is_favorited"`
	IsInShoppingCart bool                      `json:"is_in_shopping_cart"`
	Name             string                    `json:"name"`
	Image            string                    `json:"image"`
	ImageBlurHash    string                    `json:"image_blurhash,omitempty"`
	Text             string                    `json:"text"`
	CookingTime      int                       `json:"cooking_time"`
	CreatedAt        time.Time                 `json:"created_at"`
}

// RecipeQuery narrows a recipe listing. The favorites and cart flags refer
// to the acting user.
type RecipeQuery struct {
	AuthorID         int64
	Tags             []string
	IsFavorited      bool
	IsInShoppingCart bool
}

// RecipeService composes, updates, deletes and reads recipes.
type RecipeService struct {
	store  store.Store
	images *images.Storage
	search *SearchService
	logger *slog.Logger
}

// NewRecipeService creates a new recipe service. images and search may be
// nil: inline image uploads are then rejected and indexing is skipped.
func NewRecipeService(store store.Store, images *images.Storage, search *SearchService, logger *slog.Logger) *RecipeService {
	return &RecipeService{
		store:  store,
		images: images,
		search: search,
		logger: orDiscard(logger),
	}
}

// Create validates a draft and stores it as a new recipe authored by the
// actor. The recipe, its ingredient lines and its tag links are written in
// one transaction.
func (s *RecipeService) Create(ctx context.Context, actor domain.Actor, draft domain.RecipeDraft) (*RecipeView, error) {
	if err := requireAuthenticated(actor); err != nil {
		return nil, err
	}
	if err := s.checkDraft(ctx, &draft, true); err != nil {
		return nil, err
	}

	img, err := s.resolveImage(draft.Image)
	if err != nil {
		return nil, err
	}

	recipe := &domain.Recipe{
		AuthorID:      actor.UserID,
		Name:          draft.Name,
		Text:          draft.Text,
		CookingTime:   draft.CookingTime,
		Image:         img.URL,
		ImageBlurHash: img.BlurHash,
		Ingredients:   draftLines(draft),
		Tags:          draftTags(draft),
	}

	if err := s.store.CreateRecipe(ctx, recipe); err != nil {
		s.discardImage(img)
		return nil, translateStoreErr(err, "recipe")
	}

	s.logger.Info("recipe created", "recipe_id", recipe.ID, "user_id", actor.UserID)
	metrics.RecordRecipeMutation("create")

	return s.reloadView(ctx, actor, recipe.ID)
}

// Update replaces a recipe's fields, ingredient lines and tags with the
// draft. Only the author or an admin may update. Lines and tags are cleared
// and rebuilt in one transaction; an empty draft image keeps the current one.
func (s *RecipeService) Update(ctx context.Context, actor domain.Actor, recipeID int64, draft domain.RecipeDraft) (*RecipeView, error) {
	if err := requireAuthenticated(actor); err != nil {
		return nil, err
	}

	existing, err := s.store.GetRecipe(ctx, recipeID)
	if err != nil {
		return nil, translateStoreErr(err, "recipe")
	}
	if !actor.CanModify(existing.AuthorID) {
		return nil, domainerrors.Forbidden("only the author or an admin may change this recipe")
	}

	if err := s.checkDraft(ctx, &draft, false); err != nil {
		return nil, err
	}

	img := storedImage{URL: existing.Image, BlurHash: existing.ImageBlurHash}
	if draft.Image != "" && draft.Image != existing.Image {
		if img, err = s.resolveImage(draft.Image); err != nil {
			return nil, err
		}
	}

	updated := &domain.Recipe{
		ID:            existing.ID,
		AuthorID:      existing.AuthorID,
		Name:          draft.Name,
		Text:          draft.Text,
		CookingTime:   draft.CookingTime,
		Image:         img.URL,
		ImageBlurHash: img.BlurHash,
		CreatedAt:     existing.CreatedAt,
		Ingredients:   draftLines(draft),
		Tags:          draftTags(draft),
	}

	if err := s.store.UpdateRecipe(ctx, updated); err != nil {
		s.discardImage(img)
		return nil, translateStoreErr(err, "recipe")
	}

	if img.URL != existing.Image {
		s.removeImageURL(existing.Image)
	}

	s.logger.Info("recipe updated", "recipe_id", recipeID, "user_id", actor.UserID)
	metrics.RecordRecipeMutation("update")

	return s.reloadView(ctx, actor, recipeID)
}

// Delete removes a recipe together with its lines, tag links, favorites and
// cart entries. Only the author or an admin may delete.
func (s *RecipeService) Delete(ctx context.Context, actor domain.Actor, recipeID int64) error {
	if err := requireAuthenticated(actor); err != nil {
		return err
	}

	existing, err := s.store.GetRecipe(ctx, recipeID)
	if err != nil {
		return translateStoreErr(err, "recipe")
	}
	if !actor.CanModify(existing.AuthorID) {
		return domainerrors.Forbidden("only the author or an admin may delete this recipe")
	}

	if err := s.store.DeleteRecipe(ctx, recipeID); err != nil {
		return translateStoreErr(err, "recipe")
	}

	s.removeImageURL(existing.Image)
	s.search.RemoveRecipe(recipeID)

	s.logger.Info("recipe deleted", "recipe_id", recipeID, "user_id", actor.UserID)
	metrics.RecordRecipeMutation("delete")
	return nil
}

// Get returns one recipe annotated for the actor.
func (s *RecipeService) Get(ctx context.Context, actor domain.Actor, recipeID int64) (*RecipeView, error) {
	recipe, err := s.store.GetRecipe(ctx, recipeID)
	if err != nil {
		return nil, translateStoreErr(err, "recipe")
	}
	views, err := buildRecipeViews(ctx, s.store, actor, []*domain.Recipe{recipe})
	if err != nil {
		return nil, err
	}
	return views[0], nil
}

// List returns one page of recipes, newest first. The favorites and cart
// filters select nothing for anonymous actors.
func (s *RecipeService) List(ctx context.Context, actor domain.Actor, q RecipeQuery, params store.PaginationParams) (*store.PaginatedResult[*RecipeView], error) {
	params.Validate()

	if (q.IsFavorited || q.IsInShoppingCart) && !actor.Authenticated {
		return store.NewPaginatedResult([]*RecipeView{}, 0, params), nil
	}

	filter := domain.RecipeFilter{AuthorID: q.AuthorID}
	for _, t := range q.Tags {
		if t = strings.TrimSpace(t); t != "" {
			filter.TagSlugs = append(filter.TagSlugs, t)
		}
	}
	if q.IsFavorited {
		filter.FavoritedBy = actor.UserID
	}
	if q.IsInShoppingCart {
		filter.InCartOf = actor.UserID
	}

	page, err := s.store.ListRecipes(ctx, filter, params)
	if err != nil {
		return nil, fmt.Errorf("list recipes: %w", err)
	}

	views, err := buildRecipeViews(ctx, s.store, actor, page.Items)
	if err != nil {
		return nil, err
	}

	return &store.PaginatedResult[*RecipeView]{
		Items:   views,
		Total:   page.Total,
		Page:    page.Page,
		Limit:   page.Limit,
		HasMore: page.HasMore,
	}, nil
}

// checkDraft validates a draft and confirms every referenced ingredient and
// tag exists. Field errors are reported together in one VALIDATION error.
func (s *RecipeService) checkDraft(ctx context.Context, draft *domain.RecipeDraft, requireImage bool) error {
	draft.Name = strings.TrimSpace(draft.Name)
	draft.Image = strings.TrimSpace(draft.Image)

	fields, err := validationDetails(validate.Validate(draft))
	if err != nil {
		return err
	}
	if requireImage && draft.Image == "" {
		fields["image"] = "is required"
	}
	if _, dup := draft.DuplicateIngredientID(); dup {
		if _, set := fields["ingredients"]; !set {
			fields["ingredients"] = "must not repeat id"
		}
	}
	if _, dup := draft.DuplicateTagID(); dup {
		if _, set := fields["tags"]; !set {
			fields["tags"] = "must not contain duplicates"
		}
	}
	if len(fields) > 0 {
		return domainerrors.ValidationWithDetails("validation failed", fields)
	}

	missing, err := s.store.MissingIngredientIDs(ctx, draft.IngredientIDs())
	if err != nil {
		return fmt.Errorf("check ingredients: %w", err)
	}
	if len(missing) > 0 {
		return domainerrors.NotFoundf("ingredient %d not found", missing[0]).
			WithDetails(map[string]any{"ingredients": missing})
	}

	missing, err = s.store.MissingTagIDs(ctx, draft.Tags)
	if err != nil {
		return fmt.Errorf("check tags: %w", err)
	}
	if len(missing) > 0 {
		return domainerrors.NotFoundf("tag %d not found", missing[0]).
			WithDetails(map[string]any{"tags": missing})
	}

	return nil
}

// storedImage is the image a recipe will reference. Name is set only for
// files written by this request, so they can be removed if the write fails.
type storedImage struct {
	Name     string
	URL      string
	BlurHash string
}

// resolveImage stores an inline data URI and returns its public URL. Any
// other value is kept as a reference.
func (s *RecipeService) resolveImage(raw string) (storedImage, error) {
	if !images.IsDataURI(raw) {
		return storedImage{URL: raw}, nil
	}
	if s.images == nil {
		return storedImage{}, domainerrors.ValidationWithDetails("validation failed", map[string]string{
			"image": "uploads are not enabled",
		})
	}

	saved, err := s.images.SaveDataURI(raw)
	if err != nil {
		if errors.Is(err, images.ErrInvalidImage) {
			return storedImage{}, domainerrors.ValidationWithDetails("validation failed", map[string]string{
				"image": "must be a base64 encoded PNG, JPEG, GIF or WebP image",
			}).WithCause(err)
		}
		return storedImage{}, fmt.Errorf("store image: %w", err)
	}
	return storedImage{Name: saved.Name, URL: saved.URL, BlurHash: saved.BlurHash}, nil
}

// discardImage removes a file written for a request whose write failed.
func (s *RecipeService) discardImage(img storedImage) {
	if img.Name == "" || s.images == nil {
		return
	}
	if err := s.images.Delete(img.Name); err != nil {
		s.logger.Warn("failed to remove orphaned image", "name", img.Name, "error", err)
	}
}

// removeImageURL deletes a stored image no recipe references any more.
func (s *RecipeService) removeImageURL(url string) {
	if url == "" || s.images == nil {
		return
	}
	if err := s.images.DeleteURL(url); err != nil {
		s.logger.Warn("failed to remove recipe image", "url", url, "error", err)
	}
}

// reloadView reads a freshly written recipe back, indexes it and builds the
// actor's view of it.
func (s *RecipeService) reloadView(ctx context.Context, actor domain.Actor, recipeID int64) (*RecipeView, error) {
	recipe, err := s.store.GetRecipe(ctx, recipeID)
	if err != nil {
		return nil, translateStoreErr(err, "recipe")
	}
	s.search.IndexRecipe(recipe)

	views, err := buildRecipeViews(ctx, s.store, actor, []*domain.Recipe{recipe})
	if err != nil {
		return nil, err
	}
	return views[0], nil
}

func draftLines(draft domain.RecipeDraft) []domain.RecipeIngredient {
	lines := make([]domain.RecipeIngredient, len(draft.Ingredients))
	for i, in := range draft.Ingredients {
		lines[i] = domain.RecipeIngredient{IngredientID: in.ID, Amount: in.Amount}
	}
	return lines
}

func draftTags(draft domain.RecipeDraft) []domain.Tag {
	tags := make([]domain.Tag, len(draft.Tags))
	for i, id := range draft.Tags {
		tags[i] = domain.Tag{ID: id}
	}
	return tags
}

// buildRecipeViews annotates recipes for the actor: favorite and cart flags
// and the author with the actor's subscription state. Anonymous actors see
// every flag false.
func buildRecipeViews(ctx context.Context, st store.Store, actor domain.Actor, recipes []*domain.Recipe) ([]*RecipeView, error) {
	if len(recipes) == 0 {
		return []*RecipeView{}, nil
	}

	ids := make([]int64, len(recipes))
	var authorIDs []int64
	seen := make(map[int64]bool)
	for i, r := range recipes {
		ids[i] = r.ID
		if !seen[r.AuthorID] {
			seen[r.AuthorID] = true
			authorIDs = append(authorIDs, r.AuthorID)
		}
	}

	favorites, cart := map[int64]bool{}, map[int64]bool{}
	if actor.Authenticated {
		var err error
		if favorites, err = st.RelatedRecipeIDs(ctx, domain.RelationFavorite, actor.UserID, ids); err != nil {
			return nil, fmt.Errorf("load favorites: %w", err)
		}
		if cart, err = st.RelatedRecipeIDs(ctx, domain.RelationCart, actor.UserID, ids); err != nil {
			return nil, fmt.Errorf("load cart: %w", err)
		}
	}

	users, err := st.GetUsersByIDs(ctx, authorIDs)
	if err != nil {
		return nil, fmt.Errorf("load authors: %w", err)
	}
	userList := make([]*domain.User, 0, len(users))
	for _, id := range authorIDs {
		if u, ok := users[id]; ok {
			userList = append(userList, u)
		}
	}
	authors, err := annotateAuthors(ctx, st, actor, userList)
	if err != nil {
		return nil, err
	}
	authorByID := make(map[int64]*domain.Author, len(authors))
	for _, a := range authors {
		authorByID[a.ID] = a
	}

	views := make([]*RecipeView, len(recipes))
	for i, r := range recipes {
		views[i] = &RecipeView{
			ID:               r.ID,
			Tags:             r.Tags,
			Author:           authorByID[r.AuthorID],
			Ingredients:      r.Ingredients,
			IsFavorited:      favorites[r.ID],
			IsInShoppingCart: cart[r.ID],
			Name:             r.Name,
			Image:            r.Image,
			ImageBlurHash:    r.ImageBlurHash,
			Text:             r.Text,
			CookingTime:      r.CookingTime,
			CreatedAt:        r.CreatedAt,
		}
	}
	return views, nil
}
