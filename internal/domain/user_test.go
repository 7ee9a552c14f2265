package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestUser_IsAdmin(t *testing.T) {
	tests := []struct {
		name string
		user User
		want bool
	}{
		{"regular user", User{Role: RoleUser}, false},
		{"admin role", User{Role: RoleAdmin}, true},
		{"superuser without admin role", User{Role: RoleUser, IsSuperuser: true}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.user.IsAdmin())
		})
	}
}

func TestUser_FullName(t *testing.T) {
	assert.Equal(t, "Ada Lovelace", (&User{FirstName: "Ada", LastName: "Lovelace"}).FullName())
	assert.Equal(t, "Ada", (&User{FirstName: "Ada"}).FullName())
	assert.Equal(t, "Lovelace", (&User{LastName: "Lovelace"}).FullName())
}

func TestActor_CanModify(t *testing.T) {
	owner := &User{ID: 7, Role: RoleUser}
	other := &User{ID: 8, Role: RoleUser}
	admin := &User{ID: 9, Role: RoleAdmin}

	assert.True(t, ActorFor(owner).CanModify(7))
	assert.False(t, ActorFor(other).CanModify(7))
	assert.True(t, ActorFor(admin).CanModify(7))
	assert.False(t, Anonymous().CanModify(7))
	assert.False(t, Anonymous().CanModify(0), "anonymous never owns the zero id")
}

func TestRelationKind_Valid(t *testing.T) {
	assert.True(t, RelationFavorite.Valid())
	assert.True(t, RelationCart.Valid())
	assert.False(t, RelationKind("wishlist").Valid())
	assert.Equal(t, "shopping cart", RelationCart.Label())
	assert.Equal(t, "favorites", RelationFavorite.Label())
}

func TestRecipeDraft_IngredientIDs(t *testing.T) {
	d := RecipeDraft{Ingredients: []IngredientAmount{{ID: 3, Amount: 1}, {ID: 1, Amount: 2}}}
	assert.Equal(t, []int64{3, 1}, d.IngredientIDs())
}
