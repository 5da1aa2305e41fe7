package items

import (
	"context"
	"sort"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/angelmondragon/stashkeeper-backend/internal/filters"
	"github.com/angelmondragon/stashkeeper-backend/internal/storetest"
	"github.com/angelmondragon/stashkeeper-backend/pkg/auth"
	"github.com/angelmondragon/stashkeeper-backend/pkg/cache"
	"github.com/angelmondragon/stashkeeper-backend/pkg/db"
	"github.com/angelmondragon/stashkeeper-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/stashkeeper-backend/pkg/errors"
)

type fixture struct {
	svc    Service
	owner  uuid.UUID
	repo   *Repository
	client *db.Client
	cache  *cache.Cache
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	client := storetest.Open(t)
	owner := uuid.New()
	repo := NewRepository(client.DB())
	c := cache.New(cache.NewMemoryBackend(), cache.Options{})
	svc, err := NewService(repo, client, c, auth.StaticUser(owner), nil)
	require.NoError(t, err)
	return fixture{svc: svc, owner: owner, repo: repo, client: client, cache: c}
}

func strPtr(s string) *string { return &s }

func (f fixture) create(t *testing.T, name string, category enums.CardCategory) *ItemDTO {
	t.Helper()
	item, err := f.svc.Create(context.Background(), CreateItemInput{Name: name, Category: string(category)})
	require.NoError(t, err)
	return item
}

func TestCreateNormalisesMoneyAndNumbers(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	first, err := f.svc.Create(ctx, CreateItemInput{
		Name:          " 1986 Fleer Jordan ",
		Category:      "basketball",
		PurchasePrice: strPtr("120.5"),
		CurrentValue:  strPtr(""),
	})
	require.NoError(t, err)
	assert.Equal(t, int64(1), first.ItemNumber)
	assert.Equal(t, "1986 Fleer Jordan", first.Name)
	assert.Equal(t, enums.CardCategoryBasketball, first.Category)
	assert.Equal(t, enums.ItemStatusCollection, first.Status)
	require.NotNil(t, first.PurchasePrice)
	assert.Equal(t, "120.50", *first.PurchasePrice)
	assert.Nil(t, first.CurrentValue)

	second := f.create(t, "Charizard", enums.CardCategoryTCG)
	assert.Equal(t, int64(2), second.ItemNumber)

	loaded, err := f.svc.Get(ctx, first.ID)
	require.NoError(t, err)
	assert.Equal(t, "120.50", *loaded.PurchasePrice)
	assert.Nil(t, loaded.CurrentValue)
}

func TestCreateRejectsInvalidInput(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.Create(ctx, CreateItemInput{Name: "x", Category: "TCG", PurchasePrice: strPtr("-3")})
	require.True(t, pkgerrors.Is(err, pkgerrors.CodeValidation))
	assert.Equal(t, map[string]string{"purchase_price": "must not be negative"}, pkgerrors.As(err).Details())

	_, err = f.svc.Create(ctx, CreateItemInput{Name: "x", Category: "CURLING"})
	require.True(t, pkgerrors.Is(err, pkgerrors.CodeValidation))

	_, err = f.svc.Create(ctx, CreateItemInput{Category: "TCG"})
	require.True(t, pkgerrors.Is(err, pkgerrors.CodeValidation))
	assert.Equal(t, map[string]string{"name": "is required"}, pkgerrors.As(err).Details())
}

func TestOtherOwnersItemsAreNotFound(t *testing.T) {
	f := newFixture(t)
	item := f.create(t, "Griffey", enums.CardCategoryBaseball)

	stranger, err := NewService(f.repo, f.client, f.cache, auth.StaticUser(uuid.New()), nil)
	require.NoError(t, err)

	_, err = stranger.Get(context.Background(), item.ID)
	assert.True(t, pkgerrors.Is(err, pkgerrors.CodeNotFound))

	_, err = stranger.Update(context.Background(), item.ID, UpdateItemInput{Name: strPtr("mine now")})
	assert.True(t, pkgerrors.Is(err, pkgerrors.CodeNotFound))

	ok, err := stranger.Delete(context.Background(), item.ID)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestListFiltersAndOrdering(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.create(t, "Mantle Topps", enums.CardCategoryBaseball)
	f.create(t, "Gretzky Rookie", enums.CardCategoryHockey)
	f.create(t, "Ohtani Rookie", enums.CardCategoryBaseball)

	page, err := f.svc.List(ctx, filters.Filter{})
	require.NoError(t, err)
	require.Len(t, page.Items, 3)
	assert.Equal(t, []int64{3, 2, 1}, []int64{page.Items[0].ItemNumber, page.Items[1].ItemNumber, page.Items[2].ItemNumber})

	page, err = f.svc.List(ctx, filters.Filter{Dimension: "BASEBALL"})
	require.NoError(t, err)
	assert.Len(t, page.Items, 2)

	page, err = f.svc.List(ctx, filters.Filter{Search: "rookie", Dimension: "ALL"})
	require.NoError(t, err)
	assert.Len(t, page.Items, 2)

	page, err = f.svc.List(ctx, filters.Filter{Status: "SOLD"})
	require.NoError(t, err)
	assert.Empty(t, page.Items)

	page, err = f.svc.List(ctx, filters.Filter{PageSize: 2})
	require.NoError(t, err)
	assert.True(t, page.HasNext)
	assert.Equal(t, int64(3), page.Total)

	_, err = f.svc.List(ctx, filters.Filter{Status: "LOST"})
	assert.True(t, pkgerrors.Is(err, pkgerrors.CodeValidation))
}

func TestUpdateInvalidatesCachedReads(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	item := f.create(t, "Brady Rookie", enums.CardCategoryFootball)

	_, err := f.svc.Get(ctx, item.ID)
	require.NoError(t, err)
	collection, err := f.svc.List(ctx, filters.Filter{Status: "COLLECTION"})
	require.NoError(t, err)
	require.Len(t, collection.Items, 1)
	forSale, err := f.svc.List(ctx, filters.Filter{Status: "FOR_SALE"})
	require.NoError(t, err)
	require.Empty(t, forSale.Items)

	status := enums.ItemStatusForSale
	updated, err := f.svc.Update(ctx, item.ID, UpdateItemInput{
		Status:       &status,
		CurrentValue: strPtr("999.999"),
		Grade:        strPtr("PSA 10"),
	})
	require.NoError(t, err)
	assert.Equal(t, "1000.00", *updated.CurrentValue)

	got, err := f.svc.Get(ctx, item.ID)
	require.NoError(t, err)
	assert.Equal(t, enums.ItemStatusForSale, got.Status)
	require.NotNil(t, got.Grade)
	assert.Equal(t, "PSA 10", *got.Grade)

	collection, err = f.svc.List(ctx, filters.Filter{Status: "COLLECTION"})
	require.NoError(t, err)
	assert.Empty(t, collection.Items)
	forSale, err = f.svc.List(ctx, filters.Filter{Status: "FOR_SALE"})
	require.NoError(t, err)
	assert.Len(t, forSale.Items, 1)

	updated, err = f.svc.Update(ctx, item.ID, UpdateItemInput{CurrentValue: strPtr(""), Grade: strPtr("")})
	require.NoError(t, err)
	assert.Nil(t, updated.CurrentValue)
	assert.Nil(t, updated.Grade)
}

func TestDeleteNeverReusesNumbers(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.create(t, "a", enums.CardCategoryOther)
	second := f.create(t, "b", enums.CardCategoryOther)

	_, err := f.svc.Get(ctx, second.ID)
	require.NoError(t, err)

	ok, err := f.svc.Delete(ctx, second.ID)
	require.NoError(t, err)
	assert.True(t, ok)

	_, err = f.svc.Get(ctx, second.ID)
	assert.True(t, pkgerrors.Is(err, pkgerrors.CodeNotFound))

	ok, err = f.svc.Delete(ctx, second.ID)
	require.NoError(t, err)
	assert.False(t, ok)

	third := f.create(t, "c", enums.CardCategoryOther)
	assert.Equal(t, int64(3), third.ItemNumber)
}

func TestConcurrentCreatesGetDistinctNumbers(t *testing.T) {
	f := newFixture(t)
	const workers = 6

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		numbers []int64
	)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			item, err := f.svc.Create(context.Background(), CreateItemInput{Name: "card", Category: "TCG"})
			if err != nil {
				t.Errorf("create: %v", err)
				return
			}
			mu.Lock()
			numbers = append(numbers, item.ItemNumber)
			mu.Unlock()
		}()
	}
	wg.Wait()

	sort.Slice(numbers, func(i, j int) bool { return numbers[i] < numbers[j] })
	assert.Equal(t, []int64{1, 2, 3, 4, 5, 6}, numbers)
}
