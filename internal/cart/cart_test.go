package cart_test

import (
	"math/rand"
	"testing"

	"github.com/ErlanBelekov/credit-market/internal/cart"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func item(id string, price int) cart.Item {
	return cart.Item{ID: id, Name: "Item " + id, Price: price}
}

func ids(items []cart.Item) []string {
	out := make([]string, len(items))
	for i, it := range items {
		out[i] = it.ID
	}
	return out
}

// assertPartition checks that every id appears in exactly one list.
func assertPartition(t *testing.T, s *cart.State, all []string) {
	t.Helper()
	count := make(map[string]int)
	for _, list := range [][]cart.Item{s.Available(), s.Owned(), s.Resale()} {
		for _, it := range list {
			count[it.ID]++
		}
	}
	for _, id := range all {
		assert.Equalf(t, 1, count[id], "item %s appears %d times", id, count[id])
	}
	assert.Len(t, count, len(all))
}

func TestNew_DedupesKeepingFirst(t *testing.T) {
	s := cart.New(100,
		[]cart.Item{item("a", 10), item("b", 20)},
		[]cart.Item{{ID: "a", Name: "dup", Price: 99}, item("c", 30)},
	)

	assert.Equal(t, []string{"a", "b", "c"}, ids(s.Available()))
	assert.Equal(t, 10, s.Available()[0].Price)
	assert.Equal(t, 100, s.Credits())
}

func TestBuy(t *testing.T) {
	s := cart.New(100, []cart.Item{item("a", 60)})

	got, err := s.Buy("a")
	require.NoError(t, err)
	assert.Equal(t, "a", got.ID)
	assert.Equal(t, 40, s.Credits())
	assert.Empty(t, s.Available())
	assert.Equal(t, []string{"a"}, ids(s.Owned()))
}

func TestBuy_InsufficientCredits_LeavesStateUnchanged(t *testing.T) {
	s := cart.New(100, []cart.Item{item("p", 150)})

	_, err := s.Buy("p")
	require.ErrorIs(t, err, cart.ErrInsufficientCredits)
	assert.Equal(t, 100, s.Credits())
	assert.Equal(t, []string{"p"}, ids(s.Available()))
	assert.Empty(t, s.Owned())
	assert.Empty(t, s.Resale())
}

func TestBuy_ExactBalanceSucceeds(t *testing.T) {
	s := cart.New(150, []cart.Item{item("p", 150)})

	_, err := s.Buy("p")
	require.NoError(t, err)
	assert.Zero(t, s.Credits())
}

func TestBuy_NotAvailable(t *testing.T) {
	s := cart.New(100, []cart.Item{item("a", 10)})
	_, err := s.Buy("missing")
	assert.ErrorIs(t, err, cart.ErrNotAvailable)

	_, err = s.Buy("a")
	require.NoError(t, err)
	_, err = s.Buy("a")
	assert.ErrorIs(t, err, cart.ErrNotAvailable)
	assert.Equal(t, 90, s.Credits())
}

func TestBuyThenResell_Arithmetic(t *testing.T) {
	for _, price := range []int{1, 4, 5, 10, 99, 150, 333, 10000} {
		s := cart.New(20000, []cart.Item{item("p", price)})
		before := s.Credits()

		_, err := s.Buy("p")
		require.NoError(t, err)
		listed, err := s.Resell("p")
		require.NoError(t, err)

		discounted := price * 8 / 10
		assert.Equal(t, before-(price-discounted), s.Credits(), "price %d", price)
		assert.Equal(t, discounted, listed.Price)
		require.Len(t, s.Resale(), 1)
		assert.Equal(t, discounted, s.Resale()[0].Price)
		assert.Empty(t, s.Owned())
	}
}

func TestResalePrice_Floors(t *testing.T) {
	assert.Equal(t, 0, cart.ResalePrice(1))
	assert.Equal(t, 3, cart.ResalePrice(4))
	assert.Equal(t, 4, cart.ResalePrice(5))
	assert.Equal(t, 119, cart.ResalePrice(149))
	assert.Equal(t, 120, cart.ResalePrice(150))
}

func TestResell_NotOwned(t *testing.T) {
	s := cart.New(100, []cart.Item{item("a", 10)})
	_, err := s.Resell("a")
	assert.ErrorIs(t, err, cart.ErrNotOwned)
	assert.Equal(t, 100, s.Credits())
}

func TestBuySecondHand(t *testing.T) {
	s := cart.New(100, []cart.Item{item("a", 50)})
	_, err := s.Buy("a")
	require.NoError(t, err)
	_, err = s.Resell("a")
	require.NoError(t, err)
	require.Equal(t, 90, s.Credits())

	got, err := s.BuySecondHand("a")
	require.NoError(t, err)
	assert.Equal(t, 40, got.Price)
	assert.Equal(t, 50, s.Credits())
	assert.Empty(t, s.Resale())
	assert.Equal(t, []string{"a"}, ids(s.Owned()))
	assert.Equal(t, 40, s.OwnedTotal())

	_, err = s.BuySecondHand("a")
	assert.ErrorIs(t, err, cart.ErrNotForResale)
}

func TestBuySecondHand_InsufficientCredits(t *testing.T) {
	s := cart.New(100, []cart.Item{item("a", 100), item("b", 10)})
	_, err := s.Buy("a")
	require.NoError(t, err)
	_, err = s.Resell("a")
	require.NoError(t, err)
	_, err = s.Buy("b")
	require.NoError(t, err)
	require.Equal(t, 70, s.Credits())

	_, err = s.BuySecondHand("a")
	require.ErrorIs(t, err, cart.ErrInsufficientCredits)
	assert.Equal(t, 70, s.Credits())
	assert.Equal(t, []string{"a"}, ids(s.Resale()))
	assert.Equal(t, []string{"b"}, ids(s.Owned()))
}

func TestFilter(t *testing.T) {
	s := cart.New(100, []cart.Item{
		{ID: "1", Name: "Vintage Camera", Price: 10},
		{ID: "2", Name: "camera strap", Price: 5},
		{ID: "3", Name: "Desk Lamp", Price: 7},
	})

	assert.Equal(t, []string{"1", "2"}, ids(s.Filter("CAMERA")))
	assert.Equal(t, []string{"3"}, ids(s.Filter("lamp")))
	assert.Len(t, s.Filter(""), 3)
	assert.Empty(t, s.Filter("phone"))

	_, err := s.Buy("1")
	require.NoError(t, err)
	assert.Equal(t, []string{"2"}, ids(s.Filter("camera")), "owned items are not listed")
	assert.Len(t, s.Available(), 2, "filter must not mutate")
}

func TestFilter_WhitespaceIsPartOfTerm(t *testing.T) {
	s := cart.New(100, []cart.Item{
		{ID: "1", Name: "Desk Lamp", Price: 7},
		{ID: "2", Name: "Keyboard", Price: 15},
	})

	assert.Equal(t, []string{"1"}, ids(s.Filter(" ")))
	assert.Equal(t, []string{"1"}, ids(s.Filter("K L")))
	assert.Empty(t, s.Filter(" keyboard"))
}

func TestAccessorsReturnCopies(t *testing.T) {
	s := cart.New(100, []cart.Item{item("a", 10)})
	avail := s.Available()
	avail[0].Price = 1

	assert.Equal(t, 10, s.Available()[0].Price)
}

func TestPartitionInvariant_RandomSequences(t *testing.T) {
	catalog := []cart.Item{item("a", 10), item("b", 25), item("c", 40), item("d", 75), item("e", 120)}
	all := ids(catalog)
	rng := rand.New(rand.NewSource(42))

	for run := 0; run < 50; run++ {
		s := cart.New(200, catalog)
		for step := 0; step < 40; step++ {
			id := all[rng.Intn(len(all))]
			before := s.Credits()

			var err error
			switch rng.Intn(3) {
			case 0:
				_, err = s.Buy(id)
			case 1:
				_, err = s.Resell(id)
			case 2:
				_, err = s.BuySecondHand(id)
			}
			if err != nil {
				assert.Equal(t, before, s.Credits(), "failed op changed credits")
			}
			assert.GreaterOrEqual(t, s.Credits(), 0)
			assertPartition(t, s, all)
		}
	}
}

func TestSeedCatalog(t *testing.T) {
	seed := cart.SeedCatalog()
	require.NotEmpty(t, seed)
	seen := map[string]bool{}
	for _, it := range seed {
		assert.False(t, seen[it.ID], "duplicate seed id %s", it.ID)
		seen[it.ID] = true
		assert.Positive(t, it.Price)
		assert.Contains(t, it.ID, "seed-")
	}
}
