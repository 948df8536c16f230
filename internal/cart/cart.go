// Package cart is the per-session catalog and cart engine. A State holds a
// credit balance and three disjoint item lists: items still for sale, items
// the session owns, and items re-listed second hand. Every operation moves
// one item between lists; no item is ever in two lists.
//
// A State is not safe for concurrent use.
package cart

import (
	"errors"
	"strings"
)

var (
	ErrInsufficientCredits = errors.New("not enough credits")
	ErrNotAvailable        = errors.New("item is not for sale")
	ErrNotOwned            = errors.New("item is not owned")
	ErrNotForResale        = errors.New("item is not on the secondhand market")
)

// resalePercent is the share of the price paid back on resale.
const resalePercent = 80

type Item struct {
	ID    string
	Name  string
	Image string
	Price int
}

type State struct {
	credits   int
	available []Item
	owned     []Item
	resale    []Item
}

// New starts a session with the given balance. Catalogs are concatenated in
// order; when an ID repeats only its first occurrence is kept.
func New(credits int, catalogs ...[]Item) *State {
	s := &State{credits: credits}
	seen := make(map[string]struct{})
	for _, catalog := range catalogs {
		for _, it := range catalog {
			if _, dup := seen[it.ID]; dup {
				continue
			}
			seen[it.ID] = struct{}{}
			s.available = append(s.available, it)
		}
	}
	return s
}

// ResalePrice is floor(price * 0.8) for non-negative prices.
func ResalePrice(price int) int {
	return price * resalePercent / 100
}

// Buy moves an item from the shop to the owned list. Nothing changes on error.
func (s *State) Buy(id string) (Item, error) {
	i := indexOf(s.available, id)
	if i < 0 {
		return Item{}, ErrNotAvailable
	}
	it := s.available[i]
	if s.credits < it.Price {
		return Item{}, ErrInsufficientCredits
	}

	s.credits -= it.Price
	s.available = removeAt(s.available, i)
	s.owned = append(s.owned, it)
	return it, nil
}

// Resell lists an owned item on the secondhand market at ResalePrice and
// pays the seller immediately.
func (s *State) Resell(id string) (Item, error) {
	i := indexOf(s.owned, id)
	if i < 0 {
		return Item{}, ErrNotOwned
	}
	it := s.owned[i]
	it.Price = ResalePrice(it.Price)

	s.owned = removeAt(s.owned, i)
	s.resale = append(s.resale, it)
	s.credits += it.Price
	return it, nil
}

// BuySecondHand buys an item back from the secondhand market at its
// discounted price.
func (s *State) BuySecondHand(id string) (Item, error) {
	i := indexOf(s.resale, id)
	if i < 0 {
		return Item{}, ErrNotForResale
	}
	it := s.resale[i]
	if s.credits < it.Price {
		return Item{}, ErrInsufficientCredits
	}

	s.credits -= it.Price
	s.resale = removeAt(s.resale, i)
	s.owned = append(s.owned, it)
	return it, nil
}

// Filter returns available items whose name contains term, ignoring case.
// The term is matched as given, whitespace included; an empty term matches
// everything.
func (s *State) Filter(term string) []Item {
	term = strings.ToLower(term)
	out := make([]Item, 0, len(s.available))
	for _, it := range s.available {
		if strings.Contains(strings.ToLower(it.Name), term) {
			out = append(out, it)
		}
	}
	return out
}

func (s *State) Credits() int { return s.credits }

func (s *State) Available() []Item { return clone(s.available) }

func (s *State) Owned() []Item { return clone(s.owned) }

func (s *State) Resale() []Item { return clone(s.resale) }

// OwnedTotal is the sum of the prices of owned items.
func (s *State) OwnedTotal() int {
	total := 0
	for _, it := range s.owned {
		total += it.Price
	}
	return total
}

func indexOf(items []Item, id string) int {
	for i, it := range items {
		if it.ID == id {
			return i
		}
	}
	return -1
}

func removeAt(items []Item, i int) []Item {
	return append(items[:i:i], items[i+1:]...)
}

func clone(items []Item) []Item {
	out := make([]Item, len(items))
	copy(out, items)
	return out
}
