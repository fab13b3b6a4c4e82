package counterparty

import (
	"context"
	"testing"
)

func testPool() []Counterparty {
	return []Counterparty{
		{Name: "TechCorp Industries", Contact: "procurement@techcorp.com", CreditScore: 9.2, PastPurchases: 45, PreferredCategories: []string{"Electronics", "Home"}},
		{Name: "GlobalSupply Ltd", Contact: "buyers@globalsupply.com", CreditScore: 8.7, PastPurchases: 67, PreferredCategories: []string{"Electronics", "Clothing"}},
		{Name: "MegaRetail Chain", Contact: "wholesale@megaretail.com", CreditScore: 8.9, PastPurchases: 123, PreferredCategories: []string{"Clothing", "Home", "Books"}},
		{Name: "InnovateTech Co", Contact: "purchasing@innovatetech.com", CreditScore: 7.8, PastPurchases: 23, PreferredCategories: []string{"Electronics"}},
		{Name: "BookWorld Wholesale", Contact: "wholesale@bookworld.com", CreditScore: 7.2, PastPurchases: 78, PreferredCategories: []string{"Books"}},
		{Name: "FlexiSupply Solutions", Contact: "sales@flexisupply.com", CreditScore: 9.1, PastPurchases: 89, PreferredCategories: []string{"Electronics", "Home", "Clothing"}},
	}
}

func TestRank_FiltersThresholdAndCategory(t *testing.T) {
	r := NewRanker(NewStaticRegistry(testPool()), 7.5)

	ranked, err := r.Rank(context.Background(), "Electronics", 10)
	if err != nil {
		t.Fatal(err)
	}

	for _, c := range ranked {
		if c.CreditScore < 7.5 {
			t.Errorf("%s below credit threshold: %f", c.Name, c.CreditScore)
		}
		if !c.Prefers("Electronics") {
			t.Errorf("%s does not buy Electronics", c.Name)
		}
	}
	// BookWorld has 7.2 credit, MegaRetail does not buy Electronics.
	if len(ranked) != 4 {
		t.Errorf("expected 4 eligible counterparties, got %d", len(ranked))
	}
}

func TestRank_OrdersByRankScoreDescending(t *testing.T) {
	r := NewRanker(NewStaticRegistry(testPool()), 7.5)

	ranked, err := r.Rank(context.Background(), "Electronics", 10)
	if err != nil {
		t.Fatal(err)
	}
	for i := 1; i < len(ranked); i++ {
		if ranked[i-1].RankScore() < ranked[i].RankScore() {
			t.Errorf("rank order violated at %d: %f < %f", i, ranked[i-1].RankScore(), ranked[i].RankScore())
		}
	}
	// FlexiSupply: 9.1 + 89/100 = 9.99, the highest rank score in the pool.
	if ranked[0].Name != "FlexiSupply Solutions" {
		t.Errorf("expected FlexiSupply Solutions first, got %s", ranked[0].Name)
	}
}

func TestRank_TiesKeepRegistryOrder(t *testing.T) {
	pool := []Counterparty{
		{Name: "First", CreditScore: 8.0, PastPurchases: 0, PreferredCategories: []string{"Home"}},
		{Name: "Second", CreditScore: 8.0, PastPurchases: 0, PreferredCategories: []string{"Home"}},
		{Name: "Third", CreditScore: 8.0, PastPurchases: 0, PreferredCategories: []string{"Home"}},
	}
	r := NewRanker(NewStaticRegistry(pool), 7.5)

	ranked, err := r.Rank(context.Background(), "Home", 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(ranked) != 3 {
		t.Fatalf("expected 3, got %d", len(ranked))
	}
	for i, want := range []string{"First", "Second", "Third"} {
		if ranked[i].Name != want {
			t.Errorf("position %d: expected %s, got %s", i, want, ranked[i].Name)
		}
	}
}

func TestRank_RespectsLimit(t *testing.T) {
	r := NewRanker(NewStaticRegistry(testPool()), 7.5)

	ranked, err := r.Rank(context.Background(), "Electronics", 3)
	if err != nil {
		t.Fatal(err)
	}
	if len(ranked) != 3 {
		t.Errorf("expected limit of 3, got %d", len(ranked))
	}
}

func TestRank_EmptyWhenNoneEligible(t *testing.T) {
	r := NewRanker(NewStaticRegistry(testPool()), 9.9)

	ranked, err := r.Rank(context.Background(), "Electronics", 5)
	if err != nil {
		t.Fatal(err)
	}
	if len(ranked) != 0 {
		t.Errorf("expected no eligible counterparties, got %d", len(ranked))
	}
}
