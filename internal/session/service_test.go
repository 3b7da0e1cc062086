package session

import (
	"context"
	"testing"

	"gorm.io/gorm"

	"github.com/roadcasehq/merchtable-backend/pkg/db/models"
	pkgerrors "github.com/roadcasehq/merchtable-backend/pkg/errors"
)

func intPtr(v int) *int { return &v }

type memStore struct {
	docs map[string]*Document
}

func newMemStore() *memStore {
	return &memStore{docs: map[string]*Document{}}
}

func (m *memStore) Load(ctx context.Context, userID string) (*Document, error) {
	doc, ok := m.docs[userID]
	if !ok {
		return nil, nil
	}
	copied := *doc
	copied.Items = append([]Item(nil), doc.Items...)
	return &copied, nil
}

func (m *memStore) Save(ctx context.Context, userID string, doc *Document) error {
	copied := *doc
	copied.Items = append([]Item(nil), doc.Items...)
	m.docs[userID] = &copied
	return nil
}

func (m *memStore) Delete(ctx context.Context, userID string) error {
	delete(m.docs, userID)
	return nil
}

type stubMerchLoader struct {
	items map[string]*models.Merchandise
}

func (s *stubMerchLoader) GetByID(ctx context.Context, id string) (*models.Merchandise, error) {
	if merch, ok := s.items[id]; ok {
		return merch, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func newTestService(t *testing.T, merch map[string]*models.Merchandise) (Service, *memStore) {
	t.Helper()
	store := newMemStore()
	svc, err := NewService(store, &stubMerchLoader{items: merch})
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return svc, store
}

func TestAddInsertsAndReAddOverwritesQuantity(t *testing.T) {
	t.Parallel()

	svc, _ := newTestService(t, map[string]*models.Merchandise{
		"shirt": {ID: "shirt", Name: "Tour Shirt", PriceCents: 2500, Stock: intPtr(100)},
	})
	ctx := context.Background()

	doc, err := svc.Add(ctx, "u1", "shirt", 2)
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	if len(doc.Items) != 1 || doc.Items[0].Quantity != 2 {
		t.Fatalf("unexpected doc after add: %+v", doc)
	}

	doc, err = svc.Add(ctx, "u1", "shirt", 5)
	if err != nil {
		t.Fatalf("re-add: %v", err)
	}
	if len(doc.Items) != 1 {
		t.Fatalf("re-add duplicated entry: %+v", doc.Items)
	}
	if doc.Items[0].Quantity != 5 {
		t.Fatalf("re-add did not overwrite quantity: %+v", doc.Items[0])
	}
}

func TestAddRejectsNonPositiveQuantity(t *testing.T) {
	t.Parallel()

	svc, _ := newTestService(t, map[string]*models.Merchandise{
		"shirt": {ID: "shirt", PriceCents: 2500, Stock: intPtr(10)},
	})

	for _, qty := range []int{0, -1} {
		_, err := svc.Add(context.Background(), "u1", "shirt", qty)
		if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeValidation {
			t.Fatalf("qty %d: expected validation error, got %v", qty, err)
		}
	}
}

func TestAddRejectsQuantityOverStock(t *testing.T) {
	t.Parallel()

	svc, _ := newTestService(t, map[string]*models.Merchandise{
		"poster": {ID: "poster", PriceCents: 1000, Stock: intPtr(5)},
	})

	_, err := svc.Add(context.Background(), "u1", "poster", 10)
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeInsufficientStock {
		t.Fatalf("expected insufficient stock, got %v", err)
	}
}

func TestAddAllowsAnyQuantityForUntrackedStock(t *testing.T) {
	t.Parallel()

	svc, _ := newTestService(t, map[string]*models.Merchandise{
		"download": {ID: "download", PriceCents: 500, Stock: nil},
	})

	doc, err := svc.Add(context.Background(), "u1", "download", 9999)
	if err != nil {
		t.Fatalf("add untracked: %v", err)
	}
	if doc.Items[0].Quantity != 9999 {
		t.Fatalf("unexpected quantity: %+v", doc.Items[0])
	}
}

func TestAddUnknownMerchandise(t *testing.T) {
	t.Parallel()

	svc, _ := newTestService(t, map[string]*models.Merchandise{})

	_, err := svc.Add(context.Background(), "u1", "missing", 1)
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeMerchNotFound {
		t.Fatalf("expected merch not found, got %v", err)
	}
}

func TestUpdateRequiresExistingEntry(t *testing.T) {
	t.Parallel()

	svc, _ := newTestService(t, map[string]*models.Merchandise{
		"shirt": {ID: "shirt", PriceCents: 2500, Stock: intPtr(10)},
	})

	_, err := svc.Update(context.Background(), "u1", "shirt", 3)
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeNotInSession {
		t.Fatalf("expected not-in-session, got %v", err)
	}
}

func TestRemoveIsIdempotent(t *testing.T) {
	t.Parallel()

	svc, _ := newTestService(t, map[string]*models.Merchandise{
		"shirt": {ID: "shirt", PriceCents: 2500, Stock: intPtr(10)},
	})
	ctx := context.Background()

	if _, err := svc.Add(ctx, "u1", "shirt", 1); err != nil {
		t.Fatalf("add: %v", err)
	}
	doc, err := svc.Remove(ctx, "u1", "shirt")
	if err != nil {
		t.Fatalf("remove: %v", err)
	}
	if !doc.Empty() {
		t.Fatalf("expected empty session, got %+v", doc.Items)
	}

	// removing again must not fail
	if _, err := svc.Remove(ctx, "u1", "shirt"); err != nil {
		t.Fatalf("second remove: %v", err)
	}
	if _, err := svc.Remove(ctx, "u1", "never-added"); err != nil {
		t.Fatalf("remove of absent id: %v", err)
	}
}

func TestClearEmptiesSession(t *testing.T) {
	t.Parallel()

	svc, store := newTestService(t, map[string]*models.Merchandise{
		"shirt":  {ID: "shirt", PriceCents: 2500, Stock: intPtr(10)},
		"poster": {ID: "poster", PriceCents: 1000, Stock: intPtr(10)},
	})
	ctx := context.Background()

	if _, err := svc.Add(ctx, "u1", "shirt", 1); err != nil {
		t.Fatalf("add: %v", err)
	}
	if _, err := svc.Add(ctx, "u1", "poster", 2); err != nil {
		t.Fatalf("add: %v", err)
	}

	if err := svc.Clear(ctx, "u1"); err != nil {
		t.Fatalf("clear: %v", err)
	}
	if _, ok := store.docs["u1"]; ok {
		t.Fatal("expected session document deleted")
	}

	doc, err := svc.Get(ctx, "u1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if !doc.Empty() {
		t.Fatalf("expected empty session after clear, got %+v", doc.Items)
	}
}

func TestItemsEnrichWithLivePrices(t *testing.T) {
	t.Parallel()

	merch := map[string]*models.Merchandise{
		"shirt": {ID: "shirt", Name: "Tour Shirt", PriceCents: 2500, Stock: intPtr(100)},
	}
	svc, _ := newTestService(t, merch)
	ctx := context.Background()

	if _, err := svc.Add(ctx, "u1", "shirt", 3); err != nil {
		t.Fatalf("add: %v", err)
	}

	// price changes after the item was added; enrichment reflects it
	merch["shirt"].PriceCents = 3000

	items, err := svc.Items(ctx, "u1")
	if err != nil {
		t.Fatalf("items: %v", err)
	}
	if len(items) != 1 {
		t.Fatalf("expected 1 item, got %d", len(items))
	}
	if items[0].UnitPriceCents != 3000 {
		t.Fatalf("expected live price 3000, got %d", items[0].UnitPriceCents)
	}
	if items[0].SubtotalCents != 9000 {
		t.Fatalf("expected subtotal 9000, got %d", items[0].SubtotalCents)
	}
}

func TestInsertionOrderPreserved(t *testing.T) {
	t.Parallel()

	svc, _ := newTestService(t, map[string]*models.Merchandise{
		"a": {ID: "a", PriceCents: 100, Stock: intPtr(10)},
		"b": {ID: "b", PriceCents: 200, Stock: intPtr(10)},
		"c": {ID: "c", PriceCents: 300, Stock: intPtr(10)},
	})
	ctx := context.Background()

	for _, id := range []string{"b", "a", "c"} {
		if _, err := svc.Add(ctx, "u1", id, 1); err != nil {
			t.Fatalf("add %s: %v", id, err)
		}
	}
	// overwriting a quantity keeps the original position
	if _, err := svc.Add(ctx, "u1", "b", 4); err != nil {
		t.Fatalf("re-add b: %v", err)
	}

	doc, err := svc.Get(ctx, "u1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	want := []string{"b", "a", "c"}
	for i, id := range want {
		if doc.Items[i].MerchandiseID != id {
			t.Fatalf("position %d: want %s, got %s", i, id, doc.Items[i].MerchandiseID)
		}
	}
}
