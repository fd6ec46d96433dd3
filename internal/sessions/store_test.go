package sessions

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/imrishuroy/bonzicart-checkout/internal/checkout"
	"github.com/shopspring/decimal"
)

var t0 = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

// exerciseStore runs the behaviour every Store must share.
func exerciseStore(t *testing.T, s Store) {
	t.Helper()
	ctx := context.Background()

	sess := checkout.NewSession("s1", t0)
	if err := s.Create(ctx, sess); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if err := s.Create(ctx, sess); !errors.Is(err, ErrAlreadyExists) {
		t.Fatalf("second Create = %v, want ErrAlreadyExists", err)
	}

	got, err := s.Get(ctx, "s1")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Active != checkout.SectionSummary || got.Form.State != checkout.DefaultState {
		t.Fatalf("unexpected session %+v", got)
	}

	// a second reader holding the same version loses the race
	stale, _ := s.Get(ctx, "s1")

	if err := got.SetField(checkout.FieldEmail, "a@b.co"); err != nil {
		t.Fatalf("SetField: %v", err)
	}
	got.Coupon = checkout.Coupon{Code: "SAVE10", Applied: true, DiscountAmount: decimal.RequireFromString("18.15")}
	if err := s.Save(ctx, got); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if got.Version != 1 {
		t.Fatalf("version after save = %d, want 1", got.Version)
	}

	stale.ToggleSummary()
	if err := s.Save(ctx, stale); !errors.Is(err, ErrVersionConflict) {
		t.Fatalf("stale Save = %v, want ErrVersionConflict", err)
	}

	reread, err := s.Get(ctx, "s1")
	if err != nil {
		t.Fatalf("Get after save: %v", err)
	}
	if reread.Form.Email != "a@b.co" || reread.Version != 1 || reread.ShowSummary {
		t.Fatalf("reread = %+v", reread)
	}
	if !reread.Coupon.DiscountAmount.Equal(decimal.RequireFromString("18.15")) {
		t.Fatalf("discount = %s", reread.Coupon.DiscountAmount)
	}

	if err := s.Delete(ctx, "s1"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := s.Get(ctx, "s1"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("Get after delete = %v, want ErrNotFound", err)
	}
}

func TestMemoryStore(t *testing.T) {
	exerciseStore(t, NewMemoryStore(time.Hour))
}

func TestDynamoStore(t *testing.T) {
	exerciseStore(t, NewDynamoStore(newMockDynamo(), "sessions", time.Hour))
}

func TestMemoryStore_ReturnsCopies(t *testing.T) {
	s := NewMemoryStore(0)
	ctx := context.Background()
	sess := checkout.NewSession("s1", t0)
	_ = s.Create(ctx, sess)

	got, _ := s.Get(ctx, "s1")
	got.Errors[checkout.FieldEmail] = "Email is required"
	got.Active = checkout.SectionPayment

	again, _ := s.Get(ctx, "s1")
	if len(again.Errors) != 0 || again.Active != checkout.SectionSummary {
		t.Fatalf("store state leaked through a returned session: %+v", again)
	}
}

func TestMemoryStore_Expiry(t *testing.T) {
	now := t0
	s := NewMemoryStore(30 * time.Minute)
	s.nowFunc = func() time.Time { return now }
	ctx := context.Background()

	sess := checkout.NewSession("s1", now)
	_ = s.Create(ctx, sess)

	now = now.Add(20 * time.Minute)
	if err := s.Save(ctx, sess); err != nil {
		t.Fatalf("Save: %v", err)
	}
	// the save pushed expiry out
	now = now.Add(20 * time.Minute)
	if _, err := s.Get(ctx, "s1"); err != nil {
		t.Fatalf("Get before expiry: %v", err)
	}
	now = now.Add(time.Hour)
	if _, err := s.Get(ctx, "s1"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("Get after expiry = %v, want ErrNotFound", err)
	}
	if err := s.Save(ctx, sess); !errors.Is(err, ErrNotFound) {
		t.Fatalf("Save after expiry = %v, want ErrNotFound", err)
	}
}

func TestDynamoStore_ItemShape(t *testing.T) {
	mock := newMockDynamo()
	s := NewDynamoStore(mock, "sessions", time.Hour)
	s.nowFunc = func() time.Time { return t0 }

	if err := s.Create(context.Background(), checkout.NewSession("s1", t0)); err != nil {
		t.Fatalf("Create: %v", err)
	}
	item := mock.items["s1"]
	exp, ok := item["expires_at"].(*types.AttributeValueMemberN)
	if !ok {
		t.Fatalf("expires_at missing or not numeric: %+v", item["expires_at"])
	}
	if want := "1772370000"; exp.Value != want {
		t.Fatalf("expires_at = %s, want %s", exp.Value, want)
	}
	if _, ok := item["state"].(*types.AttributeValueMemberS); !ok {
		t.Fatalf("state should be a JSON string attribute")
	}
}

func TestDynamoStore_ExpiredItemIsNotFound(t *testing.T) {
	now := t0
	s := NewDynamoStore(newMockDynamo(), "sessions", time.Minute)
	s.nowFunc = func() time.Time { return now }
	_ = s.Create(context.Background(), checkout.NewSession("s1", now))

	now = now.Add(2 * time.Minute)
	if _, err := s.Get(context.Background(), "s1"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("Get = %v, want ErrNotFound", err)
	}
}
