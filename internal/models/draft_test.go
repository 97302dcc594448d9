package models

import "testing"

func TestDraftOrder_AddLineMergesByVariant(t *testing.T) {
	t.Parallel()

	draft := &DraftOrder{}
	draft.AddLine(DraftLine{VariantID: "v-l-less", Quantity: 1, UnitPrice: 3500})
	draft.AddLine(DraftLine{VariantID: "v-m-normal", Quantity: 2, UnitPrice: 3000})
	draft.AddLine(DraftLine{VariantID: "v-l-less", Quantity: 2, UnitPrice: 3500})

	if len(draft.Lines) != 2 {
		t.Fatalf("expected 2 lines, got %d", len(draft.Lines))
	}
	if draft.Lines[0].Quantity != 3 {
		t.Fatalf("expected merged quantity 3, got %d", draft.Lines[0].Quantity)
	}

	if !draft.RemoveLine("v-m-normal") {
		t.Fatalf("expected line to be removed")
	}
	if draft.RemoveLine("v-m-normal") {
		t.Fatalf("expected second remove to report missing line")
	}
	if draft.IsEmpty() {
		t.Fatalf("expected draft to still have a line")
	}
}

func TestCart_Count(t *testing.T) {
	t.Parallel()

	var empty *Cart
	if empty.Count() != 0 {
		t.Fatalf("expected nil cart to count 0")
	}

	cart := &Cart{Items: []CartItem{{Quantity: 2}, {Quantity: 3}}}
	if cart.Count() != 5 {
		t.Fatalf("expected 5, got %d", cart.Count())
	}
}
