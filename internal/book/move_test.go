package book

import (
	"testing"
)

func TestEncodeMove(t *testing.T) {
	// Test encoding and verify it round-trips correctly
	tests := []struct {
		name  string
		from  int
		to    int
		promo byte
	}{
		{"e2e4", 12, 28, PromoNone},
		{"e7e8q", 52, 60, PromoQueen},
		{"a1h8", 0, 63, PromoNone},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := EncodeMove(tt.from, tt.to, tt.promo)
			// Verify round trip
			from, to, promo := DecodeMove(got)
			if from != tt.from || to != tt.to || promo != tt.promo {
				t.Errorf("EncodeMove(%d, %d, %d) = %x, but decode gives (%d, %d, %d)",
					tt.from, tt.to, tt.promo, got, from, to, promo)
			}
		})
	}
}

func TestEncodeMove_OutOfRange(t *testing.T) {
	tests := []struct {
		name string
		from int
		to   int
	}{
		{"from negative", -1, 28},
		{"from too big", 64, 28},
		{"to negative", 12, -1},
		{"to too big", 12, 64},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := EncodeMove(tt.from, tt.to, PromoNone); got != 0 {
				t.Errorf("EncodeMove(%d, %d, 0) = %x, want 0", tt.from, tt.to, got)
			}
		})
	}
}

func TestDecodeMove(t *testing.T) {
	tests := []struct {
		name  string
		move  Move
		from  int
		to    int
		promo byte
	}{
		{"e2e4", EncodeMove(12, 28, PromoNone), 12, 28, PromoNone},
		{"e7e8q", EncodeMove(52, 60, PromoQueen), 52, 60, PromoQueen},
		{"a7a8r", EncodeMove(48, 56, PromoRook), 48, 56, PromoRook},
		{"h2h1b", EncodeMove(15, 7, PromoBishop), 15, 7, PromoBishop},
		{"b7b8n", EncodeMove(49, 57, PromoKnight), 49, 57, PromoKnight},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			from, to, promo := DecodeMove(tt.move)
			if from != tt.from || to != tt.to || promo != tt.promo {
				t.Errorf("DecodeMove(%x) = (%d, %d, %d), want (%d, %d, %d)",
					tt.move, from, to, promo, tt.from, tt.to, tt.promo)
			}
		})
	}
}

func TestMove_RoundTrip_AllPromotionsAllSquares(t *testing.T) {
	// Every promotion code paired with every square value in both the
	// from and to fields.
	promos := []byte{PromoNone, PromoKnight, PromoBishop, PromoRook, PromoQueen}
	for _, promo := range promos {
		for sq := 0; sq < 64; sq++ {
			from, to := sq, 63-sq
			move := EncodeMove(from, to, promo)
			gotFrom, gotTo, gotPromo := DecodeMove(move)
			if gotFrom != from || gotTo != to || gotPromo != promo {
				t.Fatalf("EncodeMove(%d, %d, %d) = %#04x, decodes to (%d, %d, %d)",
					from, to, promo, uint16(move), gotFrom, gotTo, gotPromo)
			}
		}
	}
}

func TestMove_BitLayout(t *testing.T) {
	// e7e8q: to=60 in bits 0-5, from=52 in bits 6-11, queen=4 in bits 12-14
	move := EncodeMove(52, 60, PromoQueen)
	want := Move(60 | 52<<6 | 4<<12)
	if move != want {
		t.Errorf("EncodeMove(52, 60, 4) = %#04x, want %#04x", uint16(move), uint16(want))
	}
	if uint16(move)&0x8000 != 0 {
		t.Errorf("bit 15 set in %#04x", uint16(move))
	}
}

func TestMove_Methods(t *testing.T) {
	move := EncodeMove(12, 28, PromoQueen)

	if move.FromSquare() != 12 {
		t.Errorf("FromSquare() = %d, want 12", move.FromSquare())
	}
	if move.ToSquare() != 28 {
		t.Errorf("ToSquare() = %d, want 28", move.ToSquare())
	}
	if move.Promotion() != PromoQueen {
		t.Errorf("Promotion() = %d, want %d", move.Promotion(), PromoQueen)
	}
}

func TestMove_UCI(t *testing.T) {
	tests := []struct {
		name string
		move Move
		want string
	}{
		{"e2e4", EncodeMove(12, 28, PromoNone), "e2e4"},
		{"e7e8q", EncodeMove(52, 60, PromoQueen), "e7e8q"},
		{"a7a8r", EncodeMove(48, 56, PromoRook), "a7a8r"},
		{"b7b8n", EncodeMove(49, 57, PromoKnight), "b7b8n"},
		{"c7c8b", EncodeMove(50, 58, PromoBishop), "c7c8b"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.move.UCI()
			if got != tt.want {
				t.Errorf("UCI() = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestMoveFromUCI(t *testing.T) {
	tests := []struct {
		name    string
		uci     string
		want    Move
		wantErr bool
	}{
		{"e2e4", "e2e4", EncodeMove(12, 28, PromoNone), false},
		{"e7e8q", "e7e8q", EncodeMove(52, 60, PromoQueen), false},
		{"a7a8r", "a7a8r", EncodeMove(48, 56, PromoRook), false},
		{"b7b8n", "b7b8n", EncodeMove(49, 57, PromoKnight), false},
		{"c7c8b", "c7c8b", EncodeMove(50, 58, PromoBishop), false},
		{"invalid", "xyz", 0, true},
		{"too short", "e2e", 0, true},
		{"bad promo", "e7e8k", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := MoveFromUCI(tt.uci)
			if (err != nil) != tt.wantErr {
				t.Errorf("MoveFromUCI(%s) error = %v, wantErr %v", tt.uci, err, tt.wantErr)
				return
			}
			if !tt.wantErr && got != tt.want {
				t.Errorf("MoveFromUCI(%s) = %x, want %x", tt.uci, got, tt.want)
			}
		})
	}
}

func TestMove_UCI_RoundTrip(t *testing.T) {
	testCases := []string{
		"e2e4",
		"e7e8q",
		"a1h8",
		"b7b8n",
		"c7c8b",
		"d7d8r",
	}

	for _, uci := range testCases {
		t.Run(uci, func(t *testing.T) {
			move, err := MoveFromUCI(uci)
			if err != nil {
				t.Fatalf("MoveFromUCI failed: %v", err)
			}
			got := move.UCI()
			if got != uci {
				t.Errorf("round trip failed: %s -> %x -> %s", uci, move, got)
			}
		})
	}
}
