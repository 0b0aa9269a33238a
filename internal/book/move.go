package book

import "fmt"

// Move encoding (uint16), identical to the move field of a book entry:
//   bits 0-5:   to square (0-63)
//   bits 6-11:  from square (0-63)
//   bits 12-14: promotion piece (0=none, 1=N, 2=B, 3=R, 4=Q)
//   bit 15:     reserved, always 0

const (
	moveToMask     = 0x003F // bits 0-5
	moveFromMask   = 0x0FC0 // bits 6-11
	movePromoMask  = 0x7000 // bits 12-14
	moveFromShift  = 6
	movePromoShift = 12
)

// Promotion piece codes as the book format numbers them.
const (
	PromoNone   = 0
	PromoKnight = 1
	PromoBishop = 2
	PromoRook   = 3
	PromoQueen  = 4
)

// Move packs from-square, to-square, and promotion piece into a uint16.
// Numeric order on Move equals byte-lexicographic order on its big-endian
// encoding, which is what the entry sort in this package relies on.
type Move uint16

// EncodeMove creates a Move from square indices and optional promotion.
// from, to: square indices 0-63 (A1=0, B1=1, ..., H8=63)
// promo: promotion piece (0=none, 1=N, 2=B, 3=R, 4=Q)
func EncodeMove(from, to int, promo byte) Move {
	if from < 0 || from > 63 || to < 0 || to > 63 {
		return 0
	}
	m := uint16(to) | (uint16(from) << moveFromShift) | (uint16(promo&7) << movePromoShift)
	return Move(m)
}

// DecodeMove extracts from square, to square, and promotion from a Move.
func DecodeMove(m Move) (from, to int, promo byte) {
	from = int((m & moveFromMask) >> moveFromShift)
	to = int(m & moveToMask)
	promo = byte((m & movePromoMask) >> movePromoShift)
	return from, to, promo
}

// FromSquare returns the source square index (0-63).
func (m Move) FromSquare() int {
	return int((m & moveFromMask) >> moveFromShift)
}

// ToSquare returns the destination square index (0-63).
func (m Move) ToSquare() int {
	return int(m & moveToMask)
}

// Promotion returns the promotion piece (0=none, 1=N, 2=B, 3=R, 4=Q).
func (m Move) Promotion() byte {
	return byte((m & movePromoMask) >> movePromoShift)
}

// UCI converts a Move to UCI notation (e.g., "e2e4", "e7e8q").
func (m Move) UCI() string {
	from := m.FromSquare()
	to := m.ToSquare()
	promo := m.Promotion()

	fromFile := byte('a' + (from % 8))
	fromRank := byte('1' + (from / 8))
	toFile := byte('a' + (to % 8))
	toRank := byte('1' + (to / 8))

	uci := string([]byte{fromFile, fromRank, toFile, toRank})
	if promo >= PromoKnight && promo <= PromoQueen {
		promoChars := []byte{'n', 'b', 'r', 'q'}
		uci += string(promoChars[promo-1])
	}
	return uci
}

// MoveFromUCI parses a UCI move string into a Move.
// Examples: "e2e4", "e7e8q", "a1h8"
func MoveFromUCI(uci string) (Move, error) {
	if len(uci) < 4 {
		return 0, fmt.Errorf("UCI move too short: %s", uci)
	}

	fromFile := int(uci[0] - 'a')
	fromRank := int(uci[1] - '1')
	toFile := int(uci[2] - 'a')
	toRank := int(uci[3] - '1')

	if fromFile < 0 || fromFile > 7 || fromRank < 0 || fromRank > 7 {
		return 0, fmt.Errorf("invalid from square in UCI: %s", uci)
	}
	if toFile < 0 || toFile > 7 || toRank < 0 || toRank > 7 {
		return 0, fmt.Errorf("invalid to square in UCI: %s", uci)
	}

	from := fromRank*8 + fromFile
	to := toRank*8 + toFile

	var promo byte = PromoNone
	if len(uci) >= 5 {
		switch uci[4] {
		case 'n', 'N':
			promo = PromoKnight
		case 'b', 'B':
			promo = PromoBishop
		case 'r', 'R':
			promo = PromoRook
		case 'q', 'Q':
			promo = PromoQueen
		default:
			return 0, fmt.Errorf("invalid promotion piece: %c", uci[4])
		}
	}

	return EncodeMove(from, to, promo), nil
}
