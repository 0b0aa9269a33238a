// Package polyglot computes the 64-bit position keys used by the
// binary opening book format.
package polyglot

import (
	"fmt"
	"strings"
)

// Key computes the book hash of the position described by a FEN string.
// The key covers piece placement, castling rights, the en-passant file,
// and the side to move. The en-passant file is hashed only when a pawn
// of the side to move stands next to the target square; whether the
// capture would actually be legal is irrelevant.
func Key(fen string) (uint64, error) {
	fields := strings.Fields(fen)
	if len(fields) < 4 {
		return 0, fmt.Errorf("malformed FEN %q", fen)
	}

	board, err := parseBoard(fields[0])
	if err != nil {
		return 0, err
	}
	whiteToMove := fields[1] == "w"

	var key uint64

	for rank := 0; rank < 8; rank++ {
		for file := 0; file < 8; file++ {
			c := board[rank][file]
			if c == 0 {
				continue
			}
			kind := pieceKind(c)
			key ^= random64[randomPiece+64*kind+8*rank+file]
		}
	}

	for i := 0; i < len(fields[2]); i++ {
		switch fields[2][i] {
		case 'K':
			key ^= random64[randomCastle+0]
		case 'Q':
			key ^= random64[randomCastle+1]
		case 'k':
			key ^= random64[randomCastle+2]
		case 'q':
			key ^= random64[randomCastle+3]
		}
	}

	if ep := fields[3]; ep != "-" && len(ep) == 2 {
		file := int(ep[0] - 'a')
		if file >= 0 && file <= 7 && epCapturable(&board, file, whiteToMove) {
			key ^= random64[randomEnPassant+file]
		}
	}

	if whiteToMove {
		key ^= random64[randomTurn]
	}

	return key, nil
}

// parseBoard expands the piece placement field into [rank][file] cells,
// rank index 0 being rank 1. Empty squares stay zero.
func parseBoard(placement string) ([8][8]byte, error) {
	var board [8][8]byte
	ranks := strings.Split(placement, "/")
	if len(ranks) != 8 {
		return board, fmt.Errorf("malformed FEN board %q", placement)
	}
	for i := 0; i < 8; i++ {
		rank := 7 - i
		file := 0
		for j := 0; j < len(ranks[i]); j++ {
			c := ranks[i][j]
			if c >= '1' && c <= '8' {
				file += int(c - '0')
				continue
			}
			if pieceKind(c) < 0 || file > 7 {
				return board, fmt.Errorf("malformed FEN board %q", placement)
			}
			board[rank][file] = c
			file++
		}
		if file != 8 {
			return board, fmt.Errorf("malformed FEN board %q", placement)
		}
	}
	return board, nil
}

// pieceKind maps a FEN piece letter to its table kind, or -1. Kinds
// alternate black/white from pawn up to king.
func pieceKind(c byte) int {
	switch c {
	case 'p':
		return 0
	case 'P':
		return 1
	case 'n':
		return 2
	case 'N':
		return 3
	case 'b':
		return 4
	case 'B':
		return 5
	case 'r':
		return 6
	case 'R':
		return 7
	case 'q':
		return 8
	case 'Q':
		return 9
	case 'k':
		return 10
	case 'K':
		return 11
	}
	return -1
}

// epCapturable reports whether the side to move has a pawn on either
// file adjacent to the en-passant target. White captures happen from
// rank 5, black captures from rank 4.
func epCapturable(board *[8][8]byte, file int, whiteToMove bool) bool {
	pawn, rank := byte('p'), 3
	if whiteToMove {
		pawn, rank = 'P', 4
	}
	if file > 0 && board[rank][file-1] == pawn {
		return true
	}
	if file < 7 && board[rank][file+1] == pawn {
		return true
	}
	return false
}
