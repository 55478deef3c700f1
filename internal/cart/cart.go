// Package cart はフランチャイジーごとの一時的なカートを持つ。
// 永続化はしない。注文確定かクリアで破棄される。
package cart

import "sync"

// カートの1行。商品IDごとに必ず1行。
type Line struct {
	ProductID int64 `json:"product_id"`
	Quantity  int64 `json:"quantity"`
}

// Store はユーザーID別のカートを保持するインメモリ置き場。
type Store struct {
	mu    sync.Mutex
	carts map[int64][]Line
}

func NewStore() *Store {
	return &Store{carts: make(map[int64][]Line)}
}

// AddItem は同一商品なら数量を加算、無ければ末尾に追加する。
// 数量の上限は設けない。0以下は1に切り上げる。
func (s *Store) AddItem(userID int64, productID int64, quantity int64) {
	if quantity < 1 {
		quantity = 1
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	lines := s.carts[userID]
	for i, ln := range lines {
		if ln.ProductID == productID {
			lines[i].Quantity += quantity
			return
		}
	}
	s.carts[userID] = append(lines, Line{ProductID: productID, Quantity: quantity})
}

// UpdateQuantity は数量を上書きする（加算しない）。
// 0以下はRemoveItemと同じ扱い。
func (s *Store) UpdateQuantity(userID int64, productID int64, quantity int64) {
	if quantity <= 0 {
		s.RemoveItem(userID, productID)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	lines := s.carts[userID]
	for i, ln := range lines {
		if ln.ProductID == productID {
			lines[i].Quantity = quantity
			return
		}
	}
}

// RemoveItem は行を削除する。無ければ何もしない。
func (s *Store) RemoveItem(userID int64, productID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	lines := s.carts[userID]
	for i, ln := range lines {
		if ln.ProductID == productID {
			s.carts[userID] = append(lines[:i], lines[i+1:]...)
			return
		}
	}
}

// Clear はカートを空にする。
func (s *Store) Clear(userID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.carts, userID)
}

// Lines は追加順のコピーを返す。
func (s *Store) Lines(userID int64) []Line {
	s.mu.Lock()
	defer s.mu.Unlock()

	lines := s.carts[userID]
	out := make([]Line, len(lines))
	copy(out, lines)
	return out
}
