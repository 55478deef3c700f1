package model

// 注文ステータスの遷移表。
//
//	PENDING   -> COMPLETED : フランチャイザーのみ
//	PENDING   -> CANCELLED : フランチャイザー、または自分の注文ならフランチャイジー
//	CANCELLED -> PENDING   : フランチャイザーのみ（再有効化）
//	COMPLETED -> *         : 終端
//
// 同一ステータスへの遷移と表にないエッジは常に不可。
func CanTransition(from OrderStatus, to OrderStatus, role Role, isOwner bool) bool {
	if from == to {
		return false
	}

	switch {
	case from == OrderStatusPending && to == OrderStatusCompleted:
		return role == RoleFranchisor
	case from == OrderStatusPending && to == OrderStatusCancelled:
		return role == RoleFranchisor || (role == RoleFranchisee && isOwner)
	case from == OrderStatusCancelled && to == OrderStatusPending:
		return role == RoleFranchisor
	default:
		return false
	}
}

// AvailableTransitionsは呼び出し側に見せる操作ボタンの集合。
// 許可された出エッジと完全に一致する。
func AvailableTransitions(from OrderStatus, role Role, isOwner bool) []OrderStatus {
	targets := []OrderStatus{OrderStatusPending, OrderStatusCompleted, OrderStatusCancelled}

	out := make([]OrderStatus, 0, len(targets))
	for _, to := range targets {
		if CanTransition(from, to, role, isOwner) {
			out = append(out, to)
		}
	}
	return out
}
