// Package guard は画面遷移ごとのアクセス判定。
// (プロフィールの有無, 許可ロール集合) だけで決まる純関数。
package guard

import "app/internal/domain/model"

type Action int

const (
	// 表示してよい
	ActionAllow Action = iota
	// 未ログイン。元のURLを覚えてサインインへ
	ActionRedirectSignIn
	// ロール不一致。エラーは出さずホームへ
	ActionRedirectHome
)

type Decision struct {
	Action Action
	// RedirectSignInのとき、戻り先として保存する元のURL
	From string
}

// Evaluate はアクセス可否を判定する。
//   - profileがnil（未ログイン）→ サインインへリダイレクト（fromを保持）
//   - allowedが空でなく、ロールが含まれない → ホームへリダイレクト
//   - それ以外 → 許可
func Evaluate(profile *model.Profile, allowed []model.Role, from string) Decision {
	if profile == nil {
		return Decision{Action: ActionRedirectSignIn, From: from}
	}

	if len(allowed) > 0 && !contains(allowed, profile.UserType) {
		return Decision{Action: ActionRedirectHome}
	}

	return Decision{Action: ActionAllow}
}

func contains(roles []model.Role, r model.Role) bool {
	for _, a := range roles {
		if a == r {
			return true
		}
	}
	return false
}
