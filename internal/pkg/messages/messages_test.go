package messages

import "testing"

func TestCatalogLocaleSelection(t *testing.T) {
	en := New("en")
	if got := en.Get(UserNotFound); got != "User not found" {
		t.Fatalf("unexpected english message: %q", got)
	}

	ua := New("ua")
	if got := ua.Get(UserNotFound); got != "Користувач не знайдений" {
		t.Fatalf("unexpected ukrainian message: %q", got)
	}

	// "uk" 与混合大小写同样命中乌克兰语
	if got := New(" UK ").Get(TokenRevoked); got != "Токен відкликано" {
		t.Fatalf("unexpected message for uk locale: %q", got)
	}

	// 未知语言回退到英语
	if got := New("fr").Get(TokenRevoked); got != "Token revoked" {
		t.Fatalf("unexpected fallback locale message: %q", got)
	}
}

func TestCatalogUnknownKey(t *testing.T) {
	if got := New("en").Get("NO_SUCH_KEY"); got != fallback {
		t.Fatalf("expected fallback string, got %q", got)
	}
}
