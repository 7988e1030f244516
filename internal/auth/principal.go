// Package auth передаёт аутентифицированного принципала явным параметром.
// Аутентификацию выполняет вышестоящий шлюз; здесь заголовки только читаются
// и никогда не сохраняются в глобальном состоянии.
package auth

import (
	"net/http"
	"strings"
)

// Заголовки, которые проставляет шлюз после проверки токена.
const (
	HeaderUserID = "X-User-Id"
	HeaderRoles  = "X-User-Roles"
)

// Principal — проверенная вышестоящим шлюзом личность вызывающего.
type Principal struct {
	ID    string
	Roles []string
}

// Anonymous возвращает пустого принципала для неаутентифицированных запросов.
func Anonymous() Principal {
	return Principal{}
}

// IsAnonymous сообщает, известна ли личность вызывающего.
func (p Principal) IsAnonymous() bool {
	return p.ID == ""
}

// HasRole проверяет наличие роли у принципала.
func (p Principal) HasRole(role string) bool {
	for _, r := range p.Roles {
		if strings.EqualFold(r, role) {
			return true
		}
	}
	return false
}

// FromRequest извлекает принципала из заголовков запроса.
// Отсутствие заголовков — не ошибка: возвращается анонимный принципал.
func FromRequest(r *http.Request) Principal {
	id := strings.TrimSpace(r.Header.Get(HeaderUserID))
	if id == "" {
		return Anonymous()
	}

	var roles []string
	if raw := r.Header.Get(HeaderRoles); raw != "" {
		for _, role := range strings.Split(raw, ",") {
			if role = strings.TrimSpace(role); role != "" {
				roles = append(roles, role)
			}
		}
	}

	return Principal{ID: id, Roles: roles}
}
