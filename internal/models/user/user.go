package user

// User приходит от провайдера аутентификации и живёт в локальном слоте
// сессии между перезапусками. Нет пользователя — нет и коллекции задач.
type User struct {
	UID         string `json:"uid"`
	Email       string `json:"email,omitempty"`
	DisplayName string `json:"displayName,omitempty"`
	PhotoURL    string `json:"photoURL,omitempty"`
}
